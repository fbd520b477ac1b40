package entity

// Model is the set of entity declarations found in a directory, in scan order.
type Model struct {
	// Files is the number of declaration files scanned.
	Files        int
	Declarations []*Declaration

	index map[string]int
}

// Declaration represents one source-level entity class.
type Declaration struct {
	ClassName  string `json:"class_name"`
	TableName  string `json:"table_name"`
	SourceFile string `json:"source_file"`
	// Properties are the stored columns, unique by resolved column name.
	Properties []Property `json:"properties"`
	// Navigations are the relationship members, unique by property name.
	Navigations []Navigation `json:"navigations"`
}

// Property is a scalar member mapped to a column.
type Property struct {
	Column       string `json:"column"`
	PropertyName string `json:"property_name"`
	DeclaredType string `json:"declared_type"`
}

// Navigation is a member that traverses a relationship.
type Navigation struct {
	PropertyName string `json:"property_name"`
	DeclaredType string `json:"declared_type"`
	// ForeignKey is the column named by a [ForeignKey] attribute, or empty.
	ForeignKey string `json:"foreign_key,omitempty"`
}

// NewModel returns an empty model.
func NewModel() *Model {
	return &Model{index: make(map[string]int)}
}

// Lookup returns the declaration for a class name.
func (m *Model) Lookup(className string) (*Declaration, bool) {
	if m == nil {
		return nil, false
	}
	i, ok := m.index[className]
	if !ok {
		return nil, false
	}
	return m.Declarations[i], true
}

// Len returns the number of declarations.
func (m *Model) Len() int {
	if m == nil {
		return 0
	}
	return len(m.Declarations)
}

// put stores d, replacing a previous declaration of the same class in place.
func (m *Model) put(d *Declaration) {
	if m.index == nil {
		m.index = make(map[string]int)
	}
	if i, ok := m.index[d.ClassName]; ok {
		m.Declarations[i] = d
		return
	}
	m.index[d.ClassName] = len(m.Declarations)
	m.Declarations = append(m.Declarations, d)
}

// Property returns the scalar property mapped to a column.
func (d *Declaration) Property(column string) (Property, bool) {
	for _, p := range d.Properties {
		if p.Column == column {
			return p, true
		}
	}
	return Property{}, false
}

// HasColumn reports whether a scalar property maps to column.
func (d *Declaration) HasColumn(column string) bool {
	_, ok := d.Property(column)
	return ok
}

// Navigation returns the navigation property with the given name.
func (d *Declaration) Navigation(name string) (Navigation, bool) {
	for _, n := range d.Navigations {
		if n.PropertyName == name {
			return n, true
		}
	}
	return Navigation{}, false
}

func (d *Declaration) setProperty(p Property) {
	for i := range d.Properties {
		if d.Properties[i].Column == p.Column {
			d.Properties[i] = p
			return
		}
	}
	d.Properties = append(d.Properties, p)
}

func (d *Declaration) setNavigation(n Navigation) {
	for i := range d.Navigations {
		if d.Navigations[i].PropertyName == n.PropertyName {
			d.Navigations[i] = n
			return
		}
	}
	d.Navigations = append(d.Navigations, n)
}

package schema

// Schema is the table model a set of entity declarations is verified against.
// Tables keep the order of their first declaration; a later declaration with the
// same name replaces the earlier one in place.
type Schema struct {
	Source   string  `yaml:"source"` // dbml, yaml, postgresql or mysql
	Database string  `yaml:"database,omitempty"`
	Tables   []Table `yaml:"tables"`

	index map[string]int
}

// Table represents one database table as declared in the manifest.
type Table struct {
	Name         string        `yaml:"name"` // bare name, schema qualifier stripped
	ClassName    string        `yaml:"class_name"`
	Columns      []Column      `yaml:"columns"`
	Associations []Association `yaml:"associations,omitempty"`
}

// Column represents a table column.
type Column struct {
	Name         string `yaml:"name"`
	DbType       string `yaml:"db_type"`
	IsPrimaryKey bool   `yaml:"is_primary_key,omitempty"`
}

// Association is a foreign-key relationship held by the dependent table.
type Association struct {
	ThisKey   string `yaml:"this_key"`
	OtherKey  string `yaml:"other_key"`
	OtherType string `yaml:"other_type"`
	Member    string `yaml:"member"`
}

// New returns an empty schema for the given source kind.
func New(source string) *Schema {
	return &Schema{Source: source, index: make(map[string]int)}
}

// Add inserts t, replacing any table of the same name. It reports whether a
// table was replaced.
func (s *Schema) Add(t Table) bool {
	if s.index == nil {
		s.reindex()
	}
	if i, ok := s.index[t.Name]; ok {
		s.Tables[i] = t
		return true
	}
	s.index[t.Name] = len(s.Tables)
	s.Tables = append(s.Tables, t)
	return false
}

// Lookup returns the table with the given bare name.
func (s *Schema) Lookup(name string) (*Table, bool) {
	if s.index == nil {
		s.reindex()
	}
	i, ok := s.index[name]
	if !ok {
		return nil, false
	}
	return &s.Tables[i], true
}

// Len returns the number of tables.
func (s *Schema) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Tables)
}

func (s *Schema) reindex() {
	s.index = make(map[string]int, len(s.Tables))
	for i, t := range s.Tables {
		s.index[t.Name] = i
	}
}

// Column returns the column with the given name.
func (t *Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// SetColumn inserts or replaces a column, keeping names unique.
func (t *Table) SetColumn(c Column) {
	for i := range t.Columns {
		if t.Columns[i].Name == c.Name {
			t.Columns[i] = c
			return
		}
	}
	t.Columns = append(t.Columns, c)
}

package entity

import "testing"

func TestParseAnnotations(t *testing.T) {
	got := parseAnnotations(`Required, MaxLength(50), Column("Name, First", TypeName = "nvarchar(50)")`)
	if len(got) != 3 {
		t.Fatalf("expected 3 annotations, got %d: %+v", len(got), got)
	}
	if got[0].Name != "Required" || got[1].Name != "MaxLength" || got[1].Args != "50" {
		t.Errorf("unexpected annotations %+v", got[:2])
	}
	if !got[2].is("Column") {
		t.Errorf("third annotation = %q, want Column", got[2].Name)
	}
	v, ok := got[2].literal()
	if !ok || v != "Name, First" {
		t.Errorf("literal = %q, %v", v, ok)
	}
}

func TestParseAnnotations_Literals(t *testing.T) {
	got := parseAnnotations(`DefaultValue(','), Column(@"C:\", Order = 1), Display(Name = "a""b")`)
	if len(got) != 3 {
		t.Fatalf("expected 3 annotations, got %d: %+v", len(got), got)
	}
	if got[0].Args != `','` {
		t.Errorf("char literal args = %q", got[0].Args)
	}
	if v, ok := got[1].literal(); !ok || v != `C:\` {
		t.Errorf("verbatim literal = %q, %v", v, ok)
	}
}

func TestAnnotation_Is(t *testing.T) {
	a := annotation{Name: "System.ComponentModel.DataAnnotations.Schema.TableAttribute"}
	if !a.is("Table") {
		t.Error("qualified TableAttribute should match Table")
	}
	if a.is("Column") {
		t.Error("TableAttribute should not match Column")
	}
}

func TestAnnotation_Literal(t *testing.T) {
	tests := []struct {
		args string
		want string
		ok   bool
	}{
		{`"Orders"`, "Orders", true},
		{`@"Orders"`, "Orders", true},
		{`@"Say ""hi"""`, `Say "hi"`, true},
		{`"Orders", Schema = "dbo"`, "Orders", true},
		{`nameof(CustomerID)`, "CustomerID", true},
		{`nameof(Order.CustomerID)`, "CustomerID", true},
		{`TypeName = "money"`, "", false},
		{`""`, "", false},
		{``, "", false},
		{`SomeConstant`, "", false},
	}
	for _, tt := range tests {
		got, ok := annotation{Name: "X", Args: tt.args}.literal()
		if ok != tt.ok || got != tt.want {
			t.Errorf("literal(%s) = %q, %v; want %q, %v", tt.args, got, ok, tt.want, tt.ok)
		}
	}
}

func TestAttributeTarget(t *testing.T) {
	got := parseAnnotations(`property: Column("X")`)
	if len(got) != 1 || !got[0].is("Column") {
		t.Errorf("unexpected annotations %+v", got)
	}
}

func TestClosingBracket(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{`[Column("]")] public`, 12},
		{`[Table(`, -1},
		{`[A, B[1]]`, 8},
		{`[DefaultValue('"')]`, 18},
		{`[DefaultValue(']')]`, 18},
		{`[DefaultValue('\'')]`, 19},
		{`[Path(@"C:\")]`, 13},
		{`[Path(@"a""]")]`, 14},
		{`[Path("C:\\")]`, 13},
		{`[Path("unterminated)]`, -1},
	}
	for _, tt := range tests {
		if got := closingBracket(tt.in); got != tt.want {
			t.Errorf("closingBracket(%s) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestIndexOutsideQuotes(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{`Name = "x"`, 5},
		{`"a=b"`, -1},
		{`'='`, -1},
		{`@"\" = 1`, 5},
	}
	for _, tt := range tests {
		if got := indexOutsideQuotes(tt.in, '='); got != tt.want {
			t.Errorf("indexOutsideQuotes(%s) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

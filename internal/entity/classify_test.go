package entity

import "testing"

func TestIsScalar(t *testing.T) {
	tests := []struct {
		typ  string
		want bool
	}{
		{"int", true},
		{"int?", true},
		{"uint", true},
		{"long", true},
		{"ulong?", true},
		{"string", true},
		{"string?", true},
		{"bool", true},
		{"decimal?", true},
		{"float", true},
		{"double", true},
		{"DateTime", true},
		{"DateTime?", true},
		{"System.DateTime", true},
		{"DateTimeOffset", true},
		{"DateTimeOffset?", true},
		{"System.DateTimeOffset", true},
		{"Guid", true},
		{"byte[]", true},
		{"byte[]?", true},
		{"char", true},
		{"Int32", true},
		{"UInt32", true},
		{"UInt64", true},
		{"Nullable<int>", true},
		{"Nullable<DateTimeOffset>", true},
		{"List<int>", false},
		{"List<OrderLine>", false},
		{"ICollection<string>", false},
		{"IntegerList", false},
		{"Customer", false},
		{"Customer?", false},
		{"Stringifier", false},
	}
	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			if got := IsScalar(tt.typ); got != tt.want {
				t.Errorf("IsScalar(%q) = %v, want %v", tt.typ, got, tt.want)
			}
		})
	}
}

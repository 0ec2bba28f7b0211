package toon

import (
	"strings"
	"testing"
)

func TestEncodeValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", `""`},
		{"simple", "hello", "hello"},
		{"leading space", " hello", `" hello"`},
		{"newline", "a\nb", `"a\nb"`},
		{"true keyword", "True", `"True"`},
		{"null keyword", "null", `"null"`},
		{"integer", "42", "42"},
		{"float", "3.14", "3.14"},
		{"comma", "a,b", `"a,b"`},
		{"colon", "a:b", `"a:b"`},
		{"backslash", `a\b`, `"a\\b"`},
		{"dash prefix", "-foo", `"-foo"`},
		{"path", "Sources/App/main.swift", "Sources/App/main.swift"},
		{"signature", "greet(name:)", `"greet(name:)"`},
		{"operator", "<~>", "<~>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := encodeValue(tt.in)
			if got != tt.want {
				t.Errorf("encodeValue(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestEncode(t *testing.T) {
	t.Parallel()

	doc := Document{
		Fields: []Field{{Key: "tool", Value: "Pecker"}, {Key: "root", Value: "App"}},
		Tables: []Table{
			{
				Name:    "unused",
				Columns: []string{"path", "line", "kind", "name"},
				Rows: [][]string{
					{"a.swift", "3", "struct", "B"},
					{"a.swift", "7", "function", "greet(name:)"},
				},
			},
			{Name: "empty", Columns: []string{"x"}},
		},
	}

	got := Encode(doc)
	want := strings.Join([]string{
		"tool: Pecker",
		"root: App",
		"unused[2]{path,line,kind,name}:",
		"  a.swift,3,struct,B",
		`  a.swift,7,function,"greet(name:)"`,
		"empty[0]{x}:",
	}, "\n")
	if got != want {
		t.Errorf("Encode =\n%s\nwant\n%s", got, want)
	}
}

// Package model defines core data structures for pecker.
package model

import (
	"fmt"
	"sort"
	"strings"
)

// SourceKind indicates the syntactic kind of a declaration.
type SourceKind string

const (
	Class     SourceKind = "class"
	Struct    SourceKind = "struct"
	Enum      SourceKind = "enum"
	Protocol  SourceKind = "protocol"
	Function  SourceKind = "function"
	TypeAlias SourceKind = "typealias"
	Operator  SourceKind = "operator"
	Extension SourceKind = "extension"
)

// IsType reports whether declarations of this kind name a type that an
// extension block can refer to.
func (k SourceKind) IsType() bool {
	switch k {
	case Class, Struct, Enum, Protocol, TypeAlias:
		return true
	}
	return false
}

// SourceLocation is the resolved position of a declaration's name.
// Line and Column are 1-based, Offset is a 0-based byte position.
type SourceLocation struct {
	Path   string
	Line   int
	Column int
	Offset int
}

func (l SourceLocation) String() string {
	return fmt.Sprintf("%s:%d:%d", l.Path, l.Line, l.Column)
}

// FunctionSignature is a function's base name plus the first label of each
// parameter. An omitted label is recorded as "_" so arity still counts.
type FunctionSignature struct {
	Name   string
	Labels []string
}

// String returns the canonical form, e.g. "greet(name:)" or "f(_:_:)".
func (s FunctionSignature) String() string {
	var b strings.Builder
	b.WriteString(s.Name)
	b.WriteByte('(')
	for _, l := range s.Labels {
		if l == "" {
			l = "_"
		}
		b.WriteString(l)
		b.WriteByte(':')
	}
	b.WriteByte(')')
	return b.String()
}

// BaseName strips the parameter list from a canonical function signature.
// Names without a parameter list are returned unchanged.
func BaseName(name string) string {
	if i := strings.IndexByte(name, '('); i > 0 && strings.HasSuffix(name, ")") {
		return name[:i]
	}
	return name
}

// Identity is the key used to match declarations against usages.
type Identity struct {
	Name string
	Kind SourceKind
}

func (id Identity) String() string {
	return string(id.Kind) + " " + id.Name
}

// Declaration is a single named construct found in source.
// Name is the plain identifier for types and the canonical signature for
// functions.
type Declaration struct {
	Name     string
	Kind     SourceKind
	Location SourceLocation
}

// Identity returns the declaration's matching key.
func (d Declaration) Identity() Identity {
	return Identity{Name: d.Name, Kind: d.Kind}
}

// Index stores declarations in discovery order with an identity lookup.
// It is filled once per run and read-only afterwards.
type Index struct {
	decls   []Declaration
	byIdent map[Identity][]int
}

// NewIndex returns an empty Index.
func NewIndex() *Index {
	return &Index{byIdent: make(map[Identity][]int)}
}

// Add appends declarations in order.
func (x *Index) Add(decls ...Declaration) {
	for _, d := range decls {
		id := d.Identity()
		x.byIdent[id] = append(x.byIdent[id], len(x.decls))
		x.decls = append(x.decls, d)
	}
}

// All returns the declarations in insertion order. Callers must not modify
// the returned slice.
func (x *Index) All() []Declaration {
	return x.decls
}

// Len returns the number of stored declarations.
func (x *Index) Len() int {
	return len(x.decls)
}

// Lookup returns every occurrence recorded under id, in insertion order.
func (x *Index) Lookup(id Identity) []Declaration {
	idxs := x.byIdent[id]
	if len(idxs) == 0 {
		return nil
	}
	out := make([]Declaration, len(idxs))
	for i, n := range idxs {
		out[i] = x.decls[n]
	}
	return out
}

// ExtensionMap records, per extended type name, the last extension
// declaration seen for it. A later Put for the same name replaces the
// earlier entry, so only the most recently traversed location survives.
type ExtensionMap struct {
	byName map[string]Declaration
}

// NewExtensionMap returns an empty ExtensionMap.
func NewExtensionMap() *ExtensionMap {
	return &ExtensionMap{byName: make(map[string]Declaration)}
}

// Put records d under its name, overwriting any previous entry.
func (m *ExtensionMap) Put(d Declaration) {
	d.Kind = Extension
	m.byName[d.Name] = d
}

// Get returns the entry for name.
func (m *ExtensionMap) Get(name string) (Declaration, bool) {
	d, ok := m.byName[name]
	return d, ok
}

// Has reports whether any extension of name was seen.
func (m *ExtensionMap) Has(name string) bool {
	_, ok := m.byName[name]
	return ok
}

// Len returns the number of distinct extended names.
func (m *ExtensionMap) Len() int {
	return len(m.byName)
}

// Names returns the extended type names, sorted.
func (m *ExtensionMap) Names() []string {
	names := make([]string, 0, len(m.byName))
	for n := range m.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

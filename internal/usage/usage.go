// Package usage holds the set of symbol references gathered from source.
package usage

import (
	"github.com/mikeger/Pecker/internal/model"
)

// Set is the usage side of reconciliation. A Set is not safe for
// concurrent mutation; build one per file and Merge them.
type Set struct {
	names     map[string]struct{}
	calls     map[string]struct{}
	callees   map[string]struct{}
	operators map[string]struct{}
}

// NewSet returns an empty Set.
func NewSet() *Set {
	return &Set{
		names:     make(map[string]struct{}),
		calls:     make(map[string]struct{}),
		callees:   make(map[string]struct{}),
		operators: make(map[string]struct{}),
	}
}

// AddName records a bare identifier or type reference.
func (s *Set) AddName(name string) {
	if name != "" {
		s.names[name] = struct{}{}
	}
}

// AddCall records a call by its canonical signature, e.g. "greet(name:)".
// The callee's base name is recorded as well.
func (s *Set) AddCall(sig model.FunctionSignature) {
	if sig.Name == "" {
		return
	}
	s.calls[sig.String()] = struct{}{}
	s.callees[sig.Name] = struct{}{}
}

// AddOperator records a use of an operator token.
func (s *Set) AddOperator(op string) {
	if op != "" {
		s.operators[op] = struct{}{}
	}
}

// Merge adds every entry of other to s.
func (s *Set) Merge(other *Set) {
	if other == nil {
		return
	}
	for k := range other.names {
		s.names[k] = struct{}{}
	}
	for k := range other.calls {
		s.calls[k] = struct{}{}
	}
	for k := range other.callees {
		s.callees[k] = struct{}{}
	}
	for k := range other.operators {
		s.operators[k] = struct{}{}
	}
}

// Contains reports whether id is referenced, matching by kind:
//   - type kinds match any identifier reference or a call through the
//     type name (initializer);
//   - functions match a call with the same canonical signature, a
//     non-call reference to the base name (function used as a value), or
//     an operator token equal to the base name (operator implementations);
//   - operators match operator tokens.
func (s *Set) Contains(id model.Identity) bool {
	switch id.Kind {
	case model.Function:
		if _, ok := s.calls[id.Name]; ok {
			return true
		}
		base := model.BaseName(id.Name)
		if _, ok := s.names[base]; ok {
			return true
		}
		_, ok := s.operators[base]
		return ok
	case model.Operator:
		if _, ok := s.operators[id.Name]; ok {
			return true
		}
		_, ok := s.names[id.Name]
		return ok
	case model.Extension:
		return false
	default:
		if _, ok := s.names[id.Name]; ok {
			return true
		}
		_, ok := s.callees[id.Name]
		return ok
	}
}

// Len returns the total number of recorded entries.
func (s *Set) Len() int {
	return len(s.names) + len(s.calls) + len(s.operators)
}

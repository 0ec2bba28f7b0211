// Package syntax holds the language-neutral declaration tree that the
// collector walks. Nodes live in a flat arena and refer to their parent by
// index, so upward walks need no pointers and cannot cycle.
package syntax

import (
	"strings"

	"github.com/mikeger/Pecker/internal/model"
)

// NodeID indexes Tree.Nodes.
type NodeID int32

// NoParent marks a top-level node.
const NoParent NodeID = -1

// Token is a piece of source text with the byte offset of its first
// non-trivia character.
type Token struct {
	Text   string
	Offset int
}

// Param is one function parameter. Label is the external (first) name,
// empty when the source omits it.
type Param struct {
	Label string
	Name  string
}

// Node is one declaration-bearing construct. Which fields are meaningful
// depends on Kind: Params only for functions, Extended only for extensions.
type Node struct {
	Kind       model.SourceKind
	Parent     NodeID
	Name       Token
	Params     []Param
	Modifiers  []string
	Attributes []string
	Inherits   []string
	Comments   []string
	Extended   []Token
}

// Signature returns the canonical function signature for a function node.
func (n *Node) Signature() model.FunctionSignature {
	labels := make([]string, len(n.Params))
	for i, p := range n.Params {
		labels[i] = p.Label
	}
	return model.FunctionSignature{Name: n.Name.Text, Labels: labels}
}

// HasModifier reports whether mod appears verbatim among the modifiers.
func (n *Node) HasModifier(mod string) bool {
	for _, m := range n.Modifiers {
		if m == mod {
			return true
		}
	}
	return false
}

// HasAttribute reports whether the node carries @name. The leading "@" and
// any argument list are ignored.
func (n *Node) HasAttribute(name string) bool {
	for _, a := range n.Attributes {
		a = strings.TrimPrefix(a, "@")
		if i := strings.IndexByte(a, '('); i >= 0 {
			a = a[:i]
		}
		if strings.TrimSpace(a) == name {
			return true
		}
	}
	return false
}

// InheritsFrom reports whether the inheritance clause names typ. Qualified
// names match on their last component.
func (n *Node) InheritsFrom(typ string) bool {
	for _, t := range n.Inherits {
		if i := strings.LastIndexByte(t, '.'); i >= 0 {
			t = t[i+1:]
		}
		if t == typ {
			return true
		}
	}
	return false
}

// Tree is the declaration tree of one source file. Nodes are stored in
// document order, so a parent always precedes its children.
type Tree struct {
	Path  string
	Nodes []Node
	Lines *LineMap
}

// Add appends n and returns its ID.
func (t *Tree) Add(n Node) NodeID {
	t.Nodes = append(t.Nodes, n)
	return NodeID(len(t.Nodes) - 1)
}

// Node returns the node with the given ID.
func (t *Tree) Node(id NodeID) *Node {
	return &t.Nodes[id]
}

// Ancestors calls fn for each ancestor of id, nearest first, until fn
// returns false or the root is passed. The walk is bounded by the number of
// nodes, so a malformed parent chain cannot loop.
func (t *Tree) Ancestors(id NodeID, fn func(NodeID, *Node) bool) {
	if id < 0 || int(id) >= len(t.Nodes) {
		return
	}
	cur := t.Nodes[id].Parent
	for steps := 0; cur != NoParent && steps < len(t.Nodes); steps++ {
		if cur < 0 || int(cur) >= len(t.Nodes) {
			return
		}
		if !fn(cur, &t.Nodes[cur]) {
			return
		}
		cur = t.Nodes[cur].Parent
	}
}

// Enclosing returns the nearest ancestor of the given kind.
func (t *Tree) Enclosing(id NodeID, kind model.SourceKind) (NodeID, bool) {
	found := NoParent
	t.Ancestors(id, func(aid NodeID, n *Node) bool {
		if n.Kind == kind {
			found = aid
			return false
		}
		return true
	})
	return found, found != NoParent
}

// Resolve converts tok into a SourceLocation in this tree's file. It
// returns false when the offset does not fall inside the source buffer.
func (t *Tree) Resolve(tok Token) (model.SourceLocation, bool) {
	if t.Lines == nil {
		return model.SourceLocation{}, false
	}
	line, col, ok := t.Lines.Position(tok.Offset)
	if !ok {
		return model.SourceLocation{}, false
	}
	return model.SourceLocation{Path: t.Path, Line: line, Column: col, Offset: tok.Offset}, true
}

// Site is the view of a candidate declaration handed to rules.
type Site struct {
	Tree *Tree
	ID   NodeID
}

// Node returns the candidate node.
func (s Site) Node() *Node {
	return s.Tree.Node(s.ID)
}

package parse

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/mikeger/Pecker/internal/lang"
	"github.com/mikeger/Pecker/internal/model"
	"github.com/mikeger/Pecker/internal/syntax"
)

// treeBuilder copies declaration-bearing nodes into the arena tree, keeping
// document order and parent links.
type treeBuilder struct {
	source []byte
	tree   *syntax.Tree
}

func (b *treeBuilder) children(n *sitter.Node, parent syntax.NodeID) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c != nil {
			b.visit(c, parent)
		}
	}
}

func (b *treeBuilder) visit(n *sitter.Node, parent syntax.NodeID) {
	if node, ok := b.declaration(n, parent); ok {
		parent = b.tree.Add(node)
	}
	b.children(n, parent)
}

// declaration maps a tree-sitter node onto a syntax.Node.
func (b *treeBuilder) declaration(n *sitter.Node, parent syntax.NodeID) (syntax.Node, bool) {
	var node syntax.Node
	switch n.Type() {
	case "class_declaration":
		kind, ok := classKind(n)
		if !ok {
			return node, false
		}
		node.Kind = kind
		if kind == model.Extension {
			node.Extended = b.extendedTokens(n)
		} else {
			node.Name = b.nameToken(n)
		}
		node.Inherits = b.inherits(n)
	case "protocol_declaration":
		node.Kind = model.Protocol
		node.Name = b.nameToken(n)
		node.Inherits = b.inherits(n)
	case "function_declaration", "protocol_function_declaration":
		node.Kind = model.Function
		node.Name = b.nameToken(n)
		node.Params = b.params(n)
	case "typealias_declaration":
		node.Kind = model.TypeAlias
		node.Name = b.nameToken(n)
	case "operator_declaration":
		node.Kind = model.Operator
		node.Name = b.operatorToken(n)
	default:
		return node, false
	}
	node.Parent = parent
	node.Modifiers, node.Attributes = b.modifiers(n)
	node.Comments = b.leadingComments(n)
	return node, true
}

// classKind reads the declaration keyword of a class_declaration, which the
// grammar uses for classes, structs, enums, actors and extensions.
func classKind(n *sitter.Node) (model.SourceKind, bool) {
	kw := ""
	if k := n.ChildByFieldName("declaration_kind"); k != nil {
		kw = k.Type()
	} else {
		for i := 0; i < int(n.ChildCount()); i++ {
			c := n.Child(i)
			if c == nil || c.IsNamed() {
				continue
			}
			switch c.Type() {
			case "class", "struct", "enum", "actor", "extension":
				kw = c.Type()
			}
			if kw != "" {
				break
			}
		}
	}
	switch kw {
	case "class", "actor":
		return model.Class, true
	case "struct":
		return model.Struct, true
	case "enum":
		return model.Enum, true
	case "extension":
		return model.Extension, true
	}
	return "", false
}

func (b *treeBuilder) token(n *sitter.Node) syntax.Token {
	return syntax.Token{Text: nodeText(n, b.source), Offset: int(n.StartByte())}
}

// nameToken returns the declared name. When the name field holds a compound
// node, its first identifier is used.
func (b *treeBuilder) nameToken(n *sitter.Node) syntax.Token {
	name := n.ChildByFieldName("name")
	if name == nil {
		name = firstNamedChild(n, "type_identifier", "simple_identifier")
	}
	if name == nil {
		return syntax.Token{}
	}
	if !isIdentifier(name) && name.NamedChildCount() > 0 {
		if id := firstIdentifier(name); id != nil {
			name = id
		}
	}
	return b.token(name)
}

func firstIdentifier(n *sitter.Node) *sitter.Node {
	if isIdentifier(n) {
		return n
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if id := firstIdentifier(n.NamedChild(i)); id != nil {
			return id
		}
	}
	return nil
}

// extendedTokens returns every identifier naming the extended type, e.g.
// both Outer and Inner for "extension Outer.Inner".
func (b *treeBuilder) extendedTokens(n *sitter.Node) []syntax.Token {
	name := n.ChildByFieldName("name")
	if name == nil {
		name = firstNamedChild(n, "user_type", "type_identifier")
	}
	if name == nil {
		return nil
	}
	var toks []syntax.Token
	var walk func(*sitter.Node)
	walk = func(c *sitter.Node) {
		if isIdentifier(c) {
			toks = append(toks, b.token(c))
			return
		}
		for i := 0; i < int(c.NamedChildCount()); i++ {
			walk(c.NamedChild(i))
		}
	}
	walk(name)
	return toks
}

// operatorToken returns the operator symbol of "infix operator <~>".
func (b *treeBuilder) operatorToken(n *sitter.Node) syntax.Token {
	if op := firstNamedChild(n, "custom_operator"); op != nil {
		return b.token(op)
	}
	seenKeyword := false
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c == nil {
			continue
		}
		if !seenKeyword {
			seenKeyword = c.Type() == "operator" && !c.IsNamed()
			continue
		}
		return b.token(c)
	}
	return syntax.Token{}
}

// params returns the parameters of a function declaration in order. The
// label is the external name when present, the local name otherwise.
func (b *treeBuilder) params(n *sitter.Node) []syntax.Param {
	params := namedChildren(n, "parameter")
	out := make([]syntax.Param, 0, len(params))
	for _, p := range params {
		var param syntax.Param
		if name := p.ChildByFieldName("name"); name != nil {
			param.Name = nodeText(name, b.source)
		}
		if ext := p.ChildByFieldName("external_name"); ext != nil {
			param.Label = nodeText(ext, b.source)
		} else if param.Name != "" {
			param.Label = param.Name
		} else if id := firstNamedChild(p, "simple_identifier"); id != nil {
			param.Label = nodeText(id, b.source)
		}
		out = append(out, param)
	}
	return out
}

// modifiers splits the modifiers node into access/other modifiers and
// attributes.
func (b *treeBuilder) modifiers(n *sitter.Node) (mods, attrs []string) {
	m := firstNamedChild(n, "modifiers")
	if m == nil {
		return nil, nil
	}
	for i := 0; i < int(m.NamedChildCount()); i++ {
		c := m.NamedChild(i)
		if c == nil {
			continue
		}
		text := lang.CollapseWhitespace(nodeText(c, b.source))
		if c.Type() == "attribute" {
			attrs = append(attrs, text)
			continue
		}
		mods = append(mods, strings.ReplaceAll(text, " ", ""))
	}
	return mods, attrs
}

// inherits lists the inherited type names of a type declaration.
func (b *treeBuilder) inherits(n *sitter.Node) []string {
	var out []string
	for _, spec := range namedChildren(n, "inheritance_specifier") {
		target := spec.ChildByFieldName("inherits_from")
		if target == nil {
			target = spec
		}
		out = append(out, lang.CollapseWhitespace(nodeText(target, b.source)))
	}
	return out
}

// leadingComments returns the comments directly above n, top first. A
// trailing comment on the previous declaration's last line is not included.
func (b *treeBuilder) leadingComments(n *sitter.Node) []string {
	var comments []*sitter.Node
	prev := n.PrevSibling()
	for prev != nil && isComment(prev) {
		comments = append(comments, prev)
		prev = prev.PrevSibling()
	}
	if len(comments) == 0 {
		return nil
	}
	if prev != nil {
		top := comments[len(comments)-1]
		if top.StartPoint().Row == prev.EndPoint().Row {
			comments = comments[:len(comments)-1]
		}
	}
	out := make([]string, 0, len(comments))
	for i := len(comments) - 1; i >= 0; i-- {
		out = append(out, nodeText(comments[i], b.source))
	}
	return out
}

func isComment(n *sitter.Node) bool {
	switch n.Type() {
	case "comment", "multiline_comment":
		return true
	}
	return false
}

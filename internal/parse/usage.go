package parse

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/mikeger/Pecker/internal/model"
	"github.com/mikeger/Pecker/internal/usage"
)

// usageWalker records every reference that is not a declaration's own name.
type usageWalker struct {
	source []byte
	uses   *usage.Set
}

// declaringFields are the fields whose identifiers introduce a name rather
// than reference one.
var declaringFields = map[string][]string{
	"class_declaration":             {"name"},
	"protocol_declaration":          {"name"},
	"function_declaration":          {"name"},
	"protocol_function_declaration": {"name"},
	"typealias_declaration":         {"name"},
	"parameter":                     {"name", "external_name"},
	"property_declaration":          {"name"},
	"protocol_property_declaration": {"name"},
	"enum_entry":                    {"name"},
	"associatedtype_declaration":    {"name"},
}

func (u *usageWalker) walk(n *sitter.Node) {
	switch n.Type() {
	case "simple_identifier", "type_identifier":
		u.uses.AddName(nodeText(n, u.source))
		return
	case "custom_operator":
		u.uses.AddOperator(nodeText(n, u.source))
		return
	case "operator_declaration":
		// The declared operator is not a use of itself.
		return
	case "comment", "multiline_comment":
		return
	case "call_expression":
		u.call(n)
		return
	}
	if _, ok := operatorExpressions[n.Type()]; ok {
		u.operatorExpr(n)
	}

	skip := u.declaredNames(n)
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c == nil {
			continue
		}
		if typ, ok := skip[c.StartByte()]; ok && typ == c.Type() {
			continue
		}
		u.walk(c)
	}
}

// declaredNames returns the start offsets of n's declaring children, keyed
// to their node type.
func (u *usageWalker) declaredNames(n *sitter.Node) map[uint32]string {
	fields, ok := declaringFields[n.Type()]
	if !ok {
		return nil
	}
	skip := make(map[uint32]string, len(fields))
	for _, f := range fields {
		if c := n.ChildByFieldName(f); c != nil {
			skip[c.StartByte()] = c.Type()
		}
	}
	return skip
}

// operatorExpressions are the expression nodes that apply an operator. The
// grammar gives built-in operators their own precedence-level node types.
var operatorExpressions = map[string]struct{}{
	"infix_expression":          {},
	"prefix_expression":         {},
	"postfix_expression":        {},
	"additive_expression":       {},
	"multiplicative_expression": {},
	"comparison_expression":     {},
	"equality_expression":       {},
	"conjunction_expression":    {},
	"disjunction_expression":    {},
	"nil_coalescing_expression": {},
	"range_expression":          {},
	"bitwise_operation":         {},
	"assignment":                {},
}

// operatorExpr records the operator of an operator expression. Most node
// types carry it in a field; otherwise it is the source text between two
// operands.
func (u *usageWalker) operatorExpr(n *sitter.Node) {
	found := false
	for _, f := range []string{"op", "operation", "operator"} {
		if op := n.ChildByFieldName(f); op != nil {
			if text := strings.TrimSpace(nodeText(op, u.source)); text != "" {
				u.uses.AddOperator(text)
				found = true
			}
		}
	}
	if found {
		return
	}
	var operands []*sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if c := n.NamedChild(i); c != nil && !isComment(c) {
			operands = append(operands, c)
		}
	}
	for i := 1; i < len(operands); i++ {
		gap := strings.TrimSpace(string(u.source[operands[i-1].EndByte():operands[i].StartByte()]))
		if gap != "" {
			u.uses.AddOperator(gap)
		}
	}
}

// call records a call expression by canonical signature and walks its
// receiver and arguments. A trailing closure has no visible label, so the
// callee is also recorded by bare name.
func (u *usageWalker) call(n *sitter.Node) {
	var callee, suffix *sitter.Node
	var rest []*sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		switch {
		case c == nil:
		case c.Type() == "call_suffix" && suffix == nil:
			suffix = c
		case callee == nil:
			callee = c
		default:
			rest = append(rest, c)
		}
	}
	for _, c := range rest {
		u.walk(c)
	}
	if callee == nil || suffix == nil {
		if callee != nil {
			u.walk(callee)
		}
		if suffix != nil {
			u.walk(suffix)
		}
		return
	}

	name := u.callee(callee)

	sig := model.FunctionSignature{Name: name}
	trailing := false
	for i := 0; i < int(suffix.NamedChildCount()); i++ {
		c := suffix.NamedChild(i)
		if c == nil {
			continue
		}
		switch c.Type() {
		case "value_arguments":
			for _, arg := range namedChildren(c, "value_argument") {
				sig.Labels = append(sig.Labels, u.argument(arg)...)
			}
		case "lambda_literal", "annotated_lambda":
			trailing = true
			u.walk(c)
		default:
			u.walk(c)
		}
	}

	if name == "" {
		return
	}
	u.uses.AddCall(sig)
	if trailing {
		u.uses.AddName(name)
	}
}

// callee returns the base name being called and walks everything else in
// the callee expression, e.g. the receiver of "store.save(x)".
func (u *usageWalker) callee(n *sitter.Node) string {
	switch n.Type() {
	case "simple_identifier", "type_identifier":
		return nodeText(n, u.source)
	case "navigation_expression":
		var name string
		for i := 0; i < int(n.NamedChildCount()); i++ {
			c := n.NamedChild(i)
			if c == nil {
				continue
			}
			if c.Type() == "navigation_suffix" {
				if id := lastIdentifier(c); id != nil {
					name = nodeText(id, u.source)
				}
				continue
			}
			u.walk(c)
		}
		return name
	}
	u.walk(n)
	return ""
}

// argument walks one call argument and returns the labels it contributes:
// its label, "_" when unlabeled, or every label of a function reference
// such as the "a:b:" in "f(a:b:)".
func (u *usageWalker) argument(arg *sitter.Node) []string {
	labels := namedChildren(arg, "value_argument_label")
	if arg.ChildByFieldName("value") == nil && len(labels) > 0 {
		out := make([]string, len(labels))
		for i, l := range labels {
			out[i] = u.labelText(l)
		}
		return out
	}

	label := "_"
	var labelNode *sitter.Node
	if l := arg.ChildByFieldName("name"); l != nil {
		labelNode = l
	} else if len(labels) > 0 {
		labelNode = labels[0]
	}
	if labelNode != nil {
		label = u.labelText(labelNode)
	}
	for i := 0; i < int(arg.NamedChildCount()); i++ {
		c := arg.NamedChild(i)
		if c == nil || (labelNode != nil && c.StartByte() == labelNode.StartByte() && c.Type() == labelNode.Type()) {
			continue
		}
		u.walk(c)
	}
	return []string{label}
}

func (u *usageWalker) labelText(n *sitter.Node) string {
	if id := lastIdentifier(n); id != nil {
		return nodeText(id, u.source)
	}
	return nodeText(n, u.source)
}

func lastIdentifier(n *sitter.Node) *sitter.Node {
	if isIdentifier(n) {
		return n
	}
	for i := int(n.NamedChildCount()) - 1; i >= 0; i-- {
		if id := lastIdentifier(n.NamedChild(i)); id != nil {
			return id
		}
	}
	return nil
}

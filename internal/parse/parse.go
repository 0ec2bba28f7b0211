// Package parse turns Swift source into a declaration tree and a usage set
// using tree-sitter.
package parse

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/mikeger/Pecker/internal/lang"
	"github.com/mikeger/Pecker/internal/syntax"
	"github.com/mikeger/Pecker/internal/usage"
)

// Result is everything extracted from one file.
type Result struct {
	Tree *syntax.Tree
	Uses *usage.Set

	// HasErrors is set when tree-sitter recovered from syntax errors; the
	// extracted data is still usable.
	HasErrors bool
}

// File parses source with parser, which must be set to the Swift grammar.
// filePath is recorded verbatim in every location.
func File(parser *sitter.Parser, source []byte, filePath string) (Result, error) {
	res := Result{
		Tree: &syntax.Tree{Path: filePath, Lines: syntax.NewLineMap(source)},
		Uses: usage.NewSet(),
	}
	if len(source) == 0 {
		return res, nil
	}

	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return Result{}, fmt.Errorf("parsing %s: %w", filePath, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	res.HasErrors = root.HasError()

	b := &treeBuilder{source: source, tree: res.Tree}
	b.children(root, syntax.NoParent)

	u := &usageWalker{source: source, uses: res.Uses}
	u.walk(root)

	return res, nil
}

func nodeText(n *sitter.Node, source []byte) string {
	return lang.NodeText(n, source)
}

// namedChildren returns the named children of n of the given type.
func namedChildren(n *sitter.Node, typ string) []*sitter.Node {
	var out []*sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c != nil && c.Type() == typ {
			out = append(out, c)
		}
	}
	return out
}

// firstNamedChild returns the first named child of n of one of the types.
func firstNamedChild(n *sitter.Node, types ...string) *sitter.Node {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c == nil {
			continue
		}
		for _, t := range types {
			if c.Type() == t {
				return c
			}
		}
	}
	return nil
}

func isIdentifier(n *sitter.Node) bool {
	switch n.Type() {
	case "simple_identifier", "type_identifier":
		return true
	}
	return false
}

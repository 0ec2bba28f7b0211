package rule

import (
	"strings"

	"github.com/mikeger/Pecker/internal/model"
	"github.com/mikeger/Pecker/internal/syntax"
)

var (
	permissive  = []string{"public", "open"}
	restrictive = []string{"private", "fileprivate", "internal"}
)

// SkipPublic skips declarations that belong to the public API surface,
// since their users may live outside the analyzed code.
type SkipPublic struct{}

func (SkipPublic) Name() string { return "skip_public" }

func (SkipPublic) Skip(site syntax.Site, _ model.SourceLocation) bool {
	return IsPublic(site.Tree, site.ID)
}

// IsPublic infers whether the node is publicly visible:
//   - a restrictive modifier on the node itself makes it non-public, even
//     alongside public or inside a public extension;
//   - an explicit public or open makes it public;
//   - otherwise it inherits from the nearest enclosing extension;
//   - with no such extension it is non-public.
//
// Setter-only forms such as private(set) are not access modifiers of the
// declaration and are ignored.
func IsPublic(tree *syntax.Tree, id syntax.NodeID) bool {
	n := tree.Node(id)
	if hasAccess(n, restrictive) {
		return false
	}
	if hasAccess(n, permissive) {
		return true
	}
	ext, ok := tree.Enclosing(id, model.Extension)
	if !ok {
		return false
	}
	e := tree.Node(ext)
	return hasAccess(e, permissive) && !hasAccess(e, restrictive)
}

func hasAccess(n *syntax.Node, levels []string) bool {
	for _, m := range n.Modifiers {
		if strings.HasSuffix(m, "(set)") {
			continue
		}
		for _, l := range levels {
			if m == l {
				return true
			}
		}
	}
	return false
}

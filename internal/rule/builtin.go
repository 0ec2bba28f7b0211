package rule

import (
	"strings"

	"github.com/mikeger/Pecker/internal/model"
	"github.com/mikeger/Pecker/internal/syntax"
)

const (
	ignoreDirective    = "pecker:ignore"
	ignoreAllDirective = "pecker:ignore all"
)

// DefaultAttributes are the attributes that expose a declaration to the
// runtime or to Interface Builder.
var DefaultAttributes = []string{
	"IBAction",
	"IBOutlet",
	"IBInspectable",
	"IBDesignable",
	"objc",
	"main",
	"UIApplicationMain",
	"NSApplicationMain",
}

// XCTest skips test case classes and the methods the test runner calls on
// them.
type XCTest struct{}

func (XCTest) Name() string { return "xctest" }

func (XCTest) Skip(site syntax.Site, _ model.SourceLocation) bool {
	n := site.Node()
	switch n.Kind {
	case model.Class:
		return n.InheritsFrom("XCTestCase")
	case model.Function:
		name := n.Name.Text
		if !strings.HasPrefix(name, "test") && name != "setUp" && name != "tearDown" &&
			name != "setUpWithError" && name != "tearDownWithError" {
			return false
		}
		cls, ok := site.Tree.Enclosing(site.ID, model.Class)
		return ok && site.Tree.Node(cls).InheritsFrom("XCTestCase")
	}
	return false
}

// Attributes skips declarations carrying one of the listed attributes.
type Attributes struct {
	Names []string
}

func (*Attributes) Name() string { return "attributes" }

func (a *Attributes) Skip(site syntax.Site, _ model.SourceLocation) bool {
	n := site.Node()
	for _, attr := range a.Names {
		if n.HasAttribute(attr) {
			return true
		}
	}
	return false
}

// Comment skips declarations annotated with a "pecker:ignore" comment.
// "pecker:ignore all" on a declaration also covers everything nested in it.
type Comment struct{}

func (Comment) Name() string { return "comment" }

func (Comment) Skip(site syntax.Site, _ model.SourceLocation) bool {
	if hasDirective(site.Node().Comments, ignoreDirective) {
		return true
	}
	skip := false
	site.Tree.Ancestors(site.ID, func(_ syntax.NodeID, n *syntax.Node) bool {
		if hasDirective(n.Comments, ignoreAllDirective) {
			skip = true
			return false
		}
		return true
	})
	return skip
}

func hasDirective(comments []string, directive string) bool {
	for _, c := range comments {
		body := strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(c), "/*"))
		body = strings.TrimSpace(strings.TrimSuffix(body, "*/"))
		if body == directive || strings.HasPrefix(body, directive+" ") {
			return true
		}
	}
	return false
}

// SuperClass skips types inheriting from any of the listed names.
type SuperClass struct {
	Names []string
}

func (*SuperClass) Name() string { return "superclass" }

func (s *SuperClass) Skip(site syntax.Site, _ model.SourceLocation) bool {
	n := site.Node()
	if !n.Kind.IsType() {
		return false
	}
	for _, name := range s.Names {
		if n.InheritsFrom(name) {
			return true
		}
	}
	return false
}

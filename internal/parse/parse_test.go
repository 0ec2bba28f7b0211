package parse

import (
	"testing"

	"github.com/mikeger/Pecker/internal/lang"
	"github.com/mikeger/Pecker/internal/model"
	"github.com/mikeger/Pecker/internal/syntax"
)

func parseSource(t *testing.T, source string) Result {
	t.Helper()
	res, err := File(lang.Swift.NewParser(), []byte(source), "Sources/App/main.swift")
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	return res
}

// find returns the first node of kind named name.
func find(t *testing.T, tree *syntax.Tree, kind model.SourceKind, name string) (syntax.NodeID, *syntax.Node) {
	t.Helper()
	for i := range tree.Nodes {
		n := &tree.Nodes[i]
		if n.Kind == kind && n.Name.Text == name {
			return syntax.NodeID(i), n
		}
	}
	t.Fatalf("no %s %q in tree: %+v", kind, name, tree.Nodes)
	return syntax.NoParent, nil
}

const sample = `import Foundation

// pecker:ignore
public class A: NSObject {
    @objc func tap(_ sender: Any) {}
    private func helper(name: String, count: Int) -> Int { return count }
}

struct B {}

extension B {
    func greet(name: String) {}
}

enum Mode { case on, off }

protocol Loader {}

typealias Handler = () -> Void

infix operator <~>

func run() {
    let a = A()
    a.helper(name: "x", count: 1)
    greet(name: "y")
}
`

func TestFileDeclarations(t *testing.T) {
	t.Parallel()

	res := parseSource(t, sample)
	tree := res.Tree
	if res.HasErrors {
		t.Error("unexpected syntax errors")
	}
	if tree.Path != "Sources/App/main.swift" {
		t.Errorf("path = %q", tree.Path)
	}

	aID, a := find(t, tree, model.Class, "A")
	if !a.HasModifier("public") {
		t.Errorf("A modifiers = %v", a.Modifiers)
	}
	if !a.InheritsFrom("NSObject") {
		t.Errorf("A inherits = %v", a.Inherits)
	}
	if len(a.Comments) != 1 || a.Comments[0] != "// pecker:ignore" {
		t.Errorf("A comments = %q", a.Comments)
	}
	loc, ok := tree.Resolve(a.Name)
	if !ok || loc.Line != 4 || loc.Column != 14 {
		t.Errorf("A location = %+v, %v", loc, ok)
	}

	_, tap := find(t, tree, model.Function, "tap")
	if tap.Parent != aID {
		t.Errorf("tap parent = %d, want %d", tap.Parent, aID)
	}
	if !tap.HasAttribute("objc") {
		t.Errorf("tap attributes = %v", tap.Attributes)
	}
	if got := tap.Signature().String(); got != "tap(_:)" {
		t.Errorf("tap signature = %q", got)
	}

	_, helper := find(t, tree, model.Function, "helper")
	if !helper.HasModifier("private") {
		t.Errorf("helper modifiers = %v", helper.Modifiers)
	}
	if got := helper.Signature().String(); got != "helper(name:count:)" {
		t.Errorf("helper signature = %q", got)
	}

	find(t, tree, model.Struct, "B")
	find(t, tree, model.Enum, "Mode")
	find(t, tree, model.Protocol, "Loader")
	find(t, tree, model.TypeAlias, "Handler")
	find(t, tree, model.Operator, "<~>")
	find(t, tree, model.Function, "run")

	var ext *syntax.Node
	var extID syntax.NodeID
	for i := range tree.Nodes {
		if tree.Nodes[i].Kind == model.Extension {
			ext = &tree.Nodes[i]
			extID = syntax.NodeID(i)
		}
	}
	if ext == nil {
		t.Fatal("no extension node")
	}
	if len(ext.Extended) != 1 || ext.Extended[0].Text != "B" {
		t.Errorf("extended = %+v", ext.Extended)
	}
	_, greet := find(t, tree, model.Function, "greet")
	if greet.Parent != extID {
		t.Errorf("greet parent = %d, want extension %d", greet.Parent, extID)
	}
}

func TestFileDocumentOrder(t *testing.T) {
	t.Parallel()

	tree := parseSource(t, sample).Tree
	var order []string
	for _, n := range tree.Nodes {
		if n.Kind == model.Extension {
			order = append(order, "ext")
			continue
		}
		order = append(order, n.Name.Text)
	}
	want := []string{"A", "tap", "helper", "B", "ext", "greet", "Mode", "Loader", "Handler", "<~>", "run"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestFileUsages(t *testing.T) {
	t.Parallel()

	uses := parseSource(t, sample).Uses

	tests := []struct {
		id   model.Identity
		want bool
	}{
		{model.Identity{Name: "A", Kind: model.Class}, true},
		{model.Identity{Name: "helper(name:count:)", Kind: model.Function}, true},
		{model.Identity{Name: "greet(name:)", Kind: model.Function}, true},
		{model.Identity{Name: "B", Kind: model.Struct}, false},
		{model.Identity{Name: "tap(_:)", Kind: model.Function}, false},
		{model.Identity{Name: "run()", Kind: model.Function}, false},
		{model.Identity{Name: "Mode", Kind: model.Enum}, false},
		{model.Identity{Name: "Loader", Kind: model.Protocol}, false},
		{model.Identity{Name: "Handler", Kind: model.TypeAlias}, false},
		{model.Identity{Name: "<~>", Kind: model.Operator}, false},
	}
	for _, tt := range tests {
		if got := uses.Contains(tt.id); got != tt.want {
			t.Errorf("Contains(%v) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestFileOverloadedCalls(t *testing.T) {
	t.Parallel()

	source := `func f(a: Int) {}
func f(b: Int) {}
func g(_ x: Int) {}

func main() {
    f(a: 1)
    g(2)
}
`
	uses := parseSource(t, source).Uses
	if !uses.Contains(model.Identity{Name: "f(a:)", Kind: model.Function}) {
		t.Error("f(a:) should be used")
	}
	if uses.Contains(model.Identity{Name: "f(b:)", Kind: model.Function}) {
		t.Error("f(b:) should not be used")
	}
	if !uses.Contains(model.Identity{Name: "g(_:)", Kind: model.Function}) {
		t.Error("g(_:) should be used")
	}
}

func TestFileTypeReferences(t *testing.T) {
	t.Parallel()

	source := `protocol Service {}
struct Impl: Service {}
class Box<T> {}

func make() -> Box<Impl> {
    return Box()
}
`
	uses := parseSource(t, source).Uses
	for _, name := range []string{"Service", "Impl", "Box"} {
		if !uses.Contains(model.Identity{Name: name, Kind: model.Struct}) {
			t.Errorf("%s should be referenced", name)
		}
	}
}

func TestFileTrailingClosure(t *testing.T) {
	t.Parallel()

	source := `func load(completion: () -> Void) {}

func main() {
    load { }
}
`
	uses := parseSource(t, source).Uses
	if !uses.Contains(model.Identity{Name: "load(completion:)", Kind: model.Function}) {
		t.Error("trailing-closure call should mark load as used")
	}
}

func TestFileEmpty(t *testing.T) {
	t.Parallel()

	res := parseSource(t, "")
	if len(res.Tree.Nodes) != 0 || res.Uses.Len() != 0 {
		t.Errorf("expected nothing from empty source, got %d nodes", len(res.Tree.Nodes))
	}
}

func TestFileWithSyntaxErrors(t *testing.T) {
	t.Parallel()

	res := parseSource(t, "struct Ok {}\nclass {{{\n")
	if !res.HasErrors {
		t.Error("expected HasErrors")
	}
	found := false
	for _, n := range res.Tree.Nodes {
		if n.Kind == model.Struct && n.Name.Text == "Ok" {
			found = true
		}
	}
	if !found {
		t.Errorf("valid declaration lost: %+v", res.Tree.Nodes)
	}
}

func TestTrailingCommentNotAttached(t *testing.T) {
	t.Parallel()

	source := "struct A {} // pecker:ignore\nstruct B {}\n"
	tree := parseSource(t, source).Tree
	_, b := find(t, tree, model.Struct, "B")
	if len(b.Comments) != 0 {
		t.Errorf("B comments = %q, want none", b.Comments)
	}
}

func TestFileBuiltinOperatorUses(t *testing.T) {
	t.Parallel()

	source := `struct V {
    static func + (lhs: V, rhs: V) -> V { return lhs }
    static func == (lhs: V, rhs: V) -> Bool { return true }
    static func < (lhs: V, rhs: V) -> Bool { return false }
    static func += (lhs: inout V, rhs: V) {}
    static func * (lhs: V, rhs: V) -> V { return lhs }
}

func use(a: V, b: V) -> Bool {
    var c = a + b
    c += b
    let o: V? = nil
    _ = o ?? a
    return a == b && a < b
}
`
	res := parseSource(t, source)
	for _, name := range []string{"+(lhs:rhs:)", "==(lhs:rhs:)", "<(lhs:rhs:)", "+=(lhs:rhs:)"} {
		if !res.Uses.Contains(model.Identity{Name: name, Kind: model.Function}) {
			t.Errorf("%s should be used", name)
		}
	}
	if res.Uses.Contains(model.Identity{Name: "*(lhs:rhs:)", Kind: model.Function}) {
		t.Error("*(lhs:rhs:) is never applied")
	}
	for _, op := range []string{"??", "&&"} {
		if !res.Uses.Contains(model.Identity{Name: op, Kind: model.Operator}) {
			t.Errorf("operator %s should be recorded", op)
		}
	}
}

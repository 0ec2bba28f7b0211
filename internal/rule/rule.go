// Package rule implements the predicates that keep a declaration out of the
// index before reconciliation. A rule only reads the tree; it never mutates
// it.
package rule

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/mikeger/Pecker/internal/model"
	"github.com/mikeger/Pecker/internal/syntax"
)

// Rule decides whether a candidate declaration is skipped.
type Rule interface {
	Name() string
	Skip(site syntax.Site, loc model.SourceLocation) bool
}

// Pipeline vetoes a candidate when any of its rules does.
type Pipeline []Rule

// Skip reports whether some rule vetoes the candidate.
func (p Pipeline) Skip(site syntax.Site, loc model.SourceLocation) bool {
	for _, r := range p {
		if r.Skip(site, loc) {
			return true
		}
	}
	return false
}

// Names returns the rule names in order.
func (p Pipeline) Names() []string {
	names := make([]string, len(p))
	for i, r := range p {
		names[i] = r.Name()
	}
	return names
}

// Blacklist skips declarations whose raw identifier is listed. Functions
// match on their base name, not on the canonical signature.
type Blacklist struct {
	Symbols map[string]struct{}
}

// NewBlacklist builds a Blacklist from a symbol list.
func NewBlacklist(symbols []string) *Blacklist {
	set := make(map[string]struct{}, len(symbols))
	for _, s := range symbols {
		set[s] = struct{}{}
	}
	return &Blacklist{Symbols: set}
}

func (*Blacklist) Name() string { return "blacklist_symbols" }

func (b *Blacklist) Skip(site syntax.Site, _ model.SourceLocation) bool {
	_, ok := b.Symbols[site.Node().Name.Text]
	return ok
}

// Files skips declarations located in files matching any glob. Patterns use
// doublestar syntax and are matched against the slash-separated path.
type Files struct {
	Globs []string
}

func (*Files) Name() string { return "blacklist_files" }

func (f *Files) Skip(_ syntax.Site, loc model.SourceLocation) bool {
	return MatchesAny(f.Globs, loc.Path)
}

// MatchesAny reports whether path matches one of globs. Invalid patterns
// never match.
func MatchesAny(globs []string, path string) bool {
	normalized := strings.ReplaceAll(path, "\\", "/")
	for _, g := range globs {
		if g == "" {
			continue
		}
		ok, err := doublestar.Match(g, normalized)
		if err == nil && ok {
			return true
		}
	}
	return false
}

// Options carries the configuration values rules are built from.
type Options struct {
	BlacklistSymbols []string
	BlacklistFiles   []string
	Attributes       []string
	SuperClasses     []string
}

// Known lists the rule names accepted in configuration.
var Known = []string{"skip_public", "xctest", "attributes", "comment", "superclass"}

// Build assembles a pipeline from configured rule names. The blacklist
// rules are always installed first.
func Build(names []string, opts Options) (Pipeline, error) {
	p := Pipeline{NewBlacklist(opts.BlacklistSymbols)}
	if len(opts.BlacklistFiles) > 0 {
		p = append(p, &Files{Globs: opts.BlacklistFiles})
	}
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		switch name {
		case "skip_public":
			p = append(p, SkipPublic{})
		case "xctest":
			p = append(p, XCTest{})
		case "attributes":
			attrs := opts.Attributes
			if len(attrs) == 0 {
				attrs = DefaultAttributes
			}
			p = append(p, &Attributes{Names: attrs})
		case "comment":
			p = append(p, Comment{})
		case "superclass":
			p = append(p, &SuperClass{Names: opts.SuperClasses})
		default:
			return nil, fmt.Errorf("unknown rule %q (known: %s)", name, strings.Join(Known, ", "))
		}
	}
	return p, nil
}

// Package collect walks declaration trees and records the declarations that
// survive the rule pipeline.
package collect

import (
	"strings"

	"github.com/mikeger/Pecker/internal/config"
	"github.com/mikeger/Pecker/internal/model"
	"github.com/mikeger/Pecker/internal/syntax"
)

// Result is what one file contributes to the run.
type Result struct {
	Path         string
	Declarations []model.Declaration
	// Extensions in traversal order; later entries win on merge.
	Extensions []model.Declaration
	// Skipped counts candidates vetoed by a rule.
	Skipped int
	// Dropped counts candidates whose location could not be resolved.
	Dropped int
}

// File collects one tree. It reads cfg and tree only, so files may be
// collected concurrently.
func File(cfg *config.Configuration, tree *syntax.Tree) Result {
	res := Result{Path: tree.Path}
	for i := range tree.Nodes {
		id := syntax.NodeID(i)
		n := &tree.Nodes[i]

		switch n.Kind {
		case model.Extension:
			for _, tok := range n.Extended {
				loc, ok := tree.Resolve(tok)
				if !ok {
					res.Dropped++
					continue
				}
				res.Extensions = append(res.Extensions, model.Declaration{
					Name:     tok.Text,
					Kind:     model.Extension,
					Location: loc,
				})
			}
		case model.Function:
			res.add(cfg, tree, id, n.Signature().String())
		case model.Class, model.Struct, model.Enum, model.Protocol, model.TypeAlias, model.Operator:
			res.add(cfg, tree, id, n.Name.Text)
		}
	}
	return res
}

func (r *Result) add(cfg *config.Configuration, tree *syntax.Tree, id syntax.NodeID, name string) {
	n := tree.Node(id)
	if strings.TrimSpace(n.Name.Text) == "" {
		r.Dropped++
		return
	}
	loc, ok := tree.Resolve(n.Name)
	if !ok {
		r.Dropped++
		return
	}
	if skip(cfg, syntax.Site{Tree: tree, ID: id}, loc) {
		r.Skipped++
		return
	}
	r.Declarations = append(r.Declarations, model.Declaration{Name: name, Kind: n.Kind, Location: loc})
}

func skip(cfg *config.Configuration, site syntax.Site, loc model.SourceLocation) bool {
	if cfg == nil {
		return false
	}
	return cfg.Rules.Skip(site, loc)
}

// Merge folds per-file results into one index and extension map. Results
// are applied in the order given, so callers must pass them in a canonical
// order (discovery sorts by path) for the extension overwrite to be stable.
func Merge(results []Result) (*model.Index, *model.ExtensionMap) {
	idx := model.NewIndex()
	ext := model.NewExtensionMap()
	for i := range results {
		idx.Add(results[i].Declarations...)
		for _, e := range results[i].Extensions {
			ext.Put(e)
		}
	}
	return idx, ext
}

// Package reconcile computes the declarations that nothing references.
package reconcile

import (
	"sort"

	"github.com/mikeger/Pecker/internal/model"
	"github.com/mikeger/Pecker/internal/usage"
)

// Unused returns the declarations of idx that are not referenced, in index
// order. A declaration is used when uses contains its identity, or, for a
// type, when some extension block names it. Inputs are not modified.
func Unused(idx *model.Index, uses *usage.Set, ext *model.ExtensionMap) []model.Declaration {
	var unused []model.Declaration
	for _, d := range idx.All() {
		if IsUsed(d, uses, ext) {
			continue
		}
		unused = append(unused, d)
	}
	return unused
}

// IsUsed reports whether d counts as referenced.
func IsUsed(d model.Declaration, uses *usage.Set, ext *model.ExtensionMap) bool {
	if uses != nil && uses.Contains(d.Identity()) {
		return true
	}
	return d.Kind.IsType() && ext != nil && ext.Has(d.Name)
}

// KindCount is the number of unused declarations of one kind.
type KindCount struct {
	Kind  model.SourceKind
	Count int
}

// Stats summarizes a reconciliation.
type Stats struct {
	Declarations int
	Extensions   int
	Unused       int
	ByKind       []KindCount
}

// Summarize counts unused declarations per kind. ByKind is sorted by kind.
func Summarize(idx *model.Index, ext *model.ExtensionMap, unused []model.Declaration) Stats {
	counts := make(map[model.SourceKind]int)
	for _, d := range unused {
		counts[d.Kind]++
	}
	byKind := make([]KindCount, 0, len(counts))
	for k, c := range counts {
		byKind = append(byKind, KindCount{Kind: k, Count: c})
	}
	sort.Slice(byKind, func(i, j int) bool {
		return byKind[i].Kind < byKind[j].Kind
	})

	return Stats{
		Declarations: idx.Len(),
		Extensions:   ext.Len(),
		Unused:       len(unused),
		ByKind:       byKind,
	}
}

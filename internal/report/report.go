// Package report renders unused declarations.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/mikeger/Pecker/internal/config"
	"github.com/mikeger/Pecker/internal/model"
	"github.com/mikeger/Pecker/internal/toon"
)

// ToolName prefixes every advisory message.
const ToolName = "Pecker"

// Message is the advisory text attached to each unused declaration.
const Message = "The file was never used; consider removing it"

// Reporter renders a run's unused declarations. Write failures on the
// output are not reported back; a broken output is a process-level
// problem.
type Reporter interface {
	Report(cfg *config.Configuration, unused []model.Declaration)
}

var factories = map[string]func(w io.Writer) Reporter{
	"xcode": func(w io.Writer) Reporter { return &Xcode{W: w} },
	"json":  func(w io.Writer) Reporter { return &JSON{W: w} },
	"toon":  func(w io.Writer) Reporter { return &TOON{W: w} },
}

// Names returns the registered reporter names, sorted.
func Names() []string {
	names := make([]string, 0, len(factories))
	for n := range factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// New returns the reporter registered under name, writing to w.
func New(name string, w io.Writer) (Reporter, error) {
	f, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown reporter %q", name)
	}
	return f(w), nil
}

// Xcode writes one "path: warning: ..." line per declaration, the format
// editors and CI log parsers pick up.
type Xcode struct {
	W io.Writer
}

func (x *Xcode) Report(_ *config.Configuration, unused []model.Declaration) {
	for _, d := range unused {
		_, _ = fmt.Fprintf(x.W, "%s: warning: %s: %s\n", d.Location.Path, ToolName, Message)
	}
}

// JSON writes the declarations as a JSON array.
type JSON struct {
	W io.Writer
}

type jsonDeclaration struct {
	Name   string `json:"name"`
	Kind   string `json:"kind"`
	Path   string `json:"path"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
	Offset int    `json:"offset"`
}

func (j *JSON) Report(_ *config.Configuration, unused []model.Declaration) {
	out := make([]jsonDeclaration, len(unused))
	for i, d := range unused {
		out[i] = jsonDeclaration{
			Name:   d.Name,
			Kind:   string(d.Kind),
			Path:   d.Location.Path,
			Line:   d.Location.Line,
			Column: d.Location.Column,
			Offset: d.Location.Offset,
		}
	}
	enc := json.NewEncoder(j.W)
	enc.SetIndent("", "  ")
	_ = enc.Encode(out)
}

// TOON writes the declarations as a TOON table.
type TOON struct {
	W io.Writer
}

func (t *TOON) Report(cfg *config.Configuration, unused []model.Declaration) {
	rows := make([][]string, len(unused))
	for i, d := range unused {
		rows[i] = []string{
			d.Location.Path,
			strconv.Itoa(d.Location.Line),
			strconv.Itoa(d.Location.Column),
			string(d.Kind),
			d.Name,
		}
	}

	doc := toon.Document{Fields: []toon.Field{{Key: "tool", Value: ToolName}}}
	if cfg != nil && cfg.Path != "" {
		doc.Fields = append(doc.Fields, toon.Field{Key: "config", Value: filepath.Base(cfg.Path)})
	}
	doc.Tables = []toon.Table{{
		Name:    "unused",
		Columns: []string{"path", "line", "column", "kind", "name"},
		Rows:    rows,
	}}
	_, _ = fmt.Fprintln(t.W, toon.Encode(doc))
}

// Package report summarizes a directory of parsed exports into a Markdown
// run report and renders it to HTML for the review server.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"bspace/adapters/behaviorspace"
	apperrors "bspace/internal/errors"
)

// Experiment describes one export file's parse outcome
type Experiment struct {
	Name    string   `json:"name"`
	Layout  string   `json:"layout"`
	Records int      `json:"records"`
	Columns []string `json:"columns"`
	Err     string   `json:"error,omitempty"`
}

// Scan parses every .csv export under inDir, final layouts first and the
// time-series layout as fallback, and reports what each file yielded.
// Unparseable files are reported, not fatal: the report exists to show
// which exports a run could and could not use.
func Scan(inDir string) ([]Experiment, error) {
	paths, err := filepath.Glob(filepath.Join(inDir, "*.csv"))
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		if _, statErr := os.Stat(inDir); statErr != nil {
			return nil, statErr
		}
	}
	sort.Strings(paths)

	exps := make([]Experiment, 0, len(paths))
	for _, path := range paths {
		exps = append(exps, scanOne(path))
	}
	return exps, nil
}

func scanOne(path string) Experiment {
	exp := Experiment{Name: strings.TrimSuffix(filepath.Base(path), ".csv")}

	if table, err := behaviorspace.ParseFinal(path); err == nil {
		exp.Layout = "final"
		exp.Records = table.Len()
		exp.Columns = table.Columns()
		return exp
	} else if !apperrors.HasCode(err, apperrors.CodeUnsupportedLayout) {
		exp.Err = err.Error()
		return exp
	}

	table, err := behaviorspace.ParseAllRunData(path)
	if err != nil {
		exp.Err = err.Error()
		return exp
	}
	exp.Layout = "all run data"
	exp.Records = table.Len()
	exp.Columns = table.Columns()
	return exp
}

// Markdown renders the experiment list as a report document
func Markdown(exps []Experiment) string {
	var sb strings.Builder
	sb.WriteString("# BehaviorSpace export report\n\n")
	fmt.Fprintf(&sb, "%d export file(s) scanned.\n\n", len(exps))

	sb.WriteString("| experiment | layout | records | columns |\n")
	sb.WriteString("| --- | --- | ---: | ---: |\n")
	for _, e := range exps {
		if e.Err != "" {
			fmt.Fprintf(&sb, "| %s | unparsed | - | - |\n", e.Name)
			continue
		}
		fmt.Fprintf(&sb, "| %s | %s | %d | %d |\n", e.Name, e.Layout, e.Records, len(e.Columns))
	}

	var failed []Experiment
	for _, e := range exps {
		if e.Err != "" {
			failed = append(failed, e)
		}
	}
	if len(failed) > 0 {
		sb.WriteString("\n## Unparsed exports\n\n")
		for _, e := range failed {
			fmt.Fprintf(&sb, "- **%s**: %s\n", e.Name, e.Err)
		}
	}
	return sb.String()
}

// HTML converts the Markdown report to an HTML document body
func HTML(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.ToHTML([]byte(md), p, renderer)
}

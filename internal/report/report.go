// Package report renders a human-readable digest of an analysis run as Markdown
// and HTML.
package report

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sort"

	"alre/domain/core"
	"alre/internal/analysis"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Run is what the report describes
type Run struct {
	RunID      core.RunID
	ResultsDir string
	Figures    map[string]string // figure name -> path
	Summary    *analysis.Summary
}

// Markdown builds the report body. Figure links are relative to the report.
func Markdown(r Run, reportDir string) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "# Active learning run %s\n\n", r.RunID)
	if r.ResultsDir != "" {
		fmt.Fprintf(&b, "Results: `%s`\n\n", r.ResultsDir)
	}

	if r.Summary != nil {
		b.WriteString("## Final iteration MSE\n\n")
		b.WriteString("| Policy | Restarts | Iterations | Mean | Median | Std | P5 | P95 |\n")
		b.WriteString("|---|---|---|---|---|---|---|---|\n")
		for _, p := range r.Summary.Policies {
			fmt.Fprintf(&b, "| %s | %d | %d | %.4g | %.4g | %.4g | %.4g | %.4g |\n",
				p.Policy, p.Restarts, p.Iterations, p.Mean, p.Median, p.StdDev, p.P5, p.P95)
		}
		if c := r.Summary.Comparison; c != nil {
			fmt.Fprintf(&b, "\nUCB minus Random: %.4g (Welch t = %.3f, df = %.1f, p = %.3g; permutation p = %.3g over %d shuffles; d = %.3f)\n",
				c.Diff, c.TStat, c.DF, c.PValue, c.PermutationP, c.Shuffles, c.EffectSize)
		}
		b.WriteString("\n## MLE error\n\n")
		b.WriteString("| Iteration | MAE | Std err |\n|---|---|---|\n")
		for _, e := range r.Summary.MLE {
			fmt.Fprintf(&b, "| %s | %.4g | %.4g |\n", e.Iteration, e.MAE, e.StdErr)
		}
		b.WriteString("\n")
	}

	if len(r.Figures) > 0 {
		b.WriteString("## Figures\n\n")
		names := make([]string, 0, len(r.Figures))
		for name := range r.Figures {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&b, "![%s](%s)\n\n", name, relative(reportDir, r.Figures[name]))
		}
	}
	return b.Bytes()
}

// HTML converts report Markdown into a standalone page
func HTML(md []byte, title string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	renderer := html.NewRenderer(html.RendererOptions{
		Title: title,
		Flags: html.CommonFlags | html.CompletePage,
	})
	return markdown.ToHTML(md, p, renderer)
}

func relative(dir, path string) string {
	if dir == "" {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// Package report renders stored analyses as Markdown and HTML.
package report

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"stikpet/adapters/stats/catalogue"
	"stikpet/domain/analysis"
	"stikpet/domain/stats"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Entry is one analysis with its decoded outcome.
type Entry struct {
	Analysis *analysis.Analysis
	Outcome  catalogue.Outcome
}

// Options control rendering.
type Options struct {
	Title  string
	Alpha  float64
	Digits int
}

func (o Options) withDefaults() Options {
	if o.Title == "" {
		o.Title = "Analysis report"
	}
	if o.Alpha <= 0 {
		o.Alpha = 0.05
	}
	if o.Digits <= 0 {
		o.Digits = 4
	}
	return o
}

func num(v float64, digits int) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "∞"
	case math.IsInf(v, -1):
		return "-∞"
	}
	return fmt.Sprintf("%.*g", digits, v)
}

func pValue(p float64, digits int) string {
	if p < 0.001 {
		return "< .001"
	}
	return num(p, digits)
}

// escape keeps table cells from breaking the pipe table syntax.
func escape(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}

// Markdown renders entries as one document.
func Markdown(entries []Entry, opts Options) string {
	opts = opts.withDefaults()
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", opts.Title)
	for _, e := range entries {
		writeEntry(&b, e, opts)
	}
	return b.String()
}

func writeEntry(b *strings.Builder, e Entry, opts Options) {
	o := e.Outcome
	fmt.Fprintf(b, "## %s\n\n", o.Procedure)
	if e.Analysis != nil {
		fmt.Fprintf(b, "Analysis `%s` (%s), run %s.\n\n", e.Analysis.ID, o.Kind, e.Analysis.CreatedAt.Format("2006-01-02 15:04:05"))
	}

	switch {
	case o.Test != nil:
		writeTest(b, *o.Test, opts)
	case o.Correlation != nil:
		c := o.Correlation
		b.WriteString("| measure | coefficient | n |\n|---|---|---|\n")
		fmt.Fprintf(b, "| %s | %s | %d |\n\n", escape(c.Measure), num(c.Coefficient, opts.Digits), c.N)
		writeTest(b, c.Test, opts)
	case o.Estimate != nil:
		writeEstimate(b, *o.Estimate, opts)
	case len(o.Frequencies) > 0:
		writeFrequencies(b, o.Frequencies, opts)
	case len(o.Comparisons) > 0:
		writeComparisons(b, o.Comparisons, opts)
	default:
		b.WriteString("_No result._\n\n")
	}

	if o.Interpretation != nil {
		fmt.Fprintf(b, "Interpretation: **%s** (%s).\n\n", o.Interpretation.Label, o.Interpretation.Source)
	}
}

func writeTest(b *strings.Builder, r stats.TestResult, opts Options) {
	b.WriteString("| test | statistic | df | p | n |\n|---|---|---|---|---|\n")
	df := ""
	switch {
	case r.DF2 > 0:
		df = num(r.DF, opts.Digits) + ", " + num(r.DF2, opts.Digits)
	case r.DF > 0:
		df = num(r.DF, opts.Digits)
	}
	fmt.Fprintf(b, "| %s | %s | %s | %s | %d |\n\n", escape(r.Test), num(r.Statistic, opts.Digits), df, pValue(r.PValue, opts.Digits), r.N)
	writeExtra(b, r.Extra, opts)
	if r.Significant(opts.Alpha) {
		fmt.Fprintf(b, "Significant at α = %s.\n\n", num(opts.Alpha, 3))
	} else {
		fmt.Fprintf(b, "Not significant at α = %s.\n\n", num(opts.Alpha, 3))
	}
}

func writeEstimate(b *strings.Builder, e stats.Estimate, opts Options) {
	b.WriteString("| measure | value | n |\n|---|---|---|\n")
	fmt.Fprintf(b, "| %s | %s | %d |\n\n", escape(e.Measure), num(e.Value, opts.Digits), e.N)
	writeExtra(b, e.Extra, opts)
}

func writeExtra(b *strings.Builder, extra map[string]float64, opts Options) {
	if len(extra) == 0 {
		return
	}
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s = %s", k, num(extra[k], opts.Digits))
	}
	fmt.Fprintf(b, "Details: %s.\n\n", strings.Join(parts, ", "))
}

func writeFrequencies(b *strings.Builder, rows []stats.FrequencyRow, opts Options) {
	b.WriteString("| category | count | percent | valid percent | cumulative percent |\n|---|---|---|---|---|\n")
	for _, r := range rows {
		fmt.Fprintf(b, "| %s | %d | %s | %s | %s |\n", escape(r.Category), r.Count,
			num(r.Percent, opts.Digits), num(r.ValidPercent, opts.Digits), num(r.CumulativePercent, opts.Digits))
	}
	b.WriteString("\n")
}

func writeComparisons(b *strings.Builder, rows []stats.Comparison, opts Options) {
	b.WriteString("| group 1 | group 2 | test | statistic | p | adjusted p |\n|---|---|---|---|---|---|\n")
	for _, r := range rows {
		fmt.Fprintf(b, "| %s | %s | %s | %s | %s | %s |\n", escape(r.Group1), escape(r.Group2), escape(r.Test),
			num(r.Statistic, opts.Digits), pValue(r.PValue, opts.Digits), pValue(r.AdjustedP, opts.Digits))
	}
	b.WriteString("\n")
}

// HTML converts a Markdown report into a standalone HTML page.
func HTML(md string, title string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse([]byte(md))
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage,
		Title: title,
	})
	return markdown.Render(doc, renderer)
}

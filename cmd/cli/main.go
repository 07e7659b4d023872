package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"stikpet/adapters/excel"
	"stikpet/adapters/stats/catalogue"
	"stikpet/app"
	"stikpet/domain/analysis"
	"stikpet/domain/stats"
	"stikpet/internal"
	"stikpet/internal/report"
	"stikpet/internal/testkit"
	"stikpet/ports"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "stikpet-cli",
		Short: "Run teaching statistics procedures on CSV and Excel files",
	}

	rootCmd.AddCommand(
		newListCmd(),
		newColumnsCmd(),
		newRunCmd(),
		newBatteryCmd(),
		newFreqCmd(),
		newReportCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runFlags are shared by run and battery
type runFlags struct {
	file    string
	sheet   string
	columns app.ColumnSelection
	params  catalogue.Params
	lambda  string
	trim    string
	alpha   float64
	save    string
	asJSON  bool
	asMD    bool
	verbose bool
}

func (f *runFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.file, "file", "", "CSV or Excel file (default: generated survey data)")
	fs.StringVar(&f.sheet, "sheet", "", "Excel sheet (default: first sheet)")

	fs.StringVar(&f.columns.Scale, "scale", "", "Scale column")
	fs.StringVar(&f.columns.Scale2, "scale2", "", "Second scale column")
	fs.StringVar(&f.columns.Field, "field", "", "Categorical column")
	fs.StringVar(&f.columns.Field2, "field2", "", "Second categorical column")
	fs.StringVar(&f.columns.Groups, "groups", "", "Grouping column for the scale column")
	fs.StringSliceVar(&f.columns.Matrix, "matrix", nil, "Columns of repeated measures, one per condition")
	fs.StringSliceVar(&f.columns.Levels, "levels", nil, "Category order of --field (or --groups)")
	fs.StringSliceVar(&f.columns.Levels2, "levels2", nil, "Category order of --field2")

	fs.Float64Var(&f.params.Mu, "mu", 0, "Hypothesized mean or median")
	fs.Float64Var(&f.params.Sigma, "sigma", 0, "Known population standard deviation")
	fs.Float64Var(&f.params.P0, "p0", 0, "Hypothesized proportion (default 0.5)")
	fs.StringVar(&f.trim, "trim", "", "Trim proportion from each end (default per procedure)")
	fs.StringVar(&f.lambda, "lambda", "", "Power divergence lambda (default Cressie-Read 2/3)")
	fs.StringVar(&f.params.Success, "success", "", "Category counted as success")
	fs.StringVar((*string)(&f.params.Alternative), "alternative", "", "two-sided, less or greater")
	fs.StringVar((*string)(&f.params.Correction), "correction", "", "none, yates, williams or pearson")
	fs.StringVar(&f.params.Method, "method", "", "Procedure specific method")
	fs.StringVar(&f.params.Direction, "direction", "", "symmetric, rows or columns")
	fs.StringVar(&f.params.Adjust, "adjust", "", "bonferroni, holm, hochberg, bh or none")
	fs.Float64SliceVar(&f.params.Expected, "expected", nil, "Expected weights per category")
	fs.BoolVar(&f.params.Continuity, "continuity", false, "Apply a continuity correction")
	fs.BoolVar(&f.params.Exact, "exact", false, "Use the exact distribution where available")

	fs.Float64Var(&f.alpha, "alpha", 0.05, "Significance level")
	fs.StringVar(&f.save, "save", "", "Directory to save analyses as JSON")
	fs.BoolVar(&f.asJSON, "json", false, "Print outcomes as JSON")
	fs.BoolVar(&f.asMD, "markdown", false, "Print a Markdown report")
	fs.BoolVar(&f.verbose, "verbose", false, "Log progress")
}

func (f *runFlags) parse() error {
	var err error
	if f.params.Lambda, err = optionalFloat("lambda", f.lambda); err != nil {
		return err
	}
	f.params.Trim, err = optionalFloat("trim", f.trim)
	return err
}

// optionalFloat parses a flag whose zero value differs from leaving it unset.
func optionalFloat(name, raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s %q: %w", name, raw, err)
	}
	return &v, nil
}

func (f *runFlags) reader() (ports.DataReader, error) {
	if f.file == "" {
		kit, err := testkit.NewTestKit()
		if err != nil {
			return nil, err
		}
		return kit.Reader(), nil
	}
	r := excel.NewDataReader(f.file)
	if f.sheet != "" {
		r = r.WithSheet(f.sheet)
	}
	return r.Load()
}

func (f *runFlags) service() *app.AnalysisService {
	level := internal.LogLevelWarn
	if f.verbose {
		level = internal.LogLevelDebug
	}
	logger := internal.NewLogger(level)
	return app.NewAnalysisService(catalogue.New(catalogue.Options{}), testkit.NewInMemoryAnalysisRepository(), logger,
		app.AnalysisOptions{Alpha: f.alpha})
}

func newListCmd() *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the available procedures",
		Long: `List every registered procedure with its kind and description.

Example: stikpet-cli list --kind effect-size`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat := catalogue.New(catalogue.Options{})
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, p := range cat.List(catalogue.Kind(kind)) {
				fmt.Fprintf(w, "%s\t%s\t%s\n", p.Name, p.Kind, p.Description)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "table, central-tendency, effect-size, correlation, test or post-hoc")
	return cmd
}

func newColumnsCmd() *cobra.Command {
	var sheet string

	cmd := &cobra.Command{
		Use:   "columns [data-file]",
		Short: "Show the columns of a data file and their inferred types",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var table *excel.Table
			var err error
			if len(args) == 0 {
				table, err = testkit.NewSurveyGenerator(testkit.DefaultSurveyConfig()).Table()
			} else {
				r := excel.NewDataReader(args[0])
				if sheet != "" {
					r = r.WithSheet(sheet)
				}
				table, err = r.Load()
			}
			if err != nil {
				return fmt.Errorf("failed to load data: %w", err)
			}

			types := table.InferColumnTypes()
			fmt.Fprintf(cmd.OutOrStdout(), "%d rows\n", table.Rows())
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, h := range table.Headers() {
				fmt.Fprintf(w, "%s\t%s\n", h, types[h])
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&sheet, "sheet", "", "Excel sheet (default: first sheet)")
	return cmd
}

func newRunCmd() *cobra.Command {
	var f runFlags

	cmd := &cobra.Command{
		Use:   "run [procedure]",
		Short: "Run one procedure on columns of a data file",
		Long: `Run a procedure on the selected columns. Without --file the generated
survey data is used (columns gender, school, rating, passed, pretest,
posttest, hours).

Examples:
  stikpet-cli run frequencies --field rating --levels "very bad,bad,neutral,good,very good"
  stikpet-cli run welch-t --scale posttest --groups gender
  stikpet-cli run cramer-v --field school --field2 passed --markdown`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := f.parse(); err != nil {
				return err
			}
			return runOne(cmd, &f, args[0])
		},
	}

	f.register(cmd)
	return cmd
}

func newBatteryCmd() *cobra.Command {
	var f runFlags

	cmd := &cobra.Command{
		Use:   "battery [procedure...]",
		Short: "Run several procedures on the same columns",
		Long: `Run several procedures concurrently on the same column selection.
Procedures that do not fit the selection report their error and the
others still run.

Example: stikpet-cli battery student-t-independent welch-t mann-whitney cohen-ds --scale posttest --groups gender`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := f.parse(); err != nil {
				return err
			}
			return runBattery(cmd, &f, args)
		},
	}

	f.register(cmd)
	return cmd
}

func newFreqCmd() *cobra.Command {
	var f runFlags

	cmd := &cobra.Command{
		Use:   "freq [column]",
		Short: "Frequency table of one column",
		Long: `Print counts, percent, valid percent and cumulative percent of a
categorical column. Use --levels to fix the category order.

Example: stikpet-cli freq rating --levels "very bad,bad,neutral,good,very good"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f.columns.Field = args[0]
			return runOne(cmd, &f, "frequencies")
		},
	}

	f.register(cmd)
	return cmd
}

func newReportCmd() *cobra.Command {
	var htmlOut string
	var alpha float64

	cmd := &cobra.Command{
		Use:   "report [analyses-dir]",
		Short: "Render analyses saved with --save as a Markdown or HTML report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := loadEntries(args[0])
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				return fmt.Errorf("no analyses found in %s", args[0])
			}

			opts := report.Options{Title: "stikpet report", Alpha: alpha}
			md := report.Markdown(entries, opts)
			if htmlOut == "" {
				_, err := fmt.Fprint(cmd.OutOrStdout(), md)
				return err
			}
			if err := os.WriteFile(htmlOut, report.HTML(md, opts.Title), 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "💾 Report of %d analyses saved to: %s\n", len(entries), htmlOut)
			return nil
		},
	}

	cmd.Flags().StringVar(&htmlOut, "html", "", "Write an HTML page to this file instead of printing Markdown")
	cmd.Flags().Float64Var(&alpha, "alpha", 0.05, "Significance level")
	return cmd
}

// loadEntries reads saved analyses, oldest first
func loadEntries(dir string) ([]report.Entry, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	var entries []report.Entry
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}
		var a analysis.Analysis
		if err := json.Unmarshal(data, &a); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", file, err)
		}
		var out catalogue.Outcome
		if err := json.Unmarshal(a.Outcome, &out); err != nil {
			return nil, fmt.Errorf("failed to decode outcome in %s: %w", file, err)
		}
		entries = append(entries, report.Entry{Analysis: &a, Outcome: out})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Analysis.CreatedAt.Before(entries[j].Analysis.CreatedAt)
	})
	return entries, nil
}

func runOne(cmd *cobra.Command, f *runFlags, name string) error {
	in, svc, err := prepare(f)
	if err != nil {
		return err
	}
	res, err := svc.Run(cmd.Context(), name, in)
	if err != nil {
		return err
	}
	if err := save(f.save, res); err != nil {
		return err
	}
	return render(cmd, f, []report.Entry{{Analysis: res.Analysis, Outcome: res.Outcome}})
}

func runBattery(cmd *cobra.Command, f *runFlags, names []string) error {
	in, svc, err := prepare(f)
	if err != nil {
		return err
	}
	results, err := svc.RunBattery(cmd.Context(), names, in)
	if err != nil {
		return err
	}

	var entries []report.Entry
	for _, r := range results {
		if r.Outcome == nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "⚠️  %s: %s\n", r.Procedure, r.Error)
			continue
		}
		entries = append(entries, report.Entry{Outcome: *r.Outcome})
	}
	if f.save != "" {
		list, err := svc.List(cmd.Context(), analysis.Filter{Limit: 500})
		if err != nil {
			return err
		}
		for _, a := range list {
			if err := writeJSON(filepath.Join(f.save, a.ID.String()+".json"), a); err != nil {
				return err
			}
		}
	}
	return render(cmd, f, entries)
}

func prepare(f *runFlags) (catalogue.Input, *app.AnalysisService, error) {
	r, err := f.reader()
	if err != nil {
		return catalogue.Input{}, nil, fmt.Errorf("failed to load data: %w", err)
	}
	in, err := app.BuildInput(r, f.columns, f.params)
	if err != nil {
		return catalogue.Input{}, nil, err
	}
	return in, f.service(), nil
}

func render(cmd *cobra.Command, f *runFlags, entries []report.Entry) error {
	out := cmd.OutOrStdout()
	switch {
	case f.asJSON:
		outcomes := make([]catalogue.Outcome, len(entries))
		for i, e := range entries {
			outcomes[i] = e.Outcome
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(outcomes)
	case f.asMD:
		_, err := fmt.Fprint(out, report.Markdown(entries, report.Options{Title: "stikpet", Alpha: f.alpha}))
		return err
	}
	for _, e := range entries {
		fmt.Fprintln(out, summary(e.Outcome, f.alpha))
	}
	return nil
}

// summary is the one-line form used on the terminal
func summary(o catalogue.Outcome, alpha float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-28s ", o.Procedure)
	switch {
	case o.Test != nil:
		b.WriteString(o.Test.String())
		if o.Test.Significant(alpha) {
			b.WriteString("  ✅ significant")
		}
	case o.Correlation != nil:
		fmt.Fprintf(&b, "%s = %.4f, %s", o.Correlation.Measure, o.Correlation.Coefficient, o.Correlation.Test.String())
	case o.Estimate != nil:
		fmt.Fprintf(&b, "%s = %.4f (n=%d)", o.Estimate.Measure, o.Estimate.Value, o.Estimate.N)
	case len(o.Frequencies) > 0:
		b.WriteString("\n")
		writeFrequencies(&b, o.Frequencies)
	case len(o.Comparisons) > 0:
		b.WriteString("\n")
		writeComparisons(&b, o.Comparisons)
	}
	if o.Interpretation != nil {
		fmt.Fprintf(&b, "  [%s, %s]", o.Interpretation.Label, o.Interpretation.Source)
	}
	return b.String()
}

func writeFrequencies(b *strings.Builder, rows []stats.FrequencyRow) {
	w := tabwriter.NewWriter(b, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "category\tcount\tpercent\tvalid\tcumulative\t")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%d\t%.2f\t%.2f\t%.2f\t\n", r.Category, r.Count, r.Percent, r.ValidPercent, r.CumulativePercent)
	}
	w.Flush()
}

func writeComparisons(b *strings.Builder, rows []stats.Comparison) {
	w := tabwriter.NewWriter(b, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "group 1\tgroup 2\tstatistic\tp\tadjusted p\t")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\t%.4f\t%.4f\t%.4f\t\n", r.Group1, r.Group2, r.Statistic, r.PValue, r.AdjustedP)
	}
	w.Flush()
}

func save(dir string, res *app.RunResult) error {
	if dir == "" {
		return nil
	}
	return writeJSON(filepath.Join(dir, res.Analysis.ID.String()+".json"), res.Analysis)
}

func writeJSON(path string, v interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

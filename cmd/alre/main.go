package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"alre/adapters/figures"
	"alre/adapters/tables"
	"alre/app"
	"alre/internal"
	"alre/internal/analysis"
	"alre/internal/config"
	"alre/internal/errors"
	"alre/internal/testkit"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gonum.org/v1/plot/vg"
)

const version = "v0.3.0"

func main() {
	// .env is optional
	_ = godotenv.Load()

	var configPath string
	rootCmd := &cobra.Command{
		Use:           "alre",
		Short:         "Analyse active-learning likelihood-ratio experiments",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML configuration file")

	loadConfig := func() (*config.Config, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		internal.DefaultLogger = internal.NewLogger(internal.ParseLogLevel(cfg.Logging.Level))
		return cfg, nil
	}

	rootCmd.AddCommand(
		newAnalyseCmd(loadConfig),
		newSummaryCmd(loadConfig),
		newDebugCmd(loadConfig),
		newGenerateCmd(),
	)

	err := rootCmd.Execute()
	internal.DefaultLogger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error [%s]: %v\n", errors.GetCode(err), err)
		os.Exit(1)
	}
}

type configLoader func() (*config.Config, error)

func newService(cfg *config.Config) *app.AnalysisService {
	logger := internal.DefaultLogger
	source := tables.NewDirectorySource(cfg.Paths.ResultsDir, cfg.Loader.Workers, logger)
	sink := figures.NewFileSink(cfg.Paths.OutputDir, cfg.Figures.Format, cfg.Figures.WidthIn, cfg.Figures.HeightIn, logger)
	return app.NewAnalysisService(source, sink, logger, version)
}

func newAnalyseCmd(load configLoader) *cobra.Command {
	var outDir, format string

	cmd := &cobra.Command{
		Use:   "analyse [results-dir]",
		Short: "Build the mle_err, mse and test_stat figures for a results directory",
		Long: `Load the mle, ucb_nllr and random_nllr restart tables below the results
directory, then write the figures, the curve workbook and a run manifest.

Example: alre analyse results/mixtures --out figures --format svg`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				cfg.Paths.ResultsDir = args[0]
			}
			if outDir != "" {
				cfg.Paths.OutputDir = outDir
			}
			if format != "" {
				cfg.Figures.Format = strings.ToLower(format)
				if err := cfg.Validate(); err != nil {
					return err
				}
			}

			res, err := newService(cfg).Run(cmd.Context(), app.AnalysisRequest{
				ResultsDir:     cfg.Paths.ResultsDir,
				Options:        cfg.Options,
				ExportWorkbook: cfg.Export.Workbook,
				WriteManifest:  cfg.Export.Manifest,
				WriteReport:    cfg.Export.Report,
			})
			if err != nil {
				return err
			}

			fmt.Printf("Run %s\n", res.RunID)
			for _, name := range []string{analysis.FigureMLEErr, analysis.FigureMSE, analysis.FigureTestStat} {
				fmt.Printf("  %-10s %s\n", name, res.Figures[name])
			}
			if res.Workbook != "" {
				fmt.Printf("  %-10s %s\n", "curves", res.Workbook)
			}
			if res.Report != "" {
				fmt.Printf("  %-10s %s\n", "report", res.Report)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "out", "", "Output directory (overrides config)")
	cmd.Flags().StringVar(&format, "format", "", "Figure format: png, svg or pdf")

	return cmd
}

func newSummaryCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "summary [results-dir]",
		Short: "Print final-iteration MSE and per-iteration MLE error statistics",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				cfg.Paths.ResultsDir = args[0]
			}
			summary, err := newService(cfg).Summarise(cmd.Context())
			if err != nil {
				return err
			}
			printSummary(summary)
			return nil
		},
	}
}

func printSummary(s *analysis.Summary) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "POLICY\tRESTARTS\tITERATIONS\tMEAN\tMEDIAN\tSTD\tP5\tP95")
	for _, p := range s.Policies {
		fmt.Fprintf(w, "%s\t%d\t%d\t%.4g\t%.4g\t%.4g\t%.4g\t%.4g\n",
			p.Policy, p.Restarts, p.Iterations, p.Mean, p.Median, p.StdDev, p.P5, p.P95)
	}
	if c := s.Comparison; c != nil {
		fmt.Fprintf(w, "\nUCB - Random\t%.4g\tt=%.3f\tp=%.3g\tperm p=%.3g\td=%.3f\n",
			c.Diff, c.TStat, c.PValue, c.PermutationP, c.EffectSize)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "ITERATION\tMLE MAE\tSTDERR")
	for _, e := range s.MLE {
		fmt.Fprintf(w, "%s\t%.4g\t%.4g\n", e.Iteration, e.MAE, e.StdErr)
	}
	w.Flush()
}

func newDebugCmd(load configLoader) *cobra.Command {
	var iterations string
	var out string

	cmd := &cobra.Command{
		Use:   "debug <nllr-file> <std-file>",
		Short: "Plot selected iterations of one NLLR table with their std bands",
		Long: `Plot the requested iterations of an NLLR estimate table against the Exact
curve, with error bars taken from a matching std table.

Example: alre debug nllr.csv std.csv --iterations 1,5,10 --out debug.png`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			iters, err := parseIterations(iterations)
			if err != nil {
				return err
			}
			nllr, err := tables.ReadFile(args[0])
			if err != nil {
				return err
			}
			std, err := tables.ReadFile(args[1])
			if err != nil {
				return err
			}
			fig, err := analysis.DebugFigure(nllr, std, iters)
			if err != nil {
				return errors.InvalidInput("cannot build debug figure", err)
			}
			if out == "" {
				sink := figures.NewFileSink(cfg.Paths.OutputDir, cfg.Figures.Format,
					cfg.Figures.WidthIn, cfg.Figures.HeightIn, internal.DefaultLogger)
				path, err := sink.WriteFigure(cmd.Context(), fig)
				if err != nil {
					return err
				}
				fmt.Println(path)
				return nil
			}
			width := vg.Length(cfg.Figures.WidthIn) * vg.Inch
			height := vg.Length(cfg.Figures.HeightIn) * vg.Inch * vg.Length(len(iters))
			if err := fig.Save(out, width, height); err != nil {
				return errors.RenderError(fig.Name, err)
			}
			fmt.Println(out)
			return nil
		},
	}

	cmd.Flags().StringVar(&iterations, "iterations", "1", "Comma-separated iteration numbers")
	cmd.Flags().StringVar(&out, "out", "", "Output file; format from extension")

	return cmd
}

func parseIterations(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 1 {
			return nil, errors.InvalidInput(fmt.Sprintf("invalid iteration %q", part), err)
		}
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil, errors.InvalidInput("no iterations given", nil)
	}
	return out, nil
}

func newGenerateCmd() *cobra.Command {
	var restarts, iterations, points int
	var seed uint64
	var fileType string

	cmd := &cobra.Command{
		Use:   "generate <out-dir>",
		Short: "Write a synthetic results directory for trying out the analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := testkit.DefaultMixtureConfig()
			cfg.Restarts = restarts
			cfg.Iterations = iterations
			cfg.Points = points
			cfg.Seed = seed

			exp, err := testkit.Generate(cfg)
			if err != nil {
				return errors.InvalidInput("invalid generator settings", err)
			}
			if err := tables.WriteResults(args[0], exp.Map(), fileType); err != nil {
				return err
			}
			fmt.Printf("Wrote %d restarts x %d iterations to %s\n", restarts, iterations, args[0])
			return nil
		},
	}

	cmd.Flags().IntVar(&restarts, "restarts", 5, "Number of random restarts")
	cmd.Flags().IntVar(&iterations, "iterations", 6, "Active-learning iterations per restart")
	cmd.Flags().IntVar(&points, "points", 25, "Grid points on the parameter axis")
	cmd.Flags().Uint64Var(&seed, "seed", 42, "Random seed for deterministic output")
	cmd.Flags().StringVar(&fileType, "type", tables.TypeCSV, "Table file type: csv or xlsx")

	return cmd
}

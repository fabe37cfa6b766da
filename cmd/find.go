package main

import (
	"context"
	"io"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lelandsequel/CL-SEO-AUTO/internal/pipeline"
	"github.com/lelandsequel/CL-SEO-AUTO/internal/report"
)

// findOptions holds the parsed flags of the find command.
type findOptions struct {
	Industries     string
	Auto           bool
	Mode           string
	MaxPerIndustry int
	Output         string
	SavePath       string
	XLSXPath       string
}

var findOpts findOptions

var findCmd = &cobra.Command{
	Use:   "find LOCATION",
	Short: "Find SEO leads in a location",
	Example: `  seo-lead-finder find "Seattle, WA" --industries "dentists,plumbers,HVAC"
  seo-lead-finder find "Austin, TX" --auto
  seo-lead-finder find "Miami, FL" --industries "lawyers" --output json
  seo-lead-finder find "Portland, OR" --industries "landscaping" --save leads.csv`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if !cmd.Flags().Changed("max-per-industry") {
			findOpts.MaxPerIndustry = cfg.Pipeline.MaxPerIndustry
		}
		if cmd.Flags().Changed("concurrency") {
			c, _ := cmd.Flags().GetInt("concurrency")
			cfg.Pipeline.Concurrency = c
		}

		return runFind(ctx, cmd.OutOrStdout(), args[0], findOpts)
	},
}

// runFind resolves industries and the renderer, builds the pipeline, runs
// it, and renders and saves the leads. Flag errors and configuration errors
// are returned before any upstream call.
func runFind(ctx context.Context, out io.Writer, location string, opts findOptions) error {
	industries, err := findIndustries(opts)
	if err != nil {
		return err
	}

	renderer, err := report.New(report.Format(opts.Output))
	if err != nil {
		return err
	}

	env, err := initPipeline(cfg, "find")
	if err != nil {
		return err
	}

	zap.L().Info("SEO Lead Finder",
		zap.String("location", location),
		zap.Strings("industries", industries),
		zap.Int("max_per_industry", opts.MaxPerIndustry),
		zap.Float64("max_cost_usd", env.Cost.WorstCase(len(industries), opts.MaxPerIndustry)),
	)

	result, err := env.Pipeline.Run(ctx, pipeline.Request{
		Location:       location,
		Industries:     industries,
		MaxPerIndustry: opts.MaxPerIndustry,
	})
	if err != nil {
		return err
	}

	if err := renderer.Render(out, result.Leads); err != nil {
		return err
	}

	zap.L().Info("run summary",
		zap.String("run_id", result.RunID),
		zap.Int("text_searches", result.Usage.TextSearches),
		zap.Int("details", result.Usage.Details),
		zap.Int("analyses", result.Usage.Analyses),
		zap.Float64("estimated_cost_usd", result.EstimatedCostUSD),
	)

	return saveLeads(opts, result)
}

func findIndustries(opts findOptions) ([]string, error) {
	mode := pipeline.ModeAuto
	if !opts.Auto {
		m, err := pipeline.ParseMode(opts.Mode)
		if err != nil {
			return nil, err
		}
		mode = m
	}

	if mode == pipeline.ModeManual && len(pipeline.SplitIndustries(opts.Industries)) == 0 {
		return nil, eris.New("must specify either --industries or --auto")
	}
	return pipeline.ResolveIndustries(mode, opts.Industries)
}

func saveLeads(opts findOptions, result *pipeline.Result) error {
	if opts.SavePath == "" && opts.XLSXPath == "" {
		return nil
	}
	if len(result.Leads) == 0 {
		zap.L().Info("No leads to save.")
		return nil
	}

	if opts.SavePath != "" {
		if err := report.SaveCSV(opts.SavePath, result.Leads); err != nil {
			return err
		}
		zap.L().Info("Results saved", zap.String("path", opts.SavePath))
	}
	if opts.XLSXPath != "" {
		if err := report.SaveXLSX(opts.XLSXPath, result.Leads); err != nil {
			return err
		}
		zap.L().Info("Results saved", zap.String("path", opts.XLSXPath))
	}
	return nil
}

func init() {
	f := findCmd.Flags()
	f.StringVarP(&findOpts.Industries, "industries", "i", "", "comma-separated industries to search")
	f.BoolVar(&findOpts.Auto, "auto", false, "use default industries (dentists, plumbers, HVAC, lawyers, landscaping)")
	f.StringVar(&findOpts.Mode, "mode", "manual", "industry mode: manual, auto, or hybrid")
	f.IntVarP(&findOpts.MaxPerIndustry, "max-per-industry", "m", 3, "maximum results per industry")
	f.StringVarP(&findOpts.Output, "output", "o", "table", "output format: table, json, csv, or yaml")
	f.StringVarP(&findOpts.SavePath, "save", "s", "", "save results to a CSV file")
	f.StringVar(&findOpts.XLSXPath, "xlsx", "", "save results to an XLSX file")
	f.Int("concurrency", 1, "candidates evaluated in parallel (default from config)")
	rootCmd.AddCommand(findCmd)
}

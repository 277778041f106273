package main

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/pipeline"
	"github.com/sells-group/leadgen-cli/internal/store"
	"github.com/sells-group/leadgen-cli/internal/table"
)

var (
	enrichInput  string
	enrichOutput string
	enrichFormat string
	enrichLimit  int
	enrichDryRun bool
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Enrich a CSV or XLSX file of leads with owner and email information",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		t, err := readInput(enrichInput)
		if err != nil {
			return eris.Wrap(err, "enrich: read input")
		}
		leads, err := table.LeadsFromTable(t)
		if err != nil {
			return eris.Wrap(err, "enrich: parse leads")
		}

		leads = pipeline.Dedupe(leads)
		if enrichLimit > 0 && len(leads) > enrichLimit {
			leads = leads[:enrichLimit]
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Processing %d unique leads...\n", len(leads))

		if enrichDryRun {
			for i, l := range leads {
				fmt.Fprintf(out, "%d. %s (%s)\n", i+1, l.CompanyName, l.Website)
			}
			return nil
		}

		if err := cfg.Validate("enrich"); err != nil {
			return err
		}
		env, err := initEnv(ctx, true, false)
		if err != nil {
			return err
		}
		defer env.Close()

		start := time.Now()
		rows := env.Processor.Enrich(ctx, leads, printProgress(out))

		return finishBatch(ctx, cmd, env.Store, batchResult{
			source: model.RunSourceUpload,
			label:  filepath.Base(enrichInput),
			rows:   rows,
			output: enrichOutput,
			format: enrichFormat,
			prefix: table.PrefixProcessed,
			start:  start,
		})
	},
}

type batchResult struct {
	source model.RunSource
	label  string
	rows   []model.EnrichedLead
	output string
	format string
	prefix string
	start  time.Time
}

// finishBatch records the run and writes the export files.
func finishBatch(ctx context.Context, cmd *cobra.Command, st store.Store, b batchResult) error {
	out := cmd.OutOrStdout()

	run, err := recordRun(context.WithoutCancel(ctx), st, b.source, b.label, b.rows)
	if err != nil {
		zap.L().Warn("failed to record run", zap.Error(err))
	}

	paths, err := writeExports(table.FromEnriched(b.rows), b.output, b.format, b.prefix, time.Now())
	if err != nil {
		return eris.Wrap(err, "export results")
	}

	processed, failed := store.Counts(b.rows)
	fmt.Fprintf(out, "Processing complete! %d processed, %d failed in %s\n",
		processed, failed, time.Since(b.start).Round(time.Second))
	if run != nil {
		fmt.Fprintf(out, "Run ID: %s\n", run.ID)
	}
	for _, p := range paths {
		fmt.Fprintf(out, "Wrote %s\n", p)
	}
	if ctx.Err() != nil {
		return eris.Wrap(ctx.Err(), "interrupted")
	}
	return nil
}

func init() {
	f := enrichCmd.Flags()
	f.StringVar(&enrichInput, "input", "", "input CSV or XLSX file with company_name and Website columns")
	f.StringVar(&enrichOutput, "output", "", "output path (default processed_leads_<timestamp>.<ext>)")
	f.StringVar(&enrichFormat, "format", formatBoth, "output format: csv, xlsx or both")
	f.IntVar(&enrichLimit, "limit", 0, "process at most this many leads (0 = all)")
	f.BoolVar(&enrichDryRun, "dry-run", false, "list the leads that would be processed and exit")
	_ = enrichCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(enrichCmd)
}

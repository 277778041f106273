package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/leadsource"
	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/pipeline"
	"github.com/sells-group/leadgen-cli/internal/table"
)

var (
	genCategory string
	genKeyword  string
	genLocation string
	genRadius   int
	genMax      int
	genProcess  bool
	genOutput   string
	genFormat   string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Find businesses near a location through Google Places",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if genCategory == "" && genKeyword == "" {
			return eris.New("generate: --category or --keyword is required")
		}
		if err := leadsource.ValidateLocation(genLocation); err != nil {
			return eris.Wrap(err, "generate")
		}

		if err := cfg.Validate("generate"); err != nil {
			return err
		}
		if genProcess {
			if err := cfg.Validate("enrich"); err != nil {
				return err
			}
		}

		env, err := initEnv(ctx, genProcess, true)
		if err != nil {
			return err
		}
		defer env.Close()

		if !cmd.Flags().Changed("radius") && cfg.Source.RadiusMiles > 0 {
			genRadius = cfg.Source.RadiusMiles
		}
		if !cmd.Flags().Changed("max") && cfg.Source.MaxResults > 0 {
			genMax = cfg.Source.MaxResults
		}

		start := time.Now()
		q := leadsource.Query{
			Category:    genCategory,
			Keyword:     genKeyword,
			Location:    genLocation,
			RadiusMiles: genRadius,
			MaxResults:  genMax,
		}
		leads, err := env.Source.FindLeads(ctx, q)
		if err != nil {
			if len(leads) == 0 {
				return eris.Wrap(err, "generate: find leads")
			}
			zap.L().Warn("lead search incomplete, continuing with partial results",
				zap.Int("leads", len(leads)), zap.Error(err))
		}

		leads = pipeline.Dedupe(leads)
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Found %d unique leads\n", len(leads))
		if len(leads) == 0 {
			return nil
		}

		if !genProcess {
			for _, l := range leads {
				fmt.Fprintf(out, "Found: %s\n", l.CompanyName)
			}
			paths, err := writeExports(table.FromLeads(leads), genOutput, genFormat, table.PrefixGenerated, time.Now())
			if err != nil {
				return eris.Wrap(err, "export leads")
			}
			for _, p := range paths {
				fmt.Fprintf(out, "Wrote %s\n", p)
			}
			return nil
		}

		rows := env.Processor.Enrich(ctx, leads, printProgress(out))
		return finishBatch(ctx, cmd, env.Store, batchResult{
			source: model.RunSourceGenerate,
			label:  fmt.Sprintf("%s @ %s", firstNonEmpty(genKeyword, genCategory), genLocation),
			rows:   rows,
			output: genOutput,
			format: genFormat,
			prefix: table.PrefixGenerated,
			start:  start,
		})
	},
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func init() {
	f := generateCmd.Flags()
	f.StringVar(&genCategory, "category", "", "business category label (see 'categories') or free-form type")
	f.StringVar(&genKeyword, "keyword", "", "raw Places keyword; overrides --category")
	f.StringVar(&genLocation, "location", "", "search location in City, State format")
	f.IntVar(&genRadius, "radius", leadsource.DefaultRadiusMiles, "search radius in miles")
	f.IntVar(&genMax, "max", leadsource.DefaultMaxResults, "maximum number of leads")
	f.BoolVar(&genProcess, "process", false, "enrich the generated leads with owner and email information")
	f.StringVar(&genOutput, "output", "", "output path (default generated_leads_<timestamp>.<ext>)")
	f.StringVar(&genFormat, "format", formatBoth, "output format: csv, xlsx or both")
	_ = generateCmd.MarkFlagRequired("location")
	rootCmd.AddCommand(generateCmd)
}

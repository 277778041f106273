package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/table"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded enrichment runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		runs, err := st.ListRuns(ctx, runsLimit)
		if err != nil {
			return eris.Wrap(err, "runs: list")
		}
		return formatRunsList(cmd.OutOrStdout(), runs)
	},
}

var (
	runsShowFormat string
	runsShowOutput string
)

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show a run, or export its results with --format",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		run, err := st.GetRun(ctx, args[0])
		if err != nil {
			return eris.Wrapf(err, "runs: get %s", args[0])
		}
		rows, err := st.GetResults(ctx, run.ID)
		if err != nil {
			return eris.Wrapf(err, "runs: results %s", run.ID)
		}

		if runsShowFormat == "" {
			return formatRunDetail(cmd.OutOrStdout(), run, rows)
		}

		t := table.FromEnriched(rows)
		if runsShowOutput == "" || runsShowOutput == "-" {
			if runsShowFormat == formatBoth {
				return eris.New("runs: --format both requires --output")
			}
			return encodeTable(cmd.OutOrStdout(), t, runsShowFormat)
		}
		paths, err := writeExports(t, runsShowOutput, runsShowFormat, table.PrefixProcessed, time.Now())
		if err != nil {
			return eris.Wrap(err, "runs: export")
		}
		for _, p := range paths {
			fmt.Fprintf(os.Stderr, "Wrote %s\n", p)
		}
		return nil
	},
}

func formatRunsList(w io.Writer, runs []model.Run) error {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs found.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSOURCE\tLABEL\tTOTAL\tPROCESSED\tFAILED\tCREATED")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			truncateID(r.ID),
			r.Source,
			r.Label,
			r.Total,
			r.Processed,
			r.Failed,
			r.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	return tw.Flush()
}

func formatRunDetail(w io.Writer, run *model.Run, rows []model.EnrichedLead) error {
	fmt.Fprintf(w, "Run:      %s\n", run.ID)
	fmt.Fprintf(w, "Source:   %s\n", run.Source)
	fmt.Fprintf(w, "Label:    %s\n", run.Label)
	fmt.Fprintf(w, "Created:  %s\n", run.CreatedAt.Format(time.RFC3339))
	if run.FinishedAt != nil {
		fmt.Fprintf(w, "Finished: %s\n", run.FinishedAt.Format(time.RFC3339))
	} else {
		fmt.Fprintln(w, "Finished: -")
	}
	fmt.Fprintf(w, "Results:  %d total, %d processed, %d failed\n\n", run.Total, run.Processed, run.Failed)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "COMPANY\tWEBSITE\tOWNER\tCONFIDENCE\tEMAILS")
	for _, r := range rows {
		owner := r.OwnerName
		if !r.Processed {
			owner = "error: " + r.Error
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n",
			r.CompanyName,
			r.Website,
			owner,
			r.Confidence,
			len(r.DiscoveredEmails)+len(r.PotentialEmails),
		)
	}
	return tw.Flush()
}

// truncateID shortens a UUID to its first 8 characters for display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func init() {
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "maximum number of runs to list")
	runsShowCmd.Flags().StringVar(&runsShowFormat, "format", "", "export results as csv or xlsx instead of a summary")
	runsShowCmd.Flags().StringVarP(&runsShowOutput, "output", "o", "", "write the export to this path (default stdout)")
	runsCmd.AddCommand(runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}

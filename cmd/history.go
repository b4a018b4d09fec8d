package cmd

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"invoiceqc/internal/report"
	"invoiceqc/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded validation runs",
	Long:  `List validation runs recorded with --db, newest first.`,
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().Int("limit", 20, "Maximum number of runs to show")
	historyCmd.Flags().Bool("json", false, "Output as JSON")
}

func runHistory(cmd *cobra.Command, _ []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := store.Open(ctx, appConfig.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := db.ListRuns(ctx, limit)
	if err != nil {
		return err
	}

	if jsonOutput {
		return report.WriteJSON(cmd.OutOrStdout(), runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN ID\tCREATED\tSOURCE\tTOTAL\tVALID\tINVALID\tTOP ERRORS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			run.ID,
			run.CreatedAt.Local().Format("2006-01-02 15:04"),
			run.Source,
			run.Summary.TotalInvoices,
			run.Summary.ValidInvoices,
			run.Summary.InvalidInvoices,
			topErrors(run, 3),
		)
	}
	return w.Flush()
}

// topErrors formats the n most frequent error codes of run.
func topErrors(run store.Run, n int) string {
	codes := report.SortedCodes(run.Summary)
	counts := run.Summary.ErrorCounts
	sort.SliceStable(codes, func(i, j int) bool {
		return counts[codes[i]] > counts[codes[j]]
	})
	if len(codes) > n {
		codes = codes[:n]
	}
	parts := make([]string, 0, len(codes))
	for _, c := range codes {
		parts = append(parts, fmt.Sprintf("%s (%d)", c, counts[c]))
	}
	return strings.Join(parts, ", ")
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/HeroicSpider/ai-news-analyst/internal/publish"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent pipeline runs",
	RunE:  runHistory,
}

var historyOutcomesCmd = &cobra.Command{
	Use:   "outcomes [run-id]",
	Short: "Show per-candidate outcomes for one run",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryOutcomes,
}

var historySearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Full-text search candidate titles across all runs",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistorySearch,
}

func init() {
	historyCmd.Flags().Int("limit", 10, "maximum runs to list")

	historyCmd.AddCommand(historyOutcomesCmd)
	historyCmd.AddCommand(historySearchCmd)
	rootCmd.AddCommand(historyCmd)
}

func openHistory() (*publish.History, error) {
	return publish.OpenHistory(viper.GetString("publish.history_dir"))
}

func runHistory(cmd *cobra.Command, args []string) error {
	h, err := openHistory()
	if err != nil {
		return err
	}
	defer h.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := h.RecentRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIMESTAMP\tSTATUS\tSEEDED\tAPPROVED\tSKIPPED")
	for _, r := range runs {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%d\n",
			r.ID, r.Timestamp.Format("2006-01-02 15:04"), r.Status, r.Seeded, r.Approved, r.Skipped)
	}
	return w.Flush()
}

func runHistoryOutcomes(cmd *cobra.Command, args []string) error {
	runID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid run ID %q", args[0])
	}

	h, err := openHistory()
	if err != nil {
		return err
	}
	defer h.Close()

	outcomes, err := h.Outcomes(cmd.Context(), runID)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CANDIDATE\tSTATE\tREASON\tATTEMPTS\tTITLE")
	for _, o := range outcomes {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", o.CandidateID, o.State, o.SkipReason, o.Attempts, o.Title)
	}
	return w.Flush()
}

func runHistorySearch(cmd *cobra.Command, args []string) error {
	h, err := openHistory()
	if err != nil {
		return err
	}
	defer h.Close()

	outcomes, err := h.SearchOutcomes(cmd.Context(), args[0], 20)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CANDIDATE\tSTATE\tREASON\tTITLE")
	for _, o := range outcomes {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", o.CandidateID, o.State, o.SkipReason, o.Title)
	}
	return w.Flush()
}

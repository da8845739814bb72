package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/rsclarke/darkdork/internal/events"
)

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Report on search activity",
}

var analyticsFlags struct {
	days      int
	eventType string
	limit     int
}

var analyticsSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Summarise searches and open findings over a trailing window",
	Args:  cobra.NoArgs,
	RunE:  runAnalyticsSummary,
}

var analyticsEventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List recorded analytics events",
	Args:  cobra.NoArgs,
	RunE:  runAnalyticsEvents,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show totals across the store",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(analyticsCmd, statsCmd)
	analyticsCmd.AddCommand(analyticsSummaryCmd, analyticsEventsCmd)

	analyticsSummaryCmd.Flags().IntVar(&analyticsFlags.days, "days", 30, "window size in days")
	analyticsEventsCmd.Flags().StringVar(&analyticsFlags.eventType, "type", "", "only list events of this type")
	analyticsEventsCmd.Flags().IntVar(&analyticsFlags.limit, "limit", 50, "maximum number of events")
}

func runAnalyticsSummary(cmd *cobra.Command, args []string) error {
	repo, err := openRepository()
	if err != nil {
		return err
	}
	defer repo.Close()

	summary, err := repo.GetAnalyticsSummary(analyticsFlags.days)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), summary)
}

func runAnalyticsEvents(cmd *cobra.Command, args []string) error {
	repo, err := openRepository()
	if err != nil {
		return err
	}
	defer repo.Close()

	evts, err := repo.ListAnalytics(events.Type(analyticsFlags.eventType), analyticsFlags.limit)
	if err != nil {
		return err
	}
	if len(evts) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No events found.")
		return nil
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%-6s  %-20s  %-16s  %s\n", "ID", "TYPE", "RECORDED", "DATA")
	for _, e := range evts {
		fmt.Fprintf(w, "%-6d  %-20s  %-16s  %v\n",
			e.ID, e.EventType, humanize.Time(time.Unix(e.RecordedAt, 0)), e.EventData)
	}
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	repo, err := openRepository()
	if err != nil {
		return err
	}
	defer repo.Close()

	stats, err := repo.GetStatistics()
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), stats)
}

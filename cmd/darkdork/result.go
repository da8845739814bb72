package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/rsclarke/darkdork/internal/events"
	"github.com/rsclarke/darkdork/internal/repository"
)

var resultCmd = &cobra.Command{
	Use:   "result",
	Short: "Record and verify search results",
}

var resultFlags struct {
	title    string
	snippet  string
	severity string
	notes    string
	meta     map[string]string
	rejected bool
}

var resultAddCmd = &cobra.Command{
	Use:   "add <search-id> <url>",
	Short: "Add a result to a search",
	Args:  cobra.ExactArgs(2),
	RunE:  runResultAdd,
}

var resultListCmd = &cobra.Command{
	Use:   "list <search-id>",
	Short: "List the results of a search",
	Args:  cobra.ExactArgs(1),
	RunE:  runResultList,
}

var resultVerifyCmd = &cobra.Command{
	Use:   "verify <id>",
	Short: "Mark a result as verified",
	Long: `Mark a result as verified, or as not verified with --rejected.
Non-empty --notes replace the result's notes.`,
	Args: cobra.ExactArgs(1),
	RunE: runResultVerify,
}

func init() {
	rootCmd.AddCommand(resultCmd)
	resultCmd.AddCommand(resultAddCmd, resultListCmd, resultVerifyCmd)

	f := resultAddCmd.Flags()
	f.StringVar(&resultFlags.title, "title", "", "page title")
	f.StringVar(&resultFlags.snippet, "snippet", "", "result snippet")
	f.StringVar(&resultFlags.severity, "severity", "", "Critical, High, Medium, Low or Info")
	f.StringVar(&resultFlags.notes, "notes", "", "notes")
	f.StringToStringVar(&resultFlags.meta, "meta", nil, "metadata as key=value pairs")

	f = resultVerifyCmd.Flags()
	f.StringVar(&resultFlags.notes, "notes", "", "replace the result notes")
	f.BoolVar(&resultFlags.rejected, "rejected", false, "mark as not verified")
}

func runResultAdd(cmd *cobra.Command, args []string) error {
	searchID, err := parseID(args[0], "search")
	if err != nil {
		return err
	}
	repo, err := openRepository()
	if err != nil {
		return err
	}
	defer repo.Close()

	id, err := repo.AddResult(repository.NewResult{
		SearchID: searchID,
		URL:      args[1],
		Title:    resultFlags.title,
		Snippet:  resultFlags.snippet,
		Severity: resultFlags.severity,
		Notes:    resultFlags.notes,
		Metadata: metadata(resultFlags.meta),
	})
	if err != nil {
		return err
	}

	recordEvent(repo, events.TypeResultAdded, events.Data{"result_id": id, "search_id": searchID})
	fmt.Fprintf(cmd.OutOrStdout(), "Result %d added.\n", id)
	return nil
}

func runResultList(cmd *cobra.Command, args []string) error {
	searchID, err := parseID(args[0], "search")
	if err != nil {
		return err
	}
	repo, err := openRepository()
	if err != nil {
		return err
	}
	defer repo.Close()

	results, err := repo.GetResults(searchID)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No results found.")
		return nil
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%-5s  %-8s  %-8s  %-16s  %s\n", "ID", "VERIFIED", "SEVERITY", "FOUND", "URL")
	for _, r := range results {
		verified := "no"
		if r.Verified {
			verified = "yes"
		}
		fmt.Fprintf(w, "%-5d  %-8s  %-8s  %-16s  %s\n",
			r.ID, verified, dash(r.Severity), humanize.Time(time.Unix(r.FoundAt, 0)), r.URL)
	}
	return nil
}

func runResultVerify(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "result")
	if err != nil {
		return err
	}
	repo, err := openRepository()
	if err != nil {
		return err
	}
	defer repo.Close()

	r, err := repo.GetResult(id)
	if err != nil {
		return err
	}
	if r == nil {
		return fmt.Errorf("result %d not found", id)
	}
	if err := repo.VerifyResult(id, !resultFlags.rejected, &resultFlags.notes); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Result %d updated.\n", id)
	return nil
}

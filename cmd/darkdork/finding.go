package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/rsclarke/darkdork/internal/events"
	"github.com/rsclarke/darkdork/internal/models"
	"github.com/rsclarke/darkdork/internal/repository"
)

var findingCmd = &cobra.Command{
	Use:   "finding",
	Short: "Track findings raised from results",
}

var findingCreateFlags struct {
	description string
	severity    string
	cvss        float64
	meta        map[string]string
}

var findingListFlags struct {
	severity string
	status   string
}

var findingCreateCmd = &cobra.Command{
	Use:   "create <result-id> <title>",
	Short: "Raise a finding from a result",
	Long:  `Raise an open finding from a result. The result is marked verified in the same transaction.`,
	Args:  cobra.ExactArgs(2),
	RunE:  runFindingCreate,
}

var findingListCmd = &cobra.Command{
	Use:   "list",
	Short: "List findings",
	Args:  cobra.NoArgs,
	RunE:  runFindingList,
}

var findingRemediateCmd = &cobra.Command{
	Use:   "remediate <id>",
	Short: "Mark a finding as remediated",
	Args:  cobra.ExactArgs(1),
	RunE:  runFindingRemediate,
}

func init() {
	rootCmd.AddCommand(findingCmd)
	findingCmd.AddCommand(findingCreateCmd, findingListCmd, findingRemediateCmd)

	f := findingCreateCmd.Flags()
	f.StringVar(&findingCreateFlags.description, "description", "", "description")
	f.StringVar(&findingCreateFlags.severity, "severity", "", "Critical, High, Medium, Low or Info")
	f.Float64Var(&findingCreateFlags.cvss, "cvss", 0, "CVSS score (0-10)")
	f.StringToStringVar(&findingCreateFlags.meta, "meta", nil, "metadata as key=value pairs")
	_ = findingCreateCmd.MarkFlagRequired("severity")

	f = findingListCmd.Flags()
	f.StringVar(&findingListFlags.severity, "severity", "", "only list findings with this severity")
	f.StringVar(&findingListFlags.status, "status", "", "open or remediated")
}

func runFindingCreate(cmd *cobra.Command, args []string) error {
	resultID, err := parseID(args[0], "result")
	if err != nil {
		return err
	}

	var cvss *float64
	if cmd.Flags().Changed("cvss") {
		cvss = &findingCreateFlags.cvss
	}

	repo, err := openRepository()
	if err != nil {
		return err
	}
	defer repo.Close()

	var finding *models.Finding
	err = repo.WithTx(func(tx *repository.Tx) error {
		id, err := tx.CreateFinding(repository.NewFinding{
			ResultID:    resultID,
			Title:       args[1],
			Description: findingCreateFlags.description,
			Severity:    findingCreateFlags.severity,
			CVSSScore:   cvss,
			Metadata:    metadata(findingCreateFlags.meta),
		})
		if err != nil {
			return err
		}
		if finding, err = tx.GetFinding(id); err != nil {
			return err
		}
		return tx.VerifyResult(resultID, true, nil)
	})
	if err != nil {
		return err
	}

	id := finding.ID
	recordEvent(repo, events.TypeFindingCreated, events.Data{"finding_id": id, "result_id": resultID, "severity": string(finding.Severity)})
	fmt.Fprintf(cmd.OutOrStdout(), "Finding %d created.\n", id)
	return nil
}

func runFindingList(cmd *cobra.Command, args []string) error {
	repo, err := openRepository()
	if err != nil {
		return err
	}
	defer repo.Close()

	findings, err := repo.ListFindings(repository.FindingFilter{
		Severity: findingListFlags.severity,
		Status:   findingListFlags.status,
	})
	if err != nil {
		return err
	}
	if len(findings) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No findings found.")
		return nil
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%-5s  %-6s  %-8s  %-10s  %-4s  %-16s  %s\n", "ID", "RESULT", "SEVERITY", "STATUS", "CVSS", "REPORTED", "TITLE")
	for _, f := range findings {
		cvss := "-"
		if f.CVSSScore != nil {
			cvss = fmt.Sprintf("%.1f", *f.CVSSScore)
		}
		fmt.Fprintf(w, "%-5d  %-6d  %-8s  %-10s  %-4s  %-16s  %s\n",
			f.ID, f.ResultID, f.Severity, f.Status, cvss,
			humanize.Time(time.Unix(f.ReportedAt, 0)), f.Title)
	}
	return nil
}

func runFindingRemediate(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "finding")
	if err != nil {
		return err
	}
	repo, err := openRepository()
	if err != nil {
		return err
	}
	defer repo.Close()

	f, err := repo.GetFinding(id)
	if err != nil {
		return err
	}
	if f == nil {
		return fmt.Errorf("finding %d not found", id)
	}
	if err := repo.RemediateFinding(id); err != nil {
		return err
	}

	recordEvent(repo, events.TypeFindingRemediated, events.Data{"finding_id": id})
	fmt.Fprintf(cmd.OutOrStdout(), "Finding %d remediated.\n", id)
	return nil
}

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rsclarke/darkdork/internal/events"
	"github.com/rsclarke/darkdork/internal/repository"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Keep the audit trail of report exports",
}

var exportFlags struct {
	project int64
	count   int
}

var exportRecordCmd = &cobra.Command{
	Use:   "record <format> <filename>",
	Short: "Record an export produced by a report renderer",
	Args:  cobra.ExactArgs(2),
	RunE:  runExportRecord,
}

var exportListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded exports",
	Args:  cobra.NoArgs,
	RunE:  runExportList,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.AddCommand(exportRecordCmd, exportListCmd)

	exportRecordCmd.Flags().Int64Var(&exportFlags.project, "project", 0, "project the export covers")
	exportRecordCmd.Flags().IntVar(&exportFlags.count, "count", 0, "number of records exported")
	exportListCmd.Flags().Int64Var(&exportFlags.project, "project", 0, "only list exports of this project")
}

func runExportRecord(cmd *cobra.Command, args []string) error {
	repo, err := openRepository()
	if err != nil {
		return err
	}
	defer repo.Close()

	id, err := repo.RecordExport(repository.NewExport{
		ProjectID:   optionalID(exportFlags.project),
		Format:      args[0],
		Filename:    args[1],
		RecordCount: exportFlags.count,
	})
	if err != nil {
		return err
	}

	recordEvent(repo, events.TypeExportRecorded, events.Data{"export_id": id, "format": args[0]})
	fmt.Fprintf(cmd.OutOrStdout(), "Export %d recorded.\n", id)
	return nil
}

func runExportList(cmd *cobra.Command, args []string) error {
	repo, err := openRepository()
	if err != nil {
		return err
	}
	defer repo.Close()

	exports, err := repo.ListExports(optionalID(exportFlags.project))
	if err != nil {
		return err
	}
	if len(exports) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No exports found.")
		return nil
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%-5s  %-7s  %-6s  %-7s  %-19s  %s\n", "ID", "PROJECT", "FORMAT", "RECORDS", "EXPORTED", "FILE")
	for _, e := range exports {
		project := "-"
		if e.ProjectID != nil {
			project = fmt.Sprint(*e.ProjectID)
		}
		exported := time.Unix(e.ExportedAt, 0).Format("2006-01-02 15:04:05")
		fmt.Fprintf(w, "%-5d  %-7s  %-6s  %-7d  %-19s  %s\n",
			e.ID, project, e.Format, e.RecordCount, exported, e.Filename)
	}
	return nil
}

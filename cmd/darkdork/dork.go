package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rsclarke/darkdork/internal/events"
	"github.com/rsclarke/darkdork/internal/library"
	"github.com/rsclarke/darkdork/internal/models"
	"github.com/rsclarke/darkdork/internal/repository"
)

var dorkCmd = &cobra.Command{
	Use:   "dork",
	Short: "Manage the dork library",
}

var dorkAddFlags struct {
	name        string
	category    string
	description string
	severity    string
	tags        []string
}

var dorkAddCmd = &cobra.Command{
	Use:   "add <query>",
	Short: "Add a dork to the library",
	Args:  cobra.ExactArgs(1),
	RunE:  runDorkAdd,
}

var dorkSearchFlags struct {
	query    string
	category string
	tags     []string
	severity string
	json     bool
}

var dorkSearchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search the library",
	Long: `Search the library. --query matches name, query and description
case-insensitively; --tags matches dorks carrying any of the given tags.
All given filters must match.`,
	Args: cobra.NoArgs,
	RunE: runDorkSearch,
}

var dorkShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a dork",
	Args:  cobra.ExactArgs(1),
	RunE:  runDorkShow,
}

var dorkUseFlags struct {
	record  bool
	project int64
	target  string
	url     string
	notes   string
}

var dorkUseCmd = &cobra.Command{
	Use:   "use <id>",
	Short: "Record a use of a dork",
	Long: `Record a use of a dork. With --record the dork's query is also stored
as an executed search, optionally under a project.`,
	Args: cobra.ExactArgs(1),
	RunE: runDorkUse,
}

var dorkPopularFlags struct {
	limit int
}

var dorkPopularCmd = &cobra.Command{
	Use:   "popular",
	Short: "List the most used dorks",
	Args:  cobra.NoArgs,
	RunE:  runDorkPopular,
}

var dorkStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show library statistics",
	Args:  cobra.NoArgs,
	RunE:  runDorkStats,
}

var dorkCategoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List categories with their dork counts",
	Args:  cobra.NoArgs,
	RunE:  runDorkCategories,
}

var dorkExportCmd = &cobra.Command{
	Use:   "export <category> <file>",
	Short: "Export one category to a JSON or YAML file",
	Args:  cobra.ExactArgs(2),
	RunE:  runDorkExport,
}

var dorkImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import dorks from a JSON or YAML file",
	Long:  `Import dorks from a JSON or YAML file. Queries already in the library are skipped.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDorkImport,
}

var dorkSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill an empty library with the built-in dorks",
	Args:  cobra.NoArgs,
	RunE:  runDorkSeed,
}

func init() {
	rootCmd.AddCommand(dorkCmd)
	dorkCmd.AddCommand(dorkAddCmd, dorkSearchCmd, dorkShowCmd, dorkUseCmd, dorkPopularCmd,
		dorkStatsCmd, dorkCategoriesCmd, dorkExportCmd, dorkImportCmd, dorkSeedCmd)

	f := dorkAddCmd.Flags()
	f.StringVar(&dorkAddFlags.name, "name", "", "display name")
	f.StringVar(&dorkAddFlags.category, "category", "", "category")
	f.StringVar(&dorkAddFlags.description, "description", "", "description")
	f.StringVar(&dorkAddFlags.severity, "severity", "Info", "Critical, High, Medium, Low or Info")
	f.StringSliceVar(&dorkAddFlags.tags, "tags", nil, "comma separated tags")

	f = dorkSearchCmd.Flags()
	f.StringVarP(&dorkSearchFlags.query, "query", "q", "", "text to match")
	f.StringVar(&dorkSearchFlags.category, "category", "", "exact category")
	f.StringSliceVar(&dorkSearchFlags.tags, "tags", nil, "match any of these tags")
	f.StringVar(&dorkSearchFlags.severity, "severity", "", "exact severity")
	f.BoolVar(&dorkSearchFlags.json, "json", false, "print JSON")

	f = dorkUseCmd.Flags()
	f.BoolVar(&dorkUseFlags.record, "record", false, "also record an executed search")
	f.Int64Var(&dorkUseFlags.project, "project", 0, "project id for the recorded search")
	f.StringVar(&dorkUseFlags.target, "target", "", "target domain for the recorded search")
	f.StringVar(&dorkUseFlags.url, "url", "", "search URL for the recorded search")
	f.StringVar(&dorkUseFlags.notes, "notes", "", "notes for the recorded search")

	dorkPopularCmd.Flags().IntVar(&dorkPopularFlags.limit, "limit", 10, "number of dorks to list")
}

func runDorkAdd(cmd *cobra.Command, args []string) error {
	lib, err := openLibrary()
	if err != nil {
		return err
	}

	id, err := lib.Add(library.NewDork{
		Query:       args[0],
		Name:        dorkAddFlags.name,
		Category:    dorkAddFlags.category,
		Description: dorkAddFlags.description,
		Severity:    dorkAddFlags.severity,
		Tags:        dorkAddFlags.tags,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Dork %d added.\n", id)
	return nil
}

func runDorkSearch(cmd *cobra.Command, args []string) error {
	lib, err := openLibrary()
	if err != nil {
		return err
	}

	filter := library.Filter{
		Query:    dorkSearchFlags.query,
		Category: dorkSearchFlags.category,
		Tags:     dorkSearchFlags.tags,
	}
	if dorkSearchFlags.severity != "" {
		sev, err := models.ParseSeverity(dorkSearchFlags.severity)
		if err != nil {
			return err
		}
		filter.Severity = sev
	}

	dorks := lib.Search(filter)
	if dorkSearchFlags.json {
		return printJSON(cmd.OutOrStdout(), dorks)
	}
	if len(dorks) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No dorks found.")
		return nil
	}
	printDorkTable(cmd.OutOrStdout(), dorks)
	return nil
}

func runDorkShow(cmd *cobra.Command, args []string) error {
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid dork id %q", args[0])
	}
	lib, err := openLibrary()
	if err != nil {
		return err
	}

	d, ok := lib.Get(id)
	if !ok {
		return fmt.Errorf("dork %d not found", id)
	}
	return printJSON(cmd.OutOrStdout(), d)
}

func runDorkUse(cmd *cobra.Command, args []string) error {
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid dork id %q", args[0])
	}
	lib, err := openLibrary()
	if err != nil {
		return err
	}
	d, ok := lib.Get(id)
	if !ok {
		return fmt.Errorf("dork %d not found", id)
	}

	repo, err := openRepository()
	if err != nil {
		return err
	}
	defer repo.Close()

	if err := lib.RecordUsage(id); err != nil {
		return err
	}
	data := events.Data{"dork_id": id, "category": d.Category}

	if dorkUseFlags.record {
		searchID, err := repo.RecordSearch(repository.NewSearch{
			DorkQuery:    d.Query,
			ProjectID:    optionalID(dorkUseFlags.project),
			TargetDomain: dorkUseFlags.target,
			SearchURL:    dorkUseFlags.url,
			UserNotes:    dorkUseFlags.notes,
		})
		if err != nil {
			return err
		}
		data = data.With("search_id", searchID)
		recordEvent(repo, events.TypeSearchRecorded, events.Data{"search_id": searchID, "dork_id": id})
		fmt.Fprintf(cmd.OutOrStdout(), "Search %d recorded.\n", searchID)
	}

	recordEvent(repo, events.TypeDorkUsed, data)
	fmt.Fprintf(cmd.OutOrStdout(), "%s\n", d.Query)
	return nil
}

func runDorkPopular(cmd *cobra.Command, args []string) error {
	lib, err := openLibrary()
	if err != nil {
		return err
	}

	dorks := lib.MostPopular(dorkPopularFlags.limit)
	if len(dorks) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No dorks found.")
		return nil
	}
	printDorkTable(cmd.OutOrStdout(), dorks)
	return nil
}

func runDorkStats(cmd *cobra.Command, args []string) error {
	lib, err := openLibrary()
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), lib.Statistics())
}

func runDorkCategories(cmd *cobra.Command, args []string) error {
	lib, err := openLibrary()
	if err != nil {
		return err
	}

	counts := lib.CategoryCounts()
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%-28s  %s\n", "CATEGORY", "DORKS")
	for _, name := range names {
		fmt.Fprintf(w, "%-28s  %d\n", dash(name), counts[name])
	}
	return nil
}

func runDorkExport(cmd *cobra.Command, args []string) error {
	lib, err := openLibrary()
	if err != nil {
		return err
	}

	n, err := lib.ExportCategory(args[0], args[1])
	if err != nil {
		return err
	}

	if repo, err := openRepository(); err == nil {
		recordEvent(repo, events.TypeLibraryExported, events.Data{"category": args[0], "file": args[1], "count": n})
		_ = repo.Close()
	} else {
		logger.Warn("analytics unavailable", zap.Error(err))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported %s dorks to %s.\n", humanize.Comma(int64(n)), args[1])
	return nil
}

func runDorkImport(cmd *cobra.Command, args []string) error {
	lib, err := openLibrary()
	if err != nil {
		return err
	}

	n, err := lib.Import(args[0])
	if err != nil {
		return err
	}

	if repo, err := openRepository(); err == nil {
		recordEvent(repo, events.TypeLibraryImported, events.Data{"file": args[0], "count": n})
		_ = repo.Close()
	} else {
		logger.Warn("analytics unavailable", zap.Error(err))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Imported %s new dorks (library now holds %s).\n",
		humanize.Comma(int64(n)), humanize.Comma(int64(lib.Len())))
	return nil
}

func runDorkSeed(cmd *cobra.Command, args []string) error {
	lib := library.New(cfg.LibraryPath, logger)
	n, err := lib.Seed()
	if err != nil {
		return err
	}
	if n == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Library is not empty, nothing seeded.")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d dorks into %s.\n", n, lib.Path())
	return nil
}

func printDorkTable(w io.Writer, dorks []library.Dork) {
	fmt.Fprintf(w, "%-5s  %-8s  %-20s  %-5s  %-14s  %s\n", "ID", "SEVERITY", "CATEGORY", "USES", "LAST USED", "QUERY")
	for _, d := range dorks {
		lastUsed := "never"
		if d.LastUsed != nil {
			lastUsed = humanize.RelTime(*d.LastUsed, time.Now(), "ago", "from now")
		}
		fmt.Fprintf(w, "%-5d  %-8s  %-20s  %-5d  %-14s  %s\n",
			d.ID, d.Severity, truncate(dash(d.Category), 20), d.UsageCount, lastUsed,
			strings.TrimSpace(d.Query))
	}
}

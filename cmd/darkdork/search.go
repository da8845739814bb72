package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/rsclarke/darkdork/internal/events"
	"github.com/rsclarke/darkdork/internal/repository"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Record and inspect executed searches",
}

var searchFlags struct {
	project int64
	target  string
	url     string
	notes   string
	tags    []string
	limit   int
}

var searchRecordCmd = &cobra.Command{
	Use:   "record <query>",
	Short: "Record an executed search",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearchRecord,
}

var searchListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent searches",
	Args:  cobra.NoArgs,
	RunE:  runSearchList,
}

var searchShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a search with its results and tags",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearchShow,
}

var searchTagCmd = &cobra.Command{
	Use:   "tag <id> <tag>...",
	Short: "Tag a search",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runSearchTag,
}

var searchTagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List all tags",
	Args:  cobra.NoArgs,
	RunE:  runSearchTags,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.AddCommand(searchRecordCmd, searchListCmd, searchShowCmd, searchTagCmd, searchTagsCmd)

	f := searchRecordCmd.Flags()
	f.Int64Var(&searchFlags.project, "project", 0, "project id")
	f.StringVar(&searchFlags.target, "target", "", "target domain")
	f.StringVar(&searchFlags.url, "url", "", "search URL")
	f.StringVar(&searchFlags.notes, "notes", "", "notes")
	f.StringSliceVar(&searchFlags.tags, "tags", nil, "comma separated tags")

	f = searchListCmd.Flags()
	f.Int64Var(&searchFlags.project, "project", 0, "only list searches of this project")
	f.IntVar(&searchFlags.limit, "limit", repository.DefaultSearchLimit, "maximum number of searches")
}

func runSearchRecord(cmd *cobra.Command, args []string) error {
	repo, err := openRepository()
	if err != nil {
		return err
	}
	defer repo.Close()

	var id int64
	err = repo.WithTx(func(tx *repository.Tx) error {
		var err error
		id, err = tx.RecordSearch(repository.NewSearch{
			DorkQuery:    args[0],
			ProjectID:    optionalID(searchFlags.project),
			TargetDomain: searchFlags.target,
			SearchURL:    searchFlags.url,
			UserNotes:    searchFlags.notes,
		})
		if err != nil {
			return err
		}
		for _, tag := range searchFlags.tags {
			if err := tx.TagSearch(id, tag); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	recordEvent(repo, events.TypeSearchRecorded, events.Data{"search_id": id})
	fmt.Fprintf(cmd.OutOrStdout(), "Search %d recorded.\n", id)
	return nil
}

func runSearchList(cmd *cobra.Command, args []string) error {
	repo, err := openRepository()
	if err != nil {
		return err
	}
	defer repo.Close()

	searches, err := repo.ListSearches(optionalID(searchFlags.project), searchFlags.limit)
	if err != nil {
		return err
	}
	if len(searches) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No searches found.")
		return nil
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%-5s  %-7s  %-20s  %-16s  %s\n", "ID", "PROJECT", "TARGET", "EXECUTED", "QUERY")
	for _, s := range searches {
		project := "-"
		if s.ProjectID != nil {
			project = fmt.Sprint(*s.ProjectID)
		}
		fmt.Fprintf(w, "%-5d  %-7s  %-20s  %-16s  %s\n",
			s.ID, project, truncate(dash(s.TargetDomain), 20),
			humanize.Time(time.Unix(s.ExecutedAt, 0)), s.DorkQuery)
	}
	return nil
}

func runSearchShow(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "search")
	if err != nil {
		return err
	}
	repo, err := openRepository()
	if err != nil {
		return err
	}
	defer repo.Close()

	s, err := repo.GetSearch(id)
	if err != nil {
		return err
	}
	if s == nil {
		return fmt.Errorf("search %d not found", id)
	}
	results, err := repo.GetResults(id)
	if err != nil {
		return err
	}
	tags, err := repo.GetSearchTags(id)
	if err != nil {
		return err
	}

	return printJSON(cmd.OutOrStdout(), map[string]any{
		"search":  s,
		"tags":    tags,
		"results": results,
	})
}

func runSearchTag(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "search")
	if err != nil {
		return err
	}
	repo, err := openRepository()
	if err != nil {
		return err
	}
	defer repo.Close()

	for _, tag := range args[1:] {
		if err := repo.TagSearch(id, tag); err != nil {
			return err
		}
	}

	tags, err := repo.GetSearchTags(id)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Search %d tags: %s\n", id, strings.Join(tags, ", "))
	return nil
}

func runSearchTags(cmd *cobra.Command, args []string) error {
	repo, err := openRepository()
	if err != nil {
		return err
	}
	defer repo.Close()

	tags, err := repo.ListTags()
	if err != nil {
		return err
	}
	if len(tags) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No tags found.")
		return nil
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%-5s  %-20s  %-9s  %s\n", "ID", "NAME", "COLOR", "CREATED")
	for _, t := range tags {
		color := "-"
		if t.Color != nil {
			color = *t.Color
		}
		fmt.Fprintf(w, "%-5d  %-20s  %-9s  %s\n", t.ID, t.Name, color, humanize.Time(time.Unix(t.CreatedAt, 0)))
	}
	return nil
}

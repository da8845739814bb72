package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/rsclarke/darkdork/internal/repository"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
}

var projectFlags struct {
	name        string
	description string
	target      string
	status      string
	meta        map[string]string
}

var projectCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectCreate,
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	Args:  cobra.NoArgs,
	RunE:  runProjectList,
}

var projectShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a project and its recent searches",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectShow,
}

var projectUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update project fields",
	Long:  `Update project fields. Only the flags given are changed.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectUpdate,
}

func init() {
	rootCmd.AddCommand(projectCmd)
	projectCmd.AddCommand(projectCreateCmd, projectListCmd, projectShowCmd, projectUpdateCmd)

	for _, c := range []*cobra.Command{projectCreateCmd, projectUpdateCmd} {
		c.Flags().StringVar(&projectFlags.description, "description", "", "description")
		c.Flags().StringVar(&projectFlags.target, "target", "", "target domain")
		c.Flags().StringToStringVar(&projectFlags.meta, "meta", nil, "metadata as key=value pairs")
	}
	projectUpdateCmd.Flags().StringVar(&projectFlags.name, "name", "", "project name")
	projectUpdateCmd.Flags().StringVar(&projectFlags.status, "status", "", "project status")
	projectListCmd.Flags().StringVar(&projectFlags.status, "status", "", "only list projects with this status")
}

func metadata(m map[string]string) map[string]any {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func runProjectCreate(cmd *cobra.Command, args []string) error {
	repo, err := openRepository()
	if err != nil {
		return err
	}
	defer repo.Close()

	id, err := repo.CreateProject(repository.NewProject{
		Name:         args[0],
		Description:  projectFlags.description,
		TargetDomain: projectFlags.target,
		Metadata:     metadata(projectFlags.meta),
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Project %d created.\n", id)
	return nil
}

func runProjectList(cmd *cobra.Command, args []string) error {
	repo, err := openRepository()
	if err != nil {
		return err
	}
	defer repo.Close()

	projects, err := repo.ListProjects(projectFlags.status)
	if err != nil {
		return err
	}
	if len(projects) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No projects found.")
		return nil
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%-5s  %-24s  %-24s  %-10s  %s\n", "ID", "NAME", "TARGET", "STATUS", "UPDATED")
	for _, p := range projects {
		fmt.Fprintf(w, "%-5d  %-24s  %-24s  %-10s  %s\n",
			p.ID, truncate(p.Name, 24), truncate(dash(p.TargetDomain), 24), p.Status,
			humanize.Time(time.Unix(p.UpdatedAt, 0)))
	}
	return nil
}

func runProjectShow(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "project")
	if err != nil {
		return err
	}
	repo, err := openRepository()
	if err != nil {
		return err
	}
	defer repo.Close()

	p, err := repo.GetProject(id)
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("project %d not found", id)
	}
	searches, err := repo.ListSearches(&id, 20)
	if err != nil {
		return err
	}

	return printJSON(cmd.OutOrStdout(), map[string]any{
		"project":  p,
		"searches": searches,
	})
}

func runProjectUpdate(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "project")
	if err != nil {
		return err
	}

	var patch repository.ProjectPatch
	flags := cmd.Flags()
	if flags.Changed("name") {
		patch.Name = &projectFlags.name
	}
	if flags.Changed("description") {
		patch.Description = &projectFlags.description
	}
	if flags.Changed("target") {
		patch.TargetDomain = &projectFlags.target
	}
	if flags.Changed("status") {
		patch.Status = &projectFlags.status
	}
	if flags.Changed("meta") {
		patch.Metadata = metadata(projectFlags.meta)
	}

	repo, err := openRepository()
	if err != nil {
		return err
	}
	defer repo.Close()

	p, err := repo.GetProject(id)
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("project %d not found", id)
	}
	if err := repo.UpdateProject(id, patch); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Project %d updated.\n", id)
	return nil
}

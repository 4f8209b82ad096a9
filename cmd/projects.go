package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "Manage the shared project list",
}

var projectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects sorted by name",
	Args:  cobra.NoArgs,
	RunE:  runProjectsList,
}

var projectsAddCmd = &cobra.Command{
	Use:   "add <name>...",
	Short: "Add one or more projects",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runProjectsAdd,
}

var projectsDeleteCmd = &cobra.Command{
	Use:   "delete <id|name>",
	Short: "Delete a project; day logs that reference it keep the name",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectsDelete,
}

var projectsSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the configured seed projects when the list is empty",
	Args:  cobra.NoArgs,
	RunE:  runProjectsSeed,
}

func init() {
	projectsCmd.AddCommand(projectsListCmd)
	projectsCmd.AddCommand(projectsAddCmd)
	projectsCmd.AddCommand(projectsDeleteCmd)
	projectsCmd.AddCommand(projectsSeedCmd)
}

func runProjectsList(cmd *cobra.Command, args []string) error {
	e := mustEnv()
	projects, err := e.logs.Projects(cmd.Context())
	check(err)
	if len(projects) == 0 {
		fmt.Println("No projects yet. Add some with `daylog projects add`.")
		return nil
	}
	for _, p := range projects {
		fmt.Printf("%-36s  %s\n", p.ID, p.Name)
	}
	return nil
}

func runProjectsAdd(cmd *cobra.Command, args []string) error {
	e := mustEnv()
	created, err := e.logs.AddProjects(cmd.Context(), args...)
	check(err)
	for _, p := range created {
		fmt.Printf("Added %s (%s)\n", p.Name, p.ID)
	}
	return nil
}

func runProjectsDelete(cmd *cobra.Command, args []string) error {
	e := mustEnv()
	p, err := e.logs.DeleteProject(cmd.Context(), args[0])
	check(err)
	fmt.Printf("Deleted %s\n", p.Name)
	return nil
}

func runProjectsSeed(cmd *cobra.Command, args []string) error {
	e := mustEnv()
	if len(e.cfg.Projects.Seed) == 0 {
		fmt.Println("No seed projects configured (projects.seed in config.yaml).")
		return nil
	}
	created, err := e.logs.SeedProjects(cmd.Context(), e.cfg.Projects.Seed)
	check(err)
	if len(created) == 0 {
		fmt.Println("Project list already populated; nothing seeded.")
		return nil
	}
	fmt.Printf("Seeded %d projects.\n", len(created))
	return nil
}

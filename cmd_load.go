package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dense-analysis/pie/pkg/adapters"
	"github.com/dense-analysis/pie/pkg/adapters/github"
	"github.com/dense-analysis/pie/pkg/models"
	"github.com/dense-analysis/pie/pkg/services"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Ingest issues from the configured repositories",
	Long: `Load every issue, comment and event from the configured repositories.
Records that are already stored are skipped without calling the embedding model,
so repeated loads only embed new records.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		projects := cfg.GitHub.Projects()
		if len(projects) == 0 {
			return fmt.Errorf("no repositories configured under github.repos")
		}

		repos, closeRepos, err := openRepositories(ctx, cfg, dryRun, logger)
		if err != nil {
			return err
		}
		defer closeRepos()

		embedder, err := newEmbedder(ctx, cfg, logger)
		if err != nil {
			return err
		}

		githubLoader, err := github.NewLoader(ctx, github.Config{
			Token:   cfg.GitHub.Token,
			BaseURL: cfg.GitHub.APIURL,
		}, logger)
		if err != nil {
			return err
		}
		registry := adapters.NewRegistry()
		registry.Register(models.SourceSystemGitHub, githubLoader)

		service := services.NewIngestService(repos, embedder, logger)
		runner := services.NewIngestRunner(registry, service, services.IngestRunnerConfig{
			Concurrency:     cfg.Ingest.Concurrency,
			ContinueOnError: cfg.Ingest.ContinueOnError,
		}, logger)

		report, runErr := runner.Run(ctx, projects)
		if report != nil {
			printRunReport(report)
		}
		return runErr
	},
}

func printRunReport(report *services.RunReport) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	fmt.Printf("\n%s %s\n", cyan("Run"), report.RunID)
	for _, project := range report.Projects {
		status := green("✓")
		if project.Error != "" {
			status = red("✗")
		}
		fmt.Printf("%s %s\n", status, project.Project)
		printCounts("issues", project.Stats.Issues)
		printCounts("comments", project.Stats.Comments)
		printCounts("events", project.Stats.Events)
		if project.Error != "" {
			fmt.Printf("    %s\n", red(project.Error))
		}
	}

	total := report.Stats
	fmt.Printf("\n%d new issues, %d new comments, %d events, %d failed %s\n",
		total.Issues.Written, total.Comments.Written, total.Events.Written, total.Failed(),
		gray(fmt.Sprintf("(%s)", report.Elapsed.Round(time.Millisecond))))
}

func printCounts(kind string, counts services.RecordCounts) {
	fmt.Printf("    %-9s %d new, %d existing", kind, counts.Written, counts.Existing)
	if counts.Failed > 0 {
		fmt.Printf(", %s", color.RedString("%d failed", counts.Failed))
	}
	fmt.Println()
}

func init() {
	loadCmd.Flags().Bool("dry-run", false, "Keep records in memory instead of writing to the database")
	rootCmd.AddCommand(loadCmd)
}

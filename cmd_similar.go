package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dense-analysis/pie/pkg/models"
	"github.com/dense-analysis/pie/pkg/repositories"
	"github.com/dense-analysis/pie/pkg/services"
)

var similarCmd = &cobra.Command{
	Use:   "similar",
	Short: "List probable duplicate open issues",
	Long: `List pairs of open issues in the same project whose title and description
vectors are both within the given cosine distances. Each pair is reported in
both directions unless --unique is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		maxTitle, _ := cmd.Flags().GetFloat64("max-title-distance")
		maxDescription, _ := cmd.Flags().GetFloat64("max-description-distance")
		unique, _ := cmd.Flags().GetBool("unique")
		output, _ := cmd.Flags().GetString("output")

		if !cmd.Flags().Changed("max-title-distance") {
			maxTitle = cfg.Similarity.MaxTitleDistance
		}
		if !cmd.Flags().Changed("max-description-distance") {
			maxDescription = cfg.Similarity.MaxDescriptionDistance
		}
		switch output {
		case "text", "json", "yaml":
		default:
			return fmt.Errorf("unknown output format %q (want text, json or yaml)", output)
		}

		db, err := connectDatabase(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer db.Close()

		service := services.NewSimilarityService(repositories.NewSimilarityRepository(db), logger)
		matches, err := service.FindSimilarIssues(ctx, maxTitle, maxDescription)
		if err != nil {
			return err
		}
		if unique {
			matches = services.UniquePairs(matches)
		}

		return writeMatches(os.Stdout, output, matches)
	},
}

func writeMatches(w io.Writer, format string, matches []*models.SimilarIssueMatch) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(matches)
	case "yaml":
		encoder := yaml.NewEncoder(w)
		defer encoder.Close()
		return encoder.Encode(matches)
	}

	cyan := color.New(color.FgCyan).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	if len(matches) == 0 {
		fmt.Fprintln(w, gray("No similar issues found"))
		return nil
	}
	for _, m := range matches {
		fmt.Fprintf(w, "%d -> %d %s %s\n", m.Issue1ID, m.Issue2ID,
			yellow(fmt.Sprintf("(%.2f, %.2f)", m.TitleDistance, m.DescriptionDistance)),
			gray(m.Project.String()))
		fmt.Fprintf(w, "  %s %s\n", cyan("Title 1:"), m.Issue1Title)
		fmt.Fprintf(w, "  %s %s\n", cyan("Title 2:"), m.Issue2Title)
	}
	return nil
}

func init() {
	defaults := models.DefaultSimilarityThresholds()
	similarCmd.Flags().Float64P("max-title-distance", "t", defaults.MaxTitleDistance, "Maximum cosine distance between titles (defaults to similarity.max_title_distance)")
	similarCmd.Flags().Float64P("max-description-distance", "d", defaults.MaxDescriptionDistance, "Maximum cosine distance between descriptions (defaults to similarity.max_description_distance)")
	similarCmd.Flags().Bool("unique", false, "Report each pair once with the lower issue id first")
	similarCmd.Flags().StringP("output", "o", "text", "Output format: text, json or yaml")
	rootCmd.AddCommand(similarCmd)
}

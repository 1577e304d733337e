package cli

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/tfcanvas/tfcanvas/pkg/pipeline"
)

// newCompareCmd creates the compare command.
func newCompareCmd() *cobra.Command {
	var (
		baseLabel    string
		compareLabel string
		format       string
		out          string
		detailed     bool
		interactive  bool
		noCache      bool
		refresh      bool
	)

	cmd := &cobra.Command{
		Use:   "compare <base-dir> <compare-dir>",
		Short: "Diff two configuration trees",
		Long: `Compare parses two configuration trees, classifies every block as
created, modified, deleted, or unchanged, and builds the spatial graph view
of the compare tree with change styling on blocks and dependency edges.

With --interactive the changed blocks open in a browsable list. Otherwise
the summary is printed and the artifact written in the chosen format.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			runner, err := buildRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			spin := newSpinner(ctx, "Comparing trees...")
			spin.Start()
			result, err := runner.Execute(ctx, pipeline.Options{
				BaseDir:      args[0],
				CompareDir:   args[1],
				BaseLabel:    baseLabel,
				CompareLabel: compareLabel,
				Format:       format,
				Detailed:     detailed,
				Refresh:      refresh,
			})
			if err != nil {
				spin.StopWithError("Comparison failed")
				return err
			}
			spin.Stop()

			logger := loggerFromContext(ctx)
			for _, fe := range result.ParseErrors {
				logger.Warn("skipped file", "file", fe.File, "error", fe.Message)
			}

			if interactive {
				model := newChangeListModel(result.Comparison)
				if _, err := tea.NewProgram(model).Run(); err != nil {
					return fmt.Errorf("interactive browser: %w", err)
				}
				return nil
			}

			printSuccess("Compared %s against %s", compareLabel, baseLabel)
			printSummary(result.Comparison)
			printStats(result.Stats.BlockCount, result.Stats.EdgeCount, result.CacheInfo.CompareHit)

			if out == "" || out == "-" {
				_, err = os.Stdout.Write(result.Artifact)
				return err
			}
			if err := os.WriteFile(out, result.Artifact, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			printFile(out)
			return nil
		},
	}

	cmd.Flags().StringVar(&baseLabel, "base-label", "base", "label for the base tree")
	cmd.Flags().StringVar(&compareLabel, "compare-label", "compare", "label for the compare tree")
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json, dot, or svg")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include block types and change counts in labels")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "browse changed blocks interactively")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the cache and recompute")

	return cmd
}

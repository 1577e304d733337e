package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tfcanvas/tfcanvas/pkg/pipeline"
	"github.com/tfcanvas/tfcanvas/pkg/render"
)

// newRenderCmd creates the render command.
func newRenderCmd() *cobra.Command {
	var (
		branch  string
		format  string
		out     string
		noCache bool
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "render <dir>",
		Short: "Render a single configuration tree as DOT or SVG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if format != pipeline.FormatDOT && format != pipeline.FormatSVG {
				return fmt.Errorf("invalid format: %q (must be dot or svg)", format)
			}

			runner, err := buildRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			snap, fileErrs, err := runner.ParseSnapshot(ctx, args[0], branch, pipeline.Options{
				CompareDir: args[0],
				Refresh:    refresh,
			})
			if err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}
			logger := loggerFromContext(ctx)
			for _, fe := range fileErrs {
				logger.Warn("skipped file", "file", fe.File, "error", fe.Message)
			}

			dot := render.ToDOT(snap, nil, render.Options{})
			artifact := []byte(dot)
			if format == pipeline.FormatSVG {
				artifact, err = render.SVG(ctx, dot)
				if err != nil {
					return fmt.Errorf("render svg: %w", err)
				}
			}

			if out == "" || out == "-" {
				_, err = os.Stdout.Write(artifact)
				return err
			}
			if err := os.WriteFile(out, artifact, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			printSuccess("Rendered %d blocks", snap.BlockCount())
			printFile(out)
			printNextStep("Compare against another tree", fmt.Sprintf("%s compare <base-dir> %s", appName, args[0]))
			return nil
		},
	}

	cmd.Flags().StringVarP(&branch, "branch", "b", "main", "branch label recorded on the snapshot")
	cmd.Flags().StringVarP(&format, "format", "f", "dot", "output format: dot or svg")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the cache and reparse")

	return cmd
}

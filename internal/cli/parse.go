package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tfcanvas/tfcanvas/pkg/pipeline"
	"github.com/tfcanvas/tfcanvas/pkg/snapshot"
)

// newParseCmd creates the parse command.
func newParseCmd() *cobra.Command {
	var (
		branch  string
		out     string
		noCache bool
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "parse <dir>",
		Short: "Parse a configuration tree into a snapshot",
		Long: `Parse walks a directory tree of configuration files, extracts every
block with its derived address and decoded attribute values, and collects the
typed dependencies between blocks. The snapshot is written as JSON.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			dir := args[0]

			runner, err := buildRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			prog := newProgress(logger)
			snap, fileErrs, err := runner.ParseSnapshot(ctx, dir, branch, pipeline.Options{
				CompareDir: dir,
				Refresh:    refresh,
			})
			if err != nil {
				return fmt.Errorf("parse %s: %w", dir, err)
			}
			prog.done(fmt.Sprintf("Parsed %d blocks", snap.BlockCount()))

			for _, fe := range fileErrs {
				logger.Warn("skipped file", "file", fe.File, "error", fe.Message)
			}

			data, err := snapshot.Marshal(snap)
			if err != nil {
				return fmt.Errorf("serialize snapshot: %w", err)
			}

			if out == "" || out == "-" {
				_, err = os.Stdout.Write(data)
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			printSuccess("Snapshot written")
			printFile(out)
			printStats(snap.BlockCount(), len(snap.Dependencies), false)
			return nil
		},
	}

	cmd.Flags().StringVarP(&branch, "branch", "b", "main", "branch label recorded on the snapshot")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the snapshot cache")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the cache and reparse")

	return cmd
}

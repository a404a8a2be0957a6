package main

import (
	"github.com/spf13/cobra"

	"github.com/ThatDevStudio/ztlctl/internal/result"
	"github.com/ThatDevStudio/ztlctl/internal/services"
)

var (
	reweaveDryRun bool
	reweavePrune  bool
)

var reweaveCmd = &cobra.Command{
	Use:   "reweave <id>",
	Short: "discover and connect related nodes for an existing node",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Flags())
		if err != nil {
			return emitErr("reweave", err)
		}
		defer a.Close()

		out, err := a.reweave.Reweave(cmd.Context(), args[0], services.ReweaveOptions{
			DryRun:  reweaveDryRun,
			Prune:   reweavePrune,
			Session: flagSession,
		})
		if err != nil {
			return emitErr("reweave", err)
		}
		res := result.Ok("reweave", map[string]any{
			"source_id": out.SourceID,
			"batch_id":  out.BatchID,
			"added":     out.Added,
			"pruned":    out.Pruned,
		})
		for _, w := range out.Warnings {
			res.Warn(w)
		}
		return emit(res)
	},
}

var reweaveUndoCmd = &cobra.Command{
	Use:   "reweave-undo <batch-id>",
	Short: "undo a prior reweave batch, restoring its pre-reweave edge set",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Flags())
		if err != nil {
			return emitErr("reweave-undo", err)
		}
		defer a.Close()
		return emit(a.reweave.Undo(cmd.Context(), args[0]))
	},
}

func init() {
	reweaveCmd.Flags().BoolVar(&reweaveDryRun, "dry-run", false, "score and present candidates without writing edges")
	reweaveCmd.Flags().BoolVar(&reweavePrune, "prune", false, "also drop stale edges below threshold")
	rootCmd.AddCommand(reweaveCmd)
	rootCmd.AddCommand(reweaveUndoCmd)
}

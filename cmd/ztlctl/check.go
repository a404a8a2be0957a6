package main

import (
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "validate the vault's three representations against each other",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Flags())
		if err != nil {
			return emitErr("check", err)
		}
		defer a.Close()
		return emit(a.check.Check(cmd.Context()))
	},
}

var checkFixAggressive bool

var checkFixCmd = &cobra.Command{
	Use:   "fix",
	Short: "repair check findings that have a safe automatic fix",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Flags())
		if err != nil {
			return emitErr("check-fix", err)
		}
		defer a.Close()
		return emit(a.check.Fix(cmd.Context(), checkFixAggressive, flagSession))
	},
}

var checkRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "rebuild the relational index from the markdown files alone",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Flags())
		if err != nil {
			return emitErr("check-rebuild", err)
		}
		defer a.Close()
		return emit(a.check.Rebuild(cmd.Context(), flagSession))
	},
}

var checkRollbackCmd = &cobra.Command{
	Use:   "rollback",
	Short: "restore the relational index from the most recent backup",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Flags())
		if err != nil {
			return emitErr("check-rollback", err)
		}
		defer a.Close()
		return emit(a.check.Rollback(cmd.Context()))
	},
}

func init() {
	checkFixCmd.Flags().BoolVar(&checkFixAggressive, "aggressive", false, "apply fixes that carry a higher risk of data loss")
	checkCmd.AddCommand(checkFixCmd, checkRebuildCmd, checkRollbackCmd)
	rootCmd.AddCommand(checkCmd)
}

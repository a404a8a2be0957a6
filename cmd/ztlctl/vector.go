package main

import (
	"github.com/spf13/cobra"
)

var vectorStatusCmd = &cobra.Command{
	Use:   "vector-status",
	Short: "report whether hybrid vector ranking is enabled, and its weight",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Flags())
		if err != nil {
			return emitErr("vector-status", err)
		}
		defer a.Close()
		return emit(a.vector.Status(cmd.Context()))
	},
}

func init() {
	rootCmd.AddCommand(vectorStatusCmd)
}

package main

import (
	"time"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "search the vault by filter expression and free text (§4.9)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Flags())
		if err != nil {
			return emitErr("search", err)
		}
		defer a.Close()
		var q string
		if len(args) == 1 {
			q = args[0]
		}
		res, err := a.query.Search(cmd.Context(), q, time.Now().UTC())
		if err != nil {
			return emitErr("search", err)
		}
		return emit(res)
	},
}

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "fetch a single node by id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Flags())
		if err != nil {
			return emitErr("get", err)
		}
		defer a.Close()
		res, err := a.query.Get(cmd.Context(), args[0])
		if err != nil {
			return emitErr("get", err)
		}
		return emit(res)
	},
}

var listCmd = &cobra.Command{
	Use:   "list [query]",
	Short: "list nodes matching a filter expression, no lexical ranking",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Flags())
		if err != nil {
			return emitErr("list", err)
		}
		defer a.Close()
		var q string
		if len(args) == 1 {
			q = args[0]
		}
		res, err := a.query.List(cmd.Context(), q, time.Now().UTC())
		if err != nil {
			return emitErr("list", err)
		}
		return emit(res)
	},
}

var workQueueCmd = &cobra.Command{
	Use:   "work-queue",
	Short: "list open tasks ranked by priority/impact/effort (§4.9)",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Flags())
		if err != nil {
			return emitErr("work-queue", err)
		}
		defer a.Close()
		res, err := a.query.WorkQueue(cmd.Context(), time.Now().UTC())
		if err != nil {
			return emitErr("work-queue", err)
		}
		return emit(res)
	},
}

var decisionSupportCmd = &cobra.Command{
	Use:   "decision-support <topic>",
	Short: "surface prior decisions on a topic",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Flags())
		if err != nil {
			return emitErr("decision-support", err)
		}
		defer a.Close()
		res, err := a.query.DecisionSupport(cmd.Context(), args[0], time.Now().UTC())
		if err != nil {
			return emitErr("decision-support", err)
		}
		return emit(res)
	},
}

func init() {
	rootCmd.AddCommand(searchCmd, getCmd, listCmd, workQueueCmd, decisionSupportCmd)
}

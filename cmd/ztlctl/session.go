package main

import (
	"github.com/spf13/cobra"

	"github.com/ThatDevStudio/ztlctl/internal/services"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "manage working sessions (start, log, close, context, brief, cost)",
}

var sessionStartCmd = &cobra.Command{
	Use:   "start <session>",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Flags())
		if err != nil {
			return emitErr("session-start", err)
		}
		defer a.Close()
		res, err := a.session.SessionStart(cmd.Context(), args[0])
		if err != nil {
			return emitErr("session-start", err)
		}
		return emit(res)
	},
}

var (
	logEntryType string
	logSummary   string
	logDetail    string
	logTokenCost int
	logPinned    bool
	logRefs      []string
)

var sessionLogCmd = &cobra.Command{
	Use:   "log <session>",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Flags())
		if err != nil {
			return emitErr("session-log", err)
		}
		defer a.Close()
		res, err := a.session.SessionLog(cmd.Context(), services.LogInput{
			Session:   args[0],
			EntryType: logEntryType,
			Summary:   logSummary,
			Detail:    logDetail,
			TokenCost: logTokenCost,
			Pinned:    logPinned,
			Refs:      logRefs,
		})
		if err != nil {
			return emitErr("session-log", err)
		}
		return emit(res)
	},
}

var sessionCloseCmd = &cobra.Command{
	Use:   "close <session>",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Flags())
		if err != nil {
			return emitErr("session-close", err)
		}
		defer a.Close()
		res, err := a.session.SessionClose(cmd.Context(), args[0])
		if err != nil {
			return emitErr("session-close", err)
		}
		return emit(res)
	},
}

var (
	contextBudget            int
	contextIgnoreCheckpoints bool
)

var sessionContextCmd = &cobra.Command{
	Use:   "context <session>",
	Short: "assemble a context brief for a session under a token budget",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Flags())
		if err != nil {
			return emitErr("session-context", err)
		}
		defer a.Close()
		res, err := a.session.Context(cmd.Context(), args[0], contextBudget, contextIgnoreCheckpoints)
		if err != nil {
			return emitErr("session-context", err)
		}
		return emit(res)
	},
}

var sessionBriefCmd = &cobra.Command{
	Use:   "brief <session>",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Flags())
		if err != nil {
			return emitErr("session-brief", err)
		}
		defer a.Close()
		res, err := a.session.Brief(cmd.Context(), args[0])
		if err != nil {
			return emitErr("session-brief", err)
		}
		return emit(res)
	},
}

var sessionCostCmd = &cobra.Command{
	Use:   "cost <session>",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Flags())
		if err != nil {
			return emitErr("session-cost", err)
		}
		defer a.Close()
		res, err := a.session.Cost(cmd.Context(), args[0])
		if err != nil {
			return emitErr("session-cost", err)
		}
		return emit(res)
	},
}

func init() {
	sessionLogCmd.Flags().StringVar(&logEntryType, "type", "log", "entry type: log|checkpoint|decision-made")
	sessionLogCmd.Flags().StringVar(&logSummary, "summary", "", "one-line summary")
	sessionLogCmd.Flags().StringVar(&logDetail, "detail", "", "full entry detail")
	sessionLogCmd.Flags().IntVar(&logTokenCost, "token-cost", 0, "estimated token cost of this entry")
	sessionLogCmd.Flags().BoolVar(&logPinned, "pinned", false, "pin this entry so it survives budget trimming")
	sessionLogCmd.Flags().StringSliceVar(&logRefs, "ref", nil, "referenced node ids (repeatable)")

	sessionContextCmd.Flags().IntVar(&contextBudget, "budget", 0, "token budget (0: use configured default)")
	sessionContextCmd.Flags().BoolVar(&contextIgnoreCheckpoints, "ignore-checkpoints", false, "read the whole session log instead of starting at the latest checkpoint")

	sessionCmd.AddCommand(sessionStartCmd, sessionLogCmd, sessionCloseCmd, sessionContextCmd, sessionBriefCmd, sessionCostCmd)
	rootCmd.AddCommand(sessionCmd)
}

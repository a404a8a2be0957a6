package main

import (
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "derived-graph queries: related, themes, rank, path, gaps, bridges (§4.10)",
}

var relatedMaxDepth int

var graphRelatedCmd = &cobra.Command{
	Use:   "related <seed>",
	Short: "spreading-activation neighbors of a seed node",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Flags())
		if err != nil {
			return emitErr("graph-related", err)
		}
		defer a.Close()
		res, err := a.graph.Related(cmd.Context(), args[0], relatedMaxDepth)
		if err != nil {
			return emitErr("graph-related", err)
		}
		return emit(res)
	},
}

var graphThemesCmd = &cobra.Command{
	Use:   "themes",
	Short: "detect communities of densely linked nodes",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Flags())
		if err != nil {
			return emitErr("graph-themes", err)
		}
		defer a.Close()
		res, err := a.graph.Themes(cmd.Context())
		if err != nil {
			return emitErr("graph-themes", err)
		}
		return emit(res)
	},
}

var (
	rankDamping float64
	rankLimit   int
)

var graphRankCmd = &cobra.Command{
	Use:   "rank",
	Short: "rank nodes by PageRank",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Flags())
		if err != nil {
			return emitErr("graph-rank", err)
		}
		defer a.Close()
		res, err := a.graph.Rank(cmd.Context(), rankDamping, rankLimit)
		if err != nil {
			return emitErr("graph-rank", err)
		}
		return emit(res)
	},
}

var graphPathCmd = &cobra.Command{
	Use:   "path <source> <target>",
	Short: "shortest path between two nodes",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Flags())
		if err != nil {
			return emitErr("graph-path", err)
		}
		defer a.Close()
		res, err := a.graph.Path(cmd.Context(), args[0], args[1])
		if err != nil {
			return emitErr("graph-path", err)
		}
		return emit(res)
	},
}

var gapsLimit int

var graphGapsCmd = &cobra.Command{
	Use:   "gaps",
	Short: "find structural holes: nodes with the lowest network constraint (§4.10)",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Flags())
		if err != nil {
			return emitErr("graph-gaps", err)
		}
		defer a.Close()
		res, err := a.graph.Gaps(cmd.Context(), gapsLimit)
		if err != nil {
			return emitErr("graph-gaps", err)
		}
		return emit(res)
	},
}

var bridgesLimit int

var graphBridgesCmd = &cobra.Command{
	Use:   "bridges",
	Short: "find nodes with the highest betweenness centrality",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Flags())
		if err != nil {
			return emitErr("graph-bridges", err)
		}
		defer a.Close()
		res, err := a.graph.Bridges(cmd.Context(), bridgesLimit)
		if err != nil {
			return emitErr("graph-bridges", err)
		}
		return emit(res)
	},
}

func init() {
	graphRelatedCmd.Flags().IntVar(&relatedMaxDepth, "max-depth", 3, "maximum spreading-activation depth")
	graphRankCmd.Flags().Float64Var(&rankDamping, "damping", 0.85, "PageRank damping factor")
	graphRankCmd.Flags().IntVar(&rankLimit, "limit", 10, "number of top-ranked nodes to return")
	graphGapsCmd.Flags().IntVar(&gapsLimit, "limit", 10, "number of gaps to return")
	graphBridgesCmd.Flags().IntVar(&bridgesLimit, "limit", 10, "number of bridge nodes to return")

	graphCmd.AddCommand(graphRelatedCmd, graphThemesCmd, graphRankCmd, graphPathCmd, graphGapsCmd, graphBridgesCmd)
	rootCmd.AddCommand(graphCmd)
}

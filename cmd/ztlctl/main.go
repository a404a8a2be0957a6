// Command ztlctl is the CLI collaborator over the vault engine (§1, §6):
// one cobra command per operation, JSON or human-readable output, and a
// process exit code mirroring the ServiceResult contract (§4.13, §7).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		// cobra already printed the error; preserve a non-zero exit without
		// duplicating the message.
		os.Exit(1)
	}
	os.Exit(lastExitCode)
}

var (
	flagVaultRoot string
	flagDBPath    string
	flagJSON      bool
	flagSession   string
	flagSync      bool

	// lastExitCode is set by each leaf command's run function from its
	// result's ExitCode(), since cobra itself has no notion of our
	// result.Result contract.
	lastExitCode int
)

var rootCmd = &cobra.Command{
	Use:   "ztlctl",
	Short: "ztlctl manages a Zettelkasten knowledge vault",
	Long: "ztlctl coordinates a vault's three representations of the same knowledge graph:\n" +
		"markdown files on disk, a relational index with full-text search, and a derived\n" +
		"in-memory graph.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagVaultRoot, "vault", ".", "vault root directory")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "relational index path (default: <vault>/.ztlctl/index.db)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "emit the raw ServiceResult as JSON")
	rootCmd.PersistentFlags().StringVar(&flagSession, "session", "", "session id for operations that log to the session history")
	rootCmd.PersistentFlags().BoolVar(&flagSync, "sync", false, "dispatch events inline instead of on the async worker pool")
}

// FatalError writes a message to stderr and exits 1, for failures that
// happen before a ServiceResult exists at all (bad flags, a vault that
// won't open).
func FatalError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

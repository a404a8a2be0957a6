package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ThatDevStudio/ztlctl/internal/result"
)

// emit prints res per --json, sets the process exit code to match the
// result's own ExitCode (§6), and returns nil to cobra so cobra itself never
// prints a second, redundant error; only a failure to encode the JSON output
// is returned.
func emit(res *result.Result) error {
	lastExitCode = res.ExitCode()
	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return err
		}
		return nil
	}

	if !res.OK {
		fmt.Fprintf(os.Stderr, "Error [%s]: %s\n", res.Error.Code, res.Error.Message)
		return nil
	}
	fmt.Printf("ok: %s\n", res.Op)
	for k, v := range res.Data {
		fmt.Printf("  %s: %v\n", k, v)
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	return nil
}

// emitErr is for a Go error that arose before a ServiceResult could even be
// built (programmer bugs per §4.13 — a closed store, a nil engine).
func emitErr(op string, err error) error {
	lastExitCode = 1
	fmt.Fprintf(os.Stderr, "Error: %s: %v\n", op, err)
	return nil
}

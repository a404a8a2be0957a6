package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ThatDevStudio/ztlctl/internal/collab"
	"github.com/ThatDevStudio/ztlctl/internal/config"
	"github.com/ThatDevStudio/ztlctl/internal/eventbus"
	"github.com/ThatDevStudio/ztlctl/internal/model"
	"github.com/ThatDevStudio/ztlctl/internal/result"
)

// writeIdentityDocs renders self/identity.md and self/methodology.md once.
// ztlctl never rewrites them after this; an operator who deletes one gets a
// fresh placeholder back on the next init.
func writeIdentityDocs(renderer collab.Renderer, selfDir string) error {
	for path, kind := range map[string]collab.IdentityKind{
		filepath.Join(selfDir, "identity.md"):    collab.IdentityDoc,
		filepath.Join(selfDir, "methodology.md"): collab.MethodologyDoc,
	} {
		if _, err := os.Stat(path); err == nil {
			continue
		}
		content, err := renderer.Render(kind)
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return err
		}
	}
	return nil
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "scaffold a new vault at --vault",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, space := range []model.Space{model.SpaceSelf, model.SpaceNotes, model.SpaceOps} {
			if err := os.MkdirAll(filepath.Join(flagVaultRoot, string(space)), 0o755); err != nil {
				FatalError("create %s: %v", space, err)
			}
		}
		if err := os.MkdirAll(filepath.Join(flagVaultRoot, "backups"), 0o755); err != nil {
			FatalError("create backups dir: %v", err)
		}

		renderer := collab.DefaultRenderer{VaultName: filepath.Base(flagVaultRoot)}
		if err := writeIdentityDocs(renderer, filepath.Join(flagVaultRoot, string(model.SpaceSelf))); err != nil {
			FatalError("write identity documents: %v", err)
		}

		tomlPath := filepath.Join(flagVaultRoot, "ztlctl.toml")
		if _, err := os.Stat(tomlPath); os.IsNotExist(err) {
			content, err := config.WriteDefault(config.Defaults())
			if err != nil {
				FatalError("render default config: %v", err)
			}
			if err := os.WriteFile(tomlPath, []byte(content), 0o644); err != nil {
				FatalError("write ztlctl.toml: %v", err)
			}
		}

		a, err := openApp(cmd.Flags())
		if err != nil {
			return emitErr("init", err)
		}
		defer a.Close()

		evWarnings, _ := a.bus.Dispatch(cmd.Context(), eventbus.PostInit, "", map[string]any{"vault": flagVaultRoot})

		res := result.Ok("init", map[string]any{"vault": flagVaultRoot})
		for _, w := range evWarnings {
			res.Warn(w)
		}
		return emit(res)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}

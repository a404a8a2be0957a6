// Package collab holds the narrow ports the core calls through to reach
// external collaborators whose internals §1 explicitly leaves unspecified:
// the template renderer for `self/identity.md` and `self/methodology.md`.
// This is distinct from the core's own body-template rendering for notes,
// references, logs and tasks (internal/model's registry) — that stays core.
package collab

import "fmt"

// IdentityKind selects which identity document to render.
type IdentityKind string

const (
	IdentityDoc    IdentityKind = "identity"
	MethodologyDoc IdentityKind = "methodology"
)

// Renderer renders the two identity documents `ztlctl init` writes once to
// self/. Its internals are not specified by the core spec (§1); the default
// implementation below is a minimal, deterministic placeholder a real
// deployment is expected to replace.
type Renderer interface {
	Render(kind IdentityKind) (string, error)
}

// DefaultRenderer is the narrow built-in implementation: fixed boilerplate
// naming the vault, with no templating engine involved (there is nothing
// dynamic enough here to need one — see internal/model for the one place
// the engine does section-substitution templating).
type DefaultRenderer struct {
	VaultName string
}

func (r DefaultRenderer) Render(kind IdentityKind) (string, error) {
	switch kind {
	case IdentityDoc:
		return fmt.Sprintf("# %s\n\nThis vault's identity document. Edit freely; ztlctl never rewrites it after init.\n", r.VaultName), nil
	case MethodologyDoc:
		return fmt.Sprintf("# %s Methodology\n\nHow this vault is organized and maintained. Edit freely; ztlctl never rewrites it after init.\n", r.VaultName), nil
	default:
		return "", fmt.Errorf("collab: unknown identity document kind %q", kind)
	}
}

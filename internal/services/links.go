package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/ThatDevStudio/ztlctl/internal/model"
	"github.com/ThatDevStudio/ztlctl/internal/storage/sqlite"
)

// wikilinkPattern matches `[[target]]` and `[[target|display text]]` body
// links (§3 glossary "Wikilink").
var wikilinkPattern = regexp.MustCompile(`\[\[([^\]|]+)(?:\|[^\]]+)?\]\]`)

// ExtractWikilinks returns the raw link targets found in a note/reference
// body, in first-seen order, deduplicated.
func ExtractWikilinks(body string) []string {
	matches := wikilinkPattern.FindAllStringSubmatch(body, -1)
	seen := map[string]bool{}
	var out []string
	for _, m := range matches {
		target := strings.TrimSpace(m[1])
		if target == "" || seen[target] {
			continue
		}
		seen[target] = true
		out = append(out, target)
	}
	return out
}

// linkIndex resolves raw wikilink/frontmatter-link targets to node ids,
// trying title, then alias, then identifier, in that order (§4.4 Index
// stage). Ambiguous matches at a stage are reported, never guessed.
type linkIndex struct {
	byTitle map[string][]string // normalized title -> node ids
	byAlias map[string][]string // normalized alias -> node ids
	ids     map[string]bool
}

// buildLinkIndex loads every node's title/alias/id into a resolution index.
func buildLinkIndex(ctx context.Context, q sqlite.Queryer) (*linkIndex, error) {
	nodes, err := sqlite.AllNodes(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("services: build link index: %w", err)
	}
	idx := &linkIndex{
		byTitle: map[string][]string{},
		byAlias: map[string][]string{},
		ids:     map[string]bool{},
	}
	for _, n := range nodes {
		idx.ids[n.ID] = true
		key := strings.ToLower(strings.TrimSpace(n.Title))
		if key != "" {
			idx.byTitle[key] = append(idx.byTitle[key], n.ID)
		}
		for _, alias := range n.Aliases {
			ak := strings.ToLower(strings.TrimSpace(alias))
			if ak != "" {
				idx.byAlias[ak] = append(idx.byAlias[ak], n.ID)
			}
		}
	}
	return idx, nil
}

// add registers a node not yet committed to storage (the node currently
// being created/updated within this same transaction), so self-references
// and links to sibling batch items resolve without a round-trip.
func (idx *linkIndex) add(n *model.Node) {
	idx.ids[n.ID] = true
	key := strings.ToLower(strings.TrimSpace(n.Title))
	if key != "" {
		idx.byTitle[key] = append(idx.byTitle[key], n.ID)
	}
	for _, alias := range n.Aliases {
		ak := strings.ToLower(strings.TrimSpace(alias))
		if ak != "" {
			idx.byAlias[ak] = append(idx.byAlias[ak], n.ID)
		}
	}
}

// resolution is the outcome of resolving one raw link target.
type resolution struct {
	ID        string
	Ambiguous bool
}

// resolve implements the title -> alias -> identifier precedence (§4.4).
// A stage with more than one candidate is ambiguous and resolution stops
// there rather than falling through to a lower-precedence stage.
func (idx *linkIndex) resolve(raw string) resolution {
	key := strings.ToLower(strings.TrimSpace(raw))
	if ids, ok := idx.byTitle[key]; ok {
		if len(ids) == 1 {
			return resolution{ID: ids[0]}
		}
		return resolution{Ambiguous: true}
	}
	if ids, ok := idx.byAlias[key]; ok {
		if len(ids) == 1 {
			return resolution{ID: ids[0]}
		}
		return resolution{Ambiguous: true}
	}
	if idx.ids[strings.TrimSpace(raw)] {
		return resolution{ID: strings.TrimSpace(raw)}
	}
	return resolution{}
}

// resolveLinks resolves a set of raw targets against idx, returning the
// resolved node ids and a warning for each unresolved or ambiguous target.
func resolveLinks(idx *linkIndex, raw []string, selfID string) (ids []string, warnings []string) {
	seen := map[string]bool{}
	for _, target := range raw {
		r := idx.resolve(target)
		switch {
		case r.Ambiguous:
			warnings = append(warnings, fmt.Sprintf("link target %q is ambiguous; skipped", target))
		case r.ID == "":
			warnings = append(warnings, fmt.Sprintf("link target %q could not be resolved; skipped", target))
		case r.ID == selfID:
			// self-links are dropped silently; not an error condition
		case !seen[r.ID]:
			seen[r.ID] = true
			ids = append(ids, r.ID)
		}
	}
	return ids, warnings
}

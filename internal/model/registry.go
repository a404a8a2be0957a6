package model

import (
	"fmt"
	"strings"
)

// ContentModel is the compile-time dispatch table for one (kind, subtype)
// pair: required sections, validation rules, and a body template. This
// replaces duck-typed subtype dispatch (spec §9) with a closed registry.
type ContentModel struct {
	Kind             Kind
	Subtype          Subtype
	RequiredSections []string
	BodyTemplate     string

	// ValidateCreate checks a node+body at create time. Returned strings are
	// warnings (non-fatal); a non-nil error is a hard INVALID_INPUT failure.
	ValidateCreate func(n *Node, body string) (warnings []string, err error)

	// ValidateUpdate checks a proposed body/frontmatter change at update
	// time, given the existing node.
	ValidateUpdate func(existing *Node, newBody string) (warnings []string, err error)
}

type registryKey struct {
	kind    Kind
	subtype Subtype
}

var registry = map[registryKey]*ContentModel{}

func register(cm *ContentModel) {
	registry[registryKey{cm.Kind, cm.Subtype}] = cm
}

// Lookup resolves the content model for (kind, subtype) using registry
// lookup precedence: subtype-key first, type-key fallback (§4.2).
func Lookup(kind Kind, subtype Subtype) (*ContentModel, error) {
	if subtype != SubtypeNone {
		if cm, ok := registry[registryKey{kind, subtype}]; ok {
			return cm, nil
		}
	}
	if cm, ok := registry[registryKey{kind, SubtypeNone}]; ok {
		return cm, nil
	}
	return nil, fmt.Errorf("model: no content model registered for kind=%s subtype=%s", kind, subtype)
}

func init() {
	register(&ContentModel{
		Kind:             KindNote,
		Subtype:          SubtypeNone,
		RequiredSections: nil, // knowledge notes recommend, never require, structure
		BodyTemplate:     "# {{Title}}\n\n{{Body}}\n",
		ValidateCreate: func(n *Node, body string) ([]string, error) {
			var warnings []string
			if body == "" {
				warnings = append(warnings, "note created with empty body")
			}
			return warnings, nil
		},
		ValidateUpdate: func(existing *Node, newBody string) ([]string, error) {
			return nil, nil
		},
	})

	register(&ContentModel{
		Kind:    KindNote,
		Subtype: SubtypeDecision,
		RequiredSections: []string{
			"Context", "Choice", "Rationale", "Alternatives", "Consequences",
		},
		BodyTemplate: "# {{Title}}\n\n" +
			"## Context\n{{Context}}\n\n" +
			"## Choice\n{{Choice}}\n\n" +
			"## Rationale\n{{Rationale}}\n\n" +
			"## Alternatives\n{{Alternatives}}\n\n" +
			"## Consequences\n{{Consequences}}\n",
		ValidateCreate: func(n *Node, body string) ([]string, error) {
			var missing []string
			for _, section := range []string{"Context", "Choice", "Rationale", "Alternatives", "Consequences"} {
				if !containsSection(body, section) {
					missing = append(missing, section)
				}
			}
			if len(missing) > 0 {
				return nil, fmt.Errorf("model: decision missing required sections: %v", missing)
			}
			return nil, nil
		},
		ValidateUpdate: func(existing *Node, newBody string) ([]string, error) {
			if existing.Status == DecisionAccepted || existing.Status == DecisionSuperseded {
				return nil, fmt.Errorf("model: decision %s body is immutable once accepted; use supersession", existing.ID)
			}
			return nil, nil
		},
	})

	register(&ContentModel{
		Kind:             KindReference,
		Subtype:          SubtypeNone,
		RequiredSections: nil, // references are classification-only
		BodyTemplate:     "# {{Title}}\n\n{{Body}}\n",
		ValidateCreate: func(n *Node, body string) ([]string, error) {
			return nil, nil
		},
		ValidateUpdate: func(existing *Node, newBody string) ([]string, error) {
			return nil, nil
		},
	})

	register(&ContentModel{
		Kind:             KindLog,
		Subtype:          SubtypeNone,
		RequiredSections: nil,
		BodyTemplate:     "# {{Title}}\n\n{{Body}}\n",
		ValidateCreate: func(n *Node, body string) ([]string, error) {
			return nil, nil
		},
		ValidateUpdate: func(existing *Node, newBody string) ([]string, error) {
			return nil, nil
		},
	})

	register(&ContentModel{
		Kind:             KindTask,
		Subtype:          SubtypeNone,
		RequiredSections: nil,
		BodyTemplate:     "# {{Title}}\n\n{{Body}}\n",
		ValidateCreate: func(n *Node, body string) ([]string, error) {
			return nil, nil
		},
		ValidateUpdate: func(existing *Node, newBody string) ([]string, error) {
			return nil, nil
		},
	})
}

func containsSection(body, section string) bool {
	return strings.Contains(body, "## "+section)
}

package model

import "strings"

// RenderTemplate substitutes named sections into a body template. Templates
// use `{{Section Name}}` placeholders; a placeholder with no matching
// section is replaced with an empty string rather than left in the output,
// so a half-filled template never leaks markup into a note's body.
//
// This is deliberately simpler than text/template: templates here are flat
// named-section substitutions, not control flow, mirroring the teacher's own
// placeholder-substitution style for generated content.
func RenderTemplate(tmpl string, sections map[string]string) string {
	out := tmpl
	for name, value := range sections {
		out = strings.ReplaceAll(out, "{{"+name+"}}", value)
	}
	return stripUnfilledPlaceholders(out)
}

func stripUnfilledPlaceholders(s string) string {
	for {
		start := strings.Index(s, "{{")
		if start == -1 {
			return s
		}
		end := strings.Index(s[start:], "}}")
		if end == -1 {
			return s
		}
		s = s[:start] + s[start+end+2:]
	}
}

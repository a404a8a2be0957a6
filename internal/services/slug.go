package services

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ThatDevStudio/ztlctl/internal/model"
)

var slugNonWord = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify reduces a title to a filesystem-safe slug for filenames
// (`<id>-<slug>.md`, §4.4 Persist stage).
func Slugify(title string) string {
	lower := strings.ToLower(title)
	slug := slugNonWord.ReplaceAllString(lower, "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "untitled"
	}
	return slug
}

// PathFor builds a node's vault-relative path per the bit-exact layout of
// §6: `<space>/<topic>/<id>-<slug>.md` for notes/references (topic-scoped),
// and `ops/logs|tasks/<id>-<slug>.md` for logs/tasks (no topic directory).
func PathFor(kind model.Kind, topic, id, slug string) string {
	switch kind {
	case model.KindNote, model.KindReference:
		dir := topic
		if dir == "" {
			dir = "general"
		}
		return filepath.ToSlash(filepath.Join(string(model.SpaceNotes), dir, fmt.Sprintf("%s-%s.md", id, slug)))
	case model.KindLog:
		return filepath.ToSlash(filepath.Join(string(model.SpaceOps), "logs", fmt.Sprintf("%s-%s.md", id, slug)))
	case model.KindTask:
		return filepath.ToSlash(filepath.Join(string(model.SpaceOps), "tasks", fmt.Sprintf("%s-%s.md", id, slug)))
	default:
		return filepath.ToSlash(filepath.Join(string(model.SpaceNotes), "general", fmt.Sprintf("%s-%s.md", id, slug)))
	}
}

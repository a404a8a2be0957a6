package services

import (
	"fmt"
	"time"

	"github.com/ThatDevStudio/ztlctl/internal/frontmatter"
	"github.com/ThatDevStudio/ztlctl/internal/model"
)

// RenderFile serializes a node and its body into full markdown-file content,
// in the canonical key order (§4.2).
func RenderFile(n *model.Node, body string) (string, error) {
	doc, err := frontmatter.Parse("")
	if err != nil {
		return "", err
	}
	doc.Set("id", n.ID)
	doc.Set("type", string(n.Type))
	if n.Subtype != "" {
		doc.Set("subtype", string(n.Subtype))
	}
	doc.Set("status", n.Status)
	if n.Maturity != "" {
		doc.Set("maturity", string(n.Maturity))
	}
	doc.Set("title", n.Title)
	if n.Session != "" {
		doc.Set("session", n.Session)
	}
	doc.SetSequence("tags", n.Tags)
	doc.SetSequence("aliases", n.Aliases)
	if n.Topic != "" {
		doc.Set("topic", n.Topic)
	}
	if len(n.Links) > 0 {
		doc.SetMapping("links", n.Links)
	}
	doc.Set("created", n.Created.UTC().Format(time.RFC3339))
	doc.Set("modified", n.Modified.UTC().Format(time.RFC3339))
	if len(n.Supersedes) > 0 {
		doc.SetSequence("supersedes", n.Supersedes)
	}
	if n.SupersededBy != "" {
		doc.Set("superseded_by", n.SupersededBy)
	}
	doc.Body = body
	return doc.Render()
}

// ParseFile splits raw file content back into a (partial) node and its body.
// Only the fields frontmatter actually carries are populated; callers fill
// in the rest (path, materialized metrics, ...) from the relational index.
func ParseFile(content string) (*model.Node, string, error) {
	doc, err := frontmatter.Parse(content)
	if err != nil {
		return nil, "", fmt.Errorf("services: parse file: %w", err)
	}
	n := &model.Node{}
	if v, ok := doc.Get("id"); ok {
		n.ID = v
	}
	if v, ok := doc.Get("type"); ok {
		n.Type = model.Kind(v)
	}
	if v, ok := doc.Get("subtype"); ok {
		n.Subtype = model.Subtype(v)
	}
	if v, ok := doc.Get("status"); ok {
		n.Status = v
	}
	if v, ok := doc.Get("maturity"); ok {
		n.Maturity = model.Maturity(v)
	}
	if v, ok := doc.Get("title"); ok {
		n.Title = v
	}
	if v, ok := doc.Get("session"); ok {
		n.Session = v
	}
	if v, ok := doc.GetSequence("tags"); ok {
		n.Tags = v
	}
	if v, ok := doc.GetSequence("aliases"); ok {
		n.Aliases = v
	}
	if v, ok := doc.Get("topic"); ok {
		n.Topic = v
	}
	if v, ok := doc.GetMapping("links"); ok {
		n.Links = v
	}
	if v, ok := doc.Get("created"); ok {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			n.Created = t
		}
	}
	if v, ok := doc.Get("modified"); ok {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			n.Modified = t
		}
	}
	if v, ok := doc.GetSequence("supersedes"); ok {
		n.Supersedes = v
	}
	if v, ok := doc.Get("superseded_by"); ok {
		n.SupersededBy = v
	}
	return n, doc.Body, nil
}

// parseForReorder parses raw file content for the sole purpose of calling
// Document.Reorder and re-rendering, used by `check fix aggressive`'s
// frontmatter-key-reordering step (§4.11).
func parseForReorder(content string) (*frontmatter.Document, error) {
	return frontmatter.Parse(content)
}

// allLinkTargets flattens a node's frontmatter links map into a flat list of
// raw targets, for the Index stage's link-extraction step (§4.4).
func allLinkTargets(links map[string][]string) []string {
	var out []string
	for _, targets := range links {
		out = append(out, targets...)
	}
	return out
}

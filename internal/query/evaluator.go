package query

import (
	"strings"

	"github.com/ThatDevStudio/ztlctl/internal/model"
)

// Matches reports whether a node (with its resolved tag set) satisfies f.
// Text matching against lexical relevance is not evaluated here — that is
// the full-text index's job (sqlite.SearchFTS); Matches only applies the
// structured constraints.
func Matches(f Filter, n *model.Node, nodeTags []string) bool {
	switch f.Archived {
	case ArchivedExclude:
		if n.Archived {
			return false
		}
	case ArchivedOnly:
		if !n.Archived {
			return false
		}
	}
	if f.Type != "" && !strings.EqualFold(string(n.Type), f.Type) {
		return false
	}
	if f.Subtype != "" && !strings.EqualFold(string(n.Subtype), f.Subtype) {
		return false
	}
	if f.Topic != "" && !strings.EqualFold(n.Topic, f.Topic) {
		return false
	}
	if f.Status != "" && !strings.EqualFold(n.Status, f.Status) {
		return false
	}
	if f.Maturity != "" && !strings.EqualFold(string(n.Maturity), f.Maturity) {
		return false
	}
	if f.Space != "" && !strings.EqualFold(string(model.SpaceFor(n.Type)), f.Space) {
		return false
	}
	if !f.Since.IsZero() && n.Modified.Before(f.Since) {
		return false
	}
	if len(f.Tags) > 0 && !anyTagMatches(f.Tags, nodeTags) {
		return false
	}
	return true
}

func anyTagMatches(want, have []string) bool {
	haveSet := make(map[string]bool, len(have))
	for _, t := range have {
		haveSet[strings.ToLower(t)] = true
	}
	for _, w := range want {
		if haveSet[strings.ToLower(w)] {
			return true
		}
	}
	return false
}

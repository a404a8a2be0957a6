package query

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Parse builds a Filter from a query string. Recognized keys are
// type/subtype/tag/topic/status/maturity/since/space/archived/limit/sort;
// any bare token (no `key:` prefix) or unrecognized key is treated as
// lexical search text and appended to Filter.Text (§4.9's filter grammar is
// explicitly a superset of plain search text).
func Parse(input string, now time.Time) (Filter, error) {
	f := Default()
	var textParts []string

	for _, tok := range lex(input) {
		key, value, hasColon := splitToken(tok.text)
		if !hasColon {
			textParts = append(textParts, tok.text)
			continue
		}
		switch strings.ToLower(key) {
		case "type":
			f.Type = value
		case "subtype":
			f.Subtype = value
		case "tag":
			f.Tags = append(f.Tags, strings.Split(value, ",")...)
		case "topic":
			f.Topic = value
		case "status":
			f.Status = value
		case "maturity":
			f.Maturity = value
		case "space":
			f.Space = value
		case "since":
			t, err := parseSince(value, now)
			if err != nil {
				return Filter{}, fmt.Errorf("query: parse since=%q: %w", value, err)
			}
			f.Since = t
		case "archived":
			a, err := parseArchived(value)
			if err != nil {
				return Filter{}, err
			}
			f.Archived = a
		case "limit":
			n, err := strconv.Atoi(value)
			if err != nil {
				return Filter{}, fmt.Errorf("query: parse limit=%q: %w", value, err)
			}
			f.Limit = n
		case "sort":
			s := Sort(value)
			switch s {
			case SortRelevance, SortRecency, SortGraph, SortPriority, SortTitle, SortType:
				f.Sort = s
			default:
				return Filter{}, fmt.Errorf("query: unknown sort mode %q", value)
			}
		default:
			// Unrecognized key: treat the whole token as search text rather
			// than rejecting the query outright.
			textParts = append(textParts, tok.text)
		}
	}

	f.Text = strings.Join(textParts, " ")
	return f, nil
}

func splitToken(s string) (key, value string, hasColon bool) {
	idx := strings.Index(s, ":")
	if idx < 0 {
		return "", "", false
	}
	return s[:idx], s[idx+1:], true
}

func parseArchived(value string) (Archived, error) {
	switch strings.ToLower(value) {
	case "true", "include", "yes":
		return ArchivedInclude, nil
	case "only":
		return ArchivedOnly, nil
	case "false", "exclude", "no", "":
		return ArchivedExclude, nil
	default:
		return 0, fmt.Errorf("query: unknown archived=%q", value)
	}
}

// parseSince accepts an RFC3339 timestamp or a relative duration suffixed
// with d/h/m (e.g. "7d", "24h"), both common in the corpus's own CLI flags.
func parseSince(value string, now time.Time) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	if len(value) < 2 {
		return time.Time{}, fmt.Errorf("unrecognized since value")
	}
	unit := value[len(value)-1]
	numPart := value[:len(value)-1]
	n, err := strconv.Atoi(numPart)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized since value")
	}
	switch unit {
	case 'd':
		return now.AddDate(0, 0, -n), nil
	case 'h':
		return now.Add(-time.Duration(n) * time.Hour), nil
	case 'm':
		return now.AddDate(0, -n, 0), nil
	default:
		return time.Time{}, fmt.Errorf("unrecognized since unit %q", string(unit))
	}
}

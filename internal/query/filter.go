// Package query implements the structured-retrieval filter grammar shared
// by `search`, `get`, `list`, `work_queue` and `decision_support` (§4.9): a
// small token language of `key:value[,value...]` terms plus bare words that
// fall through to lexical search text.
package query

import "time"

// Archived selects how archived nodes participate in a filter.
type Archived int

const (
	ArchivedExclude Archived = iota // default: archived nodes never match
	ArchivedInclude                 // archived and non-archived both match
	ArchivedOnly                    // only archived nodes match
)

// Sort is one of the ranking modes §4.9 names for structured retrieval.
type Sort string

const (
	SortRelevance Sort = "relevance"
	SortRecency   Sort = "recency"
	SortGraph     Sort = "graph"
	SortPriority  Sort = "priority"
	SortTitle     Sort = "title"
	SortType      Sort = "type"
)

// Filter is the parsed form of a structured-retrieval query string.
type Filter struct {
	Type     string
	Subtype  string
	Tags     []string // OR-matched
	Topic    string
	Status   string
	Maturity string
	Space    string
	Since    time.Time // zero value means "no lower bound"
	Archived Archived
	Limit    int
	Sort     Sort
	Text     string // remaining bare words, fed to lexical search
}

// Default returns a Filter with no constraints beyond the defaults: archived
// excluded, relevance-sorted, unlimited.
func Default() Filter {
	return Filter{Sort: SortRelevance}
}

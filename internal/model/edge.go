package model

import "time"

// EdgeType identifies the relation an edge carries. "relates" is the
// default, untyped link; others have structural meaning to the engine.
type EdgeType string

const (
	EdgeRelates      EdgeType = "relates"
	EdgeSupersedes   EdgeType = "supersedes"
	EdgeSupersededBy EdgeType = "superseded_by"
)

// Layer is the provenance of an edge: whether it was declared in
// frontmatter links or extracted from a body wikilink.
type Layer string

const (
	LayerFrontmatter Layer = "frontmatter"
	LayerBody        Layer = "body"
)

// Edge is a directed, typed relation between two nodes (§3). Uniqueness key
// is (SourceID, TargetID, Type).
type Edge struct {
	SourceID      string
	TargetID      string
	Type          EdgeType
	Layer         Layer
	Weight        float64
	Bidirectional bool
	Stale         bool
	Created       time.Time
}

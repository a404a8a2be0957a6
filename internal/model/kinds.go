// Package model implements the content model: node/edge/tag types, the
// closed registry of (kind, subtype) content rules, and lifecycle transition
// tables (§3, §4.2, §9 "Duck-typed content subtypes").
package model

// Kind is the closed set of content kinds a node may have.
type Kind string

const (
	KindNote      Kind = "note"
	KindReference Kind = "reference"
	KindLog       Kind = "log"
	KindTask      Kind = "task"
)

// Valid reports whether k is one of the four recognized content kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindNote, KindReference, KindLog, KindTask:
		return true
	default:
		return false
	}
}

// Subtype further classifies a node within its kind. The empty string means
// "no subtype"; subtype-specific rules are registry entries, never
// duck-typed attribute checks.
type Subtype string

const (
	SubtypeNone     Subtype = ""
	SubtypeDecision Subtype = "decision"
)

// Space is the top-level vault directory a node's file lives under.
type Space string

const (
	SpaceSelf  Space = "self"
	SpaceNotes Space = "notes"
	SpaceOps   Space = "ops"
)

// SpaceFor returns the vault space a kind is filed under.
func SpaceFor(k Kind) Space {
	switch k {
	case KindNote, KindReference:
		return SpaceNotes
	case KindLog, KindTask:
		return SpaceOps
	default:
		return SpaceNotes
	}
}

// Maturity is the human-driven "garden" lifecycle, orthogonal to machine
// status. A non-null maturity makes the node's body read-only to the engine.
type Maturity string

const (
	MaturityNone      Maturity = ""
	MaturitySeed      Maturity = "seed"
	MaturityBudding   Maturity = "budding"
	MaturityEvergreen Maturity = "evergreen"
)

// Garden reports whether m locks the node's body bytes against engine edits.
func (m Maturity) Garden() bool {
	return m != MaturityNone
}

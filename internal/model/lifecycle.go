package model

// Note machine status, computed from outgoing edge count (§3). The exact
// thresholds are an open question the source does not state numerically
// (spec §9); this is the decision recorded in DESIGN.md: draft has zero
// outgoing edges, linked has one or two, connected has three or more.
const (
	NoteDraft     = "draft"
	NoteLinked    = "linked"
	NoteConnected = "connected"
)

const (
	noteLinkedMinEdges    = 1
	noteConnectedMinEdges = 3
)

// NoteStatusForEdgeCount computes a note's machine status from its current
// outgoing edge count. Called after every write that could change the edge
// count (create, update, propagate, reweave).
func NoteStatusForEdgeCount(outgoingEdges int) string {
	switch {
	case outgoingEdges >= noteConnectedMinEdges:
		return NoteConnected
	case outgoingEdges >= noteLinkedMinEdges:
		return NoteLinked
	default:
		return NoteDraft
	}
}

// Reference status.
const (
	ReferenceCaptured  = "captured"
	ReferenceAnnotated = "annotated"
)

// Log status, bidirectional.
const (
	LogOpen   = "open"
	LogClosed = "closed"
)

// Task status.
const (
	TaskInbox   = "inbox"
	TaskActive  = "active"
	TaskBlocked = "blocked"
	TaskDone    = "done"
	TaskDropped = "dropped"
)

// Decision status (subtype=decision notes).
const (
	DecisionProposed   = "proposed"
	DecisionAccepted   = "accepted"
	DecisionSuperseded = "superseded"
	DecisionRejected   = "rejected"
)

// transitions maps each (kind, subtype) to its validated status-transition
// table: from-status -> set of allowed to-statuses. Nodes without an entry
// here (e.g. plain notes driven purely by NoteStatusForEdgeCount) are not
// subject to explicit transition validation.
var transitions = map[Kind]map[string][]string{
	KindLog: {
		LogOpen:   {LogClosed},
		LogClosed: {LogOpen},
	},
	KindTask: {
		TaskInbox:   {TaskActive, TaskDropped},
		TaskActive:  {TaskBlocked, TaskDone, TaskDropped},
		TaskBlocked: {TaskActive, TaskDropped},
		TaskDone:    {},
		TaskDropped: {},
	},
	KindReference: {
		ReferenceCaptured:  {ReferenceAnnotated},
		ReferenceAnnotated: {},
	},
}

var decisionTransitions = map[string][]string{
	DecisionProposed:   {DecisionAccepted, DecisionRejected},
	DecisionAccepted:   {DecisionSuperseded},
	DecisionRejected:   {},
	DecisionSuperseded: {},
}

// ValidTransition reports whether moving a node of the given kind/subtype
// from one status to another is permitted by its transition table. Plain
// notes (no registered table) always report true — their status is
// recomputed, not validated.
func ValidTransition(kind Kind, subtype Subtype, from, to string) bool {
	if from == to {
		return true
	}
	var table map[string][]string
	if kind == KindNote && subtype == SubtypeDecision {
		table = decisionTransitions
	} else {
		table = transitions[kind]
	}
	if table == nil {
		return true
	}
	allowed, ok := table[from]
	if !ok {
		return false
	}
	for _, candidate := range allowed {
		if candidate == to {
			return true
		}
	}
	return false
}

package ids

import "regexp"

// Identifier patterns, bit-exact per the external interface contract:
// ztl_[0-9a-f]{8}, ref_[0-9a-f]{8}, LOG-\d{4,}, TASK-\d{4,}.
var (
	noteIDPattern      = regexp.MustCompile(`^ztl_[0-9a-f]{8}$`)
	referenceIDPattern = regexp.MustCompile(`^ref_[0-9a-f]{8}$`)
	logIDPattern       = regexp.MustCompile(`^LOG-\d{4,}$`)
	taskIDPattern      = regexp.MustCompile(`^TASK-\d{4,}$`)
)

// Valid reports whether id is well-formed for its claimed kind.
func Valid(kind Kind, id string) bool {
	switch kind {
	case KindNote:
		return noteIDPattern.MatchString(id)
	case KindReference:
		return referenceIDPattern.MatchString(id)
	case KindLog:
		return logIDPattern.MatchString(id)
	case KindTask:
		return taskIDPattern.MatchString(id)
	default:
		return false
	}
}

// KindOf classifies an identifier by matching it against each kind's full
// id pattern. Returns ok=false if the id matches no known pattern.
func KindOf(id string) (kind Kind, ok bool) {
	switch {
	case noteIDPattern.MatchString(id):
		return KindNote, true
	case referenceIDPattern.MatchString(id):
		return KindReference, true
	case logIDPattern.MatchString(id):
		return KindLog, true
	case taskIDPattern.MatchString(id):
		return KindTask, true
	default:
		return 0, false
	}
}

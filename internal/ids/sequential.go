package ids

import "fmt"

// MinSequentialDigits is the minimum zero-padded width for sequential
// identifiers (LOG-0001, TASK-0001, ...). Counters never wrap or reuse gaps;
// once a counter exceeds the padding width the id simply grows wider.
const MinSequentialDigits = 4

// CounterStore mints the next integer for a sequential-id prefix. Storage
// implements this with an atomic read-modify-write inside the caller's
// relational transaction so two concurrent mints never collide.
type CounterStore interface {
	NextCounter(prefix string) (int64, error)
}

// FormatSequential renders a sequential identifier from a prefix and a
// counter value already minted by a CounterStore.
func FormatSequential(kind Kind, counter int64) (string, error) {
	if kind != KindLog && kind != KindTask {
		return "", fmt.Errorf("ids: sequential identifiers only apply to logs and tasks, got %v", kind)
	}
	return fmt.Sprintf("%s%0*d", kind.Prefix(), MinSequentialDigits, counter), nil
}

// MintSequential mints and formats the next identifier for kind using store.
func MintSequential(store CounterStore, kind Kind) (string, error) {
	counterPrefix := kind.Prefix()
	next, err := store.NextCounter(counterPrefix)
	if err != nil {
		return "", fmt.Errorf("ids: mint sequential for %s: %w", counterPrefix, err)
	}
	return FormatSequential(kind, next)
}

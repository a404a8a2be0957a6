package ids

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTitleStability(t *testing.T) {
	a := NormalizeTitle("Café — Notes!")
	b := NormalizeTitle("  Café   notes")
	assert.Equal(t, "café notes", a)
	assert.Equal(t, a, b)
}

func TestContentHashStableAndCollides(t *testing.T) {
	id1, err := ContentHash(KindNote, "Transformer Architectures")
	require.NoError(t, err)
	id2, err := ContentHash(KindNote, "Transformer Architectures")
	require.NoError(t, err)
	assert.Equal(t, id1, id2)
	assert.Regexp(t, `^ztl_[0-9a-f]{8}$`, id1)
}

func TestContentHashRejectsSequentialKinds(t *testing.T) {
	_, err := ContentHash(KindLog, "anything")
	assert.Error(t, err)
}

type fakeCounters struct {
	next map[string]int64
}

func (f *fakeCounters) NextCounter(prefix string) (int64, error) {
	f.next[prefix]++
	return f.next[prefix], nil
}

func TestMintSequentialFormat(t *testing.T) {
	store := &fakeCounters{next: map[string]int64{}}
	id, err := MintSequential(store, KindLog)
	require.NoError(t, err)
	assert.Equal(t, "LOG-0001", id)

	id2, err := MintSequential(store, KindLog)
	require.NoError(t, err)
	assert.Equal(t, "LOG-0002", id2)
}

func TestValidAndKindOf(t *testing.T) {
	assert.True(t, Valid(KindNote, "ztl_deadbeef"))
	assert.False(t, Valid(KindNote, "ztl_zz"))

	kind, ok := KindOf("TASK-0042")
	require.True(t, ok)
	assert.Equal(t, KindTask, kind)

	_, ok = KindOf("nope")
	assert.False(t, ok)
}

package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ThatDevStudio/ztlctl/internal/model"
)

func TestParseStructuredTerms(t *testing.T) {
	now := time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC)
	f, err := Parse(`type:note tag:domain/ml,domain/nlp status:draft sort:recency limit:5 transformers`, now)
	require.NoError(t, err)

	assert.Equal(t, "note", f.Type)
	assert.Equal(t, []string{"domain/ml", "domain/nlp"}, f.Tags)
	assert.Equal(t, "draft", f.Status)
	assert.Equal(t, SortRecency, f.Sort)
	assert.Equal(t, 5, f.Limit)
	assert.Equal(t, "transformers", f.Text)
}

func TestParseSinceRelative(t *testing.T) {
	now := time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC)
	f, err := Parse("since:7d", now)
	require.NoError(t, err)
	assert.Equal(t, now.AddDate(0, 0, -7), f.Since)
}

func TestParseUnknownSortRejected(t *testing.T) {
	_, err := Parse("sort:bogus", time.Now())
	assert.Error(t, err)
}

func TestParseUnrecognizedKeyFallsBackToText(t *testing.T) {
	f, err := Parse("nonsense:value plain words", time.Now())
	require.NoError(t, err)
	assert.Equal(t, "nonsense:value plain words", f.Text)
}

func TestParseQuotedValue(t *testing.T) {
	f, err := Parse(`topic:"machine learning" rest of query`, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "machine learning", f.Topic)
	assert.Equal(t, "rest of query", f.Text)
}

func TestMatchesStructuralConstraints(t *testing.T) {
	n := &model.Node{Type: model.KindNote, Status: model.NoteDraft, Topic: "ml", Modified: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}

	f := Default()
	f.Type = "note"
	assert.True(t, Matches(f, n, nil))

	f.Type = "task"
	assert.False(t, Matches(f, n, nil))
}

func TestMatchesArchivedModes(t *testing.T) {
	n := &model.Node{Type: model.KindNote, Archived: true}

	f := Default()
	assert.False(t, Matches(f, n, nil), "default excludes archived")

	f.Archived = ArchivedOnly
	assert.True(t, Matches(f, n, nil))

	f.Archived = ArchivedInclude
	assert.True(t, Matches(f, n, nil))
}

func TestMatchesTagsOrSemantics(t *testing.T) {
	n := &model.Node{Type: model.KindNote}
	f := Default()
	f.Tags = []string{"domain/ml", "domain/nlp"}

	assert.False(t, Matches(f, n, []string{"domain/ops"}))
	assert.True(t, Matches(f, n, []string{"domain/nlp"}))
}

func TestMatchesSinceLowerBound(t *testing.T) {
	n := &model.Node{Type: model.KindNote, Modified: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	f := Default()
	f.Since = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	assert.False(t, Matches(f, n, nil))
}

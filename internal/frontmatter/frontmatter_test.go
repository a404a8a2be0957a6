package frontmatter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `---
id: ztl_deadbeef
title: Transformer Architectures # nice title
tags:
  - ml/architectures
custom_key: keep-me
---
# Transformer Architectures

Body text.
`

func TestParseRoundTrip(t *testing.T) {
	doc, err := Parse(sample)
	require.NoError(t, err)

	id, ok := doc.Get("id")
	require.True(t, ok)
	assert.Equal(t, "ztl_deadbeef", id)

	tags, ok := doc.GetSequence("tags")
	require.True(t, ok)
	assert.Equal(t, []string{"ml/architectures"}, tags)

	out, err := doc.Render()
	require.NoError(t, err)
	assert.Contains(t, out, "custom_key: keep-me")
	assert.Contains(t, out, "Body text.")
}

func TestSetUpdatesExistingKey(t *testing.T) {
	doc, err := Parse(sample)
	require.NoError(t, err)

	doc.Set("title", "New Title")
	title, _ := doc.Get("title")
	assert.Equal(t, "New Title", title)
}

func TestReorderCanonicalAndPreservesExtras(t *testing.T) {
	doc, err := Parse(sample)
	require.NoError(t, err)
	doc.Set("type", "note")

	doc.Reorder()
	keys := doc.Keys()

	idxID := indexOf(keys, "id")
	idxType := indexOf(keys, "type")
	idxTitle := indexOf(keys, "title")
	idxCustom := indexOf(keys, "custom_key")
	require.True(t, idxID >= 0 && idxType >= 0 && idxTitle >= 0 && idxCustom >= 0)
	assert.Less(t, idxID, idxType)
	assert.Less(t, idxType, idxTitle)
	assert.Greater(t, idxCustom, idxTitle)
}

func TestParseNoFrontmatter(t *testing.T) {
	doc, err := Parse("just a body\n")
	require.NoError(t, err)
	assert.Equal(t, "just a body\n", doc.Body)
	assert.Empty(t, doc.Keys())
}

func indexOf(s []string, v string) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoteStatusThresholds(t *testing.T) {
	assert.Equal(t, NoteDraft, NoteStatusForEdgeCount(0))
	assert.Equal(t, NoteLinked, NoteStatusForEdgeCount(1))
	assert.Equal(t, NoteLinked, NoteStatusForEdgeCount(2))
	assert.Equal(t, NoteConnected, NoteStatusForEdgeCount(3))
	assert.Equal(t, NoteConnected, NoteStatusForEdgeCount(10))
}

func TestValidTransitionTask(t *testing.T) {
	assert.True(t, ValidTransition(KindTask, SubtypeNone, TaskInbox, TaskActive))
	assert.False(t, ValidTransition(KindTask, SubtypeNone, TaskDone, TaskActive))
}

func TestValidTransitionDecision(t *testing.T) {
	assert.True(t, ValidTransition(KindNote, SubtypeDecision, DecisionProposed, DecisionAccepted))
	assert.False(t, ValidTransition(KindNote, SubtypeDecision, DecisionAccepted, DecisionProposed))
}

func TestRegistryLookupPrecedence(t *testing.T) {
	cm, err := Lookup(KindNote, SubtypeDecision)
	require.NoError(t, err)
	assert.Equal(t, SubtypeDecision, cm.Subtype)
	assert.Contains(t, cm.RequiredSections, "Rationale")

	cm, err = Lookup(KindNote, SubtypeNone)
	require.NoError(t, err)
	assert.Empty(t, cm.RequiredSections)
}

func TestDecisionValidateCreateRequiresSections(t *testing.T) {
	cm, err := Lookup(KindNote, SubtypeDecision)
	require.NoError(t, err)

	_, err = cm.ValidateCreate(&Node{}, "## Context\nhi")
	assert.Error(t, err)

	body := "## Context\nc\n## Choice\nc\n## Rationale\nr\n## Alternatives\na\n## Consequences\nc\n"
	_, err = cm.ValidateCreate(&Node{}, body)
	assert.NoError(t, err)
}

func TestDecisionImmutableAfterAccepted(t *testing.T) {
	cm, err := Lookup(KindNote, SubtypeDecision)
	require.NoError(t, err)

	_, err = cm.ValidateUpdate(&Node{Status: DecisionAccepted}, "new body")
	assert.Error(t, err)
}

func TestRenderTemplateDropsUnfilled(t *testing.T) {
	out := RenderTemplate("# {{Title}}\n{{Body}}", map[string]string{"Title": "Hi"})
	assert.Equal(t, "# Hi\n", out)
}

func TestBodyLocked(t *testing.T) {
	n := &Node{Type: KindNote, Subtype: SubtypeDecision, Status: DecisionAccepted}
	assert.True(t, n.BodyLocked())

	n2 := &Node{Type: KindNote, Maturity: MaturitySeed}
	assert.True(t, n2.BodyLocked())

	n3 := &Node{Type: KindNote}
	assert.False(t, n3.BodyLocked())
}

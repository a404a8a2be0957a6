package collab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRendererRendersBothDocs(t *testing.T) {
	r := DefaultRenderer{VaultName: "my-vault"}

	identity, err := r.Render(IdentityDoc)
	require.NoError(t, err)
	assert.Contains(t, identity, "my-vault")

	methodology, err := r.Render(MethodologyDoc)
	require.NoError(t, err)
	assert.Contains(t, methodology, "my-vault")
	assert.NotEqual(t, identity, methodology)
}

func TestDefaultRendererRejectsUnknownKind(t *testing.T) {
	r := DefaultRenderer{VaultName: "v"}
	_, err := r.Render(IdentityKind("bogus"))
	assert.Error(t, err)
}

package plugin

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ThatDevStudio/ztlctl/internal/eventbus"
)

func TestGitHandlerHandles(t *testing.T) {
	h := NewGitHandler(t.TempDir())
	assert.True(t, h.Handles(eventbus.PostSessionClose))
	assert.True(t, h.Handles(eventbus.PostCheck))
	assert.False(t, h.Handles(eventbus.PostCreate))
}

func TestGitHandlerNoopWithoutGitRepo(t *testing.T) {
	h := NewGitHandler(t.TempDir())
	err := h.Handle(context.Background(), eventbus.PostSessionClose, nil)
	assert.NoError(t, err)
}

func TestGitHandlerStagesChangesInRealRepo(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available in this environment")
	}
	root := t.TempDir()
	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = root
		require.NoError(t, cmd.Run())
	}
	run("init")
	run("config", "user.email", "test@example.com")
	run("config", "user.name", "test")

	require.NoError(t, os.WriteFile(filepath.Join(root, "note.md"), []byte("# hello"), 0o644))

	h := NewGitHandler(root)
	err := h.Handle(context.Background(), eventbus.PostCheck, nil)
	assert.NoError(t, err)
}

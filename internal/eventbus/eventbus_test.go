package eventbus

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ThatDevStudio/ztlctl/internal/obslog"
	"github.com/ThatDevStudio/ztlctl/internal/storage/sqlite"
)

func openTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

type recordingHandler struct {
	id       string
	handles  map[string]bool
	calls    []string
	failNext bool
}

func (h *recordingHandler) ID() string { return h.id }
func (h *recordingHandler) Handles(eventType string) bool { return h.handles[eventType] }
func (h *recordingHandler) Handle(ctx context.Context, eventType string, payload map[string]any) error {
	h.calls = append(h.calls, eventType)
	if h.failNext {
		h.failNext = false
		return assert.AnError
	}
	return nil
}

func TestDispatchSyncRunsHandlerInline(t *testing.T) {
	store := openTestStore(t)
	h := &recordingHandler{id: "h1", handles: map[string]bool{PostCreate: true}}
	bus := New(store, obslog.NewDiscard(), []Handler{h}, WithSync(true))

	warnings, err := bus.Dispatch(context.Background(), PostCreate, "sess", map[string]any{"id": "ztl_x"})
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, []string{PostCreate}, h.calls)
}

func TestDispatchSyncSurfacesHandlerFailureAsWarning(t *testing.T) {
	store := openTestStore(t)
	h := &recordingHandler{id: "h1", handles: map[string]bool{PostCreate: true}, failNext: true}
	bus := New(store, obslog.NewDiscard(), []Handler{h}, WithSync(true))

	warnings, err := bus.Dispatch(context.Background(), PostCreate, "sess", map[string]any{})
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "h1")
}

func TestHandlerIgnoresUnhandledEventType(t *testing.T) {
	store := openTestStore(t)
	h := &recordingHandler{id: "h1", handles: map[string]bool{PostCheck: true}}
	bus := New(store, obslog.NewDiscard(), []Handler{h}, WithSync(true))

	_, err := bus.Dispatch(context.Background(), PostCreate, "sess", map[string]any{})
	require.NoError(t, err)
	assert.Empty(t, h.calls)
}

func TestDispatchAsyncThenDrain(t *testing.T) {
	store := openTestStore(t)
	h := &recordingHandler{id: "h1", handles: map[string]bool{PostCreate: true}}
	bus := New(store, obslog.NewDiscard(), []Handler{h}, WithWorkers(2))

	_, err := bus.Dispatch(context.Background(), PostCreate, "sess", map[string]any{})
	require.NoError(t, err)
	require.NoError(t, bus.Drain(context.Background()))

	pending, err := sqlite.PendingEvents(context.Background(), store.DB())
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestDrainDeadLettersAfterMaxRetries(t *testing.T) {
	store := openTestStore(t)
	alwaysFail := &recordingHandlerAlwaysFails{id: "h1"}
	bus := New(store, obslog.NewDiscard(), []Handler{alwaysFail}, WithSync(false), WithMaxRetries(2))

	require.NoError(t, sqlite.InsertEvent(context.Background(), store.DB(), "ev-1", PostCreate, "{}", "sess"))

	require.NoError(t, bus.Drain(context.Background()))
	pending, err := sqlite.PendingEvents(context.Background(), store.DB())
	require.NoError(t, err)
	assert.Empty(t, pending, "dead-lettered events are no longer pending")
}

type recordingHandlerAlwaysFails struct{ id string }

func (h *recordingHandlerAlwaysFails) ID() string                    { return h.id }
func (h *recordingHandlerAlwaysFails) Handles(eventType string) bool { return true }
func (h *recordingHandlerAlwaysFails) Handle(ctx context.Context, eventType string, payload map[string]any) error {
	return assert.AnError
}

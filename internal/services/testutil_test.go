package services

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ThatDevStudio/ztlctl/internal/config"
	"github.com/ThatDevStudio/ztlctl/internal/eventbus"
	"github.com/ThatDevStudio/ztlctl/internal/obslog"
	"github.com/ThatDevStudio/ztlctl/internal/storage/sqlite"
)

// testHarness bundles one Engine and the full service set wired for a
// single test, against a fresh temp vault and in-process-synchronous
// event bus so assertions never race a background worker.
type testHarness struct {
	Engine  *Engine
	Create  *CreateService
	Update  *UpdateService
	Reweave *ReweaveService
	Check   *CheckService
	Session *SessionService
	Query   *QueryService
	Graph   *GraphQueryService
	Vector  *VectorService
}

func newHarness(t *testing.T) *testHarness {
	t.Helper()
	root := t.TempDir()
	store, err := sqlite.Open(filepath.Join(root, "index.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	cfg := config.Defaults()
	cfg.EventBus.Sync = true
	log := obslog.NewDiscard()
	bus := eventbus.New(store, log, nil, eventbus.WithSync(true))

	engine := New(store, bus, cfg, log, root)
	vector := NewVectorService(engine)
	reweave := NewReweaveService(engine)
	create := NewCreateService(engine, vector, reweave)
	update := NewUpdateService(engine, vector)
	check := NewCheckService(engine, "testvault", filepath.Join(root, "backups"))
	session := NewSessionService(engine, reweave, check)
	query := NewQueryService(engine, vector)
	graphQuery := NewGraphQueryService(engine)

	return &testHarness{
		Engine: engine, Create: create, Update: update, Reweave: reweave,
		Check: check, Session: session, Query: query, Graph: graphQuery, Vector: vector,
	}
}

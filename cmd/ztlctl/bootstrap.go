package main

import (
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/ThatDevStudio/ztlctl/internal/config"
	"github.com/ThatDevStudio/ztlctl/internal/eventbus"
	"github.com/ThatDevStudio/ztlctl/internal/obslog"
	"github.com/ThatDevStudio/ztlctl/internal/plugin"
	"github.com/ThatDevStudio/ztlctl/internal/services"
	"github.com/ThatDevStudio/ztlctl/internal/storage/sqlite"
)

// app bundles every service constructed for one CLI invocation.
type app struct {
	store   *sqlite.Store
	bus     *eventbus.Bus
	engine  *services.Engine
	create  *services.CreateService
	update  *services.UpdateService
	reweave *services.ReweaveService
	check   *services.CheckService
	session *services.SessionService
	query   *services.QueryService
	graph   *services.GraphQueryService
	vector  *services.VectorService
}

// openApp opens the relational index and wires every service, in this
// order: storage -> config -> log -> event bus (with the git collaborator)
// -> engine -> services.
func openApp(flags *pflag.FlagSet) (*app, error) {
	dbPath := flagDBPath
	if dbPath == "" {
		dbPath = filepath.Join(flagVaultRoot, ".ztlctl", "index.db")
	}
	store, err := sqlite.Open(dbPath)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(filepath.Join(flagVaultRoot, "ztlctl.toml"), flags)
	if err != nil {
		store.Close()
		return nil, err
	}
	if flagSync {
		cfg.EventBus.Sync = true
	}

	log := obslog.New(flagVaultRoot, "", "cli")

	bus := eventbus.New(store, log, []eventbus.Handler{plugin.NewGitHandler(flagVaultRoot)},
		eventbus.WithWorkers(maxInt(cfg.EventBus.Workers, 1)),
		eventbus.WithMaxRetries(maxInt(cfg.EventBus.MaxRetries, 1)),
		eventbus.WithSync(cfg.EventBus.Sync),
	)

	engine := services.New(store, bus, cfg, log, flagVaultRoot)
	vector := services.NewVectorService(engine)
	reweave := services.NewReweaveService(engine)
	create := services.NewCreateService(engine, vector, reweave)
	update := services.NewUpdateService(engine, vector)
	check := services.NewCheckService(engine, filepath.Base(flagVaultRoot), filepath.Join(flagVaultRoot, "backups"))
	session := services.NewSessionService(engine, reweave, check)
	query := services.NewQueryService(engine, vector)
	graphQuery := services.NewGraphQueryService(engine)

	return &app{
		store: store, bus: bus, engine: engine,
		create: create, update: update, reweave: reweave,
		check: check, session: session, query: query, graph: graphQuery, vector: vector,
	}, nil
}

func (a *app) Close() {
	a.store.Close()
}

func maxInt(n, floor int) int {
	if n < floor {
		return floor
	}
	return n
}

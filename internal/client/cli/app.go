// Package cli implements the interactive tripsync client: a small REPL that
// drives the sync engine and edits the local travel data.
package cli

import (
	"bufio"
	"context"
	"database/sql"
	"io"
	"log/slog"
	"os"

	"github.com/dmitrijs2005/tripsync/internal/client/config"
	"github.com/dmitrijs2005/tripsync/internal/client/gateway"
	"github.com/dmitrijs2005/tripsync/internal/client/services"
	"github.com/dmitrijs2005/tripsync/internal/client/store"
	"github.com/dmitrijs2005/tripsync/internal/client/syncer"
	"github.com/dmitrijs2005/tripsync/internal/logging"

	_ "modernc.org/sqlite"
)

type App struct {
	config *config.Config
	log    logging.Logger
	db     *sql.DB
	store  *store.LocalStore
	auth   *services.AuthService
	orch   *syncer.Orchestrator
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	db, err := store.Open(ctx, c.DatabasePath)
	if err != nil {
		log.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	ls := store.NewLocalStore(store.NewSQLiteKV(db), log)
	ls.MigrateLegacyData(ctx)

	auth := services.NewAuthService(c.ServerEndpointAddr, log)
	gw := gateway.New(c.ServerEndpointAddr, auth, log)
	orch := syncer.New(ls, gw, log, syncer.Options{
		PeriodicInterval:    c.SyncInterval,
		OnlineCheckInterval: c.OnlineCheckInterval,
	})

	return &App{
		config: c,
		log:    log,
		db:     db,
		store:  ls,
		auth:   auth,
		orch:   orch,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.db.Close()
	a.orch.Start(ctx)
	a.Main(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.auth.IsAuthenticated()
}

// Package repomanager wires the concrete repositories to one database
// handle and owns schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/tripsync/internal/server/repositories/records"
	"github.com/dmitrijs2005/tripsync/internal/server/repositories/users"
)

type RepositoryManager interface {
	Conn() *sql.DB
	Users() users.Repository
	Records() records.Repository
	RunMigrations(ctx context.Context) error
	Close() error
}

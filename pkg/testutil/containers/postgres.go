//go:build integration

package containers

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"idcard/migrations"
	id "idcard/pkg/domain"
)

// citizenTables are cleared between tests; schema_migrations is kept.
var citizenTables = []string{"outbox", "citizen_status_history", "citizens", "retired_citizen_ids"}

// PostgresContainer is a migrated Postgres shared by the integration suites.
type PostgresContainer struct {
	container *postgres.PostgresContainer
	DB        *sql.DB
}

// NewPostgresContainer starts Postgres, opens a pgx-backed *sql.DB and applies
// every embedded migration.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()
	ctx := context.Background()

	c, err := postgres.Run(ctx, "postgres:18-alpine",
		postgres.WithDatabase("idcard"),
		postgres.WithUsername("idcard"),
		postgres.WithPassword("idcard"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	if err != nil {
		t.Fatalf("start postgres: %v", err)
	}
	stop := func() { _ = c.Terminate(context.Background()) }

	dsn, err := c.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		stop()
		t.Fatalf("postgres dsn: %v", err)
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		stop()
		t.Fatalf("open postgres: %v", err)
	}
	applied, err := migrations.Up(ctx, db)
	if err != nil {
		_ = db.Close()
		stop()
		t.Fatalf("migrate: %v", err)
	}
	t.Logf("postgres ready, applied %s", strings.Join(applied, ", "))

	return &PostgresContainer{container: c, DB: db}
}

// TruncateAll empties the citizen and outbox tables.
func (p *PostgresContainer) TruncateAll(ctx context.Context) error {
	_, err := p.DB.ExecContext(ctx, "TRUNCATE TABLE "+strings.Join(citizenTables, ", ")+" CASCADE")
	return err
}

// HistoryLen counts stored history rows for a record.
func (p *PostgresContainer) HistoryLen(ctx context.Context, t testing.TB, recordID id.CitizenID) int {
	t.Helper()
	var n int
	err := p.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM citizen_status_history WHERE citizen_ref = $1`, uuid.UUID(recordID),
	).Scan(&n)
	if err != nil {
		t.Fatalf("count history: %v", err)
	}
	return n
}

package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/the1323/cs166-project-the033-hbai013/internal/repository"
	"github.com/the1323/cs166-project-the033-hbai013/pkg/metrics"
)

// Store provides repositories over a connection pool and runs
// transactional units of work.
type Store struct {
	db      *sqlx.DB
	metrics *metrics.Metrics
	repos   *repository.Repositories
}

func NewStore(db *sqlx.DB, m *metrics.Metrics) *Store {
	return &Store{
		db:      db,
		metrics: m,
		repos:   newRepositories(NewExecutor(db, m), false),
	}
}

// QueryReadOnly runs one statement in a read-only transaction that is always
// rolled back. The statement is prepared first, so input holding several
// statements is refused by the server.
func (s *Store) QueryReadOnly(ctx context.Context, query string) (*Table, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "SET TRANSACTION READ ONLY"); err != nil {
		return nil, fmt.Errorf("failed to set read-only transaction: %w", err)
	}

	stmt, err := tx.PreparexContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare query: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	return scanTable(rows)
}

func (s *Store) Repos() *repository.Repositories {
	return s.repos
}

// WithTx executes a function within a transaction
func (s *Store) WithTx(ctx context.Context, fn func(*repository.Repositories) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(newRepositories(NewExecutor(tx, s.metrics), true)); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

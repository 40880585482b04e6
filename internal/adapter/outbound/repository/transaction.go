package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// QueryInterface represents either a connection pool or a transaction.
type QueryInterface interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DB is the database handle the repository depends on. *pgxpool.Pool satisfies it.
type DB interface {
	QueryInterface
	Begin(ctx context.Context) (pgx.Tx, error)
}

// TransactionManager manages database transactions.
type TransactionManager struct {
	db DB
}

// NewTransactionManager creates a new transaction manager.
func NewTransactionManager(db DB) *TransactionManager {
	return &TransactionManager{db: db}
}

// WithTransaction executes fn within a database transaction. Queries issued through
// GetQueryInterface(txCtx, ...) join the transaction.
func (tm *TransactionManager) WithTransaction(ctx context.Context, fn func(context.Context) error) error {
	tx, err := tm.db.Begin(ctx)
	if err != nil {
		return WrapError(err, "begin transaction")
	}

	txCtx := context.WithValue(ctx, txContextKey{}, tx)

	if err := fn(txCtx); err != nil {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
			return fmt.Errorf("failed to rollback transaction after error %w: %w", err, rollbackErr)
		}
		return err
	}

	if commitErr := tx.Commit(ctx); commitErr != nil {
		return fmt.Errorf("failed to commit transaction: %w", commitErr)
	}
	return nil
}

// txContextKey is used as a key for storing transactions in context.
type txContextKey struct{}

// GetQueryInterface returns the transaction stored in ctx, or db when there is none.
func GetQueryInterface(ctx context.Context, db DB) QueryInterface {
	if tx, ok := ctx.Value(txContextKey{}).(pgx.Tx); ok {
		return tx
	}
	return db
}

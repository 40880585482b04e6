package repository

import (
	"context"
	"fmt"
	"time"

	"chatledger/internal/application/common/slogger"
	"chatledger/internal/domain/entity"
	"chatledger/internal/domain/valueobject"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PostgreSQLRequestRepository implements the RequestRepository interface.
//
// Requests are keyed by their timestamp and full text, so re-running an extraction over
// the same transcript stores nothing new.
type PostgreSQLRequestRepository struct {
	db     DB
	tm     *TransactionManager
	schema string
}

// NewPostgreSQLRequestRepository creates a new PostgreSQL request repository.
func NewPostgreSQLRequestRepository(db DB, schema string) (*PostgreSQLRequestRepository, error) {
	if err := validateSchemaName(schema); err != nil {
		return nil, err
	}
	return &PostgreSQLRequestRepository{
		db:     db,
		tm:     NewTransactionManager(db),
		schema: schema,
	}, nil
}

const requestColumns = `id, sent_at, month, request_type, category, description, urgency, effort, full_text, message_length`

func insertRequestSQL(schema string) string {
	return fmt.Sprintf(`
		INSERT INTO %s.requests (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (sent_at, full_text) DO NOTHING`, schema, requestColumns)
}

func insertRequestArgs(request *entity.Request) []any {
	return []any{
		request.ID(),
		request.Timestamp(),
		request.Month(),
		request.RequestType(),
		request.Category(),
		request.Description(),
		request.Urgency().String(),
		request.Effort().String(),
		request.FullText(),
		request.MessageLength(),
	}
}

// SaveBatch stores requests in one transaction.
func (r *PostgreSQLRequestRepository) SaveBatch(ctx context.Context, requests []*entity.Request) error {
	for i, request := range requests {
		if request == nil {
			return fmt.Errorf("%w: request %d is nil", ErrInvalidArgument, i)
		}
	}
	if len(requests) == 0 {
		return nil
	}

	query := insertRequestSQL(r.schema)
	return r.tm.WithTransaction(ctx, func(txCtx context.Context) error {
		qi := GetQueryInterface(txCtx, r.db)
		var inserted int64
		for _, request := range requests {
			tag, err := qi.Exec(txCtx, query, insertRequestArgs(request)...)
			if err != nil {
				return WrapError(err, "save requests")
			}
			inserted += tag.RowsAffected()
		}

		slogger.Debug(ctx, "Request batch stored", slogger.Fields{
			"requests": len(requests),
			"inserted": inserted,
		})
		return nil
	})
}

// FindByMonth returns the requests of one month in timestamp order.
func (r *PostgreSQLRequestRepository) FindByMonth(ctx context.Context, month string) ([]*entity.Request, error) {
	if _, err := time.Parse(entity.MonthLayout, month); err != nil {
		return nil, fmt.Errorf("%w: month %q must look like 2006-01", ErrInvalidArgument, month)
	}

	query := fmt.Sprintf(`
		SELECT id, sent_at, request_type, category, description, urgency, effort, full_text, message_length
		FROM %s.requests
		WHERE month = $1
		ORDER BY sent_at, id`, r.schema)

	rows, err := GetQueryInterface(ctx, r.db).Query(ctx, query, month)
	if err != nil {
		return nil, WrapError(err, "find requests by month")
	}
	defer rows.Close()

	var requests []*entity.Request
	for rows.Next() {
		request, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, request)
	}
	if err := rows.Err(); err != nil {
		return nil, WrapError(err, "find requests by month")
	}
	return requests, nil
}

func scanRequest(row pgx.Row) (*entity.Request, error) {
	var id uuid.UUID
	var sentAt time.Time
	var requestType, category, description, urgencyStr, effortStr, fullText string
	var messageLength int
	if err := row.Scan(&id, &sentAt, &requestType, &category, &description,
		&urgencyStr, &effortStr, &fullText, &messageLength); err != nil {
		return nil, WrapError(err, "scan request")
	}

	urgency, err := valueobject.NewUrgency(urgencyStr)
	if err != nil {
		return nil, fmt.Errorf("stored request %s: %w", id, err)
	}
	effort, err := valueobject.NewEffort(effortStr)
	if err != nil {
		return nil, fmt.Errorf("stored request %s: %w", id, err)
	}

	return entity.RestoreRequest(id, sentAt.UTC(), requestType, category, description,
		urgency, effort, fullText, messageLength), nil
}

// CountByCategory returns the number of stored requests per category.
func (r *PostgreSQLRequestRepository) CountByCategory(ctx context.Context) (map[string]int, error) {
	return r.countBy(ctx, "category", "count requests by category")
}

// CountByMonth returns the number of stored requests per month.
func (r *PostgreSQLRequestRepository) CountByMonth(ctx context.Context) (map[string]int, error) {
	return r.countBy(ctx, "month", "count requests by month")
}

// countBy groups on a fixed column name; column is never user input.
func (r *PostgreSQLRequestRepository) countBy(ctx context.Context, column, operation string) (map[string]int, error) {
	query := fmt.Sprintf(`SELECT %[1]s, COUNT(*) FROM %[2]s.requests GROUP BY %[1]s`, column, r.schema)

	rows, err := GetQueryInterface(ctx, r.db).Query(ctx, query)
	if err != nil {
		return nil, WrapError(err, operation)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return nil, WrapError(err, operation)
		}
		counts[key] = count
	}
	if err := rows.Err(); err != nil {
		return nil, WrapError(err, operation)
	}
	return counts, nil
}

package transaction

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Repository is the durable store for extracted transactions.
type Repository interface {
	InsertBatch(ctx context.Context, txs []ExtractedTransaction) error
	ListByDocument(ctx context.Context, documentID uuid.UUID) ([]ExtractedTransaction, error)
	// ListByDay returns all transactions dated on the given calendar day,
	// the candidate set for near-duplicate detection.
	ListByDay(ctx context.Context, day time.Time) ([]ExtractedTransaction, error)
	DeleteByDocument(ctx context.Context, documentID uuid.UUID) error
}

// DB is the subset of pgxpool.Pool the repository uses.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PgRepository persists transactions in Postgres.
type PgRepository struct {
	db DB
}

// NewPgRepository creates a Postgres-backed transaction repository.
func NewPgRepository(db DB) *PgRepository {
	return &PgRepository{db: db}
}

const transactionColumns = `id, document_id, date, amount, description, type,
	category, is_month_summary, account_number, created_at`

func (r *PgRepository) InsertBatch(ctx context.Context, txs []ExtractedTransaction) error {
	if len(txs) == 0 {
		return nil
	}

	query := `
		INSERT INTO transactions (
			id, document_id, date, amount, description, type,
			category, is_month_summary, account_number, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	for _, tx := range txs {
		_, err := r.db.Exec(ctx, query,
			tx.ID, tx.DocumentID, tx.Date, tx.Amount, tx.Description, tx.Type,
			tx.Category, tx.IsMonthSummary, tx.AccountNumber, tx.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert transaction %s: %w", tx.ID, err)
		}
	}
	return nil
}

func (r *PgRepository) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]ExtractedTransaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE document_id = $1 ORDER BY date, created_at`
	rows, err := r.db.Query(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("list transactions for document: %w", err)
	}
	return collectTransactions(rows)
}

func (r *PgRepository) ListByDay(ctx context.Context, day time.Time) ([]ExtractedTransaction, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE date >= $1 AND date < $2`
	rows, err := r.db.Query(ctx, query, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("list transactions for day: %w", err)
	}
	return collectTransactions(rows)
}

func (r *PgRepository) DeleteByDocument(ctx context.Context, documentID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM transactions WHERE document_id = $1`, documentID)
	if err != nil {
		return fmt.Errorf("delete transactions for document: %w", err)
	}
	return nil
}

func collectTransactions(rows pgx.Rows) ([]ExtractedTransaction, error) {
	defer rows.Close()

	var txs []ExtractedTransaction
	for rows.Next() {
		var tx ExtractedTransaction
		if err := rows.Scan(
			&tx.ID,
			&tx.DocumentID,
			&tx.Date,
			&tx.Amount,
			&tx.Description,
			&tx.Type,
			&tx.Category,
			&tx.IsMonthSummary,
			&tx.AccountNumber,
			&tx.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

package document

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when a document id has no row.
var ErrNotFound = errors.New("document not found")

// Repository is the durable store for documents.
type Repository interface {
	Create(ctx context.Context, doc *Document) error
	GetByID(ctx context.Context, id uuid.UUID) (*Document, error)
	// GetByHash returns ErrNotFound when no document has this content hash.
	GetByHash(ctx context.Context, hash string) (*Document, error)
	// GetContent returns the raw file bytes, kept out of listing queries.
	GetContent(ctx context.Context, id uuid.UUID) ([]byte, error)
	List(ctx context.Context) ([]Document, error)
	// MarkCompleted sets the terminal completed state with the extracted
	// transaction count and the detected statement period, if any.
	MarkCompleted(ctx context.Context, id uuid.UUID, txCount int, periodStart, periodEnd *time.Time) error
	// MarkError sets the terminal error state with a human-readable message.
	MarkError(ctx context.Context, id uuid.UUID, message string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// DB is the subset of pgxpool.Pool the repository uses.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PgRepository persists documents in Postgres.
type PgRepository struct {
	db DB
}

// NewPgRepository creates a Postgres-backed document repository.
func NewPgRepository(db DB) *PgRepository {
	return &PgRepository{db: db}
}

const documentColumns = `id, name, content_hash, status, error_message, transaction_count,
	file_name_date, period_start, period_end, uploaded_at, processed_at`

func (r *PgRepository) Create(ctx context.Context, doc *Document) error {
	query := `
		INSERT INTO documents (
			id, name, content, content_hash, status, file_name_date, uploaded_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query,
		doc.ID, doc.Name, doc.Content, doc.ContentHash, doc.Status, doc.FileNameDate, doc.UploadedAt)
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

func (r *PgRepository) GetByID(ctx context.Context, id uuid.UUID) (*Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	doc, err := scanDocument(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("get document %s: %w", id, err)
	}
	return doc, nil
}

func (r *PgRepository) GetByHash(ctx context.Context, hash string) (*Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE content_hash = $1 LIMIT 1`
	doc, err := scanDocument(r.db.QueryRow(ctx, query, hash))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get document by hash: %w", err)
	}
	return doc, nil
}

func (r *PgRepository) GetContent(ctx context.Context, id uuid.UUID) ([]byte, error) {
	var content []byte
	err := r.db.QueryRow(ctx, `SELECT content FROM documents WHERE id = $1`, id).Scan(&content)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get document content: %w", err)
	}
	return content, nil
}

func (r *PgRepository) List(ctx context.Context) ([]Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents ORDER BY uploaded_at`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("list documents: %w", err)
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

func (r *PgRepository) MarkCompleted(ctx context.Context, id uuid.UUID, txCount int, periodStart, periodEnd *time.Time) error {
	query := `
		UPDATE documents
		SET status = $2, transaction_count = $3, period_start = $4, period_end = $5,
			error_message = '', processed_at = now()
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query, id, StatusCompleted, txCount, periodStart, periodEnd)
	if err != nil {
		return fmt.Errorf("mark document completed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PgRepository) MarkError(ctx context.Context, id uuid.UUID, message string) error {
	query := `
		UPDATE documents
		SET status = $2, error_message = $3, processed_at = now()
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query, id, StatusError, message)
	if err != nil {
		return fmt.Errorf("mark document error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PgRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanDocument(row pgx.Row) (*Document, error) {
	var doc Document
	err := row.Scan(
		&doc.ID,
		&doc.Name,
		&doc.ContentHash,
		&doc.Status,
		&doc.ErrorMessage,
		&doc.TransactionCount,
		&doc.FileNameDate,
		&doc.PeriodStart,
		&doc.PeriodEnd,
		&doc.UploadedAt,
		&doc.ProcessedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

package transaction

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var transactionRows = []string{
	"id", "document_id", "date", "amount", "description", "type",
	"category", "is_month_summary", "account_number", "created_at",
}

func sampleTx(docID uuid.UUID, day time.Time, desc string, amount float64) ExtractedTransaction {
	return ExtractedTransaction{
		ID:          uuid.New(),
		DocumentID:  docID,
		Date:        day,
		Amount:      decimal.NewFromFloat(amount),
		Description: desc,
		Type:        TypeExpense,
		Category:    "Entertainment",
		CreatedAt:   time.Now(),
	}
}

func TestPgRepository_InsertBatch(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPgRepository(mock)
	docID := uuid.New()
	day := time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC)
	txs := []ExtractedTransaction{
		sampleTx(docID, day, "STARBUCKS STORE #1234", 5.75),
		sampleTx(docID, day, "GROCERY OUTLET", 54.20),
	}

	for _, tx := range txs {
		mock.ExpectExec(`INSERT INTO transactions`).
			WithArgs(tx.ID, tx.DocumentID, tx.Date, tx.Amount, tx.Description, tx.Type,
				tx.Category, tx.IsMonthSummary, tx.AccountNumber, tx.CreatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}

	require.NoError(t, repo.InsertBatch(context.Background(), txs))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgRepository_ListByDay(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPgRepository(mock)
	day := time.Date(2023, 1, 5, 14, 30, 0, 0, time.UTC)
	dayStart := time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC)
	tx := sampleTx(uuid.New(), dayStart, "STARBUCKS STORE #1234", 5.75)

	mock.ExpectQuery(`FROM transactions WHERE date >=`).
		WithArgs(dayStart, dayStart.AddDate(0, 0, 1)).
		WillReturnRows(pgxmock.NewRows(transactionRows).AddRow(
			tx.ID, tx.DocumentID, tx.Date, tx.Amount, tx.Description, tx.Type,
			tx.Category, tx.IsMonthSummary, tx.AccountNumber, tx.CreatedAt,
		))

	got, err := repo.ListByDay(context.Background(), day)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "STARBUCKS STORE #1234", got[0].Description)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMemoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	docA, docB := uuid.New(), uuid.New()
	jan5 := time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC)
	jan6 := time.Date(2023, 1, 6, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.InsertBatch(ctx, []ExtractedTransaction{
		sampleTx(docA, jan5, "COFFEE", 4.50),
		sampleTx(docA, jan6, "GROCERY", 60.00),
		sampleTx(docB, jan5, "GAS", 40.00),
	}))

	byDoc, err := repo.ListByDocument(ctx, docA)
	require.NoError(t, err)
	assert.Len(t, byDoc, 2)

	byDay, err := repo.ListByDay(ctx, jan5.Add(11*time.Hour))
	require.NoError(t, err)
	assert.Len(t, byDay, 2)

	require.NoError(t, repo.DeleteByDocument(ctx, docA))
	byDoc, err = repo.ListByDocument(ctx, docA)
	require.NoError(t, err)
	assert.Empty(t, byDoc)
}

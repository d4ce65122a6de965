// Package extraction runs the statement extraction pipeline: rasterize the
// PDF, preprocess and OCR each page, parse transaction rows out of the noisy
// text, normalize and categorize them, and persist the result with duplicate
// suppression.
package extraction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Jameshuff91/budget-planner/internal/domain/categorization"
	"github.com/Jameshuff91/budget-planner/internal/domain/document"
	"github.com/Jameshuff91/budget-planner/internal/domain/extraction/normalizer"
	"github.com/Jameshuff91/budget-planner/internal/domain/extraction/ocr"
	"github.com/Jameshuff91/budget-planner/internal/domain/extraction/parser"
	"github.com/Jameshuff91/budget-planner/internal/domain/extraction/preprocess"
	"github.com/Jameshuff91/budget-planner/internal/domain/extraction/raster"
	"github.com/Jameshuff91/budget-planner/internal/domain/transaction"
	"github.com/Jameshuff91/budget-planner/pkg/checksum"
	"github.com/Jameshuff91/budget-planner/pkg/config"
)

// Document-fatal conditions. These abort one document and are recorded on it;
// everything else in the pipeline is logged and skipped.
var (
	ErrRasterizerUnavailable = errors.New("pdf rasterizer is not available")
	ErrOCRUnavailable        = errors.New("ocr engine is not available")
)

// ProgressFunc is invoked once per completed page with (currentPage,
// totalPages). It runs on its own goroutine: it can never block processing,
// and a panic inside it does not abort the document.
type ProgressFunc func(currentPage, totalPages int)

// Pipeline extracts transactions from statement PDFs. A Pipeline value holds
// no per-document state, so independent documents may be processed
// concurrently by the same instance; the stores serialize writes per
// document.
type Pipeline struct {
	rasterizer   raster.Rasterizer
	engine       ocr.Engine
	preprocessor preprocess.Preprocessor
	documents    document.Repository
	transactions transaction.Repository
	categorizer  *categorization.Categorizer

	amounts *normalizer.AmountParser
	dates   *normalizer.DateParser

	maxSummaryAmount float64
	dupSimilarity    float64
	logger           *slog.Logger
}

// Params wires a pipeline. All fields except Logger are required.
type Params struct {
	Rasterizer   raster.Rasterizer
	Engine       ocr.Engine
	Preprocessor preprocess.Preprocessor
	Documents    document.Repository
	Transactions transaction.Repository
	Categorizer  *categorization.Categorizer
	Extraction   config.ExtractionConfig
	Logger       *slog.Logger
}

// New creates a pipeline.
func New(p Params) *Pipeline {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		rasterizer:       p.Rasterizer,
		engine:           p.Engine,
		preprocessor:     p.Preprocessor,
		documents:        p.Documents,
		transactions:     p.Transactions,
		categorizer:      p.Categorizer,
		amounts:          normalizer.NewAmountParser(p.Extraction.MaxAmount, logger),
		dates:            normalizer.NewDateParser(logger),
		maxSummaryAmount: p.Extraction.MaxSummaryAmount,
		dupSimilarity:    p.Extraction.DuplicateSimilarity,
		logger:           logger,
	}
}

// ProcessDocument ingests one statement file and returns the extracted
// transactions. Re-submitting bytes already imported is not an error: the
// whole-file content hash matches and the result is empty.
func (p *Pipeline) ProcessDocument(ctx context.Context, name string, content []byte, onProgress ProgressFunc) ([]transaction.ExtractedTransaction, error) {
	hash := checksum.SHA256(content)

	if existing, err := p.documents.GetByHash(ctx, hash); err == nil {
		p.logger.Info("file already imported, skipping",
			slog.String("name", name),
			slog.String("existing_document", existing.ID.String()))
		return nil, nil
	} else if !errors.Is(err, document.ErrNotFound) {
		return nil, fmt.Errorf("extraction: check content hash: %w", err)
	}

	doc := &document.Document{
		ID:          uuid.New(),
		Name:        name,
		Content:     content,
		ContentHash: hash,
		Status:      document.StatusProcessing,
		UploadedAt:  time.Now(),
	}
	if d, ok := document.DateFromFileName(name); ok {
		doc.FileNameDate = &d
	}
	if err := p.documents.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("extraction: create document: %w", err)
	}

	return p.process(ctx, doc, content, onProgress)
}

// ReprocessAll re-runs extraction over every stored document that has not
// completed. Each document's failure is recorded on that document and the
// batch continues.
func (p *Pipeline) ReprocessAll(ctx context.Context) error {
	docs, err := p.documents.List(ctx)
	if err != nil {
		return fmt.Errorf("extraction: list documents: %w", err)
	}

	var attempted, failed int
	for i := range docs {
		doc := docs[i]
		if doc.Status == document.StatusCompleted {
			continue
		}
		attempted++

		content, err := p.documents.GetContent(ctx, doc.ID)
		if err != nil {
			failed++
			p.logger.Error("reprocess: document content unavailable",
				slog.String("document", doc.ID.String()), slog.Any("error", err))
			continue
		}

		// Clear any partial output from the failed attempt.
		if err := p.transactions.DeleteByDocument(ctx, doc.ID); err != nil {
			failed++
			p.logger.Error("reprocess: clear previous transactions",
				slog.String("document", doc.ID.String()), slog.Any("error", err))
			continue
		}

		if _, err := p.process(ctx, &doc, content, nil); err != nil {
			failed++
			p.logger.Error("reprocess: document failed",
				slog.String("document", doc.ID.String()), slog.Any("error", err))
		}
	}

	p.logger.Info("reprocess finished",
		slog.Int("attempted", attempted), slog.Int("failed", failed))
	return nil
}

// process runs the per-document pipeline. Any error returned here has already
// been recorded as the document's terminal error state.
func (p *Pipeline) process(ctx context.Context, doc *document.Document, content []byte, onProgress ProgressFunc) ([]transaction.ExtractedTransaction, error) {
	txs, period, err := p.extract(ctx, doc, content, onProgress)
	if err != nil {
		if markErr := p.documents.MarkError(ctx, doc.ID, err.Error()); markErr != nil {
			p.logger.Error("mark document error failed",
				slog.String("document", doc.ID.String()), slog.Any("error", markErr))
		}
		return nil, err
	}

	if err := p.transactions.InsertBatch(ctx, txs); err != nil {
		err = fmt.Errorf("extraction: persist transactions: %w", err)
		if markErr := p.documents.MarkError(ctx, doc.ID, err.Error()); markErr != nil {
			p.logger.Error("mark document error failed",
				slog.String("document", doc.ID.String()), slog.Any("error", markErr))
		}
		return nil, err
	}

	var periodStart, periodEnd *time.Time
	if period != nil {
		periodStart, periodEnd = &period.Start, &period.End
	}
	if err := p.documents.MarkCompleted(ctx, doc.ID, len(txs), periodStart, periodEnd); err != nil {
		return nil, fmt.Errorf("extraction: mark document completed: %w", err)
	}

	p.logger.Info("document processed",
		slog.String("document", doc.ID.String()),
		slog.String("name", doc.Name),
		slog.Int("transactions", len(txs)))
	return txs, nil
}

// extract is the document-fatal portion: rasterize, OCR and parse all pages,
// then normalize, categorize and deduplicate the parsed rows.
func (p *Pipeline) extract(ctx context.Context, doc *document.Document, content []byte, onProgress ProgressFunc) ([]transaction.ExtractedTransaction, *normalizer.Period, error) {
	if !p.rasterizer.Available() {
		return nil, nil, ErrRasterizerUnavailable
	}
	if !p.engine.Available() {
		return nil, nil, ErrOCRUnavailable
	}

	pdfPath, cleanup, err := writeTempPDF(content)
	if err != nil {
		return nil, nil, err
	}
	defer cleanup()

	pages, err := p.rasterizer.Render(ctx, pdfPath)
	if err != nil {
		return nil, nil, fmt.Errorf("rasterize %s: %w", doc.Name, err)
	}

	now := time.Now()
	processingYear := now.Year()
	if doc.FileNameDate != nil {
		processingYear = doc.FileNameDate.Year()
	}

	lines := parser.NewLineParser(processingYear, p.logger)
	detector := parser.NewPeriodDetector(p.dates, p.logger)

	var (
		raws            []parser.RawTransaction
		newBalanceRaw   string
		accountFragment string
		fullText        strings.Builder
	)

	total := len(pages)
	for i, page := range pages {
		img := p.preprocessor.Process(page)

		text, err := p.engine.Recognize(ctx, img)
		if err != nil {
			return nil, nil, fmt.Errorf("ocr page %d of %s: %w", i+1, doc.Name, err)
		}
		fullText.WriteString(text)
		fullText.WriteString("\n")

		scan := lines.ScanPage(text)
		raws = append(raws, scan.Transactions...)
		if newBalanceRaw == "" {
			newBalanceRaw = scan.NewBalanceRaw
		}
		if accountFragment == "" {
			accountFragment = scan.AccountFragment
		}

		p.notifyProgress(onProgress, i+1, total)
	}

	var period *normalizer.Period
	if detected, ok := detector.Detect(fullText.String()); ok {
		period = &detected
		p.logger.Debug("statement period detected",
			slog.Time("start", period.Start), slog.Time("end", period.End))
	}

	txs := p.assemble(ctx, doc, raws, newBalanceRaw, accountFragment, period, now)
	return txs, period, nil
}

// assemble turns raw parsed rows into normalized, categorized, deduplicated
// transactions. Row-level problems are logged and the row skipped.
func (p *Pipeline) assemble(ctx context.Context, doc *document.Document, raws []parser.RawTransaction, newBalanceRaw, accountFragment string, period *normalizer.Period, now time.Time) []transaction.ExtractedTransaction {
	rules := p.categorizer.LoadRules(ctx)

	var txs []transaction.ExtractedTransaction
	for _, raw := range raws {
		parsed, ok := p.dates.Parse(raw.DateRaw, raw.ContextYear)
		if !ok {
			continue
		}
		date := p.dates.Correct(parsed, now, period)

		amount := p.amounts.Parse(raw.AmountRaw)
		if amount.IsZero() {
			p.logger.Debug("dropping row with unusable amount",
				slog.String("raw", raw.AmountRaw), slog.Int("line", raw.Line))
			continue
		}

		description := normalizer.CleanDescription(raw.DescriptionRaw)
		if description == "" {
			continue
		}

		// Classify on the raw text: type prefixes like "POS DEBIT" carry
		// direction information the cleaner strips.
		txType := categorization.Classify(raw.DescriptionRaw, amount.IsNegative())
		category := p.categorizer.Categorize(ctx, description, txType, amount.Abs(), date, rules)

		tx := transaction.ExtractedTransaction{
			ID:            uuid.New(),
			DocumentID:    doc.ID,
			Date:          date,
			Amount:        amount.Abs(),
			Description:   description,
			Type:          txType,
			Category:      category,
			AccountNumber: accountFragment,
			CreatedAt:     now,
		}

		if p.seenBefore(ctx, tx, txs) {
			p.logger.Info("skipping duplicate transaction",
				slog.String("description", description),
				slog.Time("date", date))
			continue
		}

		txs = append(txs, tx)
	}

	if summary, ok := p.summaryRow(doc, newBalanceRaw, accountFragment, period, now); ok {
		txs = append(txs, summary)
	}
	return txs
}

// summaryRow builds the single synthetic "statement balance" record, gated by
// a sanity bound: the balance must be positive and below the configured cap.
func (p *Pipeline) summaryRow(doc *document.Document, newBalanceRaw, accountFragment string, period *normalizer.Period, now time.Time) (transaction.ExtractedTransaction, bool) {
	if newBalanceRaw == "" {
		return transaction.ExtractedTransaction{}, false
	}

	amount := p.amounts.Parse(newBalanceRaw)
	value := amount.Abs()
	if !value.IsPositive() || value.InexactFloat64() >= p.maxSummaryAmount {
		p.logger.Warn("statement balance outside sanity bounds, dropping summary row",
			slog.String("raw", newBalanceRaw))
		return transaction.ExtractedTransaction{}, false
	}

	date := now
	switch {
	case period != nil:
		date = period.End
	case doc.FileNameDate != nil:
		date = *doc.FileNameDate
	}

	return transaction.ExtractedTransaction{
		ID:             uuid.New(),
		DocumentID:     doc.ID,
		Date:           date,
		Amount:         value,
		Description:    "Statement Balance",
		Type:           transaction.TypeExpense,
		Category:       categorization.CategoryCreditCardPayment,
		IsMonthSummary: true,
		AccountNumber:  accountFragment,
		CreatedAt:      now,
	}, true
}

// seenBefore checks the candidate against already-persisted transactions on
// the same day and against the rows accepted earlier in this batch. The store
// read is a point-in-time snapshot; two concurrent imports racing on
// near-identical rows is an accepted limitation.
func (p *Pipeline) seenBefore(ctx context.Context, candidate transaction.ExtractedTransaction, batch []transaction.ExtractedTransaction) bool {
	existing, err := p.transactions.ListByDay(ctx, candidate.Date)
	if err != nil {
		p.logger.Warn("duplicate check unavailable, keeping transaction",
			slog.Any("error", err))
		existing = nil
	}

	if isDuplicate(candidate, existing, p.dupSimilarity) {
		return true
	}
	return isDuplicate(candidate, batch, p.dupSimilarity)
}

func (p *Pipeline) notifyProgress(onProgress ProgressFunc, page, total int) {
	if onProgress == nil {
		return
	}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				p.logger.Warn("progress callback panicked", slog.Any("panic", r))
			}
		}()
		onProgress(page, total)
	}()
}

func writeTempPDF(content []byte) (string, func(), error) {
	dir, err := os.MkdirTemp("", "statement-*")
	if err != nil {
		return "", nil, fmt.Errorf("extraction: create temp dir: %w", err)
	}
	path := filepath.Join(dir, "statement.pdf")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		os.RemoveAll(dir)
		return "", nil, fmt.Errorf("extraction: write temp pdf: %w", err)
	}
	return path, func() { os.RemoveAll(dir) }, nil
}

package categorization

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RuleStore loads user categorization rules. Implementations never fail the
// pipeline: any read problem yields an empty rule list.
type RuleStore interface {
	Load(ctx context.Context) []CategoryRule
}

// FileRuleStore reads rules from a JSON file on disk. A missing or malformed
// file is treated as "no rules configured".
type FileRuleStore struct {
	path   string
	logger *slog.Logger
}

// NewFileRuleStore creates a file-backed rule store.
func NewFileRuleStore(path string, logger *slog.Logger) *FileRuleStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileRuleStore{path: path, logger: logger}
}

func (s *FileRuleStore) Load(_ context.Context) []CategoryRule {
	if s.path == "" {
		return nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("category rules file unreadable, using none",
				slog.String("path", s.path), slog.Any("error", err))
		}
		return nil
	}

	var rules []CategoryRule
	if err := json.Unmarshal(data, &rules); err != nil {
		s.logger.Warn("category rules file malformed, using none",
			slog.String("path", s.path), slog.Any("error", err))
		return nil
	}
	return rules
}

const categoryRulesPreferenceKey = "category_rules"

// PgRuleStore reads the rules JSON array from the preferences table.
type PgRuleStore struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

// NewPgRuleStore creates a Postgres-backed rule store.
func NewPgRuleStore(db *pgxpool.Pool, logger *slog.Logger) *PgRuleStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PgRuleStore{db: db, logger: logger}
}

func (s *PgRuleStore) Load(ctx context.Context) []CategoryRule {
	var raw []byte
	err := s.db.QueryRow(ctx,
		`SELECT value FROM preferences WHERE key = $1`,
		categoryRulesPreferenceKey,
	).Scan(&raw)
	if err == pgx.ErrNoRows {
		return nil
	}
	if err != nil {
		s.logger.Warn("category rules preference unreadable, using none",
			slog.Any("error", err))
		return nil
	}

	var rules []CategoryRule
	if err := json.Unmarshal(raw, &rules); err != nil {
		s.logger.Warn("category rules preference malformed, using none",
			slog.Any("error", err))
		return nil
	}
	return rules
}

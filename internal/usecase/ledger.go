// Package usecase orchestrates the compliance pipeline: text
// generation, disclosure enforcement, validation, cost accounting, and
// scheduled reporting.
package usecase

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"ftcguard/internal/domain"
)

// Ledger is an append-only SQLite record of provider costs and
// validation outcomes. Rows are keyed by ULID so insertion order is
// recoverable from the primary key alone.
type Ledger struct {
	db *sql.DB
}

// NewLedger opens (or creates) the ledger database at dbPath and runs
// the schema migration.
func NewLedger(dbPath string) (*Ledger, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open ledger db: %w", err)
	}
	// WAL mode for better concurrent reads.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate ledger db: %w", err)
	}
	return &Ledger{db: db}, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS costs (
			id            TEXT PRIMARY KEY,
			provider      TEXT NOT NULL,
			model         TEXT NOT NULL,
			input_tokens  INTEGER NOT NULL DEFAULT 0,
			output_tokens INTEGER NOT NULL DEFAULT 0,
			characters    INTEGER NOT NULL DEFAULT 0,
			usd           REAL NOT NULL DEFAULT 0,
			created_at    TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS validations (
			id             TEXT PRIMARY KEY,
			content_id     TEXT NOT NULL,
			platform       TEXT NOT NULL DEFAULT '',
			is_valid       INTEGER NOT NULL,
			has_disclosure INTEGER NOT NULL,
			issues         TEXT NOT NULL DEFAULT '[]',
			created_at     TEXT NOT NULL
		);
	`)
	return err
}

// Close closes the underlying database connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// RecordCost appends one provider cost estimate.
func (l *Ledger) RecordCost(ctx context.Context, est domain.CostEstimate) error {
	_, err := l.db.ExecContext(ctx,
		"INSERT INTO costs (id, provider, model, input_tokens, output_tokens, characters, usd, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		ulid.Make().String(), est.Provider, est.Model,
		est.Usage.InputTokens, est.Usage.OutputTokens, est.Usage.Characters,
		est.USD, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("%w: record cost: %v", domain.ErrLedgerWrite, err)
	}
	return nil
}

// RecordValidation appends one validation outcome.
func (l *Ledger) RecordValidation(ctx context.Context, contentID string, platform domain.Platform, result domain.ValidationResult) error {
	issues, err := json.Marshal(result.Issues)
	if err != nil {
		return fmt.Errorf("%w: marshal issues: %v", domain.ErrLedgerWrite, err)
	}

	_, err = l.db.ExecContext(ctx,
		"INSERT INTO validations (id, content_id, platform, is_valid, has_disclosure, issues, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		ulid.Make().String(), contentID, string(platform),
		boolToInt(result.IsValid), boolToInt(result.HasDisclosure),
		string(issues), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("%w: record validation: %v", domain.ErrLedgerWrite, err)
	}
	return nil
}

// ProviderCost is one row of the cost summary.
type ProviderCost struct {
	Provider string  `json:"provider"`
	Calls    int     `json:"calls"`
	TotalUSD float64 `json:"total_usd"`
}

// CostSummary returns per-provider call counts and spend, ordered by
// spend descending.
func (l *Ledger) CostSummary(ctx context.Context) ([]ProviderCost, error) {
	rows, err := l.db.QueryContext(ctx,
		"SELECT provider, COUNT(*), SUM(usd) FROM costs GROUP BY provider ORDER BY SUM(usd) DESC")
	if err != nil {
		return nil, fmt.Errorf("query cost summary: %w", err)
	}
	defer rows.Close()

	var out []ProviderCost
	for rows.Next() {
		var pc ProviderCost
		if err := rows.Scan(&pc.Provider, &pc.Calls, &pc.TotalUSD); err != nil {
			return nil, fmt.Errorf("scan cost summary: %w", err)
		}
		out = append(out, pc)
	}
	return out, rows.Err()
}

// RecentValidations returns up to limit validation entries recorded
// since the given time, oldest first.
func (l *Ledger) RecentValidations(ctx context.Context, since time.Time, limit int) ([]domain.ValidationEntry, error) {
	if limit <= 0 {
		limit = 1000
	}
	rows, err := l.db.QueryContext(ctx,
		"SELECT content_id, is_valid, has_disclosure, issues FROM validations WHERE created_at >= ? ORDER BY id LIMIT ?",
		since.UTC().Format(time.RFC3339Nano), limit)
	if err != nil {
		return nil, fmt.Errorf("query validations: %w", err)
	}
	defer rows.Close()

	var out []domain.ValidationEntry
	for rows.Next() {
		var (
			entry         domain.ValidationEntry
			isValid       int
			hasDisclosure int
			issuesJSON    string
		)
		if err := rows.Scan(&entry.ContentID, &isValid, &hasDisclosure, &issuesJSON); err != nil {
			return nil, fmt.Errorf("scan validation: %w", err)
		}
		entry.Result.IsValid = isValid != 0
		entry.Result.HasDisclosure = hasDisclosure != 0
		if err := json.Unmarshal([]byte(issuesJSON), &entry.Result.Issues); err != nil {
			return nil, fmt.Errorf("unmarshal issues: %w", err)
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Package store persists correction run history and user-defined rules in
// a local sqlite database. History is write-only during processing — the
// pipeline never consults it, so unit outcomes stay independent across
// documents — and exists for reporting and diffing past runs.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
	_ "modernc.org/sqlite"

	"github.com/mhryhorenko/pravka/internal/document"
)

type Store struct {
	db *sql.DB
}

// New opens (creating if needed) the database at dbPath and applies the
// schema.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}
	return s, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		input_file TEXT NOT NULL,
		output_file TEXT NOT NULL,
		provider TEXT,
		model TEXT,
		stage_order TEXT NOT NULL,
		use_rules BOOLEAN NOT NULL,
		use_llm BOOLEAN NOT NULL,
		units INTEGER NOT NULL,
		corrected INTEGER NOT NULL,
		skipped INTEGER NOT NULL,
		rule_failures INTEGER NOT NULL,
		llm_failures INTEGER NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	-- run_units is the per-unit correction trace: what each unit looked
	-- like before and after, which stages touched it, and why a stage
	-- failed or was skipped.
	CREATE TABLE IF NOT EXISTS run_units (
		run_id TEXT NOT NULL,
		idx INTEGER NOT NULL,
		original TEXT NOT NULL,
		corrected TEXT NOT NULL,
		rules_applied TEXT,
		llm_applied BOOLEAN NOT NULL,
		skipped BOOLEAN NOT NULL,
		rule_error TEXT,
		llm_error TEXT,
		PRIMARY KEY (run_id, idx),
		FOREIGN KEY (run_id) REFERENCES runs(id)
	);

	CREATE TABLE IF NOT EXISTS custom_rules (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		pattern TEXT NOT NULL,
		replacement TEXT NOT NULL,
		match_type TEXT NOT NULL,
		notes TEXT,
		position INTEGER NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(pattern, match_type)
	);

	CREATE INDEX IF NOT EXISTS idx_run_units_run ON run_units(run_id);
	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// normalizeText keeps stored patterns in NFC so visually identical rules
// collide on the unique index instead of accumulating duplicates.
func normalizeText(text string) string {
	return norm.NFC.String(strings.TrimSpace(text))
}

// Run is one recorded document correction run.
type Run struct {
	ID           string
	InputFile    string
	OutputFile   string
	Provider     string
	Model        string
	Order        string
	UseRules     bool
	UseLLM       bool
	Units        int
	Corrected    int
	Skipped      int
	RuleFailures int
	LLMFailures  int
	CreatedAt    time.Time
}

// SaveRun records a run summary.
func (s *Store) SaveRun(ctx context.Context, r Run) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, input_file, output_file, provider, model, stage_order, use_rules, use_llm, units, corrected, skipped, rule_failures, llm_failures, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.InputFile, r.OutputFile, r.Provider, r.Model, r.Order,
		r.UseRules, r.UseLLM, r.Units, r.Corrected, r.Skipped,
		r.RuleFailures, r.LLMFailures, time.Now())
	return err
}

// SaveRunUnits records the per-unit trace for a run.
func (s *Store) SaveRunUnits(ctx context.Context, runID string, units []*document.Unit) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO run_units (run_id, idx, original, corrected, rules_applied, llm_applied, skipped, rule_error, llm_error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, u := range units {
		_, err := stmt.ExecContext(ctx, runID, u.Index, u.Original, u.Current,
			strings.Join(u.RulesApplied, ","), u.LLMApplied, u.Skipped,
			u.RuleError, u.LLMError)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListRuns returns recorded runs, most recent first.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, input_file, output_file, provider, model, stage_order, use_rules, use_llm, units, corrected, skipped, rule_failures, llm_failures, created_at
		 FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.InputFile, &r.OutputFile, &r.Provider, &r.Model, &r.Order,
			&r.UseRules, &r.UseLLM, &r.Units, &r.Corrected, &r.Skipped,
			&r.RuleFailures, &r.LLMFailures, &r.CreatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RunUnit is a row of the per-unit trace.
type RunUnit struct {
	RunID        string
	Index        int
	Original     string
	Corrected    string
	RulesApplied string
	LLMApplied   bool
	Skipped      bool
	RuleError    string
	LLMError     string
}

// GetRunUnits returns the trace of a run in unit order.
func (s *Store) GetRunUnits(ctx context.Context, runID string) ([]RunUnit, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, idx, original, corrected, rules_applied, llm_applied, skipped, rule_error, llm_error
		 FROM run_units WHERE run_id = ? ORDER BY idx`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var units []RunUnit
	for rows.Next() {
		var u RunUnit
		if err := rows.Scan(&u.RunID, &u.Index, &u.Original, &u.Corrected,
			&u.RulesApplied, &u.LLMApplied, &u.Skipped, &u.RuleError, &u.LLMError); err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return units, rows.Err()
}

// ClearRuns removes all run history and returns the number of runs removed.
func (s *Store) ClearRuns(ctx context.Context) (int64, error) {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM run_units`); err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CustomRule is a user-defined substitution rule.
type CustomRule struct {
	ID          string
	Name        string
	Pattern     string
	Replacement string
	MatchType   string
	Notes       string
	Position    int
	CreatedAt   time.Time
}

// AddCustomRule persists a new rule at the end of the rule order.
func (s *Store) AddCustomRule(ctx context.Context, name, pattern, replacement, matchType, notes string) (CustomRule, error) {
	r := CustomRule{
		ID:          uuid.New().String(),
		Name:        name,
		Pattern:     normalizeText(pattern),
		Replacement: norm.NFC.String(replacement),
		MatchType:   matchType,
		Notes:       notes,
		CreatedAt:   time.Now(),
	}

	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position), -1) + 1 FROM custom_rules`).Scan(&r.Position)
	if err != nil {
		return CustomRule{}, err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO custom_rules (id, name, pattern, replacement, match_type, notes, position, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Name, r.Pattern, r.Replacement, r.MatchType, r.Notes, r.Position, r.CreatedAt)
	if err != nil {
		return CustomRule{}, err
	}
	return r, nil
}

// ListCustomRules returns custom rules in application order.
func (s *Store) ListCustomRules(ctx context.Context) ([]CustomRule, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, pattern, replacement, match_type, notes, position, created_at
		 FROM custom_rules ORDER BY position, created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []CustomRule
	for rows.Next() {
		var r CustomRule
		if err := rows.Scan(&r.ID, &r.Name, &r.Pattern, &r.Replacement,
			&r.MatchType, &r.Notes, &r.Position, &r.CreatedAt); err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

// DeleteCustomRule removes a rule by ID.
func (s *Store) DeleteCustomRule(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM custom_rules WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("no rule with id %s", id)
	}
	return nil
}

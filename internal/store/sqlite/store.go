// Package sqlite persists expenses in a SQLite database. Each expense is kept
// as an opaque JSON document keyed by its ID; seq records insertion order.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"expensetracker/internal/core"
	"expensetracker/internal/log"
	"expensetracker/internal/store"

	_ "modernc.org/sqlite"
)

const viewStateKey = "view_state"

type Store struct {
	db            *sql.DB
	schemaVersion uint
}

func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// modernc sqlite serialises writers; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	slog.Debug("SQLite schema ready",
		log.FieldComponent, log.ComponentStorage, log.FieldPath, dbPath, "schema_version", version)

	return &Store{db: db, schemaVersion: version}, nil
}

// SchemaVersion is the migration version the database was left on by New.
func (s *Store) SchemaVersion() uint {
	return s.schemaVersion
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) Add(ctx context.Context, e core.Expense) error {
	body, err := store.MarshalExpense(e)
	if err != nil {
		return fmt.Errorf("encode expense: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO expenses (id, seq, body)
		 VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM expenses), ?)`,
		e.ID, string(body))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", store.ErrDuplicateID, e.ID)
		}
		return fmt.Errorf("insert expense: %w", err)
	}

	slog.DebugContext(ctx, "Expense saved to SQLite", log.FieldComponent, log.ComponentStorage,
		log.FieldExpenseID, e.ID, log.FieldAmountMinor, e.Amount.Minor)
	return nil
}

func (s *Store) Update(ctx context.Context, e core.Expense) error {
	body, err := store.MarshalExpense(e)
	if err != nil {
		return fmt.Errorf("encode expense: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE expenses SET body = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		string(body), e.ID)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", store.ErrNotFound, e.ID)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (core.Expense, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM expenses WHERE id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense: %w", err)
	}
	return store.UnmarshalExpense([]byte(body))
}

func (s *Store) List(ctx context.Context) ([]core.Expense, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT body FROM expenses ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	out := []core.Expense{}
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		e, err := store.UnmarshalExpense([]byte(body))
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return out, nil
}

func (s *Store) ViewState(ctx context.Context) (core.ViewState, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM view_state WHERE key = ?`, viewStateKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return core.ViewState{}, false, nil
	}
	if err != nil {
		return core.ViewState{}, false, fmt.Errorf("get view state: %w", err)
	}
	v, err := store.UnmarshalViewState([]byte(value))
	if err != nil {
		return core.ViewState{}, false, err
	}
	return v, true, nil
}

func (s *Store) SaveViewState(ctx context.Context, v core.ViewState) error {
	value, err := store.MarshalViewState(v)
	if err != nil {
		return fmt.Errorf("encode view state: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO view_state (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		viewStateKey, string(value))
	if err != nil {
		return fmt.Errorf("save view state: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "constraint failed: UNIQUE")
}

var _ store.ExpenseStore = (*Store)(nil)

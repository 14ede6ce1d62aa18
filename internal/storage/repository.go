// Package storage persists accounts, expense records, and sessions in
// SQLite. It is the only place in the application that touches SQL; every
// operation is a single-row (or single-statement) read or write.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"spendwise/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens (creating if needed) the database at dbPath and
// applies schema migrations. Use ":memory:" for an ephemeral database.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// Each pooled connection to ":memory:" would get its own empty database,
	// so pin the pool to the single migrated connection.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// --- Identity store ---

// CreateAccount inserts a new account with a zero monthly income. A taken
// username maps to core.ErrDuplicateUsername and leaves no partial state.
func (r *SQLiteRepository) CreateAccount(ctx context.Context, username, passwordHash string) (core.Account, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash) VALUES (?, ?)`,
		username, passwordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return core.Account{}, core.ErrDuplicateUsername
		}
		return core.Account{}, fmt.Errorf("create account: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.Account{}, fmt.Errorf("create account id: %w", err)
	}

	slog.InfoContext(ctx, "Account created", "account_id", id, "username", username)

	return r.AccountByID(ctx, id)
}

// AccountByUsername looks up an account for authentication.
func (r *SQLiteRepository) AccountByUsername(ctx context.Context, username string) (core.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, monthly_income, created_at FROM users WHERE username = ?`,
		username)
	return scanAccount(row)
}

// AccountByID looks up an account for session-bound operations.
func (r *SQLiteRepository) AccountByID(ctx context.Context, id int64) (core.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, monthly_income, created_at FROM users WHERE id = ?`,
		id)
	return scanAccount(row)
}

// SetMonthlyIncome overwrites the account's monthly income unconditionally.
func (r *SQLiteRepository) SetMonthlyIncome(ctx context.Context, id int64, value float64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE users SET monthly_income = ? WHERE id = ?`, value, id); err != nil {
		return fmt.Errorf("set monthly income: %w", err)
	}
	return nil
}

// SetPasswordHash overwrites the account's credential hash unconditionally.
func (r *SQLiteRepository) SetPasswordHash(ctx context.Context, id int64, newHash string) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE id = ?`, newHash, id); err != nil {
		return fmt.Errorf("set password hash: %w", err)
	}
	return nil
}

func scanAccount(row *sql.Row) (core.Account, error) {
	var a core.Account
	err := row.Scan(&a.ID, &a.Username, &a.PasswordHash, &a.MonthlyIncome, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Account{}, core.ErrAccountNotFound
	}
	if err != nil {
		return core.Account{}, fmt.Errorf("scan account: %w", err)
	}
	return a, nil
}

// --- Ledger store ---

// InsertExpense appends a new expense record and returns its id.
func (r *SQLiteRepository) InsertExpense(ctx context.Context, e core.ExpenseRecord) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (user_id, title, category, amount, date, note, label, color)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.OwnerID, e.Title, e.Category, e.Amount, e.Date, e.Note, e.Label, e.Color)
	if err != nil {
		return 0, fmt.Errorf("insert expense: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert expense id: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved",
		"expense_id", id,
		"account_id", e.OwnerID,
		"title", e.Title,
		"amount", e.Amount,
		"date", e.Date)

	return id, nil
}

// ExpensesByOwner returns the owner's expenses ordered by date descending,
// newest id first within a day. Every call hits the database; results are
// never cached.
func (r *SQLiteRepository) ExpensesByOwner(ctx context.Context, ownerID int64) ([]core.ExpenseRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, title, category, amount, date, note, label, color
		 FROM expenses WHERE user_id = ? ORDER BY date DESC, id DESC`,
		ownerID)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.ExpenseRecord
	for rows.Next() {
		var e core.ExpenseRecord
		if err := rows.Scan(&e.ID, &e.OwnerID, &e.Title, &e.Category, &e.Amount, &e.Date, &e.Note, &e.Label, &e.Color); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}

	return expenses, rows.Err()
}

// SumAmountByOwner totals the owner's expense amounts, 0 when there are none.
func (r *SQLiteRepository) SumAmountByOwner(ctx context.Context, ownerID int64) (float64, error) {
	var total float64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM expenses WHERE user_id = ?`,
		ownerID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum expenses: %w", err)
	}
	return total, nil
}

// DeleteExpense removes the record with the given id if it belongs to
// ownerID. A non-existent id or someone else's record is a no-op.
func (r *SQLiteRepository) DeleteExpense(ctx context.Context, ownerID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM expenses WHERE id = ? AND user_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n > 0 {
		slog.InfoContext(ctx, "Expense deleted", "expense_id", id, "account_id", ownerID)
	}

	return nil
}

// --- Session store ---

// CreateSession persists an opaque token bound to an account id.
func (r *SQLiteRepository) CreateSession(ctx context.Context, token string, accountID int64, expiresAt time.Time) error {
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (token, user_id, expires_at) VALUES (?, ?, ?)`,
		token, accountID, expiresAt.UTC()); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// SessionAccount resolves a token to its account, rejecting unknown and
// expired tokens with core.ErrSessionNotFound.
func (r *SQLiteRepository) SessionAccount(ctx context.Context, token string, now time.Time) (core.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT u.id, u.username, u.password_hash, u.monthly_income, u.created_at
		 FROM sessions s JOIN users u ON s.user_id = u.id
		 WHERE s.token = ? AND s.expires_at > ?`,
		token, now.UTC())

	var a core.Account
	err := row.Scan(&a.ID, &a.Username, &a.PasswordHash, &a.MonthlyIncome, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Account{}, core.ErrSessionNotFound
	}
	if err != nil {
		return core.Account{}, fmt.Errorf("resolve session: %w", err)
	}
	return a, nil
}

// DeleteSession removes a session by token. Unknown tokens are a no-op.
func (r *SQLiteRepository) DeleteSession(ctx context.Context, token string) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE token = ?`, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions removes all sessions past their expiry and returns
// how many were swept.
func (r *SQLiteRepository) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at <= ?`, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions count: %w", err)
	}
	return n, nil
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint
// failure. The modernc driver surfaces these as plain errors, so the message
// is the only reliable signal.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"kharcha/internal/core"

	_ "modernc.org/sqlite"
)

const createdAtLayout = "2006-01-02 15:04:05"

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
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

// InsertExpense appends a record to the ledger and returns its id.
// The ledger is append-only; there is no update or delete path.
func (r *SQLiteRepository) InsertExpense(ctx context.Context, e core.Expense) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (source, date, merchant, description, amount, raw)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		string(e.Source), e.Date.ISO(), e.Merchant, e.Description, e.Amount, e.Raw)
	if err != nil {
		return 0, fmt.Errorf("insert expense: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("expense rowid: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved",
		"id", id,
		"source", e.Source,
		"date", e.Date.ISO(),
		"amount", e.Amount)

	return id, nil
}

// QueryExpenses returns ledger records newest first (date, then id).
// An empty minDate means no lower bound; core.SourceAll disables the
// source filter. minDate is compared as ISO text, inclusive.
func (r *SQLiteRepository) QueryExpenses(ctx context.Context, minDate string, source core.Source) ([]core.Expense, error) {
	query := `SELECT id, source, date, merchant, description, amount, raw, created_at FROM expenses`
	var (
		conds []string
		args  []any
	)
	if minDate != "" {
		conds = append(conds, "date >= ?")
		args = append(args, minDate)
	}
	if source != core.SourceAll && source != "" {
		conds = append(conds, "source = ?")
		args = append(args, string(source))
	}
	for i, c := range conds {
		if i == 0 {
			query += " WHERE " + c
		} else {
			query += " AND " + c
		}
	}
	query += " ORDER BY date DESC, id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		var (
			e                    core.Expense
			src, date, createdAt string
			merchant, descr, raw sql.NullString
		)
		if err := rows.Scan(&e.ID, &src, &date, &merchant, &descr, &e.Amount, &raw, &createdAt); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		e.Source = core.Source(src)
		if e.Date, err = core.ParseDate(date); err != nil {
			return nil, fmt.Errorf("expense %d has bad date %q: %w", e.ID, date, err)
		}
		e.Merchant = merchant.String
		e.Description = descr.String
		e.Raw = raw.String
		e.CreatedAt = parseCreatedAt(createdAt)
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}

	return expenses, nil
}

// ListTodos returns open items first, newest first within each group.
func (r *SQLiteRepository) ListTodos(ctx context.Context) ([]core.Todo, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, text, done, created_at FROM todos ORDER BY done, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query todos: %w", err)
	}
	defer rows.Close()

	var todos []core.Todo
	for rows.Next() {
		var (
			t         core.Todo
			done      int
			createdAt string
		)
		if err := rows.Scan(&t.ID, &t.Text, &done, &createdAt); err != nil {
			return nil, fmt.Errorf("scan todo: %w", err)
		}
		t.Done = done != 0
		t.CreatedAt = parseCreatedAt(createdAt)
		todos = append(todos, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate todos: %w", err)
	}

	return todos, nil
}

func (r *SQLiteRepository) AddTodo(ctx context.Context, text string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO todos (text) VALUES (?)`, text)
	if err != nil {
		return 0, fmt.Errorf("insert todo: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("todo rowid: %w", err)
	}
	return id, nil
}

// ToggleTodo flips the done flag. Missing ids report core.ErrTodoNotFound.
func (r *SQLiteRepository) ToggleTodo(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE todos SET done = CASE done WHEN 0 THEN 1 ELSE 0 END WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("toggle todo: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("toggle todo rows: %w", err)
	}
	if affected == 0 {
		return core.ErrTodoNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteTodo(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM todos WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	return nil
}

// GetSetting returns the stored value, or "" when the key is absent.
func (r *SQLiteRepository) GetSetting(ctx context.Context, key string) (string, error) {
	var value sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get setting %s: %w", key, err)
	}
	return value.String, nil
}

func (r *SQLiteRepository) SetSetting(ctx context.Context, key, value string) error {
	if _, err := r.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)`, key, value); err != nil {
		return fmt.Errorf("set setting %s: %w", key, err)
	}
	return nil
}

func parseCreatedAt(s string) time.Time {
	t, err := time.Parse(createdAtLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"finanzy/internal/core"

	_ "modernc.org/sqlite"
)

const (
	listTransactions = `SELECT id, title, amount_cents, type, category, date, period
FROM transactions ORDER BY seq`
	getTransaction = `SELECT id, title, amount_cents, type, category, date, period
FROM transactions WHERE id = ?`
	insertTransaction = `INSERT INTO transactions (id, title, amount_cents, type, category, date, period)
VALUES (?, ?, ?, ?, ?, ?, ?)`
	replaceTransaction = `UPDATE transactions
SET title = ?, amount_cents = ?, type = ?, category = ?, date = ?, period = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ?`
	deleteTransaction = `DELETE FROM transactions WHERE id = ?`
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer keeps SQLite away from SQLITE_BUSY.
	db.SetMaxOpenConns(1)

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

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) List(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, listTransactions)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	out := []core.Transaction{}
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (core.Transaction, error) {
	tx, err := scanTransaction(r.db.QueryRowContext(ctx, getTransaction, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("get %s: %w", id, ErrNotFound)
	}
	return tx, err
}

func (r *SQLiteRepository) Insert(ctx context.Context, tx core.Transaction) error {
	_, err := r.db.ExecContext(ctx, insertTransaction,
		tx.ID, tx.Title, tx.Amount.Cents, string(tx.Type), tx.Category, tx.Date.String(), string(tx.Period))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert %s: %w", tx.ID, ErrDuplicateID)
		}
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Replace(ctx context.Context, tx core.Transaction) error {
	res, err := r.db.ExecContext(ctx, replaceTransaction,
		tx.Title, tx.Amount.Cents, string(tx.Type), tx.Category, tx.Date.String(), string(tx.Period), tx.ID)
	if err != nil {
		return fmt.Errorf("replace transaction: %w", err)
	}
	return expectOneRow(res, "replace", tx.ID)
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, deleteTransaction, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return expectOneRow(res, "delete", id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		tx                core.Transaction
		typ, date, period string
	)
	if err := row.Scan(&tx.ID, &tx.Title, &tx.Amount.Cents, &typ, &tx.Category, &date, &period); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Transaction{}, err
		}
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	tx.Type = core.TransactionType(typ)
	tx.Period = core.Period(period)
	d, err := core.ParseDate(date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("scan transaction %s: %w", tx.ID, err)
	}
	tx.Date = d
	return tx, nil
}

func expectOneRow(res sql.Result, op, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %s: rows affected: %w", op, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", op, id, ErrNotFound)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

var _ Repository = (*SQLiteRepository)(nil)

// Package sqlite stores the ledger in a SQLite database managed by
// golang-migrate. The whole-document contract of storage.LedgerStore is kept:
// Save replaces every row in a single transaction.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"dailyspend/internal/core"
	"dailyspend/internal/storage"

	_ "modernc.org/sqlite"
)

type Repository struct {
	db *sql.DB
}

var _ storage.Store = (*Repository)(nil)

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows one writer; a single connection keeps Save transactions serialized.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	slog.Info("SQLite ledger store ready", "path", dbPath)
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks the database connection.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Repository) Load(ctx context.Context) (core.Ledger, error) {
	l := core.Ledger{}

	if err := r.loadMonths(ctx, l); err != nil {
		return nil, corrupt("months", err)
	}
	if err := r.loadDays(ctx, l); err != nil {
		return nil, corrupt("days", err)
	}
	if err := r.loadSpend(ctx, l); err != nil {
		return nil, corrupt("day_spend", err)
	}
	if err := r.loadBonus(ctx, l); err != nil {
		return nil, corrupt("day_bonus", err)
	}

	return storage.Prepare(l)
}

func (r *Repository) loadMonths(ctx context.Context, l core.Ledger) error {
	rows, err := r.db.QueryContext(ctx, `SELECT month_key, monthly_budget FROM months`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var mk string
		var budget int64
		if err := rows.Scan(&mk, &budget); err != nil {
			return err
		}
		m := core.NewMonthRecord()
		m.MonthlyBudget = int(budget)
		l[mk] = m
	}
	return rows.Err()
}

func (r *Repository) loadDays(ctx context.Context, l core.Ledger) error {
	rows, err := r.db.QueryContext(ctx, `SELECT month_key, day_key FROM days`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var mk, dk string
		if err := rows.Scan(&mk, &dk); err != nil {
			return err
		}
		m := monthFor(l, mk)
		if _, ok := m.Days[dk]; !ok {
			m.Days[dk] = core.DayRecord{}
		}
	}
	return rows.Err()
}

func (r *Repository) loadSpend(ctx context.Context, l core.Ledger) error {
	rows, err := r.db.QueryContext(ctx, `SELECT month_key, day_key, category, amount FROM day_spend`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var mk, dk, cat string
		var amount int64
		if err := rows.Scan(&mk, &dk, &cat, &amount); err != nil {
			return err
		}
		m := monthFor(l, mk)
		day, ok := m.Days[dk]
		if !ok {
			day = core.DayRecord{}
			m.Days[dk] = day
		}
		day[cat] = int(amount)
	}
	return rows.Err()
}

func (r *Repository) loadBonus(ctx context.Context, l core.Ledger) error {
	rows, err := r.db.QueryContext(ctx, `SELECT month_key, day_key, amount FROM day_bonus`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var mk, dk string
		var amount int64
		if err := rows.Scan(&mk, &dk, &amount); err != nil {
			return err
		}
		monthFor(l, mk).Bonus[dk] = int(amount)
	}
	return rows.Err()
}

func (r *Repository) Save(ctx context.Context, l core.Ledger) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				slog.ErrorContext(ctx, "Failed to roll back ledger save", "error", rbErr)
			}
		}
	}()

	for _, table := range []string{"day_bonus", "day_spend", "days", "months"} {
		if _, err = tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for mk, m := range l {
		if m == nil {
			continue
		}
		budget := m.MonthlyBudget
		if budget <= 0 {
			budget = core.DefaultMonthlyBudget
		}
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO months (month_key, monthly_budget) VALUES (?, ?)`, mk, budget); err != nil {
			return fmt.Errorf("insert month %s: %w", mk, err)
		}
		for dk, day := range m.Days {
			if _, err = tx.ExecContext(ctx,
				`INSERT INTO days (month_key, day_key) VALUES (?, ?)`, mk, dk); err != nil {
				return fmt.Errorf("insert day %s: %w", dk, err)
			}
			for cat, amount := range day {
				if _, err = tx.ExecContext(ctx,
					`INSERT INTO day_spend (month_key, day_key, category, amount) VALUES (?, ?, ?, ?)`,
					mk, dk, cat, amount); err != nil {
					return fmt.Errorf("insert spend %s/%s: %w", dk, cat, err)
				}
			}
		}
		for dk, amount := range m.Bonus {
			if _, err = tx.ExecContext(ctx,
				`INSERT INTO day_bonus (month_key, day_key, amount) VALUES (?, ?, ?)`, mk, dk, amount); err != nil {
				return fmt.Errorf("insert bonus %s: %w", dk, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit ledger: %w", err)
	}
	return nil
}

func (r *Repository) LoadRecipient(ctx context.Context) (int64, bool, error) {
	var chatID int64
	err := r.db.QueryRowContext(ctx, `SELECT chat_id FROM recipient WHERE id = 1`).Scan(&chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("load recipient: %w", err)
	}
	return chatID, true, nil
}

func (r *Repository) SaveRecipient(ctx context.Context, chatID int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO recipient (id, chat_id, updated_at) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET chat_id = excluded.chat_id, updated_at = excluded.updated_at`,
		chatID, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save recipient: %w", err)
	}
	return nil
}

func monthFor(l core.Ledger, mk string) *core.MonthRecord {
	m, ok := l.Month(mk)
	if !ok {
		m = core.NewMonthRecord()
		l[mk] = m
	}
	return m
}

func corrupt(table string, err error) error {
	return fmt.Errorf("load %s: %w", table, errors.Join(storage.ErrCorrupt, err))
}

// Package sqlite is an embedded Store on modernc.org/sqlite. The database
// handle is limited to one connection, which makes every transaction a
// single writer.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/spec-kit/workorder-service/internal/repository"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	username TEXT NOT NULL,
	first_name TEXT NOT NULL DEFAULT '',
	last_name TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL DEFAULT '',
	department TEXT NOT NULL DEFAULT '',
	is_manager INTEGER NOT NULL DEFAULT 0,
	is_production INTEGER NOT NULL DEFAULT 0,
	is_utilities INTEGER NOT NULL DEFAULT 0,
	is_purchase INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS equipment (
	id TEXT PRIMARY KEY,
	machine TEXT NOT NULL,
	machine_type_id TEXT NOT NULL DEFAULT '',
	location_id TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS parts (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	part_type_id TEXT NOT NULL DEFAULT '',
	equipment_id TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS work_types (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS pending_reasons (
	id TEXT PRIMARY KEY,
	reason TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS work_orders (
	id TEXT PRIMARY KEY,
	initiation_date INTEGER NOT NULL,
	department TEXT NOT NULL,
	problem TEXT NOT NULL,
	initiated_by TEXT NOT NULL,
	equipment_id TEXT NOT NULL,
	part_id TEXT,
	work_type_id TEXT NOT NULL,
	work_status TEXT NOT NULL,
	pending_reason_id TEXT,
	closed TEXT,
	closing_remarks TEXT,
	accepted INTEGER,
	assigned_to TEXT,
	target_date INTEGER,
	remarks TEXT,
	replaced_part TEXT NOT NULL DEFAULT 'none',
	completion_date INTEGER,
	pr_number TEXT NOT NULL DEFAULT 'none',
	pr_date INTEGER,
	updated_at INTEGER NOT NULL,
	CHECK (closed IS NULL OR work_status = 'Completed')
);
CREATE TABLE IF NOT EXISTS work_order_history (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT NOT NULL UNIQUE,
	work_order_id TEXT NOT NULL REFERENCES work_orders(id),
	snapshot TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	changed_by TEXT,
	action TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_history_work_order ON work_order_history (work_order_id, created_at);
`

// dbtx is satisfied by *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store implements repository.Store on SQLite.
type Store struct {
	db *sql.DB
}

var _ repository.Store = (*Store)(nil)

// Open creates or opens the database at path and applies the schema. Use
// ":memory:" for a throwaway database.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		path = "workorders.db"
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, `PRAGMA foreign_keys = ON`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Repositories() repository.Repositories {
	return bind(s.db)
}

func (s *Store) References() repository.ReferenceRepository {
	return references{db: s.db}
}

func (s *Store) Users() repository.UserDirectory {
	return users{db: s.db}
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) (retErr error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	if err := fn(ctx, bind(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Seed(ctx context.Context, fixtures repository.Fixtures) (retErr error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	for _, u := range fixtures.Users {
		if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO users
			(id, username, first_name, last_name, email, department, is_manager, is_production, is_utilities, is_purchase)
			VALUES (?,?,?,?,?,?,?,?,?,?)`,
			u.ID, u.Username, u.FirstName, u.LastName, u.Email, u.Department,
			u.IsManager, u.IsProduction, u.IsUtilities, u.IsPurchase); err != nil {
			return fmt.Errorf("seed user %s: %w", u.ID, err)
		}
	}
	for _, eq := range fixtures.Equipment {
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO equipment (id, machine, machine_type_id, location_id) VALUES (?,?,?,?)`,
			eq.ID, eq.Machine, eq.MachineTypeID, eq.LocationID); err != nil {
			return fmt.Errorf("seed equipment %s: %w", eq.ID, err)
		}
	}
	for _, p := range fixtures.Parts {
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO parts (id, name, part_type_id, equipment_id) VALUES (?,?,?,?)`,
			p.ID, p.Name, p.PartTypeID, p.EquipmentID); err != nil {
			return fmt.Errorf("seed part %s: %w", p.ID, err)
		}
	}
	for _, wt := range fixtures.WorkTypes {
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO work_types (id, name) VALUES (?,?)`, wt.ID, wt.Name); err != nil {
			return fmt.Errorf("seed work type %s: %w", wt.ID, err)
		}
	}
	for _, pr := range fixtures.PendingReasons {
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO pending_reasons (id, reason) VALUES (?,?)`, pr.ID, pr.Reason); err != nil {
			return fmt.Errorf("seed pending reason %s: %w", pr.ID, err)
		}
	}
	return tx.Commit()
}

func bind(db dbtx) repository.Repositories {
	return repository.Repositories{
		WorkOrders: workOrders{db: db},
		History:    history{db: db},
	}
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store on a pgx pool. Transactions take row locks
// through GetForUpdate so concurrent transitions on one work order serialize.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps an open pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Repositories() Repositories {
	return bindRepositories(s.pool)
}

func (s *PostgresStore) References() ReferenceRepository {
	return NewReferenceRepository(s.pool)
}

func (s *PostgresStore) Users() UserDirectory {
	return NewUserDirectory(s.pool)
}

func (s *PostgresStore) WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				err = errors.Join(err, rbErr)
			}
		}
	}()

	if err = fn(ctx, bindRepositories(tx)); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close is a no-op; the pool is owned by persistence.Postgres.
func (s *PostgresStore) Close() error {
	return nil
}

func (s *PostgresStore) Seed(ctx context.Context, fixtures Fixtures) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		for _, u := range fixtures.Users {
			if _, err := tx.Exec(ctx, `
                INSERT INTO users (id, username, first_name, last_name, email, department,
                                   is_manager, is_production, is_utilities, is_purchase)
                VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
                ON CONFLICT (id) DO UPDATE SET username=EXCLUDED.username, first_name=EXCLUDED.first_name,
                    last_name=EXCLUDED.last_name, email=EXCLUDED.email, department=EXCLUDED.department,
                    is_manager=EXCLUDED.is_manager, is_production=EXCLUDED.is_production,
                    is_utilities=EXCLUDED.is_utilities, is_purchase=EXCLUDED.is_purchase, updated_at=NOW()`,
				u.ID, u.Username, u.FirstName, u.LastName, u.Email, u.Department,
				u.IsManager, u.IsProduction, u.IsUtilities, u.IsPurchase,
			); err != nil {
				return fmt.Errorf("seed user %s: %w", u.ID, err)
			}
		}
		for _, l := range fixtures.Locations {
			if _, err := tx.Exec(ctx, `INSERT INTO locations (id, department, area) VALUES ($1,$2,$3) ON CONFLICT (id) DO NOTHING`,
				l.ID, l.Department, l.Area); err != nil {
				return fmt.Errorf("seed location %s: %w", l.ID, err)
			}
		}
		for _, mt := range fixtures.MachineTypes {
			if _, err := tx.Exec(ctx, `INSERT INTO machine_types (id, name) VALUES ($1,$2) ON CONFLICT (id) DO NOTHING`,
				mt.ID, mt.Name); err != nil {
				return fmt.Errorf("seed machine type %s: %w", mt.ID, err)
			}
		}
		for _, pt := range fixtures.PartTypes {
			if _, err := tx.Exec(ctx, `INSERT INTO part_types (id, name) VALUES ($1,$2) ON CONFLICT (id) DO NOTHING`,
				pt.ID, pt.Name); err != nil {
				return fmt.Errorf("seed part type %s: %w", pt.ID, err)
			}
		}
		for _, wt := range fixtures.WorkTypes {
			if _, err := tx.Exec(ctx, `INSERT INTO work_types (id, name) VALUES ($1,$2) ON CONFLICT (id) DO NOTHING`,
				wt.ID, wt.Name); err != nil {
				return fmt.Errorf("seed work type %s: %w", wt.ID, err)
			}
		}
		for _, pr := range fixtures.PendingReasons {
			if _, err := tx.Exec(ctx, `INSERT INTO pending_reasons (id, reason) VALUES ($1,$2) ON CONFLICT (id) DO NOTHING`,
				pr.ID, pr.Reason); err != nil {
				return fmt.Errorf("seed pending reason %s: %w", pr.ID, err)
			}
		}
		for _, eq := range fixtures.Equipment {
			if _, err := tx.Exec(ctx, `INSERT INTO equipment (id, machine, machine_type_id, location_id) VALUES ($1,$2,$3,$4) ON CONFLICT (id) DO NOTHING`,
				eq.ID, eq.Machine, eq.MachineTypeID, eq.LocationID); err != nil {
				return fmt.Errorf("seed equipment %s: %w", eq.ID, err)
			}
		}
		for _, p := range fixtures.Parts {
			if _, err := tx.Exec(ctx, `INSERT INTO parts (id, name, part_type_id, equipment_id) VALUES ($1,$2,$3,$4) ON CONFLICT (id) DO NOTHING`,
				p.ID, p.Name, p.PartTypeID, p.EquipmentID); err != nil {
				return fmt.Errorf("seed part %s: %w", p.ID, err)
			}
		}
		return nil
	})
}

func bindRepositories(db querier) Repositories {
	return Repositories{
		WorkOrders: &workOrderRepository{db: db},
		History:    &historyRepository{db: db},
	}
}

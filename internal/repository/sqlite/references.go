package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/spec-kit/workorder-service/internal/domain"
	"github.com/spec-kit/workorder-service/internal/repository"
)

type references struct {
	db dbtx
}

func (r references) GetEquipment(ctx context.Context, id string) (*domain.Equipment, error) {
	var eq domain.Equipment
	err := r.db.QueryRowContext(ctx, `SELECT id, machine, machine_type_id, location_id FROM equipment WHERE id=?`, id).
		Scan(&eq.ID, &eq.Machine, &eq.MachineTypeID, &eq.LocationID)
	if err != nil {
		return nil, notFound(err)
	}
	return &eq, nil
}

func (r references) GetPart(ctx context.Context, id string) (*domain.Part, error) {
	var p domain.Part
	err := r.db.QueryRowContext(ctx, `SELECT id, name, part_type_id, equipment_id FROM parts WHERE id=?`, id).
		Scan(&p.ID, &p.Name, &p.PartTypeID, &p.EquipmentID)
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r references) GetWorkType(ctx context.Context, id string) (*domain.WorkType, error) {
	var wt domain.WorkType
	if err := r.db.QueryRowContext(ctx, `SELECT id, name FROM work_types WHERE id=?`, id).Scan(&wt.ID, &wt.Name); err != nil {
		return nil, notFound(err)
	}
	return &wt, nil
}

func (r references) GetPendingReason(ctx context.Context, id string) (*domain.PendingReason, error) {
	var pr domain.PendingReason
	if err := r.db.QueryRowContext(ctx, `SELECT id, reason FROM pending_reasons WHERE id=?`, id).Scan(&pr.ID, &pr.Reason); err != nil {
		return nil, notFound(err)
	}
	return &pr, nil
}

type users struct {
	db dbtx
}

func (r users) GetUser(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := r.db.QueryRowContext(ctx, `SELECT id, username, first_name, last_name, email, department,
		is_manager, is_production, is_utilities, is_purchase FROM users WHERE id=?`, id).Scan(
		&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.Email, &u.Department,
		&u.IsManager, &u.IsProduction, &u.IsUtilities, &u.IsPurchase,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	return err
}

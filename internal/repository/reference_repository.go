package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/workorder-service/internal/domain"
)

type referenceRepository struct {
	db querier
}

// NewReferenceRepository returns lookups backed by the Postgres reference tables.
func NewReferenceRepository(pool *pgxpool.Pool) ReferenceRepository {
	return &referenceRepository{db: pool}
}

func (r *referenceRepository) GetEquipment(ctx context.Context, id string) (*domain.Equipment, error) {
	const query = `SELECT id, machine, machine_type_id, location_id FROM equipment WHERE id=$1`
	var eq domain.Equipment
	if err := r.db.QueryRow(ctx, query, id).Scan(&eq.ID, &eq.Machine, &eq.MachineTypeID, &eq.LocationID); err != nil {
		return nil, mapNoRows(err)
	}
	return &eq, nil
}

func (r *referenceRepository) GetPart(ctx context.Context, id string) (*domain.Part, error) {
	const query = `SELECT id, name, part_type_id, equipment_id FROM parts WHERE id=$1`
	var part domain.Part
	if err := r.db.QueryRow(ctx, query, id).Scan(&part.ID, &part.Name, &part.PartTypeID, &part.EquipmentID); err != nil {
		return nil, mapNoRows(err)
	}
	return &part, nil
}

func (r *referenceRepository) GetWorkType(ctx context.Context, id string) (*domain.WorkType, error) {
	const query = `SELECT id, name FROM work_types WHERE id=$1`
	var wt domain.WorkType
	if err := r.db.QueryRow(ctx, query, id).Scan(&wt.ID, &wt.Name); err != nil {
		return nil, mapNoRows(err)
	}
	return &wt, nil
}

func (r *referenceRepository) GetPendingReason(ctx context.Context, id string) (*domain.PendingReason, error) {
	const query = `SELECT id, reason FROM pending_reasons WHERE id=$1`
	var pr domain.PendingReason
	if err := r.db.QueryRow(ctx, query, id).Scan(&pr.ID, &pr.Reason); err != nil {
		return nil, mapNoRows(err)
	}
	return &pr, nil
}

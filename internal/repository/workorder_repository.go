package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/workorder-service/internal/domain"
)

const workOrderColumns = `id, initiation_date, department, problem, initiated_by, equipment_id, part_id,
               work_type_id, work_status, pending_reason_id, closed, closing_remarks, accepted,
               assigned_to, target_date, remarks, replaced_part, completion_date, pr_number,
               pr_date, updated_at`

type workOrderRepository struct {
	db querier
}

func (r *workOrderRepository) Create(ctx context.Context, wo *domain.WorkOrder) error {
	const query = `
        INSERT INTO work_orders (` + workOrderColumns + `)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)`
	_, err := r.db.Exec(ctx, query,
		wo.ID,
		wo.InitiationDate,
		wo.Department,
		wo.Problem,
		wo.InitiatedBy,
		wo.EquipmentID,
		wo.PartID,
		wo.WorkTypeID,
		wo.Status,
		wo.PendingReasonID,
		wo.Closed,
		wo.ClosingRemarks,
		wo.Accepted,
		wo.AssignedTo,
		wo.TargetDate,
		wo.Remarks,
		wo.ReplacedPart,
		wo.CompletionDate,
		wo.PRNumber,
		wo.PRDate,
		wo.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert work order: %w", err)
	}
	return nil
}

func (r *workOrderRepository) Update(ctx context.Context, wo *domain.WorkOrder) error {
	const query = `
        UPDATE work_orders SET work_status=$1, pending_reason_id=$2, closed=$3, closing_remarks=$4,
            accepted=$5, assigned_to=$6, target_date=$7, remarks=$8, replaced_part=$9,
            completion_date=$10, pr_number=$11, pr_date=$12, updated_at=$13
        WHERE id=$14`
	cmd, err := r.db.Exec(ctx, query,
		wo.Status,
		wo.PendingReasonID,
		wo.Closed,
		wo.ClosingRemarks,
		wo.Accepted,
		wo.AssignedTo,
		wo.TargetDate,
		wo.Remarks,
		wo.ReplacedPart,
		wo.CompletionDate,
		wo.PRNumber,
		wo.PRDate,
		wo.UpdatedAt,
		wo.ID,
	)
	if err != nil {
		return fmt.Errorf("update work order: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *workOrderRepository) GetByID(ctx context.Context, id string) (*domain.WorkOrder, error) {
	query := `SELECT ` + workOrderColumns + ` FROM work_orders WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *workOrderRepository) GetForUpdate(ctx context.Context, id string) (*domain.WorkOrder, error) {
	query := `SELECT ` + workOrderColumns + ` FROM work_orders WHERE id=$1 FOR UPDATE`
	return r.fetchSingle(ctx, query, id)
}

func (r *workOrderRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.WorkOrder, error) {
	wo, err := scanWorkOrder(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		return nil, mapNoRows(err)
	}
	return wo, nil
}

func (r *workOrderRepository) List(ctx context.Context, filter WorkOrderFilter) ([]domain.WorkOrder, error) {
	clauses := []string{"1=1"}
	args := []any{}

	scope := filter.Scope
	if !scope.All {
		if scope.Empty() {
			return []domain.WorkOrder{}, nil
		}
		if scope.Department != nil {
			args = append(args, *scope.Department)
			clauses = append(clauses, fmt.Sprintf("department=$%d", len(args)))
		}
		if scope.InitiatedBy != nil {
			args = append(args, *scope.InitiatedBy)
			clauses = append(clauses, fmt.Sprintf("initiated_by=$%d", len(args)))
		}
		if len(scope.Statuses) > 0 {
			clauses = append(clauses, statusClause(scope.Statuses, &args))
		}
	}
	if len(filter.Statuses) > 0 {
		clauses = append(clauses, statusClause(filter.Statuses, &args))
	}
	if filter.Department != nil {
		args = append(args, *filter.Department)
		clauses = append(clauses, fmt.Sprintf("department=$%d", len(args)))
	}
	if filter.Accepted != nil {
		args = append(args, *filter.Accepted)
		clauses = append(clauses, fmt.Sprintf("accepted=$%d", len(args)))
	}
	if filter.Closed != nil {
		args = append(args, *filter.Closed)
		clauses = append(clauses, fmt.Sprintf("closed=$%d", len(args)))
	}

	limit, offset := filter.Page()
	query := fmt.Sprintf(`SELECT %s FROM work_orders WHERE %s ORDER BY initiation_date DESC, id LIMIT %d OFFSET %d`,
		workOrderColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list work orders: %w", err)
	}
	defer rows.Close()

	result := []domain.WorkOrder{}
	for rows.Next() {
		wo, err := scanWorkOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *wo)
	}
	return result, rows.Err()
}

func statusClause(statuses []domain.WorkStatus, args *[]any) string {
	placeholders := make([]string, len(statuses))
	for i, status := range statuses {
		*args = append(*args, status)
		placeholders[i] = fmt.Sprintf("$%d", len(*args))
	}
	return fmt.Sprintf("work_status IN (%s)", strings.Join(placeholders, ","))
}

func scanWorkOrder(row pgx.Row) (*domain.WorkOrder, error) {
	var wo domain.WorkOrder
	if err := row.Scan(
		&wo.ID,
		&wo.InitiationDate,
		&wo.Department,
		&wo.Problem,
		&wo.InitiatedBy,
		&wo.EquipmentID,
		&wo.PartID,
		&wo.WorkTypeID,
		&wo.Status,
		&wo.PendingReasonID,
		&wo.Closed,
		&wo.ClosingRemarks,
		&wo.Accepted,
		&wo.AssignedTo,
		&wo.TargetDate,
		&wo.Remarks,
		&wo.ReplacedPart,
		&wo.CompletionDate,
		&wo.PRNumber,
		&wo.PRDate,
		&wo.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &wo, nil
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spec-kit/workorder-service/internal/domain"
	"github.com/spec-kit/workorder-service/internal/repository"
)

const columns = `id, initiation_date, department, problem, initiated_by, equipment_id, part_id,
	work_type_id, work_status, pending_reason_id, closed, closing_remarks, accepted,
	assigned_to, target_date, remarks, replaced_part, completion_date, pr_number, pr_date, updated_at`

type workOrders struct {
	db dbtx
}

func (r workOrders) Create(ctx context.Context, wo *domain.WorkOrder) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO work_orders (`+columns+`)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		wo.ID,
		wo.InitiationDate.UnixNano(),
		string(wo.Department),
		wo.Problem,
		wo.InitiatedBy,
		wo.EquipmentID,
		nullString(wo.PartID),
		wo.WorkTypeID,
		string(wo.Status),
		nullString(wo.PendingReasonID),
		nullClosed(wo.Closed),
		nullString(wo.ClosingRemarks),
		nullBool(wo.Accepted),
		nullString(wo.AssignedTo),
		nullTime(wo.TargetDate),
		nullString(wo.Remarks),
		wo.ReplacedPart,
		nullTime(wo.CompletionDate),
		wo.PRNumber,
		nullTime(wo.PRDate),
		wo.UpdatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert work order: %w", err)
	}
	return nil
}

func (r workOrders) Update(ctx context.Context, wo *domain.WorkOrder) error {
	res, err := r.db.ExecContext(ctx, `UPDATE work_orders SET work_status=?, pending_reason_id=?, closed=?,
		closing_remarks=?, accepted=?, assigned_to=?, target_date=?, remarks=?, replaced_part=?,
		completion_date=?, pr_number=?, pr_date=?, updated_at=? WHERE id=?`,
		string(wo.Status),
		nullString(wo.PendingReasonID),
		nullClosed(wo.Closed),
		nullString(wo.ClosingRemarks),
		nullBool(wo.Accepted),
		nullString(wo.AssignedTo),
		nullTime(wo.TargetDate),
		nullString(wo.Remarks),
		wo.ReplacedPart,
		nullTime(wo.CompletionDate),
		wo.PRNumber,
		nullTime(wo.PRDate),
		wo.UpdatedAt.UnixNano(),
		wo.ID,
	)
	if err != nil {
		return fmt.Errorf("update work order: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r workOrders) GetByID(ctx context.Context, id string) (*domain.WorkOrder, error) {
	wo, err := scan(r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM work_orders WHERE id=?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return wo, err
}

// GetForUpdate needs no explicit lock: the single connection already
// serializes transactions.
func (r workOrders) GetForUpdate(ctx context.Context, id string) (*domain.WorkOrder, error) {
	return r.GetByID(ctx, id)
}

func (r workOrders) List(ctx context.Context, filter repository.WorkOrderFilter) ([]domain.WorkOrder, error) {
	clauses := []string{"1=1"}
	args := []any{}

	scope := filter.Scope
	if !scope.All {
		if scope.Empty() {
			return []domain.WorkOrder{}, nil
		}
		if scope.Department != nil {
			clauses = append(clauses, "department=?")
			args = append(args, string(*scope.Department))
		}
		if scope.InitiatedBy != nil {
			clauses = append(clauses, "initiated_by=?")
			args = append(args, *scope.InitiatedBy)
		}
		if len(scope.Statuses) > 0 {
			clauses = append(clauses, statusIn(scope.Statuses, &args))
		}
	}
	if len(filter.Statuses) > 0 {
		clauses = append(clauses, statusIn(filter.Statuses, &args))
	}
	if filter.Department != nil {
		clauses = append(clauses, "department=?")
		args = append(args, string(*filter.Department))
	}
	if filter.Accepted != nil {
		clauses = append(clauses, "accepted=?")
		args = append(args, *filter.Accepted)
	}
	if filter.Closed != nil {
		clauses = append(clauses, "closed=?")
		args = append(args, string(*filter.Closed))
	}

	limit, offset := filter.Page()
	args = append(args, limit, offset)
	query := `SELECT ` + columns + ` FROM work_orders WHERE ` + strings.Join(clauses, " AND ") +
		` ORDER BY initiation_date DESC, id LIMIT ? OFFSET ?`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list work orders: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result := []domain.WorkOrder{}
	for rows.Next() {
		wo, err := scan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *wo)
	}
	return result, rows.Err()
}

func statusIn(statuses []domain.WorkStatus, args *[]any) string {
	placeholders := make([]string, len(statuses))
	for i, s := range statuses {
		placeholders[i] = "?"
		*args = append(*args, string(s))
	}
	return "work_status IN (" + strings.Join(placeholders, ",") + ")"
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scan(row rowScanner) (*domain.WorkOrder, error) {
	var (
		wo                                    domain.WorkOrder
		initiated, updated                    int64
		department, status                    string
		part, pending, closed, closingRemarks sql.NullString
		assignedTo, remarks                   sql.NullString
		accepted                              sql.NullBool
		targetDate, completionDate, prDate    sql.NullInt64
	)
	if err := row.Scan(
		&wo.ID,
		&initiated,
		&department,
		&wo.Problem,
		&wo.InitiatedBy,
		&wo.EquipmentID,
		&part,
		&wo.WorkTypeID,
		&status,
		&pending,
		&closed,
		&closingRemarks,
		&accepted,
		&assignedTo,
		&targetDate,
		&remarks,
		&wo.ReplacedPart,
		&completionDate,
		&wo.PRNumber,
		&prDate,
		&updated,
	); err != nil {
		return nil, err
	}
	wo.InitiationDate = time.Unix(0, initiated).UTC()
	wo.UpdatedAt = time.Unix(0, updated).UTC()
	wo.Department = domain.Department(department)
	wo.Status = domain.WorkStatus(status)
	wo.PartID = stringPtr(part)
	wo.PendingReasonID = stringPtr(pending)
	wo.ClosingRemarks = stringPtr(closingRemarks)
	wo.AssignedTo = stringPtr(assignedTo)
	wo.Remarks = stringPtr(remarks)
	if closed.Valid {
		c := domain.ClosedState(closed.String)
		wo.Closed = &c
	}
	if accepted.Valid {
		v := accepted.Bool
		wo.Accepted = &v
	}
	wo.TargetDate = timePtr(targetDate)
	wo.CompletionDate = timePtr(completionDate)
	wo.PRDate = timePtr(prDate)
	return &wo, nil
}

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullClosed(c *domain.ClosedState) any {
	if c == nil {
		return nil
	}
	return string(*c)
}

func nullBool(b *bool) any {
	if b == nil {
		return nil
	}
	return *b
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UnixNano()
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func timePtr(ni sql.NullInt64) *time.Time {
	if !ni.Valid {
		return nil
	}
	t := time.Unix(0, ni.Int64).UTC()
	return &t
}

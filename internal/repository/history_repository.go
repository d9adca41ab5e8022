package repository

import (
	"context"
	"fmt"

	"github.com/spec-kit/workorder-service/internal/domain"
)

type historyRepository struct {
	db querier
}

func (r *historyRepository) Append(ctx context.Context, entry *domain.HistoryEntry) error {
	const query = `
        INSERT INTO work_order_history (id, work_order_id, snapshot, created_at, changed_by, action)
        VALUES ($1,$2,$3,$4,$5,$6)`
	if _, err := r.db.Exec(ctx, query,
		entry.ID,
		entry.WorkOrderID,
		entry.Snapshot,
		entry.Timestamp,
		entry.ChangedBy,
		entry.Action,
	); err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

func (r *historyRepository) ListByWorkOrder(ctx context.Context, workOrderID string) ([]domain.HistoryEntry, error) {
	const query = `
        SELECT id, work_order_id, snapshot, created_at, changed_by, action
        FROM work_order_history WHERE work_order_id=$1 ORDER BY created_at DESC, seq DESC`
	rows, err := r.db.Query(ctx, query, workOrderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.HistoryEntry{}
	for rows.Next() {
		var entry domain.HistoryEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.WorkOrderID,
			&entry.Snapshot,
			&entry.Timestamp,
			&entry.ChangedBy,
			&entry.Action,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

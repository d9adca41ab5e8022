package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spec-kit/workorder-service/internal/domain"
)

type history struct {
	db dbtx
}

func (r history) Append(ctx context.Context, entry *domain.HistoryEntry) error {
	payload, err := json.Marshal(entry.Snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `INSERT INTO work_order_history
		(id, work_order_id, snapshot, created_at, changed_by, action) VALUES (?,?,?,?,?,?)`,
		entry.ID,
		entry.WorkOrderID,
		string(payload),
		entry.Timestamp.UnixNano(),
		nullString(entry.ChangedBy),
		string(entry.Action),
	); err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

func (r history) ListByWorkOrder(ctx context.Context, workOrderID string) ([]domain.HistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, work_order_id, snapshot, created_at, changed_by, action
		FROM work_order_history WHERE work_order_id=? ORDER BY created_at DESC, seq DESC`, workOrderID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	result := []domain.HistoryEntry{}
	for rows.Next() {
		var (
			entry     domain.HistoryEntry
			payload   string
			createdAt int64
			changedBy sql.NullString
			action    string
		)
		if err := rows.Scan(&entry.ID, &entry.WorkOrderID, &payload, &createdAt, &changedBy, &action); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(payload), &entry.Snapshot); err != nil {
			return nil, fmt.Errorf("decode snapshot %s: %w", entry.ID, err)
		}
		entry.Timestamp = time.Unix(0, createdAt).UTC()
		entry.ChangedBy = stringPtr(changedBy)
		entry.Action = domain.HistoryAction(action)
		result = append(result, entry)
	}
	return result, rows.Err()
}

package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// PostgresStore persists operation-log rows: (operator, method, remark,
// time). The remark column holds the structured details as JSON; rendering
// them through a named template is the presentation layer's job.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	var remark []byte
	if len(event.Details) > 0 {
		var err error
		remark, err = json.Marshal(event.Details)
		if err != nil {
			return fmt.Errorf("marshal operation log remark: %w", err)
		}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO operation_logs (id, operator, method, remark, time)
		VALUES ($1, $2, $3, $4, $5)`,
		event.ID, event.Operator, string(event.Action), remark, event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("append operation log: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByOperator(ctx context.Context, operator string) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, operator, method, remark, time
		FROM operation_logs
		WHERE operator = $1
		ORDER BY time`,
		operator,
	)
	if err != nil {
		return nil, fmt.Errorf("list operation logs: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var (
			e      Event
			action string
			remark []byte
		)
		if err := rows.Scan(&e.ID, &e.Operator, &action, &remark, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan operation log: %w", err)
		}
		e.Action = Action(action)
		if len(remark) > 0 {
			if err := json.Unmarshal(remark, &e.Details); err != nil {
				return nil, fmt.Errorf("unmarshal operation log remark: %w", err)
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

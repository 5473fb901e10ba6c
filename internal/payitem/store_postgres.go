package payitem

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"paybook/pkg/domain"
	"paybook/pkg/platform/sentinel"
)

// PostgresStore persists taxonomy items in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, item *Item) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO paybook_items (name, direct, parent_id)
		VALUES ($1, $2, NULLIF($3, 0))
		RETURNING id`,
		item.Name, int16(item.Direct), int64(item.ParentID),
	).Scan(&item.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create pay item: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id domain.ItemID) (*Item, error) {
	return s.get(ctx, `WHERE id = $1`, int64(id))
}

func (s *PostgresStore) GetByName(ctx context.Context, name string) (*Item, error) {
	return s.get(ctx, `WHERE name = $1`, name)
}

func (s *PostgresStore) get(ctx context.Context, where string, arg any) (*Item, error) {
	var (
		item   Item
		direct int16
		parent sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, direct, parent_id FROM paybook_items `+where, arg,
	).Scan(&item.ID, &item.Name, &direct, &parent)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get pay item: %w", err)
	}
	item.Direct = Direct(direct)
	item.ParentID = domain.ItemID(parent.Int64)
	return &item, nil
}

func (s *PostgresStore) UpdateParent(ctx context.Context, id, parentID domain.ItemID) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE paybook_items SET parent_id = NULLIF($2, 0) WHERE id = $1`,
		int64(id), int64(parentID),
	)
	if err != nil {
		return fmt.Errorf("update pay item parent: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) Delete(ctx context.Context, id domain.ItemID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM paybook_items WHERE id = $1`, int64(id))
	if err != nil {
		return fmt.Errorf("delete pay item: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) List(ctx context.Context) ([]*Item, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, direct, parent_id FROM paybook_items ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list pay items: %w", err)
	}
	defer rows.Close()

	var out []*Item
	for rows.Next() {
		var (
			item   Item
			direct int16
			parent sql.NullInt64
		)
		if err := rows.Scan(&item.ID, &item.Name, &direct, &parent); err != nil {
			return nil, fmt.Errorf("scan pay item: %w", err)
		}
		item.Direct = Direct(direct)
		item.ParentID = domain.ItemID(parent.Int64)
		out = append(out, &item)
	}
	return out, rows.Err()
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

package address

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"paybook/pkg/domain"
	"paybook/pkg/platform/sentinel"
)

// PostgresStore persists taxonomy nodes in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, a *Address) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO addresses (no, name, parent_id)
		VALUES ($1, $2, NULLIF($3, 0))
		RETURNING id`,
		a.No, a.Name, int64(a.ParentID),
	).Scan(&a.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create address: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id domain.AddressID) (*Address, error) {
	return s.get(ctx, `WHERE id = $1`, int64(id))
}

func (s *PostgresStore) GetByNo(ctx context.Context, no string) (*Address, error) {
	return s.get(ctx, `WHERE no = $1`, no)
}

func (s *PostgresStore) get(ctx context.Context, where string, arg any) (*Address, error) {
	var (
		a      Address
		parent sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, no, name, parent_id FROM addresses `+where, arg,
	).Scan(&a.ID, &a.No, &a.Name, &parent)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get address: %w", err)
	}
	a.ParentID = domain.AddressID(parent.Int64)
	return &a, nil
}

func (s *PostgresStore) UpdateParent(ctx context.Context, id, parentID domain.AddressID) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE addresses SET parent_id = NULLIF($2, 0) WHERE id = $1`,
		int64(id), int64(parentID),
	)
	if err != nil {
		return fmt.Errorf("update address parent: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) Delete(ctx context.Context, id domain.AddressID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM addresses WHERE id = $1`, int64(id))
	if err != nil {
		return fmt.Errorf("delete address: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) List(ctx context.Context) ([]*Address, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, no, name, parent_id FROM addresses ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	defer rows.Close()

	var out []*Address
	for rows.Next() {
		var (
			a      Address
			parent sql.NullInt64
		)
		if err := rows.Scan(&a.ID, &a.No, &a.Name, &parent); err != nil {
			return nil, fmt.Errorf("scan address: %w", err)
		}
		a.ParentID = domain.AddressID(parent.Int64)
		out = append(out, &a)
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

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

package bankcard

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"paybook/pkg/domain"
	"paybook/pkg/platform/sentinel"
)

// PostgresStore persists bank cards in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, c *Bankcard) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO bankcards (no, name, owner_id, create_by, create_time)
		VALUES ($1, $2, NULLIF($3, 0), $4, $5)
		RETURNING id`,
		c.No, c.Name, int64(c.OwnerID), c.CreateBy, c.CreateTime,
	).Scan(&c.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create bankcard: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id domain.BankcardID) (*Bankcard, error) {
	return s.get(ctx, `WHERE id = $1`, int64(id))
}

func (s *PostgresStore) GetByNo(ctx context.Context, no string) (*Bankcard, error) {
	return s.get(ctx, `WHERE no = $1`, no)
}

func (s *PostgresStore) get(ctx context.Context, where string, arg any) (*Bankcard, error) {
	var (
		c     Bankcard
		owner sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, no, name, owner_id, create_by, create_time
		FROM bankcards `+where, arg,
	).Scan(&c.ID, &c.No, &c.Name, &owner, &c.CreateBy, &c.CreateTime)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get bankcard: %w", err)
	}
	c.OwnerID = domain.PersonID(owner.Int64)
	return &c, nil
}

func (s *PostgresStore) UpdateOwner(ctx context.Context, id domain.BankcardID, owner domain.PersonID) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE bankcards SET owner_id = NULLIF($2, 0) WHERE id = $1`,
		int64(id), int64(owner),
	)
	if err != nil {
		return fmt.Errorf("update bankcard owner: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) Delete(ctx context.Context, id domain.BankcardID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM bankcards WHERE id = $1`, int64(id))
	if err != nil {
		return fmt.Errorf("delete bankcard: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) ListByOwner(ctx context.Context, owner domain.PersonID) ([]*Bankcard, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, no, name, owner_id, create_by, create_time
		FROM bankcards WHERE owner_id = $1 ORDER BY id`, int64(owner))
	if err != nil {
		return nil, fmt.Errorf("list bankcards: %w", err)
	}
	defer rows.Close()

	var out []*Bankcard
	for rows.Next() {
		var (
			c   Bankcard
			own sql.NullInt64
		)
		if err := rows.Scan(&c.ID, &c.No, &c.Name, &own, &c.CreateBy, &c.CreateTime); err != nil {
			return nil, fmt.Errorf("scan bankcard: %w", err)
		}
		c.OwnerID = domain.PersonID(own.Int64)
		out = append(out, &c)
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

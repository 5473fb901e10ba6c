package person

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"paybook/pkg/domain"
	"paybook/pkg/platform/sentinel"
)

// PostgresStore persists persons in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const personColumns = `id, idcard, name, birthday, address_id, address_detail,
	securi_no, personal_wage, status, retire_day, dead_day, create_by,
	create_time, version`

func (s *PostgresStore) Create(ctx context.Context, p *Person) error {
	if p.Version == 0 {
		p.Version = 1
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO persons (idcard, name, birthday, address_id, address_detail,
			securi_no, personal_wage, status, retire_day, dead_day, create_by,
			create_time, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`,
		p.IDCard, p.Name, p.Birthday, int64(p.AddressID), p.AddressDetail,
		p.SecuriNo, p.PersonalWage, string(p.Status), p.RetireDay, p.DeadDay,
		p.CreateBy, p.CreateTime, p.Version,
	).Scan(&p.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create person: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id domain.PersonID) (*Person, error) {
	return s.get(ctx, `WHERE id = $1`, int64(id))
}

func (s *PostgresStore) GetByIDCard(ctx context.Context, idcard string) (*Person, error) {
	return s.get(ctx, `WHERE idcard = $1`, idcard)
}

func (s *PostgresStore) get(ctx context.Context, where string, arg any) (*Person, error) {
	var (
		p         Person
		status    string
		retireDay sql.NullTime
		deadDay   sql.NullTime
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT `+personColumns+` FROM persons `+where, arg,
	).Scan(&p.ID, &p.IDCard, &p.Name, &p.Birthday, &p.AddressID,
		&p.AddressDetail, &p.SecuriNo, &p.PersonalWage, &status,
		&retireDay, &deadDay, &p.CreateBy, &p.CreateTime, &p.Version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get person: %w", err)
	}
	p.Status = Status(status)
	if retireDay.Valid {
		t := retireDay.Time.UTC()
		p.RetireDay = &t
	}
	if deadDay.Valid {
		t := deadDay.Time.UTC()
		p.DeadDay = &t
	}
	return &p, nil
}

// Update writes every mutable field guarded by the version column. Zero rows
// affected means the row vanished or someone else won the race; the caller
// sees sentinel.ErrConflict either way after a presence check.
func (s *PostgresStore) Update(ctx context.Context, p *Person) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE persons
		SET name = $2, address_id = $3, address_detail = $4, securi_no = $5,
			personal_wage = $6, status = $7, retire_day = $8, dead_day = $9,
			version = version + 1
		WHERE id = $1 AND version = $10`,
		int64(p.ID), p.Name, int64(p.AddressID), p.AddressDetail, p.SecuriNo,
		p.PersonalWage, string(p.Status), p.RetireDay, p.DeadDay, p.Version,
	)
	if err != nil {
		return fmt.Errorf("update person: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, getErr := s.Get(ctx, p.ID); errors.Is(getErr, sentinel.ErrNotFound) {
			return sentinel.ErrNotFound
		}
		return sentinel.ErrConflict
	}
	p.Version++
	return nil
}

func (s *PostgresStore) AddressInUse(ctx context.Context, id domain.AddressID) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM persons WHERE address_id = $1)`, int64(id),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check address references: %w", err)
	}
	return exists, nil
}

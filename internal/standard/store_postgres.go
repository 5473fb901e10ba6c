package standard

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"paybook/pkg/domain"
	"paybook/pkg/platform/sentinel"
)

// PostgresStore persists standards and bindings in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) CreateStandard(ctx context.Context, st *Standard) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO standards (name, money) VALUES ($1, $2) RETURNING id`,
		st.Name, st.Money,
	).Scan(&st.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create standard: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetStandard(ctx context.Context, id domain.StandardID) (*Standard, error) {
	var st Standard
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, money FROM standards WHERE id = $1`, int64(id),
	).Scan(&st.ID, &st.Name, &st.Money)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get standard: %w", err)
	}
	return &st, nil
}

func (s *PostgresStore) ListStandards(ctx context.Context) ([]*Standard, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, money FROM standards ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list standards: %w", err)
	}
	defer rows.Close()

	var out []*Standard
	for rows.Next() {
		var st Standard
		if err := rows.Scan(&st.ID, &st.Name, &st.Money); err != nil {
			return nil, fmt.Errorf("scan standard: %w", err)
		}
		out = append(out, &st)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CreateAssoc(ctx context.Context, a *Assoc) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO person_standard (person_id, standard_id, start_date, end_date)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		int64(a.PersonID), int64(a.StandardID), a.StartDate, a.EndDate,
	).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("create binding: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetAssoc(ctx context.Context, id domain.AssocID) (*Assoc, error) {
	var (
		a   Assoc
		end sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, person_id, standard_id, start_date, end_date
		FROM person_standard WHERE id = $1`, int64(id),
	).Scan(&a.ID, &a.PersonID, &a.StandardID, &a.StartDate, &end)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get binding: %w", err)
	}
	if end.Valid {
		t := end.Time.UTC()
		a.EndDate = &t
	}
	return &a, nil
}

func (s *PostgresStore) ListAssocsByPair(ctx context.Context, person domain.PersonID, std domain.StandardID) ([]*Assoc, error) {
	return s.list(ctx, `WHERE person_id = $1 AND standard_id = $2`, int64(person), int64(std))
}

func (s *PostgresStore) ListAssocsByPerson(ctx context.Context, person domain.PersonID) ([]*Assoc, error) {
	return s.list(ctx, `WHERE person_id = $1`, int64(person))
}

func (s *PostgresStore) list(ctx context.Context, where string, args ...any) ([]*Assoc, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, person_id, standard_id, start_date, end_date
		FROM person_standard `+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("list bindings: %w", err)
	}
	defer rows.Close()

	var out []*Assoc
	for rows.Next() {
		var (
			a   Assoc
			end sql.NullTime
		)
		if err := rows.Scan(&a.ID, &a.PersonID, &a.StandardID, &a.StartDate, &end); err != nil {
			return nil, fmt.Errorf("scan binding: %w", err)
		}
		if end.Valid {
			t := end.Time.UTC()
			a.EndDate = &t
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpdateAssoc(ctx context.Context, a *Assoc) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE person_standard SET start_date = $2, end_date = $3 WHERE id = $1`,
		int64(a.ID), a.StartDate, a.EndDate,
	)
	if err != nil {
		return fmt.Errorf("update binding: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

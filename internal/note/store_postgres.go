package note

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"paybook/pkg/domain"
	"paybook/pkg/platform/sentinel"
)

// PostgresStore persists notices in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const noteColumns = `id, person_id, content, start_date, end_date, disabled, create_by, create_time`

func (s *PostgresStore) Create(ctx context.Context, n *Note) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO notes (person_id, content, start_date, end_date, disabled, create_by, create_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		int64(n.PersonID), n.Content, n.StartDate, n.EndDate, n.Disabled, n.CreateBy, n.CreateTime,
	).Scan(&n.ID)
	if err != nil {
		return fmt.Errorf("create note: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id domain.NoteID) (*Note, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE id = $1`, int64(id))
	n, err := scanNote(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get note: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) Update(ctx context.Context, n *Note) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE notes SET end_date = $2, disabled = $3 WHERE id = $1`,
		int64(n.ID), n.EndDate, n.Disabled,
	)
	if err != nil {
		return fmt.Errorf("update note: %w", err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListByPerson(ctx context.Context, person domain.PersonID) ([]*Note, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE person_id = $1 ORDER BY id`, int64(person))
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	var out []*Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNote(row scanner) (*Note, error) {
	var (
		n   Note
		end sql.NullTime
	)
	if err := row.Scan(&n.ID, &n.PersonID, &n.Content, &n.StartDate, &end, &n.Disabled, &n.CreateBy, &n.CreateTime); err != nil {
		return nil, err
	}
	if end.Valid {
		t := end.Time.UTC()
		n.EndDate = &t
	}
	return &n, nil
}

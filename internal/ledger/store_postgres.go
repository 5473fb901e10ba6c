package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"paybook/pkg/domain"
	"paybook/pkg/platform/sentinel"
)

// queryer is the slice of database/sql shared by *sql.DB and *sql.Tx, so
// the same store code serves both the pool and a transaction.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// PostgresStore persists ledger entries in PostgreSQL.
type PostgresStore struct {
	q queryer
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{q: db}
}

// NewPostgresTx returns a store view bound to an open transaction.
func NewPostgresTx(tx *sql.Tx) *PostgresStore {
	return &PostgresStore{q: tx}
}

func (s *PostgresStore) Create(ctx context.Context, e *Entry) error {
	err := s.q.QueryRowContext(ctx, `
		INSERT INTO paybooks (person_id, bankcard_id, item_id, money, period, create_date, create_by)
		VALUES ($1, NULLIF($2, 0), $3, $4, $5, $6, $7)
		RETURNING id`,
		int64(e.PersonID), int64(e.BankcardID), int64(e.ItemID), e.Money,
		e.Period.FirstDay(), e.CreateDate, e.CreateBy,
	).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("create ledger entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateAll(ctx context.Context, entries []*Entry) error {
	for _, e := range entries {
		if err := s.Create(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id domain.EntryID) (*Entry, error) {
	row := s.q.QueryRowContext(ctx, `
		SELECT id, person_id, bankcard_id, item_id, money, period, create_date, create_by
		FROM paybooks WHERE id = $1`, int64(id))
	e, err := scanEntry(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get ledger entry: %w", err)
	}
	return e, nil
}

func (s *PostgresStore) ListByPerson(ctx context.Context, person domain.PersonID) ([]*Entry, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, person_id, bankcard_id, item_id, money, period, create_date, create_by
		FROM paybooks WHERE person_id = $1 ORDER BY id`, int64(person))
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()

	var out []*Entry
	for rows.Next() {
		e, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *PostgresStore) SumByItemPeriod(ctx context.Context, item domain.ItemID, period domain.Period) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.q.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(money), 0) FROM paybooks
		WHERE item_id = $1 AND period = $2`,
		int64(item), period.FirstDay(),
	).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum ledger entries: %w", err)
	}
	return total, nil
}

func (s *PostgresStore) BankcardInUse(ctx context.Context, id domain.BankcardID) (bool, error) {
	var exists bool
	err := s.q.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM paybooks WHERE bankcard_id = $1)`, int64(id),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check bankcard references: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) ItemInUse(ctx context.Context, id domain.ItemID) (bool, error) {
	var exists bool
	err := s.q.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM paybooks WHERE item_id = $1)`, int64(id),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check item references: %w", err)
	}
	return exists, nil
}

func scanEntry(scan func(dest ...any) error) (*Entry, error) {
	var (
		e      Entry
		card   sql.NullInt64
		period time.Time
	)
	if err := scan(&e.ID, &e.PersonID, &card, &e.ItemID, &e.Money, &period,
		&e.CreateDate, &e.CreateBy); err != nil {
		return nil, err
	}
	e.BankcardID = domain.BankcardID(card.Int64)
	e.Period = domain.PeriodOf(period)
	return &e, nil
}

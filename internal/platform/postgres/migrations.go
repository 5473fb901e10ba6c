package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// Schema statements, applied in order. Each is idempotent so Migrate can run
// on every start.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS addresses (
		id         BIGSERIAL PRIMARY KEY,
		no         VARCHAR(11) NOT NULL UNIQUE,
		name       TEXT NOT NULL UNIQUE,
		parent_id  BIGINT REFERENCES addresses(id)
	)`,
	`CREATE TABLE IF NOT EXISTS paybook_items (
		id         BIGSERIAL PRIMARY KEY,
		name       TEXT NOT NULL UNIQUE,
		direct     SMALLINT NOT NULL,
		parent_id  BIGINT REFERENCES paybook_items(id)
	)`,
	`CREATE TABLE IF NOT EXISTS persons (
		id             BIGSERIAL PRIMARY KEY,
		idcard         VARCHAR(18) NOT NULL UNIQUE,
		name           TEXT NOT NULL,
		birthday       DATE NOT NULL,
		address_id     BIGINT NOT NULL REFERENCES addresses(id),
		address_detail TEXT NOT NULL DEFAULT '',
		securi_no      TEXT NOT NULL DEFAULT '',
		personal_wage  NUMERIC(9,2) NOT NULL DEFAULT 0,
		status         TEXT NOT NULL,
		retire_day     DATE,
		dead_day       DATE,
		create_by      TEXT NOT NULL,
		create_time    TIMESTAMPTZ NOT NULL,
		version        BIGINT NOT NULL DEFAULT 1
	)`,
	`CREATE TABLE IF NOT EXISTS standards (
		id     BIGSERIAL PRIMARY KEY,
		name   TEXT NOT NULL UNIQUE,
		money  NUMERIC(12,2) NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS person_standard (
		id          BIGSERIAL PRIMARY KEY,
		person_id   BIGINT NOT NULL REFERENCES persons(id),
		standard_id BIGINT NOT NULL REFERENCES standards(id),
		start_date  DATE NOT NULL,
		end_date    DATE
	)`,
	`CREATE INDEX IF NOT EXISTS person_standard_pair_idx
		ON person_standard (person_id, standard_id)`,
	`CREATE TABLE IF NOT EXISTS bankcards (
		id          BIGSERIAL PRIMARY KEY,
		no          VARCHAR(19) NOT NULL UNIQUE,
		name        TEXT NOT NULL,
		owner_id    BIGINT REFERENCES persons(id),
		create_by   TEXT NOT NULL,
		create_time TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS paybooks (
		id          BIGSERIAL PRIMARY KEY,
		person_id   BIGINT NOT NULL REFERENCES persons(id),
		bankcard_id BIGINT REFERENCES bankcards(id),
		item_id     BIGINT NOT NULL REFERENCES paybook_items(id),
		money       NUMERIC(12,2) NOT NULL,
		period      DATE NOT NULL,
		create_date TIMESTAMPTZ NOT NULL,
		create_by   TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS paybooks_item_period_idx
		ON paybooks (item_id, period)`,
	`CREATE TABLE IF NOT EXISTS notes (
		id          BIGSERIAL PRIMARY KEY,
		person_id   BIGINT NOT NULL REFERENCES persons(id),
		content     TEXT NOT NULL,
		start_date  DATE NOT NULL,
		end_date    DATE,
		disabled    BOOLEAN NOT NULL DEFAULT FALSE,
		create_by   TEXT NOT NULL,
		create_time TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS operation_logs (
		id       UUID PRIMARY KEY,
		operator TEXT NOT NULL,
		method   TEXT NOT NULL,
		remark   JSONB,
		time     TIMESTAMPTZ NOT NULL
	)`,
}

// Migrate applies the schema. Statements only create objects, so repeated
// runs are safe.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply migration %d: %w", i, err)
		}
	}
	return nil
}

package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is applied in order inside one transaction. Every statement is
// idempotent so Migrate can run on each deploy.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS principals (
	id UUID PRIMARY KEY,
	role TEXT NOT NULL CHECK (role IN ('student', 'company', 'admin')),
	name TEXT NOT NULL,
	email TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	is_blocked BOOLEAN NOT NULL DEFAULT FALSE,
	course TEXT NOT NULL DEFAULT '',
	achievements TEXT[] NOT NULL DEFAULT '{}',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS principals_email_key ON principals (LOWER(email))`,
	`CREATE TABLE IF NOT EXISTS internships (
	id UUID PRIMARY KEY,
	company_id UUID NOT NULL REFERENCES principals (id),
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	location TEXT NOT NULL DEFAULT '',
	stipend NUMERIC(12, 2) NOT NULL DEFAULT 0,
	deadline TIMESTAMPTZ,
	posted_by UUID NOT NULL REFERENCES principals (id),
	posted_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	status TEXT NOT NULL DEFAULT 'Pending'
)`,
	`CREATE INDEX IF NOT EXISTS internships_company_idx ON internships (company_id)`,
	`CREATE INDEX IF NOT EXISTS internships_status_idx ON internships (status)`,
	`CREATE TABLE IF NOT EXISTS applications (
	id UUID PRIMARY KEY,
	student_id UUID NOT NULL REFERENCES principals (id),
	internship_id UUID NOT NULL REFERENCES internships (id),
	company_id UUID NOT NULL REFERENCES principals (id),
	status TEXT NOT NULL DEFAULT 'Pending',
	resume_path TEXT NOT NULL DEFAULT '',
	company_notes TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	CONSTRAINT applications_student_internship_key UNIQUE (student_id, internship_id)
)`,
	`CREATE INDEX IF NOT EXISTS applications_company_idx ON applications (company_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS applications_internship_idx ON applications (internship_id)`,
	`CREATE TABLE IF NOT EXISTS announcements (
	id UUID PRIMARY KEY,
	message TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
}

func Migrate(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	for i, stmt := range schema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration step %d: %w", i+1, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration: %w", err)
	}
	return nil
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/lib/pq"

	"campusintern/internal/common"
	"campusintern/internal/database"
	"campusintern/internal/domain/principal"
)

// Text arrays travel as their literal form (achievements::text) so they scan
// into pq.Array regardless of the wire format the driver picks.
const principalColumns = `id, role, name, email, password_hash, is_blocked, course, achievements::text, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

type PrincipalRepository struct {
	db *sql.DB
}

func NewPrincipalRepository(db *sql.DB) *PrincipalRepository {
	return &PrincipalRepository{db: db}
}

func (r *PrincipalRepository) Create(ctx context.Context, p principal.Principal) (*principal.Principal, error) {
	if p.ID.IsZero() {
		p.ID = common.NewUUID()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Achievements == nil {
		p.Achievements = []string{}
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO principals (id, role, name, email, password_hash, is_blocked, course, achievements, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::text::text[], $9, $10)`,
		p.ID, p.Role, p.Name, p.Email, p.PasswordHash, p.IsBlocked, p.Course, pq.Array(p.Achievements), p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, common.NewError(common.CodeConflict, "email already registered", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to create user", err)
	}
	return &p, nil
}

func (r *PrincipalRepository) GetByID(ctx context.Context, id common.UUID) (*principal.Principal, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+principalColumns+` FROM principals WHERE id = $1`, id)
	return scanPrincipalRow(row)
}

func (r *PrincipalRepository) GetByEmail(ctx context.Context, email string) (*principal.Principal, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+principalColumns+` FROM principals WHERE LOWER(email) = LOWER($1)`, strings.TrimSpace(email))
	return scanPrincipalRow(row)
}

// UpdateProfile leaves course and achievements untouched when they are nil.
func (r *PrincipalRepository) UpdateProfile(ctx context.Context, id common.UUID, update principal.ProfileUpdate) (*principal.Principal, error) {
	var course sql.NullString
	if update.Course != nil {
		course = sql.NullString{String: *update.Course, Valid: true}
	}
	row := r.db.QueryRowContext(ctx, `UPDATE principals
		SET name = $1, email = $2, course = COALESCE($3, course), achievements = COALESCE($4::text::text[], achievements), updated_at = $5
		WHERE id = $6
		RETURNING `+principalColumns,
		update.Name, update.Email, course, pq.Array(update.Achievements), time.Now().UTC(), id)
	p, err := scanPrincipalRow(row)
	if err != nil && database.IsUniqueViolation(err) {
		return nil, common.NewError(common.CodeConflict, "email already registered", err)
	}
	return p, err
}

// ToggleBlocked flips the flag for a principal whose role is in roles.
func (r *PrincipalRepository) ToggleBlocked(ctx context.Context, id common.UUID, roles []principal.Role) (*principal.Principal, error) {
	row := r.db.QueryRowContext(ctx, `UPDATE principals
		SET is_blocked = NOT is_blocked, updated_at = $1
		WHERE id = $2 AND role = ANY($3::text[])
		RETURNING `+principalColumns,
		time.Now().UTC(), id, pq.Array(roleStrings(roles)))
	return scanPrincipalRow(row)
}

func (r *PrincipalRepository) ListByRoles(ctx context.Context, roles []principal.Role) ([]principal.Principal, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+principalColumns+` FROM principals
		WHERE role = ANY($1::text[])
		ORDER BY created_at DESC`, pq.Array(roleStrings(roles)))
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list users", err)
	}
	defer rows.Close()
	var items []principal.Principal
	for rows.Next() {
		p, err := scanPrincipal(rows)
		if err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to scan user", err)
		}
		items = append(items, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list users", err)
	}
	return items, nil
}

func scanPrincipalRow(row rowScanner) (*principal.Principal, error) {
	p, err := scanPrincipal(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "user not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load user", err)
	}
	return p, nil
}

func scanPrincipal(row rowScanner) (*principal.Principal, error) {
	var p principal.Principal
	if err := row.Scan(&p.ID, &p.Role, &p.Name, &p.Email, &p.PasswordHash, &p.IsBlocked, &p.Course, pq.Array(&p.Achievements), &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func roleStrings(roles []principal.Role) []string {
	out := make([]string, 0, len(roles))
	for _, role := range roles {
		out = append(out, string(role))
	}
	return out
}

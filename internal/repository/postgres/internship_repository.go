package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"campusintern/internal/common"
	"campusintern/internal/domain/internship"
)

const internshipSelect = `SELECT i.id, i.company_id, p.name, i.title, i.description, i.location, i.stipend, i.deadline, i.posted_by, i.posted_at, i.status
	FROM internships i
	JOIN principals p ON p.id = i.company_id`

type InternshipRepository struct {
	db *sql.DB
}

func NewInternshipRepository(db *sql.DB) *InternshipRepository {
	return &InternshipRepository{db: db}
}

func (r *InternshipRepository) Create(ctx context.Context, item internship.Internship) (*internship.Internship, error) {
	item.ID = common.NewUUID()
	item.PostedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `INSERT INTO internships (id, company_id, title, description, location, stipend, deadline, posted_by, posted_at, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		item.ID, item.CompanyID, item.Title, item.Description, item.Location, item.Stipend, nullTime(item.Deadline), item.PostedBy, item.PostedAt, item.Status)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to create internship", err)
	}
	return &item, nil
}

func (r *InternshipRepository) GetByID(ctx context.Context, id common.UUID) (*internship.Internship, error) {
	row := r.db.QueryRowContext(ctx, internshipSelect+` WHERE i.id = $1`, id)
	item, err := scanInternship(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "internship not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load internship", err)
	}
	return item, nil
}

func (r *InternshipRepository) List(ctx context.Context, filter internship.Filter) ([]internship.Internship, error) {
	var (
		conditions []string
		args       []any
	)
	if !filter.CompanyID.IsZero() {
		args = append(args, filter.CompanyID)
		conditions = append(conditions, "i.company_id = $"+strconv.Itoa(len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, "i.status = $"+strconv.Itoa(len(args)))
	}
	query := internshipSelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY i.posted_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list internships", err)
	}
	defer rows.Close()
	var items []internship.Internship
	for rows.Next() {
		item, err := scanInternship(rows)
		if err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to scan internship", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list internships", err)
	}
	return items, nil
}

func (r *InternshipRepository) UpdateStatus(ctx context.Context, id common.UUID, status internship.Status) (*internship.Internship, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE internships SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to update internship", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to update internship", err)
	}
	if affected == 0 {
		return nil, common.NewError(common.CodeNotFound, "internship not found", nil)
	}
	return r.GetByID(ctx, id)
}

func scanInternship(row rowScanner) (*internship.Internship, error) {
	var (
		item     internship.Internship
		deadline sql.NullTime
	)
	if err := row.Scan(&item.ID, &item.CompanyID, &item.CompanyName, &item.Title, &item.Description, &item.Location, &item.Stipend, &deadline, &item.PostedBy, &item.PostedAt, &item.Status); err != nil {
		return nil, err
	}
	if deadline.Valid {
		value := deadline.Time
		item.Deadline = &value
	}
	return &item, nil
}

func nullTime(value *time.Time) sql.NullTime {
	if value == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *value, Valid: true}
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"campusintern/internal/common"
	"campusintern/internal/database"
	"campusintern/internal/domain/application"
)

const applicationColumns = `id, student_id, internship_id, company_id, status, resume_path, company_notes, created_at, updated_at`

type ApplicationRepository struct {
	db *sql.DB
}

func NewApplicationRepository(db *sql.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// Create relies on the UNIQUE (student_id, internship_id) constraint so two
// concurrent applies for the same pair cannot both succeed.
func (r *ApplicationRepository) Create(ctx context.Context, app application.Application) (*application.Application, error) {
	app.ID = common.NewUUID()
	now := time.Now().UTC()
	app.CreatedAt = now
	app.UpdatedAt = now
	_, err := r.db.ExecContext(ctx, `INSERT INTO applications (id, student_id, internship_id, company_id, status, resume_path, company_notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		app.ID, app.StudentID, app.InternshipID, app.CompanyID, app.Status, app.ResumePath, app.CompanyNotes, app.CreatedAt, app.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, common.NewError(common.CodeConflict, "already applied to this internship", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to create application", err)
	}
	return &app, nil
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id common.UUID) (*application.Application, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id)
	app, err := scanApplication(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "application not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load application", err)
	}
	return app, nil
}

func (r *ApplicationRepository) GetDetail(ctx context.Context, id common.UUID) (*application.Detail, error) {
	row := r.db.QueryRowContext(ctx, `SELECT a.id, a.student_id, a.internship_id, a.company_id, a.status, a.resume_path, a.company_notes, a.created_at, a.updated_at,
			s.name, s.email, i.title, c.name
		FROM applications a
		JOIN principals s ON s.id = a.student_id
		JOIN internships i ON i.id = a.internship_id
		JOIN principals c ON c.id = a.company_id
		WHERE a.id = $1`, id)
	var d application.Detail
	err := row.Scan(&d.ID, &d.StudentID, &d.InternshipID, &d.CompanyID, &d.Status, &d.ResumePath, &d.CompanyNotes, &d.CreatedAt, &d.UpdatedAt,
		&d.StudentName, &d.StudentEmail, &d.InternshipTitle, &d.CompanyName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "application not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load application", err)
	}
	d.Status = application.Normalize(d.Status)
	return &d, nil
}

func (r *ApplicationRepository) ListByStudent(ctx context.Context, studentID common.UUID) ([]application.StudentView, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT a.id, a.internship_id, i.title, c.name, a.status, a.created_at, a.company_notes, a.resume_path
		FROM applications a
		JOIN internships i ON i.id = a.internship_id
		JOIN principals c ON c.id = a.company_id
		WHERE a.student_id = $1
		ORDER BY a.created_at DESC`, studentID)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list student applications", err)
	}
	defer rows.Close()
	var items []application.StudentView
	for rows.Next() {
		var (
			v          application.StudentView
			resumePath string
		)
		if err := rows.Scan(&v.ID, &v.InternshipID, &v.InternshipTitle, &v.CompanyName, &v.Status, &v.AppliedOn, &v.CompanyNotes, &resumePath); err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to scan application", err)
		}
		v.Status = application.Normalize(v.Status)
		v.HasResume = resumePath != ""
		items = append(items, v)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list student applications", err)
	}
	return items, nil
}

const companyViewSelect = `SELECT a.id, a.internship_id, i.title, i.location, a.student_id, s.name, s.email, a.status, a.company_notes, a.resume_path, a.created_at
	FROM applications a
	JOIN internships i ON i.id = a.internship_id
	JOIN principals s ON s.id = a.student_id`

// ListByCompany returns the newest applications first; limit <= 0 means all.
func (r *ApplicationRepository) ListByCompany(ctx context.Context, companyID common.UUID, limit int) ([]application.CompanyView, error) {
	query := companyViewSelect + ` WHERE a.company_id = $1 ORDER BY a.created_at DESC`
	args := []any{companyID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}
	return r.listCompanyViews(ctx, query, args...)
}

func (r *ApplicationRepository) ListByInternship(ctx context.Context, internshipID common.UUID) ([]application.CompanyView, error) {
	return r.listCompanyViews(ctx, companyViewSelect+` WHERE a.internship_id = $1 ORDER BY a.created_at DESC`, internshipID)
}

func (r *ApplicationRepository) listCompanyViews(ctx context.Context, query string, args ...any) ([]application.CompanyView, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list company applications", err)
	}
	defer rows.Close()
	var items []application.CompanyView
	for rows.Next() {
		var (
			v          application.CompanyView
			resumePath string
		)
		if err := rows.Scan(&v.ID, &v.InternshipID, &v.InternshipTitle, &v.InternshipLocation, &v.StudentID, &v.StudentName, &v.StudentEmail, &v.Status, &v.CompanyNotes, &resumePath, &v.CreatedAt); err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to scan application", err)
		}
		v.Status = application.Normalize(v.Status)
		v.HasResume = resumePath != ""
		items = append(items, v)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list company applications", err)
	}
	return items, nil
}

func (r *ApplicationRepository) ListAll(ctx context.Context) ([]application.AdminView, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT a.id, s.name, i.title, c.name, a.status, a.resume_path, a.created_at
		FROM applications a
		JOIN principals s ON s.id = a.student_id
		JOIN internships i ON i.id = a.internship_id
		JOIN principals c ON c.id = a.company_id
		ORDER BY a.created_at DESC`)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list applications", err)
	}
	defer rows.Close()
	var items []application.AdminView
	for rows.Next() {
		var (
			v          application.AdminView
			resumePath string
		)
		if err := rows.Scan(&v.ID, &v.StudentName, &v.InternshipTitle, &v.CompanyName, &v.Status, &resumePath, &v.CreatedAt); err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to scan application", err)
		}
		v.Status = application.Normalize(v.Status)
		v.HasResume = resumePath != ""
		items = append(items, v)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list applications", err)
	}
	return items, nil
}

// UpdateDecision is a compare-and-set on status. A Pending expectation also
// matches rows still stored with the legacy Applied value.
func (r *ApplicationRepository) UpdateDecision(ctx context.Context, id common.UUID, expected application.Status, status application.Status, notes string) (*application.Application, bool, error) {
	row := r.db.QueryRowContext(ctx, `UPDATE applications
		SET status = $1, company_notes = $2, updated_at = $3
		WHERE id = $4 AND status = ANY($5::text[])
		RETURNING `+applicationColumns,
		status, notes, time.Now().UTC(), id, pq.Array(storedVariants(expected)))
	app, err := scanApplication(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, common.NewError(common.CodeInternal, "failed to update application", err)
	}
	return app, true, nil
}

func (r *ApplicationRepository) DeleteWithdrawable(ctx context.Context, id, studentID common.UUID) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM applications WHERE id = $1 AND student_id = $2 AND status IN ('Pending', 'Applied')`, id, studentID)
	if err != nil {
		return false, common.NewError(common.CodeInternal, "failed to delete application", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, common.NewError(common.CodeInternal, "failed to delete application", err)
	}
	return affected > 0, nil
}

func (r *ApplicationRepository) SetResumePath(ctx context.Context, id, studentID common.UUID, path string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE applications SET resume_path = $1, updated_at = $2 WHERE id = $3 AND student_id = $4`,
		path, time.Now().UTC(), id, studentID)
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to save resume reference", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to save resume reference", err)
	}
	if affected == 0 {
		return common.NewError(common.CodeNotFound, "application not found", nil)
	}
	return nil
}

func (r *ApplicationRepository) NormalizeLegacyStatuses(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE applications SET status = $1, updated_at = $2 WHERE status = $3`,
		application.StatusPending, time.Now().UTC(), application.StatusApplied)
	if err != nil {
		return 0, common.NewError(common.CodeInternal, "failed to normalize statuses", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, common.NewError(common.CodeInternal, "failed to normalize statuses", err)
	}
	return affected, nil
}

func scanApplication(row rowScanner) (*application.Application, error) {
	var app application.Application
	if err := row.Scan(&app.ID, &app.StudentID, &app.InternshipID, &app.CompanyID, &app.Status, &app.ResumePath, &app.CompanyNotes, &app.CreatedAt, &app.UpdatedAt); err != nil {
		return nil, err
	}
	app.Status = application.Normalize(app.Status)
	return &app, nil
}

func storedVariants(status application.Status) []string {
	if application.Normalize(status) == application.StatusPending {
		return []string{string(application.StatusPending), string(application.StatusApplied)}
	}
	return []string{string(status)}
}

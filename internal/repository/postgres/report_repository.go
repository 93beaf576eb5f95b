package postgres

import (
	"context"
	"database/sql"

	"campusintern/internal/common"
	"campusintern/internal/domain/application"
	"campusintern/internal/domain/report"
)

type ReportRepository struct {
	db *sql.DB
}

func NewReportRepository(db *sql.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) Counts(ctx context.Context) (report.Counts, error) {
	var counts report.Counts
	err := r.db.QueryRowContext(ctx, `SELECT
			(SELECT COUNT(*) FROM principals WHERE role = 'student'),
			(SELECT COUNT(*) FROM principals WHERE role = 'company'),
			(SELECT COUNT(*) FROM principals WHERE role = 'admin'),
			(SELECT COUNT(*) FROM internships),
			(SELECT COUNT(*) FROM applications)`).
		Scan(&counts.StudentCount, &counts.CompanyCount, &counts.AdminCount, &counts.InternshipCount, &counts.ApplicationCount)
	if err != nil {
		return report.Counts{}, common.NewError(common.CodeInternal, "failed to load dashboard counts", err)
	}
	return counts, nil
}

// SelectedByCompany is unordered; report.RankOffers sorts it.
func (r *ReportRepository) SelectedByCompany(ctx context.Context) ([]report.CompanyOffer, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT c.name, COUNT(*)
		FROM applications a
		JOIN principals c ON c.id = a.company_id
		WHERE a.status = $1
		GROUP BY c.name`, application.StatusSelected)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to load company offers", err)
	}
	defer rows.Close()
	var items []report.CompanyOffer
	for rows.Next() {
		var item report.CompanyOffer
		if err := rows.Scan(&item.CompanyName, &item.Count); err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to scan company offers", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to load company offers", err)
	}
	return items, nil
}

// ApplicationsByMonth groups by calendar month across all years.
func (r *ReportRepository) ApplicationsByMonth(ctx context.Context) ([]report.MonthBucket, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT EXTRACT(MONTH FROM created_at)::int AS month, COUNT(*)
		FROM applications
		GROUP BY month
		ORDER BY month`)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to load application trend", err)
	}
	defer rows.Close()
	var items []report.MonthBucket
	for rows.Next() {
		var item report.MonthBucket
		if err := rows.Scan(&item.Month, &item.Count); err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to scan application trend", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to load application trend", err)
	}
	return items, nil
}

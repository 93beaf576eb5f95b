package memory

import (
	"context"
	"time"

	"campusintern/internal/domain/application"
	"campusintern/internal/domain/principal"
	"campusintern/internal/domain/report"
)

// ReportRepository computes the aggregates on every call.
type ReportRepository struct {
	s *Store
}

func (r *ReportRepository) Counts(ctx context.Context) (report.Counts, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var counts report.Counts
	for _, p := range r.s.principals {
		switch p.Role {
		case principal.RoleStudent:
			counts.StudentCount++
		case principal.RoleCompany:
			counts.CompanyCount++
		case principal.RoleAdmin:
			counts.AdminCount++
		}
	}
	counts.InternshipCount = int64(len(r.s.internships))
	counts.ApplicationCount = int64(len(r.s.applications))
	return counts, nil
}

func (r *ReportRepository) SelectedByCompany(ctx context.Context) ([]report.CompanyOffer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	totals := map[string]int64{}
	for _, app := range r.s.applications {
		if application.Normalize(app.Status) != application.StatusSelected {
			continue
		}
		totals[r.s.principals[app.CompanyID].Name]++
	}
	out := make([]report.CompanyOffer, 0, len(totals))
	for name, count := range totals {
		out = append(out, report.CompanyOffer{CompanyName: name, Count: count})
	}
	return out, nil
}

func (r *ReportRepository) ApplicationsByMonth(ctx context.Context) ([]report.MonthBucket, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	times := make([]time.Time, 0, len(r.s.applications))
	for _, app := range r.s.applications {
		times = append(times, app.CreatedAt)
	}
	return report.BucketsFromTimes(times), nil
}

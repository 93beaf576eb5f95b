package app

import (
	"context"

	"campusintern/internal/domain/application"
	"campusintern/internal/domain/principal"
	"campusintern/internal/domain/report"
	"campusintern/internal/policy"
)

// ReportService builds read-only projections. Every call computes fresh
// values; nothing is cached between requests.
type ReportService struct {
	reports      report.Repository
	applications application.Repository
	principals   principal.Repository
}

func NewReportService(reports report.Repository, applications application.Repository, principals principal.Repository) *ReportService {
	return &ReportService{reports: reports, applications: applications, principals: principals}
}

func (s *ReportService) DashboardCounts(ctx context.Context, actor policy.Actor) (report.Counts, error) {
	if err := policy.Authorize(actor, policy.ActionAdminDashboard).Err(); err != nil {
		return report.Counts{}, err
	}
	return s.reports.Counts(ctx)
}

func (s *ReportService) CompanyOffers(ctx context.Context, actor policy.Actor) ([]report.CompanyOffer, error) {
	if err := policy.Authorize(actor, policy.ActionViewReports).Err(); err != nil {
		return nil, err
	}
	offers, err := s.reports.SelectedByCompany(ctx)
	if err != nil {
		return nil, err
	}
	return report.RankOffers(offers), nil
}

func (s *ReportService) ApplicationsTrend(ctx context.Context, actor policy.Actor) ([]report.MonthCount, error) {
	if err := policy.Authorize(actor, policy.ActionViewReports).Err(); err != nil {
		return nil, err
	}
	buckets, err := s.reports.ApplicationsByMonth(ctx)
	if err != nil {
		return nil, err
	}
	return report.MonthlyTrend(buckets), nil
}

func (s *ReportService) StudentStats(ctx context.Context, actor policy.Actor) (report.StudentStats, error) {
	if err := policy.Authorize(actor, policy.ActionStudentStats).Err(); err != nil {
		return report.StudentStats{}, err
	}
	profile, err := s.principals.GetByID(ctx, actor.ID)
	if err != nil {
		return report.StudentStats{}, err
	}
	views, err := s.applications.ListByStudent(ctx, actor.ID)
	if err != nil {
		return report.StudentStats{}, err
	}
	statuses := make([]application.Status, 0, len(views))
	for _, view := range views {
		statuses = append(statuses, view.Status)
	}
	return report.BuildStudentStats(statuses, profile.ProfileCompletion()), nil
}

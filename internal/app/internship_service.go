package app

import (
	"context"
	"strings"
	"time"

	"campusintern/internal/common"
	"campusintern/internal/domain/internship"
	"campusintern/internal/policy"
)

type InternshipService struct {
	repo   internship.Repository
	logger Logger
}

func NewInternshipService(repo internship.Repository, logger Logger) *InternshipService {
	return &InternshipService{repo: repo, logger: logger}
}

type InternshipInput struct {
	Title       string
	Description string
	Location    string
	Stipend     float64
	Deadline    *time.Time
}

// Create posts a new internship owned by the calling company. It always
// starts Pending regardless of input.
func (s *InternshipService) Create(ctx context.Context, actor policy.Actor, in InternshipInput) (*internship.Internship, error) {
	if err := policy.Authorize(actor, policy.ActionPostInternship).Err(); err != nil {
		return nil, err
	}
	fields := map[string]string{}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		fields["title"] = "title is required"
	}
	if in.Stipend < 0 {
		fields["stipend"] = "stipend must not be negative"
	}
	if len(fields) > 0 {
		return nil, common.NewValidationError("invalid internship", fields)
	}
	created, err := s.repo.Create(ctx, internship.Internship{
		CompanyID:   actor.ID,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Location:    strings.TrimSpace(in.Location),
		Stipend:     in.Stipend,
		Deadline:    in.Deadline,
		PostedBy:    actor.ID,
		Status:      internship.StatusPending,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("internship posted id=" + created.ID.String() + " company=" + actor.ID.String())
	return created, nil
}

func (s *InternshipService) List(ctx context.Context, actor policy.Actor) ([]internship.Internship, error) {
	if err := policy.Authorize(actor, policy.ActionListInternships).Err(); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, policy.InternshipScope(actor))
}

func (s *InternshipService) Get(ctx context.Context, actor policy.Actor, id common.UUID) (*internship.Internship, error) {
	if err := policy.Authorize(actor, policy.ActionViewInternship).Err(); err != nil {
		return nil, err
	}
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanSeeInternship(actor, *item) {
		return nil, common.NewError(common.CodeNotFound, "internship not found", nil)
	}
	return item, nil
}

func (s *InternshipService) Moderate(ctx context.Context, actor policy.Actor, id common.UUID, rawStatus string) (*internship.Internship, error) {
	if err := policy.Authorize(actor, policy.ActionModerateInternship).Err(); err != nil {
		return nil, err
	}
	status, ok := internship.ParseStatus(rawStatus)
	if !ok {
		return nil, common.NewValidationError("invalid status", map[string]string{"status": "status must be Pending, Approved or Rejected"})
	}
	updated, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	s.logger.Info("internship moderated id=" + updated.ID.String() + " status=" + string(status))
	return updated, nil
}

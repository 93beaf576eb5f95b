package app

import (
	"context"
	"strings"
	"unicode/utf8"

	"campusintern/internal/common"
	"campusintern/internal/domain/announcement"
	"campusintern/internal/policy"
)

const maxAnnouncementLength = 2000

type AnnouncementService struct {
	repo announcement.Repository
}

func NewAnnouncementService(repo announcement.Repository) *AnnouncementService {
	return &AnnouncementService{repo: repo}
}

func (s *AnnouncementService) Create(ctx context.Context, actor policy.Actor, message string) (*announcement.Announcement, error) {
	if err := policy.Authorize(actor, policy.ActionPostAnnouncement).Err(); err != nil {
		return nil, err
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, common.NewValidationError("message is required", map[string]string{"message": "message is required"})
	}
	if utf8.RuneCountInString(message) > maxAnnouncementLength {
		return nil, common.NewValidationError("message is too long", map[string]string{"message": "message must be at most 2000 characters"})
	}
	return s.repo.Create(ctx, message)
}

func (s *AnnouncementService) List(ctx context.Context, actor policy.Actor) ([]announcement.Announcement, error) {
	if err := policy.Authorize(actor, policy.ActionReadAnnouncements).Err(); err != nil {
		return nil, err
	}
	return s.repo.List(ctx)
}

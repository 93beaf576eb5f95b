package memory

import (
	"context"

	"campusintern/internal/common"
	"campusintern/internal/domain/announcement"
)

type AnnouncementRepository struct {
	s *Store
}

func (r *AnnouncementRepository) Create(ctx context.Context, message string) (*announcement.Announcement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	item := announcement.Announcement{ID: common.NewUUID(), Message: message, CreatedAt: r.s.tick()}
	r.s.announcements = append([]announcement.Announcement{item}, r.s.announcements...)
	return &item, nil
}

func (r *AnnouncementRepository) List(ctx context.Context) ([]announcement.Announcement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return append(make([]announcement.Announcement, 0, len(r.s.announcements)), r.s.announcements...), nil
}

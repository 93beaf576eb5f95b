package postgres

import (
	"context"
	"database/sql"
	"time"

	"campusintern/internal/common"
	"campusintern/internal/domain/announcement"
)

type AnnouncementRepository struct {
	db *sql.DB
}

func NewAnnouncementRepository(db *sql.DB) *AnnouncementRepository {
	return &AnnouncementRepository{db: db}
}

func (r *AnnouncementRepository) Create(ctx context.Context, message string) (*announcement.Announcement, error) {
	item := announcement.Announcement{ID: common.NewUUID(), Message: message, CreatedAt: time.Now().UTC()}
	_, err := r.db.ExecContext(ctx, `INSERT INTO announcements (id, message, created_at) VALUES ($1, $2, $3)`, item.ID, item.Message, item.CreatedAt)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to create announcement", err)
	}
	return &item, nil
}

func (r *AnnouncementRepository) List(ctx context.Context) ([]announcement.Announcement, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, message, created_at FROM announcements ORDER BY created_at DESC`)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list announcements", err)
	}
	defer rows.Close()
	var items []announcement.Announcement
	for rows.Next() {
		var item announcement.Announcement
		if err := rows.Scan(&item.ID, &item.Message, &item.CreatedAt); err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to scan announcement", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list announcements", err)
	}
	return items, nil
}

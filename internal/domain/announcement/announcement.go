package announcement

import (
	"context"
	"time"

	"campusintern/internal/common"
)

type Announcement struct {
	ID        common.UUID `json:"id"`
	Message   string      `json:"message"`
	CreatedAt time.Time   `json:"createdAt"`
}

type Repository interface {
	Create(ctx context.Context, message string) (*Announcement, error)
	List(ctx context.Context) ([]Announcement, error)
}

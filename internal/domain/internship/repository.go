package internship

import (
	"context"

	"campusintern/internal/common"
)

type Repository interface {
	Create(ctx context.Context, item Internship) (*Internship, error)
	GetByID(ctx context.Context, id common.UUID) (*Internship, error)
	List(ctx context.Context, filter Filter) ([]Internship, error)
	UpdateStatus(ctx context.Context, id common.UUID, status Status) (*Internship, error)
}

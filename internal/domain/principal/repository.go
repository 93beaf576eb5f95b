package principal

import (
	"context"

	"campusintern/internal/common"
)

type Repository interface {
	Create(ctx context.Context, p Principal) (*Principal, error)
	GetByID(ctx context.Context, id common.UUID) (*Principal, error)
	GetByEmail(ctx context.Context, email string) (*Principal, error)
	UpdateProfile(ctx context.Context, id common.UUID, update ProfileUpdate) (*Principal, error)
	ToggleBlocked(ctx context.Context, id common.UUID, roles []Role) (*Principal, error)
	ListByRoles(ctx context.Context, roles []Role) ([]Principal, error)
}

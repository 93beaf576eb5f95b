package application

import (
	"context"

	"campusintern/internal/common"
)

type Repository interface {
	// Create must fail with a conflict error when the (student, internship)
	// pair already exists; the store enforces this, not the caller.
	Create(ctx context.Context, app Application) (*Application, error)
	GetByID(ctx context.Context, id common.UUID) (*Application, error)
	GetDetail(ctx context.Context, id common.UUID) (*Detail, error)
	ListByStudent(ctx context.Context, studentID common.UUID) ([]StudentView, error)
	ListByCompany(ctx context.Context, companyID common.UUID, limit int) ([]CompanyView, error)
	ListByInternship(ctx context.Context, internshipID common.UUID) ([]CompanyView, error)
	ListAll(ctx context.Context) ([]AdminView, error)
	// UpdateDecision writes status and notes together only if the stored
	// status still equals expected. It reports false when the guard failed.
	UpdateDecision(ctx context.Context, id common.UUID, expected Status, status Status, notes string) (*Application, bool, error)
	// DeleteWithdrawable removes the row only while it is owned by studentID
	// and still in a pre-decision status.
	DeleteWithdrawable(ctx context.Context, id, studentID common.UUID) (bool, error)
	SetResumePath(ctx context.Context, id, studentID common.UUID, path string) error
	NormalizeLegacyStatuses(ctx context.Context) (int64, error)
}

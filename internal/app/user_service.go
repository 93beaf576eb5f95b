package app

import (
	"context"
	"strings"

	"campusintern/internal/common"
	"campusintern/internal/domain/principal"
	"campusintern/internal/policy"
)

// blockableRoles are the roles an admin may list and block.
var blockableRoles = []principal.Role{principal.RoleStudent, principal.RoleCompany}

type UserService struct {
	principals principal.Repository
	auth       *AuthService
	logger     Logger
}

func NewUserService(principals principal.Repository, auth *AuthService, logger Logger) *UserService {
	return &UserService{principals: principals, auth: auth, logger: logger}
}

type ProfileInput struct {
	Name         *string
	Email        *string
	Course       *string
	Achievements []string
}

func (s *UserService) UpdateProfile(ctx context.Context, actor policy.Actor, in ProfileInput) (*principal.Principal, error) {
	if err := policy.Authorize(actor, policy.ActionUpdateProfile).Err(); err != nil {
		return nil, err
	}
	current, err := s.principals.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	name := current.Name
	if in.Name != nil {
		name = strings.TrimSpace(*in.Name)
	}
	rawEmail := current.Email
	if in.Email != nil {
		rawEmail = *in.Email
	}
	email, fields := validateIdentity(name, rawEmail)
	if len(fields) > 0 {
		return nil, common.NewValidationError("invalid profile", fields)
	}
	update := principal.ProfileUpdate{Name: name, Email: email}
	if actor.Role == principal.RoleStudent {
		if in.Course != nil {
			course := strings.TrimSpace(*in.Course)
			update.Course = &course
		}
		if in.Achievements != nil {
			update.Achievements = cleanList(in.Achievements)
		}
	}
	return s.principals.UpdateProfile(ctx, actor.ID, update)
}

func (s *UserService) ListUsers(ctx context.Context, actor policy.Actor) ([]principal.Principal, error) {
	if err := policy.Authorize(actor, policy.ActionListUsers).Err(); err != nil {
		return nil, err
	}
	return s.principals.ListByRoles(ctx, blockableRoles)
}

// ToggleBlock flips the block flag of a student or company. Admin accounts
// are reported as missing.
func (s *UserService) ToggleBlock(ctx context.Context, actor policy.Actor, id common.UUID) (*principal.Principal, error) {
	if err := policy.Authorize(actor, policy.ActionToggleBlock).Err(); err != nil {
		return nil, err
	}
	updated, err := s.principals.ToggleBlocked(ctx, id, blockableRoles)
	if err != nil {
		return nil, err
	}
	state := "unblocked"
	if updated.IsBlocked {
		state = "blocked"
	}
	s.logger.Info("principal " + state + " id=" + updated.ID.String() + " by=" + actor.ID.String())
	return updated, nil
}

func (s *UserService) AddAdmin(ctx context.Context, actor policy.Actor, in RegisterInput) (*principal.Principal, error) {
	if err := policy.Authorize(actor, policy.ActionCreateAdmin).Err(); err != nil {
		return nil, err
	}
	return s.auth.CreateAdmin(ctx, in)
}

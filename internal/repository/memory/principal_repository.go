package memory

import (
	"context"
	"sort"
	"strings"

	"campusintern/internal/common"
	"campusintern/internal/domain/principal"
)

type PrincipalRepository struct {
	s *Store
}

func (r *PrincipalRepository) emailTaken(email string, except common.UUID) bool {
	for id, p := range r.s.principals {
		if id != except && strings.EqualFold(p.Email, email) {
			return true
		}
	}
	return false
}

// detach copies p so callers cannot reach the stored achievements slice.
func detach(p principal.Principal) *principal.Principal {
	p.Achievements = append([]string(nil), p.Achievements...)
	return &p
}

func (r *PrincipalRepository) Create(ctx context.Context, p principal.Principal) (*principal.Principal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.emailTaken(p.Email, "") {
		return nil, common.NewError(common.CodeConflict, "email already registered", nil)
	}
	p.ID = common.NewUUID()
	p.CreatedAt = r.s.tick()
	p.UpdatedAt = p.CreatedAt
	p.Achievements = append([]string(nil), p.Achievements...)
	r.s.principals[p.ID] = p
	return detach(p), nil
}

func (r *PrincipalRepository) GetByID(ctx context.Context, id common.UUID) (*principal.Principal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.principals[id]
	if !ok {
		return nil, notFound("user not found")
	}
	return detach(p), nil
}

func (r *PrincipalRepository) GetByEmail(ctx context.Context, email string) (*principal.Principal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	email = strings.TrimSpace(email)
	for _, p := range r.s.principals {
		if strings.EqualFold(p.Email, email) {
			return detach(p), nil
		}
	}
	return nil, notFound("user not found")
}

func (r *PrincipalRepository) UpdateProfile(ctx context.Context, id common.UUID, update principal.ProfileUpdate) (*principal.Principal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.principals[id]
	if !ok {
		return nil, notFound("user not found")
	}
	if r.emailTaken(update.Email, id) {
		return nil, common.NewError(common.CodeConflict, "email already registered", nil)
	}
	p.Name = update.Name
	p.Email = update.Email
	if update.Course != nil {
		p.Course = *update.Course
	}
	if update.Achievements != nil {
		p.Achievements = append([]string(nil), update.Achievements...)
	}
	p.UpdatedAt = r.s.tick()
	r.s.principals[id] = p
	return detach(p), nil
}

func (r *PrincipalRepository) ToggleBlocked(ctx context.Context, id common.UUID, roles []principal.Role) (*principal.Principal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.principals[id]
	if !ok || !hasRole(roles, p.Role) {
		return nil, notFound("user not found")
	}
	p.IsBlocked = !p.IsBlocked
	p.UpdatedAt = r.s.tick()
	r.s.principals[id] = p
	return detach(p), nil
}

// ListByRoles returns newest first, like the SQL listing.
func (r *PrincipalRepository) ListByRoles(ctx context.Context, roles []principal.Role) ([]principal.Principal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]principal.Principal, 0)
	for _, p := range r.s.principals {
		if hasRole(roles, p.Role) {
			out = append(out, *detach(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

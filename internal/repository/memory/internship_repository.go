package memory

import (
	"context"
	"sort"

	"campusintern/internal/common"
	"campusintern/internal/domain/internship"
)

type InternshipRepository struct {
	s *Store
}

// withCompany fills the joined company name. Callers hold the lock.
func (r *InternshipRepository) withCompany(item internship.Internship) internship.Internship {
	item.CompanyName = r.s.principals[item.CompanyID].Name
	return item
}

func (r *InternshipRepository) Create(ctx context.Context, item internship.Internship) (*internship.Internship, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.principals[item.CompanyID]; !ok {
		return nil, common.NewValidationError("company does not exist", map[string]string{"companyId": "unknown company"})
	}
	item.ID = common.NewUUID()
	item.PostedAt = r.s.tick()
	r.s.internships[item.ID] = item
	out := r.withCompany(item)
	return &out, nil
}

func (r *InternshipRepository) GetByID(ctx context.Context, id common.UUID) (*internship.Internship, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	item, ok := r.s.internships[id]
	if !ok {
		return nil, notFound("internship not found")
	}
	out := r.withCompany(item)
	return &out, nil
}

func (r *InternshipRepository) List(ctx context.Context, filter internship.Filter) ([]internship.Internship, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]internship.Internship, 0)
	for _, item := range r.s.internships {
		if !filter.CompanyID.IsZero() && item.CompanyID != filter.CompanyID {
			continue
		}
		if filter.Status != "" && item.Status != filter.Status {
			continue
		}
		out = append(out, r.withCompany(item))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PostedAt.After(out[j].PostedAt) })
	return out, nil
}

func (r *InternshipRepository) UpdateStatus(ctx context.Context, id common.UUID, status internship.Status) (*internship.Internship, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	item, ok := r.s.internships[id]
	if !ok {
		return nil, notFound("internship not found")
	}
	item.Status = status
	r.s.internships[id] = item
	out := r.withCompany(item)
	return &out, nil
}

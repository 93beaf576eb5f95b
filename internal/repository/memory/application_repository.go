package memory

import (
	"context"
	"sort"

	"campusintern/internal/common"
	"campusintern/internal/domain/application"
)

type ApplicationRepository struct {
	s *Store
}

func (r *ApplicationRepository) Create(ctx context.Context, app application.Application) (*application.Application, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.applications {
		if existing.StudentID == app.StudentID && existing.InternshipID == app.InternshipID {
			return nil, common.NewError(common.CodeConflict, "already applied to this internship", nil)
		}
	}
	app.ID = common.NewUUID()
	app.CreatedAt = r.s.tick()
	app.UpdatedAt = app.CreatedAt
	r.s.applications[app.ID] = app
	return &app, nil
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id common.UUID) (*application.Application, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	app, ok := r.s.applications[id]
	if !ok {
		return nil, notFound("application not found")
	}
	app.Status = application.Normalize(app.Status)
	return &app, nil
}

func (r *ApplicationRepository) GetDetail(ctx context.Context, id common.UUID) (*application.Detail, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	app, ok := r.s.applications[id]
	if !ok {
		return nil, notFound("application not found")
	}
	app.Status = application.Normalize(app.Status)
	student := r.s.principals[app.StudentID]
	return &application.Detail{
		Application:     app,
		StudentName:     student.Name,
		StudentEmail:    student.Email,
		InternshipTitle: r.s.internships[app.InternshipID].Title,
		CompanyName:     r.s.principals[app.CompanyID].Name,
	}, nil
}

// sorted returns normalized rows matching keep, newest first. Callers hold
// the read lock.
func (r *ApplicationRepository) sorted(keep func(application.Application) bool) []application.Application {
	out := make([]application.Application, 0)
	for _, app := range r.s.applications {
		if keep(app) {
			app.Status = application.Normalize(app.Status)
			out = append(out, app)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *ApplicationRepository) ListByStudent(ctx context.Context, studentID common.UUID) ([]application.StudentView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rows := r.sorted(func(app application.Application) bool { return app.StudentID == studentID })
	out := make([]application.StudentView, 0, len(rows))
	for _, app := range rows {
		out = append(out, application.StudentView{
			ID:              app.ID,
			InternshipID:    app.InternshipID,
			InternshipTitle: r.s.internships[app.InternshipID].Title,
			CompanyName:     r.s.principals[app.CompanyID].Name,
			Status:          app.Status,
			AppliedOn:       app.CreatedAt,
			CompanyNotes:    app.CompanyNotes,
			HasResume:       app.HasResume(),
		})
	}
	return out, nil
}

func (r *ApplicationRepository) companyView(app application.Application) application.CompanyView {
	student := r.s.principals[app.StudentID]
	item := r.s.internships[app.InternshipID]
	return application.CompanyView{
		ID:                 app.ID,
		InternshipID:       app.InternshipID,
		InternshipTitle:    item.Title,
		InternshipLocation: item.Location,
		StudentID:          app.StudentID,
		StudentName:        student.Name,
		StudentEmail:       student.Email,
		Status:             app.Status,
		CompanyNotes:       app.CompanyNotes,
		HasResume:          app.HasResume(),
		CreatedAt:          app.CreatedAt,
	}
}

func (r *ApplicationRepository) ListByCompany(ctx context.Context, companyID common.UUID, limit int) ([]application.CompanyView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rows := r.sorted(func(app application.Application) bool { return app.CompanyID == companyID })
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	out := make([]application.CompanyView, 0, len(rows))
	for _, app := range rows {
		out = append(out, r.companyView(app))
	}
	return out, nil
}

func (r *ApplicationRepository) ListByInternship(ctx context.Context, internshipID common.UUID) ([]application.CompanyView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rows := r.sorted(func(app application.Application) bool { return app.InternshipID == internshipID })
	out := make([]application.CompanyView, 0, len(rows))
	for _, app := range rows {
		out = append(out, r.companyView(app))
	}
	return out, nil
}

func (r *ApplicationRepository) ListAll(ctx context.Context) ([]application.AdminView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rows := r.sorted(func(application.Application) bool { return true })
	out := make([]application.AdminView, 0, len(rows))
	for _, app := range rows {
		out = append(out, application.AdminView{
			ID:              app.ID,
			StudentName:     r.s.principals[app.StudentID].Name,
			InternshipTitle: r.s.internships[app.InternshipID].Title,
			CompanyName:     r.s.principals[app.CompanyID].Name,
			Status:          app.Status,
			HasResume:       app.HasResume(),
			CreatedAt:       app.CreatedAt,
		})
	}
	return out, nil
}

func (r *ApplicationRepository) UpdateDecision(ctx context.Context, id common.UUID, expected, status application.Status, notes string) (*application.Application, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	app, ok := r.s.applications[id]
	if !ok || application.Normalize(app.Status) != application.Normalize(expected) {
		return nil, false, nil
	}
	app.Status = status
	app.CompanyNotes = notes
	app.UpdatedAt = r.s.tick()
	r.s.applications[id] = app
	return &app, true, nil
}

func (r *ApplicationRepository) DeleteWithdrawable(ctx context.Context, id, studentID common.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	app, ok := r.s.applications[id]
	if !ok || app.StudentID != studentID || !application.IsPreDecision(app.Status) {
		return false, nil
	}
	delete(r.s.applications, id)
	return true, nil
}

func (r *ApplicationRepository) SetResumePath(ctx context.Context, id, studentID common.UUID, path string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.resumeErr != nil {
		return r.s.resumeErr
	}
	app, ok := r.s.applications[id]
	if !ok || app.StudentID != studentID {
		return notFound("application not found")
	}
	app.ResumePath = path
	app.UpdatedAt = r.s.tick()
	r.s.applications[id] = app
	return nil
}

func (r *ApplicationRepository) NormalizeLegacyStatuses(ctx context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, app := range r.s.applications {
		if app.Status == application.StatusApplied {
			app.Status = application.StatusPending
			r.s.applications[id] = app
			n++
		}
	}
	return n, nil
}

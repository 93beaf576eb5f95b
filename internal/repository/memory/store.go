// Package memory keeps every repository in process memory behind one lock.
// It backs local runs without PostgreSQL and the service and transport tests,
// and mirrors the database constraints the services rely on: one email per
// directory, one application per (student, internship) pair and
// compare-and-set status writes.
package memory

import (
	"sync"
	"time"

	"campusintern/internal/common"
	"campusintern/internal/domain/announcement"
	"campusintern/internal/domain/application"
	"campusintern/internal/domain/internship"
	"campusintern/internal/domain/principal"
)

type Store struct {
	mu            sync.RWMutex
	principals    map[common.UUID]principal.Principal
	internships   map[common.UUID]internship.Internship
	applications  map[common.UUID]application.Application
	announcements []announcement.Announcement
	last          time.Time
	resumeErr     error
}

func NewStore() *Store {
	return &Store{
		principals:   make(map[common.UUID]principal.Principal),
		internships:  make(map[common.UUID]internship.Internship),
		applications: make(map[common.UUID]application.Application),
	}
}

// tick returns a strictly increasing timestamp so newest-first ordering is
// stable even within one clock tick. Callers hold the write lock.
func (s *Store) tick() time.Time {
	now := time.Now().UTC()
	if !now.After(s.last) {
		now = s.last.Add(time.Microsecond)
	}
	s.last = now
	return now
}

func (s *Store) Principals() *PrincipalRepository {
	return &PrincipalRepository{s: s}
}

func (s *Store) Internships() *InternshipRepository {
	return &InternshipRepository{s: s}
}

func (s *Store) Applications() *ApplicationRepository {
	return &ApplicationRepository{s: s}
}

func (s *Store) Announcements() *AnnouncementRepository {
	return &AnnouncementRepository{s: s}
}

func (s *Store) Reports() *ReportRepository {
	return &ReportRepository{s: s}
}

// FailResumeWrites makes SetResumePath return err until called with nil.
func (s *Store) FailResumeWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resumeErr = err
}

// ForceApplicationStatus writes a raw stored status without any lifecycle
// check, the way a legacy row or a manual fix would look.
func (s *Store) ForceApplicationStatus(id common.UUID, status application.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if app, ok := s.applications[id]; ok {
		app.Status = status
		s.applications[id] = app
	}
}

func (s *Store) ApplicationCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.applications)
}

func hasRole(roles []principal.Role, role principal.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

func notFound(message string) error {
	return common.NewError(common.CodeNotFound, message, nil)
}

package app

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"campusintern/internal/common"
	"campusintern/internal/domain/internship"
	"campusintern/internal/domain/principal"
	"campusintern/internal/policy"
	"campusintern/internal/repository/memory"
	"campusintern/internal/security"
	"campusintern/internal/storage"
)

type nopLogger struct{}

func (nopLogger) Info(string)  {}
func (nopLogger) Error(string) {}

type failingBlobStore struct {
	*storage.MemoryStore
	putErr error
}

func (s *failingBlobStore) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	if s.putErr != nil {
		return s.putErr
	}
	return s.MemoryStore.Put(ctx, key, body, size, contentType)
}

type testEnv struct {
	store         *memory.Store
	applications  *memory.ApplicationRepository
	blobs         *failingBlobStore
	jwt           *security.JWTProvider
	auth          *AuthService
	users         *UserService
	postings      *InternshipService
	ledger        *ApplicationService
	announcements *AnnouncementService
	reports       *ReportService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.NewStore()
	env := &testEnv{
		store:        store,
		applications: store.Applications(),
		blobs:        &failingBlobStore{MemoryStore: storage.NewMemoryStore()},
		jwt:          security.NewJWTProvider("test-secret", time.Hour),
	}
	env.auth = NewAuthService(store.Principals(), security.NewBcryptHasher(bcrypt.MinCost), env.jwt, nopLogger{})
	env.users = NewUserService(store.Principals(), env.auth, nopLogger{})
	env.postings = NewInternshipService(store.Internships(), nopLogger{})
	env.ledger = NewApplicationService(env.applications, store.Internships(), env.blobs, nopLogger{}, 1<<20)
	env.announcements = NewAnnouncementService(store.Announcements())
	env.reports = NewReportService(store.Reports(), env.applications, store.Principals())
	return env
}

func actorOf(p *principal.Principal) policy.Actor {
	return policy.Actor{ID: p.ID, Role: p.Role, Blocked: p.IsBlocked}
}

func (e *testEnv) student(t *testing.T, name string) policy.Actor {
	t.Helper()
	p, err := e.auth.RegisterStudent(context.Background(), RegisterInput{Name: name, Email: strings.ToLower(name) + "@campus.edu", Password: "secret1"})
	if err != nil {
		t.Fatalf("register student: %v", err)
	}
	return actorOf(p)
}

func (e *testEnv) company(t *testing.T, name string) policy.Actor {
	t.Helper()
	p, err := e.auth.RegisterCompany(context.Background(), RegisterInput{Name: name, Email: strings.ToLower(name) + "@corp.io", Password: "secret1"})
	if err != nil {
		t.Fatalf("register company: %v", err)
	}
	return actorOf(p)
}

func (e *testEnv) admin(t *testing.T) policy.Actor {
	t.Helper()
	p, err := e.auth.CreateAdmin(context.Background(), RegisterInput{Name: "Root", Email: common.NewUUID().String() + "@admin.io", Password: "secret1"})
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}
	return actorOf(p)
}

// approvedInternship posts an internship for company and approves it.
func (e *testEnv) approvedInternship(t *testing.T, company policy.Actor, title string) *internship.Internship {
	t.Helper()
	ctx := context.Background()
	item, err := e.postings.Create(ctx, company, InternshipInput{Title: title, Location: "Remote"})
	if err != nil {
		t.Fatalf("post internship: %v", err)
	}
	approved, err := e.postings.Moderate(ctx, e.admin(t), item.ID, "Approved")
	if err != nil {
		t.Fatalf("approve internship: %v", err)
	}
	return approved
}

var errStoreDown = errors.New("store down")

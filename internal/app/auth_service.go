package app

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"campusintern/internal/common"
	"campusintern/internal/domain/principal"
	"campusintern/internal/policy"
	"campusintern/internal/security"
)

type Logger interface {
	Info(msg string)
	Error(msg string)
}

const minPasswordLength = 6

// AuthService owns registration, login and token resolution.
type AuthService struct {
	principals principal.Repository
	hasher     security.PasswordHasher
	jwt        *security.JWTProvider
	logger     Logger
}

func NewAuthService(principals principal.Repository, hasher security.PasswordHasher, jwt *security.JWTProvider, logger Logger) *AuthService {
	return &AuthService{principals: principals, hasher: hasher, jwt: jwt, logger: logger}
}

type RegisterInput struct {
	Name         string
	Email        string
	Password     string
	Course       string
	Achievements []string
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      principal.Principal
}

func (s *AuthService) RegisterStudent(ctx context.Context, in RegisterInput) (*principal.Principal, error) {
	return s.register(ctx, principal.RoleStudent, in)
}

func (s *AuthService) RegisterCompany(ctx context.Context, in RegisterInput) (*principal.Principal, error) {
	in.Course = ""
	in.Achievements = nil
	return s.register(ctx, principal.RoleCompany, in)
}

// CreateAdmin is the bootstrap path used by the operator CLI. Admins created
// over HTTP go through UserService.AddAdmin, which authorizes first.
func (s *AuthService) CreateAdmin(ctx context.Context, in RegisterInput) (*principal.Principal, error) {
	in.Course = ""
	in.Achievements = nil
	return s.register(ctx, principal.RoleAdmin, in)
}

func (s *AuthService) register(ctx context.Context, role principal.Role, in RegisterInput) (*principal.Principal, error) {
	name := strings.TrimSpace(in.Name)
	email, fields := validateIdentity(name, in.Email)
	if len(in.Password) < minPasswordLength {
		fields["password"] = "password must be at least 6 characters"
	}
	if len(fields) > 0 {
		return nil, common.NewValidationError("invalid registration", fields)
	}
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to hash password", err)
	}
	created, err := s.principals.Create(ctx, principal.Principal{
		Role:         role,
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Course:       strings.TrimSpace(in.Course),
		Achievements: cleanList(in.Achievements),
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("principal registered role=" + string(role) + " id=" + created.ID.String())
	return created, nil
}

// Login checks credentials across every role. Blocked principals still get
// a token so clients can show the block notice; mutations are refused later.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	account, err := s.principals.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if common.Is(err, common.CodeNotFound) {
			return nil, common.NewError(common.CodeUnauthorized, "invalid credentials", nil)
		}
		return nil, err
	}
	if !s.hasher.Compare(account.PasswordHash, password) {
		return nil, common.NewError(common.CodeUnauthorized, "invalid credentials", nil)
	}
	token, expiresAt, err := s.jwt.Generate(account.ID, account.Role)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to issue token", err)
	}
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: *account}, nil
}

// ResolveToken turns a bearer token into an Actor using the directory as the
// source of truth for role and block state.
func (s *AuthService) ResolveToken(ctx context.Context, token string) (policy.Actor, error) {
	claims, err := s.jwt.Parse(token)
	if err != nil {
		return policy.Actor{}, common.NewForbidden("invalid_token", "invalid or expired token")
	}
	id, err := common.ParseUUID(claims.ID)
	if err != nil {
		return policy.Actor{}, common.NewForbidden("invalid_token", "invalid or expired token")
	}
	account, err := s.principals.GetByID(ctx, id)
	if err != nil {
		if common.Is(err, common.CodeNotFound) {
			return policy.Actor{}, common.NewError(common.CodeUnauthorized, "user no longer exists", nil)
		}
		return policy.Actor{}, err
	}
	if string(account.Role) != claims.Role {
		return policy.Actor{}, common.NewError(common.CodeUnauthorized, "token role is stale", nil)
	}
	return policy.Actor{ID: account.ID, Role: account.Role, Blocked: account.IsBlocked}, nil
}

func (s *AuthService) Profile(ctx context.Context, actor policy.Actor) (*principal.Principal, error) {
	return s.principals.GetByID(ctx, actor.ID)
}

func validateIdentity(name, rawEmail string) (string, map[string]string) {
	fields := map[string]string{}
	if name == "" {
		fields["name"] = "name is required"
	}
	email := normalizeEmail(rawEmail)
	if email == "" {
		fields["email"] = "email is required"
	} else if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		fields["email"] = "email is invalid"
	}
	return email, fields
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

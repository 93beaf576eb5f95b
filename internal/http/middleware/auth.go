package middleware

import (
	"context"
	"net/http"
	"strings"

	"campusintern/internal/common"
	"campusintern/internal/domain/principal"
	"campusintern/internal/http/response"
	"campusintern/internal/policy"
)

type contextKey string

const (
	ContextActorKey     contextKey = "actor"
	ContextRequestIDKey contextKey = "request_id"
)

// TokenResolver turns a bearer token into the current actor. It must consult
// the directory so role and block changes apply to existing tokens.
type TokenResolver interface {
	ResolveToken(ctx context.Context, token string) (policy.Actor, error)
}

type AuthMiddleware struct {
	resolver TokenResolver
}

func NewAuthMiddleware(resolver TokenResolver) *AuthMiddleware {
	return &AuthMiddleware{resolver: resolver}
}

func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
		if authHeader == "" {
			response.Error(w, common.NewError(common.CodeUnauthorized, "missing authorization header", nil))
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
			response.Error(w, common.NewError(common.CodeUnauthorized, "invalid authorization header", nil))
			return
		}
		actor, err := m.resolver.ResolveToken(r.Context(), strings.TrimSpace(parts[1]))
		if err != nil {
			response.Error(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
	})
}

// RequireRole is a coarse gate for whole route groups. Services still run the
// full policy check.
func RequireRole(roles ...principal.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				response.Error(w, common.NewError(common.CodeUnauthorized, "not authenticated", nil))
				return
			}
			for _, role := range roles {
				if actor.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			response.Error(w, common.NewForbidden(string(policy.ReasonWrongRole), "insufficient role"))
		})
	}
}

func WithActor(ctx context.Context, actor policy.Actor) context.Context {
	return context.WithValue(ctx, ContextActorKey, actor)
}

func ActorFromContext(ctx context.Context) (policy.Actor, bool) {
	actor, ok := ctx.Value(ContextActorKey).(policy.Actor)
	return actor, ok
}

package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"campusintern/internal/common"
	"campusintern/internal/http/middleware"
	"campusintern/internal/http/response"
	"campusintern/internal/policy"
)

const maxJSONBytes = 1 << 20

func errUnauthorized() error {
	return common.NewError(common.CodeUnauthorized, "not authenticated", nil)
}

// actorOrFail writes a 401 when the auth middleware did not run.
func actorOrFail(w http.ResponseWriter, r *http.Request) (policy.Actor, bool) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return policy.Actor{}, false
	}
	return actor, true
}

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxJSONBytes))
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return common.NewValidationError("request body is required", nil)
		}
		return common.NewValidationError("invalid JSON body", nil)
	}
	return nil
}

// pathID parses the {id} route variable.
func pathID(r *http.Request) (common.UUID, error) {
	raw := strings.TrimSpace(mux.Vars(r)["id"])
	if raw == "" {
		return "", common.NewValidationError("id is required", map[string]string{"id": "missing"})
	}
	id, err := common.ParseUUID(raw)
	if err != nil {
		return "", common.NewValidationError("invalid id", map[string]string{"id": "invalid uuid"})
	}
	return id, nil
}

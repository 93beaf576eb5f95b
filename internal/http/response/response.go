package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/rs/zerolog"

	"campusintern/internal/common"
)

type errorBody struct {
	Message string            `json:"message"`
	Code    common.Code       `json:"code"`
	Reason  string            `json:"reason,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

var logger atomic.Pointer[zerolog.Logger]

// SetLogger installs the logger used for internal failures. Without one,
// failures are dropped.
func SetLogger(l *zerolog.Logger) {
	logger.Store(l)
}

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Error writes the client-facing part of err. Causes of internal and storage
// failures are logged and replaced with a generic message.
func Error(w http.ResponseWriter, err error) {
	var appErr *common.Error
	if !errors.As(err, &appErr) {
		appErr = common.NewError(common.CodeInternal, "internal error", err)
	}
	status := StatusFor(appErr.Code)
	body := errorBody{Message: appErr.Message, Code: appErr.Code, Reason: appErr.Reason, Fields: appErr.Fields}
	if status >= http.StatusInternalServerError {
		if l := logger.Load(); l != nil {
			l.Error().Err(err).Str("code", string(appErr.Code)).Msg(appErr.Message)
		}
		body = errorBody{Message: "internal error", Code: appErr.Code}
	}
	JSON(w, status, body)
}

func StatusFor(code common.Code) int {
	switch code {
	case common.CodeValidation:
		return http.StatusBadRequest
	case common.CodeUnauthorized:
		return http.StatusUnauthorized
	case common.CodeForbidden:
		return http.StatusForbidden
	case common.CodeNotFound:
		return http.StatusNotFound
	case common.CodeConflict:
		return http.StatusConflict
	case common.CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

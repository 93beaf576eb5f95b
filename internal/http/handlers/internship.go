package handlers

import (
	"net/http"
	"strings"
	"time"

	"campusintern/internal/app"
	"campusintern/internal/common"
	"campusintern/internal/http/response"
)

type InternshipHandler struct {
	internships  *app.InternshipService
	applications *app.ApplicationService
}

func NewInternshipHandler(internships *app.InternshipService, applications *app.ApplicationService) *InternshipHandler {
	return &InternshipHandler{internships: internships, applications: applications}
}

type internshipRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Location    string  `json:"location"`
	Stipend     float64 `json:"stipend"`
	Deadline    *string `json:"deadline"`
}

type internshipStatusRequest struct {
	Status string `json:"status"`
}

// Create ignores any status in the body; postings always start Pending.
func (h *InternshipHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}
	var req internshipRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	deadline, err := parseDeadline(req.Deadline)
	if err != nil {
		response.Error(w, err)
		return
	}
	created, err := h.internships.Create(r.Context(), actor, app.InternshipInput{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Stipend:     req.Stipend,
		Deadline:    deadline,
	})
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, created)
}

func (h *InternshipHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}
	items, err := h.internships.List(r.Context(), actor)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, items)
}

func (h *InternshipHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	item, err := h.internships.Get(r.Context(), actor, id)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, item)
}

func (h *InternshipHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req internshipStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	updated, err := h.internships.Moderate(r.Context(), actor, id, req.Status)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, updated)
}

func (h *InternshipHandler) Applications(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	items, err := h.applications.ListForInternship(r.Context(), actor, id)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, items)
}

// parseDeadline takes the plain date a date picker sends or a full RFC 3339
// timestamp. Dates are midnight UTC.
func parseDeadline(raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	value := strings.TrimSpace(*raw)
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if parsed, err := time.Parse(layout, value); err == nil {
			parsed = parsed.UTC()
			return &parsed, nil
		}
	}
	return nil, common.NewValidationError("invalid internship", map[string]string{"deadline": "use YYYY-MM-DD or an RFC 3339 timestamp"})
}

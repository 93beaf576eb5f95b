package handlers

import (
	"net/http"

	"campusintern/internal/app"
	"campusintern/internal/http/response"
)

// AdminHandler serves the /admin routes and the student dashboard, which
// share the reporting service.
type AdminHandler struct {
	users   *app.UserService
	reports *app.ReportService
}

func NewAdminHandler(users *app.UserService, reports *app.ReportService) *AdminHandler {
	return &AdminHandler{users: users, reports: reports}
}

func (h *AdminHandler) DashboardCounts(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}
	counts, err := h.reports.DashboardCounts(r.Context(), actor)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, counts)
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}
	users, err := h.users.ListUsers(r.Context(), actor)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, users)
}

func (h *AdminHandler) ToggleBlock(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	updated, err := h.users.ToggleBlock(r.Context(), actor, id)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, updated)
}

func (h *AdminHandler) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	created, err := h.users.AddAdmin(r.Context(), actor, req.input())
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, created)
}

func (h *AdminHandler) CompanyOffers(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}
	offers, err := h.reports.CompanyOffers(r.Context(), actor)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, offers)
}

func (h *AdminHandler) ApplicationsTrend(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}
	trend, err := h.reports.ApplicationsTrend(r.Context(), actor)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, trend)
}

func (h *AdminHandler) StudentStats(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}
	stats, err := h.reports.StudentStats(r.Context(), actor)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, stats)
}

package handlers

import (
	"net/http"

	"campusintern/internal/app"
	"campusintern/internal/http/response"
)

type AnnouncementHandler struct {
	announcements *app.AnnouncementService
}

func NewAnnouncementHandler(announcements *app.AnnouncementService) *AnnouncementHandler {
	return &AnnouncementHandler{announcements: announcements}
}

type announcementRequest struct {
	Message string `json:"message"`
}

func (h *AnnouncementHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}
	var req announcementRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	created, err := h.announcements.Create(r.Context(), actor, req.Message)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, created)
}

func (h *AnnouncementHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}
	items, err := h.announcements.List(r.Context(), actor)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, items)
}

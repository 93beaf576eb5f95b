package handlers

import (
	"net/http"
	"time"

	"campusintern/internal/app"
	"campusintern/internal/common"
	"campusintern/internal/domain/principal"
	"campusintern/internal/http/response"
)

type AuthHandler struct {
	auth  *app.AuthService
	users *app.UserService
}

func NewAuthHandler(auth *app.AuthService, users *app.UserService) *AuthHandler {
	return &AuthHandler{auth: auth, users: users}
}

type registerRequest struct {
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	Password     string   `json:"password"`
	Course       string   `json:"course"`
	Achievements []string `json:"achievements"`
}

func (req registerRequest) input() app.RegisterInput {
	return app.RegisterInput{Name: req.Name, Email: req.Email, Password: req.Password, Course: req.Course, Achievements: req.Achievements}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userSummary struct {
	ID        common.UUID    `json:"id"`
	Email     string         `json:"email"`
	Role      principal.Role `json:"role"`
	Name      string         `json:"name"`
	IsBlocked bool           `json:"isBlocked"`
}

type loginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      userSummary `json:"user"`
}

type profileRequest struct {
	Name         *string  `json:"name"`
	Email        *string  `json:"email"`
	Course       *string  `json:"course"`
	Achievements []string `json:"achievements"`
}

func (h *AuthHandler) RegisterStudent(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	created, err := h.auth.RegisterStudent(r.Context(), req.input())
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, created)
}

func (h *AuthHandler) RegisterCompany(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	created, err := h.auth.RegisterCompany(r.Context(), req.input())
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, created)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	result, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, loginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		User: userSummary{
			ID:        result.User.ID,
			Email:     result.User.Email,
			Role:      result.User.Role,
			Name:      result.User.Name,
			IsBlocked: result.User.IsBlocked,
		},
	})
}

func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}
	profile, err := h.auth.Profile(r.Context(), actor)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, profile)
}

func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}
	var req profileRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	updated, err := h.users.UpdateProfile(r.Context(), actor, app.ProfileInput{
		Name:         req.Name,
		Email:        req.Email,
		Course:       req.Course,
		Achievements: req.Achievements,
	})
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, updated)
}

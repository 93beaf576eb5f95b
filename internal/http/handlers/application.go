package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"campusintern/internal/app"
	"campusintern/internal/common"
	"campusintern/internal/domain/principal"
	"campusintern/internal/http/metrics"
	"campusintern/internal/http/middleware"
	"campusintern/internal/http/response"
)

const (
	resumeField     = "resume"
	multipartMemory = 1 << 20
	applyWindow     = time.Hour
)

type ApplicationHandler struct {
	applications *app.ApplicationService
	limiter      middleware.Limiter
	applyLimit   int
	metrics      *metrics.Collector
}

func NewApplicationHandler(applications *app.ApplicationService, limiter middleware.Limiter, applyLimit int, collector *metrics.Collector) *ApplicationHandler {
	return &ApplicationHandler{applications: applications, limiter: limiter, applyLimit: applyLimit, metrics: collector}
}

type updateApplicationRequest struct {
	Status       *string `json:"status"`
	CompanyNotes *string `json:"companyNotes"`
}

func (h *ApplicationHandler) Apply(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}
	internshipID, err := pathID(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	if h.limiter != nil && h.applyLimit > 0 {
		if !h.limiter.Allow("apply:"+actor.ID.String(), h.applyLimit, applyWindow) {
			response.Error(w, common.NewError(common.CodeRateLimited, "apply rate limit exceeded", nil))
			return
		}
	}
	created, err := h.applications.Apply(r.Context(), actor, internshipID)
	if err != nil {
		response.Error(w, err)
		return
	}
	h.metrics.Event("application_created")
	response.JSON(w, http.StatusCreated, created)
}

// List returns the projection that matches the caller's role.
func (h *ApplicationHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}
	var (
		items any
		err   error
	)
	switch actor.Role {
	case principal.RoleStudent:
		items, err = h.applications.ListForStudent(r.Context(), actor)
	case principal.RoleCompany:
		items, err = h.applications.ListForCompany(r.Context(), actor)
	default:
		items, err = h.applications.ListAll(r.Context(), actor)
	}
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, items)
}

func (h *ApplicationHandler) Recent(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}
	items, err := h.applications.Recent(r.Context(), actor)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, items)
}

func (h *ApplicationHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	detail, err := h.applications.Get(r.Context(), actor, id)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, detail)
}

func (h *ApplicationHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req updateApplicationRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	if req.Status == nil && req.CompanyNotes == nil {
		response.Error(w, common.NewValidationError("nothing to update", map[string]string{"status": "status or companyNotes is required"}))
		return
	}
	updated, err := h.applications.Decide(r.Context(), actor, id, app.DecisionInput{Status: req.Status, Notes: req.CompanyNotes})
	if err != nil {
		response.Error(w, err)
		return
	}
	h.metrics.Event("application_updated")
	response.JSON(w, http.StatusOK, updated)
}

func (h *ApplicationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	if err := h.applications.Withdraw(r.Context(), actor, id); err != nil {
		response.Error(w, err)
		return
	}
	h.metrics.Event("application_withdrawn")
	response.NoContent(w)
}

func (h *ApplicationHandler) UploadResume(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(w, common.NewValidationError("resume file is too large", map[string]string{resumeField: "file is too large"}))
			return
		}
		response.Error(w, common.NewValidationError("invalid multipart body", map[string]string{resumeField: "multipart form expected"}))
		return
	}
	defer r.MultipartForm.RemoveAll()
	file, header, err := r.FormFile(resumeField)
	if err != nil {
		response.Error(w, common.NewValidationError("resume file is required", map[string]string{resumeField: "file is required"}))
		return
	}
	defer file.Close()
	updated, err := h.applications.UploadResume(r.Context(), actor, id, app.ResumeUpload{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		response.Error(w, err)
		return
	}
	h.metrics.Event("resume_uploaded")
	response.JSON(w, http.StatusOK, updated)
}

// DownloadResume streams the stored file through the API; the blob store is
// never exposed to clients.
func (h *ApplicationHandler) DownloadResume(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	obj, err := h.applications.GetResume(r.Context(), actor, id)
	if err != nil {
		response.Error(w, err)
		return
	}
	defer obj.Body.Close()
	contentType := obj.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	if obj.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	}
	w.Header().Set("Content-Disposition", `attachment; filename="resume`+extensionFor(contentType)+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, obj.Body)
}

func extensionFor(contentType string) string {
	switch contentType {
	case "application/pdf":
		return ".pdf"
	case "application/msword":
		return ".doc"
	case "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return ".docx"
	case "application/zip":
		return ".zip"
	case "text/plain":
		return ".txt"
	default:
		return ""
	}
}

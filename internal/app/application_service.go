package app

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"

	"campusintern/internal/common"
	"campusintern/internal/domain/application"
	"campusintern/internal/domain/internship"
	"campusintern/internal/domain/principal"
	"campusintern/internal/policy"
	"campusintern/internal/storage"
)

const recentApplicationsLimit = 5

type ApplicationService struct {
	repo           application.Repository
	internships    internship.Repository
	blobs          storage.BlobStore
	logger         Logger
	maxResumeBytes int64
}

func NewApplicationService(repo application.Repository, internships internship.Repository, blobs storage.BlobStore, logger Logger, maxResumeBytes int64) *ApplicationService {
	return &ApplicationService{repo: repo, internships: internships, blobs: blobs, logger: logger, maxResumeBytes: maxResumeBytes}
}

// Apply creates a Pending application for an Approved internship. A second
// apply for the same pair fails with a conflict from the store.
func (s *ApplicationService) Apply(ctx context.Context, actor policy.Actor, internshipID common.UUID) (*application.Application, error) {
	if err := policy.Authorize(actor, policy.ActionApply).Err(); err != nil {
		return nil, err
	}
	item, err := s.internships.GetByID(ctx, internshipID)
	if err != nil {
		if common.Is(err, common.CodeNotFound) {
			return nil, common.NewValidationError("internship does not exist", map[string]string{"internshipId": "unknown internship"})
		}
		return nil, err
	}
	if item.Status != internship.StatusApproved {
		return nil, common.NewValidationError("internship is not open for applications", map[string]string{"internshipId": "internship is not approved"})
	}
	created, err := s.repo.Create(ctx, application.Application{
		StudentID:    actor.ID,
		InternshipID: item.ID,
		CompanyID:    item.CompanyID,
		Status:       application.StatusPending,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("application created id=" + created.ID.String() + " internship=" + item.ID.String())
	return created, nil
}

func (s *ApplicationService) ListForStudent(ctx context.Context, actor policy.Actor) ([]application.StudentView, error) {
	if err := policy.Authorize(actor, policy.ActionListStudentApplications).Err(); err != nil {
		return nil, err
	}
	return s.repo.ListByStudent(ctx, actor.ID)
}

func (s *ApplicationService) ListForCompany(ctx context.Context, actor policy.Actor) ([]application.CompanyView, error) {
	if err := policy.Authorize(actor, policy.ActionListCompanyApplications).Err(); err != nil {
		return nil, err
	}
	return s.repo.ListByCompany(ctx, actor.ID, 0)
}

func (s *ApplicationService) ListAll(ctx context.Context, actor policy.Actor) ([]application.AdminView, error) {
	if err := policy.Authorize(actor, policy.ActionListAllApplications).Err(); err != nil {
		return nil, err
	}
	return s.repo.ListAll(ctx)
}

func (s *ApplicationService) Recent(ctx context.Context, actor policy.Actor) ([]application.CompanyView, error) {
	if err := policy.Authorize(actor, policy.ActionRecentApplications).Err(); err != nil {
		return nil, err
	}
	return s.repo.ListByCompany(ctx, actor.ID, recentApplicationsLimit)
}

// ListForInternship returns applicants of one posting to its owner or an admin.
func (s *ApplicationService) ListForInternship(ctx context.Context, actor policy.Actor, internshipID common.UUID) ([]application.CompanyView, error) {
	if err := policy.Authorize(actor, policy.ActionInternshipApplicants).Err(); err != nil {
		return nil, err
	}
	item, err := s.internships.GetByID(ctx, internshipID)
	if err != nil {
		return nil, err
	}
	if err := policy.AuthorizeInternship(actor, policy.ActionInternshipApplicants, *item).Err(); err != nil {
		return nil, err
	}
	return s.repo.ListByInternship(ctx, internshipID)
}

func (s *ApplicationService) Get(ctx context.Context, actor policy.Actor, id common.UUID) (*application.Detail, error) {
	if _, err := s.load(ctx, actor, policy.ActionViewApplication, id); err != nil {
		return nil, err
	}
	return s.repo.GetDetail(ctx, id)
}

type DecisionInput struct {
	Status *string
	Notes  *string
}

// Decide applies a status change and/or notes. Companies follow the
// lifecycle table; admins may set any recognized status. The write is a
// compare-and-set on the status observed here.
func (s *ApplicationService) Decide(ctx context.Context, actor policy.Actor, id common.UUID, in DecisionInput) (*application.Application, error) {
	if err := policy.Authorize(actor, policy.ActionDecideApplication).Err(); err != nil {
		return nil, err
	}
	current, err := s.load(ctx, actor, policy.ActionDecideApplication, id)
	if err != nil {
		return nil, err
	}
	target := current.Status
	if in.Status != nil {
		parsed, ok := application.ParseStatus(*in.Status)
		if !ok {
			return nil, common.NewValidationError("invalid status", map[string]string{"status": "status must be Pending, Shortlisted, Selected or Rejected"})
		}
		target = parsed
	}
	notes := current.CompanyNotes
	if in.Notes != nil {
		notes = *in.Notes
	}
	if actor.Role != principal.RoleAdmin && !application.CanTransition(current.Status, target) {
		return nil, common.NewValidationError("invalid status transition", map[string]string{
			"status": "cannot move from " + string(current.Status) + " to " + string(target),
		})
	}
	updated, ok, err := s.repo.UpdateDecision(ctx, id, current.Status, target, notes)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, common.NewError(common.CodeConflict, "application was modified concurrently, reload and retry", nil)
	}
	if target != current.Status {
		s.logger.Info("application status changed id=" + id.String() + " from=" + string(current.Status) + " to=" + string(target) + " by=" + actor.ID.String())
	}
	return updated, nil
}

// Withdraw deletes a student's own application while it is still Pending.
func (s *ApplicationService) Withdraw(ctx context.Context, actor policy.Actor, id common.UUID) error {
	if err := policy.Authorize(actor, policy.ActionWithdrawApplication).Err(); err != nil {
		return err
	}
	current, err := s.load(ctx, actor, policy.ActionWithdrawApplication, id)
	if err != nil {
		return err
	}
	deleted, err := s.repo.DeleteWithdrawable(ctx, id, actor.ID)
	if err != nil {
		return err
	}
	if !deleted {
		return common.NewError(common.CodeConflict, "application was modified concurrently, reload and retry", nil)
	}
	if current.HasResume() {
		s.discardBlob(ctx, current.ResumePath)
	}
	s.logger.Info("application withdrawn id=" + id.String())
	return nil
}

type ResumeUpload struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

const docxType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

var allowedResumeTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	docxType:             true,
	"application/zip":    true,
	"text/plain":         true,
}

var (
	pdfMagic = []byte("%PDF-")
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
	zipMagic = []byte("PK\x03\x04")
)

// UploadResume stores the blob first and then the reference. If the
// reference cannot be saved the new blob is removed again.
func (s *ApplicationService) UploadResume(ctx context.Context, actor policy.Actor, id common.UUID, upload ResumeUpload) (*application.Application, error) {
	if err := policy.Authorize(actor, policy.ActionUploadResume).Err(); err != nil {
		return nil, err
	}
	current, err := s.load(ctx, actor, policy.ActionUploadResume, id)
	if err != nil {
		return nil, err
	}
	if upload.Body == nil || upload.Size <= 0 {
		return nil, common.NewValidationError("resume file is required", map[string]string{"resume": "file is empty"})
	}
	if s.maxResumeBytes > 0 && upload.Size > s.maxResumeBytes {
		return nil, common.NewValidationError("resume file is too large", map[string]string{"resume": "file exceeds " + strconv.FormatInt(s.maxResumeBytes, 10) + " bytes"})
	}
	contentType, body, err := sniffContentType(upload)
	if err != nil {
		return nil, common.NewValidationError("resume file is unreadable", map[string]string{"resume": "failed to read file"})
	}
	if !allowedResumeTypes[contentType] {
		return nil, common.NewValidationError("unsupported resume type", map[string]string{"resume": "upload a PDF, Word or plain text file"})
	}

	key := storage.ResumeKey(id, upload.FileName)
	if err := s.blobs.Put(ctx, key, body, upload.Size, contentType); err != nil {
		return nil, err
	}
	if err := s.repo.SetResumePath(ctx, id, actor.ID, key); err != nil {
		s.discardBlob(ctx, key)
		return nil, err
	}
	if current.HasResume() && current.ResumePath != key {
		s.discardBlob(ctx, current.ResumePath)
	}
	current.ResumePath = key
	s.logger.Info("resume uploaded application=" + id.String())
	return current, nil
}

// GetResume streams the stored file to the applying student, the owning
// company or an admin.
func (s *ApplicationService) GetResume(ctx context.Context, actor policy.Actor, id common.UUID) (*storage.Object, error) {
	current, err := s.load(ctx, actor, policy.ActionReadResume, id)
	if err != nil {
		return nil, err
	}
	if !current.HasResume() {
		return nil, common.NewError(common.CodeNotFound, "no resume uploaded", nil)
	}
	return s.blobs.Get(ctx, current.ResumePath)
}

func (s *ApplicationService) load(ctx context.Context, actor policy.Actor, action policy.Action, id common.UUID) (*application.Application, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.AuthorizeApplication(actor, action, *current).Err(); err != nil {
		return nil, err
	}
	return current, nil
}

func (s *ApplicationService) discardBlob(ctx context.Context, key string) {
	if err := s.blobs.Delete(ctx, key); err != nil {
		s.logger.Error("failed to delete resume blob key=" + key + ": " + err.Error())
	}
}

// sniffContentType reads the first 512 bytes and types the file from them.
// The declared type only narrows a zip archive down to a Word document.
func sniffContentType(upload ResumeUpload) (string, io.Reader, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(upload.Body, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", nil, err
	}
	head = head[:n]
	declared := strings.ToLower(strings.TrimSpace(strings.Split(upload.ContentType, ";")[0]))
	return detectResumeType(head, declared), io.MultiReader(bytes.NewReader(head), upload.Body), nil
}

func detectResumeType(head []byte, declared string) string {
	switch {
	case bytes.HasPrefix(head, pdfMagic):
		return "application/pdf"
	case bytes.HasPrefix(head, oleMagic):
		return "application/msword"
	case bytes.HasPrefix(head, zipMagic):
		if declared == docxType {
			return docxType
		}
		return "application/zip"
	}
	return strings.Split(http.DetectContentType(head), ";")[0]
}

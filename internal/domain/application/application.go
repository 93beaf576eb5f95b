package application

import (
	"strings"
	"time"

	"campusintern/internal/common"
)

type Status string

const (
	StatusPending     Status = "Pending"
	StatusShortlisted Status = "Shortlisted"
	StatusSelected    Status = "Selected"
	StatusRejected    Status = "Rejected"

	// StatusApplied is the legacy initial status. It is read as Pending.
	StatusApplied Status = "Applied"
)

// Application links a student to an internship. CompanyID is a snapshot of
// the internship owner taken at creation and is never re-synced.
type Application struct {
	ID           common.UUID `json:"id"`
	StudentID    common.UUID `json:"studentId"`
	InternshipID common.UUID `json:"internshipId"`
	CompanyID    common.UUID `json:"companyId"`
	Status       Status      `json:"status"`
	ResumePath   string      `json:"resumePath,omitempty"`
	CompanyNotes string      `json:"companyNotes"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

func (a Application) HasResume() bool {
	return strings.TrimSpace(a.ResumePath) != ""
}

// Normalize maps stored values, including the legacy Applied, onto the
// canonical set. Unknown values are returned as-is so callers can reject them.
func Normalize(status Status) Status {
	switch strings.ToLower(strings.TrimSpace(string(status))) {
	case "pending", "applied":
		return StatusPending
	case "shortlisted":
		return StatusShortlisted
	case "selected":
		return StatusSelected
	case "rejected":
		return StatusRejected
	default:
		return status
	}
}

// ParseStatus accepts only the canonical values that clients may request.
func ParseStatus(value string) (Status, bool) {
	status := Normalize(Status(value))
	if strings.EqualFold(strings.TrimSpace(value), string(StatusApplied)) {
		return "", false
	}
	if !IsKnown(status) {
		return "", false
	}
	return status, true
}

func IsKnown(status Status) bool {
	switch status {
	case StatusPending, StatusShortlisted, StatusSelected, StatusRejected:
		return true
	default:
		return false
	}
}

// IsPreDecision reports whether the owning student may still withdraw.
func IsPreDecision(status Status) bool {
	return Normalize(status) == StatusPending
}

func IsFinal(status Status) bool {
	return status == StatusSelected || status == StatusRejected
}

// CanTransition is the company-facing lifecycle table.
func CanTransition(from, to Status) bool {
	from = Normalize(from)
	if from == to {
		return true
	}
	switch from {
	case StatusPending:
		return to == StatusShortlisted || to == StatusSelected || to == StatusRejected
	case StatusShortlisted:
		return to == StatusSelected || to == StatusRejected
	default:
		return false
	}
}

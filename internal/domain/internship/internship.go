package internship

import (
	"strings"
	"time"

	"campusintern/internal/common"
)

type Status string

const (
	StatusPending  Status = "Pending"
	StatusApproved Status = "Approved"
	StatusRejected Status = "Rejected"
)

// ParseStatus accepts the moderation values case-insensitively and returns
// the canonical spelling.
func ParseStatus(value string) (Status, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "pending":
		return StatusPending, true
	case "approved":
		return StatusApproved, true
	case "rejected":
		return StatusRejected, true
	default:
		return "", false
	}
}

type Internship struct {
	ID          common.UUID `json:"id"`
	CompanyID   common.UUID `json:"companyId"`
	CompanyName string      `json:"companyName,omitempty"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Location    string      `json:"location"`
	Stipend     float64     `json:"stipend"`
	Deadline    *time.Time  `json:"deadline,omitempty"`
	PostedBy    common.UUID `json:"postedBy"`
	PostedAt    time.Time   `json:"postedAt"`
	Status      Status      `json:"status"`
}

// Filter narrows a catalog listing. Zero values mean "no restriction".
type Filter struct {
	CompanyID common.UUID
	Status    Status
}

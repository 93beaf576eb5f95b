package principal

import (
	"strings"
	"time"

	"campusintern/internal/common"
)

type Role string

const (
	RoleStudent Role = "student"
	RoleCompany Role = "company"
	RoleAdmin   Role = "admin"
)

func ParseRole(value string) (Role, bool) {
	role := Role(strings.ToLower(strings.TrimSpace(value)))
	switch role {
	case RoleStudent, RoleCompany, RoleAdmin:
		return role, true
	default:
		return "", false
	}
}

// Principal is any authenticated actor. Course and Achievements are only
// meaningful for students.
type Principal struct {
	ID           common.UUID `json:"id"`
	Role         Role        `json:"role"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"`
	IsBlocked    bool        `json:"isBlocked"`
	Course       string      `json:"course,omitempty"`
	Achievements []string    `json:"achievements,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// ProfileCompletion scores the four student profile fields at 25% each.
func (p Principal) ProfileCompletion() int {
	score := 0
	if strings.TrimSpace(p.Name) != "" {
		score += 25
	}
	if strings.TrimSpace(p.Email) != "" {
		score += 25
	}
	if strings.TrimSpace(p.Course) != "" {
		score += 25
	}
	if len(p.Achievements) > 0 {
		score += 25
	}
	return score
}

type ProfileUpdate struct {
	Name         string
	Email        string
	Course       *string
	Achievements []string
}

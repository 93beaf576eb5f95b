package application

import (
	"time"

	"campusintern/internal/common"
)

// StudentView is what a student sees in their own application list.
type StudentView struct {
	ID              common.UUID `json:"id"`
	InternshipID    common.UUID `json:"internshipId"`
	InternshipTitle string      `json:"internshipTitle"`
	CompanyName     string      `json:"companyName"`
	Status          Status      `json:"status"`
	AppliedOn       time.Time   `json:"appliedOn"`
	CompanyNotes    string      `json:"companyNotes"`
	HasResume       bool        `json:"hasResume"`
}

// CompanyView adds applicant contact details for the owning company.
type CompanyView struct {
	ID                 common.UUID `json:"id"`
	InternshipID       common.UUID `json:"internshipId"`
	InternshipTitle    string      `json:"internshipTitle"`
	InternshipLocation string      `json:"internshipLocation"`
	StudentID          common.UUID `json:"studentId"`
	StudentName        string      `json:"studentName"`
	StudentEmail       string      `json:"studentEmail"`
	Status             Status      `json:"status"`
	CompanyNotes       string      `json:"companyNotes"`
	HasResume          bool        `json:"hasResume"`
	CreatedAt          time.Time   `json:"createdAt"`
}

type AdminView struct {
	ID              common.UUID `json:"id"`
	StudentName     string      `json:"studentName"`
	InternshipTitle string      `json:"internshipTitle"`
	CompanyName     string      `json:"companyName"`
	Status          Status      `json:"status"`
	HasResume       bool        `json:"hasResume"`
	CreatedAt       time.Time   `json:"createdAt"`
}

// Detail is a single application with the names of everything it links.
type Detail struct {
	Application
	StudentName     string `json:"studentName"`
	StudentEmail    string `json:"studentEmail"`
	InternshipTitle string `json:"internshipTitle"`
	CompanyName     string `json:"companyName"`
}

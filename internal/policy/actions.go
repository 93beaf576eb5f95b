package policy

import "campusintern/internal/domain/principal"

type Action string

const (
	ActionUpdateProfile Action = "profile.update"
	ActionStudentStats  Action = "student.stats"

	ActionPostInternship       Action = "internship.create"
	ActionListInternships      Action = "internship.list"
	ActionViewInternship       Action = "internship.view"
	ActionModerateInternship   Action = "internship.moderate"
	ActionInternshipApplicants Action = "internship.applications"

	ActionApply                   Action = "application.create"
	ActionListStudentApplications Action = "application.list.student"
	ActionListCompanyApplications Action = "application.list.company"
	ActionListAllApplications     Action = "application.list.all"
	ActionRecentApplications      Action = "application.recent"
	ActionViewApplication         Action = "application.view"
	ActionDecideApplication       Action = "application.update"
	ActionWithdrawApplication     Action = "application.delete"
	ActionUploadResume            Action = "application.resume.upload"
	ActionReadResume              Action = "application.resume.read"

	ActionPostAnnouncement  Action = "announcement.create"
	ActionReadAnnouncements Action = "announcement.list"

	ActionAdminDashboard Action = "admin.dashboard"
	ActionListUsers      Action = "admin.users.list"
	ActionToggleBlock    Action = "admin.users.block"
	ActionCreateAdmin    Action = "admin.create"
	ActionViewReports    Action = "admin.reports"
)

type rule struct {
	roles    []principal.Role
	mutating bool
}

func (r rule) allows(role principal.Role) bool {
	for _, allowed := range r.roles {
		if allowed == role {
			return true
		}
	}
	return false
}

func (r rule) roleMessage() string {
	if len(r.roles) == 1 {
		return string(r.roles[0]) + " privileges required"
	}
	return "insufficient role"
}

var (
	anyRole     = []principal.Role{principal.RoleStudent, principal.RoleCompany, principal.RoleAdmin}
	studentOnly = []principal.Role{principal.RoleStudent}
	companyOnly = []principal.Role{principal.RoleCompany}
	adminOnly   = []principal.Role{principal.RoleAdmin}
	staff       = []principal.Role{principal.RoleCompany, principal.RoleAdmin}
)

var rules = map[Action]rule{
	ActionUpdateProfile: {roles: anyRole, mutating: true},
	ActionStudentStats:  {roles: studentOnly},

	ActionPostInternship:       {roles: companyOnly, mutating: true},
	ActionListInternships:      {roles: anyRole},
	ActionViewInternship:       {roles: anyRole},
	ActionModerateInternship:   {roles: adminOnly, mutating: true},
	ActionInternshipApplicants: {roles: staff},

	ActionApply:                   {roles: studentOnly, mutating: true},
	ActionListStudentApplications: {roles: studentOnly},
	ActionListCompanyApplications: {roles: companyOnly},
	ActionListAllApplications:     {roles: adminOnly},
	ActionRecentApplications:      {roles: companyOnly},
	ActionViewApplication:         {roles: anyRole},
	ActionDecideApplication:       {roles: staff, mutating: true},
	ActionWithdrawApplication:     {roles: studentOnly, mutating: true},
	ActionUploadResume:            {roles: studentOnly, mutating: true},
	ActionReadResume:              {roles: anyRole},

	ActionPostAnnouncement:  {roles: adminOnly, mutating: true},
	ActionReadAnnouncements: {roles: anyRole},

	ActionAdminDashboard: {roles: adminOnly},
	ActionListUsers:      {roles: adminOnly},
	ActionToggleBlock:    {roles: adminOnly, mutating: true},
	ActionCreateAdmin:    {roles: adminOnly, mutating: true},
	ActionViewReports:    {roles: adminOnly},
}

// IsMutating reports whether the blocked gate applies to an action.
func IsMutating(action Action) bool {
	return rules[action].mutating
}

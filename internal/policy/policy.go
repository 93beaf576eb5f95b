// Package policy holds every role and ownership rule of the portal. All
// functions are pure: they look only at the actor and the entity passed in.
package policy

import (
	"campusintern/internal/common"
	"campusintern/internal/domain/application"
	"campusintern/internal/domain/internship"
	"campusintern/internal/domain/principal"
)

// Actor is the resolved principal behind a request.
type Actor struct {
	ID      common.UUID
	Role    principal.Role
	Blocked bool
}

type Reason string

const (
	ReasonWrongRole     Reason = "wrong_role"
	ReasonNotOwner      Reason = "not_owner"
	ReasonBlocked       Reason = "blocked"
	ReasonStatusFrozen  Reason = "status_frozen"
	ReasonUnknownAction Reason = "unknown_action"
)

type Decision struct {
	Allowed bool
	Reason  Reason
	Message string
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason Reason, message string) Decision {
	return Decision{Reason: reason, Message: message}
}

// Err converts a denial into a forbidden error; it is nil when allowed.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return common.NewForbidden(string(d.Reason), d.Message)
}

// Authorize applies the role and blocked gates for an action.
func Authorize(actor Actor, action Action) Decision {
	r, ok := rules[action]
	if !ok {
		return deny(ReasonUnknownAction, "action is not permitted")
	}
	if !r.allows(actor.Role) {
		return deny(ReasonWrongRole, r.roleMessage())
	}
	if r.mutating && actor.Blocked {
		return deny(ReasonBlocked, "your account is blocked")
	}
	return allow()
}

// AuthorizeInternship adds the ownership gate for company-scoped actions on a
// posting. Admin passes the ownership gate unconditionally.
func AuthorizeInternship(actor Actor, action Action, item internship.Internship) Decision {
	if d := Authorize(actor, action); !d.Allowed {
		return d
	}
	if actor.Role == principal.RoleCompany && item.CompanyID != actor.ID {
		return deny(ReasonNotOwner, "internship belongs to another company")
	}
	return allow()
}

// AuthorizeApplication adds the ownership gate and, for withdrawals, the
// pre-decision status gate.
func AuthorizeApplication(actor Actor, action Action, app application.Application) Decision {
	if d := Authorize(actor, action); !d.Allowed {
		return d
	}
	switch actor.Role {
	case principal.RoleStudent:
		if app.StudentID != actor.ID {
			return deny(ReasonNotOwner, "application belongs to another student")
		}
	case principal.RoleCompany:
		if app.CompanyID != actor.ID {
			return deny(ReasonNotOwner, "application belongs to another company")
		}
	}
	if action == ActionWithdrawApplication && !application.IsPreDecision(app.Status) {
		return deny(ReasonStatusFrozen, "application can no longer be withdrawn")
	}
	return allow()
}

// CanReadResume allows the applying student, the owning company and any admin.
func CanReadResume(actor Actor, app application.Application) Decision {
	return AuthorizeApplication(actor, ActionReadResume, app)
}

// CanSeeInternship is the catalog visibility rule. A posting that is not
// visible should be reported as missing rather than forbidden.
func CanSeeInternship(actor Actor, item internship.Internship) bool {
	switch actor.Role {
	case principal.RoleAdmin:
		return true
	case principal.RoleCompany:
		return item.CompanyID == actor.ID
	case principal.RoleStudent:
		return item.Status == internship.StatusApproved
	default:
		return false
	}
}

// InternshipScope is the listing filter matching CanSeeInternship.
func InternshipScope(actor Actor) internship.Filter {
	switch actor.Role {
	case principal.RoleAdmin:
		return internship.Filter{}
	case principal.RoleCompany:
		return internship.Filter{CompanyID: actor.ID}
	default:
		return internship.Filter{Status: internship.StatusApproved}
	}
}

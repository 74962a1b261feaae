package authz

import (
	"github.com/google/uuid"

	"github.com/cadencehq/cadence/cadenced/database"
	"github.com/cadencehq/cadence/cadenced/privacy"
)

// Subject is the explicit per-call acting context. It is always passed as a
// value into every engine call and never read from ambient request state, so
// the impersonation asymmetry below stays mechanically checkable.
//
// Person and Teammate are the *effective* identity: every boolean outcome,
// including the admin bypass, is computed from them. The impersonator
// fields are retained strictly for audit annotation.
type Subject struct {
	Person   *database.Person
	Teammate *database.Teammate

	ImpersonatorPerson   *database.Person
	ImpersonatorTeammate *database.Teammate
}

// SubjectFor builds the context for an actor acting as themselves.
// teammate may be nil for organization-agnostic calls.
func SubjectFor(person database.Person, teammate *database.Teammate) Subject {
	return Subject{Person: &person, Teammate: teammate}
}

// AnonymousSubject is an unauthenticated viewer. It denies everything
// except explicitly anonymous-safe reads.
func AnonymousSubject() Subject {
	return Subject{}
}

// Impersonate returns the context for the actor acting as the target. The
// target becomes the effective subject for every permission computation:
// an admin impersonating a non-admin loses the bypass, and a non-admin
// impersonated by anyone is evaluated on its own, non-elevated permissions.
// The original actor survives only as the audit back-reference.
func (s Subject) Impersonate(targetPerson database.Person, targetTeammate *database.Teammate) Subject {
	return Subject{
		Person:               &targetPerson,
		Teammate:             targetTeammate,
		ImpersonatorPerson:   s.Person,
		ImpersonatorTeammate: s.Teammate,
	}
}

func (s Subject) Anonymous() bool {
	return s.Person == nil && s.Teammate == nil
}

func (s Subject) Impersonating() bool {
	return s.ImpersonatorPerson != nil || s.ImpersonatorTeammate != nil
}

// AuditPersonID identifies who to write in audit logs: the real actor when
// impersonating, the effective person otherwise.
func (s Subject) AuditPersonID() uuid.NullUUID {
	if s.ImpersonatorPerson != nil {
		return uuid.NullUUID{UUID: s.ImpersonatorPerson.ID, Valid: true}
	}
	if s.Person != nil {
		return uuid.NullUUID{UUID: s.Person.ID, Valid: true}
	}
	return uuid.NullUUID{}
}

// admin reports whether the effective person carries the global admin flag.
// Never consults the impersonator.
func (s Subject) admin() bool {
	return s.Person != nil && s.Person.Admin
}

func (s Subject) teammateIs(id uuid.UUID) bool {
	return s.Teammate != nil && s.Teammate.ID == id
}

func (s Subject) teammateIsRef(ref uuid.NullUUID) bool {
	return ref.Valid && s.teammateIs(ref.UUID)
}

func (s Subject) employed() bool {
	return s.Teammate != nil && s.Teammate.Employed()
}

func (s Subject) hasAnyFlag(flags []database.RoleFlag) bool {
	if s.Teammate == nil {
		return false
	}
	for _, flag := range flags {
		if s.Teammate.HasFlag(flag) {
			return true
		}
	}
	return false
}

func (s Subject) privacySubject() privacy.Subject {
	if s.Teammate == nil {
		return privacy.Anonymous()
	}
	return privacy.ForTeammate(*s.Teammate)
}

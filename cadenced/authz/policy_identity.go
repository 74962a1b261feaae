package authz

import (
	"context"
)

// PersonPolicy covers the organization-agnostic person resource. A person
// needs no teammate record to act on their own global resources.
type PersonPolicy struct {
	unscoped
}

func (PersonPolicy) Type() ResourceType { return ResourcePerson }

func (PersonPolicy) Allowed(_ context.Context, _ Environment, sub Subject, action Action, obj Object) (bool, error) {
	switch action {
	case ActionShow, ActionUpdate:
		return sub.Person != nil && sub.Person.ID == obj.ID, nil
	default:
		return false, nil
	}
}

// OrganizationPolicy covers the tenant record itself. Mutations and slack
// settings are granted through the customize_company flag upstream; the
// policy only grants member reads.
type OrganizationPolicy struct {
	unscoped
}

func (OrganizationPolicy) Type() ResourceType { return ResourceOrganization }

func (OrganizationPolicy) Allowed(_ context.Context, _ Environment, sub Subject, action Action, _ Object) (bool, error) {
	switch action {
	case ActionShow:
		return sub.Teammate != nil, nil
	case ActionCompanyPreferences:
		// Employment is enforced upstream by the gate; membership is the
		// policy-level requirement.
		return sub.Teammate != nil, nil
	default:
		return false, nil
	}
}

// TeammatePolicy covers tenancy records. Self-view always succeeds, even
// for a terminated teammate with no flags; viewing anyone else requires
// current employment. Onboarding and employment mutations are granted
// through role flags upstream.
type TeammatePolicy struct{}

func (TeammatePolicy) Type() ResourceType { return ResourceTeammate }

func (TeammatePolicy) Allowed(_ context.Context, _ Environment, sub Subject, action Action, obj Object) (bool, error) {
	switch action {
	case ActionShow:
		if sub.teammateIs(obj.ID) {
			return true, nil
		}
		return sub.employed(), nil
	case ActionUpdate:
		return sub.teammateIs(obj.ID), nil
	default:
		return false, nil
	}
}

func (TeammatePolicy) Scope(_ context.Context, _ Environment, sub Subject) (AuthorizeFilter, error) {
	if sub.Teammate == nil {
		return FilterFalse(), nil
	}
	if sub.employed() {
		return FilterTrue(), nil
	}
	// A terminated teammate still sees its own record.
	return termIDIs{ID: sub.Teammate.ID}, nil
}

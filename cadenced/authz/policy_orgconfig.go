package authz

import (
	"context"
)

// OrgConfigPolicy covers the organization-scoped configuration resources
// (positions, seats, departments, teams, kudos rewards). One policy serves
// them all: members read, mutations come only from role flags upstream.
type OrgConfigPolicy struct {
	unscoped
	Resource ResourceType
}

func (p OrgConfigPolicy) Type() ResourceType { return p.Resource }

func (OrgConfigPolicy) Allowed(_ context.Context, _ Environment, sub Subject, action Action, _ Object) (bool, error) {
	switch action {
	case ActionShow:
		return sub.Teammate != nil, nil
	default:
		return false, nil
	}
}

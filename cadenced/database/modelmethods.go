package database

// RoleFlag enumerates the per-teammate permission flags. The authorization
// engine maps (resource type, action) pairs onto these, so adding a flag is
// a column plus one table entry, not scattered conditionals.
type RoleFlag string

const (
	FlagManageMaap                RoleFlag = "can_manage_maap"
	FlagManageEmployment          RoleFlag = "can_manage_employment"
	FlagCreateEmployment          RoleFlag = "can_create_employment"
	FlagManageDepartmentsAndTeams RoleFlag = "can_manage_departments_and_teams"
	FlagManagePrompts             RoleFlag = "can_manage_prompts"
	FlagCustomizeCompany          RoleFlag = "can_customize_company"
	FlagManageKudosRewards        RoleFlag = "can_manage_kudos_rewards"
)

// Employed reports whether the teammate is currently employed. The rule is
// deliberately time-free: an unset LastTerminatedAt means active, a set one
// means terminated regardless of value.
func (t Teammate) Employed() bool {
	return t.FirstEmployedAt != nil && t.LastTerminatedAt == nil
}

func (t Teammate) HasFlag(flag RoleFlag) bool {
	switch flag {
	case FlagManageMaap:
		return t.CanManageMaap
	case FlagManageEmployment:
		return t.CanManageEmployment
	case FlagCreateEmployment:
		return t.CanCreateEmployment
	case FlagManageDepartmentsAndTeams:
		return t.CanManageDepartmentsAndTeams
	case FlagManagePrompts:
		return t.CanManagePrompts
	case FlagCustomizeCompany:
		return t.CanCustomizeCompany
	case FlagManageKudosRewards:
		return t.CanManageKudosRewards
	default:
		return false
	}
}

// Open reports whether the tenure is the teammate's current one.
func (t EmploymentTenure) Open() bool {
	return t.EndedAt == nil
}

func (o Observation) Published() bool {
	return o.PublishedAt != nil
}

func (p Prompt) Closed() bool {
	return p.ClosedAt != nil
}

func (c CheckIn) Finalized() bool {
	return c.FinalizedAt != nil
}

func (f FeedbackRequest) Completed() bool {
	return f.CompletedAt != nil
}

package authz

import "github.com/cadencehq/cadence/cadenced/database"

type flagKey struct {
	Type   ResourceType
	Action Action
}

// flagGrants maps (resource type, action) to the role flags that grant the
// action outright. Holding any listed flag is sufficient. Adding a new
// permission is an entry here, not new conditional logic.
//
// A missing entry means the action is not flag-gated; the resource policy
// decides on other grounds (self-reference, hierarchy, privacy).
var flagGrants = map[flagKey][]database.RoleFlag{
	{ResourceTeammate, ActionCreate}:  {database.FlagCreateEmployment, database.FlagManageEmployment},
	{ResourceTeammate, ActionUpdate}:  {database.FlagManageEmployment},
	{ResourceTeammate, ActionDestroy}: {database.FlagManageEmployment},

	{ResourcePosition, ActionCreate}:  {database.FlagManageMaap},
	{ResourcePosition, ActionUpdate}:  {database.FlagManageMaap},
	{ResourcePosition, ActionDestroy}: {database.FlagManageMaap},

	{ResourceSeat, ActionCreate}:  {database.FlagManageMaap},
	{ResourceSeat, ActionUpdate}:  {database.FlagManageMaap},
	{ResourceSeat, ActionDestroy}: {database.FlagManageMaap},

	{ResourceGoal, ActionUpdate}:  {database.FlagManageMaap},
	{ResourceGoal, ActionDestroy}: {database.FlagManageMaap},

	{ResourceDepartment, ActionCreate}:  {database.FlagManageDepartmentsAndTeams},
	{ResourceDepartment, ActionUpdate}:  {database.FlagManageDepartmentsAndTeams},
	{ResourceDepartment, ActionDestroy}: {database.FlagManageDepartmentsAndTeams},

	{ResourceTeam, ActionCreate}:  {database.FlagManageDepartmentsAndTeams},
	{ResourceTeam, ActionUpdate}:  {database.FlagManageDepartmentsAndTeams},
	{ResourceTeam, ActionDestroy}: {database.FlagManageDepartmentsAndTeams},

	{ResourcePrompt, ActionShow}:   {database.FlagManagePrompts},
	{ResourcePrompt, ActionCreate}: {database.FlagManagePrompts},
	{ResourcePrompt, ActionUpdate}: {database.FlagManagePrompts},
	{ResourcePrompt, ActionClose}:  {database.FlagManagePrompts},

	{ResourceKudosReward, ActionCreate}:  {database.FlagManageKudosRewards},
	{ResourceKudosReward, ActionUpdate}:  {database.FlagManageKudosRewards},
	{ResourceKudosReward, ActionDestroy}: {database.FlagManageKudosRewards},

	{ResourceOrganization, ActionUpdate}:            {database.FlagCustomizeCompany},
	{ResourceOrganization, ActionViewSlackSettings}: {database.FlagCustomizeCompany},
}

// employmentGated lists the (resource type, action) pairs that require the
// acting teammate to be currently employed, independent of role flags. A
// terminated teammate is denied even if it still holds the flag; the gate
// itself exempts views of the teammate's own record.
var employmentGated = map[flagKey]struct{}{
	{ResourceCheckIn, ActionShow}:                    {},
	{ResourceSeat, ActionShow}:                       {},
	{ResourceOrganization, ActionViewSlackSettings}:  {},
	{ResourceOrganization, ActionCompanyPreferences}: {},
}

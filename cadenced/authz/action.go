package authz

// Action represents the named predicates exposed per resource type.
type Action string

const (
	ActionShow    Action = "show"
	ActionCreate  Action = "create"
	ActionUpdate  Action = "update"
	ActionDestroy Action = "destroy"

	// Resource-specific actions.
	ActionViewPermalink      Action = "view_permalink"
	ActionClose              Action = "close"
	ActionFinalize           Action = "finalize"
	ActionComplete           Action = "complete"
	ActionViewSlackSettings  Action = "view_slack_settings"
	ActionCompanyPreferences Action = "company_preferences"
)

// ResourceType tags every object the engine can authorize.
type ResourceType string

const (
	ResourcePerson          ResourceType = "person"
	ResourceOrganization    ResourceType = "organization"
	ResourceTeammate        ResourceType = "teammate"
	ResourcePosition        ResourceType = "position"
	ResourceSeat            ResourceType = "seat"
	ResourceDepartment      ResourceType = "department"
	ResourceTeam            ResourceType = "team"
	ResourceObservation     ResourceType = "observation"
	ResourceGoal            ResourceType = "goal"
	ResourceFeedbackRequest ResourceType = "feedback_request"
	ResourcePrompt          ResourceType = "prompt"
	ResourceCheckIn         ResourceType = "check_in"
	ResourceKudosReward     ResourceType = "kudos_reward"
)

// orgAgnostic resource types have no organization reference; everything else
// is tenant-scoped and subject to the hard tenancy check.
func (t ResourceType) orgAgnostic() bool {
	return t == ResourcePerson
}

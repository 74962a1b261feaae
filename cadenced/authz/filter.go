package authz

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/cadencehq/cadence/cadenced/database"
)

// AuthorizeFilter is the listing-time equivalent of a single-resource show
// check, expressed as a composable filter instead of a per-row boolean.
//
// SQLString renders the filter into a WHERE-clause fragment for a single
// bounded query; Eval applies the same predicate to an in-memory Object so
// the fake store and the scope/predicate equivalence tests can use the
// identical filter.
type AuthorizeFilter interface {
	// SQLString returns the SQL expression that can be used in a WHERE
	// clause.
	SQLString(cfg SQLConfig) string
	// Eval evaluates the filter against an in-memory object.
	Eval(object Object) bool
	// String is a human-readable rendering for debugging.
	String() string
}

// SQLConfig maps the filter's logical fields onto the columns of the table
// being listed.
type SQLConfig struct {
	IDColumn           string
	OrganizationColumn string
	CreatorColumn      string
	PrivacyColumn      string
	PublishedColumn    string
	OwnerKindColumn    string
	OwnerIDColumn      string

	// ObserveeInTemplate is a SQL predicate template with a single %s that
	// receives a quoted ID list; true when any of the listed teammates is
	// an observee of the row.
	ObserveeInTemplate string
	// SelfObservationSQL is a SQL predicate that is true when the row's
	// sole observee is its creator.
	SelfObservationSQL string
}

// DefaultObservationSQLConfig matches the observations table layout.
func DefaultObservationSQLConfig() SQLConfig {
	return SQLConfig{
		IDColumn:           "observations.id",
		OrganizationColumn: "observations.organization_id",
		CreatorColumn:      "observations.creator_teammate_id",
		PrivacyColumn:      "observations.privacy_level",
		PublishedColumn:    "observations.published_at",
		ObserveeInTemplate: "EXISTS (SELECT 1 FROM observation_observees oo WHERE oo.observation_id = observations.id AND oo.teammate_id IN (%s))",
		SelfObservationSQL: "(SELECT count(*) FROM observation_observees oo WHERE oo.observation_id = observations.id) = 1 AND EXISTS (SELECT 1 FROM observation_observees oo WHERE oo.observation_id = observations.id AND oo.teammate_id = observations.creator_teammate_id)",
	}
}

// DefaultTeammateSQLConfig matches the teammates table layout.
func DefaultTeammateSQLConfig() SQLConfig {
	return SQLConfig{
		IDColumn:           "teammates.id",
		OrganizationColumn: "teammates.organization_id",
	}
}

// DefaultGoalSQLConfig matches the goals table layout.
func DefaultGoalSQLConfig() SQLConfig {
	return SQLConfig{
		IDColumn:           "goals.id",
		OrganizationColumn: "goals.organization_id",
		CreatorColumn:      "goals.creator_teammate_id",
		PrivacyColumn:      "goals.privacy_level",
		OwnerKindColumn:    "goals.owner_kind",
		OwnerIDColumn:      "goals.owner_id",
	}
}

// FilterAnd composes filters so listing endpoints can stack business
// filters on top of the security filter without weakening it.
func FilterAnd(filters ...AuthorizeFilter) AuthorizeFilter {
	return expAnd{Expressions: filters}
}

func FilterOr(filters ...AuthorizeFilter) AuthorizeFilter {
	return expOr{Expressions: filters}
}

// FilterTrue matches every row. Produced by the admin wildcard.
func FilterTrue() AuthorizeFilter { return termBoolean{Value: true} }

// FilterFalse matches no rows. Produced for subjects with no access at all.
func FilterFalse() AuthorizeFilter { return termBoolean{Value: false} }

type termBoolean struct {
	Value bool
}

func (t termBoolean) SQLString(SQLConfig) string {
	if t.Value {
		return "true"
	}
	return "false"
}

func (t termBoolean) Eval(Object) bool { return t.Value }

func (t termBoolean) String() string { return t.SQLString(SQLConfig{}) }

type expAnd struct {
	Expressions []AuthorizeFilter
}

func (t expAnd) SQLString(cfg SQLConfig) string {
	if len(t.Expressions) == 1 {
		return t.Expressions[0].SQLString(cfg)
	}
	exprs := make([]string, 0, len(t.Expressions))
	for _, expr := range t.Expressions {
		exprs = append(exprs, expr.SQLString(cfg))
	}
	return "(" + strings.Join(exprs, " AND ") + ")"
}

func (t expAnd) Eval(object Object) bool {
	for _, expr := range t.Expressions {
		if !expr.Eval(object) {
			return false
		}
	}
	return true
}

func (t expAnd) String() string { return t.SQLString(SQLConfig{}) }

type expOr struct {
	Expressions []AuthorizeFilter
}

func (t expOr) SQLString(cfg SQLConfig) string {
	if len(t.Expressions) == 0 {
		return "false"
	}
	if len(t.Expressions) == 1 {
		return t.Expressions[0].SQLString(cfg)
	}
	exprs := make([]string, 0, len(t.Expressions))
	for _, expr := range t.Expressions {
		exprs = append(exprs, expr.SQLString(cfg))
	}
	return "(" + strings.Join(exprs, " OR ") + ")"
}

func (t expOr) Eval(object Object) bool {
	for _, expr := range t.Expressions {
		if expr.Eval(object) {
			return true
		}
	}
	return false
}

func (t expOr) String() string { return t.SQLString(SQLConfig{}) }

type expNot struct {
	Expression AuthorizeFilter
}

func (t expNot) SQLString(cfg SQLConfig) string {
	return "NOT (" + t.Expression.SQLString(cfg) + ")"
}

func (t expNot) Eval(object Object) bool { return !t.Expression.Eval(object) }

func (t expNot) String() string { return t.SQLString(SQLConfig{}) }

type termIDIs struct {
	ID uuid.UUID
}

func (t termIDIs) SQLString(cfg SQLConfig) string {
	return fmt.Sprintf("%s = '%s'", cfg.IDColumn, t.ID)
}

func (t termIDIs) Eval(object Object) bool { return object.ID == t.ID }

func (t termIDIs) String() string { return "id = " + t.ID.String() }

type termOrgIs struct {
	OrgID uuid.UUID
}

func (t termOrgIs) SQLString(cfg SQLConfig) string {
	return fmt.Sprintf("%s = '%s'", cfg.OrganizationColumn, t.OrgID)
}

func (t termOrgIs) Eval(object Object) bool { return object.OrgID == t.OrgID }

func (t termOrgIs) String() string { return "org = " + t.OrgID.String() }

type termCreatorIs struct {
	TeammateID uuid.UUID
}

func (t termCreatorIs) SQLString(cfg SQLConfig) string {
	return fmt.Sprintf("%s = '%s'", cfg.CreatorColumn, t.TeammateID)
}

func (t termCreatorIs) Eval(object Object) bool {
	return object.CreatorID.Valid && object.CreatorID.UUID == t.TeammateID
}

func (t termCreatorIs) String() string { return "creator = " + t.TeammateID.String() }

type termObservationLevelIn struct {
	Levels []database.ObservationPrivacy
}

func (t termObservationLevelIn) SQLString(cfg SQLConfig) string {
	if len(t.Levels) == 0 {
		return "false"
	}
	quoted := make([]string, 0, len(t.Levels))
	for _, level := range t.Levels {
		quoted = append(quoted, "'"+string(level)+"'")
	}
	return fmt.Sprintf("%s IN (%s)", cfg.PrivacyColumn, strings.Join(quoted, ", "))
}

func (t termObservationLevelIn) Eval(object Object) bool {
	for _, level := range t.Levels {
		if object.ObservationLevel == level {
			return true
		}
	}
	return false
}

func (t termObservationLevelIn) String() string { return fmt.Sprintf("level in %v", t.Levels) }

type termGoalLevelIn struct {
	Levels []database.GoalPrivacy
}

func (t termGoalLevelIn) SQLString(cfg SQLConfig) string {
	if len(t.Levels) == 0 {
		return "false"
	}
	quoted := make([]string, 0, len(t.Levels))
	for _, level := range t.Levels {
		quoted = append(quoted, "'"+string(level)+"'")
	}
	return fmt.Sprintf("%s IN (%s)", cfg.PrivacyColumn, strings.Join(quoted, ", "))
}

func (t termGoalLevelIn) Eval(object Object) bool {
	for _, level := range t.Levels {
		if object.GoalLevel == level {
			return true
		}
	}
	return false
}

func (t termGoalLevelIn) String() string { return fmt.Sprintf("goal level in %v", t.Levels) }

type termPublished struct{}

func (termPublished) SQLString(cfg SQLConfig) string {
	return cfg.PublishedColumn + " IS NOT NULL"
}

func (termPublished) Eval(object Object) bool { return object.Published }

func (termPublished) String() string { return "published" }

type termObserveeIn struct {
	TeammateIDs []uuid.UUID
}

func (t termObserveeIn) SQLString(cfg SQLConfig) string {
	if len(t.TeammateIDs) == 0 {
		return "false"
	}
	return fmt.Sprintf(cfg.ObserveeInTemplate, sqlIDList(t.TeammateIDs))
}

func (t termObserveeIn) Eval(object Object) bool {
	for _, observeeID := range object.ObserveeIDs {
		for _, id := range t.TeammateIDs {
			if observeeID == id {
				return true
			}
		}
	}
	return false
}

func (t termObserveeIn) String() string { return fmt.Sprintf("observee in %v", t.TeammateIDs) }

// termSelfObservation is true when the row's sole observee is its creator.
// Used negated, to suppress manager visibility into self-observations.
type termSelfObservation struct{}

func (termSelfObservation) SQLString(cfg SQLConfig) string {
	return "(" + cfg.SelfObservationSQL + ")"
}

func (termSelfObservation) Eval(object Object) bool {
	return len(object.ObserveeIDs) == 1 &&
		object.CreatorID.Valid &&
		object.ObserveeIDs[0] == object.CreatorID.UUID
}

func (termSelfObservation) String() string { return "self-observation" }

type termOwnerIs struct {
	Kind database.GoalOwnerKind
	ID   uuid.UUID
}

func (t termOwnerIs) SQLString(cfg SQLConfig) string {
	return fmt.Sprintf("(%s = '%s' AND %s = '%s')", cfg.OwnerKindColumn, t.Kind, cfg.OwnerIDColumn, t.ID)
}

func (t termOwnerIs) Eval(object Object) bool {
	return object.GoalOwner != nil && object.GoalOwner.Kind == t.Kind && object.GoalOwner.ID == t.ID
}

func (t termOwnerIs) String() string { return fmt.Sprintf("owner %s:%s", t.Kind, t.ID) }

type termOwnerIn struct {
	Kind database.GoalOwnerKind
	IDs  []uuid.UUID
}

func (t termOwnerIn) SQLString(cfg SQLConfig) string {
	if len(t.IDs) == 0 {
		return "false"
	}
	return fmt.Sprintf("(%s = '%s' AND %s IN (%s))", cfg.OwnerKindColumn, t.Kind, cfg.OwnerIDColumn, sqlIDList(t.IDs))
}

func (t termOwnerIn) Eval(object Object) bool {
	if object.GoalOwner == nil || object.GoalOwner.Kind != t.Kind {
		return false
	}
	for _, id := range t.IDs {
		if object.GoalOwner.ID == id {
			return true
		}
	}
	return false
}

func (t termOwnerIn) String() string { return fmt.Sprintf("owner %s in %v", t.Kind, t.IDs) }

func sqlIDList(ids []uuid.UUID) string {
	quoted := make([]string, 0, len(ids))
	for _, id := range ids {
		quoted = append(quoted, "'"+id.String()+"'")
	}
	return strings.Join(quoted, ", ")
}

package authz

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/cadencehq/cadence/cadenced/database"
)

// Object is the flattened descriptor the engine authorizes against. It is
// built from a model instance, or from a bare resource type (via ShapeInOrg)
// when asking "can this subject create a resource of this shape at all".
//
// Only the fields a resource type actually has are populated; the rest stay
// zero. Policies must not dereference instance fields on a shape.
type Object struct {
	Type  ResourceType
	ID    uuid.UUID
	OrgID uuid.UUID

	// CreatorID is the teammate that created the resource.
	CreatorID uuid.NullUUID
	// AboutID is the teammate the resource is naturally tied to: the
	// observee-independent "subject" (feedback request subject, prompt
	// recipient, check-in teammate). Hierarchy checks flow through it.
	AboutID uuid.NullUUID
	// RecipientID is a secondary teammate reference (feedback requested-of,
	// check-in manager).
	RecipientID uuid.NullUUID

	// Privacy payload, populated for observation- and goal-shaped types.
	ObservationLevel database.ObservationPrivacy
	GoalLevel        database.GoalPrivacy
	Published        bool
	ObserveeIDs      []uuid.UUID
	GoalOwner        *database.GoalOwner
}

// Shape reports whether the object is a bare type marker for a create
// check.
func (z Object) Shape() bool {
	return z.ID == uuid.Nil
}

// String is not perfect, but decent enough for human display.
func (z Object) String() string {
	var parts []string
	if z.OrgID != uuid.Nil {
		parts = append(parts, fmt.Sprintf("org:%s", truncate(z.OrgID.String(), 8)))
	}
	parts = append(parts, string(z.Type))
	if z.ID != uuid.Nil {
		parts = append(parts, fmt.Sprintf("id:%s", truncate(z.ID.String(), 8)))
	}
	return strings.Join(parts, ".")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// ShapeInOrg returns a bare type marker for create checks within an
// organization.
func ShapeInOrg(typ ResourceType, orgID uuid.UUID) Object {
	return Object{Type: typ, OrgID: orgID}
}

// ShapeAbout is ShapeInOrg with the teammate the would-be resource is tied
// to, e.g. "create a feedback request about teammate A".
func ShapeAbout(typ ResourceType, orgID, aboutTeammateID uuid.UUID) Object {
	return Object{
		Type:    typ,
		OrgID:   orgID,
		AboutID: uuid.NullUUID{UUID: aboutTeammateID, Valid: true},
	}
}

func ObjectFromPerson(p database.Person) Object {
	return Object{Type: ResourcePerson, ID: p.ID}
}

func ObjectFromOrganization(o database.Organization) Object {
	return Object{Type: ResourceOrganization, ID: o.ID, OrgID: o.ID}
}

func ObjectFromTeammate(t database.Teammate) Object {
	return Object{Type: ResourceTeammate, ID: t.ID, OrgID: t.OrganizationID}
}

func ObjectFromPosition(p database.Position) Object {
	return Object{Type: ResourcePosition, ID: p.ID, OrgID: p.OrganizationID}
}

func ObjectFromSeat(s database.Seat) Object {
	return Object{Type: ResourceSeat, ID: s.ID, OrgID: s.OrganizationID}
}

func ObjectFromDepartment(d database.Department) Object {
	return Object{Type: ResourceDepartment, ID: d.ID, OrgID: d.OrganizationID}
}

func ObjectFromTeam(t database.Team) Object {
	return Object{Type: ResourceTeam, ID: t.ID, OrgID: t.OrganizationID}
}

// ObjectFromObservation flattens an observation and its observee list. Pass
// the observees when already loaded; the engine fetches them on demand
// otherwise.
func ObjectFromObservation(o database.Observation, observeeIDs []uuid.UUID) Object {
	return Object{
		Type:             ResourceObservation,
		ID:               o.ID,
		OrgID:            o.OrganizationID,
		CreatorID:        uuid.NullUUID{UUID: o.CreatorTeammateID, Valid: true},
		ObservationLevel: o.PrivacyLevel,
		Published:        o.Published(),
		ObserveeIDs:      observeeIDs,
	}
}

func ObjectFromGoal(g database.Goal) Object {
	owner := g.Owner
	return Object{
		Type:      ResourceGoal,
		ID:        g.ID,
		OrgID:     g.OrganizationID,
		CreatorID: uuid.NullUUID{UUID: g.CreatorTeammateID, Valid: true},
		GoalLevel: g.PrivacyLevel,
		GoalOwner: &owner,
	}
}

func ObjectFromFeedbackRequest(f database.FeedbackRequest) Object {
	return Object{
		Type:        ResourceFeedbackRequest,
		ID:          f.ID,
		OrgID:       f.OrganizationID,
		CreatorID:   uuid.NullUUID{UUID: f.CreatorTeammateID, Valid: true},
		AboutID:     uuid.NullUUID{UUID: f.SubjectTeammateID, Valid: true},
		RecipientID: uuid.NullUUID{UUID: f.RequestedOfTeammateID, Valid: true},
	}
}

func ObjectFromPrompt(p database.Prompt) Object {
	return Object{
		Type:      ResourcePrompt,
		ID:        p.ID,
		OrgID:     p.OrganizationID,
		CreatorID: uuid.NullUUID{UUID: p.CreatorTeammateID, Valid: true},
		AboutID:   uuid.NullUUID{UUID: p.TeammateID, Valid: true},
	}
}

func ObjectFromCheckIn(c database.CheckIn) Object {
	return Object{
		Type:        ResourceCheckIn,
		ID:          c.ID,
		OrgID:       c.OrganizationID,
		AboutID:     uuid.NullUUID{UUID: c.TeammateID, Valid: true},
		RecipientID: c.ManagerTeammateID,
	}
}

func ObjectFromKudosReward(k database.KudosReward) Object {
	return Object{Type: ResourceKudosReward, ID: k.ID, OrgID: k.OrganizationID}
}

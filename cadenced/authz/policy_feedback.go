package authz

import (
	"context"

	"golang.org/x/xerrors"

	"github.com/cadencehq/cadence/cadenced/hierarchy"
)

// FeedbackRequestPolicy covers requests for feedback about a subject
// teammate. Permission flows to the creator, the subject, the teammate the
// feedback was requested of, and the subject's transitive managers.
//
// RetainFormerManagers widens the manager check to the subject's most
// recently ended tenure when they have no open one, so a manager whose
// report left keeps visibility. Off by default; install a configured policy
// with WithPolicy to turn it on.
type FeedbackRequestPolicy struct {
	unscoped
	RetainFormerManagers bool
}

func (FeedbackRequestPolicy) Type() ResourceType { return ResourceFeedbackRequest }

func (p FeedbackRequestPolicy) Allowed(ctx context.Context, env Environment, sub Subject, action Action, obj Object) (bool, error) {
	switch action {
	case ActionShow:
		if sub.teammateIsRef(obj.CreatorID) || sub.teammateIsRef(obj.AboutID) || sub.teammateIsRef(obj.RecipientID) {
			return true, nil
		}
		return managesAbout(ctx, env, sub, obj, traverseOpts(p.RetainFormerManagers)...)
	case ActionCreate:
		if !obj.AboutID.Valid {
			// Bare shape: may this subject create feedback requests at all.
			return sub.employed(), nil
		}
		if sub.teammateIsRef(obj.AboutID) {
			return true, nil
		}
		return managesAbout(ctx, env, sub, obj, traverseOpts(p.RetainFormerManagers)...)
	case ActionComplete:
		return sub.teammateIsRef(obj.RecipientID), nil
	case ActionUpdate, ActionDestroy:
		return sub.teammateIsRef(obj.CreatorID), nil
	default:
		return false, nil
	}
}

// PromptPolicy covers one-on-one prompts addressed to a teammate. The
// manage_prompts flag grants the full surface upstream; the policy grants
// the recipient, the creator, and the recipient's managers.
type PromptPolicy struct {
	unscoped
	RetainFormerManagers bool
}

func (PromptPolicy) Type() ResourceType { return ResourcePrompt }

func (p PromptPolicy) Allowed(ctx context.Context, env Environment, sub Subject, action Action, obj Object) (bool, error) {
	switch action {
	case ActionShow:
		if sub.teammateIsRef(obj.AboutID) || sub.teammateIsRef(obj.CreatorID) {
			return true, nil
		}
		return managesAbout(ctx, env, sub, obj, traverseOpts(p.RetainFormerManagers)...)
	case ActionCreate:
		if !obj.AboutID.Valid {
			return sub.employed(), nil
		}
		return managesAbout(ctx, env, sub, obj, traverseOpts(p.RetainFormerManagers)...)
	case ActionClose:
		// Closing your own open prompt needs no flag.
		return sub.teammateIsRef(obj.AboutID) || sub.teammateIsRef(obj.CreatorID), nil
	case ActionUpdate:
		return sub.teammateIsRef(obj.CreatorID), nil
	default:
		return false, nil
	}
}

// CheckInPolicy covers recurring check-ins between a teammate and their
// manager. Viewing is employment-gated upstream, with the teammate's own
// record exempted.
type CheckInPolicy struct {
	unscoped
	RetainFormerManagers bool
}

func (CheckInPolicy) Type() ResourceType { return ResourceCheckIn }

func (p CheckInPolicy) Allowed(ctx context.Context, env Environment, sub Subject, action Action, obj Object) (bool, error) {
	switch action {
	case ActionShow, ActionUpdate:
		if sub.teammateIsRef(obj.AboutID) || sub.teammateIsRef(obj.RecipientID) {
			return true, nil
		}
		return managesAbout(ctx, env, sub, obj, traverseOpts(p.RetainFormerManagers)...)
	case ActionCreate, ActionFinalize:
		if sub.teammateIsRef(obj.RecipientID) {
			return true, nil
		}
		return managesAbout(ctx, env, sub, obj, traverseOpts(p.RetainFormerManagers)...)
	default:
		return false, nil
	}
}

func traverseOpts(retainFormerManagers bool) []hierarchy.TraverseOption {
	if retainFormerManagers {
		return []hierarchy.TraverseOption{hierarchy.IncludeFormerManagers()}
	}
	return nil
}

// managesAbout reports whether the subject transitively manages the teammate
// the object is tied to.
func managesAbout(ctx context.Context, env Environment, sub Subject, obj Object, opts ...hierarchy.TraverseOption) (bool, error) {
	if sub.Teammate == nil || !obj.AboutID.Valid {
		return false, nil
	}
	is, err := env.Hierarchy.IsManagerOf(ctx, sub.Teammate.ID, obj.AboutID.UUID, opts...)
	if err != nil {
		return false, xerrors.Errorf("manager of %s: %w", obj.AboutID.UUID, err)
	}
	return is, nil
}

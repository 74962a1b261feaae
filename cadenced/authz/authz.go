// Package authz is the decision engine gating every read and write in the
// application. It exposes one boolean predicate per (resource type, action)
// pair plus a scope compiler for listing endpoints, evaluated against an
// explicit per-call subject context.
//
// The engine is a pure decision function over already-loaded data: it reads
// (hierarchy traversal and privacy resolution may issue lookups) but never
// writes, holds no mutable shared state, and is safe to call concurrently.
package authz

import (
	"context"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/xerrors"

	"cdr.dev/slog/v3"

	"github.com/coder/quartz"

	"github.com/cadencehq/cadence/cadenced/database"
	"github.com/cadencehq/cadence/cadenced/hierarchy"
	"github.com/cadencehq/cadence/cadenced/membership"
	"github.com/cadencehq/cadence/cadenced/privacy"
	"github.com/cadencehq/cadence/cadenced/tracing"
)

// Authorizer evaluates subject/action/object triples against the registered
// per-resource policies.
type Authorizer struct {
	env      Environment
	policies map[ResourceType]Policy
	log      slog.Logger
	clock    quartz.Clock

	authorizeDuration prometheus.Histogram
	denies            *prometheus.CounterVec
}

type Option func(*Authorizer)

// WithClock substitutes the wall clock, for tests.
func WithClock(clock quartz.Clock) Option {
	return func(a *Authorizer) {
		a.clock = clock
	}
}

// WithRegistry registers the engine's metrics with reg.
func WithRegistry(reg prometheus.Registerer) Option {
	return func(a *Authorizer) {
		reg.MustRegister(a.authorizeDuration, a.denies)
	}
}

// WithPolicy replaces the default policy for p's resource type, e.g. to
// install FeedbackRequestPolicy{RetainFormerManagers: true}.
func WithPolicy(p Policy) Option {
	return func(a *Authorizer) {
		a.policies[p.Type()] = p
	}
}

func New(store database.Store, log slog.Logger, opts ...Option) *Authorizer {
	traverser := hierarchy.New(store, log)
	a := &Authorizer{
		env: Environment{
			Store:      store,
			Hierarchy:  traverser,
			Privacy:    privacy.NewResolver(store, traverser),
			Membership: membership.NewResolver(store),
			Logger:     log,
		},
		policies: DefaultPolicies(),
		log:      log,
		clock:    quartz.NewReal(),
		authorizeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "cadence",
			Subsystem: "authz",
			Name:      "authorize_duration_seconds",
			Help:      "Duration of a single authorization decision.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		denies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cadence",
			Subsystem: "authz",
			Name:      "denies_total",
			Help:      "Authorization denials by resource type and action.",
		}, []string{"resource_type", "action"}),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Environment exposes the engine's collaborators so callers can reach the
// hierarchy traverser and privacy resolver the engine decides with.
func (a *Authorizer) Environment() Environment {
	return a.env
}

// SubjectForPerson resolves the acting context for a person within an
// organization. A person with no teammate record still gets a subject; it
// can only act on its own global person resources.
func (a *Authorizer) SubjectForPerson(ctx context.Context, person database.Person, organizationID uuid.UUID) (Subject, error) {
	teammate, err := a.env.Membership.Resolve(ctx, person.ID, organizationID)
	if xerrors.Is(err, membership.ErrNotMember) {
		return SubjectFor(person, nil), nil
	}
	if err != nil {
		return Subject{}, xerrors.Errorf("resolve membership: %w", err)
	}
	return SubjectFor(person, &teammate), nil
}

// Authorize returns nil when the subject may perform the action on the
// object. A normal deny is an *UnauthorizedError; malformed input returns
// *InvalidSubjectError or *InvalidResourceError instead so monitoring can
// tell users-being-denied apart from the application passing garbage.
func (a *Authorizer) Authorize(ctx context.Context, sub Subject, action Action, obj Object) error {
	start := a.clock.Now()
	ctx, span := tracing.StartSpan(ctx,
		trace.WithAttributes(
			attribute.String("authz.action", string(action)),
			attribute.String("authz.resource_type", string(obj.Type)),
		),
	)
	defer span.End()

	err := a.authorize(ctx, sub, action, obj)
	a.authorizeDuration.Observe(a.clock.Since(start).Seconds())
	if IsUnauthorizedError(err) {
		a.denies.WithLabelValues(string(obj.Type), string(action)).Inc()
	}
	return err
}

func (a *Authorizer) authorize(ctx context.Context, sub Subject, action Action, obj Object) error {
	if err := validateSubject(sub); err != nil {
		return err
	}
	policy, ok := a.policies[obj.Type]
	if !ok {
		return &InvalidResourceError{Type: obj.Type, Reason: "no policy registered"}
	}
	if !obj.Type.orgAgnostic() && obj.OrgID == uuid.Nil {
		return &InvalidResourceError{Type: obj.Type, Reason: "no organization reference reachable"}
	}

	if sub.Anonymous() && !anonymousSafe(action, obj) {
		return ForbiddenWithInternal(xerrors.New("anonymous subject"), sub, action, obj)
	}

	// The bypass is a property of the effective person only. An admin
	// impersonating a non-admin does not carry it.
	if sub.admin() {
		return nil
	}

	// Hard tenant isolation. Observation reads are exempt here because
	// public_to_world is legible across tenants; the privacy resolver
	// enforces tenancy for every other level.
	if !sub.Anonymous() && !obj.Type.orgAgnostic() && !observationRead(action, obj) {
		if sub.Teammate == nil || sub.Teammate.OrganizationID != obj.OrgID {
			return ForbiddenWithInternal(xerrors.New("subject organization does not match resource"), sub, action, obj)
		}
	}

	key := flagKey{Type: obj.Type, Action: action}
	if _, gated := employmentGated[key]; gated && !sub.employed() {
		// A terminated teammate keeps access to its own record.
		if !sub.teammateIsRef(obj.AboutID) && !sub.teammateIs(obj.ID) {
			return ForbiddenWithInternal(xerrors.New("action requires current employment"), sub, action, obj)
		}
	}

	if flags, ok := flagGrants[key]; ok && sub.hasAnyFlag(flags) {
		return nil
	}

	allowed, err := policy.Allowed(ctx, a.env, sub, action, obj)
	if err != nil {
		return xerrors.Errorf("evaluate %s policy: %w", obj.Type, err)
	}
	if !allowed {
		return ForbiddenWithInternal(xerrors.New("policy denied"), sub, action, obj)
	}
	return nil
}

// Scope compiles the filter matching exactly the instances of typ the
// subject may view. The result composes with business filters (pagination,
// search) without weakening the security guarantee.
func (a *Authorizer) Scope(ctx context.Context, sub Subject, typ ResourceType) (AuthorizeFilter, error) {
	ctx, span := tracing.StartSpan(ctx,
		trace.WithAttributes(attribute.String("authz.resource_type", string(typ))),
	)
	defer span.End()

	if err := validateSubject(sub); err != nil {
		return nil, err
	}
	policy, ok := a.policies[typ]
	if !ok {
		return nil, &InvalidResourceError{Type: typ, Reason: "no policy registered"}
	}

	if sub.admin() {
		return FilterTrue(), nil
	}
	if sub.Teammate == nil {
		if typ == ResourceObservation {
			// Published world-visible rows only.
			return policy.Scope(ctx, a.env, sub)
		}
		return FilterFalse(), nil
	}

	scope, err := policy.Scope(ctx, a.env, sub)
	if err != nil {
		return nil, err
	}
	if flags, ok := flagGrants[flagKey{Type: typ, Action: ActionShow}]; ok && sub.hasAnyFlag(flags) {
		scope = FilterTrue()
	}

	filter := FilterAnd(termOrgIs{OrgID: sub.Teammate.OrganizationID}, scope)
	if typ == ResourceObservation {
		// Cross-tenant world-visible rows match show but not the tenant
		// clause; keep the scope equivalent to the predicate.
		filter = FilterOr(filter, FilterAnd(
			termPublished{},
			termObservationLevelIn{Levels: []database.ObservationPrivacy{database.ObservationPublicToWorld}},
		))
	}
	return filter, nil
}

func validateSubject(sub Subject) error {
	if sub.Impersonating() && sub.Person == nil {
		return &InvalidSubjectError{Reason: "impersonation with no effective subject"}
	}
	if sub.Teammate != nil && sub.Person == nil {
		return &InvalidSubjectError{Reason: "teammate without a person"}
	}
	if sub.Teammate != nil && sub.Teammate.PersonID != sub.Person.ID {
		return &InvalidSubjectError{Reason: "teammate does not belong to the person"}
	}
	return nil
}

// anonymousSafe lists the reads an unauthenticated subject may attempt; the
// privacy resolver still decides the outcome.
func anonymousSafe(action Action, obj Object) bool {
	return obj.Type == ResourceObservation &&
		(action == ActionShow || action == ActionViewPermalink)
}

func observationRead(action Action, obj Object) bool {
	return obj.Type == ResourceObservation &&
		(action == ActionShow || action == ActionViewPermalink)
}

// Filter evaluates show for each element and returns the visible subset.
// Convenience for small in-memory collections; listing endpoints should use
// Scope instead.
func Filter[T any](ctx context.Context, auth *Authorizer, sub Subject, objects []T, toObject func(T) Object) ([]T, error) {
	filtered := make([]T, 0, len(objects))
	for _, o := range objects {
		err := auth.Authorize(ctx, sub, ActionShow, toObject(o))
		if IsUnauthorizedError(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		filtered = append(filtered, o)
	}
	return filtered, nil
}

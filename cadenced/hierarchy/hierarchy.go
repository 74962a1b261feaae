// Package hierarchy computes transitive managerial relationships between
// teammates by walking employment tenure manager links.
//
// The tenure graph is assumed acyclic but not structurally enforced, so
// every walk carries a visited set and a depth bound. A cycle or an
// over-deep chain resolves to "not a manager" with a logged warning; it is
// never an infinite loop, a panic, or an error surfaced to the caller.
package hierarchy

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/ammario/tlru"
	"github.com/google/uuid"
	"golang.org/x/xerrors"

	"cdr.dev/slog/v3"

	"github.com/cadencehq/cadence/cadenced/database"
)

// MaxDepth bounds every chain walk. Reporting lines deeper than this are
// treated as broken data and deny.
const MaxDepth = 64

const cacheTTL = 30 * time.Second

type cacheKey struct {
	ManagerID uuid.UUID
	SubjectID uuid.UUID
}

type Traverser struct {
	store database.Store
	log   slog.Logger

	// cache holds only default-shaped lookups (open tenures, no former
	// managers). Listing paths call IsManagerOf per candidate row; the TTL
	// bounds how long a reporting-line change takes to become visible here.
	cache *tlru.Cache[cacheKey, bool]
}

func New(store database.Store, log slog.Logger) *Traverser {
	return &Traverser{
		store: store,
		log:   log,
		cache: tlru.New[cacheKey](tlru.ConstantCost[bool], 4096),
	}
}

type traverseOptions struct {
	includeFormerManagers bool
}

type TraverseOption func(*traverseOptions)

// IncludeFormerManagers widens the walk to the most recently ended tenure's
// manager link when a teammate has no open tenure. Policies that retain
// visibility for former reporting lines opt in per resource type.
func IncludeFormerManagers() TraverseOption {
	return func(o *traverseOptions) {
		o.includeFormerManagers = true
	}
}

// IsManagerOf reports whether candidateManagerID transitively manages
// subjectID via the subject's currently open tenure chain.
func (t *Traverser) IsManagerOf(ctx context.Context, candidateManagerID, subjectID uuid.UUID, opts ...TraverseOption) (bool, error) {
	var options traverseOptions
	for _, opt := range opts {
		opt(&options)
	}
	if candidateManagerID == subjectID {
		return false, nil
	}

	cacheable := !options.includeFormerManagers
	key := cacheKey{ManagerID: candidateManagerID, SubjectID: subjectID}
	if cacheable {
		if is, _, ok := t.cache.Get(key); ok {
			return is, nil
		}
	}

	visited := map[uuid.UUID]struct{}{subjectID: {}}
	current := subjectID
	result := false
	for depth := 0; ; depth++ {
		if depth >= MaxDepth {
			t.log.Warn(ctx, "manager chain exceeds depth bound, denying",
				slog.F("subject_id", subjectID),
				slog.F("depth", depth),
			)
			break
		}

		managerID, err := t.managerOf(ctx, current, options)
		if err != nil {
			return false, err
		}
		if managerID == uuid.Nil {
			break
		}
		if _, seen := visited[managerID]; seen {
			t.log.Warn(ctx, "manager chain contains a cycle, denying",
				slog.F("subject_id", subjectID),
				slog.F("cycle_at", managerID),
			)
			break
		}
		visited[managerID] = struct{}{}

		if managerID == candidateManagerID {
			result = true
			break
		}
		current = managerID
	}

	if cacheable {
		t.cache.Set(key, result, cacheTTL)
	}
	return result, nil
}

// ManagementChain returns the ordered transitive managers of subjectID,
// nearest first. The same cycle and depth guards apply; a broken chain
// returns the ancestors collected so far.
func (t *Traverser) ManagementChain(ctx context.Context, subjectID uuid.UUID, opts ...TraverseOption) ([]uuid.UUID, error) {
	var options traverseOptions
	for _, opt := range opts {
		opt(&options)
	}

	var chain []uuid.UUID
	visited := map[uuid.UUID]struct{}{subjectID: {}}
	current := subjectID
	for depth := 0; ; depth++ {
		if depth >= MaxDepth {
			t.log.Warn(ctx, "manager chain exceeds depth bound, truncating",
				slog.F("subject_id", subjectID),
				slog.F("depth", depth),
			)
			break
		}

		managerID, err := t.managerOf(ctx, current, options)
		if err != nil {
			return nil, err
		}
		if managerID == uuid.Nil {
			break
		}
		if _, seen := visited[managerID]; seen {
			t.log.Warn(ctx, "manager chain contains a cycle, truncating",
				slog.F("subject_id", subjectID),
				slog.F("cycle_at", managerID),
			)
			break
		}
		visited[managerID] = struct{}{}
		chain = append(chain, managerID)
		current = managerID
	}
	return chain, nil
}

// ManagedTeammateIDs returns every teammate transitively managed by
// managerID through open tenures, breadth-first. Scope filters embed the
// result so a listing compiles to a single bounded query instead of a
// per-row chain walk. Tenure manager links never cross organizations, so
// the expansion stays within the manager's org.
func (t *Traverser) ManagedTeammateIDs(ctx context.Context, managerID uuid.UUID) ([]uuid.UUID, error) {
	var managed []uuid.UUID
	visited := map[uuid.UUID]struct{}{managerID: {}}
	frontier := []uuid.UUID{managerID}
	for depth := 0; len(frontier) > 0; depth++ {
		if depth >= MaxDepth {
			t.log.Warn(ctx, "report graph exceeds depth bound, truncating",
				slog.F("manager_id", managerID),
				slog.F("depth", depth),
			)
			break
		}

		var next []uuid.UUID
		for _, id := range frontier {
			tenures, err := t.store.ListOpenTenuresByManagerID(ctx, id)
			if err != nil {
				return nil, xerrors.Errorf("list open tenures by manager: %w", err)
			}
			for _, tenure := range tenures {
				if _, seen := visited[tenure.TeammateID]; seen {
					continue
				}
				visited[tenure.TeammateID] = struct{}{}
				managed = append(managed, tenure.TeammateID)
				next = append(next, tenure.TeammateID)
			}
		}
		frontier = next
	}
	return managed, nil
}

// managerOf returns the next manager link for a teammate, or uuid.Nil when
// the chain terminates.
func (t *Traverser) managerOf(ctx context.Context, teammateID uuid.UUID, options traverseOptions) (uuid.UUID, error) {
	tenure, err := t.store.GetOpenTenureByTeammateID(ctx, teammateID)
	if errors.Is(err, sql.ErrNoRows) && options.includeFormerManagers {
		tenure, err = t.store.GetLatestEndedTenureByTeammateID(ctx, teammateID)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, nil
	}
	if err != nil {
		return uuid.Nil, xerrors.Errorf("get tenure for %s: %w", teammateID, err)
	}
	if !tenure.ManagerTeammateID.Valid {
		return uuid.Nil, nil
	}
	return tenure.ManagerTeammateID.UUID, nil
}

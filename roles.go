package ordergate

import (
	"context"
	"time"

	"github.com/dgraph-io/ristretto"
)

// UserRecordSource reads the calling actor's own User record. The parameter
// is always the actor's uid: scoping the fallback to the caller's own record
// keeps "is some other uid a manager" unanswerable by construction.
type UserRecordSource interface {
	GetOwnUser(ctx context.Context, uid string) (*User, error)
}

// RoleResolver reports whether an actor resolves as manager.
type RoleResolver interface {
	Resolve(ctx context.Context, actor *ActorContext) bool
}

// twoTierResolver is the canonical resolver: signed claim first, then a
// single read of the actor's own user record. The claim is cheap (already
// verified with the credential) but may be stale or never issued, e.g. a
// newly promoted manager before the claims-sync job runs; the record read
// guarantees correctness at the cost of one extra read, which is why every
// denied-by-claim check lands on it.
type twoTierResolver struct {
	source   UserRecordSource
	cache    *ristretto.Cache
	cacheTTL time.Duration

	numCounters int64
	maxCost     int64
	bufferItems int64
}

// RoleResolverOption configures the two-tier resolver.
type RoleResolverOption func(*twoTierResolver)

// WithRoleCacheTTL bounds how long a fallback result (manager or not) is
// reused before the record is read again. Zero disables caching.
func WithRoleCacheTTL(ttl time.Duration) RoleResolverOption {
	return func(r *twoTierResolver) { r.cacheTTL = ttl }
}

// WithRoleCacheSize overrides the ristretto sizing of the fallback cache.
func WithRoleCacheSize(numCounters, maxCost, bufferItems int64) RoleResolverOption {
	return func(r *twoTierResolver) {
		r.numCounters = numCounters
		r.maxCost = maxCost
		r.bufferItems = bufferItems
	}
}

// NewRoleResolver builds the claim-then-record resolver. The fallback cache
// is sized for uid keys; it is never consulted on the claim fast path.
func NewRoleResolver(source UserRecordSource, opts ...RoleResolverOption) (RoleResolver, error) {
	r := &twoTierResolver{
		source:      source,
		cacheTTL:    30 * time.Second,
		numCounters: 10_000,
		maxCost:     1_000,
		bufferItems: 64,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.cacheTTL > 0 {
		cache, err := ristretto.NewCache(&ristretto.Config{
			NumCounters: r.numCounters,
			MaxCost:     r.maxCost,
			BufferItems: r.bufferItems,
		})
		if err != nil {
			return nil, err
		}
		r.cache = cache
	}
	return r, nil
}

func (r *twoTierResolver) Resolve(ctx context.Context, actor *ActorContext) bool {
	if actor.IsAnonymous() {
		return false
	}
	// Fast path: the pre-issued claim is authoritative when true.
	if actor.ClaimedManager {
		return true
	}

	if r.cache != nil {
		if v, ok := r.cache.Get(actor.UID); ok {
			if b, ok := v.(bool); ok {
				return b
			}
		}
	}

	// Slow path: one read of the actor's own record. Missing or unreadable
	// records resolve to non-manager (fail closed).
	isManager := false
	if r.source != nil {
		if u, err := r.source.GetOwnUser(ctx, actor.UID); err == nil && u != nil && u.UID == actor.UID {
			isManager = u.IsManager
		}
	}

	if r.cache != nil {
		r.cache.SetWithTTL(actor.UID, isManager, 1, r.cacheTTL)
	}
	return isManager
}

// Invalidate drops a cached fallback result, e.g. after a role mutation.
func (r *twoTierResolver) Invalidate(uid string) {
	if r.cache != nil {
		r.cache.Del(uid)
	}
}

// staticResolver answers from a fixed set; used by config seeding and tests.
type staticResolver struct {
	managers map[string]bool
}

// NewStaticResolver resolves manager status from a fixed uid set. The claim
// fast path still applies before the set is consulted.
func NewStaticResolver(managerUIDs ...string) RoleResolver {
	m := make(map[string]bool, len(managerUIDs))
	for _, uid := range managerUIDs {
		m[uid] = true
	}
	return &staticResolver{managers: m}
}

func (s *staticResolver) Resolve(_ context.Context, actor *ActorContext) bool {
	if actor.IsAnonymous() {
		return false
	}
	if actor.ClaimedManager {
		return true
	}
	return s.managers[actor.UID]
}

package ordergate

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/oarkflow/ordergate/logger"
)

// ============================================================================
// POLICY ENGINE
// ============================================================================

// Engine composes the identity, role, schema, immutability and lifecycle
// gates into a single evaluation entry point, used identically for reads,
// writes and collection queries. Evaluations are stateless and
// side-effect-free; the only I/O is the role resolver's fallback read, so
// unrelated requests may evaluate fully in parallel.
type Engine struct {
	roles       RoleResolver
	logger      logger.Logger
	traceIDFunc logger.TraceIDFunc

	decisionLog DecisionLog
	decisionBuf int
	decisionCh  chan DecisionRecord
	workerDone  chan struct{}
	logMu       sync.RWMutex
	closed      bool
}

// EngineOption configures an Engine.
type EngineOption func(*Engine) error

// WithLogger installs a Logger on the Engine.
func WithLogger(l logger.Logger) EngineOption {
	return func(e *Engine) error {
		e.logger = l
		return nil
	}
}

// WithTraceIDFunc installs a custom trace ID generator on the engine.
func WithTraceIDFunc(f logger.TraceIDFunc) EngineOption {
	return func(e *Engine) error {
		e.traceIDFunc = f
		return nil
	}
}

// WithRoleResolver replaces the default claim-then-record resolver.
func WithRoleResolver(r RoleResolver) EngineOption {
	return func(e *Engine) error {
		if r == nil {
			return fmt.Errorf("role resolver must not be nil")
		}
		e.roles = r
		return nil
	}
}

// WithDecisionLog enables the async decision trail backed by the given store.
func WithDecisionLog(store DecisionLog) EngineOption {
	return func(e *Engine) error {
		e.decisionLog = store
		return nil
	}
}

// WithDecisionBuffer sizes the async decision channel.
func WithDecisionBuffer(n int) EngineOption {
	return func(e *Engine) error {
		if n > 0 {
			e.decisionBuf = n
		}
		return nil
	}
}

// NewEngine builds an engine whose role resolver falls back to the given
// user record source. Pass WithRoleResolver to supply a custom resolver
// (source may then be nil).
func NewEngine(source UserRecordSource, opts ...EngineOption) (*Engine, error) {
	e := &Engine{
		logger:      logger.NewPhusluLogger(),
		traceIDFunc: uuid.NewString,
		decisionBuf: 1024,
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	if e.roles == nil {
		r, err := NewRoleResolver(source)
		if err != nil {
			return nil, err
		}
		e.roles = r
	}

	if e.decisionLog != nil {
		e.decisionCh = make(chan DecisionRecord, e.decisionBuf)
		e.workerDone = make(chan struct{})
		go func() {
			defer close(e.workerDone)
			bg := context.Background()
			for rec := range e.decisionCh {
				if err := e.decisionLog.Append(bg, &rec); err != nil {
					e.logger.Error("decision log append failed", "error", err.Error())
				}
			}
		}()
	}
	return e, nil
}

// Close flushes and stops the decision log worker. Evaluations after Close
// still return decisions; their records are no longer queued.
func (e *Engine) Close() {
	e.logMu.Lock()
	if !e.closed {
		e.closed = true
		if e.decisionCh != nil {
			close(e.decisionCh)
		}
	}
	e.logMu.Unlock()
	if e.workerDone != nil {
		<-e.workerDone
	}
}

// Evaluate decides one (actor, resource, operation, proposed-change) tuple.
// Denials are structural: there is no way to reach an allow without passing
// every gate applicable to the entity kind and operation.
func (e *Engine) Evaluate(ctx context.Context, req Request) *Decision {
	return e.evaluate(ctx, req, false)
}

// Explain evaluates like Evaluate but returns a gate-by-gate trace.
func (e *Engine) Explain(ctx context.Context, req Request) *Decision {
	return e.evaluate(ctx, req, true)
}

func (e *Engine) evaluate(ctx context.Context, req Request, includeTrace bool) *Decision {
	kind := req.requestKind()

	var trace []string
	tr := func(format string, args ...any) {
		if includeTrace {
			trace = append(trace, fmt.Sprintf(format, args...))
		}
	}

	decide := func(d *Decision) *Decision {
		if includeTrace {
			d.Trace = trace
		}
		e.record(req, kind, d)
		return d
	}

	tr("op=%s kind=%s", req.Op, kind)
	if req.Actor.IsAnonymous() {
		tr("DENY: anonymous")
		return decide(deny(CauseUnauthenticated, GateIdentity, "operation requires an authenticated caller"))
	}

	// Role resolution is lazy and memoized per evaluation: owner-path
	// decisions must never trigger the fallback read.
	roleKnown := false
	isManager := false
	resolveManager := func() bool {
		if !roleKnown {
			isManager = e.roles.Resolve(ctx, req.Actor)
			roleKnown = true
			tr("role: manager=%v", isManager)
		}
		return isManager
	}

	switch req.Op {
	case OpCreate:
		return decide(e.evalCreate(req.Actor, kind, req.After, resolveManager, tr))
	case OpRead:
		return decide(e.evalRead(req.Actor, kind, req.Before, resolveManager, tr))
	case OpList:
		return decide(e.evalList(req.Actor, kind, req.Scope, resolveManager, tr))
	case OpUpdate:
		return decide(e.evalUpdate(req.Actor, kind, req.Before, req.After, resolveManager, tr))
	case OpDelete:
		return decide(e.evalDelete(req.Actor, kind, resolveManager, tr))
	}
	return decide(deny(CauseSchemaInvalid, GateSchema, "unknown operation %q", req.Op))
}

func (e *Engine) evalCreate(actor *ActorContext, kind EntityKind, after Entity, resolveManager func() bool, tr func(string, ...any)) *Decision {
	switch kind {
	case KindUser:
		u, ok := after.(*User)
		if !ok || u == nil {
			return deny(CauseSchemaInvalid, GateSchema, "user create requires a user snapshot")
		}
		if v := validateUserCreate(actor, u); len(v) > 0 {
			tr("schema violations: %v", v)
			return deny(CauseSchemaInvalid, GateSchema, "%s", v[0])
		}
		tr("schema ok")
		if u.IsManager && !resolveManager() {
			return deny(CauseSelfEscalationDenied, GateRole,
				"actor %q may not create a record with isManager=true", actor.UID)
		}
		return allow(GateSchema, "user create")

	case KindOrder:
		o, ok := after.(*Order)
		if !ok || o == nil {
			return deny(CauseSchemaInvalid, GateSchema, "order create requires an order snapshot")
		}
		if v := validateOrderCreate(actor, o); len(v) > 0 {
			tr("schema violations: %v", v)
			return deny(CauseSchemaInvalid, GateSchema, "%s", v[0])
		}
		tr("schema ok; ownership triple matches actor")
		return allow(GateSchema, "order create")

	case KindNote:
		n, ok := after.(*OrderNote)
		if !ok || n == nil {
			return deny(CauseSchemaInvalid, GateSchema, "note create requires a note snapshot")
		}
		if v := validateNoteCreate(actor, n); len(v) > 0 {
			tr("schema violations: %v", v)
			return deny(CauseSchemaInvalid, GateSchema, "%s", v[0])
		}
		if !resolveManager() {
			return deny(CausePrivilegeDenied, GateRole, "order notes are created by managers only")
		}
		return allow(GateRole, "note create by manager")

	case KindAuditLog:
		return deny(CausePrivilegeDenied, GateRole,
			"audit log entries are written by the trusted server identity only")
	}
	return deny(CauseSchemaInvalid, GateSchema, "unknown entity kind %q", kind)
}

func (e *Engine) evalRead(actor *ActorContext, kind EntityKind, before Entity, resolveManager func() bool, tr func(string, ...any)) *Decision {
	if before == nil {
		return deny(CauseSchemaInvalid, GateSchema, "read requires the stored snapshot")
	}
	owner := ""
	switch v := before.(type) {
	case *User:
		owner = v.UID
	case *Order:
		owner = v.CreatedByUID
	case *OrderNote:
		owner = v.OrderOwnerUID
	case *AdminAuditLog:
		// Managers only; there is no owner path into the audit log.
		if resolveManager() {
			return allow(GateRole, "audit read by manager")
		}
		return deny(CausePrivilegeDenied, GateRole, "audit log is readable by managers only")
	default:
		return deny(CauseSchemaInvalid, GateSchema, "unknown entity kind %q", kind)
	}

	if owner == actor.UID {
		tr("owner match on %q", owner)
		return allow(GateOwnership, "owner read")
	}
	if resolveManager() {
		return allow(GateRole, "manager read")
	}
	return deny(CausePrivilegeDenied, GateOwnership,
		"actor %q is neither owner %q nor manager", actor.UID, owner)
}

func (e *Engine) evalList(actor *ActorContext, kind EntityKind, scope *QueryScope, resolveManager func() bool, tr func(string, ...any)) *Decision {
	if kind == KindAuditLog {
		if resolveManager() {
			return allow(GateRole, "audit list by manager")
		}
		return deny(CausePrivilegeDenied, GateRole, "audit log is listable by managers only")
	}
	if resolveManager() {
		return allow(GateRole, "unrestricted list by manager")
	}
	// The engine cannot filter after the fact: a non-manager's query must
	// arrive constrained to the actor's own resources.
	if scope == nil || scope.OwnerUID == "" {
		return deny(CausePrivilegeDenied, GateQuery,
			"unconstrained list requires a manager")
	}
	if scope.OwnerUID != actor.UID {
		return deny(CausePrivilegeDenied, GateQuery,
			"list scope %q does not match actor %q", scope.OwnerUID, actor.UID)
	}
	tr("scope constrained to owner %q", scope.OwnerUID)
	return allow(GateQuery, "owner-scoped list")
}

func (e *Engine) evalUpdate(actor *ActorContext, kind EntityKind, before, after Entity, resolveManager func() bool, tr func(string, ...any)) *Decision {
	if before == nil || after == nil {
		return deny(CauseSchemaInvalid, GateSchema, "update requires before and after snapshots")
	}

	switch kind {
	case KindUser:
		ub, okb := before.(*User)
		ua, oka := after.(*User)
		if !okb || !oka {
			return deny(CauseSchemaInvalid, GateSchema, "user update requires user snapshots")
		}
		if ub.UID != actor.UID && !resolveManager() {
			return deny(CausePrivilegeDenied, GateOwnership,
				"actor %q may not update user %q", actor.UID, ub.UID)
		}
		tr("update target user %q", ub.UID)
		if d := checkUserImmutable(actor, ub, ua, resolveManager); d != nil {
			return d
		}
		return allow(GateImmutable, "user update")

	case KindOrder:
		ob, okb := before.(*Order)
		oa, oka := after.(*Order)
		if !okb || !oka {
			return deny(CauseSchemaInvalid, GateSchema, "order update requires order snapshots")
		}
		if ob.CreatedByUID != actor.UID && !resolveManager() {
			return deny(CausePrivilegeDenied, GateOwnership,
				"actor %q is neither owner %q nor manager", actor.UID, ob.CreatedByUID)
		}
		if v := validateOrderUpdate(oa); len(v) > 0 {
			tr("schema violations: %v", v)
			return deny(CauseSchemaInvalid, GateSchema, "%s", v[0])
		}
		if d := checkOrderImmutable(ob, oa); d != nil {
			return d
		}
		if d := gateStatusChange(actor, ob, oa, resolveManager); d != nil {
			return d
		}
		tr("lifecycle ok: %q -> %q", ob.Status, oa.Status)
		return allow(GateLifecycle, "order update")

	case KindNote:
		return deny(CausePrivilegeDenied, GateImmutable,
			"order notes are append-only and are never updated")

	case KindAuditLog:
		return deny(CausePrivilegeDenied, GateImmutable,
			"audit log entries are never updated")
	}
	return deny(CauseSchemaInvalid, GateSchema, "unknown entity kind %q", kind)
}

func (e *Engine) evalDelete(actor *ActorContext, kind EntityKind, resolveManager func() bool, tr func(string, ...any)) *Decision {
	switch kind {
	case KindOrder:
		if resolveManager() {
			return allow(GateRole, "order delete by manager")
		}
		return deny(CausePrivilegeDenied, GateRole, "order delete requires a manager")
	case KindUser:
		return deny(CausePrivilegeDenied, GateRole, "accounts are not deletable through the client path")
	case KindNote:
		return deny(CausePrivilegeDenied, GateRole, "order notes are append-only and are never deleted")
	case KindAuditLog:
		return deny(CausePrivilegeDenied, GateRole, "audit log entries are never deleted")
	}
	return deny(CauseSchemaInvalid, GateSchema, "unknown entity kind %q", kind)
}

// record logs the decision and queues it to the decision trail without
// blocking the hot path; records are dropped when the channel is full.
func (e *Engine) record(req Request, kind EntityKind, d *Decision) {
	actorUID := ""
	if req.Actor != nil {
		actorUID = req.Actor.UID
	}
	key := ""
	if req.Before != nil {
		key = req.Before.Key()
	} else if req.After != nil {
		key = req.After.Key()
	}
	traceID := e.traceIDFunc()

	e.logger.Info("decision",
		"trace_id", traceID,
		"actor", actorUID,
		"kind", string(kind),
		"op", string(req.Op),
		"resource", key,
		"allowed", d.Allowed,
		"cause", string(d.Cause),
		"gate", d.Gate,
		"reason", d.Reason,
	)

	if e.decisionCh == nil {
		return
	}
	rec := DecisionRecord{
		ID:          uuid.NewString(),
		TraceID:     traceID,
		Timestamp:   d.Timestamp,
		ActorUID:    actorUID,
		Kind:        kind,
		Op:          req.Op,
		ResourceKey: key,
		Allowed:     d.Allowed,
		Cause:       d.Cause,
		Gate:        d.Gate,
		Reason:      d.Reason,
	}
	e.logMu.RLock()
	if !e.closed {
		select {
		case e.decisionCh <- rec:
		default:
			// drop rather than block evaluation
		}
	}
	e.logMu.RUnlock()
}

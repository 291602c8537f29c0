package ordergate

import (
	"context"
	"encoding/json"
	"fmt"
)

// ExplainRequest is a JSON-friendly request used by admin tooling (and by
// UI layers that want the engine's answer instead of mirroring its logic).
// Before/After are raw documents decoded according to Kind.
type ExplainRequest struct {
	ActorUID       string          `json:"actor_uid"`
	ActorEmail     string          `json:"actor_email"`
	ClaimedManager bool            `json:"claimed_manager"`
	Op             Operation       `json:"op"`
	Kind           EntityKind      `json:"kind"`
	Before         json.RawMessage `json:"before,omitempty"`
	After          json.RawMessage `json:"after,omitempty"`
	ScopeOwnerUID  string          `json:"scope_owner_uid,omitempty"`
}

// ExplainRequest evaluates the request with tracing enabled.
func (e *Engine) ExplainRequest(ctx context.Context, req *ExplainRequest) (*Decision, error) {
	before, err := decodeEntity(req.Kind, req.Before)
	if err != nil {
		return nil, fmt.Errorf("decode before: %w", err)
	}
	after, err := decodeEntity(req.Kind, req.After)
	if err != nil {
		return nil, fmt.Errorf("decode after: %w", err)
	}
	var scope *QueryScope
	if req.ScopeOwnerUID != "" {
		scope = &QueryScope{OwnerUID: req.ScopeOwnerUID}
	}
	actor := &ActorContext{UID: req.ActorUID, Email: req.ActorEmail, ClaimedManager: req.ClaimedManager}
	return e.Explain(ctx, Request{
		Actor:  actor,
		Op:     req.Op,
		Kind:   req.Kind,
		Before: before,
		After:  after,
		Scope:  scope,
	}), nil
}

func decodeEntity(kind EntityKind, raw json.RawMessage) (Entity, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	switch kind {
	case KindUser:
		u := &User{}
		if err := json.Unmarshal(raw, u); err != nil {
			return nil, err
		}
		return u, nil
	case KindOrder:
		o := &Order{}
		if err := json.Unmarshal(raw, o); err != nil {
			return nil, err
		}
		return o, nil
	case KindNote:
		n := &OrderNote{}
		if err := json.Unmarshal(raw, n); err != nil {
			return nil, err
		}
		return n, nil
	case KindAuditLog:
		l := &AdminAuditLog{}
		if err := json.Unmarshal(raw, l); err != nil {
			return nil, err
		}
		return l, nil
	}
	return nil, fmt.Errorf("unknown entity kind %q", kind)
}

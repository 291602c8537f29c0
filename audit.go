package ordergate

import (
	"context"
	"time"
)

// AuditRecorder is the append-only sink for privileged mutations. It is
// invoked by the surrounding application on a successful privileged
// mutation, never by the engine itself; the engine only gates client reads
// of the log (managers) and denies all client writes and deletes.
type AuditRecorder interface {
	Record(ctx context.Context, entry *AdminAuditLog) error
	List(ctx context.Context, filter AuditFilter) ([]*AdminAuditLog, error)
}

// AuditFilter narrows an audit log query.
type AuditFilter struct {
	PerformedByUID string
	TargetUID      string
	Action         string
	StartTime      time.Time
	EndTime        time.Time
	Limit          int
}

// DecisionRecord is one evaluated request, queued asynchronously off the
// hot path. This is the engine's own observability trail and is distinct
// from the AdminAuditLog contract above.
type DecisionRecord struct {
	ID          string     `json:"id"`
	TraceID     string     `json:"trace_id"`
	Timestamp   time.Time  `json:"timestamp"`
	ActorUID    string     `json:"actor_uid"`
	Kind        EntityKind `json:"kind"`
	Op          Operation  `json:"op"`
	ResourceKey string     `json:"resource_key"`
	Allowed     bool       `json:"allowed"`
	Cause       Cause      `json:"cause,omitempty"`
	Gate        string     `json:"gate,omitempty"`
	Reason      string     `json:"reason"`
}

// DecisionLog persists decision records.
type DecisionLog interface {
	Append(ctx context.Context, rec *DecisionRecord) error
	List(ctx context.Context, filter DecisionFilter) ([]*DecisionRecord, error)
}

// DecisionFilter narrows a decision log query.
type DecisionFilter struct {
	ActorUID  string
	Kind      EntityKind
	Op        Operation
	StartTime time.Time
	EndTime   time.Time
	Limit     int
}

package ordergate

import (
	"fmt"
	"time"
)

// Cause classifies why a request was denied. All causes are terminal,
// non-retryable decisions; the engine never retries on the caller's behalf.
type Cause string

const (
	// CauseNone is set on allowed decisions.
	CauseNone Cause = ""
	// CauseUnauthenticated: no credential was presented.
	CauseUnauthenticated Cause = "Unauthenticated"
	// CauseSchemaInvalid: a required field is missing/malformed or an enum
	// value is outside its fixed set.
	CauseSchemaInvalid Cause = "SchemaInvalid"
	// CauseImmutableFieldChanged: a write-once field differs between the
	// stored and proposed snapshots.
	CauseImmutableFieldChanged Cause = "ImmutableFieldChanged"
	// CausePrivilegeDenied: a non-manager attempted a manager-only
	// transition, delete, role change, or unconstrained query. A failed
	// role-resolver fallback read degrades to this cause as well, since the
	// fail-safe behavior is identical.
	CausePrivilegeDenied Cause = "PrivilegeDenied"
	// CauseSelfEscalationDenied: an actor attempted to elevate or alter
	// their own privileged fields.
	CauseSelfEscalationDenied Cause = "SelfEscalationDenied"
)

// Gate names for Decision.Gate, identifying which check produced the outcome.
const (
	GateIdentity  = "identity"
	GateSchema    = "schema"
	GateOwnership = "ownership"
	GateImmutable = "immutable"
	GateLifecycle = "lifecycle"
	GateRole      = "role"
	GateQuery     = "query"
)

// Decision is the outcome of one evaluation. It is a plain value: there is
// no partial success, and a deny on any gate is a deny for the whole
// operation.
type Decision struct {
	Allowed   bool      `json:"allowed"`
	Cause     Cause     `json:"cause,omitempty"`
	Gate      string    `json:"gate,omitempty"` // which gate decided
	Reason    string    `json:"reason"`
	Trace     []string  `json:"trace,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func allow(gate, reason string) *Decision {
	return &Decision{Allowed: true, Gate: gate, Reason: reason, Timestamp: time.Now()}
}

func deny(cause Cause, gate, format string, args ...any) *Decision {
	return &Decision{
		Allowed:   false,
		Cause:     cause,
		Gate:      gate,
		Reason:    fmt.Sprintf(format, args...),
		Timestamp: time.Now(),
	}
}

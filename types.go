package ordergate

import (
	"time"
)

// ============================================================================
// DOMAIN OBJECTS
// ============================================================================

// ActorContext is the authenticated caller as seen by the engine. A nil
// ActorContext (or one with an empty UID) is an anonymous caller and is
// denied for every operation.
type ActorContext struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	// ClaimedManager carries the pre-issued isManager custom claim from the
	// credential. Claim absence and claim-false are equivalent here; only
	// claim-true short-circuits the role resolver.
	ClaimedManager bool `json:"claimed_manager"`
}

// IsAnonymous reports whether the context represents an unauthenticated caller.
func (a *ActorContext) IsAnonymous() bool {
	return a == nil || a.UID == ""
}

// EntityKind identifies the document collection an operation targets.
type EntityKind string

const (
	KindUser     EntityKind = "user"
	KindOrder    EntityKind = "order"
	KindNote     EntityKind = "orderNote"
	KindAuditLog EntityKind = "adminAuditLog"
)

// Operation is the client-initiated operation being evaluated.
type Operation string

const (
	OpCreate Operation = "create"
	OpRead   Operation = "read"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
	OpList   Operation = "list"
)

// Entity is a document snapshot the engine can evaluate. Key returns the
// storage key of the record (uid for users, id for everything else).
type Entity interface {
	Kind() EntityKind
	Key() string
}

// User represents an application account document.
type User struct {
	UID         string    `json:"uid" yaml:"uid"`
	Email       string    `json:"email" yaml:"email"`
	DisplayName *string   `json:"displayName,omitempty" yaml:"display_name,omitempty"`
	IsManager   bool      `json:"isManager" yaml:"is_manager"`
	IsActive    *bool     `json:"isActive,omitempty" yaml:"is_active,omitempty"`
	CreatedAt   time.Time `json:"createdAt" yaml:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" yaml:"updated_at"`
}

func (u *User) Kind() EntityKind { return KindUser }
func (u *User) Key() string      { return u.UID }

// Status is an order's lifecycle state.
type Status string

const (
	StatusFactoryOrder   Status = "FactoryOrder"
	StatusLocate         Status = "Locate"
	StatusDealerExchange Status = "DealerExchange"
	// StatusReceived is accepted for orders written before the current
	// lifecycle was introduced; Secure/Unsecure never produce it.
	StatusReceived  Status = "Received"
	StatusDelivered Status = "Delivered"
)

// Order represents one vehicle request/deal.
type Order struct {
	ID string `json:"id" yaml:"id"`

	// Ownership triple, write-once after creation.
	CreatedByUID   string    `json:"createdByUid" yaml:"created_by_uid"`
	CreatedByEmail string    `json:"createdByEmail" yaml:"created_by_email"`
	CreatedAt      time.Time `json:"createdAt" yaml:"created_at"`

	Status    Status    `json:"status" yaml:"status"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updated_at"`

	// Free-form business fields, mutable by the owner subject to the
	// lifecycle gate.
	Customer      string  `json:"customer,omitempty" yaml:"customer,omitempty"`
	Salesperson   string  `json:"salesperson,omitempty" yaml:"salesperson,omitempty"`
	Model         string  `json:"model,omitempty" yaml:"model,omitempty"`
	ExteriorColor string  `json:"exteriorColor,omitempty" yaml:"exterior_color,omitempty"`
	InteriorColor string  `json:"interiorColor,omitempty" yaml:"interior_color,omitempty"`
	Price         float64 `json:"price,omitempty" yaml:"price,omitempty"`
	Notes         string  `json:"notes,omitempty" yaml:"notes,omitempty"`
}

func (o *Order) Kind() EntityKind { return KindOrder }
func (o *Order) Key() string      { return o.ID }

// NoteRole is the author role recorded on an OrderNote.
type NoteRole string

const (
	NoteRoleManager NoteRole = "manager"
	NoteRoleAdmin   NoteRole = "admin"
	NoteRoleUser    NoteRole = "user"
)

// OrderNote is an append-style sub-record attached to an order. Notes are
// created only by managers and are never updated or deleted through the
// engine's write path.
type OrderNote struct {
	ID      string `json:"id" yaml:"id"`
	OrderID string `json:"orderId" yaml:"order_id"`
	// OrderOwnerUID is the parent order's createdByUid, supplied by the
	// caller from the parent snapshot; the engine performs no reads of its
	// own to resolve it.
	OrderOwnerUID string `json:"orderOwnerUid" yaml:"order_owner_uid"`

	Text           string    `json:"text" yaml:"text"`
	CreatedAt      time.Time `json:"createdAt" yaml:"created_at"`
	CreatedByUID   string    `json:"createdByUid" yaml:"created_by_uid"`
	CreatedByName  string    `json:"createdByName" yaml:"created_by_name"`
	CreatedByEmail string    `json:"createdByEmail" yaml:"created_by_email"`
	CreatedByRole  NoteRole  `json:"createdByRole" yaml:"created_by_role"`
}

func (n *OrderNote) Kind() EntityKind { return KindNote }
func (n *OrderNote) Key() string      { return n.ID }

// AdminAuditLog is an append-only record of a privileged action. It is
// written exclusively by a trusted server-side identity; the engine only
// gates client reads.
type AdminAuditLog struct {
	ID               string    `json:"id" yaml:"id"`
	Action           string    `json:"action" yaml:"action"`
	PerformedByUID   string    `json:"performedByUid" yaml:"performed_by_uid"`
	PerformedByEmail string    `json:"performedByEmail" yaml:"performed_by_email"`
	TargetUID        string    `json:"targetUid" yaml:"target_uid"`
	TargetEmail      string    `json:"targetEmail" yaml:"target_email"`
	PreviousValue    string    `json:"previousValue" yaml:"previous_value"`
	NewValue         string    `json:"newValue" yaml:"new_value"`
	Timestamp        time.Time `json:"timestamp" yaml:"timestamp"`
	Success          bool      `json:"success" yaml:"success"`
}

func (l *AdminAuditLog) Kind() EntityKind { return KindAuditLog }
func (l *AdminAuditLog) Key() string      { return l.ID }

// QueryScope constrains a list/query operation. A non-manager's list request
// must carry a scope whose OwnerUID equals the actor's uid; an unconstrained
// request (nil scope) from a non-manager is denied outright, never narrowed.
type QueryScope struct {
	OwnerUID string `json:"owner_uid"`
}

// Request is one (actor, resource, operation, proposed-change) tuple.
// Before is the stored snapshot (nil for create/list), After the proposed
// document (nil for read/delete/list). The caller is responsible for the
// atomicity of the underlying write: the snapshots evaluated here must be
// the snapshots the store commits.
type Request struct {
	Actor  *ActorContext
	Op     Operation
	Kind   EntityKind
	Before Entity
	After  Entity
	Scope  *QueryScope // list only
}

// requestKind resolves the entity kind from explicit Kind or the snapshots.
func (r *Request) requestKind() EntityKind {
	if r.Kind != "" {
		return r.Kind
	}
	if r.After != nil {
		return r.After.Kind()
	}
	if r.Before != nil {
		return r.Before.Kind()
	}
	return ""
}

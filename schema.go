package ordergate

import (
	"fmt"
)

// Entity schema validation for create/update. Violations are accumulated so
// callers and tests can see every failed constraint, but any single
// violation denies the whole operation: there are no partial creates.

func validStatus(s Status) bool {
	switch s {
	case StatusFactoryOrder, StatusLocate, StatusDealerExchange, StatusReceived, StatusDelivered:
		return true
	}
	return false
}

func validNoteRole(r NoteRole) bool {
	switch r {
	case NoteRoleManager, NoteRoleAdmin, NoteRoleUser:
		return true
	}
	return false
}

func validateUserCreate(actor *ActorContext, u *User) []string {
	var violations []string
	if u.UID == "" {
		violations = append(violations, "uid is required")
	} else if u.UID != actor.UID {
		violations = append(violations, fmt.Sprintf("uid %q must equal the creating actor's uid %q", u.UID, actor.UID))
	}
	if u.Email == "" {
		violations = append(violations, "email is required")
	} else if u.Email != actor.Email {
		violations = append(violations, fmt.Sprintf("email %q must match the credential email %q", u.Email, actor.Email))
	}
	return violations
}

func validateOrderCreate(actor *ActorContext, o *Order) []string {
	var violations []string
	if o.ID == "" {
		violations = append(violations, "id is required")
	}
	if o.CreatedByUID == "" {
		violations = append(violations, "createdByUid is required")
	} else if o.CreatedByUID != actor.UID {
		violations = append(violations, fmt.Sprintf("createdByUid %q must equal the creating actor's uid %q", o.CreatedByUID, actor.UID))
	}
	if o.CreatedByEmail == "" {
		violations = append(violations, "createdByEmail is required")
	} else if o.CreatedByEmail != actor.Email {
		violations = append(violations, fmt.Sprintf("createdByEmail %q must match the credential email %q", o.CreatedByEmail, actor.Email))
	}
	if o.CreatedAt.IsZero() {
		violations = append(violations, "createdAt is required")
	}
	if !validStatus(o.Status) {
		violations = append(violations, fmt.Sprintf("status %q is not a valid order status", o.Status))
	}
	return violations
}

func validateNoteCreate(actor *ActorContext, n *OrderNote) []string {
	var violations []string
	if n.ID == "" {
		violations = append(violations, "id is required")
	}
	if n.OrderID == "" {
		violations = append(violations, "orderId is required")
	}
	if n.Text == "" {
		violations = append(violations, "text is required")
	}
	if n.CreatedAt.IsZero() {
		violations = append(violations, "createdAt is required")
	}
	if n.CreatedByUID != actor.UID {
		violations = append(violations, fmt.Sprintf("createdByUid %q must equal the creating actor's uid %q", n.CreatedByUID, actor.UID))
	}
	if n.CreatedByEmail != actor.Email {
		violations = append(violations, fmt.Sprintf("createdByEmail %q must match the credential email %q", n.CreatedByEmail, actor.Email))
	}
	if !validNoteRole(n.CreatedByRole) {
		violations = append(violations, fmt.Sprintf("createdByRole %q is not a valid note role", n.CreatedByRole))
	}
	return violations
}

func validateOrderUpdate(o *Order) []string {
	var violations []string
	if !validStatus(o.Status) {
		violations = append(violations, fmt.Sprintf("status %q is not a valid order status", o.Status))
	}
	return violations
}

package ordergate

// Ownership & immutability guard. Each check returns nil when the mutation
// passes; a non-nil Decision is the denial for the whole mutation. There is
// no field-by-field partial application.

// checkUserImmutable enforces the write-once fields of a User record and
// the privileged-field rules around isManager. resolveManager is invoked
// lazily so updates that leave isManager alone never trigger a role read.
func checkUserImmutable(actor *ActorContext, before, after *User, resolveManager func() bool) *Decision {
	if after.UID != before.UID {
		return deny(CauseImmutableFieldChanged, GateImmutable,
			"uid is immutable: %q -> %q", before.UID, after.UID)
	}
	if after.Email != before.Email {
		return deny(CauseImmutableFieldChanged, GateImmutable,
			"email is immutable: %q -> %q", before.Email, after.Email)
	}
	if after.IsManager != before.IsManager {
		// No self-escalation and no self-demotion: a manager can never
		// change their own isManager value through this path.
		if actor.UID == before.UID {
			return deny(CauseSelfEscalationDenied, GateImmutable,
				"actor %q may not change isManager on their own record", actor.UID)
		}
		if !resolveManager() {
			return deny(CausePrivilegeDenied, GateImmutable,
				"actor %q is not a manager and may not change isManager", actor.UID)
		}
	}
	return nil
}

// checkOrderImmutable enforces the ownership triple. The triple is fixed at
// creation for every actor, managers included; a misattributed order is
// corrected with a new record, not a mutation.
func checkOrderImmutable(before, after *Order) *Decision {
	if after.CreatedByUID != before.CreatedByUID {
		return deny(CauseImmutableFieldChanged, GateImmutable,
			"createdByUid is immutable: %q -> %q", before.CreatedByUID, after.CreatedByUID)
	}
	if after.CreatedByEmail != before.CreatedByEmail {
		return deny(CauseImmutableFieldChanged, GateImmutable,
			"createdByEmail is immutable: %q -> %q", before.CreatedByEmail, after.CreatedByEmail)
	}
	if !after.CreatedAt.Equal(before.CreatedAt) {
		return deny(CauseImmutableFieldChanged, GateImmutable,
			"createdAt is immutable")
	}
	return nil
}

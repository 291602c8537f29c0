package ordergate

// Order lifecycle gate. The status space is small and the rule is
// deliberately asymmetric: only a resolved manager may change status, in
// either direction, on any order; owners may freely update everything else.

// UnsecureLanding is where an unsecured order always lands, regardless of
// which status preceded securing. There is no status history.
const UnsecureLanding = StatusFactoryOrder

// Secured reports whether a status is the secured/completed state.
func Secured(s Status) bool { return s == StatusDelivered }

// ActiveStatus reports whether a status counts as an in-flight order.
func ActiveStatus(s Status) bool { return validStatus(s) && s != StatusDelivered }

// Secure returns the status an order moves to when a manager secures it.
func Secure() Status { return StatusDelivered }

// Unsecure returns the status an order moves to when a manager reverts a
// secured order.
func Unsecure() Status { return UnsecureLanding }

// gateStatusChange applies the lifecycle rule to an order update. It
// returns nil when the update passes: either status is unchanged (owners
// editing business fields must succeed) or the actor resolves as manager.
func gateStatusChange(actor *ActorContext, before, after *Order, resolveManager func() bool) *Decision {
	if after.Status == before.Status {
		return nil
	}
	if !resolveManager() {
		return deny(CausePrivilegeDenied, GateLifecycle,
			"status change %q -> %q requires a manager", before.Status, after.Status)
	}
	return nil
}

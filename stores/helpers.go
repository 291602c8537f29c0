package stores

import (
	"time"

	"github.com/oarkflow/date"

	"github.com/oarkflow/ordergate"
)

func parseFlexibleTime(s string) (time.Time, error) {
	return date.Parse(s)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// scanTime normalizes the driver-dependent representations sqlite hands back.
func scanTime(raw any) time.Time {
	switch v := raw.(type) {
	case time.Time:
		return v
	case string:
		if t, err := parseFlexibleTime(v); err == nil {
			return t
		}
	case []byte:
		if t, err := parseFlexibleTime(string(v)); err == nil {
			return t
		}
	}
	return time.Time{}
}

func cloneUser(u *ordergate.User) *ordergate.User {
	if u == nil {
		return nil
	}
	dup := *u
	if u.DisplayName != nil {
		name := *u.DisplayName
		dup.DisplayName = &name
	}
	if u.IsActive != nil {
		active := *u.IsActive
		dup.IsActive = &active
	}
	return &dup
}

func cloneOrder(o *ordergate.Order) *ordergate.Order {
	if o == nil {
		return nil
	}
	dup := *o
	return &dup
}

func cloneNote(n *ordergate.OrderNote) *ordergate.OrderNote {
	if n == nil {
		return nil
	}
	dup := *n
	return &dup
}

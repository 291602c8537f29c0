package stores

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/oarkflow/ordergate"
)

// MemoryUserStore keeps user records in process memory. It satisfies
// ordergate.UserRecordSource for the role resolver's fallback read.
type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[string]*ordergate.User
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[string]*ordergate.User)}
}

func (s *MemoryUserStore) GetOwnUser(_ context.Context, uid string) (*ordergate.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[uid]
	if !ok {
		return nil, nil
	}
	return cloneUser(u), nil
}

func (s *MemoryUserStore) Put(_ context.Context, u *ordergate.User) error {
	if u == nil || u.UID == "" {
		return fmt.Errorf("user uid is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.UID] = cloneUser(u)
	return nil
}

func (s *MemoryUserStore) Delete(_ context.Context, uid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, uid)
	return nil
}

func (s *MemoryUserStore) List(_ context.Context) ([]*ordergate.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*ordergate.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UID < out[j].UID })
	return out, nil
}

// MemoryOrderStore keeps orders and their notes in process memory.
type MemoryOrderStore struct {
	mu     sync.RWMutex
	orders map[string]*ordergate.Order
	notes  map[string][]*ordergate.OrderNote // keyed by order id
}

func NewMemoryOrderStore() *MemoryOrderStore {
	return &MemoryOrderStore{
		orders: make(map[string]*ordergate.Order),
		notes:  make(map[string][]*ordergate.OrderNote),
	}
}

func (s *MemoryOrderStore) Put(_ context.Context, o *ordergate.Order) error {
	if o == nil || o.ID == "" {
		return fmt.Errorf("order id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.ID] = cloneOrder(o)
	return nil
}

func (s *MemoryOrderStore) Get(_ context.Context, id string) (*ordergate.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, nil
	}
	return cloneOrder(o), nil
}

func (s *MemoryOrderStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.orders, id)
	delete(s.notes, id)
	return nil
}

// List returns orders matching the scope. A nil scope returns every order;
// callers are expected to have run the request through the engine first, so
// scoping here is storage-level filtering, not policy.
func (s *MemoryOrderStore) List(_ context.Context, scope *ordergate.QueryScope) ([]*ordergate.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*ordergate.Order, 0, len(s.orders))
	for _, o := range s.orders {
		if scope != nil && scope.OwnerUID != "" && o.CreatedByUID != scope.OwnerUID {
			continue
		}
		out = append(out, cloneOrder(o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryOrderStore) AppendNote(_ context.Context, n *ordergate.OrderNote) error {
	if n == nil || n.ID == "" || n.OrderID == "" {
		return fmt.Errorf("note id and order id are required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes[n.OrderID] = append(s.notes[n.OrderID], cloneNote(n))
	return nil
}

func (s *MemoryOrderStore) Notes(_ context.Context, orderID string) ([]*ordergate.OrderNote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src := s.notes[orderID]
	out := make([]*ordergate.OrderNote, 0, len(src))
	for _, n := range src {
		out = append(out, cloneNote(n))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// MemoryAuditStore is an in-memory ordergate.AuditRecorder.
type MemoryAuditStore struct {
	mu      sync.RWMutex
	entries []*ordergate.AdminAuditLog
}

func NewMemoryAuditStore() *MemoryAuditStore {
	return &MemoryAuditStore{}
}

func (s *MemoryAuditStore) Record(_ context.Context, entry *ordergate.AdminAuditLog) error {
	if entry == nil || entry.ID == "" {
		return fmt.Errorf("audit entry id is required")
	}
	dup := *entry
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, &dup)
	return nil
}

func (s *MemoryAuditStore) List(_ context.Context, filter ordergate.AuditFilter) ([]*ordergate.AdminAuditLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*ordergate.AdminAuditLog
	for _, e := range s.entries {
		if filter.PerformedByUID != "" && e.PerformedByUID != filter.PerformedByUID {
			continue
		}
		if filter.TargetUID != "" && e.TargetUID != filter.TargetUID {
			continue
		}
		if filter.Action != "" && e.Action != filter.Action {
			continue
		}
		if !filter.StartTime.IsZero() && e.Timestamp.Before(filter.StartTime) {
			continue
		}
		if !filter.EndTime.IsZero() && e.Timestamp.After(filter.EndTime) {
			continue
		}
		dup := *e
		out = append(out, &dup)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

// MemoryDecisionLog is an in-memory ordergate.DecisionLog, handy in tests
// and as the default sink for short-lived processes.
type MemoryDecisionLog struct {
	mu      sync.RWMutex
	records []*ordergate.DecisionRecord
}

func NewMemoryDecisionLog() *MemoryDecisionLog {
	return &MemoryDecisionLog{}
}

func (s *MemoryDecisionLog) Append(_ context.Context, rec *ordergate.DecisionRecord) error {
	if rec == nil {
		return fmt.Errorf("decision record is nil")
	}
	dup := *rec
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, &dup)
	return nil
}

func (s *MemoryDecisionLog) List(_ context.Context, filter ordergate.DecisionFilter) ([]*ordergate.DecisionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*ordergate.DecisionRecord
	for _, r := range s.records {
		if filter.ActorUID != "" && r.ActorUID != filter.ActorUID {
			continue
		}
		if filter.Kind != "" && r.Kind != filter.Kind {
			continue
		}
		if filter.Op != "" && r.Op != filter.Op {
			continue
		}
		if !filter.StartTime.IsZero() && r.Timestamp.Before(filter.StartTime) {
			continue
		}
		if !filter.EndTime.IsZero() && r.Timestamp.After(filter.EndTime) {
			continue
		}
		dup := *r
		out = append(out, &dup)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

package stores

import (
	"context"
	"testing"
	"time"

	"github.com/oarkflow/ordergate"
)

func TestMemoryUserStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryUserStore()

	u, err := s.GetOwnUser(ctx, "ghost")
	if err != nil || u != nil {
		t.Fatalf("missing record must be (nil, nil), got %v %v", u, err)
	}

	name := "Manager One"
	if err := s.Put(ctx, &ordergate.User{UID: "m1", Email: "m1@dealer.example", DisplayName: &name, IsManager: true}); err != nil {
		t.Fatalf("put: %v", err)
	}
	u, err = s.GetOwnUser(ctx, "m1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if u == nil || !u.IsManager || u.DisplayName == nil || *u.DisplayName != "Manager One" {
		t.Fatalf("record mismatch: %+v", u)
	}

	// Mutating the returned copy must not leak into the store.
	u.IsManager = false
	again, _ := s.GetOwnUser(ctx, "m1")
	if !again.IsManager {
		t.Fatalf("store must hand out copies")
	}

	if err := s.Delete(ctx, "m1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if u, _ := s.GetOwnUser(ctx, "m1"); u != nil {
		t.Fatalf("expected record gone")
	}
}

func TestMemoryOrderStoreScopedList(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryOrderStore()

	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	orders := []*ordergate.Order{
		{ID: "o1", CreatedByUID: "u2", CreatedByEmail: "u2@dealer.example", CreatedAt: base, Status: ordergate.StatusFactoryOrder},
		{ID: "o2", CreatedByUID: "u3", CreatedByEmail: "u3@dealer.example", CreatedAt: base.Add(time.Hour), Status: ordergate.StatusLocate},
		{ID: "o3", CreatedByUID: "u2", CreatedByEmail: "u2@dealer.example", CreatedAt: base.Add(2 * time.Hour), Status: ordergate.StatusDelivered},
	}
	for _, o := range orders {
		if err := s.Put(ctx, o); err != nil {
			t.Fatalf("put %s: %v", o.ID, err)
		}
	}

	all, err := s.List(ctx, nil)
	if err != nil || len(all) != 3 {
		t.Fatalf("expected 3 orders, got %d (%v)", len(all), err)
	}
	if all[0].ID != "o1" || all[2].ID != "o3" {
		t.Fatalf("expected createdAt ordering, got %s..%s", all[0].ID, all[2].ID)
	}

	mine, err := s.List(ctx, &ordergate.QueryScope{OwnerUID: "u2"})
	if err != nil || len(mine) != 2 {
		t.Fatalf("expected 2 owned orders, got %d (%v)", len(mine), err)
	}
	for _, o := range mine {
		if o.CreatedByUID != "u2" {
			t.Fatalf("scope leak: %+v", o)
		}
	}

	if err := s.Delete(ctx, "o1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if o, _ := s.Get(ctx, "o1"); o != nil {
		t.Fatalf("expected order gone")
	}
}

func TestMemoryOrderStoreNotes(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryOrderStore()

	n1 := &ordergate.OrderNote{ID: "n1", OrderID: "o1", OrderOwnerUID: "u2", Text: "allocation confirmed", CreatedAt: time.Now()}
	n2 := &ordergate.OrderNote{ID: "n2", OrderID: "o1", OrderOwnerUID: "u2", Text: "eta updated", CreatedAt: time.Now().Add(time.Minute)}
	if err := s.AppendNote(ctx, n1); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.AppendNote(ctx, n2); err != nil {
		t.Fatalf("append: %v", err)
	}

	notes, err := s.Notes(ctx, "o1")
	if err != nil || len(notes) != 2 {
		t.Fatalf("expected 2 notes, got %d (%v)", len(notes), err)
	}
	if notes[0].ID != "n1" {
		t.Fatalf("expected append order, got %s first", notes[0].ID)
	}

	if err := s.AppendNote(ctx, &ordergate.OrderNote{ID: "", OrderID: "o1"}); err == nil {
		t.Fatalf("expected error for note without id")
	}
}

func TestMemoryAuditStoreFilter(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryAuditStore()

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	entries := []*ordergate.AdminAuditLog{
		{ID: "a1", Action: "role_change", PerformedByUID: "m1", TargetUID: "u2", Timestamp: base, Success: true},
		{ID: "a2", Action: "role_change", PerformedByUID: "m1", TargetUID: "u3", Timestamp: base.Add(time.Hour), Success: true},
		{ID: "a3", Action: "order_delete", PerformedByUID: "m1", TargetUID: "u2", Timestamp: base.Add(2 * time.Hour), Success: false},
	}
	for _, e := range entries {
		if err := s.Record(ctx, e); err != nil {
			t.Fatalf("record %s: %v", e.ID, err)
		}
	}

	got, err := s.List(ctx, ordergate.AuditFilter{Action: "role_change"})
	if err != nil || len(got) != 2 {
		t.Fatalf("action filter: expected 2, got %d (%v)", len(got), err)
	}
	got, _ = s.List(ctx, ordergate.AuditFilter{TargetUID: "u2"})
	if len(got) != 2 {
		t.Fatalf("target filter: expected 2, got %d", len(got))
	}
	got, _ = s.List(ctx, ordergate.AuditFilter{StartTime: base.Add(30 * time.Minute)})
	if len(got) != 2 {
		t.Fatalf("start filter: expected 2, got %d", len(got))
	}
	got, _ = s.List(ctx, ordergate.AuditFilter{Limit: 1})
	if len(got) != 1 {
		t.Fatalf("limit: expected 1, got %d", len(got))
	}
}

func TestMemoryDecisionLogFilter(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryDecisionLog()

	recs := []*ordergate.DecisionRecord{
		{ID: "d1", ActorUID: "u2", Kind: ordergate.KindOrder, Op: ordergate.OpRead, Allowed: true, Timestamp: time.Now()},
		{ID: "d2", ActorUID: "u3", Kind: ordergate.KindOrder, Op: ordergate.OpUpdate, Allowed: false, Cause: ordergate.CausePrivilegeDenied, Timestamp: time.Now()},
		{ID: "d3", ActorUID: "u2", Kind: ordergate.KindUser, Op: ordergate.OpUpdate, Allowed: true, Timestamp: time.Now()},
	}
	for _, r := range recs {
		if err := s.Append(ctx, r); err != nil {
			t.Fatalf("append %s: %v", r.ID, err)
		}
	}

	got, err := s.List(ctx, ordergate.DecisionFilter{ActorUID: "u2"})
	if err != nil || len(got) != 2 {
		t.Fatalf("actor filter: expected 2, got %d (%v)", len(got), err)
	}
	got, _ = s.List(ctx, ordergate.DecisionFilter{Kind: ordergate.KindOrder, Op: ordergate.OpUpdate})
	if len(got) != 1 || got[0].ID != "d2" {
		t.Fatalf("kind+op filter mismatch: %+v", got)
	}
}

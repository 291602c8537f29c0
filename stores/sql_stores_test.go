package stores

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/oarkflow/squealx"
	_ "modernc.org/sqlite"

	"github.com/oarkflow/ordergate"
)

func newTestDB(t *testing.T) *squealx.DB {
	t.Helper()
	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })
	db := squealx.NewDb(sqlDB, "sqlite", "testdb")
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestSQLUserStoreRoundtrip(t *testing.T) {
	ctx := context.Background()
	s := NewSQLUserStore(newTestDB(t))

	u, err := s.GetOwnUser(ctx, "ghost")
	if err != nil || u != nil {
		t.Fatalf("missing record must be (nil, nil), got %v %v", u, err)
	}

	name := "Manager One"
	active := true
	rec := &ordergate.User{
		UID:         "m1",
		Email:       "m1@dealer.example",
		DisplayName: &name,
		IsManager:   true,
		IsActive:    &active,
		CreatedAt:   time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		UpdatedAt:   time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	if err := s.Put(ctx, rec); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := s.GetOwnUser(ctx, "m1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.Email != "m1@dealer.example" || !got.IsManager {
		t.Fatalf("record mismatch: %+v", got)
	}
	if got.DisplayName == nil || *got.DisplayName != "Manager One" {
		t.Fatalf("display name mismatch: %+v", got.DisplayName)
	}
	if got.IsActive == nil || !*got.IsActive {
		t.Fatalf("is_active mismatch: %+v", got.IsActive)
	}
	if got.CreatedAt.IsZero() {
		t.Fatalf("created_at did not survive the roundtrip")
	}

	// Upsert demotes the record in place.
	rec.IsManager = false
	if err := s.Put(ctx, rec); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	got, _ = s.GetOwnUser(ctx, "m1")
	if got.IsManager {
		t.Fatalf("expected demoted record")
	}

	all, err := s.List(ctx)
	if err != nil || len(all) != 1 {
		t.Fatalf("list: expected 1, got %d (%v)", len(all), err)
	}

	if err := s.Delete(ctx, "m1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got, _ := s.GetOwnUser(ctx, "m1"); got != nil {
		t.Fatalf("expected record gone")
	}
}

func TestSQLOrderStoreRoundtrip(t *testing.T) {
	ctx := context.Background()
	s := NewSQLOrderStore(newTestDB(t))

	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	o := &ordergate.Order{
		ID:             "o1",
		CreatedByUID:   "u2",
		CreatedByEmail: "u2@dealer.example",
		CreatedAt:      base,
		Status:         ordergate.StatusFactoryOrder,
		UpdatedAt:      base,
		Customer:       "Jane Roe",
		Model:          "Model Y",
		ExteriorColor:  "Midnight Silver",
		InteriorColor:  "Black",
		Price:          58999.50,
	}
	if err := s.Put(ctx, o); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Put(ctx, &ordergate.Order{ID: "o2", CreatedByUID: "u3", CreatedByEmail: "u3@dealer.example", CreatedAt: base.Add(time.Hour), Status: ordergate.StatusLocate}); err != nil {
		t.Fatalf("put o2: %v", err)
	}

	got, err := s.Get(ctx, "o1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.Customer != "Jane Roe" || got.Status != ordergate.StatusFactoryOrder || got.Price != 58999.50 {
		t.Fatalf("order mismatch: %+v", got)
	}

	// Upsert flips status, leaves the triple alone.
	o.Status = ordergate.StatusDelivered
	if err := s.Put(ctx, o); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	got, _ = s.Get(ctx, "o1")
	if got.Status != ordergate.StatusDelivered || got.CreatedByUID != "u2" {
		t.Fatalf("upsert mismatch: %+v", got)
	}

	mine, err := s.List(ctx, &ordergate.QueryScope{OwnerUID: "u2"})
	if err != nil || len(mine) != 1 || mine[0].ID != "o1" {
		t.Fatalf("scoped list mismatch: %d (%v)", len(mine), err)
	}
	all, err := s.List(ctx, nil)
	if err != nil || len(all) != 2 {
		t.Fatalf("unscoped list: expected 2, got %d (%v)", len(all), err)
	}

	n := &ordergate.OrderNote{
		ID: "n1", OrderID: "o1", OrderOwnerUID: "u2",
		Text: "allocation confirmed", CreatedAt: base.Add(time.Minute),
		CreatedByUID: "m1", CreatedByName: "Manager One",
		CreatedByEmail: "m1@dealer.example", CreatedByRole: ordergate.NoteRoleManager,
	}
	if err := s.AppendNote(ctx, n); err != nil {
		t.Fatalf("append note: %v", err)
	}
	notes, err := s.Notes(ctx, "o1")
	if err != nil || len(notes) != 1 {
		t.Fatalf("notes: expected 1, got %d (%v)", len(notes), err)
	}
	if notes[0].CreatedByRole != ordergate.NoteRoleManager || notes[0].OrderOwnerUID != "u2" {
		t.Fatalf("note mismatch: %+v", notes[0])
	}

	if err := s.Delete(ctx, "o1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got, _ := s.Get(ctx, "o1"); got != nil {
		t.Fatalf("expected order gone")
	}
	if notes, _ := s.Notes(ctx, "o1"); len(notes) != 0 {
		t.Fatalf("expected notes gone with the order")
	}
}

func TestSQLAuditStoreRoundtrip(t *testing.T) {
	ctx := context.Background()
	s := NewSQLAuditStore(newTestDB(t))

	entry := &ordergate.AdminAuditLog{
		ID:               "a1",
		Action:           "role_change",
		PerformedByUID:   "m1",
		PerformedByEmail: "m1@dealer.example",
		TargetUID:        "u2",
		TargetEmail:      "u2@dealer.example",
		PreviousValue:    "false",
		NewValue:         "true",
		Timestamp:        time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		Success:          true,
	}
	if err := s.Record(ctx, entry); err != nil {
		t.Fatalf("record: %v", err)
	}

	got, err := s.List(ctx, ordergate.AuditFilter{PerformedByUID: "m1", Limit: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(got))
	}
	e := got[0]
	if e.Action != "role_change" || e.TargetUID != "u2" || !e.Success {
		t.Fatalf("entry mismatch: %+v", e)
	}
	if e.Timestamp.IsZero() {
		t.Fatalf("timestamp did not survive the roundtrip")
	}

	if got, _ := s.List(ctx, ordergate.AuditFilter{PerformedByUID: "nobody"}); len(got) != 0 {
		t.Fatalf("expected no entries for unknown performer")
	}
}

func TestSQLDecisionLogRoundtrip(t *testing.T) {
	ctx := context.Background()
	s := NewSQLDecisionLog(newTestDB(t))

	rec := &ordergate.DecisionRecord{
		ID:          "d1",
		TraceID:     "trace-1",
		Timestamp:   time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		ActorUID:    "u3",
		Kind:        ordergate.KindOrder,
		Op:          ordergate.OpUpdate,
		ResourceKey: "o1",
		Allowed:     false,
		Cause:       ordergate.CausePrivilegeDenied,
		Gate:        ordergate.GateLifecycle,
		Reason:      "status change requires a manager",
	}
	if err := s.Append(ctx, rec); err != nil {
		t.Fatalf("append: %v", err)
	}

	got, err := s.List(ctx, ordergate.DecisionFilter{ActorUID: "u3", Limit: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	r := got[0]
	if r.TraceID != "trace-1" || r.Allowed || r.Cause != ordergate.CausePrivilegeDenied || r.Kind != ordergate.KindOrder {
		t.Fatalf("record mismatch: %+v", r)
	}

	if got, _ := s.List(ctx, ordergate.DecisionFilter{Op: ordergate.OpRead}); len(got) != 0 {
		t.Fatalf("expected no records for read op")
	}
}

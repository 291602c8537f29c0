package stores

import (
	"context"

	"github.com/oarkflow/squealx"

	"github.com/oarkflow/ordergate"
)

// SQLAuditStore persists admin audit entries in SQL. It implements
// ordergate.AuditRecorder.
type SQLAuditStore struct {
	db *squealx.DB
}

func NewSQLAuditStore(db *squealx.DB) *SQLAuditStore {
	return &SQLAuditStore{db: db}
}

func (s *SQLAuditStore) Record(ctx context.Context, entry *ordergate.AdminAuditLog) error {
	q := `INSERT INTO admin_audit_log(id, action, performed_by_uid, performed_by_email, target_uid, target_email, previous_value, new_value, timestamp, success)
VALUES(:id, :action, :performed_by_uid, :performed_by_email, :target_uid, :target_email, :previous_value, :new_value, :timestamp, :success)`
	_, err := s.db.NamedExecContext(ctx, q, map[string]any{
		"id":                 entry.ID,
		"action":             entry.Action,
		"performed_by_uid":   entry.PerformedByUID,
		"performed_by_email": entry.PerformedByEmail,
		"target_uid":         entry.TargetUID,
		"target_email":       entry.TargetEmail,
		"previous_value":     entry.PreviousValue,
		"new_value":          entry.NewValue,
		"timestamp":          entry.Timestamp,
		"success":            boolToInt(entry.Success),
	})
	return err
}

func (s *SQLAuditStore) List(ctx context.Context, filter ordergate.AuditFilter) ([]*ordergate.AdminAuditLog, error) {
	q := `SELECT id, action, performed_by_uid, performed_by_email, target_uid, target_email, previous_value, new_value, timestamp, success FROM admin_audit_log WHERE 1=1`
	params := map[string]any{}
	if filter.PerformedByUID != "" {
		q += " AND performed_by_uid = :performed_by_uid"
		params["performed_by_uid"] = filter.PerformedByUID
	}
	if filter.TargetUID != "" {
		q += " AND target_uid = :target_uid"
		params["target_uid"] = filter.TargetUID
	}
	if filter.Action != "" {
		q += " AND action = :action"
		params["action"] = filter.Action
	}
	if !filter.StartTime.IsZero() {
		q += " AND timestamp >= :start"
		params["start"] = filter.StartTime
	}
	if !filter.EndTime.IsZero() {
		q += " AND timestamp <= :end"
		params["end"] = filter.EndTime
	}
	q += " ORDER BY timestamp"
	if filter.Limit > 0 {
		q += " LIMIT :limit"
		params["limit"] = filter.Limit
	} else {
		q += " LIMIT 100"
	}
	r, err := s.db.NamedQueryContext(ctx, q, params)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	out := make([]*ordergate.AdminAuditLog, 0)
	for r.Next() {
		var e ordergate.AdminAuditLog
		var timestampRaw any
		var success int
		if err := r.Scan(&e.ID, &e.Action, &e.PerformedByUID, &e.PerformedByEmail, &e.TargetUID, &e.TargetEmail, &e.PreviousValue, &e.NewValue, &timestampRaw, &success); err != nil {
			return nil, err
		}
		e.Timestamp = scanTime(timestampRaw)
		e.Success = success != 0
		out = append(out, &e)
	}
	return out, nil
}

// SQLDecisionLog persists engine decision records in SQL. It implements
// ordergate.DecisionLog and is safe to share with the engine's background
// writer.
type SQLDecisionLog struct {
	db *squealx.DB
}

func NewSQLDecisionLog(db *squealx.DB) *SQLDecisionLog {
	return &SQLDecisionLog{db: db}
}

func (s *SQLDecisionLog) Append(ctx context.Context, rec *ordergate.DecisionRecord) error {
	q := `INSERT INTO decision_log(id, trace_id, timestamp, actor_uid, kind, op, resource_key, allowed, cause, gate, reason)
VALUES(:id, :trace_id, :timestamp, :actor_uid, :kind, :op, :resource_key, :allowed, :cause, :gate, :reason)`
	_, err := s.db.NamedExecContext(ctx, q, map[string]any{
		"id":           rec.ID,
		"trace_id":     rec.TraceID,
		"timestamp":    rec.Timestamp,
		"actor_uid":    rec.ActorUID,
		"kind":         string(rec.Kind),
		"op":           string(rec.Op),
		"resource_key": rec.ResourceKey,
		"allowed":      boolToInt(rec.Allowed),
		"cause":        string(rec.Cause),
		"gate":         rec.Gate,
		"reason":       rec.Reason,
	})
	return err
}

func (s *SQLDecisionLog) List(ctx context.Context, filter ordergate.DecisionFilter) ([]*ordergate.DecisionRecord, error) {
	q := `SELECT id, trace_id, timestamp, actor_uid, kind, op, resource_key, allowed, cause, gate, reason FROM decision_log WHERE 1=1`
	params := map[string]any{}
	if filter.ActorUID != "" {
		q += " AND actor_uid = :actor_uid"
		params["actor_uid"] = filter.ActorUID
	}
	if filter.Kind != "" {
		q += " AND kind = :kind"
		params["kind"] = string(filter.Kind)
	}
	if filter.Op != "" {
		q += " AND op = :op"
		params["op"] = string(filter.Op)
	}
	if !filter.StartTime.IsZero() {
		q += " AND timestamp >= :start"
		params["start"] = filter.StartTime
	}
	if !filter.EndTime.IsZero() {
		q += " AND timestamp <= :end"
		params["end"] = filter.EndTime
	}
	q += " ORDER BY timestamp"
	if filter.Limit > 0 {
		q += " LIMIT :limit"
		params["limit"] = filter.Limit
	} else {
		q += " LIMIT 100"
	}
	r, err := s.db.NamedQueryContext(ctx, q, params)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	out := make([]*ordergate.DecisionRecord, 0)
	for r.Next() {
		var rec ordergate.DecisionRecord
		var kind, op, cause string
		var timestampRaw any
		var allowed int
		if err := r.Scan(&rec.ID, &rec.TraceID, &timestampRaw, &rec.ActorUID, &kind, &op, &rec.ResourceKey, &allowed, &cause, &rec.Gate, &rec.Reason); err != nil {
			return nil, err
		}
		rec.Timestamp = scanTime(timestampRaw)
		rec.Kind = ordergate.EntityKind(kind)
		rec.Op = ordergate.Operation(op)
		rec.Allowed = allowed != 0
		rec.Cause = ordergate.Cause(cause)
		out = append(out, &rec)
	}
	return out, nil
}

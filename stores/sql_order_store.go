package stores

import (
	"context"

	"github.com/oarkflow/squealx"

	"github.com/oarkflow/ordergate"
)

// SQLOrderStore persists orders and their notes in SQL (squealx).
type SQLOrderStore struct {
	db *squealx.DB
}

func NewSQLOrderStore(db *squealx.DB) *SQLOrderStore {
	return &SQLOrderStore{db: db}
}

func (s *SQLOrderStore) Put(ctx context.Context, o *ordergate.Order) error {
	q := `INSERT INTO orders(id, created_by_uid, created_by_email, created_at, status, updated_at, customer, salesperson, model, exterior_color, interior_color, price, notes)
VALUES(:id, :created_by_uid, :created_by_email, :created_at, :status, :updated_at, :customer, :salesperson, :model, :exterior_color, :interior_color, :price, :notes)
ON CONFLICT(id) DO UPDATE SET status=:status, updated_at=:updated_at, customer=:customer, salesperson=:salesperson, model=:model, exterior_color=:exterior_color, interior_color=:interior_color, price=:price, notes=:notes`
	_, err := s.db.NamedExecContext(ctx, q, map[string]any{
		"id":               o.ID,
		"created_by_uid":   o.CreatedByUID,
		"created_by_email": o.CreatedByEmail,
		"created_at":       o.CreatedAt,
		"status":           string(o.Status),
		"updated_at":       o.UpdatedAt,
		"customer":         o.Customer,
		"salesperson":      o.Salesperson,
		"model":            o.Model,
		"exterior_color":   o.ExteriorColor,
		"interior_color":   o.InteriorColor,
		"price":            o.Price,
		"notes":            o.Notes,
	})
	return err
}

func (s *SQLOrderStore) Get(ctx context.Context, id string) (*ordergate.Order, error) {
	q := orderSelect + ` WHERE id = :id`
	r, err := s.db.NamedQueryContext(ctx, q, map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	defer r.Close()
	if !r.Next() {
		return nil, nil
	}
	return scanOrder(r)
}

func (s *SQLOrderStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.NamedExecContext(ctx, `DELETE FROM order_notes WHERE order_id = :id`, map[string]any{"id": id}); err != nil {
		return err
	}
	_, err := s.db.NamedExecContext(ctx, `DELETE FROM orders WHERE id = :id`, map[string]any{"id": id})
	return err
}

// List returns orders matching the scope. Scoping here is storage-level
// filtering; the engine decides whether a given scope is permitted.
func (s *SQLOrderStore) List(ctx context.Context, scope *ordergate.QueryScope) ([]*ordergate.Order, error) {
	q := orderSelect
	params := map[string]any{}
	if scope != nil && scope.OwnerUID != "" {
		q += " WHERE created_by_uid = :owner"
		params["owner"] = scope.OwnerUID
	}
	q += " ORDER BY created_at"
	r, err := s.db.NamedQueryContext(ctx, q, params)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	out := make([]*ordergate.Order, 0)
	for r.Next() {
		o, err := scanOrder(r)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

func (s *SQLOrderStore) AppendNote(ctx context.Context, n *ordergate.OrderNote) error {
	q := `INSERT INTO order_notes(id, order_id, order_owner_uid, text, created_at, created_by_uid, created_by_name, created_by_email, created_by_role)
VALUES(:id, :order_id, :order_owner_uid, :text, :created_at, :created_by_uid, :created_by_name, :created_by_email, :created_by_role)`
	_, err := s.db.NamedExecContext(ctx, q, map[string]any{
		"id":               n.ID,
		"order_id":         n.OrderID,
		"order_owner_uid":  n.OrderOwnerUID,
		"text":             n.Text,
		"created_at":       n.CreatedAt,
		"created_by_uid":   n.CreatedByUID,
		"created_by_name":  n.CreatedByName,
		"created_by_email": n.CreatedByEmail,
		"created_by_role":  string(n.CreatedByRole),
	})
	return err
}

func (s *SQLOrderStore) Notes(ctx context.Context, orderID string) ([]*ordergate.OrderNote, error) {
	q := `SELECT id, order_id, order_owner_uid, text, created_at, created_by_uid, created_by_name, created_by_email, created_by_role FROM order_notes WHERE order_id = :order_id ORDER BY created_at`
	r, err := s.db.NamedQueryContext(ctx, q, map[string]any{"order_id": orderID})
	if err != nil {
		return nil, err
	}
	defer r.Close()
	out := make([]*ordergate.OrderNote, 0)
	for r.Next() {
		var n ordergate.OrderNote
		var role string
		var createdRaw any
		if err := r.Scan(&n.ID, &n.OrderID, &n.OrderOwnerUID, &n.Text, &createdRaw, &n.CreatedByUID, &n.CreatedByName, &n.CreatedByEmail, &role); err != nil {
			return nil, err
		}
		n.CreatedAt = scanTime(createdRaw)
		n.CreatedByRole = ordergate.NoteRole(role)
		out = append(out, &n)
	}
	return out, nil
}

const orderSelect = `SELECT id, created_by_uid, created_by_email, created_at, status, updated_at, customer, salesperson, model, exterior_color, interior_color, price, notes FROM orders`

func scanOrder(r rowScanner) (*ordergate.Order, error) {
	var o ordergate.Order
	var status string
	var createdRaw, updatedRaw any
	if err := r.Scan(&o.ID, &o.CreatedByUID, &o.CreatedByEmail, &createdRaw, &status, &updatedRaw, &o.Customer, &o.Salesperson, &o.Model, &o.ExteriorColor, &o.InteriorColor, &o.Price, &o.Notes); err != nil {
		return nil, err
	}
	o.CreatedAt = scanTime(createdRaw)
	o.UpdatedAt = scanTime(updatedRaw)
	o.Status = ordergate.Status(status)
	return &o, nil
}

package stores

import (
	"context"
	"database/sql"

	"github.com/oarkflow/squealx"

	"github.com/oarkflow/ordergate"
)

// SQLUserStore persists user records in SQL (squealx). It satisfies
// ordergate.UserRecordSource.
type SQLUserStore struct {
	db *squealx.DB
}

func NewSQLUserStore(db *squealx.DB) *SQLUserStore {
	return &SQLUserStore{db: db}
}

func (s *SQLUserStore) Put(ctx context.Context, u *ordergate.User) error {
	q := `INSERT INTO users(uid, email, display_name, is_manager, is_active, created_at, updated_at)
VALUES(:uid, :email, :display_name, :is_manager, :is_active, :created_at, :updated_at)
ON CONFLICT(uid) DO UPDATE SET email=:email, display_name=:display_name, is_manager=:is_manager, is_active=:is_active, updated_at=:updated_at`
	var displayName any
	if u.DisplayName != nil {
		displayName = *u.DisplayName
	}
	var isActive any
	if u.IsActive != nil {
		isActive = boolToInt(*u.IsActive)
	}
	_, err := s.db.NamedExecContext(ctx, q, map[string]any{
		"uid":          u.UID,
		"email":        u.Email,
		"display_name": displayName,
		"is_manager":   boolToInt(u.IsManager),
		"is_active":    isActive,
		"created_at":   u.CreatedAt,
		"updated_at":   u.UpdatedAt,
	})
	return err
}

// GetOwnUser returns the stored record for uid, or (nil, nil) when the
// record does not exist. The role resolver treats both a missing record and
// an error as non-manager.
func (s *SQLUserStore) GetOwnUser(ctx context.Context, uid string) (*ordergate.User, error) {
	q := `SELECT uid, email, display_name, is_manager, is_active, created_at, updated_at FROM users WHERE uid = :uid`
	r, err := s.db.NamedQueryContext(ctx, q, map[string]any{"uid": uid})
	if err != nil {
		return nil, err
	}
	defer r.Close()
	if !r.Next() {
		return nil, nil
	}
	return scanUser(r)
}

func (s *SQLUserStore) Delete(ctx context.Context, uid string) error {
	q := `DELETE FROM users WHERE uid = :uid`
	_, err := s.db.NamedExecContext(ctx, q, map[string]any{"uid": uid})
	return err
}

func (s *SQLUserStore) List(ctx context.Context) ([]*ordergate.User, error) {
	q := `SELECT uid, email, display_name, is_manager, is_active, created_at, updated_at FROM users ORDER BY uid`
	r, err := s.db.NamedQueryContext(ctx, q, map[string]any{})
	if err != nil {
		return nil, err
	}
	defer r.Close()
	out := make([]*ordergate.User, 0)
	for r.Next() {
		u, err := scanUser(r)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(r rowScanner) (*ordergate.User, error) {
	var uid, email string
	var displayName sql.NullString
	var isManager int
	var isActive sql.NullInt64
	var createdRaw, updatedRaw any
	if err := r.Scan(&uid, &email, &displayName, &isManager, &isActive, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}
	u := &ordergate.User{
		UID:       uid,
		Email:     email,
		IsManager: isManager != 0,
		CreatedAt: scanTime(createdRaw),
		UpdatedAt: scanTime(updatedRaw),
	}
	if displayName.Valid {
		name := displayName.String
		u.DisplayName = &name
	}
	if isActive.Valid {
		active := isActive.Int64 != 0
		u.IsActive = &active
	}
	return u, nil
}

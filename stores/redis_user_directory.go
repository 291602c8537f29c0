package stores

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oarkflow/ordergate"
)

// RedisUserDirectory mirrors user records into Redis hashes (key: user:{uid})
// so the role resolver's fallback read does not hit the primary store. It
// satisfies ordergate.UserRecordSource.
type RedisUserDirectory struct {
	client *redis.Client
	keyFmt string // format string, e.g. "user:%s"
}

func NewRedisUserDirectory(client *redis.Client) *RedisUserDirectory {
	return &RedisUserDirectory{client: client, keyFmt: "user:%s"}
}

func (r *RedisUserDirectory) key(uid string) string {
	return fmt.Sprintf(r.keyFmt, uid)
}

func (r *RedisUserDirectory) Put(ctx context.Context, u *ordergate.User) error {
	if u == nil || u.UID == "" {
		return fmt.Errorf("user uid is required")
	}
	fields := map[string]any{
		"uid":        u.UID,
		"email":      u.Email,
		"is_manager": boolToInt(u.IsManager),
		"created_at": u.CreatedAt.Format(time.RFC3339Nano),
		"updated_at": u.UpdatedAt.Format(time.RFC3339Nano),
	}
	if u.DisplayName != nil {
		fields["display_name"] = *u.DisplayName
	}
	if u.IsActive != nil {
		fields["is_active"] = boolToInt(*u.IsActive)
	}
	return r.client.HSet(ctx, r.key(u.UID), fields).Err()
}

// GetOwnUser returns (nil, nil) when the hash is absent, matching the
// missing-record contract of the other user stores.
func (r *RedisUserDirectory) GetOwnUser(ctx context.Context, uid string) (*ordergate.User, error) {
	res, err := r.client.HGetAll(ctx, r.key(uid)).Result()
	if err != nil {
		return nil, err
	}
	if len(res) == 0 {
		return nil, nil
	}
	u := &ordergate.User{
		UID:       res["uid"],
		Email:     res["email"],
		IsManager: res["is_manager"] == "1",
	}
	if name, ok := res["display_name"]; ok {
		u.DisplayName = &name
	}
	if active, ok := res["is_active"]; ok {
		b := active == "1"
		u.IsActive = &b
	}
	if raw := res["created_at"]; raw != "" {
		if t, err := parseFlexibleTime(raw); err == nil {
			u.CreatedAt = t
		}
	}
	if raw := res["updated_at"]; raw != "" {
		if t, err := parseFlexibleTime(raw); err == nil {
			u.UpdatedAt = t
		}
	}
	return u, nil
}

func (r *RedisUserDirectory) Delete(ctx context.Context, uid string) error {
	return r.client.Del(ctx, r.key(uid)).Err()
}

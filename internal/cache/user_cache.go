// Package cache は Redis を使ったユーザープロフィールのキャッシュです。
// ユーザーは作成後に変更も削除もされないため、無効化は不要で TTL だけで管理します。
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"taskboard/backend/internal/models"
)

type UserCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewUserCache(rdb *redis.Client, ttl time.Duration) *UserCache {
	return &UserCache{rdb: rdb, ttl: ttl}
}

// NewRedisClient は接続を確認した Redis クライアントを返します。
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

func userKey(id string) string {
	return "user:" + id
}

type cachedUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Get はキャッシュ済みのユーザーを返します。見つからなければ ok は false です。
// パスワードハッシュはキャッシュしません。
func (c *UserCache) Get(ctx context.Context, id string) (*models.User, bool, error) {
	b, err := c.rdb.Get(ctx, userKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var cu cachedUser
	if err := json.Unmarshal(b, &cu); err != nil {
		return nil, false, err
	}
	return &models.User{
		ID:        cu.ID,
		Email:     cu.Email,
		FullName:  cu.FullName,
		CreatedAt: cu.CreatedAt.UTC(),
		UpdatedAt: cu.UpdatedAt.UTC(),
	}, true, nil
}

func (c *UserCache) Set(ctx context.Context, u *models.User) error {
	b, err := json.Marshal(cachedUser{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	})
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, userKey(u.ID), b, c.ttl).Err()
}

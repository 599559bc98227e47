package storage

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/pos-checkout/internal/core/domain"
)

const catalogKeyPrefix = "catalog:"

var releaseScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
	return redis.call('DEL', KEYS[1])
end
return 0
`)

type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func (r *RedisAdapter) AcquireSubmission(ctx context.Context, key, token string, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

func (r *RedisAdapter) ReleaseSubmission(ctx context.Context, key, token string) error {
	return releaseScript.Run(ctx, r.client, []string{key}, token).Err()
}

func (r *RedisAdapter) GetCatalog(ctx context.Context, tenantID int64) ([]domain.CatalogItem, bool, error) {
	data, err := r.client.Get(ctx, catalogKey(tenantID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var items []domain.CatalogItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, false, err
	}
	return items, true, nil
}

func (r *RedisAdapter) SetCatalog(ctx context.Context, tenantID int64, items []domain.CatalogItem, ttl time.Duration) error {
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, catalogKey(tenantID), data, ttl).Err()
}

func (r *RedisAdapter) InvalidateCatalog(ctx context.Context, tenantID int64) error {
	return r.client.Del(ctx, catalogKey(tenantID)).Err()
}

func catalogKey(tenantID int64) string {
	return catalogKeyPrefix + strconv.FormatInt(tenantID, 10)
}

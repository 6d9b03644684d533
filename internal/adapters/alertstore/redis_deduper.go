package alertstore

import (
	"context"
	"fmt"

	portssvc "github.com/SscSPs/vet_clinic_backend/internal/core/ports/services"
	"github.com/redis/go-redis/v9"
)

// DefaultAlertSetKey is the redis set holding the ids of alerted products.
const DefaultAlertSetKey = "vet_clinic:low_stock_alerted"

// RedisAlertDeduper shares alert marks between instances through a redis set.
type RedisAlertDeduper struct {
	client *redis.Client
	setKey string
}

func NewRedisAlertDeduper(client *redis.Client, setKey string) *RedisAlertDeduper {
	if setKey == "" {
		setKey = DefaultAlertSetKey
	}
	return &RedisAlertDeduper{client: client, setKey: setKey}
}

var _ portssvc.AlertDeduper = (*RedisAlertDeduper)(nil)

func (d *RedisAlertDeduper) NewBreaches(ctx context.Context, breached []string) ([]string, error) {
	members, err := d.client.SMembers(ctx, d.setKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read alert marks: %w", err)
	}
	marked := make(map[string]bool, len(members))
	for _, m := range members {
		marked[m] = true
	}
	current := make(map[string]bool, len(breached))
	fresh := []string{}
	for _, id := range breached {
		current[id] = true
		if !marked[id] {
			fresh = append(fresh, id)
		}
	}
	var recovered []string
	for _, m := range members {
		if !current[m] {
			recovered = append(recovered, m)
		}
	}

	_, err = d.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if len(fresh) > 0 {
			pipe.SAdd(ctx, d.setKey, toMembers(fresh)...)
		}
		if len(recovered) > 0 {
			pipe.SRem(ctx, d.setKey, toMembers(recovered)...)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update alert marks: %w", err)
	}
	return fresh, nil
}

func (d *RedisAlertDeduper) Forget(ctx context.Context, productIDs []string) error {
	if len(productIDs) == 0 {
		return nil
	}
	if err := d.client.SRem(ctx, d.setKey, toMembers(productIDs)...).Err(); err != nil {
		return fmt.Errorf("failed to clear alert marks: %w", err)
	}
	return nil
}

func toMembers(ids []string) []interface{} {
	members := make([]interface{}, len(ids))
	for i, id := range ids {
		members[i] = id
	}
	return members
}

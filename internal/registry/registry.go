// Package registry tracks which batches have been fully released, backed by
// a Redis set shared with the release workflow. The engine treats this set
// as authoritative and unions it with the release-label exclusion it derives
// from the records themselves.
package registry

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const releasedKey = "released_batches"

type ReleasedBatchRegistry struct {
	client *redis.Client
}

func NewReleasedBatchRegistry(redisAddr string) (*ReleasedBatchRegistry, error) {
	client := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &ReleasedBatchRegistry{client: client}, nil
}

// Released returns the current set of released batch numbers.
func (r *ReleasedBatchRegistry) Released(ctx context.Context) (map[string]bool, error) {
	members, err := r.client.SMembers(ctx, releasedKey).Result()
	if err != nil {
		return nil, err
	}

	released := make(map[string]bool, len(members))
	for _, m := range members {
		released[m] = true
	}

	return released, nil
}

func (r *ReleasedBatchRegistry) MarkReleased(ctx context.Context, batchNos ...string) error {
	if len(batchNos) == 0 {
		return nil
	}

	members := make([]any, len(batchNos))
	for i, b := range batchNos {
		members[i] = b
	}

	return r.client.SAdd(ctx, releasedKey, members...).Err()
}

func (r *ReleasedBatchRegistry) Unmark(ctx context.Context, batchNo string) error {
	return r.client.SRem(ctx, releasedKey, batchNo).Err()
}

func (r *ReleasedBatchRegistry) Close() error {
	return r.client.Close()
}

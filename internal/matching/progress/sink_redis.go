package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"carebridge/internal/matching/models"
	id "carebridge/pkg/domain"
	"carebridge/pkg/platform/sentinel"
)

const progressTTL = 24 * time.Hour

// RedisSink stores the latest progress per batch under a keyed JSON value
// with a TTL, so finished batches age out on their own.
type RedisSink struct {
	client *goredis.Client
}

// NewRedis constructs a Redis-backed progress sink.
func NewRedis(client *goredis.Client) *RedisSink {
	return &RedisSink{client: client}
}

func progressKey(batchID id.BatchID) string {
	return fmt.Sprintf("carebridge:bulk:progress:%s", batchID.String())
}

func (s *RedisSink) Publish(ctx context.Context, progress models.BulkProgress) error {
	payload, err := json.Marshal(progress)
	if err != nil {
		return fmt.Errorf("marshal bulk progress: %w", err)
	}
	if err := s.client.Set(ctx, progressKey(progress.BatchID), payload, progressTTL).Err(); err != nil {
		return fmt.Errorf("publish bulk progress: %w", err)
	}
	return nil
}

func (s *RedisSink) Fetch(ctx context.Context, batchID id.BatchID) (*models.BulkProgress, error) {
	payload, err := s.client.Get(ctx, progressKey(batchID)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("fetch bulk progress: %w", err)
	}
	var progress models.BulkProgress
	if err := json.Unmarshal(payload, &progress); err != nil {
		return nil, fmt.Errorf("unmarshal bulk progress: %w", err)
	}
	return &progress, nil
}

//go:build integration

package progress_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"carebridge/internal/matching/models"
	"carebridge/internal/matching/progress"
	"carebridge/internal/matching/store/scorecache"
	id "carebridge/pkg/domain"
	"carebridge/pkg/platform/sentinel"
	"carebridge/pkg/testutil/containers"
)

type RedisSinkSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	sink  *progress.RedisSink
	cache *scorecache.RedisCache
}

func TestRedisSinkSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisSinkSuite))
}

func (s *RedisSinkSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.redis = mgr.GetRedis(s.T())
	s.sink = progress.NewRedis(s.redis.Client)
	s.cache = scorecache.NewRedis(s.redis.Client)
}

func (s *RedisSinkSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisSinkSuite) TestPublishOverwritesAndFetches() {
	ctx := context.Background()
	batchID := id.NewBatchID()

	first := models.BulkProgress{BatchID: batchID, Completed: 1, Total: 4, Committed: 1}
	s.Require().NoError(s.sink.Publish(ctx, first))

	second := models.BulkProgress{BatchID: batchID, Completed: 4, Total: 4, Committed: 3, Skipped: 1, Done: true}
	s.Require().NoError(s.sink.Publish(ctx, second))

	got, err := s.sink.Fetch(ctx, batchID)
	s.Require().NoError(err)
	s.Equal(second, *got)
	s.InDelta(1.0, got.Fraction(), 0.0001)
}

func (s *RedisSinkSuite) TestFetchUnknownBatch() {
	_, err := s.sink.Fetch(context.Background(), id.NewBatchID())
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisSinkSuite) TestScoreCacheRoundTrip() {
	ctx := context.Background()
	familyID := id.NewFamilyID()

	missed, err := s.cache.Get(ctx, familyID)
	s.Require().NoError(err)
	s.Nil(missed)

	score := models.PriorityScore{
		Score:    82,
		Tier:     models.TierCritical,
		WaitDays: 6,
		Breakdown: models.PriorityBreakdown{
			Base:           50,
			WaitTime:       12,
			MedicalUrgency: 20,
		},
	}
	s.Require().NoError(s.cache.Set(ctx, familyID, score))

	got, err := s.cache.Get(ctx, familyID)
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal(score, *got)

	s.Require().NoError(s.cache.Invalidate(ctx, familyID))
	gone, err := s.cache.Get(ctx, familyID)
	s.Require().NoError(err)
	s.Nil(gone)
}

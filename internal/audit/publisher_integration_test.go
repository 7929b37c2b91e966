//go:build integration

package audit_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"carebridge/internal/audit"
	"carebridge/internal/platform/kafka"
	"carebridge/pkg/testutil/containers"
)

const testTopic = "carebridge.audit.integration"

type KafkaPublisherSuite struct {
	suite.Suite
	redpanda  *containers.RedpandaContainer
	producer  *kafka.Producer
	publisher *audit.KafkaPublisher
}

func TestKafkaPublisherSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(KafkaPublisherSuite))
}

func (s *KafkaPublisherSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.redpanda = mgr.GetRedpanda(s.T())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	producer, err := kafka.NewProducer(ctx, []string{s.redpanda.Broker}, testTopic)
	s.Require().NoError(err)
	s.producer = producer
	s.publisher = audit.NewKafkaPublisher(producer)
}

func (s *KafkaPublisherSuite) TearDownSuite() {
	if s.producer != nil {
		s.producer.Close()
	}
}

func (s *KafkaPublisherSuite) TestEmitRoundTrip() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	familyID := uuid.NewString()
	event := audit.Event{
		Action:      audit.EventAssignmentCreated,
		OperatorID:  uuid.NewString(),
		FamilyID:    familyID,
		CaregiverID: uuid.NewString(),
		MatchScore:  85,
		Reason:      "integration round trip",
	}
	s.Require().NoError(s.publisher.Emit(ctx, event))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(s.redpanda.Broker),
		kgo.ConsumeTopics(testTopic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	s.Require().NoError(fetches.Err())
	records := fetches.Records()
	s.Require().NotEmpty(records)

	record := records[len(records)-1]
	s.Equal(familyID, string(record.Key))

	var got audit.Event
	s.Require().NoError(json.Unmarshal(record.Value, &got))
	s.Equal(audit.EventAssignmentCreated, got.Action)
	s.Equal(familyID, got.FamilyID)
	s.Equal(85, got.MatchScore)
	s.False(got.Timestamp.IsZero())
}

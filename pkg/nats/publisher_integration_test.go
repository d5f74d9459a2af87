package nats

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/abgdnv/marketplace/pkg/messaging"
	"github.com/abgdnv/marketplace/pkg/messaging/events"
	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcnats "github.com/testcontainers/testcontainers-go/modules/nats"
)

const (
	skipIntegrationTests = "MARKETPLACE_SKIP_INTEGRATION_TESTS"
	natsImg              = "nats:2.11.6-alpine"
	testStream           = "PRODUCTS"
)

// PublisherSuite publishes product events to a real JetStream server.
type PublisherSuite struct {
	suite.Suite
	ctx           context.Context
	logger        *slog.Logger
	natsContainer *tcnats.NATSContainer
	nc            *natsgo.Conn
	js            jetstream.JetStream
}

func (s *PublisherSuite) SetupSuite() {
	s.ctx = context.Background()
	s.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	var err error
	s.natsContainer, err = tcnats.Run(s.ctx, natsImg)
	s.Require().NoError(err, "Failed to run NATS container")

	natsURL, err := s.natsContainer.ConnectionString(s.ctx)
	s.Require().NoError(err)

	s.nc, err = NewClient(natsURL, 5*time.Second)
	s.Require().NoError(err, "Failed to connect to NATS")
	s.js, err = NewJetStreamContext(s.nc)
	s.Require().NoError(err, "Failed to get JetStream context")
	s.Require().NoError(EnsureProductStream(s.ctx, s.js, testStream))
	// ensuring twice updates the existing stream
	s.Require().NoError(EnsureProductStream(s.ctx, s.js, testStream))
}

func (s *PublisherSuite) TearDownSuite() {
	if s.nc != nil {
		s.nc.Close()
	}
	if err := testcontainers.TerminateContainer(s.natsContainer); err != nil {
		s.logger.Error("Failed to terminate NATS container", "error", err)
	}
}

func TestPublisherIntegration(t *testing.T) {
	if os.Getenv(skipIntegrationTests) != "" {
		t.Skip("Skipping integration tests based on " + skipIntegrationTests + " env var")
	}
	suite.Run(t, new(PublisherSuite))
}

func (s *PublisherSuite) TestPublishProductCreated() {
	// given
	publisher := NewNatsPublisher(s.js)
	event := events.ProductCreatedEvent{
		ProductID:  "42",
		Product:    events.ProductSnapshot{ID: "42", Name: "Lamp", Owner: "carol"},
		OccurredAt: time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC),
	}

	// when
	err := publisher.Publish(s.ctx, event)

	// then
	s.Require().NoError(err)
	stream, err := s.js.Stream(s.ctx, testStream)
	s.Require().NoError(err)
	msg, err := stream.GetLastMsgForSubject(s.ctx, messaging.ProductsCreatedSubject)
	s.Require().NoError(err)

	var got events.ProductCreatedEvent
	s.Require().NoError(json.Unmarshal(msg.Data, &got))
	s.Equal(event, got)
}

func (s *PublisherSuite) TestPublishOutsideStreamFails() {
	// given
	publisher := NewNatsPublisher(s.js)

	// when
	err := publisher.Publish(s.ctx, orphanEvent{})

	// then
	s.Error(err)
}

// orphanEvent uses a subject no stream captures.
type orphanEvent struct{}

func (orphanEvent) Subject() string           { return "orders.created" }
func (orphanEvent) Payload() ([]byte, error) { return []byte(`{}`), nil }

package messaging_test

import (
	"context"
	"testing"
	"time"

	"notification-dispatch/internal/messaging"
	"notification-dispatch/internal/mocks"
	"notification-dispatch/internal/models"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/rabbitmq"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

const (
	testPushQueue  = "push_dispatch_test"
	testStaleQueue = "push_stale_tokens_test"
)

type RabbitIntegrationSuite struct {
	suite.Suite
	rmqContainer *rabbitmq.RabbitMQContainer
	conn         *amqp.Connection
}

// SetupSuite запускает RabbitMQ один раз для всего набора.
func (s *RabbitIntegrationSuite) SetupSuite() {
	ctx := context.Background()

	rmqContainer, err := rabbitmq.Run(ctx,
		"rabbitmq:3-management-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Server startup complete"),
		),
	)
	require.NoError(s.T(), err)
	s.rmqContainer = rmqContainer

	amqpURL, err := rmqContainer.AmqpURL(ctx)
	require.NoError(s.T(), err)

	s.conn, err = amqp.Dial(amqpURL)
	require.NoError(s.T(), err)
}

func (s *RabbitIntegrationSuite) TearDownSuite() {
	if s.conn != nil {
		s.conn.Close()
	}
	if s.rmqContainer != nil {
		require.NoError(s.T(), s.rmqContainer.Terminate(context.Background()))
	}
}

func (s *RabbitIntegrationSuite) publish(queue string, body []byte) {
	ch, err := s.conn.Channel()
	s.Require().NoError(err)
	defer ch.Close()

	_, err = ch.QueueDeclare(queue, true, false, false, false, nil)
	s.Require().NoError(err)
	s.Require().NoError(ch.PublishWithContext(context.Background(), "", queue, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	}))
}

func (s *RabbitIntegrationSuite) TestConsumer_DispatchesQueuedRequests() {
	pushMock := &mocks.MockPushDispatcher{}
	dispatched := make(chan models.NotificationRequest, 1)
	pushMock.On("Dispatch", mock.Anything, mock.Anything).
		Return("projects/p/messages/1", nil).
		Run(func(args mock.Arguments) { dispatched <- args.Get(1).(models.NotificationRequest) })

	consumer := messaging.NewConsumer(s.conn, zap.NewNop(), testPushQueue, 2, messaging.NewProcessor(pushMock, zap.NewNop()))
	errCh := make(chan error, 1)
	go func() { errCh <- consumer.Start(context.Background()) }()

	s.publish(testPushQueue, []byte(`{"token":"queued-token","title":"T","body":"B"}`))

	select {
	case req := <-dispatched:
		s.Equal("queued-token", req.Token)
	case <-time.After(15 * time.Second):
		s.Fail("request was not dispatched")
	}

	consumer.Stop()
	s.NoError(<-errCh)
}

func (s *RabbitIntegrationSuite) TestStaleTokenPublisher_Publishes() {
	publisher, err := messaging.NewRabbitStaleTokenPublisher(s.conn, testStaleQueue, zap.NewNop())
	s.Require().NoError(err)

	s.Require().NoError(publisher.PublishStaleToken(context.Background(), "stale-device-token"))

	ch, err := s.conn.Channel()
	s.Require().NoError(err)
	defer ch.Close()

	s.Eventually(func() bool {
		msg, ok, err := ch.Get(testStaleQueue, true)
		return err == nil && ok && string(msg.Body) == "stale-device-token"
	}, 10*time.Second, 200*time.Millisecond)
}

// TestRabbitIntegrationSuite запускает набор тестов
func TestRabbitIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode.")
	}
	suite.Run(t, new(RabbitIntegrationSuite))
}

package rabbitmq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConsumer_InvalidURL(t *testing.T) {
	c, err := NewConsumer("not-an-amqp-url", nil)

	require.Error(t, err)
	assert.Nil(t, c)
	assert.Contains(t, err.Error(), "rabbitmq dial")
}

func TestNewPublisher_InvalidURL(t *testing.T) {
	p, err := NewPublisher("not-an-amqp-url")

	require.Error(t, err)
	assert.Nil(t, p)
}

func TestConsumer_CloseWithoutConnection(t *testing.T) {
	assert.NotPanics(t, func() { (&Consumer{}).Close() })
}

func TestEventsBindingKeyCoversEventTopics(t *testing.T) {
	assert.Equal(t, "event.*", EventsBindingKey)
	assert.Equal(t, "topic", ExchangeKind)
}

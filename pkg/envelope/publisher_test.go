package envelope

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/commerce-choreography/pkg/apperror"
	"github.com/dmehra2102/commerce-choreography/pkg/logging"
)

type recordingProducer struct {
	msgs []kafka.Message
	err  error
}

func (p *recordingProducer) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, msgs...)
	return nil
}

type testEvent struct {
	ProductID string `json:"productId"`
}

func (e testEvent) EventType() string      { return "product.productCreated.v1" }
func (e testEvent) ConversationID() string { return e.ProductID }

func TestPublish_StampsEnvelope(t *testing.T) {
	prod := &recordingProducer{}
	pub := NewPublisher(logging.Discard(), prod, "product.public", "dev", "product")
	ids := []string{"id-1", "id-2"}
	pub.newID = func() string { id := ids[0]; ids = ids[1:]; return id }
	pub.now = func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) }

	require.NoError(t, pub.Publish(context.Background(), testEvent{ProductID: "p-1"}))
	require.NoError(t, pub.Publish(context.Background(), testEvent{ProductID: "p-1"}))
	require.Len(t, prod.msgs, 2)

	msg := prod.msgs[0]
	assert.Equal(t, "product.public", msg.Topic)
	assert.Equal(t, "p-1", string(msg.Key))

	var env Envelope
	require.NoError(t, json.Unmarshal(msg.Value, &env))
	assert.Equal(t, "id-1", env.ID)
	assert.Equal(t, "product.productCreated.v1", env.Type)
	assert.Equal(t, "dev.product", env.Source)
	assert.Equal(t, "2024-05-01T10:00:00Z", env.Time)
	assert.Equal(t, "p-1", env.ConversationID)
	assert.JSONEq(t, `{"productId":"p-1"}`, string(env.Data))

	var second Envelope
	require.NoError(t, json.Unmarshal(prod.msgs[1].Value, &second))
	assert.Equal(t, "id-2", second.ID, "every publish gets its own id")

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "product.productCreated.v1", headers[HeaderEventType])
	assert.Equal(t, "p-1", headers[HeaderConversationID])
}

func TestPublish_FailureIsPublishKind(t *testing.T) {
	pub := NewPublisher(logging.Discard(), &recordingProducer{err: errors.New("broker down")}, "t", "dev", "product")

	err := pub.Publish(context.Background(), testEvent{ProductID: "p-1"})
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindPublish))
}

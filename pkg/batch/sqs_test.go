package batch

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/commerce-choreography/pkg/envelope"
	"github.com/dmehra2102/commerce-choreography/pkg/logging"
)

func TestSQSHandler_PartialBatchResponse(t *testing.T) {
	var seenCount int
	p := NewProcessor(logging.Discard(), "sqs").
		Register("a.b.v1", HandlerFunc(func(_ context.Context, env envelope.Envelope) error {
			seenCount++
			if env.ID == "bad" {
				return errors.New("nope")
			}
			return nil
		}))

	wrapped := `{"detail-type":"a.b.v1","source":"dev.x","detail":` + string(body(t, "a.b.v1", "wrapped")) + `}`
	resp, err := NewSQSHandler(p).Handle(context.Background(), events.SQSEvent{Records: []events.SQSMessage{
		{MessageId: "r1", Body: string(body(t, "a.b.v1", "ok"))},
		{MessageId: "r2", Body: string(body(t, "a.b.v1", "bad")), Attributes: map[string]string{"ApproximateReceiveCount": "2"}},
		{MessageId: "r3", Body: wrapped},
	}})

	require.NoError(t, err)
	require.Len(t, resp.BatchItemFailures, 1)
	assert.Equal(t, "r2", resp.BatchItemFailures[0].ItemIdentifier)
	assert.Equal(t, 3, seenCount)
}

func TestFromSQS_DeliveryCount(t *testing.T) {
	s := "v"
	m := fromSQS(events.SQSMessage{
		MessageId:         "id",
		Attributes:        map[string]string{"ApproximateReceiveCount": "4"},
		MessageAttributes: map[string]events.SQSMessageAttribute{"traceparent": {StringValue: &s}},
	})
	assert.Equal(t, 4, m.DeliveryCount)
	assert.Equal(t, "v", m.Headers["traceparent"])
	assert.Equal(t, 1, fromSQS(events.SQSMessage{}).DeliveryCount)
}

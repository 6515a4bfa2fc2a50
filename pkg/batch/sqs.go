package batch

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/aws/aws-lambda-go/events"
)

// SQSHandler exposes a Processor as a Lambda SQS handler with partial batch
// responses enabled.
type SQSHandler struct {
	proc *Processor
}

func NewSQSHandler(proc *Processor) *SQSHandler {
	return &SQSHandler{proc: proc}
}

func (h *SQSHandler) Handle(ctx context.Context, evt events.SQSEvent) (events.SQSEventResponse, error) {
	msgs := make([]Message, 0, len(evt.Records))
	for _, rec := range evt.Records {
		msgs = append(msgs, fromSQS(rec))
	}

	res := h.proc.ProcessBatch(ctx, msgs)

	failures := make([]events.SQSBatchItemFailure, 0, len(res.FailedMessageIDs))
	for _, id := range res.FailedMessageIDs {
		failures = append(failures, events.SQSBatchItemFailure{ItemIdentifier: id})
	}
	return events.SQSEventResponse{BatchItemFailures: failures}, nil
}

func fromSQS(rec events.SQSMessage) Message {
	count, err := strconv.Atoi(rec.Attributes["ApproximateReceiveCount"])
	if err != nil || count < 1 {
		count = 1
	}
	headers := make(map[string]string, len(rec.MessageAttributes))
	for k, v := range rec.MessageAttributes {
		if v.StringValue != nil {
			headers[k] = *v.StringValue
		}
	}
	return Message{
		ID:            rec.MessageId,
		Body:          unwrapEventBridge([]byte(rec.Body)),
		DeliveryCount: count,
		Headers:       headers,
	}
}

// unwrapEventBridge returns the detail of an EventBridge delivery, or body
// unchanged when it is not one.
func unwrapEventBridge(body []byte) []byte {
	var eb struct {
		DetailType string          `json:"detail-type"`
		Detail     json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &eb); err != nil || eb.DetailType == "" || len(eb.Detail) == 0 {
		return body
	}
	return eb.Detail
}

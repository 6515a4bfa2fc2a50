// Package outbox buffers outbound Kafka messages in Postgres and relays them
// to the broker asynchronously.
package outbox

import "time"

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusSent       Status = "sent"
	StatusFailed     Status = "failed"
)

type Event struct {
	ID         int64
	Topic      string
	Key        string
	Type       string
	Payload    []byte
	Headers    map[string]string
	CreatedAt  time.Time
	Status     Status
	RetryCount int
	LastError  *string
}

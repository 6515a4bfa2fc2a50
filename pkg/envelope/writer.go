package envelope

import (
	"time"

	"github.com/segmentio/kafka-go"
)

// NewKafkaWriter returns a topic-less writer; each message names its own
// topic. Writes wait for all in-sync replicas.
func NewKafkaWriter(brokers []string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
}

package batch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	messagesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "batch_messages_processed_total",
		Help: "Messages handled successfully.",
	}, []string{"consumer"})

	messagesFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "batch_messages_failed_total",
		Help: "Messages reported back for redelivery.",
	}, []string{"consumer"})

	messagesDeadLettered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "batch_messages_dead_lettered_total",
		Help: "Messages routed to the dead-letter topic after exhausting deliveries.",
	}, []string{"consumer"})
)

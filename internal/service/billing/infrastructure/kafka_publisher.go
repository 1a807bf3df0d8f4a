package infrastructure

import (
	"context"

	"github.com/segmentio/kafka-go"

	"printexpress/internal/pkg/mq"
)

// KafkaPublisher mirrors message logs onto the notification topic.
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher creates the adapter.
func NewKafkaPublisher(writer *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{writer: writer}
}

// Publish writes one message keyed by order id.
func (p *KafkaPublisher) Publish(ctx context.Context, key, value []byte) error {
	return mq.ProduceMessage(ctx, p.writer, key, value)
}

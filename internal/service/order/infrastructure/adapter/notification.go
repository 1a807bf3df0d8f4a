package adapter

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"

	"printexpress/internal/pkg/mq"
	"printexpress/internal/service/order/port"
)

// OrderNotificationTopic carries order status events to the push gateway and
// the messaging log.
const OrderNotificationTopic = "order_notifications"

// KafkaNotifier publishes order status events.
type KafkaNotifier struct {
	writer *kafka.Writer
}

// NewKafkaNotifier creates the adapter.
func NewKafkaNotifier(writer *kafka.Writer) *KafkaNotifier {
	return &KafkaNotifier{writer: writer}
}

// PublishStatusChange emits one event keyed by order id, so events for the
// same order stay ordered within a partition.
func (n *KafkaNotifier) PublishStatusChange(ctx context.Context, event port.StatusEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "marshal status event")
	}
	return mq.ProduceMessage(ctx, n.writer, []byte(event.OrderID), value)
}

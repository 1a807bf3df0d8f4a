package push

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"

	"printexpress/internal/pkg/logger"
	"printexpress/internal/pkg/mq"
	"printexpress/internal/service/order/port"
)

// Consumer pumps order events from the notification topic into the hub.
type Consumer struct {
	reader *kafka.Reader
	hub    *Hub
}

// NewConsumer creates the consumer.
func NewConsumer(reader *kafka.Reader, hub *Hub) *Consumer {
	return &Consumer{reader: reader, hub: hub}
}

// Run consumes until the context is cancelled. Events addressed to a user go
// to that user's connection; guest-order events are broadcast so the staff
// dashboard still sees them.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		carrier := mq.KafkaHeaderCarrier(msg.Headers)
		msgCtx := otel.GetTextMapPropagator().Extract(ctx, &carrier)

		var event port.StatusEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logger.Ctx(msgCtx).Warn().Err(err).Msg("dropping malformed notification")
			if err := c.reader.CommitMessages(ctx, msg); err != nil {
				return err
			}
			continue
		}

		if event.UserID != "" {
			if !c.hub.Send(event.UserID, msg.Value) {
				logger.Ctx(msgCtx).Debug().Str("user_id", event.UserID).Msg("user not connected to this node")
			}
		} else {
			c.hub.Broadcast(msg.Value)
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			return err
		}
	}
}

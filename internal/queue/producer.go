package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"HRCore/pkg/logger"
	"HRCore/pkg/snowflake"
	"HRCore/storage/mq"
)

// Producer 发布到 hrcore.events 交换机
type Producer struct{}

func NewProducer() *Producer {
	return &Producer{}
}

// RequestRecompute 发布余额重算请求，返回消息 ID
func (Producer) RequestRecompute(ctx context.Context, msg BalanceRecomputeMessage) (string, error) {
	if msg.MessageID == "" {
		id, err := snowflake.NextPrefixed("recompute")
		if err != nil {
			return "", err
		}
		msg.MessageID = id
	}
	if msg.RunID == "" {
		msg.RunID = msg.MessageID
	}
	if msg.RequestedAt == "" {
		msg.RequestedAt = time.Now().UTC().Format(time.RFC3339)
	}

	if err := mq.PublishMessage(ctx, mq.EventsExchange, mq.RoutingBalanceRecompute, msg.MessageID, msg); err != nil {
		logger.Logger.Error("Failed to publish balance recompute request",
			zap.String("message_id", msg.MessageID),
			zap.Int("year", msg.Year),
			zap.Error(err),
		)
		return "", err
	}

	logger.Logger.Info("Published balance recompute request",
		zap.String("message_id", msg.MessageID),
		zap.Int("year", msg.Year),
		zap.String("reason", msg.Reason),
	)
	return msg.MessageID, nil
}

var eventRoutes = map[string]string{
	EventLeaveStateChanged:      mq.RoutingLeaveState,
	EventPermissionStateChanged: mq.RoutingPermissionState,
}

// PublishEvent 包装为 EventMessage 后发布
func (Producer) PublishEvent(ctx context.Context, eventType, eventKey string, payload interface{}) error {
	routingKey, ok := eventRoutes[eventType]
	if !ok {
		return fmt.Errorf("unknown event type %q", eventType)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	id, err := snowflake.NextPrefixed("evt")
	if err != nil {
		return err
	}

	msg := EventMessage{
		MessageID:  id,
		Payload:    raw,
		EventKey:   eventKey,
		EventType:  eventType,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}

	if err := mq.PublishMessage(ctx, mq.EventsExchange, routingKey, id, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", eventType, err)
	}
	return nil
}

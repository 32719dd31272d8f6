package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"HRCore/internal/cache"
	"HRCore/pkg/errors"
	"HRCore/pkg/logger"
	"HRCore/storage/mq"
)

// RecomputeFunc 执行一次余额重算
type RecomputeFunc func(ctx context.Context, msg BalanceRecomputeMessage) error

// Enqueuer 重新投递重算请求
type Enqueuer interface {
	RequestRecompute(ctx context.Context, msg BalanceRecomputeMessage) (string, error)
}

// StartBalanceRecomputeConsumer 启动余额重算消费者
func StartBalanceRecomputeConsumer(ctx context.Context, dedup cache.Deduper, run RecomputeFunc) error {
	return mq.Consume(ctx, mq.ConsumeOptions{
		Queue:         mq.BalanceRecomputeQueue,
		ConsumerTag:   "balance_recompute_consumer",
		PrefetchCount: 1,
		Handler: func(ctx context.Context, body []byte) error {
			return handleRecompute(ctx, body, dedup, run)
		},
	})
}

// StartLeaveEventConsumer 状态变化后为受影响年份投递单员工重算
func StartLeaveEventConsumer(ctx context.Context, dedup cache.Deduper, enq Enqueuer) error {
	return mq.Consume(ctx, mq.ConsumeOptions{
		Queue:         mq.LeaveEventsQueue,
		ConsumerTag:   "leave_event_consumer",
		PrefetchCount: 10,
		Handler: func(ctx context.Context, body []byte) error {
			return handleStateChanged(ctx, body, dedup, enq)
		},
	})
}

// claim 首次处理返回 nil；重复消息返回 SkipMessageError。
// Redis 异常时继续处理，重算本身是幂等的
func claim(ctx context.Context, dedup cache.Deduper, messageID string) error {
	if messageID == "" {
		return nil
	}
	first, err := dedup.MarkProcessed(ctx, messageID)
	if err != nil {
		logger.Logger.Warn("Failed to check message processed status",
			zap.String("message_id", messageID),
			zap.Error(err),
		)
		return nil
	}
	if !first {
		return errors.NewSkipMessageError("message %s already processed", messageID)
	}
	return nil
}

func release(ctx context.Context, dedup cache.Deduper, messageID string) {
	if messageID == "" {
		return
	}
	if err := dedup.Unmark(ctx, messageID); err != nil {
		logger.Logger.Warn("Failed to unmark message", zap.String("message_id", messageID), zap.Error(err))
	}
}

func handleRecompute(ctx context.Context, body []byte, dedup cache.Deduper, run RecomputeFunc) error {
	var msg BalanceRecomputeMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return errors.NewSkipMessageError("malformed recompute message: %v", err)
	}
	if msg.Year < 1 {
		return errors.NewSkipMessageError("recompute message %s has no year", msg.MessageID)
	}

	if err := claim(ctx, dedup, msg.MessageID); err != nil {
		return err
	}

	logger.Ctx(ctx).Info("Processing balance recompute",
		zap.String("message_id", msg.MessageID),
		zap.String("run_id", msg.RunID),
		zap.Int("year", msg.Year),
		zap.String("reason", msg.Reason),
	)

	if err := run(ctx, msg); err != nil {
		release(ctx, dedup, msg.MessageID)
		return fmt.Errorf("balance recompute %s: %w", msg.MessageID, err)
	}
	return nil
}

func handleStateChanged(ctx context.Context, body []byte, dedup cache.Deduper, enq Enqueuer) error {
	var evt EventMessage
	if err := json.Unmarshal(body, &evt); err != nil {
		return errors.NewSkipMessageError("malformed event: %v", err)
	}

	var payload StateChangedPayload
	if err := json.Unmarshal(evt.Payload, &payload); err != nil {
		return errors.NewSkipMessageError("malformed %s payload: %v", evt.EventType, err)
	}

	if err := claim(ctx, dedup, evt.MessageID); err != nil {
		return err
	}

	// 许可不影响年假余额
	if evt.EventType != EventLeaveStateChanged {
		logger.Logger.Debug("State change without balance impact",
			zap.String("event_type", evt.EventType),
			zap.Int64("request_id", payload.RequestID),
		)
		return nil
	}

	employeeID := payload.EmployeeID
	for _, year := range payload.Years {
		_, err := enq.RequestRecompute(ctx, BalanceRecomputeMessage{
			MessageID:   fmt.Sprintf("%s_%d", evt.MessageID, year),
			RunID:       evt.MessageID,
			Year:        year,
			EmployeeID:  &employeeID,
			Reason:      ReasonLeaveEvent,
			RequestedBy: payload.ActorID,
		})
		if err != nil {
			release(ctx, dedup, evt.MessageID)
			return fmt.Errorf("enqueue recompute for year %d: %w", year, err)
		}
	}

	logger.Ctx(ctx).Info("Leave state change handled",
		zap.Int64("request_id", payload.RequestID),
		zap.Int64("employee_id", payload.EmployeeID),
		zap.String("from", payload.From),
		zap.String("to", payload.To),
		zap.Ints("years", payload.Years),
	)
	return nil
}

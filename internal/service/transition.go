package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"HRCore/internal/authz"
	"HRCore/internal/leave"
	"HRCore/internal/queue"
	"HRCore/pkg/errors"
	"HRCore/pkg/logger"
	"HRCore/pkg/metrics"
	"HRCore/utils"
)

const (
	kindVacation   = "vacation"
	kindPermission = "permission"
)

var transitionActions = map[leave.Action]authz.Action{
	leave.ActionApprove: authz.LeaveApprove,
	leave.ActionReject:  authz.LeaveReject,
	leave.ActionCancel:  authz.LeaveCancel,
}

// transitionTarget 一次状态流转所需的申请信息
type transitionTarget struct {
	store      transitioner
	notFound   errors.Definition
	kind       string
	eventType  string
	current    leave.State
	start      time.Time
	end        time.Time
	id         int64
	employeeID int64
}

// runTransition 授权后执行条件更新；0 行时区分不存在与状态不符
func runTransition(ctx context.Context, events EventPublisher, now time.Time, actor authz.Actor, action leave.Action, comment string, t transitionTarget) error {
	authAction, ok := transitionActions[action]
	if !ok {
		return errors.InvalidRequest.WithMessage("unknown action %q", action)
	}
	if err := authz.Authorize(actor, authAction, authz.Owned(t.kind, t.employeeID)); err != nil {
		metrics.RecordTransition(ctx, t.kind, string(action), "forbidden")
		return err
	}

	target, err := action.Target()
	if err != nil {
		return errors.InvalidRequest.WithMessage("%v", err)
	}
	expected := action.Preconditions()

	n, err := t.store.Transition(ctx, t.id, expected, target, resolution(actor, comment, now))
	if err != nil {
		metrics.RecordTransition(ctx, t.kind, string(action), "error")
		return fmt.Errorf("failed to %s %s %d: %w", action, t.kind, t.id, err)
	}
	if n == 0 {
		found, err := t.store.Exists(ctx, t.id)
		if err != nil {
			return fmt.Errorf("failed to check %s %d: %w", t.kind, t.id, err)
		}
		if !found {
			return t.notFound
		}
		metrics.RecordTransition(ctx, t.kind, string(action), "conflict")
		return errors.LeaveNotInExpectedState.WithMessage("%s %d is not in expected state %v", t.kind, t.id, expected)
	}

	metrics.RecordTransition(ctx, t.kind, string(action), "ok")
	logger.Ctx(ctx).Info("Request state changed",
		zap.String("kind", t.kind),
		zap.Int64("target_id", t.id),
		zap.Int64("employee_id", t.employeeID),
		zap.String("from", string(t.current)),
		zap.String("to", string(target)),
		zap.Int64("actor_id", actor.AccountID),
	)

	publishStateChanged(ctx, events, t, target, actor)
	return nil
}

// publishStateChanged 事件发布失败不回滚状态，只记录日志
func publishStateChanged(ctx context.Context, events EventPublisher, t transitionTarget, to leave.State, actor authz.Actor) {
	if events == nil {
		return
	}
	payload := queue.StateChangedPayload{
		Kind:       t.kind,
		From:       string(t.current),
		To:         string(to),
		StartDate:  utils.FormatDate(t.start),
		EndDate:    utils.FormatDate(t.end),
		Years:      leave.AffectedYears(t.start, t.end),
		RequestID:  t.id,
		EmployeeID: t.employeeID,
		ActorID:    actor.AccountID,
	}
	key := fmt.Sprintf("%s:%d", t.kind, t.id)
	if err := events.PublishEvent(ctx, t.eventType, key, payload); err != nil {
		logger.Ctx(ctx).Warn("Failed to publish state change event",
			zap.String("kind", t.kind),
			zap.Int64("target_id", t.id),
			zap.Error(err),
		)
	}
}

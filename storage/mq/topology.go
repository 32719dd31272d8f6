package mq

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	EventsExchange     = "hrcore.events"
	DeadLetterExchange = "hrcore.dlx"

	BalanceRecomputeQueue = "hrcore.balance.recompute"
	LeaveEventsQueue      = "hrcore.leave.events"
	DeadLetterQueue       = "hrcore.dead"

	RoutingBalanceRecompute = "balance.recompute"
	RoutingLeaveState       = "leave.state"
	RoutingPermissionState  = "permission.state"
)

type binding struct {
	queue string
	keys  []string
}

var bindings = []binding{
	{queue: BalanceRecomputeQueue, keys: []string{RoutingBalanceRecompute}},
	{queue: LeaveEventsQueue, keys: []string{RoutingLeaveState, RoutingPermissionState}},
}

// DeclareTopology 声明交换机、队列与绑定，重复调用是幂等的
func DeclareTopology() error {
	c := Connection()
	if c == nil {
		return fmt.Errorf("RabbitMQ connection is nil")
	}

	ch, err := c.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(EventsExchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", EventsExchange, err)
	}
	if err := ch.ExchangeDeclare(DeadLetterExchange, amqp.ExchangeFanout, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", DeadLetterExchange, err)
	}

	if _, err := ch.QueueDeclare(DeadLetterQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", DeadLetterQueue, err)
	}
	if err := ch.QueueBind(DeadLetterQueue, "", DeadLetterExchange, false, nil); err != nil {
		return fmt.Errorf("bind queue %s: %w", DeadLetterQueue, err)
	}

	args := amqp.Table{"x-dead-letter-exchange": DeadLetterExchange}
	for _, b := range bindings {
		if _, err := ch.QueueDeclare(b.queue, true, false, false, false, args); err != nil {
			return fmt.Errorf("declare queue %s: %w", b.queue, err)
		}
		for _, key := range b.keys {
			if err := ch.QueueBind(b.queue, key, EventsExchange, false, nil); err != nil {
				return fmt.Errorf("bind queue %s to %s: %w", b.queue, key, err)
			}
		}
	}

	return nil
}

package mq

import (
	"context"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

var (
	messagesTotal   metric.Int64Counter
	messageDuration metric.Float64Histogram
)

func init() {
	_ = InitMQMetrics(noop.NewMeterProvider().Meter("noop"))
}

// InitMQMetrics 初始化 RabbitMQ 指标
func InitMQMetrics(meter metric.Meter) error {
	total, err := meter.Int64Counter("mq.messages.total",
		metric.WithDescription("Total number of RabbitMQ messages published or handled"),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		return err
	}

	duration, err := meter.Float64Histogram("mq.message.duration",
		metric.WithDescription("Publish or handle duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 30),
	)
	if err != nil {
		return err
	}

	messagesTotal, messageDuration = total, duration
	return nil
}

// Publisher 发布消息需要的最小接口，*amqp.Channel 满足
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// InstrumentedChannel 发布时注入 trace 上下文到消息头
type InstrumentedChannel struct {
	ch     Publisher
	tracer trace.Tracer
}

func NewInstrumentedChannel(ch Publisher, serviceName string) *InstrumentedChannel {
	return &InstrumentedChannel{ch: ch, tracer: otel.Tracer(serviceName + ".rabbitmq")}
}

func (ic *InstrumentedChannel) PublishWithContext(ctx context.Context, exchange, routingKey string, mandatory, immediate bool, msg amqp.Publishing) error {
	ctx, span := ic.tracer.Start(ctx, "rabbitmq.publish "+routingKey,
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			semconv.MessagingSystem("rabbitmq"),
			semconv.MessagingDestinationName(exchange),
			semconv.MessagingRabbitmqDestinationRoutingKey(routingKey),
			semconv.MessagingMessageID(msg.MessageId),
		),
	)
	defer span.End()

	headers := make(amqp.Table, len(msg.Headers)+2)
	for k, v := range msg.Headers {
		headers[k] = v
	}
	otel.GetTextMapPropagator().Inject(ctx, &MessageHeaderCarrier{Headers: headers})
	msg.Headers = headers

	start := time.Now()
	err := ic.ch.PublishWithContext(ctx, exchange, routingKey, mandatory, immediate, msg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	Record(ctx, "publish", routingKey, err, time.Since(start))
	return err
}

// StartConsumeSpan 从消息头恢复 trace 上下文并开启处理 span
func StartConsumeSpan(ctx context.Context, serviceName, queue string, d amqp.Delivery) (context.Context, trace.Span) {
	ctx = otel.GetTextMapPropagator().Extract(ctx, &MessageHeaderCarrier{Headers: d.Headers})
	return otel.Tracer(serviceName+".rabbitmq").Start(ctx, "rabbitmq.process "+queue,
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			semconv.MessagingSystem("rabbitmq"),
			semconv.MessagingDestinationName(queue),
			semconv.MessagingMessageID(d.MessageId),
		),
	)
}

// Record 记录一次发布或处理
func Record(ctx context.Context, operation, destination string, err error, elapsed time.Duration) {
	status := "success"
	if err != nil {
		status = "error"
	}
	attrs := metric.WithAttributes(
		attribute.String("messaging.operation", operation),
		attribute.String("messaging.destination", destination),
		attribute.String("messaging.status", status),
	)
	messagesTotal.Add(ctx, 1, attrs)
	messageDuration.Record(ctx, elapsed.Seconds(), attrs)
}

// MessageHeaderCarrier 实现 propagation.TextMapCarrier
type MessageHeaderCarrier struct {
	Headers amqp.Table
}

func (m *MessageHeaderCarrier) Get(key string) string {
	if s, ok := m.Headers[key].(string); ok {
		return s
	}
	return ""
}

func (m *MessageHeaderCarrier) Set(key, value string) {
	if m.Headers == nil {
		m.Headers = make(amqp.Table)
	}
	m.Headers[key] = value
}

func (m *MessageHeaderCarrier) Keys() []string {
	keys := make([]string, 0, len(m.Headers))
	for k := range m.Headers {
		keys = append(keys, k)
	}
	return keys
}

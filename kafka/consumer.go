package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/powerpufffit/inventory-pipeline/internal/dedup"
	"github.com/powerpufffit/inventory-pipeline/pkg/logger"
)

// SaleRecordedHandler handles sale recorded events
type SaleRecordedHandler func(ctx context.Context, event SaleRecordedEvent) error

// ProductUpdatedHandler handles product updated events
type ProductUpdatedHandler func(ctx context.Context, event ProductUpdatedEvent) error

var (
	eventsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_events_processed_total",
			Help: "Total number of trigger events processed by the pipeline",
		},
		[]string{"event_type", "status"},
	)
	handleDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pipeline_event_handle_duration_seconds",
			Help:    "Duration of trigger event handling in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"event_type"},
	)
)

// Consumer wraps a Kafka consumer group for the pipeline's trigger events.
// Delivery is at least once; the optional dedup store collapses redeliveries
// of an already handled event into a skip.
type Consumer struct {
	consumer sarama.ConsumerGroup
	brokers  []string
	groupID  string
	topics   []string
	dedup    dedup.Store

	saleHandler    SaleRecordedHandler
	productHandler ProductUpdatedHandler
}

// NewConsumer creates a new Kafka consumer
func NewConsumer(brokers []string, groupID string, topics []string, dedupStore dedup.Store) (*Consumer, error) {
	config := sarama.NewConfig()
	config.Version = sarama.V2_6_0_0
	config.Consumer.Group.Rebalance.Strategy = sarama.NewBalanceStrategyRoundRobin()
	config.Consumer.Offsets.Initial = sarama.OffsetNewest
	config.Consumer.Return.Errors = true

	consumer, err := sarama.NewConsumerGroup(brokers, groupID, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka consumer: %w", err)
	}

	logger.Logger.Info().
		Strs("brokers", brokers).
		Str("group_id", groupID).
		Strs("topics", topics).
		Msg("Kafka consumer initialized")

	return &Consumer{
		consumer: consumer,
		brokers:  brokers,
		groupID:  groupID,
		topics:   topics,
		dedup:    dedupStore,
	}, nil
}

// OnSaleRecorded registers the handler for sale recorded events
func (c *Consumer) OnSaleRecorded(handler SaleRecordedHandler) {
	c.saleHandler = handler
}

// OnProductUpdated registers the handler for product updated events
func (c *Consumer) OnProductUpdated(handler ProductUpdatedHandler) {
	c.productHandler = handler
}

// Start starts consuming messages until the context is cancelled
func (c *Consumer) Start(ctx context.Context) error {
	handler := &consumerGroupHandler{consumer: c}

	go func() {
		for {
			select {
			case <-ctx.Done():
				logger.Logger.Info().Msg("Consumer context cancelled, stopping...")
				return
			default:
				if err := c.consumer.Consume(ctx, c.topics, handler); err != nil {
					logger.Logger.Error().
						Err(err).
						Msg("Error from consumer")
				}
			}
		}
	}()

	go func() {
		for err := range c.consumer.Errors() {
			logger.Logger.Error().
				Err(err).
				Msg("Consumer error")
		}
	}()

	logger.Logger.Info().
		Strs("topics", c.topics).
		Str("group_id", c.groupID).
		Msg("Kafka consumer started")

	return nil
}

// Close closes the Kafka consumer
func (c *Consumer) Close() error {
	if c.consumer != nil {
		return c.consumer.Close()
	}
	return nil
}

// consumerGroupHandler implements sarama.ConsumerGroupHandler
type consumerGroupHandler struct {
	consumer *Consumer
}

func (h *consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

// ConsumeClaim processes one partition claim. A transient handler failure
// fails the invocation without marking the offset, so the event is
// redelivered after the group rejoins.
func (h *consumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		if err := h.handleMessage(session.Context(), message); err != nil {
			return err
		}
		session.MarkMessage(message, "")
	}
	return nil
}

func (h *consumerGroupHandler) handleMessage(ctx context.Context, message *sarama.ConsumerMessage) error {
	// Extract trace context from Kafka headers
	carrier := propagation.MapCarrier{}
	eventType := ""
	eventID := ""
	for _, header := range message.Headers {
		switch key := string(header.Key); key {
		case "traceparent", "tracestate":
			carrier[key] = string(header.Value)
		case "event_type":
			eventType = string(header.Value)
		case "event_id":
			eventID = string(header.Value)
		}
	}
	ctx = otel.GetTextMapPropagator().Extract(ctx, carrier)

	tracer := otel.Tracer("kafka-consumer")
	ctx, span := tracer.Start(ctx, "kafka.consume."+eventType,
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.source", message.Topic),
			attribute.Int("messaging.kafka.partition", int(message.Partition)),
			attribute.Int64("messaging.kafka.offset", message.Offset),
			attribute.String("event.type", eventType),
			attribute.String("event.id", eventID),
		),
	)
	defer span.End()

	if eventType == "" {
		span.SetStatus(codes.Error, "Message without event_type header")
		logger.Warn(ctx).Msg("Message without event_type header, dropping")
		eventsProcessed.WithLabelValues("unknown", "dropped").Inc()
		return nil
	}

	// Skip events an earlier delivery already handled. The marker is written
	// only after the handler succeeds, so a failed or crashed handler never
	// leaves one behind and the event is still redelivered.
	if h.consumer.dedup != nil && eventID != "" {
		seen, err := h.consumer.dedup.Seen(ctx, eventID)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "Dedup store unavailable")
			return err
		}
		if seen {
			logger.Info(ctx).
				Str("event_type", eventType).
				Str("event_id", eventID).
				Msg("Event already handled, skipping redelivery")
			eventsProcessed.WithLabelValues(eventType, "duplicate").Inc()
			return nil
		}
	}

	start := time.Now()
	err := h.dispatch(ctx, eventType, message.Value)
	handleDuration.WithLabelValues(eventType).Observe(time.Since(start).Seconds())

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to handle event")
		logger.Error(ctx).
			Err(err).
			Str("event_type", eventType).
			Str("event_id", eventID).
			Msg("Failed to handle event")
		eventsProcessed.WithLabelValues(eventType, "error").Inc()
		return err
	}

	if h.consumer.dedup != nil && eventID != "" {
		// A failed mark only risks one redundant redelivery, which the
		// store-level dedup keys absorb.
		if markErr := h.consumer.dedup.MarkHandled(ctx, eventID); markErr != nil {
			logger.Warn(ctx).Err(markErr).Str("event_id", eventID).Msg("Failed to mark event handled")
		}
	}

	span.SetStatus(codes.Ok, "Event handled successfully")
	eventsProcessed.WithLabelValues(eventType, "ok").Inc()
	return nil
}

func (h *consumerGroupHandler) dispatch(ctx context.Context, eventType string, payload []byte) error {
	switch eventType {
	case EventTypeSaleRecorded:
		if h.consumer.saleHandler == nil {
			logger.Warn(ctx).Str("event_type", eventType).Msg("No handler registered for event type")
			return nil
		}
		var event SaleRecordedEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			// Malformed payloads cannot succeed on redelivery either.
			logger.Error(ctx).Err(err).Str("event_type", eventType).Msg("Failed to unmarshal event, dropping")
			return nil
		}
		return h.consumer.saleHandler(ctx, event)

	case EventTypeProductUpdated:
		if h.consumer.productHandler == nil {
			logger.Warn(ctx).Str("event_type", eventType).Msg("No handler registered for event type")
			return nil
		}
		var event ProductUpdatedEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			logger.Error(ctx).Err(err).Str("event_type", eventType).Msg("Failed to unmarshal event, dropping")
			return nil
		}
		return h.consumer.productHandler(ctx, event)

	default:
		logger.Warn(ctx).Str("event_type", eventType).Msg("Unknown event type, dropping")
		return nil
	}
}

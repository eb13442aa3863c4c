package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/powerpufffit/inventory-pipeline/internal/pipeline/domain"
	"github.com/powerpufffit/inventory-pipeline/pkg/logger"
)

// Publisher wraps a Kafka sync producer for pipeline events
type Publisher struct {
	producer      sarama.SyncProducer
	brokers       []string
	salesTopic    string
	productsTopic string
}

// NewPublisher creates a new Kafka publisher
func NewPublisher(brokers []string, salesTopic, productsTopic string) (*Publisher, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.Retry.Max = 3
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Compression = sarama.CompressionSnappy

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	logger.Logger.Info().
		Strs("brokers", brokers).
		Msg("Kafka publisher initialized")

	return &Publisher{
		producer:      producer,
		brokers:       brokers,
		salesTopic:    salesTopic,
		productsTopic: productsTopic,
	}, nil
}

// PublishSaleRecorded publishes a sale recorded event with tracing
func (p *Publisher) PublishSaleRecorded(ctx context.Context, event SaleRecordedEvent) error {
	event.EventType = EventTypeSaleRecorded
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	if event.RecordedAt.IsZero() {
		event.RecordedAt = time.Now()
	}

	key := fmt.Sprintf("sale_%d", event.SaleID)
	return p.publish(ctx, p.salesTopic, key, event.EventType, event.EventID, event)
}

// PublishProductUpdated publishes a product updated event with the given
// before/after snapshots. Keyed by product so updates to one product stay
// ordered within a partition.
func (p *Publisher) PublishProductUpdated(ctx context.Context, before, after domain.Product) error {
	event := ProductUpdatedEvent{
		EventID:   uuid.NewString(),
		EventType: EventTypeProductUpdated,
		ProductID: after.ID,
		Before:    snapshotOf(before),
		After:     snapshotOf(after),
		Timestamp: time.Now(),
	}

	key := fmt.Sprintf("product_%d", event.ProductID)
	return p.publish(ctx, p.productsTopic, key, event.EventType, event.EventID, event)
}

func snapshotOf(product domain.Product) ProductSnapshot {
	return ProductSnapshot{
		ID:        product.ID,
		Name:      product.Name,
		Stock:     product.Stock,
		IsActive:  product.IsActive,
		Version:   product.Version,
		UpdatedAt: product.UpdatedAt,
	}
}

func (p *Publisher) publish(ctx context.Context, topic, key, eventType, eventID string, payload interface{}) error {
	tracer := otel.Tracer("kafka-publisher")
	ctx, span := tracer.Start(ctx, "kafka.publish."+eventType,
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination", topic),
			attribute.String("event.type", eventType),
			attribute.String("event.id", eventID),
		),
	)
	defer span.End()

	eventBytes, err := json.Marshal(payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to marshal event")
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	// Inject trace context into Kafka headers
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	headers := []sarama.RecordHeader{
		{Key: []byte("event_type"), Value: []byte(eventType)},
		{Key: []byte("event_id"), Value: []byte(eventID)},
	}
	for k, v := range carrier {
		headers = append(headers, sarama.RecordHeader{
			Key:   []byte(k),
			Value: []byte(v),
		})
	}

	msg := &sarama.ProducerMessage{
		Topic:   topic,
		Key:     sarama.StringEncoder(key),
		Value:   sarama.ByteEncoder(eventBytes),
		Headers: headers,
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to send message")
		logger.Logger.Error().
			Err(err).
			Str("topic", topic).
			Str("event_type", eventType).
			Msg("Failed to publish event")
		return fmt.Errorf("failed to send message to Kafka: %w", err)
	}

	span.SetAttributes(
		attribute.Int("messaging.kafka.partition", int(partition)),
		attribute.Int64("messaging.kafka.offset", offset),
	)

	logger.Logger.Info().
		Str("event_id", eventID).
		Str("event_type", eventType).
		Str("topic", topic).
		Int32("partition", partition).
		Int64("offset", offset).
		Msg("Event published")

	return nil
}

// Close closes the Kafka producer
func (p *Publisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/powerpufffit/inventory-pipeline/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Init("pipeline-test", false)
	logger.SetLevel("error")
	os.Exit(m.Run())
}

// memoryStore is an in-process dedup store for consumer tests.
type memoryStore struct {
	handled map[string]bool
	markErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{handled: map[string]bool{}}
}

func (s *memoryStore) Seen(_ context.Context, eventID string) (bool, error) {
	return s.handled[eventID], nil
}

func (s *memoryStore) MarkHandled(_ context.Context, eventID string) error {
	if s.markErr != nil {
		return s.markErr
	}
	s.handled[eventID] = true
	return nil
}

func saleMessage(t *testing.T, eventID string, event SaleRecordedEvent) *sarama.ConsumerMessage {
	t.Helper()

	payload, err := json.Marshal(event)
	require.NoError(t, err)

	return &sarama.ConsumerMessage{
		Topic: TopicSales,
		Value: payload,
		Headers: []*sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(EventTypeSaleRecorded)},
			{Key: []byte("event_id"), Value: []byte(eventID)},
		},
	}
}

func TestHandleMessageMarksHandledAfterSuccess(t *testing.T) {
	store := newMemoryStore()
	consumer := &Consumer{dedup: store}

	calls := 0
	consumer.OnSaleRecorded(func(context.Context, SaleRecordedEvent) error {
		calls++
		return nil
	})

	handler := &consumerGroupHandler{consumer: consumer}
	msg := saleMessage(t, "evt-1", SaleRecordedEvent{SaleID: 1})

	require.NoError(t, handler.handleMessage(context.Background(), msg))
	assert.Equal(t, 1, calls)
	assert.True(t, store.handled["evt-1"])
}

func TestHandleMessageSkipsAlreadyHandledEvent(t *testing.T) {
	store := newMemoryStore()
	store.handled["evt-2"] = true
	consumer := &Consumer{dedup: store}

	calls := 0
	consumer.OnSaleRecorded(func(context.Context, SaleRecordedEvent) error {
		calls++
		return nil
	})

	handler := &consumerGroupHandler{consumer: consumer}
	msg := saleMessage(t, "evt-2", SaleRecordedEvent{SaleID: 2})

	require.NoError(t, handler.handleMessage(context.Background(), msg))
	assert.Equal(t, 0, calls)
}

func TestHandleMessageFailureLeavesNoMarker(t *testing.T) {
	store := newMemoryStore()
	consumer := &Consumer{dedup: store}

	attempts := 0
	consumer.OnSaleRecorded(func(context.Context, SaleRecordedEvent) error {
		attempts++
		if attempts == 1 {
			return errors.New("store unavailable")
		}
		return nil
	})

	handler := &consumerGroupHandler{consumer: consumer}
	msg := saleMessage(t, "evt-3", SaleRecordedEvent{SaleID: 3})

	// First delivery fails; no marker may survive, or redelivery would be
	// skipped with the work never done.
	require.Error(t, handler.handleMessage(context.Background(), msg))
	assert.False(t, store.handled["evt-3"])

	// Redelivery reaches the handler and completes.
	require.NoError(t, handler.handleMessage(context.Background(), msg))
	assert.Equal(t, 2, attempts)
	assert.True(t, store.handled["evt-3"])
}

func TestHandleMessageMarkFailureDoesNotFailEvent(t *testing.T) {
	store := newMemoryStore()
	store.markErr = errors.New("redis flake")
	consumer := &Consumer{dedup: store}

	consumer.OnSaleRecorded(func(context.Context, SaleRecordedEvent) error {
		return nil
	})

	handler := &consumerGroupHandler{consumer: consumer}
	msg := saleMessage(t, "evt-4", SaleRecordedEvent{SaleID: 4})

	require.NoError(t, handler.handleMessage(context.Background(), msg))
}

func TestHandleMessageDropsMalformedPayload(t *testing.T) {
	store := newMemoryStore()
	consumer := &Consumer{dedup: store}

	consumer.OnSaleRecorded(func(context.Context, SaleRecordedEvent) error {
		t.Fatal("handler must not run for malformed payload")
		return nil
	})

	handler := &consumerGroupHandler{consumer: consumer}
	msg := &sarama.ConsumerMessage{
		Topic: TopicSales,
		Value: []byte("{not json"),
		Headers: []*sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(EventTypeSaleRecorded)},
			{Key: []byte("event_id"), Value: []byte("evt-5")},
		},
	}

	// Redelivery cannot fix a malformed payload, so it is dropped.
	require.NoError(t, handler.handleMessage(context.Background(), msg))
}

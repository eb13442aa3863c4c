package kafka

import "time"

// Event types
const (
	EventTypeSaleRecorded   = "sale.recorded"
	EventTypeProductUpdated = "product.updated"
)

// Default Kafka topics
const (
	TopicSales    = "sales"
	TopicProducts = "products"
)

// SaleLineItem is one product position inside a sale event.
type SaleLineItem struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

// SaleRecordedEvent carries the full sale document as created by the CRUD
// layer. The sale is immutable; the pipeline only reads it.
type SaleRecordedEvent struct {
	EventID    string         `json:"event_id"`
	EventType  string         `json:"event_type"`
	SaleID     uint           `json:"sale_id"`
	Items      []SaleLineItem `json:"items"`
	Total      float64        `json:"total"`
	Status     string         `json:"status"`
	RecordedAt time.Time      `json:"recorded_at"`
}

// ProductSnapshot is the product state on one side of an update event.
type ProductSnapshot struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Stock     int       `json:"stock"`
	IsActive  bool      `json:"is_active"`
	Version   int64     `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProductUpdatedEvent carries the pre-update and post-update snapshots of a
// product document.
type ProductUpdatedEvent struct {
	EventID   string          `json:"event_id"`
	EventType string          `json:"event_type"`
	ProductID uint            `json:"product_id"`
	Before    ProductSnapshot `json:"before"`
	After     ProductSnapshot `json:"after"`
	Timestamp time.Time       `json:"timestamp"`
}

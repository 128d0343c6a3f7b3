package event

import "time"

const (
	// OrderStatusTopic delivers order status changes published by the order
	// service. The booking side consumes it to keep derived table status fresh.
	OrderStatusTopic = "orders.status"

	EventOrderOpened    = "order.opened"
	EventOrderClosed    = "order.closed"
	EventOrderCancelled = "order.cancelled"
)

// OrderStatusEvent represents an order status change published to NATS.
type OrderStatusEvent struct {
	EventType     string    `json:"event_type"`
	OrderID       string    `json:"order_id"`
	TableID       string    `json:"table_id"`
	ReservationID string    `json:"reservation_id,omitempty"`
	Status        string    `json:"status"`
	Source        string    `json:"source,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

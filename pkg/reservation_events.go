package pkg

import "time"

const (
	// ReservationTopic delivers reservation lifecycle events to staff clients.
	ReservationTopic = "reservations.lifecycle"

	// Reservation lifecycle event types, tagged by transition name.
	EventNewReservation       = "new_reservation"
	EventReservationConfirmed = "reservation_confirmed"
	EventReservationSeated    = "reservation_seated"
	EventReservationCompleted = "reservation_completed"
	EventReservationCancelled = "reservation_cancelled"
	EventReservationNoShow    = "reservation_no_show"
	EventReservationMoved     = "reservation_moved"
	EventPaymentStatusUpdated = "payment_status_updated"
)

// ReservationEvent is published on every successful lifecycle transition.
// Delivery is fire-and-forget; downstream consumers assume at-least-once.
type ReservationEvent struct {
	EventType     string    `json:"event_type"`
	ReservationID string    `json:"reservation_id"`
	TableIDs      []string  `json:"table_ids"`
	Date          string    `json:"date"`
	SlotID        string    `json:"slot_id"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status,omitempty"`
	Source        string    `json:"source,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

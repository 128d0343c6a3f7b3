package booking

import (
	"github.com/google/uuid"
)

type TableCreateRequest struct {
	Number   string     `json:"number"`
	AreaID   *uuid.UUID `json:"area_id,omitempty"`
	Capacity int        `json:"capacity"`
}

type TableUpdateRequest struct {
	Number   string     `json:"number,omitempty"`
	AreaID   *uuid.UUID `json:"area_id,omitempty"`
	Capacity int        `json:"capacity,omitempty"`
}

type TableMaintenanceRequest struct {
	Maintenance bool   `json:"maintenance"`
	Reason      string `json:"reason,omitempty"`
}

type CreateReservationRequest struct {
	TableIDs      []uuid.UUID    `json:"table_ids"`
	Date          string         `json:"date"`
	SlotID        uuid.UUID      `json:"slot_id"`
	GuestCount    int            `json:"guest_count"`
	ContactName   string         `json:"contact_name"`
	ContactInfo   string         `json:"contact_info"`
	PaymentStatus string         `json:"payment_status,omitempty"`
	PreOrderItems []PreOrderItem `json:"pre_order_items,omitempty"`
	Notes         string         `json:"notes,omitempty"`
}

type MoveReservationRequest struct {
	TableIDs []uuid.UUID `json:"table_ids"`
}

type PaymentStatusRequest struct {
	PaymentStatus string `json:"payment_status"`
}

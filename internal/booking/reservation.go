package booking

import (
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"
)

// Reservation statuses. A reservation is "active" (holding its table claim)
// while pending, confirmed or seated; completed, cancelled and no_show are
// terminal.
const (
	ReservationStatusPending   = "pending"
	ReservationStatusConfirmed = "confirmed"
	ReservationStatusSeated    = "seated"
	ReservationStatusCompleted = "completed"
	ReservationStatusCancelled = "cancelled"
	ReservationStatusNoShow    = "no_show"
)

// Payment statuses tracked on the reservation itself. The gateway integration
// lives elsewhere; the lifecycle only cares whether charges are settled.
const (
	PaymentStatusPending = "pending"
	PaymentStatusPartial = "partial"
	PaymentStatusPrepaid = "prepaid"
	PaymentStatusPaid    = "paid"
)

type Reservation struct {
	ID            uuid.UUID      `json:"id" bson:"_id"`
	TableIDs      []uuid.UUID    `json:"table_ids" bson:"table_ids"`
	Date          string         `json:"date" bson:"date"`
	SlotID        uuid.UUID      `json:"slot_id" bson:"slot_id"`
	GuestCount    int            `json:"guest_count" bson:"guest_count"`
	ContactName   string         `json:"contact_name" bson:"contact_name"`
	ContactInfo   string         `json:"contact_info" bson:"contact_info"`
	Status        string         `json:"status" bson:"status"`
	PaymentStatus string         `json:"payment_status" bson:"payment_status"`
	PreOrderItems []PreOrderItem `json:"pre_order_items,omitempty" bson:"pre_order_items,omitempty"`
	Notes         string         `json:"notes,omitempty" bson:"notes,omitempty"`
	// TablesClaimedAt orders competing claims on the same tables. Creation
	// stamps it alongside CreatedAt; a move re-stamps it when the reservation
	// takes a new table set.
	TablesClaimedAt time.Time `json:"tables_claimed_at" bson:"tables_claimed_at"`
	CreatedAt       time.Time `json:"created_at" bson:"created_at"`
	CreatedBy       string    `json:"created_by" bson:"created_by"`
	UpdatedAt       time.Time `json:"updated_at" bson:"updated_at"`
	UpdatedBy       string    `json:"updated_by" bson:"updated_by"`
}

type PreOrderItem struct {
	MenuItemID uuid.UUID `json:"menu_item_id" bson:"menu_item_id"`
	Name       string    `json:"name" bson:"name"`
	Quantity   int       `json:"quantity" bson:"quantity"`
	Price      float64   `json:"price" bson:"price"`
}

func (r *Reservation) GetID() uuid.UUID {
	return r.ID
}

func (r *Reservation) ResourceType() string {
	return "reservation"
}

func (r *Reservation) SetID(id uuid.UUID) {
	r.ID = id
}

func NewReservation() *Reservation {
	return &Reservation{
		ID:            aqm.GenerateNewID(),
		Status:        ReservationStatusPending,
		PaymentStatus: PaymentStatusPending,
	}
}

func (r *Reservation) EnsureID() {
	if r.ID == uuid.Nil {
		r.ID = aqm.GenerateNewID()
	}
}

func (r *Reservation) BeforeCreate() {
	r.EnsureID()
	r.CreatedAt = time.Now()
	r.UpdatedAt = time.Now()
	r.TablesClaimedAt = r.CreatedAt
}

// StampTableClaim marks the current table set as claimed now. Moves call it
// on commit so a long-standing reservation cannot out-rank claims that were
// already holding the target tables.
func (r *Reservation) StampTableClaim() {
	r.TablesClaimedAt = time.Now()
}

func (r *Reservation) BeforeUpdate() {
	r.UpdatedAt = time.Now()
}

// Active reports whether the reservation still holds its table claim.
func (r *Reservation) Active() bool {
	switch r.Status {
	case ReservationStatusPending, ReservationStatusConfirmed, ReservationStatusSeated:
		return true
	}
	return false
}

// Terminal reports whether no further transitions can succeed.
func (r *Reservation) Terminal() bool {
	switch r.Status {
	case ReservationStatusCompleted, ReservationStatusCancelled, ReservationStatusNoShow:
		return true
	}
	return false
}

// References reports whether the reservation claims the given table.
func (r *Reservation) References(tableID uuid.UUID) bool {
	for _, id := range r.TableIDs {
		if id == tableID {
			return true
		}
	}
	return false
}

// PreOrderTotal sums the pre-ordered line items.
func (r *Reservation) PreOrderTotal() float64 {
	var total float64
	for _, item := range r.PreOrderItems {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// PaymentSettled reports whether outstanding charges block completion. A
// reservation without pre-order charges has nothing to settle.
func (r *Reservation) PaymentSettled() bool {
	if r.PreOrderTotal() == 0 {
		return true
	}
	return r.PaymentStatus == PaymentStatusPaid
}

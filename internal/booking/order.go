package booking

import (
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"
)

// Order statuses. Orders are owned by the order service; this module reads
// them to decide whether a table still has unfinished business, and re-points
// them when a reservation moves tables.
const (
	OrderStatusPending   = "pending"
	OrderStatusPreparing = "preparing"
	OrderStatusServed    = "served"
	OrderStatusClosed    = "closed"
	OrderStatusCancelled = "cancelled"
)

type Order struct {
	ID            uuid.UUID  `json:"id" bson:"_id"`
	TableID       uuid.UUID  `json:"table_id" bson:"table_id"`
	ReservationID *uuid.UUID `json:"reservation_id,omitempty" bson:"reservation_id,omitempty"`
	Status        string     `json:"status" bson:"status"`
	CreatedAt     time.Time  `json:"created_at" bson:"created_at"`
	CreatedBy     string     `json:"created_by" bson:"created_by"`
	UpdatedAt     time.Time  `json:"updated_at" bson:"updated_at"`
	UpdatedBy     string     `json:"updated_by" bson:"updated_by"`
}

func (o *Order) GetID() uuid.UUID {
	return o.ID
}

func (o *Order) ResourceType() string {
	return "order"
}

func (o *Order) SetID(id uuid.UUID) {
	o.ID = id
}

func NewOrder() *Order {
	return &Order{
		ID:     aqm.GenerateNewID(),
		Status: OrderStatusPending,
	}
}

func (o *Order) EnsureID() {
	if o.ID == uuid.Nil {
		o.ID = aqm.GenerateNewID()
	}
}

func (o *Order) BeforeCreate() {
	o.EnsureID()
	o.CreatedAt = time.Now()
	o.UpdatedAt = time.Now()
}

func (o *Order) BeforeUpdate() {
	o.UpdatedAt = time.Now()
}

// Open reports whether the order still occupies its table.
func (o *Order) Open() bool {
	switch o.Status {
	case OrderStatusPending, OrderStatusPreparing, OrderStatusServed:
		return true
	}
	return false
}

// Reassign points the order at a new table, used when a reservation moves.
func (o *Order) Reassign(tableID uuid.UUID) {
	o.TableID = tableID
	o.UpdatedAt = time.Now()
}

package booking

import (
	"context"

	"github.com/google/uuid"
)

type TableRepo interface {
	Create(ctx context.Context, table *Table) error
	Get(ctx context.Context, id uuid.UUID) (*Table, error)
	GetByNumber(ctx context.Context, number string) (*Table, error)
	List(ctx context.Context) ([]*Table, error)
	ListByArea(ctx context.Context, areaID uuid.UUID) ([]*Table, error)
	ListByStatus(ctx context.Context, status string) ([]*Table, error)
	Save(ctx context.Context, table *Table) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type SlotRepo interface {
	Create(ctx context.Context, slot *BookingSlot) error
	Get(ctx context.Context, id uuid.UUID) (*BookingSlot, error)
	List(ctx context.Context) ([]*BookingSlot, error)
	Save(ctx context.Context, slot *BookingSlot) error
}

type ReservationRepo interface {
	Create(ctx context.Context, reservation *Reservation) error
	Get(ctx context.Context, id uuid.UUID) (*Reservation, error)
	List(ctx context.Context) ([]*Reservation, error)
	ListByDate(ctx context.Context, date string) ([]*Reservation, error)
	// ListActiveForSlot returns reservations with an active status (pending,
	// confirmed, seated) for the given date and slot. This is the read the
	// double-booking guard is built on.
	ListActiveForSlot(ctx context.Context, date string, slotID uuid.UUID) ([]*Reservation, error)
	ListActiveByTable(ctx context.Context, tableID uuid.UUID, date string) ([]*Reservation, error)
	Save(ctx context.Context, reservation *Reservation) error
	// Delete removes a document outright. Reservations are never deleted once
	// committed; this exists solely to roll back a claim that lost the
	// concurrent-creation race before anyone observed it.
	Delete(ctx context.Context, id uuid.UUID) error
}

type OrderRepo interface {
	Get(ctx context.Context, id uuid.UUID) (*Order, error)
	ListOpenForTable(ctx context.Context, tableID uuid.UUID) ([]*Order, error)
	Save(ctx context.Context, order *Order) error
}

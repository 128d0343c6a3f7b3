package booking

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Sentinel targets for errors.Is checks. Each typed error below matches its
// sentinel so callers can branch without unpacking details.
var (
	ErrNotFound             = errors.New("not found")
	ErrInvalidInput         = errors.New("invalid input")
	ErrInsufficientCapacity = errors.New("insufficient capacity")
	ErrTableConflict        = errors.New("table conflict")
	ErrInvalidTransition    = errors.New("invalid transition")
	ErrPaymentOutstanding   = errors.New("payment outstanding")
	ErrOpenOrders           = errors.New("open orders")
)

// NotFoundError identifies a missing table, slot or reservation.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// InvalidInputError identifies a malformed request value.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}

// InsufficientCapacityError reports a table set that cannot seat the party.
type InsufficientCapacityError struct {
	TableIDs   []uuid.UUID
	Capacity   int
	GuestCount int
}

func (e *InsufficientCapacityError) Error() string {
	return fmt.Sprintf("tables seat %d, party of %d requested", e.Capacity, e.GuestCount)
}

func (e *InsufficientCapacityError) Is(target error) bool {
	return target == ErrInsufficientCapacity
}

// TableConflictError reports a table already claimed by another active
// reservation for the same date and slot, including the concurrent-creation
// race case.
type TableConflictError struct {
	TableID       uuid.UUID
	Date          string
	SlotID        uuid.UUID
	ReservationID uuid.UUID
}

func (e *TableConflictError) Error() string {
	return fmt.Sprintf("table %s already reserved for %s slot %s by reservation %s",
		e.TableID, e.Date, e.SlotID, e.ReservationID)
}

func (e *TableConflictError) Is(target error) bool {
	return target == ErrTableConflict
}

// InvalidTransitionError reports a lifecycle action attempted from an
// incompatible status.
type InvalidTransitionError struct {
	Current   string
	Requested string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s a reservation that is %s", e.Requested, e.Current)
}

func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// PaymentOutstandingError blocks completion while pre-order charges remain
// unsettled.
type PaymentOutstandingError struct {
	ReservationID uuid.UUID
	PaymentStatus string
	Amount        float64
}

func (e *PaymentOutstandingError) Error() string {
	return fmt.Sprintf("reservation %s has %.2f outstanding (payment status %s)",
		e.ReservationID, e.Amount, e.PaymentStatus)
}

func (e *PaymentOutstandingError) Is(target error) bool {
	return target == ErrPaymentOutstanding
}

// OpenOrdersError blocks completion while the reservation still has open
// orders in the kitchen.
type OpenOrdersError struct {
	ReservationID uuid.UUID
	OrderIDs      []uuid.UUID
}

func (e *OpenOrdersError) Error() string {
	return fmt.Sprintf("reservation %s has %d open orders", e.ReservationID, len(e.OrderIDs))
}

func (e *OpenOrdersError) Is(target error) bool {
	return target == ErrOpenOrders
}

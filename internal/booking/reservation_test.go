package booking

import (
	"testing"

	"github.com/google/uuid"
)

func TestReservationActive(t *testing.T) {
	tests := []struct {
		status string
		want   bool
	}{
		{ReservationStatusPending, true},
		{ReservationStatusConfirmed, true},
		{ReservationStatusSeated, true},
		{ReservationStatusCompleted, false},
		{ReservationStatusCancelled, false},
		{ReservationStatusNoShow, false},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			r := NewReservation()
			r.Status = tt.status
			if got := r.Active(); got != tt.want {
				t.Errorf("Active() with status %q = %v, want %v", tt.status, got, tt.want)
			}
			if got := r.Terminal(); got == tt.want {
				t.Errorf("Terminal() with status %q = %v, want %v", tt.status, got, !tt.want)
			}
		})
	}
}

func TestReservationReferences(t *testing.T) {
	a := uuid.MustParse("550e8400-e29b-41d4-a716-446655440001")
	b := uuid.MustParse("550e8400-e29b-41d4-a716-446655440002")
	c := uuid.MustParse("550e8400-e29b-41d4-a716-446655440003")

	r := NewReservation()
	r.TableIDs = []uuid.UUID{a, b}

	if !r.References(a) || !r.References(b) {
		t.Error("References() should report claimed tables")
	}
	if r.References(c) {
		t.Error("References() should not report an unclaimed table")
	}
}

func TestReservationPreOrderTotal(t *testing.T) {
	r := NewReservation()
	if got := r.PreOrderTotal(); got != 0 {
		t.Errorf("PreOrderTotal() with no items = %.2f, want 0", got)
	}

	r.PreOrderItems = []PreOrderItem{
		{Name: "Starter", Quantity: 2, Price: 8.5},
		{Name: "Main", Quantity: 1, Price: 21},
	}
	if got := r.PreOrderTotal(); got != 38 {
		t.Errorf("PreOrderTotal() = %.2f, want 38.00", got)
	}
}

func TestReservationPaymentSettled(t *testing.T) {
	tests := []struct {
		name          string
		items         []PreOrderItem
		paymentStatus string
		want          bool
	}{
		{
			name:          "noChargesPending",
			paymentStatus: PaymentStatusPending,
			want:          true,
		},
		{
			name:          "chargesPending",
			items:         []PreOrderItem{{Name: "Main", Quantity: 1, Price: 21}},
			paymentStatus: PaymentStatusPending,
			want:          false,
		},
		{
			name:          "chargesPartial",
			items:         []PreOrderItem{{Name: "Main", Quantity: 1, Price: 21}},
			paymentStatus: PaymentStatusPartial,
			want:          false,
		},
		{
			name:          "chargesPrepaid",
			items:         []PreOrderItem{{Name: "Main", Quantity: 1, Price: 21}},
			paymentStatus: PaymentStatusPrepaid,
			want:          false,
		},
		{
			name:          "chargesPaid",
			items:         []PreOrderItem{{Name: "Main", Quantity: 1, Price: 21}},
			paymentStatus: PaymentStatusPaid,
			want:          true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReservation()
			r.PreOrderItems = tt.items
			r.PaymentStatus = tt.paymentStatus
			if got := r.PaymentSettled(); got != tt.want {
				t.Errorf("PaymentSettled() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReservationHooks(t *testing.T) {
	r := &Reservation{}
	r.EnsureID()
	if r.ID == uuid.Nil {
		t.Error("EnsureID() left a nil ID")
	}

	keep := r.ID
	r.EnsureID()
	if r.ID != keep {
		t.Error("EnsureID() replaced an existing ID")
	}

	r.BeforeCreate()
	if r.CreatedAt.IsZero() || r.UpdatedAt.IsZero() {
		t.Error("BeforeCreate() left zero timestamps")
	}
	if !r.TablesClaimedAt.Equal(r.CreatedAt) {
		t.Error("BeforeCreate() did not claim tables at creation time")
	}

	created := r.CreatedAt
	r.BeforeUpdate()
	if r.CreatedAt != created {
		t.Error("BeforeUpdate() touched CreatedAt")
	}
	if r.UpdatedAt.Before(created) {
		t.Error("BeforeUpdate() moved UpdatedAt backwards")
	}

	r.StampTableClaim()
	if r.TablesClaimedAt.Before(created) {
		t.Error("StampTableClaim() moved the claim stamp backwards")
	}
	if r.CreatedAt != created {
		t.Error("StampTableClaim() touched CreatedAt")
	}
}

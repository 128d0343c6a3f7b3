package booking

import (
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"
)

// DateFormat is the calendar-day form reservations are keyed by.
const DateFormat = "2006-01-02"

// SlotTimeFormat is the time-of-day form booking slot bounds are stored in.
const SlotTimeFormat = "15:04"

// BookingSlot is a named fixed time-of-day interval reservations are booked
// against (e.g. "Lunch" 11:00-13:00). Static reference data, applied by seeds.
type BookingSlot struct {
	ID        uuid.UUID `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	StartTime string    `json:"start_time" bson:"start_time"`
	EndTime   string    `json:"end_time" bson:"end_time"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	CreatedBy string    `json:"created_by" bson:"created_by"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
	UpdatedBy string    `json:"updated_by" bson:"updated_by"`
}

func (s *BookingSlot) GetID() uuid.UUID {
	return s.ID
}

func (s *BookingSlot) ResourceType() string {
	return "booking-slot"
}

func (s *BookingSlot) SetID(id uuid.UUID) {
	s.ID = id
}

func NewBookingSlot() *BookingSlot {
	return &BookingSlot{
		ID: aqm.GenerateNewID(),
	}
}

func (s *BookingSlot) EnsureID() {
	if s.ID == uuid.Nil {
		s.ID = aqm.GenerateNewID()
	}
}

func (s *BookingSlot) BeforeCreate() {
	s.EnsureID()
	s.CreatedAt = time.Now()
	s.UpdatedAt = time.Now()
}

func (s *BookingSlot) BeforeUpdate() {
	s.UpdatedAt = time.Now()
}

// ParseDate validates a calendar-day value in DateFormat.
func ParseDate(date string) (time.Time, error) {
	return time.Parse(DateFormat, date)
}

func todayDate() string {
	return time.Now().Format(DateFormat)
}

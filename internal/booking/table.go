package booking

import (
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"
)

// Table statuses. All of them except maintenance are a derived projection of
// the active reservations and open orders touching the table; maintenance is a
// manual override flag stored on the table itself and never auto-cleared.
const (
	TableStatusAvailable   = "available"
	TableStatusReserved    = "reserved"
	TableStatusOccupied    = "occupied"
	TableStatusCleaning    = "cleaning"
	TableStatusMaintenance = "maintenance"
)

type Table struct {
	ID          uuid.UUID  `json:"id" bson:"_id"`
	Number      string     `json:"number" bson:"number"`
	AreaID      *uuid.UUID `json:"area_id,omitempty" bson:"area_id,omitempty"`
	Capacity    int        `json:"capacity" bson:"capacity"`
	Status      string     `json:"status" bson:"status"`
	Maintenance bool       `json:"maintenance" bson:"maintenance"`
	Notes       []Note     `json:"notes,omitempty" bson:"notes,omitempty"`
	CreatedAt   time.Time  `json:"created_at" bson:"created_at"`
	CreatedBy   string     `json:"created_by" bson:"created_by"`
	UpdatedAt   time.Time  `json:"updated_at" bson:"updated_at"`
	UpdatedBy   string     `json:"updated_by" bson:"updated_by"`
}

type Note struct {
	ID        uuid.UUID `json:"id" bson:"id"`
	Content   string    `json:"content" bson:"content"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	CreatedBy string    `json:"created_by" bson:"created_by"`
}

type Area struct {
	ID   uuid.UUID `json:"id" bson:"_id"`
	Name string    `json:"name" bson:"name"`
}

func (t *Table) GetID() uuid.UUID {
	return t.ID
}

func (t *Table) ResourceType() string {
	return "table"
}

func (t *Table) SetID(id uuid.UUID) {
	t.ID = id
}

func NewTable() *Table {
	return &Table{
		ID:     aqm.GenerateNewID(),
		Status: TableStatusAvailable,
		Notes:  []Note{},
	}
}

func (t *Table) EnsureID() {
	if t.ID == uuid.Nil {
		t.ID = aqm.GenerateNewID()
	}
}

func (t *Table) BeforeCreate() {
	t.EnsureID()
	t.CreatedAt = time.Now()
	t.UpdatedAt = time.Now()
}

func (t *Table) BeforeUpdate() {
	t.UpdatedAt = time.Now()
}

func (t *Table) AddNote(content, createdBy string) {
	if t.Notes == nil {
		t.Notes = []Note{}
	}
	note := Note{
		ID:        aqm.GenerateNewID(),
		Content:   content,
		CreatedAt: time.Now(),
		CreatedBy: createdBy,
	}
	t.Notes = append(t.Notes, note)
}

// SetMaintenance flips the manual override. Entering maintenance pins the
// status; leaving it hands the status back to the derived projection, so the
// caller is expected to recompute afterwards.
func (t *Table) SetMaintenance(on bool) {
	t.Maintenance = on
	if on {
		t.Status = TableStatusMaintenance
	}
	t.UpdatedAt = time.Now()
}

// SameArea reports whether both tables belong to the same known area.
func (t *Table) SameArea(other *Table) bool {
	if t.AreaID == nil || other == nil || other.AreaID == nil {
		return false
	}
	return *t.AreaID == *other.AreaID
}

package booking

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// MockPublisher is a mock implementation of events.Publisher for testing
type MockPublisher struct {
	mu          sync.Mutex
	PublishFunc func(ctx context.Context, topic string, msg []byte) error
	published   []publishedMessage
}

type publishedMessage struct {
	Topic   string
	Payload []byte
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, msg []byte) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, topic, msg)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, publishedMessage{Topic: topic, Payload: msg})
	return nil
}

func (m *MockPublisher) Published() []publishedMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]publishedMessage, len(m.published))
	copy(result, m.published)
	return result
}

func (m *MockPublisher) PublishedOn(topic string) []publishedMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []publishedMessage
	for _, p := range m.published {
		if p.Topic == topic {
			result = append(result, p)
		}
	}
	return result
}

// MockTableRepo is a mock implementation of TableRepo for testing
type MockTableRepo struct {
	mu         sync.RWMutex
	tables     map[uuid.UUID]*Table
	CreateFunc func(ctx context.Context, table *Table) error
	GetFunc    func(ctx context.Context, id uuid.UUID) (*Table, error)
	SaveFunc   func(ctx context.Context, table *Table) error
}

func NewMockTableRepo() *MockTableRepo {
	return &MockTableRepo{
		tables: make(map[uuid.UUID]*Table),
	}
}

func (m *MockTableRepo) Create(ctx context.Context, table *Table) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, table)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[table.ID] = table
	return nil
}

func (m *MockTableRepo) Get(ctx context.Context, id uuid.UUID) (*Table, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	table, ok := m.tables[id]
	if !ok {
		return nil, nil
	}
	return table, nil
}

func (m *MockTableRepo) GetByNumber(ctx context.Context, number string) (*Table, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.tables {
		if t.Number == number {
			return t, nil
		}
	}
	return nil, nil
}

func (m *MockTableRepo) List(ctx context.Context) ([]*Table, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*Table
	for _, t := range m.tables {
		result = append(result, t)
	}
	return result, nil
}

func (m *MockTableRepo) ListByArea(ctx context.Context, areaID uuid.UUID) ([]*Table, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*Table
	for _, t := range m.tables {
		if t.AreaID != nil && *t.AreaID == areaID {
			result = append(result, t)
		}
	}
	return result, nil
}

func (m *MockTableRepo) ListByStatus(ctx context.Context, status string) ([]*Table, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*Table
	for _, t := range m.tables {
		if t.Status == status {
			result = append(result, t)
		}
	}
	return result, nil
}

func (m *MockTableRepo) Save(ctx context.Context, table *Table) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, table)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tables[table.ID]; !ok {
		return fmt.Errorf("table not found")
	}
	m.tables[table.ID] = table
	return nil
}

func (m *MockTableRepo) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tables, id)
	return nil
}

// MockSlotRepo is a mock implementation of SlotRepo for testing
type MockSlotRepo struct {
	mu    sync.RWMutex
	slots map[uuid.UUID]*BookingSlot
}

func NewMockSlotRepo() *MockSlotRepo {
	return &MockSlotRepo{
		slots: make(map[uuid.UUID]*BookingSlot),
	}
}

func (m *MockSlotRepo) Create(ctx context.Context, slot *BookingSlot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[slot.ID] = slot
	return nil
}

func (m *MockSlotRepo) Get(ctx context.Context, id uuid.UUID) (*BookingSlot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	slot, ok := m.slots[id]
	if !ok {
		return nil, nil
	}
	return slot, nil
}

func (m *MockSlotRepo) List(ctx context.Context) ([]*BookingSlot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*BookingSlot
	for _, s := range m.slots {
		result = append(result, s)
	}
	return result, nil
}

func (m *MockSlotRepo) Save(ctx context.Context, slot *BookingSlot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.slots[slot.ID]; !ok {
		return fmt.Errorf("slot not found")
	}
	m.slots[slot.ID] = slot
	return nil
}

// MockReservationRepo is a mock implementation of ReservationRepo for testing
type MockReservationRepo struct {
	mu           sync.RWMutex
	reservations map[uuid.UUID]*Reservation
	CreateFunc   func(ctx context.Context, reservation *Reservation) error
	GetFunc      func(ctx context.Context, id uuid.UUID) (*Reservation, error)
	SaveFunc     func(ctx context.Context, reservation *Reservation) error
	DeleteFunc   func(ctx context.Context, id uuid.UUID) error
}

func NewMockReservationRepo() *MockReservationRepo {
	return &MockReservationRepo{
		reservations: make(map[uuid.UUID]*Reservation),
	}
}

func (m *MockReservationRepo) Create(ctx context.Context, reservation *Reservation) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, reservation)
	}
	m.Put(reservation)
	return nil
}

// Put inserts directly, bypassing any CreateFunc override.
func (m *MockReservationRepo) Put(reservation *Reservation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reservations[reservation.ID] = reservation
}

func (m *MockReservationRepo) Get(ctx context.Context, id uuid.UUID) (*Reservation, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	reservation, ok := m.reservations[id]
	if !ok {
		return nil, nil
	}
	return reservation, nil
}

func (m *MockReservationRepo) List(ctx context.Context) ([]*Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*Reservation
	for _, r := range m.reservations {
		result = append(result, r)
	}
	return result, nil
}

func (m *MockReservationRepo) ListByDate(ctx context.Context, date string) ([]*Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*Reservation
	for _, r := range m.reservations {
		if r.Date == date {
			result = append(result, r)
		}
	}
	return result, nil
}

func (m *MockReservationRepo) ListActiveForSlot(ctx context.Context, date string, slotID uuid.UUID) ([]*Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*Reservation
	for _, r := range m.reservations {
		if r.Date == date && r.SlotID == slotID && r.Active() {
			result = append(result, r)
		}
	}
	return result, nil
}

func (m *MockReservationRepo) ListActiveByTable(ctx context.Context, tableID uuid.UUID, date string) ([]*Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*Reservation
	for _, r := range m.reservations {
		if r.Date == date && r.Active() && r.References(tableID) {
			result = append(result, r)
		}
	}
	return result, nil
}

func (m *MockReservationRepo) Save(ctx context.Context, reservation *Reservation) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, reservation)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reservations[reservation.ID]; !ok {
		return fmt.Errorf("reservation not found")
	}
	m.reservations[reservation.ID] = reservation
	return nil
}

func (m *MockReservationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reservations[id]; !ok {
		return fmt.Errorf("reservation not found")
	}
	delete(m.reservations, id)
	return nil
}

func (m *MockReservationRepo) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.reservations)
}

// MockOrderRepo is a mock implementation of OrderRepo for testing
type MockOrderRepo struct {
	mu     sync.RWMutex
	orders map[uuid.UUID]*Order
}

func NewMockOrderRepo() *MockOrderRepo {
	return &MockOrderRepo{
		orders: make(map[uuid.UUID]*Order),
	}
}

func (m *MockOrderRepo) Put(order *Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[order.ID] = order
}

func (m *MockOrderRepo) Get(ctx context.Context, id uuid.UUID) (*Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	order, ok := m.orders[id]
	if !ok {
		return nil, nil
	}
	return order, nil
}

func (m *MockOrderRepo) ListOpenForTable(ctx context.Context, tableID uuid.UUID) ([]*Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*Order
	for _, o := range m.orders {
		if o.TableID == tableID && o.Open() {
			result = append(result, o)
		}
	}
	return result, nil
}

func (m *MockOrderRepo) Save(ctx context.Context, order *Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[order.ID]; !ok {
		return fmt.Errorf("order not found")
	}
	m.orders[order.ID] = order
	return nil
}

package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/events"
	"github.com/google/uuid"

	"github.com/tableclub/reserva/pkg"
)

const reservationEventSource = "reserva"

// claimRetries bounds the optimistic double-booking guard. A losing claim is
// rolled back and retried against a fresh read; a persistent conflict
// surfaces as TableConflict.
const claimRetries = 3

// Lifecycle actions. Each maps to exactly one transition rule below.
const (
	ActionConfirm  = "confirm"
	ActionSeat     = "seat"
	ActionComplete = "complete"
	ActionCancel   = "cancel"
	ActionNoShow   = "no_show"
)

type transitionRule struct {
	from  []string
	to    string
	event string
}

// transitions is the single authority on which status moves are legal.
// Anything not listed here is rejected with InvalidTransition; handlers never
// carry their own status checks.
var transitions = map[string]transitionRule{
	ActionConfirm: {
		from:  []string{ReservationStatusPending},
		to:    ReservationStatusConfirmed,
		event: pkg.EventReservationConfirmed,
	},
	ActionSeat: {
		from:  []string{ReservationStatusConfirmed},
		to:    ReservationStatusSeated,
		event: pkg.EventReservationSeated,
	},
	ActionComplete: {
		from:  []string{ReservationStatusSeated},
		to:    ReservationStatusCompleted,
		event: pkg.EventReservationCompleted,
	},
	ActionCancel: {
		from:  []string{ReservationStatusPending, ReservationStatusConfirmed},
		to:    ReservationStatusCancelled,
		event: pkg.EventReservationCancelled,
	},
	ActionNoShow: {
		from:  []string{ReservationStatusPending, ReservationStatusConfirmed},
		to:    ReservationStatusNoShow,
		event: pkg.EventReservationNoShow,
	},
}

// Lifecycle owns every write to reservations and to derived table status. It
// returns committed state plus emits the matching event; event emission is
// best-effort and never rolls back a committed transition.
type Lifecycle struct {
	tableRepo       TableRepo
	slotRepo        SlotRepo
	reservationRepo ReservationRepo
	orderRepo       OrderRepo
	engine          *Engine
	publisher       events.Publisher
	logger          aqm.Logger
}

type LifecycleDeps struct {
	TableRepo       TableRepo
	SlotRepo        SlotRepo
	ReservationRepo ReservationRepo
	OrderRepo       OrderRepo
	Engine          *Engine
	Publisher       events.Publisher
}

func NewLifecycle(ld LifecycleDeps, logger aqm.Logger) *Lifecycle {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Lifecycle{
		tableRepo:       ld.TableRepo,
		slotRepo:        ld.SlotRepo,
		reservationRepo: ld.ReservationRepo,
		orderRepo:       ld.OrderRepo,
		engine:          ld.Engine,
		publisher:       ld.Publisher,
		logger:          logger,
	}
}

// CreateReservation books a party onto the requested tables for a date and
// slot. Either the reservation exists with its tables claimed afterwards, or
// nothing happened.
func (l *Lifecycle) CreateReservation(ctx context.Context, req CreateReservationRequest) (*Reservation, error) {
	if req.GuestCount < 1 {
		return nil, &InvalidInputError{Field: "guest_count", Reason: "must be at least 1"}
	}
	if _, err := ParseDate(req.Date); err != nil {
		return nil, &InvalidInputError{Field: "date", Reason: fmt.Sprintf("must be in %s form", DateFormat)}
	}
	if len(req.TableIDs) == 0 {
		return nil, &InvalidInputError{Field: "table_ids", Reason: "at least one table is required"}
	}

	slot, err := l.slotRepo.Get(ctx, req.SlotID)
	if err != nil {
		return nil, fmt.Errorf("cannot load slot: %w", err)
	}
	if slot == nil {
		return nil, &NotFoundError{Resource: "booking slot", ID: req.SlotID.String()}
	}

	tables, err := l.resolveTables(ctx, req.TableIDs)
	if err != nil {
		return nil, err
	}
	if !HasCapacity(tables, req.GuestCount) {
		return nil, &InsufficientCapacityError{
			TableIDs:   req.TableIDs,
			Capacity:   TotalCapacity(tables),
			GuestCount: req.GuestCount,
		}
	}

	reservation := NewReservation()
	reservation.TableIDs = req.TableIDs
	reservation.Date = req.Date
	reservation.SlotID = req.SlotID
	reservation.GuestCount = req.GuestCount
	reservation.ContactName = req.ContactName
	reservation.ContactInfo = req.ContactInfo
	reservation.PreOrderItems = req.PreOrderItems
	reservation.Notes = req.Notes
	if req.PaymentStatus != "" {
		reservation.PaymentStatus = req.PaymentStatus
	}
	reservation.BeforeCreate()

	if err := l.claimTables(ctx, reservation); err != nil {
		return nil, err
	}

	l.emitReservationEvent(ctx, pkg.EventNewReservation, reservation)
	l.recomputeTables(ctx, reservation.TableIDs, reservation.Date)

	return reservation, nil
}

// claimTables commits the reservation with a serializing guard around the
// read-then-write. The free check and the claim cannot run as one storage
// transaction here, so after committing we re-read and yield to any
// concurrently created claim that is older (ID as tie-break). Losing claims
// are rolled back before anyone could act on them.
func (l *Lifecycle) claimTables(ctx context.Context, reservation *Reservation) error {
	for attempt := 0; attempt < claimRetries; attempt++ {
		active, err := l.reservationRepo.ListActiveForSlot(ctx, reservation.Date, reservation.SlotID)
		if err != nil {
			return fmt.Errorf("cannot list active reservations: %w", err)
		}
		if conflict := findConflict(active, reservation, reservation.TableIDs); conflict != nil {
			return conflict
		}

		// Stamp at commit time, not construction time: a claim that commits
		// and verifies before a rival even exists must never lose the tie to
		// that rival's earlier-built timestamp.
		reservation.BeforeCreate()

		if err := l.reservationRepo.Create(ctx, reservation); err != nil {
			return fmt.Errorf("cannot create reservation: %w", err)
		}

		active, err = l.reservationRepo.ListActiveForSlot(ctx, reservation.Date, reservation.SlotID)
		if err != nil {
			// The claim is committed; a failed verification read must not
			// leave it half-applied. Surface the fault, keep the claim.
			return fmt.Errorf("cannot verify reservation claim: %w", err)
		}

		winner := findConflict(active, reservation, reservation.TableIDs)
		if winner == nil {
			return nil
		}

		if err := l.reservationRepo.Delete(ctx, reservation.ID); err != nil {
			return fmt.Errorf("cannot roll back conflicting claim: %w", err)
		}
		l.logger.Debug("reservation claim lost race, rolled back",
			"reservation_id", reservation.ID.String(),
			"winner", winner.ReservationID.String(),
			"attempt", attempt+1,
		)
	}

	// Retries exhausted; report against the current claim holders.
	active, err := l.reservationRepo.ListActiveForSlot(ctx, reservation.Date, reservation.SlotID)
	if err != nil {
		return fmt.Errorf("cannot list active reservations: %w", err)
	}
	if conflict := findConflict(active, reservation, reservation.TableIDs); conflict != nil {
		return conflict
	}
	return &TableConflictError{TableID: reservation.TableIDs[0], Date: reservation.Date, SlotID: reservation.SlotID}
}

// findConflict returns the conflict owed to the oldest competing claim on any
// of the given tables, or nil when the reservation holds them uncontested.
// TablesClaimedAt orders competing claims so create and move commits share
// one ranking; IDs break exact ties so both racers agree on the winner.
func findConflict(active []*Reservation, reservation *Reservation, tableIDs []uuid.UUID) *TableConflictError {
	var winner *Reservation
	var winnerTable uuid.UUID

	for _, other := range active {
		if other.ID == reservation.ID {
			continue
		}
		for _, tableID := range tableIDs {
			if !other.References(tableID) {
				continue
			}
			if other.TablesClaimedAt.After(reservation.TablesClaimedAt) {
				continue
			}
			if other.TablesClaimedAt.Equal(reservation.TablesClaimedAt) && other.ID.String() > reservation.ID.String() {
				continue
			}
			if winner == nil || other.TablesClaimedAt.Before(winner.TablesClaimedAt) {
				winner = other
				winnerTable = tableID
			}
		}
	}

	if winner == nil {
		return nil
	}
	return &TableConflictError{
		TableID:       winnerTable,
		Date:          reservation.Date,
		SlotID:        reservation.SlotID,
		ReservationID: winner.ID,
	}
}

// claimMove commits a table swap under the same serializing guard as
// claimTables: claim the targets with a fresh stamp, re-read, and yield to
// any competing committed claim that out-ranks ours. A losing move is rolled
// back onto its original tables, which it never stopped out-ranking rivals
// on, so the reservation stays booked either way.
func (l *Lifecycle) claimMove(ctx context.Context, reservation *Reservation, newTableIDs []uuid.UUID) error {
	oldTableIDs := reservation.TableIDs
	oldClaimedAt := reservation.TablesClaimedAt

	restore := func() {
		reservation.TableIDs = oldTableIDs
		reservation.TablesClaimedAt = oldClaimedAt
	}

	for attempt := 0; attempt < claimRetries; attempt++ {
		// The targets are claimed at move commit time. Ranking the claim by
		// the original creation stamp would let an old reservation take a
		// table from whoever already holds it.
		reservation.StampTableClaim()

		active, err := l.reservationRepo.ListActiveForSlot(ctx, reservation.Date, reservation.SlotID)
		if err != nil {
			restore()
			return fmt.Errorf("cannot list active reservations: %w", err)
		}
		if conflict := findConflict(active, reservation, newTableIDs); conflict != nil {
			restore()
			return conflict
		}

		reservation.TableIDs = newTableIDs
		reservation.BeforeUpdate()
		if err := l.reservationRepo.Save(ctx, reservation); err != nil {
			restore()
			return fmt.Errorf("cannot save reservation: %w", err)
		}

		active, err = l.reservationRepo.ListActiveForSlot(ctx, reservation.Date, reservation.SlotID)
		if err != nil {
			// The move is committed; a failed verification read must not
			// leave it half-applied. Surface the fault, keep the claim.
			return fmt.Errorf("cannot verify move claim: %w", err)
		}

		winner := findConflict(active, reservation, newTableIDs)
		if winner == nil {
			return nil
		}

		restore()
		reservation.BeforeUpdate()
		if err := l.reservationRepo.Save(ctx, reservation); err != nil {
			return fmt.Errorf("cannot roll back conflicting move: %w", err)
		}
		l.logger.Debug("move claim lost race, rolled back",
			"reservation_id", reservation.ID.String(),
			"winner", winner.ReservationID.String(),
			"attempt", attempt+1,
		)
	}

	// Retries exhausted; report against the current claim holders.
	active, err := l.reservationRepo.ListActiveForSlot(ctx, reservation.Date, reservation.SlotID)
	if err != nil {
		return fmt.Errorf("cannot list active reservations: %w", err)
	}
	for _, other := range active {
		if other.ID == reservation.ID {
			continue
		}
		for _, tableID := range newTableIDs {
			if other.References(tableID) {
				return &TableConflictError{
					TableID:       tableID,
					Date:          reservation.Date,
					SlotID:        reservation.SlotID,
					ReservationID: other.ID,
				}
			}
		}
	}
	return &TableConflictError{TableID: newTableIDs[0], Date: reservation.Date, SlotID: reservation.SlotID}
}

// Transition applies a named lifecycle action. Illegal source statuses are
// rejected uniformly via the transition table, never coerced.
func (l *Lifecycle) Transition(ctx context.Context, id uuid.UUID, action string) (*Reservation, error) {
	rule, ok := transitions[action]
	if !ok {
		return nil, &InvalidInputError{Field: "action", Reason: fmt.Sprintf("unknown action %q", action)}
	}

	reservation, err := l.reservationRepo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("cannot load reservation: %w", err)
	}
	if reservation == nil {
		return nil, &NotFoundError{Resource: "reservation", ID: id.String()}
	}

	if !statusIn(reservation.Status, rule.from) {
		return nil, &InvalidTransitionError{Current: reservation.Status, Requested: action}
	}

	if action == ActionComplete {
		if !reservation.PaymentSettled() {
			return nil, &PaymentOutstandingError{
				ReservationID: reservation.ID,
				PaymentStatus: reservation.PaymentStatus,
				Amount:        reservation.PreOrderTotal(),
			}
		}
		openOrders, err := l.openOrdersFor(ctx, reservation)
		if err != nil {
			return nil, err
		}
		if len(openOrders) > 0 {
			return nil, &OpenOrdersError{ReservationID: reservation.ID, OrderIDs: openOrders}
		}
	}

	reservation.Status = rule.to
	reservation.BeforeUpdate()

	if err := l.reservationRepo.Save(ctx, reservation); err != nil {
		return nil, fmt.Errorf("cannot save reservation: %w", err)
	}

	l.emitReservationEvent(ctx, rule.event, reservation)
	l.recomputeTables(ctx, reservation.TableIDs, reservation.Date)

	return reservation, nil
}

// MoveReservation swaps an active reservation onto a new table set, claiming
// the targets and releasing the old ones in one logical step. Open orders
// linked to the reservation follow it to the first new table.
func (l *Lifecycle) MoveReservation(ctx context.Context, id uuid.UUID, newTableIDs []uuid.UUID) (*Reservation, error) {
	if len(newTableIDs) == 0 {
		return nil, &InvalidInputError{Field: "table_ids", Reason: "at least one table is required"}
	}

	reservation, err := l.reservationRepo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("cannot load reservation: %w", err)
	}
	if reservation == nil {
		return nil, &NotFoundError{Resource: "reservation", ID: id.String()}
	}
	if !reservation.Active() {
		return nil, &InvalidTransitionError{Current: reservation.Status, Requested: "move"}
	}

	tables, err := l.resolveTables(ctx, newTableIDs)
	if err != nil {
		return nil, err
	}
	if !HasCapacity(tables, reservation.GuestCount) {
		return nil, &InsufficientCapacityError{
			TableIDs:   newTableIDs,
			Capacity:   TotalCapacity(tables),
			GuestCount: reservation.GuestCount,
		}
	}

	oldTableIDs := reservation.TableIDs
	if err := l.claimMove(ctx, reservation, newTableIDs); err != nil {
		return nil, err
	}

	l.repointOpenOrders(ctx, reservation, oldTableIDs, newTableIDs[0])

	l.emitReservationEvent(ctx, pkg.EventReservationMoved, reservation)
	l.recomputeTables(ctx, append(oldTableIDs, newTableIDs...), reservation.Date)

	return reservation, nil
}

// UpdatePaymentStatus records a payment state change. Chaining a complete
// after a paid update while seated is the caller's policy, not automatic.
func (l *Lifecycle) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status string) (*Reservation, error) {
	switch status {
	case PaymentStatusPending, PaymentStatusPartial, PaymentStatusPrepaid, PaymentStatusPaid:
	default:
		return nil, &InvalidInputError{Field: "payment_status", Reason: fmt.Sprintf("unknown status %q", status)}
	}

	reservation, err := l.reservationRepo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("cannot load reservation: %w", err)
	}
	if reservation == nil {
		return nil, &NotFoundError{Resource: "reservation", ID: id.String()}
	}

	reservation.PaymentStatus = status
	reservation.BeforeUpdate()

	if err := l.reservationRepo.Save(ctx, reservation); err != nil {
		return nil, fmt.Errorf("cannot save reservation: %w", err)
	}

	l.emitReservationEvent(ctx, pkg.EventPaymentStatusUpdated, reservation)

	return reservation, nil
}

// RecomputeTableStatus projects a table's status from its active reservations
// and open orders for the given date. The projection is idempotent and
// order-independent: recomputing from an unchanged underlying set always
// lands on the same status. Maintenance overrides and is never auto-cleared.
func (l *Lifecycle) RecomputeTableStatus(ctx context.Context, tableID uuid.UUID, date string) error {
	table, err := l.tableRepo.Get(ctx, tableID)
	if err != nil {
		return fmt.Errorf("cannot load table: %w", err)
	}
	if table == nil {
		return &NotFoundError{Resource: "table", ID: tableID.String()}
	}

	if table.Maintenance {
		return nil
	}

	status, err := l.deriveTableStatus(ctx, tableID, date)
	if err != nil {
		return err
	}

	if table.Status == status {
		return nil
	}

	previous := table.Status
	table.Status = status
	table.BeforeUpdate()

	if err := l.tableRepo.Save(ctx, table); err != nil {
		return fmt.Errorf("cannot save table status: %w", err)
	}

	l.emitTableStatusEvent(ctx, table, previous)
	return nil
}

func (l *Lifecycle) deriveTableStatus(ctx context.Context, tableID uuid.UUID, date string) (string, error) {
	orders, err := l.orderRepo.ListOpenForTable(ctx, tableID)
	if err != nil {
		return "", fmt.Errorf("cannot list open orders: %w", err)
	}
	if len(orders) > 0 {
		return TableStatusOccupied, nil
	}

	reservations, err := l.reservationRepo.ListActiveByTable(ctx, tableID, date)
	if err != nil {
		return "", fmt.Errorf("cannot list active reservations: %w", err)
	}

	status := TableStatusAvailable
	for _, reservation := range reservations {
		if reservation.Status == ReservationStatusSeated {
			return TableStatusOccupied, nil
		}
		status = TableStatusReserved
	}
	return status, nil
}

func (l *Lifecycle) resolveTables(ctx context.Context, tableIDs []uuid.UUID) ([]*Table, error) {
	tables := make([]*Table, 0, len(tableIDs))
	for _, id := range tableIDs {
		table, err := l.tableRepo.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("cannot load table: %w", err)
		}
		if table == nil {
			return nil, &NotFoundError{Resource: "table", ID: id.String()}
		}
		// Availability never offers maintenance tables; explicit table picks
		// must not slip past that rule either.
		if table.Maintenance {
			return nil, &InvalidInputError{Field: "table_ids", Reason: fmt.Sprintf("table %s is under maintenance", table.ID)}
		}
		tables = append(tables, table)
	}
	return tables, nil
}

// openOrdersFor returns the IDs of open orders linked to the reservation on
// any of its tables. Completion is blocked while the kitchen still owns
// unfinished business for the party.
func (l *Lifecycle) openOrdersFor(ctx context.Context, reservation *Reservation) ([]uuid.UUID, error) {
	var openOrders []uuid.UUID
	for _, tableID := range reservation.TableIDs {
		orders, err := l.orderRepo.ListOpenForTable(ctx, tableID)
		if err != nil {
			return nil, fmt.Errorf("cannot list open orders: %w", err)
		}
		for _, order := range orders {
			if order.ReservationID == nil || *order.ReservationID != reservation.ID {
				continue
			}
			openOrders = append(openOrders, order.ID)
		}
	}
	return openOrders, nil
}

func (l *Lifecycle) repointOpenOrders(ctx context.Context, reservation *Reservation, oldTableIDs []uuid.UUID, newTableID uuid.UUID) {
	for _, tableID := range oldTableIDs {
		orders, err := l.orderRepo.ListOpenForTable(ctx, tableID)
		if err != nil {
			l.logger.Error("cannot list open orders for move", "error", err, "table_id", tableID.String())
			continue
		}
		for _, order := range orders {
			if order.ReservationID == nil || *order.ReservationID != reservation.ID {
				continue
			}
			order.Reassign(newTableID)
			order.BeforeUpdate()
			if err := l.orderRepo.Save(ctx, order); err != nil {
				l.logger.Error("cannot re-point order", "error", err, "order_id", order.ID.String())
			}
		}
	}
}

func (l *Lifecycle) recomputeTables(ctx context.Context, tableIDs []uuid.UUID, date string) {
	seen := make(map[uuid.UUID]bool)
	for _, tableID := range tableIDs {
		if seen[tableID] {
			continue
		}
		seen[tableID] = true
		if err := l.RecomputeTableStatus(ctx, tableID, date); err != nil {
			l.logger.Error("cannot recompute table status", "error", err, "table_id", tableID.String())
		}
	}
}

func (l *Lifecycle) emitReservationEvent(ctx context.Context, eventType string, reservation *Reservation) {
	if l.publisher == nil || reservation == nil {
		return
	}

	tableIDs := make([]string, 0, len(reservation.TableIDs))
	for _, id := range reservation.TableIDs {
		tableIDs = append(tableIDs, id.String())
	}

	event := pkg.ReservationEvent{
		EventType:     eventType,
		ReservationID: reservation.ID.String(),
		TableIDs:      tableIDs,
		Date:          reservation.Date,
		SlotID:        reservation.SlotID.String(),
		Status:        reservation.Status,
		PaymentStatus: reservation.PaymentStatus,
		Source:        reservationEventSource,
		OccurredAt:    time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		l.logger.Error("cannot marshal reservation event", "error", err, "reservation_id", reservation.ID.String())
		return
	}

	if err := l.publisher.Publish(ctx, pkg.ReservationTopic, payload); err != nil {
		l.logger.Error("cannot publish reservation event", "error", err, "reservation_id", reservation.ID.String())
	}
}

func (l *Lifecycle) emitTableStatusEvent(ctx context.Context, table *Table, previous string) {
	if l.publisher == nil || table == nil {
		return
	}

	event := pkg.TableStatusEvent{
		EventType:      pkg.EventTableStatusChanged,
		TableID:        table.ID.String(),
		Status:         table.Status,
		PreviousStatus: previous,
		Reason:         "reservation lifecycle",
		Source:         reservationEventSource,
		OccurredAt:     time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		l.logger.Error("cannot marshal table status event", "error", err, "table_id", table.ID.String())
		return
	}

	if err := l.publisher.Publish(ctx, pkg.TableStatusTopic, payload); err != nil {
		l.logger.Error("cannot publish table status event", "error", err, "table_id", table.ID.String())
	}
}

func statusIn(status string, set []string) bool {
	for _, s := range set {
		if s == status {
			return true
		}
	}
	return false
}

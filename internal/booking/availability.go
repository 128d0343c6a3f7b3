package booking

import (
	"context"
	"fmt"
	"sort"

	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"
)

// Engine answers "which tables or table combinations can seat N guests on
// date D in slot S, given current reservations". It performs reads only; the
// lifecycle manager is the sole writer.
type Engine struct {
	tableRepo       TableRepo
	slotRepo        SlotRepo
	reservationRepo ReservationRepo
	logger          aqm.Logger
}

// Availability is the engine's answer for one (date, slot, party size) query.
// Single holds free tables large enough on their own, tightest fit first.
// Double and Triple hold minimal combined-capacity combinations; Triple is
// only populated when no single table and no pair suffices. Free is the flat
// unclaimed-table list for fallback display.
type Availability struct {
	Single []*Table   `json:"single"`
	Double [][]*Table `json:"double"`
	Triple [][]*Table `json:"triple"`
	Free   []*Table   `json:"free"`
}

// HasResults reports whether any proposal can seat the party.
func (a *Availability) HasResults() bool {
	return len(a.Single) > 0 || len(a.Double) > 0 || len(a.Triple) > 0
}

func NewEngine(tableRepo TableRepo, slotRepo SlotRepo, reservationRepo ReservationRepo, logger aqm.Logger) *Engine {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Engine{
		tableRepo:       tableRepo,
		slotRepo:        slotRepo,
		reservationRepo: reservationRepo,
		logger:          logger,
	}
}

// FindAvailableTables computes the free tables and feasible combinations for
// the given date, slot and party size. No availability is not an error: all
// proposal lists come back empty and the caller surfaces that. It fails only
// on malformed input or an unknown slot.
func (e *Engine) FindAvailableTables(ctx context.Context, date string, slotID uuid.UUID, guestCount int) (*Availability, error) {
	if guestCount < 1 {
		return nil, &InvalidInputError{Field: "guest_count", Reason: "must be at least 1"}
	}
	if _, err := ParseDate(date); err != nil {
		return nil, &InvalidInputError{Field: "date", Reason: fmt.Sprintf("must be in %s form", DateFormat)}
	}

	slot, err := e.slotRepo.Get(ctx, slotID)
	if err != nil {
		return nil, fmt.Errorf("cannot load slot: %w", err)
	}
	if slot == nil {
		return nil, &NotFoundError{Resource: "booking slot", ID: slotID.String()}
	}

	free, err := e.FreeTables(ctx, date, slotID)
	if err != nil {
		return nil, err
	}

	result := &Availability{
		Single: singleCandidates(free, guestCount),
		Double: pairCandidates(free, guestCount),
		Free:   free,
	}

	// Triples are a last resort; enumerating them when a tighter proposal
	// exists only adds noise and combinatorial work.
	if len(result.Single) == 0 && len(result.Double) == 0 {
		result.Triple = tripleCandidates(free, guestCount)
	}
	if result.Triple == nil {
		result.Triple = [][]*Table{}
	}

	e.logger.Debug("availability computed",
		"date", date,
		"slot_id", slotID.String(),
		"guest_count", guestCount,
		"free", len(free),
		"single", len(result.Single),
		"double", len(result.Double),
		"triple", len(result.Triple),
	)

	return result, nil
}

// FreeTables returns tables not under maintenance and not claimed by any
// active reservation for the given date and slot, ordered by capacity then
// number for deterministic output.
func (e *Engine) FreeTables(ctx context.Context, date string, slotID uuid.UUID) ([]*Table, error) {
	all, err := e.tableRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot list tables: %w", err)
	}

	active, err := e.reservationRepo.ListActiveForSlot(ctx, date, slotID)
	if err != nil {
		return nil, fmt.Errorf("cannot list active reservations: %w", err)
	}

	claimed := make(map[uuid.UUID]bool)
	for _, reservation := range active {
		for _, tableID := range reservation.TableIDs {
			claimed[tableID] = true
		}
	}

	free := []*Table{}
	for _, table := range all {
		if table.Maintenance {
			continue
		}
		if claimed[table.ID] {
			continue
		}
		free = append(free, table)
	}

	sort.Slice(free, func(i, j int) bool {
		if free[i].Capacity != free[j].Capacity {
			return free[i].Capacity < free[j].Capacity
		}
		return free[i].Number < free[j].Number
	})

	return free, nil
}

// HasCapacity reports whether the given tables can seat the party. Pure check
// shared by booking creation, edits and moves.
func HasCapacity(tables []*Table, guestCount int) bool {
	return TotalCapacity(tables) >= guestCount
}

// TotalCapacity sums seat counts over a table set.
func TotalCapacity(tables []*Table) int {
	var total int
	for _, table := range tables {
		total += table.Capacity
	}
	return total
}

func singleCandidates(free []*Table, guestCount int) []*Table {
	// free arrives capacity-ascending, so appending preserves tightest fit
	// first and minimizes wasted seats.
	single := []*Table{}
	for _, table := range free {
		if table.Capacity >= guestCount {
			single = append(single, table)
		}
	}
	return single
}

// pairCandidates returns every unordered pair whose combined capacity reaches
// guestCount with the minimal achievable sum. Only minimal-sum pairs are
// proposed so callers are never offered a wildly oversized combination while
// a tighter one exists. Same-area pairs sort ahead of mixed ones; area is a
// soft preference, not a filter.
func pairCandidates(free []*Table, guestCount int) [][]*Table {
	type pair struct {
		tables   []*Table
		sum      int
		sameArea bool
	}

	var pairs []pair
	minSum := -1
	for i := 0; i < len(free); i++ {
		for j := i + 1; j < len(free); j++ {
			sum := free[i].Capacity + free[j].Capacity
			if sum < guestCount {
				continue
			}
			if minSum == -1 || sum < minSum {
				minSum = sum
			}
			pairs = append(pairs, pair{
				tables:   []*Table{free[i], free[j]},
				sum:      sum,
				sameArea: free[i].SameArea(free[j]),
			})
		}
	}

	result := [][]*Table{}
	if minSum == -1 {
		return result
	}

	var minimal []pair
	for _, p := range pairs {
		if p.sum == minSum {
			minimal = append(minimal, p)
		}
	}

	sort.SliceStable(minimal, func(i, j int) bool {
		if minimal[i].sameArea != minimal[j].sameArea {
			return minimal[i].sameArea
		}
		return combinationKey(minimal[i].tables) < combinationKey(minimal[j].tables)
	})

	for _, p := range minimal {
		result = append(result, p.tables)
	}
	return result
}

// tripleCandidates extends the minimal-sum rule to 3-table combinations.
// Free-table counts are small (tens, not thousands), so the cubic scan is
// fine at this scale.
func tripleCandidates(free []*Table, guestCount int) [][]*Table {
	type triple struct {
		tables []*Table
		sum    int
		areas  int
	}

	var triples []triple
	minSum := -1
	for i := 0; i < len(free); i++ {
		for j := i + 1; j < len(free); j++ {
			for k := j + 1; k < len(free); k++ {
				sum := free[i].Capacity + free[j].Capacity + free[k].Capacity
				if sum < guestCount {
					continue
				}
				if minSum == -1 || sum < minSum {
					minSum = sum
				}
				set := []*Table{free[i], free[j], free[k]}
				triples = append(triples, triple{
					tables: set,
					sum:    sum,
					areas:  distinctAreas(set),
				})
			}
		}
	}

	result := [][]*Table{}
	if minSum == -1 {
		return result
	}

	var minimal []triple
	for _, t := range triples {
		if t.sum == minSum {
			minimal = append(minimal, t)
		}
	}

	sort.SliceStable(minimal, func(i, j int) bool {
		if minimal[i].areas != minimal[j].areas {
			return minimal[i].areas < minimal[j].areas
		}
		return combinationKey(minimal[i].tables) < combinationKey(minimal[j].tables)
	})

	for _, t := range minimal {
		result = append(result, t.tables)
	}
	return result
}

func distinctAreas(tables []*Table) int {
	seen := make(map[uuid.UUID]bool)
	unknown := 0
	for _, table := range tables {
		if table.AreaID == nil {
			unknown++
			continue
		}
		seen[*table.AreaID] = true
	}
	return len(seen) + unknown
}

func combinationKey(tables []*Table) string {
	key := ""
	for _, table := range tables {
		key += table.Number + "|"
	}
	return key
}

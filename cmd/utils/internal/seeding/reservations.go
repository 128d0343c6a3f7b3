package seeding

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SeedReservations creates demo reservations for today against the tables and
// booking slots the service bootstrap already seeded. Every document carries
// created_by demo-seed so clear-demo can find it again.
func SeedReservations(ctx context.Context, db *mongo.Database) error {
	tablesCollection := db.Collection("tables")
	slotsCollection := db.Collection("booking_slots")
	reservationsCollection := db.Collection("reservations")

	now := time.Now()
	today := now.Format("2006-01-02")

	cursor, err := tablesCollection.Find(ctx,
		bson.M{"maintenance": bson.M{"$ne": true}},
		options.Find().SetSort(bson.D{{Key: "capacity", Value: 1}}),
	)
	if err != nil {
		return fmt.Errorf("cannot fetch tables: %w", err)
	}
	var tables []struct {
		ID       string `bson:"_id"`
		Capacity int    `bson:"capacity"`
	}
	if err := cursor.All(ctx, &tables); err != nil {
		return fmt.Errorf("cannot decode tables: %w", err)
	}

	if len(tables) < 3 {
		return fmt.Errorf("need at least 3 tables for demo data (found %d)", len(tables))
	}

	cursor, err = slotsCollection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}}))
	if err != nil {
		return fmt.Errorf("cannot fetch booking slots: %w", err)
	}
	var slots []struct {
		ID string `bson:"_id"`
	}
	if err := cursor.All(ctx, &slots); err != nil {
		return fmt.Errorf("cannot decode booking slots: %w", err)
	}

	if len(slots) == 0 {
		return fmt.Errorf("no booking slots found, run the service bootstrap first")
	}

	slotID := slots[len(slots)-1].ID

	type demoGuest struct {
		name     string
		info     string
		guests   int
		status   string
		payment  string
		tableIdx int
	}

	guests := []demoGuest{
		{name: "Alma Torres", info: "alma@example.com", guests: 2, status: "confirmed", payment: "prepaid", tableIdx: 0},
		{name: "Ben Okafor", info: "+1 555 0102", guests: 4, status: "pending", payment: "pending", tableIdx: 1},
		{name: "Carol Lindqvist", info: "carol@example.com", guests: 4, status: "seated", payment: "paid", tableIdx: 2},
	}

	docs := make([]interface{}, 0, len(guests))
	for _, g := range guests {
		tableID, err := uuid.Parse(tables[g.tableIdx].ID)
		if err != nil {
			return fmt.Errorf("cannot parse table id %q: %w", tables[g.tableIdx].ID, err)
		}
		docs = append(docs, bson.M{
			"_id":               uuid.New().String(),
			"table_ids":         []string{tableID.String()},
			"date":              today,
			"slot_id":           slotID,
			"guest_count":       g.guests,
			"contact_name":      g.name,
			"contact_info":      g.info,
			"status":            g.status,
			"payment_status":    g.payment,
			"tables_claimed_at": now,
			"created_at":        now,
			"created_by":        "demo-seed",
			"updated_at":        now,
			"updated_by":        "demo-seed",
		})
	}

	if _, err := reservationsCollection.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("cannot insert demo reservations: %w", err)
	}

	return nil
}

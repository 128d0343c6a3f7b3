package mongo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/tableclub/reserva/internal/booking"
)

type SlotRepo struct {
	collection *mongo.Collection
}

func NewSlotRepo(db *mongo.Database) *SlotRepo {
	return &SlotRepo{
		collection: db.Collection("booking_slots"),
	}
}

func (r *SlotRepo) Create(ctx context.Context, slot *booking.BookingSlot) error {
	if slot == nil {
		return fmt.Errorf("slot is nil")
	}

	if _, err := r.collection.InsertOne(ctx, slot); err != nil {
		return fmt.Errorf("cannot create slot: %w", err)
	}

	return nil
}

func (r *SlotRepo) Get(ctx context.Context, id uuid.UUID) (*booking.BookingSlot, error) {
	var slot booking.BookingSlot
	err := r.collection.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&slot)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot get slot: %w", err)
	}
	return &slot, nil
}

func (r *SlotRepo) List(ctx context.Context) ([]*booking.BookingSlot, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("cannot list slots: %w", err)
	}
	defer cursor.Close(ctx)

	var result []*booking.BookingSlot
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("cannot decode slots: %w", err)
	}

	return result, nil
}

func (r *SlotRepo) Save(ctx context.Context, slot *booking.BookingSlot) error {
	if slot == nil {
		return fmt.Errorf("slot is nil")
	}

	filter := bson.M{"_id": slot.ID.String()}
	update := bson.M{"$set": slot}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("cannot update slot: %w", err)
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("slot not found")
	}

	return nil
}

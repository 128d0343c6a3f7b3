package mongo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/tableclub/reserva/internal/booking"
)

var activeStatuses = []string{
	booking.ReservationStatusPending,
	booking.ReservationStatusConfirmed,
	booking.ReservationStatusSeated,
}

type ReservationRepo struct {
	collection *mongo.Collection
}

func NewReservationRepo(db *mongo.Database) *ReservationRepo {
	return &ReservationRepo{
		collection: db.Collection("reservations"),
	}
}

func (r *ReservationRepo) Create(ctx context.Context, reservation *booking.Reservation) error {
	if reservation == nil {
		return fmt.Errorf("reservation is nil")
	}

	if _, err := r.collection.InsertOne(ctx, reservation); err != nil {
		return fmt.Errorf("cannot create reservation: %w", err)
	}

	return nil
}

func (r *ReservationRepo) Get(ctx context.Context, id uuid.UUID) (*booking.Reservation, error) {
	var reservation booking.Reservation
	err := r.collection.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&reservation)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot get reservation: %w", err)
	}
	return &reservation, nil
}

func (r *ReservationRepo) List(ctx context.Context) ([]*booking.Reservation, error) {
	return r.find(ctx, bson.M{})
}

func (r *ReservationRepo) ListByDate(ctx context.Context, date string) ([]*booking.Reservation, error) {
	if _, err := booking.ParseDate(date); err != nil {
		return nil, fmt.Errorf("invalid date format: %w", err)
	}
	return r.find(ctx, bson.M{"date": date})
}

func (r *ReservationRepo) ListActiveForSlot(ctx context.Context, date string, slotID uuid.UUID) ([]*booking.Reservation, error) {
	if _, err := booking.ParseDate(date); err != nil {
		return nil, fmt.Errorf("invalid date format: %w", err)
	}

	filter := bson.M{
		"date":    date,
		"slot_id": slotID.String(),
		"status":  bson.M{"$in": activeStatuses},
	}
	return r.find(ctx, filter)
}

func (r *ReservationRepo) ListActiveByTable(ctx context.Context, tableID uuid.UUID, date string) ([]*booking.Reservation, error) {
	if _, err := booking.ParseDate(date); err != nil {
		return nil, fmt.Errorf("invalid date format: %w", err)
	}

	filter := bson.M{
		"date":      date,
		"table_ids": tableID.String(),
		"status":    bson.M{"$in": activeStatuses},
	}
	return r.find(ctx, filter)
}

func (r *ReservationRepo) find(ctx context.Context, filter bson.M) ([]*booking.Reservation, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("cannot list reservations: %w", err)
	}
	defer cursor.Close(ctx)

	var result []*booking.Reservation
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("cannot decode reservations: %w", err)
	}

	return result, nil
}

func (r *ReservationRepo) Save(ctx context.Context, reservation *booking.Reservation) error {
	if reservation == nil {
		return fmt.Errorf("reservation is nil")
	}

	filter := bson.M{"_id": reservation.ID.String()}
	update := bson.M{"$set": reservation}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("cannot update reservation: %w", err)
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("reservation not found")
	}

	return nil
}

func (r *ReservationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return fmt.Errorf("cannot delete reservation: %w", err)
	}

	if result.DeletedCount == 0 {
		return fmt.Errorf("reservation not found")
	}

	return nil
}

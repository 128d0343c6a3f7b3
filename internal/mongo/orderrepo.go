package mongo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/tableclub/reserva/internal/booking"
)

var openOrderStatuses = []string{
	booking.OrderStatusPending,
	booking.OrderStatusPreparing,
	booking.OrderStatusServed,
}

type OrderRepo struct {
	collection *mongo.Collection
}

func NewOrderRepo(db *mongo.Database) *OrderRepo {
	return &OrderRepo{
		collection: db.Collection("orders"),
	}
}

func (r *OrderRepo) Get(ctx context.Context, id uuid.UUID) (*booking.Order, error) {
	var order booking.Order
	err := r.collection.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&order)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot get order: %w", err)
	}
	return &order, nil
}

func (r *OrderRepo) ListOpenForTable(ctx context.Context, tableID uuid.UUID) ([]*booking.Order, error) {
	filter := bson.M{
		"table_id": tableID.String(),
		"status":   bson.M{"$in": openOrderStatuses},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("cannot list open orders: %w", err)
	}
	defer cursor.Close(ctx)

	var result []*booking.Order
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("cannot decode orders: %w", err)
	}

	return result, nil
}

func (r *OrderRepo) Save(ctx context.Context, order *booking.Order) error {
	if order == nil {
		return fmt.Errorf("order is nil")
	}

	filter := bson.M{"_id": order.ID.String()}
	update := bson.M{"$set": order}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("cannot update order: %w", err)
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("order not found")
	}

	return nil
}

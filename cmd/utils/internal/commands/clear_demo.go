package commands

import (
	"context"
	"fmt"

	"github.com/aquamarinepk/aqm"
	"go.mongodb.org/mongo-driver/bson"
)

// ClearDemo removes reservations and orders created by demo seeding. Regular
// data is untouched; only documents stamped created_by demo-seed go.
func ClearDemo(ctx context.Context, config *aqm.Config, logger aqm.Logger) error {
	logger.Info("Starting demo data cleanup...")

	client, db, err := connect(ctx, config)
	if err != nil {
		return err
	}
	defer client.Disconnect(ctx)

	logger.Info("Connected to MongoDB")

	reservations := db.Collection("reservations")
	reservationsResult, err := reservations.DeleteMany(ctx, bson.M{"created_by": "demo-seed"})
	if err != nil {
		return fmt.Errorf("delete demo reservations: %w", err)
	}
	logger.Info("Deleted demo reservations", "count", reservationsResult.DeletedCount)

	orders := db.Collection("orders")
	ordersResult, err := orders.DeleteMany(ctx, bson.M{"created_by": "demo-seed"})
	if err != nil {
		return fmt.Errorf("delete demo orders: %w", err)
	}
	logger.Info("Deleted demo orders", "count", ordersResult.DeletedCount)

	seeds := db.Collection("_seeds")
	if _, err := seeds.DeleteOne(ctx, bson.M{"_id": demoReservationsSeedID}); err != nil {
		logger.Infof("Failed to remove seed marker: %v", err)
	}

	return nil
}

package commands

import (
	"context"
	"fmt"

	"github.com/aquamarinepk/aqm"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ClearDemo removes all demo data from the order database
func ClearDemo(ctx context.Context, config *aqm.Config, logger aqm.Logger) error {
	logger.Info("Starting demo data cleanup...")

	client, err := connect(ctx, config)
	if err != nil {
		return err
	}
	defer client.Disconnect(ctx)

	logger.Info("Connected to MongoDB")

	orderDB := client.Database("washnd_order")
	if err := clearOrderDemo(ctx, orderDB, logger); err != nil {
		return fmt.Errorf("clear order demo: %w", err)
	}

	return nil
}

func clearOrderDemo(ctx context.Context, db *mongo.Database, logger aqm.Logger) error {
	logger.Info("Clearing order demo data...")

	deliveriesCollection := db.Collection("deliveries")
	deliveriesResult, err := deliveriesCollection.DeleteMany(ctx, bson.M{"created_by": "demo-seed"})
	if err != nil {
		return fmt.Errorf("delete demo deliveries: %w", err)
	}
	logger.Info("Deleted demo deliveries", "count", deliveriesResult.DeletedCount)

	ordersCollection := db.Collection("orders")
	ordersResult, err := ordersCollection.DeleteMany(ctx, bson.M{"created_by": "demo-seed"})
	if err != nil {
		return fmt.Errorf("delete demo orders: %w", err)
	}
	logger.Info("Deleted demo orders", "count", ordersResult.DeletedCount)

	// Clear seed tracker
	seedsCollection := db.Collection("_seeds")
	trackerResult, err := seedsCollection.DeleteOne(ctx, bson.M{"_id": "demo_orders_v1"})
	if err != nil {
		return fmt.Errorf("delete order seed tracker: %w", err)
	}
	logger.Info("Cleared order seed tracker", "deleted", trackerResult.DeletedCount)

	return nil
}

package commands

import (
	"context"
	"fmt"

	"github.com/aquamarinepk/aqm"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/stuywashndry/washnd/cmd/utils/internal/seeding"
)

// SeedDemo applies demo seeding to the order database
func SeedDemo(ctx context.Context, config *aqm.Config, logger aqm.Logger) error {
	logger.Info("Starting demo seeding process...")

	client, err := connect(ctx, config)
	if err != nil {
		return err
	}
	defer client.Disconnect(ctx)

	logger.Info("Connected to MongoDB")

	orderDB := client.Database("washnd_order")
	if err := seedOrderDemo(ctx, orderDB, logger); err != nil {
		return fmt.Errorf("seed order demo: %w", err)
	}

	return nil
}

func seedOrderDemo(ctx context.Context, db *mongo.Database, logger aqm.Logger) error {
	// Check if already seeded
	seedsCollection := db.Collection("_seeds")
	count, err := seedsCollection.CountDocuments(ctx, bson.M{"_id": "demo_orders_v1"})
	if err != nil {
		return fmt.Errorf("check seed status: %w", err)
	}

	if count > 0 {
		logger.Info("Order demo seeds already applied, skipping")
		return nil
	}

	if err := seeding.SeedOrders(ctx, db); err != nil {
		return fmt.Errorf("seed orders: %w", err)
	}

	// Mark as seeded
	_, err = seedsCollection.InsertOne(ctx, bson.M{
		"_id":         "demo_orders_v1",
		"description": "Create demo orders and deliveries across the fulfillment statuses",
		"applied_at":  bson.M{"$currentDate": bson.M{"$type": "timestamp"}},
	})
	if err != nil {
		logger.Infof("Failed to mark seed as applied: %v", err)
	}

	logger.Info("Order demo seeds applied successfully")
	return nil
}

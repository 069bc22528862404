package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/seed"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const demoStoreID = "stuy-broadway"

// Seeds returns all seeds for the catalog service
func Seeds(db *mongo.Database) []seed.Seed {
	return []seed.Seed{
		{
			ID:          "2026-08-20_catalog_demo_menus",
			Description: "Seed washing and dry-cleaning menus for the demo store",
			Run: func(ctx context.Context) error {
				return seedDemoMenus(ctx, db)
			},
		},
		{
			ID:          "2026-08-20_catalog_demo_discount_codes",
			Description: "Seed sample discount codes",
			Run: func(ctx context.Context) error {
				return seedDemoDiscountCodes(ctx, db)
			},
		},
	}
}

func seedDemoMenus(ctx context.Context, db *mongo.Database) error {
	collection := db.Collection("menus")
	now := time.Now()

	detergentChoices := []bson.M{
		{"category": "Detergent", "name": "Tide", "description": "Original scent", "price": 10.00, "required": true, "limit": 1, "overrides_total": true},
		{"category": "Detergent", "name": "All Free & Clear", "description": "Fragrance free", "price": 10.00, "required": true, "limit": 1, "overrides_total": true},
		{"category": "Detergent", "name": "Gain", "description": "Fresh scent", "price": 10.50, "required": true, "limit": 1, "overrides_total": true},
	}

	washingItems := []bson.M{
		{
			"id":          uuid.New().String(),
			"name":        "Wash & Fold",
			"category":    "washing",
			"description": "Per bag, washed, dried and folded",
			"photo":       "",
			"price":       10.00,
			"choices":     detergentChoices,
		},
		{
			"id":          uuid.New().String(),
			"name":        "Large Load Wash & Fold",
			"category":    "washing",
			"description": "Oversized bag, washed, dried and folded",
			"photo":       "",
			"price":       18.00,
			"choices":     detergentChoices,
		},
		{
			"id":          uuid.New().String(),
			"name":        "Comforter",
			"category":    "washing",
			"description": "Single comforter or duvet",
			"photo":       "",
			"price":       15.00,
			"choices":     []bson.M{},
		},
	}

	dryCleaningItems := []bson.M{
		{
			"id":          uuid.New().String(),
			"name":        "Suit (2 piece)",
			"category":    "dry-cleaning",
			"description": "Jacket and trousers",
			"photo":       "",
			"price":       16.00,
			"choices":     []bson.M{},
		},
		{
			"id":          uuid.New().String(),
			"name":        "Dress Shirt",
			"category":    "dry-cleaning",
			"description": "Cleaned and pressed",
			"photo":       "",
			"price":       4.50,
			"choices": []bson.M{
				{"category": "Finish", "name": "Boxed", "description": "Folded and boxed", "price": 5.00, "required": false, "limit": 1, "overrides_total": false},
				{"category": "Finish", "name": "On Hanger", "description": "Returned on hanger", "price": 4.50, "required": false, "limit": 1, "overrides_total": false},
			},
		},
		{
			"id":          uuid.New().String(),
			"name":        "Winter Coat",
			"category":    "dry-cleaning",
			"description": "Heavy coats and parkas",
			"photo":       "",
			"price":       22.00,
			"choices":     []bson.M{},
		},
	}

	menus := []struct {
		category string
		items    []bson.M
	}{
		{MenuCategoryWashing, washingItems},
		{MenuCategoryDryCleaning, dryCleaningItems},
	}

	for _, m := range menus {
		doc := bson.M{
			"_id":        uuid.New().String(),
			"store_id":   demoStoreID,
			"store_name": "Stuy Wash N' Dry",
			"category":   m.category,
			"items":      m.items,
			"created_at": now,
			"updated_at": now,
		}

		filter := bson.M{"store_id": demoStoreID, "category": m.category}
		update := bson.M{"$setOnInsert": doc}
		if _, err := collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
			return fmt.Errorf("seed %s menu: %w", m.category, err)
		}
	}

	return nil
}

func seedDemoDiscountCodes(ctx context.Context, db *mongo.Database) error {
	collection := db.Collection("discount_codes")
	now := time.Now()

	codes := []bson.M{
		{
			"_id":                 "WELCOME10",
			"percentage":          10.0,
			"value":               0.0,
			"minimum_order_value": 0.0,
			"expiration_date":     time.Time{},
			"category":            "",
			"active":              true,
		},
		{
			"_id":                 "FIVEOFF",
			"percentage":          0.0,
			"value":               5.0,
			"minimum_order_value": 25.0,
			"expiration_date":     time.Time{},
			"category":            "",
			"active":              true,
		},
		{
			"_id":                 "DRYCLEAN15",
			"percentage":          15.0,
			"value":               0.0,
			"minimum_order_value": 30.0,
			"expiration_date":     now.AddDate(0, 6, 0),
			"category":            MenuCategoryDryCleaning,
			"active":              true,
		},
	}

	for _, doc := range codes {
		doc["created_at"] = now
		doc["updated_at"] = now

		filter := bson.M{"_id": doc["_id"]}
		update := bson.M{"$setOnInsert": doc}
		if _, err := collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
			return fmt.Errorf("seed discount code %v: %w", doc["_id"], err)
		}
	}

	return nil
}

// SeedingFunc returns a function for running seeds during service startup.
// Demo seeds are on by default; set seeding.demo=false to boot an empty
// catalog.
func SeedingFunc(appName string, config *aqm.Config, dbFn func() *mongo.Database, logger aqm.Logger) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if config.GetStringOrDef("seeding.demo", "true") == "false" {
			logger.Info("Demo seeding disabled, skipping")
			return nil
		}
		logger.Info("Applying catalog service database seeds...")
		db := dbFn()
		tracker := seed.NewMongoTracker(db)
		seeds := Seeds(db)
		if err := seed.Apply(ctx, tracker, seeds, appName); err != nil {
			return fmt.Errorf("apply seeds: %w", err)
		}
		logger.Info("Catalog service database seeds applied successfully")
		return nil
	}
}

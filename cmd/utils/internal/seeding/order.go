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

const demoStoreID = "stuy-broadway"

// SeedOrders creates demo orders and deliveries across the fulfillment
// statuses. Requires the catalog demo menus so item names and prices line up
// with what the store actually offers.
func SeedOrders(ctx context.Context, db *mongo.Database) error {
	ordersCollection := db.Collection("orders")
	deliveriesCollection := db.Collection("deliveries")

	catalogDB := db.Client().Database("washnd_catalog")
	menusCollection := catalogDB.Collection("menus")

	count, err := menusCollection.CountDocuments(ctx, bson.M{"store_id": demoStoreID})
	if err != nil {
		return fmt.Errorf("cannot check catalog menus: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("no catalog menus found for store %s (start the catalog service first)", demoStoreID)
	}

	now := time.Now()

	// Demo Scenario 1: fresh order awaiting a driver
	order1ID := uuid.New().String()
	order1 := bson.M{
		"_id":         order1ID,
		"customer_id": "demo-customer-1",
		"store_id":    demoStoreID,
		"store_name":  "Stuy Wash N' Dry Broadway",
		"cart_id":     "",
		"date_placed": now.Add(-20 * time.Minute),
		"status":      "placed",
		"items": []bson.M{
			{
				"id":       uuid.New().String(),
				"name":     "Wash & Fold (per bag)",
				"category": "washing",
				"price":    10.0,
				"count":    2,
			},
			{
				"id":       uuid.New().String(),
				"name":     "Comforter",
				"category": "washing",
				"price":    15.0,
				"count":    1,
			},
		},
		"subtotal":     35.00,
		"sales_tax":    3.08,
		"delivery_fee": 0.0,
		"service_fee":  0.0,
		"total_price":  38.08,
		"created_at":   now.Add(-20 * time.Minute),
		"updated_at":   now.Add(-20 * time.Minute),
		"created_by":   "demo-seed",
	}
	if err := upsert(ctx, ordersCollection, order1ID, order1); err != nil {
		return fmt.Errorf("cannot create demo order 1: %w", err)
	}

	// Demo Scenario 2: dry cleaning in progress, driver already delivered it
	order2ID := uuid.New().String()
	order2 := bson.M{
		"_id":         order2ID,
		"customer_id": "demo-customer-2",
		"store_id":    demoStoreID,
		"store_name":  "Stuy Wash N' Dry Broadway",
		"cart_id":     "",
		"date_placed": now.Add(-3 * time.Hour),
		"status":      "in-progress",
		"items": []bson.M{
			{
				"id":       uuid.New().String(),
				"name":     "Dress Shirt",
				"category": "dry-cleaning",
				"price":    4.5,
				"count":    4,
				"choices": []bson.M{
					{"category": "Finish", "name": "On Hanger", "price": 4.5, "selected": true},
				},
			},
			{
				"id":       uuid.New().String(),
				"name":     "Two-Piece Suit",
				"category": "dry-cleaning",
				"price":    16.0,
				"count":    1,
			},
		},
		"subtotal":     34.00,
		"sales_tax":    3.00,
		"delivery_fee": 0.0,
		"service_fee":  0.0,
		"total_price":  37.00,
		"created_at":   now.Add(-3 * time.Hour),
		"updated_at":   now.Add(-45 * time.Minute),
		"created_by":   "demo-seed",
	}
	if err := upsert(ctx, ordersCollection, order2ID, order2); err != nil {
		return fmt.Errorf("cannot create demo order 2: %w", err)
	}

	delivery2ID := uuid.New().String()
	delivery2 := bson.M{
		"_id":         delivery2ID,
		"order_id":    order2ID,
		"driver_id":   "demo-driver-1",
		"driver_name": "Dana",
		"origin":      "customer",
		"destination": demoStoreID,
		"status":      "successful",
		"created_at":  now.Add(-3 * time.Hour),
		"updated_at":  now.Add(-2 * time.Hour),
		"created_by":  "demo-seed",
	}
	if err := upsert(ctx, deliveriesCollection, delivery2ID, delivery2); err != nil {
		return fmt.Errorf("cannot create demo delivery 2: %w", err)
	}

	// Demo Scenario 3: completed order from yesterday
	order3ID := uuid.New().String()
	order3 := bson.M{
		"_id":         order3ID,
		"customer_id": "demo-customer-1",
		"store_id":    demoStoreID,
		"store_name":  "Stuy Wash N' Dry Broadway",
		"cart_id":     "",
		"date_placed": now.Add(-26 * time.Hour),
		"status":      "delivered",
		"items": []bson.M{
			{
				"id":       uuid.New().String(),
				"name":     "Large Load",
				"category": "washing",
				"price":    18.0,
				"count":    1,
			},
		},
		"subtotal":     18.00,
		"sales_tax":    1.59,
		"delivery_fee": 0.0,
		"service_fee":  0.0,
		"total_price":  19.59,
		"created_at":   now.Add(-26 * time.Hour),
		"updated_at":   now.Add(-24 * time.Hour),
		"created_by":   "demo-seed",
	}
	if err := upsert(ctx, ordersCollection, order3ID, order3); err != nil {
		return fmt.Errorf("cannot create demo order 3: %w", err)
	}

	delivery3ID := uuid.New().String()
	delivery3 := bson.M{
		"_id":         delivery3ID,
		"order_id":    order3ID,
		"driver_id":   "demo-driver-2",
		"driver_name": "Ray",
		"origin":      demoStoreID,
		"destination": "customer",
		"status":      "successful",
		"created_at":  now.Add(-25 * time.Hour),
		"updated_at":  now.Add(-24 * time.Hour),
		"created_by":  "demo-seed",
	}
	if err := upsert(ctx, deliveriesCollection, delivery3ID, delivery3); err != nil {
		return fmt.Errorf("cannot create demo delivery 3: %w", err)
	}

	return nil
}

func upsert(ctx context.Context, col *mongo.Collection, id string, doc bson.M) error {
	_, err := col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$setOnInsert": doc}, options.Update().SetUpsert(true))
	return err
}

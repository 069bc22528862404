package mongo

import (
	"context"
	"fmt"

	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/stuywashndry/washnd/pkg/mongodb"
	"github.com/stuywashndry/washnd/services/order/internal/order"
)

// DeliveryRepo implements order.DeliveryRepo using MongoDB
type DeliveryRepo struct {
	base       *mongodb.BaseRepo
	collection *mongo.Collection
	logger     aqm.Logger
}

func NewDeliveryRepo(base *mongodb.BaseRepo, logger aqm.Logger) *DeliveryRepo {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &DeliveryRepo{
		base:   base,
		logger: logger,
	}
}

func (r *DeliveryRepo) Start(ctx context.Context) error {
	if r.base == nil || r.base.GetDatabase() == nil {
		return fmt.Errorf("base repository must be started first")
	}

	r.collection = r.base.GetDatabase().Collection("deliveries")

	// One delivery per order
	orderIndexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "order_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := r.collection.Indexes().CreateOne(ctx, orderIndexModel); err != nil {
		return fmt.Errorf("cannot create order_id index: %w", err)
	}

	r.logger.Info("Delivery repository initialized with collection: deliveries")
	return nil
}

func (r *DeliveryRepo) Stop(ctx context.Context) error {
	return nil
}

// Create inserts a new delivery
func (r *DeliveryRepo) Create(ctx context.Context, d *order.Delivery) error {
	if d == nil {
		return fmt.Errorf("delivery cannot be nil")
	}

	_, err := r.collection.InsertOne(ctx, d)
	if err != nil {
		return fmt.Errorf("could not create delivery: %w", err)
	}
	return nil
}

// Get retrieves a delivery by ID
func (r *DeliveryRepo) Get(ctx context.Context, id uuid.UUID) (*order.Delivery, error) {
	var d order.Delivery

	filter := bson.M{"_id": id.String()}
	err := r.collection.FindOne(ctx, filter).Decode(&d)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("%w: %s", order.ErrDeliveryNotFound, id.String())
		}
		return nil, fmt.Errorf("could not get delivery: %w", err)
	}
	return &d, nil
}

// GetByOrder retrieves the delivery attached to an order
func (r *DeliveryRepo) GetByOrder(ctx context.Context, orderID uuid.UUID) (*order.Delivery, error) {
	var d order.Delivery

	filter := bson.M{"order_id": orderID.String()}
	err := r.collection.FindOne(ctx, filter).Decode(&d)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("%w: order %s", order.ErrDeliveryNotFound, orderID.String())
		}
		return nil, fmt.Errorf("could not get delivery: %w", err)
	}
	return &d, nil
}

// List retrieves all deliveries
func (r *DeliveryRepo) List(ctx context.Context) ([]*order.Delivery, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("could not list deliveries: %w", err)
	}
	defer cursor.Close(ctx)

	var deliveries []*order.Delivery
	for cursor.Next(ctx) {
		var d order.Delivery
		if err := cursor.Decode(&d); err != nil {
			return nil, fmt.Errorf("could not decode delivery: %w", err)
		}
		deliveries = append(deliveries, &d)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return deliveries, nil
}

// Save updates an existing delivery
func (r *DeliveryRepo) Save(ctx context.Context, d *order.Delivery) error {
	if d == nil {
		return fmt.Errorf("delivery cannot be nil")
	}

	filter := bson.M{"_id": d.GetID().String()}
	opts := options.Replace().SetUpsert(false)

	result, err := r.collection.ReplaceOne(ctx, filter, d, opts)
	if err != nil {
		return fmt.Errorf("could not save delivery: %w", err)
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", order.ErrDeliveryNotFound, d.GetID().String())
	}
	return nil
}

// Delete removes a delivery by ID
func (r *DeliveryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	filter := bson.M{"_id": id.String()}

	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("could not delete delivery: %w", err)
	}

	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", order.ErrDeliveryNotFound, id.String())
	}
	return nil
}

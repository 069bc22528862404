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

// OrderRepo implements order.OrderRepo using MongoDB
type OrderRepo struct {
	base       *mongodb.BaseRepo
	collection *mongo.Collection
	logger     aqm.Logger
}

func NewOrderRepo(base *mongodb.BaseRepo, logger aqm.Logger) *OrderRepo {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &OrderRepo{
		base:   base,
		logger: logger,
	}
}

func (r *OrderRepo) Start(ctx context.Context) error {
	if r.base == nil || r.base.GetDatabase() == nil {
		return fmt.Errorf("base repository must be started first")
	}

	r.collection = r.base.GetDatabase().Collection("orders")

	customerIndexModel := mongo.IndexModel{
		Keys: bson.D{{Key: "customer_id", Value: 1}, {Key: "date_placed", Value: -1}},
	}
	if _, err := r.collection.Indexes().CreateOne(ctx, customerIndexModel); err != nil {
		return fmt.Errorf("cannot create customer_id index: %w", err)
	}

	statusIndexModel := mongo.IndexModel{
		Keys: bson.D{{Key: "status", Value: 1}},
	}
	if _, err := r.collection.Indexes().CreateOne(ctx, statusIndexModel); err != nil {
		return fmt.Errorf("cannot create status index: %w", err)
	}

	r.logger.Info("Order repository initialized with collection: orders")
	return nil
}

func (r *OrderRepo) Stop(ctx context.Context) error {
	return nil
}

// Create inserts a new order
func (r *OrderRepo) Create(ctx context.Context, o *order.Order) error {
	if o == nil {
		return fmt.Errorf("order cannot be nil")
	}

	_, err := r.collection.InsertOne(ctx, o)
	if err != nil {
		return fmt.Errorf("could not create order: %w", err)
	}
	return nil
}

// Get retrieves an order by ID
func (r *OrderRepo) Get(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var o order.Order

	filter := bson.M{"_id": id.String()}
	err := r.collection.FindOne(ctx, filter).Decode(&o)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("%w: %s", order.ErrOrderNotFound, id.String())
		}
		return nil, fmt.Errorf("could not get order: %w", err)
	}
	return &o, nil
}

// List retrieves all orders, newest first
func (r *OrderRepo) List(ctx context.Context) ([]*order.Order, error) {
	return r.find(ctx, bson.M{})
}

// ListByCustomer retrieves all orders for a customer, newest first
func (r *OrderRepo) ListByCustomer(ctx context.Context, customerID string) ([]*order.Order, error) {
	return r.find(ctx, bson.M{"customer_id": customerID})
}

// ListByStatus retrieves all orders in a given status, newest first
func (r *OrderRepo) ListByStatus(ctx context.Context, status string) ([]*order.Order, error) {
	return r.find(ctx, bson.M{"status": status})
}

func (r *OrderRepo) find(ctx context.Context, filter bson.M) ([]*order.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date_placed", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("could not list orders: %w", err)
	}
	defer cursor.Close(ctx)

	var orders []*order.Order
	for cursor.Next(ctx) {
		var o order.Order
		if err := cursor.Decode(&o); err != nil {
			return nil, fmt.Errorf("could not decode order: %w", err)
		}
		orders = append(orders, &o)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return orders, nil
}

// Save updates an existing order
func (r *OrderRepo) Save(ctx context.Context, o *order.Order) error {
	if o == nil {
		return fmt.Errorf("order cannot be nil")
	}

	filter := bson.M{"_id": o.GetID().String()}
	opts := options.Replace().SetUpsert(false)

	result, err := r.collection.ReplaceOne(ctx, filter, o, opts)
	if err != nil {
		return fmt.Errorf("could not save order: %w", err)
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", order.ErrOrderNotFound, o.GetID().String())
	}
	return nil
}

// Delete removes an order by ID
func (r *OrderRepo) Delete(ctx context.Context, id uuid.UUID) error {
	filter := bson.M{"_id": id.String()}

	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("could not delete order: %w", err)
	}

	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", order.ErrOrderNotFound, id.String())
	}
	return nil
}

package mongo

import (
	"context"
	"fmt"

	"github.com/aquamarinepk/aqm"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/stuywashndry/washnd/pkg/mongodb"
	"github.com/stuywashndry/washnd/services/catalog/internal/catalog"
)

// DiscountRepo implements catalog.DiscountRepo using MongoDB
type DiscountRepo struct {
	base       *mongodb.BaseRepo
	collection *mongo.Collection
	logger     aqm.Logger
}

func NewDiscountRepo(base *mongodb.BaseRepo, logger aqm.Logger) *DiscountRepo {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &DiscountRepo{
		base:   base,
		logger: logger,
	}
}

func (r *DiscountRepo) Start(ctx context.Context) error {
	if r.base == nil || r.base.GetDatabase() == nil {
		return fmt.Errorf("base repository must be started first")
	}

	r.collection = r.base.GetDatabase().Collection("discount_codes")

	activeIndexModel := mongo.IndexModel{
		Keys: bson.D{{Key: "active", Value: 1}},
	}
	if _, err := r.collection.Indexes().CreateOne(ctx, activeIndexModel); err != nil {
		return fmt.Errorf("cannot create active index: %w", err)
	}

	r.logger.Info("Discount repository initialized with collection: discount_codes")
	return nil
}

func (r *DiscountRepo) Stop(ctx context.Context) error {
	return nil
}

// Create inserts a new discount code
func (r *DiscountRepo) Create(ctx context.Context, d *catalog.DiscountCode) error {
	if d == nil {
		return fmt.Errorf("discount code cannot be nil")
	}

	_, err := r.collection.InsertOne(ctx, d)
	if err != nil {
		return fmt.Errorf("could not create discount code: %w", err)
	}
	return nil
}

// GetByCode retrieves a discount code by its public code
func (r *DiscountRepo) GetByCode(ctx context.Context, code string) (*catalog.DiscountCode, error) {
	var d catalog.DiscountCode

	filter := bson.M{"_id": code}
	err := r.collection.FindOne(ctx, filter).Decode(&d)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("%w: %s", catalog.ErrDiscountCodeNotFound, code)
		}
		return nil, fmt.Errorf("could not get discount code: %w", err)
	}
	return &d, nil
}

// List retrieves all discount codes
func (r *DiscountRepo) List(ctx context.Context) ([]*catalog.DiscountCode, error) {
	return r.find(ctx, bson.M{})
}

// ListActive retrieves all active discount codes
func (r *DiscountRepo) ListActive(ctx context.Context) ([]*catalog.DiscountCode, error) {
	return r.find(ctx, bson.M{"active": true})
}

func (r *DiscountRepo) find(ctx context.Context, filter bson.M) ([]*catalog.DiscountCode, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("could not list discount codes: %w", err)
	}
	defer cursor.Close(ctx)

	var codes []*catalog.DiscountCode
	for cursor.Next(ctx) {
		var d catalog.DiscountCode
		if err := cursor.Decode(&d); err != nil {
			return nil, fmt.Errorf("could not decode discount code: %w", err)
		}
		codes = append(codes, &d)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return codes, nil
}

// Save updates an existing discount code
func (r *DiscountRepo) Save(ctx context.Context, d *catalog.DiscountCode) error {
	if d == nil {
		return fmt.Errorf("discount code cannot be nil")
	}

	filter := bson.M{"_id": d.Code}
	opts := options.Replace().SetUpsert(false)

	result, err := r.collection.ReplaceOne(ctx, filter, d, opts)
	if err != nil {
		return fmt.Errorf("could not save discount code: %w", err)
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", catalog.ErrDiscountCodeNotFound, d.Code)
	}
	return nil
}

// Delete removes a discount code
func (r *DiscountRepo) Delete(ctx context.Context, code string) error {
	filter := bson.M{"_id": code}

	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("could not delete discount code: %w", err)
	}

	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", catalog.ErrDiscountCodeNotFound, code)
	}
	return nil
}

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
	"github.com/stuywashndry/washnd/services/catalog/internal/catalog"
)

// MenuRepo implements catalog.MenuRepo using MongoDB
type MenuRepo struct {
	base       *mongodb.BaseRepo
	collection *mongo.Collection
	logger     aqm.Logger
}

func NewMenuRepo(base *mongodb.BaseRepo, logger aqm.Logger) *MenuRepo {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &MenuRepo{
		base:   base,
		logger: logger,
	}
}

func (r *MenuRepo) Start(ctx context.Context) error {
	if r.base == nil || r.base.GetDatabase() == nil {
		return fmt.Errorf("base repository must be started first")
	}

	r.collection = r.base.GetDatabase().Collection("menus")

	// One menu per (store, category)
	storeIndexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "store_id", Value: 1}, {Key: "category", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := r.collection.Indexes().CreateOne(ctx, storeIndexModel); err != nil {
		return fmt.Errorf("cannot create store_id/category index: %w", err)
	}

	r.logger.Info("Menu repository initialized with collection: menus")
	return nil
}

func (r *MenuRepo) Stop(ctx context.Context) error {
	return nil
}

// Create inserts a new menu
func (r *MenuRepo) Create(ctx context.Context, m *catalog.LaundromatMenu) error {
	if m == nil {
		return fmt.Errorf("menu cannot be nil")
	}

	_, err := r.collection.InsertOne(ctx, m)
	if err != nil {
		return fmt.Errorf("could not create menu: %w", err)
	}
	return nil
}

// Get retrieves a menu by ID
func (r *MenuRepo) Get(ctx context.Context, id uuid.UUID) (*catalog.LaundromatMenu, error) {
	var m catalog.LaundromatMenu

	filter := bson.M{"_id": id.String()}
	err := r.collection.FindOne(ctx, filter).Decode(&m)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("%w: %s", catalog.ErrMenuNotFound, id.String())
		}
		return nil, fmt.Errorf("could not get menu: %w", err)
	}
	return &m, nil
}

// GetByStoreCategory retrieves the single menu for a (store, category) pair
func (r *MenuRepo) GetByStoreCategory(ctx context.Context, storeID, category string) (*catalog.LaundromatMenu, error) {
	var m catalog.LaundromatMenu

	filter := bson.M{"store_id": storeID, "category": category}
	err := r.collection.FindOne(ctx, filter).Decode(&m)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("%w: %s/%s", catalog.ErrMenuNotFound, storeID, category)
		}
		return nil, fmt.Errorf("could not get menu: %w", err)
	}
	return &m, nil
}

// List retrieves all menus
func (r *MenuRepo) List(ctx context.Context) ([]*catalog.LaundromatMenu, error) {
	return r.find(ctx, bson.M{})
}

// ListByStore retrieves all menus for a store
func (r *MenuRepo) ListByStore(ctx context.Context, storeID string) ([]*catalog.LaundromatMenu, error) {
	return r.find(ctx, bson.M{"store_id": storeID})
}

func (r *MenuRepo) find(ctx context.Context, filter bson.M) ([]*catalog.LaundromatMenu, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("could not list menus: %w", err)
	}
	defer cursor.Close(ctx)

	var menus []*catalog.LaundromatMenu
	for cursor.Next(ctx) {
		var m catalog.LaundromatMenu
		if err := cursor.Decode(&m); err != nil {
			return nil, fmt.Errorf("could not decode menu: %w", err)
		}
		menus = append(menus, &m)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return menus, nil
}

// Save updates an existing menu
func (r *MenuRepo) Save(ctx context.Context, m *catalog.LaundromatMenu) error {
	if m == nil {
		return fmt.Errorf("menu cannot be nil")
	}

	filter := bson.M{"_id": m.GetID().String()}
	opts := options.Replace().SetUpsert(false)

	result, err := r.collection.ReplaceOne(ctx, filter, m, opts)
	if err != nil {
		return fmt.Errorf("could not save menu: %w", err)
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", catalog.ErrMenuNotFound, m.GetID().String())
	}
	return nil
}

// Delete removes a menu by ID
func (r *MenuRepo) Delete(ctx context.Context, id uuid.UUID) error {
	filter := bson.M{"_id": id.String()}

	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("could not delete menu: %w", err)
	}

	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", catalog.ErrMenuNotFound, id.String())
	}
	return nil
}

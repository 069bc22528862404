package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/aquamarinepk/aqm"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/stuywashndry/washnd/services/cart/internal/cart"
)

// CartRepo persists carts using the wire field names the mobile clients
// already depend on ("User ID", "Laundromat Store ID", ...). The codec is
// explicit in both directions: a malformed remote document produces a typed
// decode error for that one document, never a panic, and listings skip the
// bad document instead of failing wholesale.
type CartRepo struct {
	collection *mongo.Collection
	logger     aqm.Logger
}

func NewCartRepo(db *mongo.Database, logger aqm.Logger) *CartRepo {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &CartRepo{
		collection: db.Collection("carts"),
		logger:     logger,
	}
}

// Push creates or recreates the remote record. An upsert by design: the
// replace-cart flow is delete-then-create with no transaction, so a crash
// between the two calls must not strand a half-written record.
func (r *CartRepo) Push(ctx context.Context, c *cart.Cart) error {
	if c == nil {
		return fmt.Errorf("cart is nil")
	}

	doc := encodeCart(c)
	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, bson.M{"_id": c.ID}, doc, opts); err != nil {
		return fmt.Errorf("%w: %s: %v", cart.ErrPushFailed, c.ID, err)
	}

	return nil
}

// Update overwrites the mutable fields only: item list, subtotal, abandoned
// flag and updated timestamp.
func (r *CartRepo) Update(ctx context.Context, c *cart.Cart) error {
	if c == nil {
		return fmt.Errorf("cart is nil")
	}

	update := bson.M{"$set": bson.M{
		"Items":     encodeItems(c.Items),
		"Subtotal":  c.Subtotal,
		"Abandoned": c.Abandoned,
		"Updated":   time.Now(),
	}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": c.ID}, update)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", cart.ErrUpdateFailed, c.ID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", cart.ErrCartNotFound, c.ID)
	}

	return nil
}

func (r *CartRepo) Delete(ctx context.Context, cartID string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": cartID})
	if err != nil {
		return fmt.Errorf("%w: %s: %v", cart.ErrDeletionFailed, cartID, err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", cart.ErrCartNotFound, cartID)
	}

	return nil
}

func (r *CartRepo) Fetch(ctx context.Context, cartID string) (*cart.Cart, error) {
	var doc bson.M
	err := r.collection.FindOne(ctx, bson.M{"_id": cartID}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("%w: %s", cart.ErrCartNotFound, cartID)
		}
		return nil, fmt.Errorf("cannot fetch cart %s: %w", cartID, err)
	}

	return decodeCart(doc)
}

func (r *CartRepo) FetchAllForUser(ctx context.Context, userID string) ([]*cart.Cart, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"User ID": userID})
	if err != nil {
		return nil, fmt.Errorf("cannot list carts for user %s: %w", userID, err)
	}
	defer cursor.Close(ctx)

	var docs []bson.M
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("cannot decode cart document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error listing carts: %w", err)
	}

	return decodeCarts(docs, r.logger), nil
}

// decodeCarts converts raw documents, skipping any that fail to decode. One
// corrupt record must not hide the user's other carts; the skip is logged
// with the offending ID so the record can be repaired.
func decodeCarts(docs []bson.M, logger aqm.Logger) []*cart.Cart {
	result := make([]*cart.Cart, 0, len(docs))
	for _, doc := range docs {
		c, err := decodeCart(doc)
		if err != nil {
			logger.Error("skipping undecodable cart document", "cart_id", doc["_id"], "error", err)
			continue
		}
		result = append(result, c)
	}
	return result
}

func encodeCart(c *cart.Cart) bson.M {
	return bson.M{
		"_id":                 c.ID,
		"User ID":             c.UserID,
		"Laundromat Store ID": c.StoreID,
		"Laundromat Name":     c.StoreName,
		"Items":               encodeItems(c.Items),
		"Subtotal":            c.Subtotal,
		"Abandoned":           c.Abandoned,
		"Created":             c.CreatedAt,
		"Updated":             c.UpdatedAt,
	}
}

func encodeItems(items []*cart.OrderItem) bson.A {
	encoded := make(bson.A, len(items))
	for i, item := range items {
		choices := make(bson.A, len(item.Choices))
		for j, choice := range item.Choices {
			choices[j] = bson.M{
				"Category":        choice.Category,
				"Name":            choice.Name,
				"Description":     choice.Description,
				"Price":           choice.Price,
				"Required":        choice.Required,
				"Limit":           choice.Limit,
				"Overrides Total": choice.OverridesTotal,
				"Selected":        choice.Selected,
			}
		}
		encoded[i] = bson.M{
			"ID":                   item.ID.String(),
			"Laundromat Menu":      item.MenuID.String(),
			"Name":                 item.Name,
			"Category":             item.Category,
			"Description":          item.Description,
			"Photo":                item.Photo,
			"Price":                item.Price,
			"Count":                item.Count,
			"Discount":             item.Discount,
			"Special Instructions": item.SpecialInstructions,
			"Choices":              choices,
		}
	}
	return encoded
}

func decodeCart(doc bson.M) (*cart.Cart, error) {
	c := &cart.Cart{}

	id, ok := doc["_id"].(string)
	if !ok || id == "" {
		return nil, fmt.Errorf("cart document missing _id")
	}
	c.ID = id

	userID, ok := doc["User ID"].(string)
	if !ok || userID == "" {
		return nil, fmt.Errorf("cart %s missing User ID", id)
	}
	c.UserID = userID

	storeID, ok := doc["Laundromat Store ID"].(string)
	if !ok || storeID == "" {
		return nil, fmt.Errorf("cart %s missing Laundromat Store ID", id)
	}
	c.StoreID = storeID

	if v, ok := doc["Laundromat Name"].(string); ok {
		c.StoreName = v
	}
	if v, ok := asFloat(doc["Subtotal"]); ok {
		c.Subtotal = v
	}
	if v, ok := doc["Abandoned"].(bool); ok {
		c.Abandoned = v
	}
	if v, ok := asTime(doc["Created"]); ok {
		c.CreatedAt = v
	}
	if v, ok := asTime(doc["Updated"]); ok {
		c.UpdatedAt = v
	}

	itemsArr, ok := doc["Items"].(bson.A)
	if !ok {
		return nil, fmt.Errorf("cart %s missing Items", id)
	}
	c.Items = make([]*cart.OrderItem, 0, len(itemsArr))
	for i, raw := range itemsArr {
		itemDoc, ok := raw.(bson.M)
		if !ok {
			return nil, fmt.Errorf("cart %s: item %d is not a document", id, i)
		}
		item, err := decodeItem(itemDoc)
		if err != nil {
			return nil, fmt.Errorf("cart %s: item %d: %w", id, i, err)
		}
		c.Items = append(c.Items, item)
	}

	return c, nil
}

func decodeItem(doc bson.M) (*cart.OrderItem, error) {
	item := &cart.OrderItem{}

	idStr, ok := doc["ID"].(string)
	if !ok {
		return nil, fmt.Errorf("missing ID")
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("invalid UUID format for ID: %w", err)
	}
	item.ID = id

	if menuStr, ok := doc["Laundromat Menu"].(string); ok && menuStr != "" {
		menuID, err := uuid.Parse(menuStr)
		if err != nil {
			return nil, fmt.Errorf("invalid UUID format for Laundromat Menu: %w", err)
		}
		item.MenuID = menuID
	}

	name, ok := doc["Name"].(string)
	if !ok || name == "" {
		return nil, fmt.Errorf("missing Name")
	}
	item.Name = name

	if v, ok := doc["Category"].(string); ok {
		item.Category = v
	}
	if v, ok := doc["Description"].(string); ok {
		item.Description = v
	}
	if v, ok := doc["Photo"].(string); ok {
		item.Photo = v
	}
	if v, ok := doc["Special Instructions"].(string); ok {
		item.SpecialInstructions = v
	}

	price, ok := asFloat(doc["Price"])
	if !ok {
		return nil, fmt.Errorf("missing Price")
	}
	item.Price = price

	count, ok := asInt(doc["Count"])
	if !ok {
		return nil, fmt.Errorf("missing Count")
	}
	item.Count = count

	if v, ok := asFloat(doc["Discount"]); ok {
		item.Discount = v
	}

	if choicesArr, ok := doc["Choices"].(bson.A); ok {
		item.Choices = make([]cart.ItemChoice, 0, len(choicesArr))
		for i, raw := range choicesArr {
			choiceDoc, ok := raw.(bson.M)
			if !ok {
				return nil, fmt.Errorf("choice %d is not a document", i)
			}
			choice, err := decodeChoice(choiceDoc)
			if err != nil {
				return nil, fmt.Errorf("choice %d: %w", i, err)
			}
			item.Choices = append(item.Choices, choice)
		}
	}

	return item, nil
}

func decodeChoice(doc bson.M) (cart.ItemChoice, error) {
	choice := cart.ItemChoice{}

	name, ok := doc["Name"].(string)
	if !ok || name == "" {
		return choice, fmt.Errorf("missing Name")
	}
	choice.Name = name

	if v, ok := doc["Category"].(string); ok {
		choice.Category = v
	}
	if v, ok := doc["Description"].(string); ok {
		choice.Description = v
	}

	price, ok := asFloat(doc["Price"])
	if !ok {
		return choice, fmt.Errorf("missing Price")
	}
	choice.Price = price

	if v, ok := doc["Required"].(bool); ok {
		choice.Required = v
	}
	if v, ok := asInt(doc["Limit"]); ok {
		choice.Limit = v
	}
	if v, ok := doc["Overrides Total"].(bool); ok {
		choice.OverridesTotal = v
	}
	if v, ok := doc["Selected"].(bool); ok {
		choice.Selected = v
	}

	return choice, nil
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func asInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}

func asTime(v interface{}) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case primitive.DateTime:
		return t.Time(), true
	}
	return time.Time{}, false
}

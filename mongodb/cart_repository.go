package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// cartDocument is the backend cart projection keyed by the session
// reference. It is derived state, overwritten wholesale on every recovery.
type cartDocument struct {
	Ref       string     `bson:"_id"`
	Items     []cartItem `bson:"items"`
	UpdatedAt time.Time  `bson:"updated_at"`
}

type cartItem struct {
	ProductID int64     `bson:"product_id"`
	Quantity  int       `bson:"quantity"`
	AddedAt   time.Time `bson:"added_at"`
}

// CartRepository implements domain.Cart against the carts collection.
type CartRepository struct {
	collection *mongo.Collection
}

// NewCartRepository creates a CartRepository on db.
func NewCartRepository(db *mongo.Database) *CartRepository {
	return &CartRepository{
		collection: db.Collection(CartsCollection),
	}
}

// Clear implements domain.Cart.Clear: it resets the cart under ref to an
// empty item list.
func (r *CartRepository) Clear(ctx context.Context, ref string) error {
	filter := bson.M{"_id": ref}
	update := bson.M{"$set": bson.M{
		"items":      []cartItem{},
		"updated_at": time.Now(),
	}}
	opts := options.Update().SetUpsert(true)

	if _, err := r.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	return nil
}

// AddItem implements domain.Cart.AddItem: it appends a line to the cart
// under ref.
func (r *CartRepository) AddItem(ctx context.Context, ref string, productID int64, quantity int) error {
	item := cartItem{
		ProductID: productID,
		Quantity:  quantity,
		AddedAt:   time.Now(),
	}

	filter := bson.M{"_id": ref}
	update := bson.M{
		"$push": bson.M{"items": item},
		"$set":  bson.M{"updated_at": time.Now()},
	}
	opts := options.Update().SetUpsert(true)

	if _, err := r.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to add item to cart: %w", err)
	}

	return nil
}

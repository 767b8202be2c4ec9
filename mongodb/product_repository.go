package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Redemptive-Software/woocommerce-ucp/domain"
)

// ProductRepository implements domain.Catalog against the products
// collection.
type ProductRepository struct {
	collection *mongo.Collection
}

// NewProductRepository creates a ProductRepository on db.
func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{
		collection: db.Collection(ProductsCollection),
	}
}

// GetProduct implements domain.Catalog.GetProduct.
func (r *ProductRepository) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	var product domain.Product

	filter := bson.M{"_id": id}
	if err := r.collection.FindOne(ctx, filter).Decode(&product); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return &product, nil
}

package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"shop-core/internal/model"
)

// ProductRepository defines the read-only view of the catalog this core
// consults. The catalog service owns the collections.
type ProductRepository interface {
	// FindByID retrieves a single product
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Product, error)

	// FindByIDs retrieves the products that exist among ids; missing ids are
	// simply absent from the result
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*model.Product, error)

	// FindPublishedByShop lists a shop's live products
	FindPublishedByShop(ctx context.Context, shopID primitive.ObjectID) ([]*model.Product, error)

	// FindSKU retrieves a sellable variant; NotFound when missing or
	// soft-deleted
	FindSKU(ctx context.Context, skuID primitive.ObjectID) (*model.SKU, error)
}

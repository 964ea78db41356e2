package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"shop-core/internal/model"
	apperrors "shop-core/pkg/errors"
)

// mongodbProductRepository implements ProductRepository using MongoDB
type mongodbProductRepository struct {
	products *mongo.Collection
	skus     *mongo.Collection
}

// NewProductRepository creates a new MongoDB-based product repository
func NewProductRepository(db *mongo.Database) ProductRepository {
	return &mongodbProductRepository{
		products: db.Collection("products"),
		skus:     db.Collection("skus"),
	}
}

// FindByID retrieves a single product
func (r *mongodbProductRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Product, error) {
	var product model.Product
	err := r.products.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NotFound("product not found")
		}
		return nil, err
	}
	return &product, nil
}

// FindByIDs retrieves the products that exist among ids
func (r *mongodbProductRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*model.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	cursor, err := r.products.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var products []*model.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// FindPublishedByShop lists a shop's live products
func (r *mongodbProductRepository) FindPublishedByShop(ctx context.Context, shopID primitive.ObjectID) ([]*model.Product, error) {
	cursor, err := r.products.Find(ctx, bson.M{
		"shop_id":      shopID,
		"is_published": true,
		"is_deleted":   false,
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var products []*model.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// FindSKU retrieves a sellable variant
func (r *mongodbProductRepository) FindSKU(ctx context.Context, skuID primitive.ObjectID) (*model.SKU, error) {
	var sku model.SKU
	err := r.skus.FindOne(ctx, bson.M{"_id": skuID, "is_deleted": false}).Decode(&sku)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NotFound("sku not found")
		}
		return nil, err
	}
	return &sku, nil
}

package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"shop-core/internal/model"
	apperrors "shop-core/pkg/errors"
)

// mongodbCartRepository implements CartRepository using MongoDB
type mongodbCartRepository struct {
	collection *mongo.Collection
}

// NewCartRepository creates a new MongoDB-based cart repository
func NewCartRepository(db *mongo.Database) CartRepository {
	return &mongodbCartRepository{
		collection: db.Collection("carts"),
	}
}

// FindByUser retrieves the user's cart
func (r *mongodbCartRepository) FindByUser(ctx context.Context, userID string) (*model.Cart, error) {
	var cart model.Cart
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&cart)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NotFound("cart not found")
		}
		return nil, err
	}
	return &cart, nil
}

// Insert persists a brand-new cart
func (r *mongodbCartRepository) Insert(ctx context.Context, cart *model.Cart) error {
	result, err := r.collection.InsertOne(ctx, cart)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.Conflict("cart already exists for this user")
		}
		return err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		cart.ID = oid
	}
	return nil
}

// Save replaces the stored cart document
func (r *mongodbCartRepository) Save(ctx context.Context, cart *model.Cart) error {
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": cart.ID}, cart)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperrors.NotFound("cart not found")
	}
	return nil
}

// IncItemQuantity atomically bumps an existing item's quantity using array
// filters, avoiding a read-modify-write of the whole document for the common
// "same SKU added again" path.
func (r *mongodbCartRepository) IncItemQuantity(ctx context.Context, userID string, skuID primitive.ObjectID, delta int64) (*model.Cart, error) {
	arrayFilters := options.ArrayFilters{
		Filters: bson.A{
			bson.M{"s.items.sku_id": skuID},
			bson.M{"i.sku_id": skuID},
		},
	}

	var cart model.Cart
	err := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"user_id": userID, "shops.items.sku_id": skuID},
		bson.M{
			"$inc": bson.M{"shops.$[s].items.$[i].quantity": delta},
			"$set": bson.M{"updated_at": time.Now()},
		},
		options.FindOneAndUpdate().
			SetArrayFilters(arrayFilters).
			SetReturnDocument(options.After),
	).Decode(&cart)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NotFound("cart item not found")
		}
		return nil, err
	}
	return &cart, nil
}

package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"shop-core/internal/model"
)

// mongodbUsageRepository implements UsageRepository using MongoDB
type mongodbUsageRepository struct {
	collection *mongo.Collection
}

// NewUsageRepository creates a new MongoDB-based usage repository
func NewUsageRepository(db *mongo.Database) UsageRepository {
	return &mongodbUsageRepository{
		collection: db.Collection("discount_usages"),
	}
}

// Create appends a new usage record
func (r *mongodbUsageRepository) Create(ctx context.Context, usage *model.DiscountUsage) error {
	result, err := r.collection.InsertOne(ctx, usage)
	if err != nil {
		return err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		usage.ID = oid
	}
	return nil
}

// FindByDiscount retrieves all usage records for a discount
func (r *mongodbUsageRepository) FindByDiscount(ctx context.Context, discountID primitive.ObjectID) ([]*model.DiscountUsage, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"discount_id": discountID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var usages []*model.DiscountUsage
	if err := cursor.All(ctx, &usages); err != nil {
		return nil, err
	}
	return usages, nil
}

// DeleteByDiscount removes all usage records of a discount
func (r *mongodbUsageRepository) DeleteByDiscount(ctx context.Context, discountID primitive.ObjectID) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"discount_id": discountID})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

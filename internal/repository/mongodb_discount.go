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

// mongodbDiscountRepository implements DiscountRepository using MongoDB
type mongodbDiscountRepository struct {
	collection *mongo.Collection
}

// NewDiscountRepository creates a new MongoDB-based discount repository
func NewDiscountRepository(db *mongo.Database) DiscountRepository {
	return &mongodbDiscountRepository{
		collection: db.Collection("discounts"),
	}
}

// Create persists a new discount code
func (r *mongodbDiscountRepository) Create(ctx context.Context, discount *model.Discount) error {
	result, err := r.collection.InsertOne(ctx, discount)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.Conflict("discount code already exists for this shop")
		}
		return err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		discount.ID = oid
	}
	return nil
}

// FindByID retrieves a discount by its id
func (r *mongodbDiscountRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Discount, error) {
	var discount model.Discount
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&discount)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NotFound("discount not found")
		}
		return nil, err
	}
	return &discount, nil
}

// FindByCode retrieves a discount by its exact code string
func (r *mongodbDiscountRepository) FindByCode(ctx context.Context, code string) (*model.Discount, error) {
	var discount model.Discount
	err := r.collection.FindOne(ctx, bson.M{"code": code}).Decode(&discount)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NotFound("discount not found")
		}
		return nil, err
	}
	return &discount, nil
}

// FindByShop lists a shop's discounts, newest first
func (r *mongodbDiscountRepository) FindByShop(ctx context.Context, shopID primitive.ObjectID, publishedOnly bool, limit, skip int64) ([]*model.Discount, error) {
	filter := bson.M{"shop_id": shopID}
	if publishedOnly {
		filter["is_published"] = true
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit).
		SetSkip(skip)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var discounts []*model.Discount
	if err := cursor.All(ctx, &discounts); err != nil {
		return nil, err
	}
	return discounts, nil
}

// ExistsOverlapping reports whether another code of the same owner scope
// shares the code string and overlaps [start, end]
func (r *mongodbDiscountRepository) ExistsOverlapping(ctx context.Context, shopID primitive.ObjectID, isAdminVoucher bool, code string, start, end time.Time, excludeID primitive.ObjectID) (bool, error) {
	filter := bson.M{
		"code":             code,
		"is_admin_voucher": isAdminVoucher,
		// intervals [a,b] and [c,d] overlap iff a <= d && c <= b
		"start_date": bson.M{"$lte": end},
		"end_date":   bson.M{"$gte": start},
	}
	if !isAdminVoucher {
		filter["shop_id"] = shopID
	}
	if !excludeID.IsZero() {
		filter["_id"] = bson.M{"$ne": excludeID}
	}

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Update applies a sparse patch and returns the updated document
func (r *mongodbDiscountRepository) Update(ctx context.Context, id primitive.ObjectID, patch *model.DiscountPatch) (*model.Discount, error) {
	set := bson.M{"updated_at": time.Now()}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Type != nil {
		set["type"] = *patch.Type
	}
	if patch.Value != nil {
		set["value"] = *patch.Value
	}
	if patch.MaxValue != nil {
		set["max_value"] = *patch.MaxValue
	}
	if patch.StartDate != nil {
		set["start_date"] = *patch.StartDate
	}
	if patch.EndDate != nil {
		set["end_date"] = *patch.EndDate
	}
	if patch.MaxUses != nil {
		set["max_uses"] = *patch.MaxUses
	}
	if patch.MinOrderCost != nil {
		set["min_order_cost"] = *patch.MinOrderCost
	}
	if patch.ApplyToAll != nil {
		set["apply_to_all_products"] = *patch.ApplyToAll
	}
	if patch.ProductIDs != nil {
		set["product_ids"] = patch.ProductIDs
	}
	if patch.IsPublished != nil {
		set["is_published"] = *patch.IsPublished
	}

	var updated model.Discount
	err := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NotFound("discount not found")
		}
		return nil, err
	}
	return &updated, nil
}

// ConsumeUse atomically increments the usage counter when the code is live,
// inside its window, and has quota headroom. The quota check folded into the
// filter is what makes concurrent redemptions safe past the cap.
func (r *mongodbDiscountRepository) ConsumeUse(ctx context.Context, code string, now time.Time) (*model.Discount, error) {
	filter := bson.M{
		"code":         code,
		"is_available": true,
		"is_published": true,
		"start_date":   bson.M{"$lte": now},
		"end_date":     bson.M{"$gte": now},
		"$or": bson.A{
			bson.M{"max_uses": nil},
			bson.M{"$expr": bson.M{"$lt": bson.A{"$used_count", "$max_uses"}}},
		},
	}

	var discount model.Discount
	err := r.collection.FindOneAndUpdate(
		ctx,
		filter,
		bson.M{
			"$inc": bson.M{"used_count": 1},
			"$set": bson.M{"updated_at": now},
		},
		options.FindOneAndUpdate().
			SetReturnDocument(options.After).
			SetUpsert(false),
	).Decode(&discount)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.BadRequest("discount is out of code")
		}
		return nil, err
	}
	return &discount, nil
}

// RollbackUse reverts one consumed use, as compensation
func (r *mongodbDiscountRepository) RollbackUse(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.UpdateByID(ctx, id, bson.M{
		"$inc": bson.M{"used_count": -1},
		"$set": bson.M{"updated_at": time.Now()},
	})
	return err
}

// SetAvailability flips the soft-disable flag
func (r *mongodbDiscountRepository) SetAvailability(ctx context.Context, id primitive.ObjectID, available bool) error {
	result, err := r.collection.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{"is_available": available, "updated_at": time.Now()},
	})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperrors.NotFound("discount not found")
	}
	return nil
}

// Delete hard-deletes a discount
func (r *mongodbDiscountRepository) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return result.DeletedCount > 0, nil
}

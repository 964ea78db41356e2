package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"shop-core/internal/model"
)

// UsageRepository defines the interface for redemption record operations
type UsageRepository interface {
	// Create appends a new usage record
	Create(ctx context.Context, usage *model.DiscountUsage) error

	// FindByDiscount retrieves all usage records for a discount
	FindByDiscount(ctx context.Context, discountID primitive.ObjectID) ([]*model.DiscountUsage, error)

	// DeleteByDiscount removes all usage records of a discount, used when the
	// owning shop hard-deletes the code
	DeleteByDiscount(ctx context.Context, discountID primitive.ObjectID) (int64, error)
}

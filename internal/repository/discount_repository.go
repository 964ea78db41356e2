package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"shop-core/internal/model"
)

// DiscountRepository defines the interface for discount code data operations
type DiscountRepository interface {
	// Create persists a new discount code
	Create(ctx context.Context, discount *model.Discount) error

	// FindByID retrieves a discount by its id
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Discount, error)

	// FindByCode retrieves a discount by its exact code string
	FindByCode(ctx context.Context, code string) (*model.Discount, error)

	// FindByShop lists a shop's discounts, newest first
	FindByShop(ctx context.Context, shopID primitive.ObjectID, publishedOnly bool, limit, skip int64) ([]*model.Discount, error)

	// ExistsOverlapping reports whether another code of the same owner scope
	// shares the code string and overlaps [start, end]. excludeID skips the
	// code's own document on update re-checks.
	ExistsOverlapping(ctx context.Context, shopID primitive.ObjectID, isAdminVoucher bool, code string, start, end time.Time, excludeID primitive.ObjectID) (bool, error)

	// Update applies a sparse patch and returns the updated document
	Update(ctx context.Context, id primitive.ObjectID, patch *model.DiscountPatch) (*model.Discount, error)

	// ConsumeUse atomically increments the usage counter of the code matching
	// code + availability + window + quota headroom, returning the
	// post-update document. Fails when no document matches.
	ConsumeUse(ctx context.Context, code string, now time.Time) (*model.Discount, error)

	// RollbackUse reverts one consumed use, as compensation
	RollbackUse(ctx context.Context, id primitive.ObjectID) error

	// SetAvailability flips the soft-disable flag
	SetAvailability(ctx context.Context, id primitive.ObjectID, available bool) error

	// Delete hard-deletes a discount. Returns whether a document was removed.
	Delete(ctx context.Context, id primitive.ObjectID) (bool, error)
}

package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"shop-core/internal/model"
)

// CartRepository defines the interface for cart data operations
type CartRepository interface {
	// FindByUser retrieves the user's cart; NotFound when none exists
	FindByUser(ctx context.Context, userID string) (*model.Cart, error)

	// Insert persists a brand-new cart
	Insert(ctx context.Context, cart *model.Cart) error

	// Save replaces the stored cart document
	Save(ctx context.Context, cart *model.Cart) error

	// IncItemQuantity atomically bumps an existing item's quantity and
	// returns the post-update cart
	IncItemQuantity(ctx context.Context, userID string, skuID primitive.ObjectID, delta int64) (*model.Cart, error)
}

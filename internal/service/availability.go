package service

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"shop-core/internal/model"
	"shop-core/internal/repository"
)

// Availability answers publish/ownership questions about a set of products.
// The answers are point-in-time reads; callers treat a false as a hard
// validation failure, not something to retry.
type Availability struct {
	products repository.ProductRepository
}

// NewAvailability creates an availability checker over the catalog view
func NewAvailability(products repository.ProductRepository) *Availability {
	return &Availability{products: products}
}

// AreAvailable reports whether every product exists, is live, and is owned by
// shopID. A missing id counts as unavailable.
func (a *Availability) AreAvailable(ctx context.Context, productIDs []primitive.ObjectID, shopID primitive.ObjectID) (bool, error) {
	found, err := a.lookup(ctx, productIDs)
	if err != nil {
		return false, err
	}
	for _, id := range productIDs {
		p, ok := found[id]
		if !ok || !p.Sellable() || p.ShopID != shopID {
			return false, nil
		}
	}
	return true, nil
}

// ArePublished reports whether every product exists and is live, without
// checking ownership. Used for cart pricing where one cart legitimately mixes
// products from several shops.
func (a *Availability) ArePublished(ctx context.Context, productIDs []primitive.ObjectID) (bool, error) {
	found, err := a.lookup(ctx, productIDs)
	if err != nil {
		return false, err
	}
	for _, id := range productIDs {
		p, ok := found[id]
		if !ok || !p.Sellable() {
			return false, nil
		}
	}
	return true, nil
}

// lookup fetches the distinct ids and returns one entry per distinct id found.
func (a *Availability) lookup(ctx context.Context, productIDs []primitive.ObjectID) (map[primitive.ObjectID]*model.Product, error) {
	distinct := make([]primitive.ObjectID, 0, len(productIDs))
	seen := make(map[primitive.ObjectID]bool, len(productIDs))
	for _, id := range productIDs {
		if !seen[id] {
			seen[id] = true
			distinct = append(distinct, id)
		}
	}

	products, err := a.products.FindByIDs(ctx, distinct)
	if err != nil {
		return nil, err
	}

	found := make(map[primitive.ObjectID]*model.Product, len(products))
	for _, p := range products {
		found[p.ID] = p
	}
	return found, nil
}

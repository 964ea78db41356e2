package service

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"shop-core/internal/model"
	"shop-core/internal/repository"
	apperrors "shop-core/pkg/errors"
)

// CartService maintains each user's single multi-shop cart. Mutations
// validate quantities against live SKU stock at the moment of the call;
// concurrent requests from the same user can still race that check, which is
// an accepted limitation of the single-document cart model.
type CartService struct {
	carts        repository.CartRepository
	products     repository.ProductRepository
	availability *Availability
	now          func() time.Time
}

// NewCartService creates a new cart service
func NewCartService(carts repository.CartRepository, products repository.ProductRepository, availability *Availability) *CartService {
	return &CartService{
		carts:        carts,
		products:     products,
		availability: availability,
		now:          time.Now,
	}
}

// AddToCart puts quantity units of a SKU into the user's cart, creating the
// cart and the shop section as needed. Every quantity-bearing branch checks
// live stock, including a new SKU joining an existing shop section.
func (s *CartService) AddToCart(ctx context.Context, req *model.AddToCartRequest) (*model.Cart, error) {
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 {
		return nil, apperrors.InvalidPayload("quantity must be positive")
	}
	skuID, err := primitive.ObjectIDFromHex(req.SKUID)
	if err != nil {
		return nil, apperrors.InvalidPayload("invalid sku id")
	}

	sku, err := s.products.FindSKU(ctx, skuID)
	if err != nil {
		return nil, err
	}
	product, err := s.products.FindByID(ctx, sku.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.Sellable() {
		return nil, apperrors.BadRequest("product is not available for sale")
	}

	now := s.now()
	cart, err := s.carts.FindByUser(ctx, req.UserID)
	if apperrors.IsKind(err, apperrors.KindNotFound) {
		cart = &model.Cart{UserID: req.UserID, Shops: []model.CartShop{}, CreatedAt: now}
		err = nil
	}
	if err != nil {
		return nil, err
	}

	item := model.CartItem{
		SKUID:     skuID,
		ProductID: product.ID,
		Quantity:  quantity,
		Name:      product.Name,
		UnitPrice: sku.Price,
		Thumbnail: product.Thumbnail,
		Selected:  true,
		AddedAt:   now,
	}

	shop := cart.Shop(product.ShopID)
	switch {
	case shop == nil:
		if sku.Stock < quantity {
			return nil, apperrors.BadRequest("out of stock")
		}
		cart.Shops = append(cart.Shops, model.CartShop{
			ShopID: product.ShopID,
			Items:  []model.CartItem{item},
		})
	case shop.Item(skuID) != nil:
		existing := shop.Item(skuID)
		if sku.Stock < existing.Quantity+quantity {
			return nil, apperrors.BadRequest("out of stock")
		}
		// quantity bump on an existing item goes through the atomic path
		return s.carts.IncItemQuantity(ctx, req.UserID, skuID, quantity)
	default:
		if sku.Stock < quantity {
			return nil, apperrors.BadRequest("out of stock")
		}
		shop.Items = append(shop.Items, item)
	}

	cart.UpdatedAt = now
	if cart.ID.IsZero() {
		if err := s.carts.Insert(ctx, cart); err != nil {
			return nil, err
		}
		return cart, nil
	}
	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// GetCart returns the user's cart, or an empty cart value when none exists.
func (s *CartService) GetCart(ctx context.Context, userID string) (*model.Cart, error) {
	cart, err := s.carts.FindByUser(ctx, userID)
	if apperrors.IsKind(err, apperrors.KindNotFound) {
		return &model.Cart{UserID: userID, Shops: []model.CartShop{}}, nil
	}
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// UpdateCart reconciles the cart against client-supplied shop deltas and
// returns the pre- and post-image of the shop sections. This path trusts the
// client's quantities and selection flags; stock re-validation belongs to
// AddToCart and the decrease operations. All deltas are validated before any
// of them is applied.
func (s *CartService) UpdateCart(ctx context.Context, req *model.UpdateCartRequest) (*model.CartDiff, error) {
	cart, err := s.carts.FindByUser(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	type resolvedUpdate struct {
		shop   *model.CartShop
		update model.CartShopUpdate
	}
	resolved := make([]resolvedUpdate, 0, len(req.Shops))

	for _, su := range req.Shops {
		shopID, err := primitive.ObjectIDFromHex(su.ShopID)
		if err != nil {
			return nil, apperrors.InvalidPayload("invalid shop id")
		}
		shop := cart.Shop(shopID)
		if shop == nil {
			return nil, apperrors.NotFound("shop section not found in cart")
		}

		productIDs := make([]primitive.ObjectID, 0, len(su.Items))
		for _, iu := range su.Items {
			skuID, err := primitive.ObjectIDFromHex(iu.SKUID)
			if err != nil {
				return nil, apperrors.InvalidPayload("invalid sku id")
			}
			item := shop.Item(skuID)
			if item == nil {
				return nil, apperrors.NotFound("cart item not found")
			}
			productIDs = append(productIDs, item.ProductID)
		}

		ok, err := s.availability.AreAvailable(ctx, productIDs, shopID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperrors.BadRequest("some products are no longer available to use")
		}

		resolved = append(resolved, resolvedUpdate{shop: shop, update: su})
	}

	old := cart.CloneShops()

	for _, ru := range resolved {
		for _, iu := range ru.update.Items {
			skuID, _ := primitive.ObjectIDFromHex(iu.SKUID)
			item := ru.shop.Item(skuID)
			if item == nil {
				// an earlier delta in this request already removed the item
				continue
			}
			if iu.IsDelete || (iu.Quantity != nil && *iu.Quantity <= 0) {
				ru.shop.RemoveItem(skuID)
				continue
			}
			if iu.Quantity != nil {
				item.Quantity = *iu.Quantity
			}
			if iu.Selected != nil {
				item.Selected = *iu.Selected
			}
		}
	}
	cart.RemoveEmptyShops()

	cart.UpdatedAt = s.now()
	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, err
	}
	return &model.CartDiff{Old: old, New: cart.Shops}, nil
}

// DecreaseFromCart lowers an item's quantity, removing the item (and an
// emptied shop section) when it reaches zero.
func (s *CartService) DecreaseFromCart(ctx context.Context, req *model.DecreaseFromCartRequest) (*model.Cart, error) {
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 {
		return nil, apperrors.InvalidPayload("quantity must be positive")
	}
	skuID, err := primitive.ObjectIDFromHex(req.SKUID)
	if err != nil {
		return nil, apperrors.InvalidPayload("invalid sku id")
	}

	cart, err := s.carts.FindByUser(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	item, shop := findCartItem(cart, skuID)
	if item == nil {
		return nil, apperrors.NotFound("cart item not found")
	}

	if item.Quantity <= quantity {
		shop.RemoveItem(skuID)
		cart.RemoveEmptyShops()
	} else {
		item.Quantity -= quantity
	}

	cart.UpdatedAt = s.now()
	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// DeleteProductFromCart removes a single item entirely.
func (s *CartService) DeleteProductFromCart(ctx context.Context, userID, skuIDHex string) (*model.Cart, error) {
	skuID, err := primitive.ObjectIDFromHex(skuIDHex)
	if err != nil {
		return nil, apperrors.InvalidPayload("invalid sku id")
	}

	cart, err := s.carts.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	item, shop := findCartItem(cart, skuID)
	if item == nil {
		return nil, apperrors.NotFound("cart item not found")
	}
	shop.RemoveItem(skuID)
	cart.RemoveEmptyShops()

	cart.UpdatedAt = s.now()
	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// DeleteProductsFromCart removes any of the given SKUs present in the cart.
// Returns whether at least one item was removed.
func (s *CartService) DeleteProductsFromCart(ctx context.Context, req *model.DeleteProductsRequest) (bool, error) {
	skuIDs, err := parseObjectIDs(req.SKUIDs)
	if err != nil {
		return false, apperrors.InvalidPayload("invalid sku id")
	}

	cart, err := s.carts.FindByUser(ctx, req.UserID)
	if err != nil {
		return false, err
	}

	removed := false
	for _, skuID := range skuIDs {
		if _, shop := findCartItem(cart, skuID); shop != nil {
			if shop.RemoveItem(skuID) {
				removed = true
			}
		}
	}
	if !removed {
		return false, nil
	}
	cart.RemoveEmptyShops()

	cart.UpdatedAt = s.now()
	if err := s.carts.Save(ctx, cart); err != nil {
		return false, err
	}
	return true, nil
}

// findCartItem locates an item and its shop section by SKU id.
func findCartItem(cart *model.Cart, skuID primitive.ObjectID) (*model.CartItem, *model.CartShop) {
	for i := range cart.Shops {
		if item := cart.Shops[i].Item(skuID); item != nil {
			return item, &cart.Shops[i]
		}
	}
	return nil, nil
}

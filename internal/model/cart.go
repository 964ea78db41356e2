package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Cart is a user's single shopping cart, grouped into one section per shop.
// A section with zero items is removed rather than kept empty.
type Cart struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID    string             `bson:"user_id" json:"user_id"`
	Shops     []CartShop         `bson:"shops" json:"shops"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// CartShop groups the cart items belonging to one shop.
type CartShop struct {
	ShopID primitive.ObjectID `bson:"shop_id" json:"shop_id"`
	Items  []CartItem         `bson:"items" json:"items"`
}

// CartItem is one SKU in the cart. Name, unit price and thumbnail are
// snapshots captured at add-time for display stability; they are never
// refreshed from the live product.
type CartItem struct {
	SKUID     primitive.ObjectID `bson:"sku_id" json:"sku_id"`
	ProductID primitive.ObjectID `bson:"product_id" json:"product_id"`
	Quantity  int64              `bson:"quantity" json:"quantity"`
	Name      string             `bson:"name" json:"name"`
	UnitPrice int64              `bson:"unit_price" json:"unit_price"`
	Thumbnail string             `bson:"thumbnail,omitempty" json:"thumbnail,omitempty"`
	Selected  bool               `bson:"selected" json:"selected"` // checkout picks selected items only
	AddedAt   time.Time          `bson:"added_at" json:"added_at"`
}

// Shop returns the section for shopID, or nil.
func (c *Cart) Shop(shopID primitive.ObjectID) *CartShop {
	for i := range c.Shops {
		if c.Shops[i].ShopID == shopID {
			return &c.Shops[i]
		}
	}
	return nil
}

// RemoveEmptyShops drops sections whose last item was removed.
func (c *Cart) RemoveEmptyShops() {
	kept := c.Shops[:0]
	for _, s := range c.Shops {
		if len(s.Items) > 0 {
			kept = append(kept, s)
		}
	}
	c.Shops = kept
}

// CloneShops deep-copies the shop sections, for pre-image snapshots.
func (c *Cart) CloneShops() []CartShop {
	out := make([]CartShop, len(c.Shops))
	for i, s := range c.Shops {
		items := make([]CartItem, len(s.Items))
		copy(items, s.Items)
		out[i] = CartShop{ShopID: s.ShopID, Items: items}
	}
	return out
}

// Item returns the item for skuID within this section, or nil.
func (s *CartShop) Item(skuID primitive.ObjectID) *CartItem {
	for i := range s.Items {
		if s.Items[i].SKUID == skuID {
			return &s.Items[i]
		}
	}
	return nil
}

// RemoveItem drops the item for skuID. Returns true when something was removed.
func (s *CartShop) RemoveItem(skuID primitive.ObjectID) bool {
	for i := range s.Items {
		if s.Items[i].SKUID == skuID {
			s.Items = append(s.Items[:i], s.Items[i+1:]...)
			return true
		}
	}
	return false
}

// CartShopUpdate is one shop's delta in a bulk cart reconciliation.
type CartShopUpdate struct {
	ShopID string           `json:"shop_id" binding:"required"`
	Items  []CartItemUpdate `json:"items" binding:"required,min=1,dive"`
}

// CartItemUpdate is one item's delta. Nil fields are left untouched; a
// quantity at or below zero removes the item, as does IsDelete.
type CartItemUpdate struct {
	SKUID    string `json:"sku_id" binding:"required"`
	Quantity *int64 `json:"quantity"`
	Selected *bool  `json:"selected"`
	IsDelete bool   `json:"is_delete"`
}

// CartDiff carries the pre- and post-image of the shop sections touched by a
// bulk update, for audit/diffing by the caller.
type CartDiff struct {
	Old []CartShop `json:"old"`
	New []CartShop `json:"new"`
}

// AddToCartRequest represents the request to add a SKU to the cart
type AddToCartRequest struct {
	UserID   string `json:"user_id" binding:"required"`
	SKUID    string `json:"sku_id" binding:"required"`
	Quantity int64  `json:"quantity"`
}

// UpdateCartRequest represents a bulk cart reconciliation request
type UpdateCartRequest struct {
	UserID string           `json:"user_id" binding:"required"`
	Shops  []CartShopUpdate `json:"shops" binding:"required,min=1,dive"`
}

// DecreaseFromCartRequest represents the request to lower an item's quantity
type DecreaseFromCartRequest struct {
	UserID   string `json:"user_id" binding:"required"`
	SKUID    string `json:"sku_id" binding:"required"`
	Quantity int64  `json:"quantity"`
}

// DeleteProductsRequest represents the bulk item removal request
type DeleteProductsRequest struct {
	UserID string   `json:"user_id" binding:"required"`
	SKUIDs []string `json:"sku_ids" binding:"required,min=1"`
}

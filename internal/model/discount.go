package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DiscountType selects how a discount value is applied to the eligible total.
type DiscountType string

const (
	DiscountTypePercentage  DiscountType = "percentage"
	DiscountTypeFixedAmount DiscountType = "fixed_amount"
)

// Discount represents a discount code owned by a shop, or a platform-wide
// admin voucher when IsAdminVoucher is set (ShopID is zero in that case).
type Discount struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"id,omitempty"`
	Code           string               `bson:"code" json:"code"`
	Name           string               `bson:"name" json:"name"`
	Description    string               `bson:"description,omitempty" json:"description,omitempty"`
	ShopID         primitive.ObjectID   `bson:"shop_id,omitempty" json:"shop_id,omitempty"`
	IsAdminVoucher bool                 `bson:"is_admin_voucher" json:"is_admin_voucher"`
	Type           DiscountType         `bson:"type" json:"type"`
	Value          int64                `bson:"value" json:"value"`           // percent for percentage type, minor units for fixed
	MaxValue       int64                `bson:"max_value,omitempty" json:"max_value,omitempty"` // cap for percentage type; 0 = uncapped
	StartDate      time.Time            `bson:"start_date" json:"start_date"`
	EndDate        time.Time            `bson:"end_date" json:"end_date"`
	MaxUses        *int64               `bson:"max_uses" json:"max_uses"` // nil = unlimited
	UsedCount      int64                `bson:"used_count" json:"used_count"`
	MinOrderCost   int64                `bson:"min_order_cost,omitempty" json:"min_order_cost,omitempty"`
	ApplyToAll     bool                 `bson:"apply_to_all_products" json:"apply_to_all_products"`
	ProductIDs     []primitive.ObjectID `bson:"product_ids,omitempty" json:"product_ids,omitempty"`
	IsAvailable    bool                 `bson:"is_available" json:"is_available"`
	IsPublished    bool                 `bson:"is_published" json:"is_published"`
	CreatedAt      time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time            `bson:"updated_at" json:"updated_at"`
}

// InWindow reports whether now falls inside the validity window.
// Both bounds are inclusive.
func (d *Discount) InWindow(now time.Time) bool {
	return !now.Before(d.StartDate) && !now.After(d.EndDate)
}

// HasQuotaHeadroom reports whether at least one more use remains.
func (d *Discount) HasQuotaHeadroom() bool {
	return d.MaxUses == nil || d.UsedCount < *d.MaxUses
}

// AppliesTo reports whether a product falls inside this code's eligibility
// scope. An admin-all code matches everything; an admin-specific code matches
// only listed products; a shop-all code matches only the owning shop's
// products; a shop-specific code matches only listed products of that shop.
func (d *Discount) AppliesTo(productID, productShopID primitive.ObjectID) bool {
	if !d.IsAdminVoucher && productShopID != d.ShopID {
		return false
	}
	if d.ApplyToAll {
		return true
	}
	for _, id := range d.ProductIDs {
		if id == productID {
			return true
		}
	}
	return false
}

// AmountFor computes the discount amount for an eligible subtotal.
// Percentage discounts are capped at MaxValue when set; fixed discounts never
// exceed the eligible subtotal.
func (d *Discount) AmountFor(eligibleTotal int64) int64 {
	if d.Type == DiscountTypeFixedAmount {
		if d.Value > eligibleTotal {
			return eligibleTotal
		}
		return d.Value
	}
	amount := eligibleTotal * d.Value / 100
	if d.MaxValue > 0 && amount > d.MaxValue {
		amount = d.MaxValue
	}
	return amount
}

// DiscountUsage is the immutable record of one redemption: who used which
// code against which shop, and when.
type DiscountUsage struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	DiscountID primitive.ObjectID `bson:"discount_id" json:"discount_id"`
	Code       string             `bson:"code" json:"code"` // denormalized for querying
	UserID     string             `bson:"user_id" json:"user_id"`
	ShopID     primitive.ObjectID `bson:"shop_id,omitempty" json:"shop_id,omitempty"`
	UsedAt     time.Time          `bson:"used_at" json:"used_at"`
}

// DiscountPatch carries a sparse field update for a discount. Nil fields are
// left untouched by the repository.
type DiscountPatch struct {
	Name         *string
	Description  *string
	Type         *DiscountType
	Value        *int64
	MaxValue     *int64
	StartDate    *time.Time
	EndDate      *time.Time
	MaxUses      **int64 // outer nil = untouched, inner nil = unlimited
	MinOrderCost *int64
	ApplyToAll   *bool
	ProductIDs   []primitive.ObjectID
	IsPublished  *bool
}

// CartLine is a priced-cart input line for amount calculation.
type CartLine struct {
	ProductID primitive.ObjectID `json:"product_id" binding:"required"`
	Quantity  int64              `json:"quantity" binding:"required,gt=0"`
}

// AmountQuote is the result of a read-only discount amount calculation.
type AmountQuote struct {
	TotalPrice    int64 `json:"total_price"`
	TotalDiscount int64 `json:"total_discount"`
	TotalPayment  int64 `json:"total_payment"`
}

// CreateDiscountRequest represents the request to create a discount code
type CreateDiscountRequest struct {
	ShopID         string       `json:"shop_id"`
	IsAdminVoucher bool         `json:"is_admin_voucher"`
	Code           string       `json:"code" binding:"required"`
	Name           string       `json:"name" binding:"required"`
	Description    string       `json:"description"`
	Type           DiscountType `json:"type" binding:"required,oneof=percentage fixed_amount"`
	Value          int64        `json:"value" binding:"required,gt=0"`
	MaxValue       int64        `json:"max_value"`
	StartDate      time.Time    `json:"start_date" binding:"required"`
	EndDate        time.Time    `json:"end_date" binding:"required"`
	MaxUses        *int64       `json:"max_uses"`
	MinOrderCost   int64        `json:"min_order_cost"`
	ApplyToAll     bool         `json:"apply_to_all_products"`
	ProductIDs     []string     `json:"product_ids"`
	IsPublished    bool         `json:"is_published"`
}

// UpdateDiscountRequest represents a partial update of a discount code
type UpdateDiscountRequest struct {
	ShopID       string        `json:"shop_id" binding:"required"`
	Name         *string       `json:"name"`
	Description  *string       `json:"description"`
	Type         *DiscountType `json:"type" binding:"omitempty,oneof=percentage fixed_amount"`
	Value        *int64        `json:"value" binding:"omitempty,gt=0"`
	MaxValue     *int64        `json:"max_value"`
	StartDate    *time.Time    `json:"start_date"`
	EndDate      *time.Time    `json:"end_date"`
	MaxUses      *int64        `json:"max_uses" binding:"omitempty,gte=0"` // 0 clears the quota (unlimited)
	MinOrderCost *int64        `json:"min_order_cost"`
	ApplyToAll   *bool         `json:"apply_to_all_products"`
	ProductIDs   []string      `json:"product_ids"`
	IsPublished  *bool         `json:"is_published"`
}

// ComputeAmountRequest represents the request to price a cart against a code
type ComputeAmountRequest struct {
	Code  string     `json:"code" binding:"required"`
	Lines []CartLine `json:"lines" binding:"required,min=1,dive"`
}

// UseDiscountRequest represents the request to consume one use of a code
type UseDiscountRequest struct {
	UserID     string `json:"user_id" binding:"required"`
	DiscountID string `json:"discount_id" binding:"required"`
	Code       string `json:"code" binding:"required"`
}

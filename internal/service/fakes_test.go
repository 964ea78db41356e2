package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"shop-core/internal/model"
	apperrors "shop-core/pkg/errors"
)

// fakeDiscountRepo is an in-memory DiscountRepository. ConsumeUse performs
// its check-and-increment under the mutex, mirroring the atomicity the real
// implementation gets from FindOneAndUpdate.
type fakeDiscountRepo struct {
	mu        sync.Mutex
	discounts map[primitive.ObjectID]*model.Discount
}

func newFakeDiscountRepo() *fakeDiscountRepo {
	return &fakeDiscountRepo{discounts: make(map[primitive.ObjectID]*model.Discount)}
}

func (r *fakeDiscountRepo) add(d *model.Discount) *model.Discount {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d.ID.IsZero() {
		d.ID = primitive.NewObjectID()
	}
	r.discounts[d.ID] = d
	return d
}

func (r *fakeDiscountRepo) get(id primitive.ObjectID) *model.Discount {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.discounts[id]
}

func copyDiscount(d *model.Discount) *model.Discount {
	dup := *d
	if d.MaxUses != nil {
		v := *d.MaxUses
		dup.MaxUses = &v
	}
	dup.ProductIDs = append([]primitive.ObjectID(nil), d.ProductIDs...)
	return &dup
}

func (r *fakeDiscountRepo) Create(_ context.Context, discount *model.Discount) error {
	r.add(discount)
	return nil
}

func (r *fakeDiscountRepo) FindByID(_ context.Context, id primitive.ObjectID) (*model.Discount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.discounts[id]
	if !ok {
		return nil, apperrors.NotFound("discount not found")
	}
	return copyDiscount(d), nil
}

func (r *fakeDiscountRepo) FindByCode(_ context.Context, code string) (*model.Discount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.discounts {
		if d.Code == code {
			return copyDiscount(d), nil
		}
	}
	return nil, apperrors.NotFound("discount not found")
}

func (r *fakeDiscountRepo) FindByShop(_ context.Context, shopID primitive.ObjectID, publishedOnly bool, _, _ int64) ([]*model.Discount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Discount
	for _, d := range r.discounts {
		if d.ShopID == shopID && (!publishedOnly || d.IsPublished) {
			out = append(out, copyDiscount(d))
		}
	}
	return out, nil
}

func (r *fakeDiscountRepo) ExistsOverlapping(_ context.Context, shopID primitive.ObjectID, isAdminVoucher bool, code string, start, end time.Time, excludeID primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.discounts {
		if d.ID == excludeID || d.Code != code || d.IsAdminVoucher != isAdminVoucher {
			continue
		}
		if !isAdminVoucher && d.ShopID != shopID {
			continue
		}
		if !d.StartDate.After(end) && !start.After(d.EndDate) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeDiscountRepo) Update(_ context.Context, id primitive.ObjectID, patch *model.DiscountPatch) (*model.Discount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.discounts[id]
	if !ok {
		return nil, apperrors.NotFound("discount not found")
	}
	if patch.Name != nil {
		d.Name = *patch.Name
	}
	if patch.Description != nil {
		d.Description = *patch.Description
	}
	if patch.Type != nil {
		d.Type = *patch.Type
	}
	if patch.Value != nil {
		d.Value = *patch.Value
	}
	if patch.MaxValue != nil {
		d.MaxValue = *patch.MaxValue
	}
	if patch.StartDate != nil {
		d.StartDate = *patch.StartDate
	}
	if patch.EndDate != nil {
		d.EndDate = *patch.EndDate
	}
	if patch.MaxUses != nil {
		d.MaxUses = *patch.MaxUses
	}
	if patch.MinOrderCost != nil {
		d.MinOrderCost = *patch.MinOrderCost
	}
	if patch.ApplyToAll != nil {
		d.ApplyToAll = *patch.ApplyToAll
	}
	if patch.ProductIDs != nil {
		d.ProductIDs = patch.ProductIDs
	}
	if patch.IsPublished != nil {
		d.IsPublished = *patch.IsPublished
	}
	return copyDiscount(d), nil
}

func (r *fakeDiscountRepo) ConsumeUse(_ context.Context, code string, now time.Time) (*model.Discount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.discounts {
		if d.Code != code || !d.IsAvailable || !d.IsPublished || !d.InWindow(now) || !d.HasQuotaHeadroom() {
			continue
		}
		d.UsedCount++
		return copyDiscount(d), nil
	}
	return nil, apperrors.BadRequest("discount is out of code")
}

func (r *fakeDiscountRepo) RollbackUse(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.discounts[id]; ok {
		d.UsedCount--
	}
	return nil
}

func (r *fakeDiscountRepo) SetAvailability(_ context.Context, id primitive.ObjectID, available bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.discounts[id]
	if !ok {
		return apperrors.NotFound("discount not found")
	}
	d.IsAvailable = available
	return nil
}

func (r *fakeDiscountRepo) Delete(_ context.Context, id primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.discounts[id]; !ok {
		return false, nil
	}
	delete(r.discounts, id)
	return true, nil
}

// fakeUsageRepo is an in-memory UsageRepository whose Create can be rigged to
// fail, for compensation tests.
type fakeUsageRepo struct {
	mu         sync.Mutex
	records    []*model.DiscountUsage
	failCreate bool
}

func (r *fakeUsageRepo) Create(_ context.Context, usage *model.DiscountUsage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate {
		return errors.New("usage store unavailable")
	}
	usage.ID = primitive.NewObjectID()
	r.records = append(r.records, usage)
	return nil
}

func (r *fakeUsageRepo) FindByDiscount(_ context.Context, discountID primitive.ObjectID) ([]*model.DiscountUsage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.DiscountUsage
	for _, u := range r.records {
		if u.DiscountID == discountID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *fakeUsageRepo) DeleteByDiscount(_ context.Context, discountID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []*model.DiscountUsage
	var removed int64
	for _, u := range r.records {
		if u.DiscountID == discountID {
			removed++
			continue
		}
		kept = append(kept, u)
	}
	r.records = kept
	return removed, nil
}

func (r *fakeUsageRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

// fakeProductRepo is an in-memory ProductRepository.
type fakeProductRepo struct {
	mu       sync.Mutex
	products map[primitive.ObjectID]*model.Product
	skus     map[primitive.ObjectID]*model.SKU
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{
		products: make(map[primitive.ObjectID]*model.Product),
		skus:     make(map[primitive.ObjectID]*model.SKU),
	}
}

func (r *fakeProductRepo) addProduct(p *model.Product) *model.Product {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	r.products[p.ID] = p
	return p
}

func (r *fakeProductRepo) addSKU(s *model.SKU) *model.SKU {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.ID.IsZero() {
		s.ID = primitive.NewObjectID()
	}
	r.skus[s.ID] = s
	return s
}

func (r *fakeProductRepo) FindByID(_ context.Context, id primitive.ObjectID) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, apperrors.NotFound("product not found")
	}
	dup := *p
	return &dup, nil
}

func (r *fakeProductRepo) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Product
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			dup := *p
			out = append(out, &dup)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) FindPublishedByShop(_ context.Context, shopID primitive.ObjectID) ([]*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Product
	for _, p := range r.products {
		if p.ShopID == shopID && p.Sellable() {
			dup := *p
			out = append(out, &dup)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) FindSKU(_ context.Context, skuID primitive.ObjectID) (*model.SKU, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.skus[skuID]
	if !ok || s.IsDeleted {
		return nil, apperrors.NotFound("sku not found")
	}
	dup := *s
	return &dup, nil
}

// fakeCartRepo is an in-memory CartRepository keyed by user.
type fakeCartRepo struct {
	mu    sync.Mutex
	carts map[string]*model.Cart
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{carts: make(map[string]*model.Cart)}
}

func copyCart(c *model.Cart) *model.Cart {
	dup := *c
	dup.Shops = c.CloneShops()
	return &dup
}

func (r *fakeCartRepo) FindByUser(_ context.Context, userID string) (*model.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.carts[userID]
	if !ok {
		return nil, apperrors.NotFound("cart not found")
	}
	return copyCart(c), nil
}

func (r *fakeCartRepo) Insert(_ context.Context, cart *model.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.carts[cart.UserID]; ok {
		return apperrors.Conflict("cart already exists for this user")
	}
	cart.ID = primitive.NewObjectID()
	r.carts[cart.UserID] = copyCart(cart)
	return nil
}

func (r *fakeCartRepo) Save(_ context.Context, cart *model.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for userID, c := range r.carts {
		if c.ID == cart.ID {
			r.carts[userID] = copyCart(cart)
			return nil
		}
	}
	return apperrors.NotFound("cart not found")
}

func (r *fakeCartRepo) IncItemQuantity(_ context.Context, userID string, skuID primitive.ObjectID, delta int64) (*model.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.carts[userID]
	if !ok {
		return nil, apperrors.NotFound("cart item not found")
	}
	for i := range c.Shops {
		if item := c.Shops[i].Item(skuID); item != nil {
			item.Quantity += delta
			return copyCart(c), nil
		}
	}
	return nil, apperrors.NotFound("cart item not found")
}

func (r *fakeCartRepo) stored(userID string) *model.Cart {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.carts[userID]
}

// fakeTxRunner runs the function directly, with no transaction.
type fakeTxRunner struct{}

func (fakeTxRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

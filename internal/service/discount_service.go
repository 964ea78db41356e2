package service

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"shop-core/internal/model"
	"shop-core/internal/repository"
	apperrors "shop-core/pkg/errors"
	"shop-core/pkg/lock"
)

// lockResourceDiscount keys the redemption critical section per discount id.
const lockResourceDiscount = "discount"

// TxRunner runs a function inside a datastore transaction. Operations that
// use the passed context join the transaction.
type TxRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// DiscountService handles discount code lifecycle, amount calculation, and
// concurrency-safe redemption.
type DiscountService struct {
	discounts    repository.DiscountRepository
	usages       repository.UsageRepository
	products     repository.ProductRepository
	availability *Availability
	locker       lock.Locker
	tx           TxRunner
	now          func() time.Time
}

// NewDiscountService creates a new discount service. tx may be nil, in which
// case hard deletes run without a surrounding transaction.
func NewDiscountService(
	discounts repository.DiscountRepository,
	usages repository.UsageRepository,
	products repository.ProductRepository,
	availability *Availability,
	locker lock.Locker,
	tx TxRunner,
) *DiscountService {
	return &DiscountService{
		discounts:    discounts,
		usages:       usages,
		products:     products,
		availability: availability,
		locker:       locker,
		tx:           tx,
		now:          time.Now,
	}
}

// Create validates and persists a new discount code for a shop (or a
// platform-wide admin voucher).
func (s *DiscountService) Create(ctx context.Context, req *model.CreateDiscountRequest) (*model.Discount, error) {
	now := s.now()

	if !req.StartDate.Before(req.EndDate) {
		return nil, apperrors.InvalidPayload("discount start date must be before end date")
	}
	if req.EndDate.Before(now) {
		return nil, apperrors.InvalidPayload("discount window has already ended")
	}
	if req.Type == model.DiscountTypePercentage && req.Value > 100 {
		return nil, apperrors.InvalidPayload("percentage value must not exceed 100")
	}

	var shopID primitive.ObjectID
	if !req.IsAdminVoucher {
		var err error
		shopID, err = primitive.ObjectIDFromHex(req.ShopID)
		if err != nil {
			return nil, apperrors.InvalidPayload("invalid shop id")
		}
	}

	productIDs, err := parseObjectIDs(req.ProductIDs)
	if err != nil {
		return nil, apperrors.InvalidPayload("invalid product id in scope")
	}
	if !req.ApplyToAll && len(productIDs) == 0 {
		return nil, apperrors.InvalidPayload("product scope is empty")
	}

	conflict, err := s.discounts.ExistsOverlapping(ctx, shopID, req.IsAdminVoucher, req.Code, req.StartDate, req.EndDate, primitive.NilObjectID)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, apperrors.Conflict("a discount with this code overlaps an existing window")
	}

	if len(productIDs) > 0 {
		if err := s.checkScope(ctx, productIDs, shopID, req.IsAdminVoucher); err != nil {
			return nil, err
		}
	}

	discount := &model.Discount{
		Code:           req.Code,
		Name:           req.Name,
		Description:    req.Description,
		ShopID:         shopID,
		IsAdminVoucher: req.IsAdminVoucher,
		Type:           req.Type,
		Value:          req.Value,
		MaxValue:       req.MaxValue,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		MaxUses:        req.MaxUses,
		UsedCount:      0,
		MinOrderCost:   req.MinOrderCost,
		ApplyToAll:     req.ApplyToAll,
		ProductIDs:     productIDs,
		IsAvailable:    true,
		IsPublished:    req.IsPublished,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.discounts.Create(ctx, discount); err != nil {
		return nil, err
	}
	return discount, nil
}

// Update applies a partial update on behalf of the owning shop. Changing the
// validity window is only allowed while the code has not gone live yet, and
// the new bounds must both lie strictly in the future; editing the window of
// an active code is rejected outright.
func (s *DiscountService) Update(ctx context.Context, idHex string, req *model.UpdateDiscountRequest) (*model.Discount, error) {
	id, err := primitive.ObjectIDFromHex(idHex)
	if err != nil {
		return nil, apperrors.InvalidPayload("invalid discount id")
	}
	shopID, err := primitive.ObjectIDFromHex(req.ShopID)
	if err != nil {
		return nil, apperrors.InvalidPayload("invalid shop id")
	}

	existing, err := s.discounts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.ShopID != shopID {
		return nil, apperrors.Forbidden("only the owning shop may update this discount")
	}

	now := s.now()
	newStart, newEnd := existing.StartDate, existing.EndDate
	if req.StartDate != nil {
		newStart = *req.StartDate
	}
	if req.EndDate != nil {
		newEnd = *req.EndDate
	}
	windowChanged := req.StartDate != nil || req.EndDate != nil
	if windowChanged {
		if !existing.StartDate.After(now) {
			return nil, apperrors.InvalidPayload("cannot change the window of a discount that has already started")
		}
		if !newStart.After(now) || !newEnd.After(now) {
			return nil, apperrors.InvalidPayload("discount window must lie in the future")
		}
		if !newStart.Before(newEnd) {
			return nil, apperrors.InvalidPayload("discount start date must be before end date")
		}
	}

	conflict, err := s.discounts.ExistsOverlapping(ctx, existing.ShopID, existing.IsAdminVoucher, existing.Code, newStart, newEnd, id)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, apperrors.Conflict("a discount with this code overlaps an existing window")
	}

	productIDs, err := parseObjectIDs(req.ProductIDs)
	if err != nil {
		return nil, apperrors.InvalidPayload("invalid product id in scope")
	}
	if len(productIDs) > 0 {
		if err := s.checkScope(ctx, productIDs, existing.ShopID, existing.IsAdminVoucher); err != nil {
			return nil, err
		}
	}

	var maxUses **int64
	if req.MaxUses != nil {
		var quota *int64
		if *req.MaxUses > 0 {
			if *req.MaxUses < existing.UsedCount {
				return nil, apperrors.InvalidPayload("max uses cannot be lower than the current use count")
			}
			quota = req.MaxUses
		}
		maxUses = &quota
	}

	patch := &model.DiscountPatch{
		Name:         req.Name,
		Description:  req.Description,
		Type:         req.Type,
		Value:        req.Value,
		MaxValue:     req.MaxValue,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		MaxUses:      maxUses,
		MinOrderCost: req.MinOrderCost,
		ApplyToAll:   req.ApplyToAll,
		ProductIDs:   productIDs,
		IsPublished:  req.IsPublished,
	}
	return s.discounts.Update(ctx, id, patch)
}

// ComputeAmount prices a cart against a code. Read-only: the usage counter is
// untouched, consumption happens only in Use.
func (s *DiscountService) ComputeAmount(ctx context.Context, req *model.ComputeAmountRequest) (*model.AmountQuote, error) {
	now := s.now()

	discount, err := s.discounts.FindByCode(ctx, req.Code)
	if err != nil {
		return nil, err
	}
	if !discount.IsAvailable || !discount.IsPublished || !discount.InWindow(now) {
		return nil, apperrors.NotFound("discount not found or invalid")
	}
	if !discount.HasQuotaHeadroom() {
		return nil, apperrors.BadRequest("discount is out of uses")
	}

	productIDs := make([]primitive.ObjectID, len(req.Lines))
	for i, line := range req.Lines {
		productIDs[i] = line.ProductID
	}
	products, err := s.products.FindByIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]*model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	var totalPrice, eligibleTotal int64
	for _, line := range req.Lines {
		p, ok := byID[line.ProductID]
		if !ok || !p.Sellable() {
			return nil, apperrors.BadRequest("cart contains an unpublished product")
		}
		lineTotal := p.Price * line.Quantity
		totalPrice += lineTotal
		if discount.AppliesTo(p.ID, p.ShopID) {
			eligibleTotal += lineTotal
		}
	}

	var totalDiscount int64
	if discount.MinOrderCost == 0 || eligibleTotal >= discount.MinOrderCost {
		totalDiscount = discount.AmountFor(eligibleTotal)
	}

	return &model.AmountQuote{
		TotalPrice:    totalPrice,
		TotalDiscount: totalDiscount,
		TotalPayment:  totalPrice - totalDiscount,
	}, nil
}

// Use consumes one use of a code for a user. The per-discount lock serializes
// the whole consume-and-record sequence across process instances, so a
// failed history write can be compensated before any fresh redemption of the
// same code proceeds. Callers never observe success unless the usage record
// was durably written.
func (s *DiscountService) Use(ctx context.Context, req *model.UseDiscountRequest) error {
	discountID, err := primitive.ObjectIDFromHex(req.DiscountID)
	if err != nil {
		return apperrors.InvalidPayload("invalid discount id")
	}

	guard, err := s.locker.Acquire(ctx, lockResourceDiscount, discountID.Hex())
	if err != nil {
		return apperrors.Internal("acquire discount lock", err)
	}
	defer func() {
		// released on a fresh context so a cancelled request cannot leak the lock
		_ = guard.Release(context.Background())
	}()

	discount, err := s.discounts.ConsumeUse(ctx, req.Code, s.now())
	if err != nil {
		return err
	}
	if discount.ID != discountID {
		// the consumed code belongs to a different discount than the one we
		// locked, so the increment happened outside its serialization; undo it
		_ = s.discounts.RollbackUse(ctx, discount.ID)
		return apperrors.BadRequest("discount code does not match discount id")
	}

	usage := &model.DiscountUsage{
		DiscountID: discount.ID,
		Code:       discount.Code,
		UserID:     req.UserID,
		ShopID:     discount.ShopID,
		UsedAt:     s.now(),
	}
	if err := s.usages.Create(ctx, usage); err != nil {
		// compensation: revert the increment, then cancel the code; both are
		// best-effort under the still-held lock
		_ = s.discounts.RollbackUse(ctx, discount.ID)
		_ = s.discounts.SetAvailability(ctx, discount.ID, false)
		return apperrors.BadRequest("check discount failed")
	}
	return nil
}

// Cancel soft-disables a code. Idempotent: cancelling an already-cancelled
// code succeeds.
func (s *DiscountService) Cancel(ctx context.Context, idHex string) error {
	id, err := primitive.ObjectIDFromHex(idHex)
	if err != nil {
		return apperrors.InvalidPayload("invalid discount id")
	}
	return s.discounts.SetAvailability(ctx, id, false)
}

// Delete hard-deletes a code on behalf of its owning shop, together with its
// usage records.
func (s *DiscountService) Delete(ctx context.Context, idHex, shopIDHex string) (bool, error) {
	id, err := primitive.ObjectIDFromHex(idHex)
	if err != nil {
		return false, apperrors.InvalidPayload("invalid discount id")
	}
	shopID, err := primitive.ObjectIDFromHex(shopIDHex)
	if err != nil {
		return false, apperrors.InvalidPayload("invalid shop id")
	}

	existing, err := s.discounts.FindByID(ctx, id)
	if err != nil {
		return false, err
	}
	if existing.ShopID != shopID {
		return false, apperrors.Forbidden("only the owning shop may delete this discount")
	}

	var deleted bool
	remove := func(ctx context.Context) error {
		var err error
		deleted, err = s.discounts.Delete(ctx, id)
		if err != nil {
			return err
		}
		_, err = s.usages.DeleteByDiscount(ctx, id)
		return err
	}

	if s.tx != nil {
		err = s.tx.WithTransaction(ctx, remove)
	} else {
		err = remove(ctx)
	}
	if err != nil {
		return false, err
	}
	return deleted, nil
}

// GetByID retrieves a single discount.
func (s *DiscountService) GetByID(ctx context.Context, idHex string) (*model.Discount, error) {
	id, err := primitive.ObjectIDFromHex(idHex)
	if err != nil {
		return nil, apperrors.InvalidPayload("invalid discount id")
	}
	return s.discounts.FindByID(ctx, id)
}

// ListByShop lists a shop's published discounts, newest first.
func (s *DiscountService) ListByShop(ctx context.Context, shopIDHex string, limit, skip int64) ([]*model.Discount, error) {
	shopID, err := primitive.ObjectIDFromHex(shopIDHex)
	if err != nil {
		return nil, apperrors.InvalidPayload("invalid shop id")
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.discounts.FindByShop(ctx, shopID, true, limit, skip)
}

// ListProducts returns the products a code currently applies to: the owning
// shop's live catalog for apply-all codes, the listed products otherwise.
func (s *DiscountService) ListProducts(ctx context.Context, idHex string) ([]*model.Product, error) {
	id, err := primitive.ObjectIDFromHex(idHex)
	if err != nil {
		return nil, apperrors.InvalidPayload("invalid discount id")
	}
	discount, err := s.discounts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if discount.ApplyToAll {
		if discount.IsAdminVoucher {
			return nil, apperrors.BadRequest("admin apply-all vouchers have no bounded product list")
		}
		return s.products.FindPublishedByShop(ctx, discount.ShopID)
	}
	return s.products.FindByIDs(ctx, discount.ProductIDs)
}

// checkScope validates an explicit product scope: admin vouchers only need
// the products live, shop vouchers additionally need ownership.
func (s *DiscountService) checkScope(ctx context.Context, productIDs []primitive.ObjectID, shopID primitive.ObjectID, isAdminVoucher bool) error {
	var ok bool
	var err error
	if isAdminVoucher {
		ok, err = s.availability.ArePublished(ctx, productIDs)
	} else {
		ok, err = s.availability.AreAvailable(ctx, productIDs, shopID)
	}
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.BadRequest("some products in scope are not available")
	}
	return nil
}

func parseObjectIDs(hexes []string) ([]primitive.ObjectID, error) {
	if hexes == nil {
		return nil, nil
	}
	ids := make([]primitive.ObjectID, len(hexes))
	for i, h := range hexes {
		id, err := primitive.ObjectIDFromHex(h)
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return ids, nil
}

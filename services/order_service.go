package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/anjiri1684/fitness_marketplace/apperrors"
	"github.com/anjiri1684/fitness_marketplace/models"
	"github.com/anjiri1684/fitness_marketplace/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderLine struct {
	Kind     models.ItemKind
	RefID    uuid.UUID
	Quantity int
}

type OrderService struct {
	Deps
}

func NewOrderService(d Deps) *OrderService {
	return &OrderService{Deps: d.withDefaults()}
}

// CreateOrder prices each line from the catalog and stores a pending order.
// The commission rate is frozen on the order at creation time.
func (s *OrderService) CreateOrder(ctx context.Context, actor models.ActorContext, lines []OrderLine, couponCode string) (*models.Order, error) {
	if actor.Role != models.RoleCustomer {
		return nil, apperrors.Forbidden("only customers can place orders")
	}
	if len(lines) == 0 {
		return nil, apperrors.DataValidationFailed("an order needs at least one item")
	}

	order := &models.Order{
		CustomerID:     actor.UserID,
		CommissionRate: s.Configs.Decimal(ctx, ConfigCommissionRate, DefaultCommissionRate),
		Status:         models.OrderStatusPending,
	}
	if order.CommissionRate.IsNegative() || order.CommissionRate.GreaterThan(decimal.NewFromInt(1)) {
		return nil, apperrors.DataValidationFailed("commission rate %s is outside [0, 1]", order.CommissionRate)
	}

	err := s.Store.WithTransaction(ctx, func(ctx context.Context) error {
		var priced []pricedLine
		subTotal := decimal.Zero
		for _, l := range lines {
			p, err := s.priceLine(ctx, l)
			if err != nil {
				return err
			}
			subTotal = subTotal.Add(p.subTotal())
			priced = append(priced, p)
		}

		discount := decimal.Zero
		if couponCode != "" {
			coupon, err := s.Store.Catalog().GetCouponByCode(ctx, couponCode)
			if errors.Is(err, repository.ErrNotFound) {
				return apperrors.NotFound("coupon %s not found", couponCode)
			}
			if err != nil {
				return err
			}
			if coupon.ExpiresAt != nil && coupon.ExpiresAt.Before(s.Now()) {
				return apperrors.Business("coupon %s has expired", couponCode)
			}
			discount, err = orderDiscount(coupon, priced, subTotal)
			if err != nil {
				return err
			}
			order.CouponID = &coupon.ID
		}
		order.TotalAmount = subTotal.Sub(discount)
		for _, p := range priced {
			order.Items = append(order.Items, p.item)
		}

		return s.Store.Orders().Create(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	return s.Store.Orders().GetByID(ctx, order.ID)
}

type pricedLine struct {
	item models.OrderItem
	// merchantID is nil for products.
	merchantID *uuid.UUID
}

func (p pricedLine) subTotal() decimal.Decimal {
	return p.item.Price.Mul(decimal.NewFromInt(int64(p.item.Quantity)))
}

// orderDiscount is what the customer saves. A merchant-funded coupon only
// applies to lines sold by its creator and is capped per line, matching the
// discount CalculateMerchantProfit takes out of each line's profit. A system
// coupon is capped once for the whole order.
func orderDiscount(coupon *models.Coupon, lines []pricedLine, subTotal decimal.Decimal) (decimal.Decimal, error) {
	if !coupon.IsMerchantFunded() {
		return CouponDiscount(subTotal, coupon), nil
	}
	discount := decimal.Zero
	for _, l := range lines {
		if coupon.CreatorID == nil || l.merchantID == nil || *l.merchantID != *coupon.CreatorID {
			return decimal.Zero, apperrors.Business("coupon %s only applies to courses and packages sold by its issuer", coupon.Code)
		}
		discount = discount.Add(CouponDiscount(l.subTotal(), coupon))
	}
	return discount, nil
}

func (s *OrderService) priceLine(ctx context.Context, l OrderLine) (pricedLine, error) {
	if l.Quantity <= 0 {
		return pricedLine{}, apperrors.DataValidationFailed("quantity must be positive")
	}
	p := pricedLine{item: models.OrderItem{Quantity: l.Quantity}}
	id := l.RefID

	switch l.Kind {
	case models.ItemKindGymCourse:
		course, err := s.Store.Catalog().GetGymCourse(ctx, id)
		if errors.Is(err, repository.ErrNotFound) || (err == nil && !course.IsActive) {
			return pricedLine{}, apperrors.NotFound("gym course %s not found", id)
		}
		if err != nil {
			return pricedLine{}, err
		}
		if course.Gym == nil {
			return pricedLine{}, fmt.Errorf("gym of course %s not loaded", id)
		}
		p.item.Price = course.Price
		p.item.GymCourseID = &id
		p.merchantID = &course.Gym.OwnerID
	case models.ItemKindFreelancePTPackage:
		pkg, err := s.Store.Catalog().GetPTPackage(ctx, id)
		if errors.Is(err, repository.ErrNotFound) || (err == nil && !pkg.IsActive) {
			return pricedLine{}, apperrors.NotFound("trainer package %s not found", id)
		}
		if err != nil {
			return pricedLine{}, err
		}
		p.item.Price = pkg.Price
		p.item.FreelancePTPackageID = &id
		p.merchantID = &pkg.PTID
	case models.ItemKindProduct:
		product, err := s.Store.Catalog().GetProduct(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return pricedLine{}, apperrors.NotFound("product %s not found", id)
		}
		if err != nil {
			return pricedLine{}, err
		}
		if product.Stock < l.Quantity {
			return pricedLine{}, apperrors.Business("product %s has only %d left in stock", id, product.Stock)
		}
		p.item.Price = product.Price
		p.item.ProductID = &id
	default:
		return pricedLine{}, apperrors.DataValidationFailed("unknown item kind %q", l.Kind)
	}

	if p.item.Price.IsNegative() {
		return pricedLine{}, apperrors.DataValidationFailed("price of %s %s is negative", l.Kind, id)
	}
	return p, nil
}

func (s *OrderService) GetOrder(ctx context.Context, actor models.ActorContext, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.Store.Orders().GetByID(ctx, orderID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("order %s not found", orderID)
	}
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && order.CustomerID != actor.UserID {
		return nil, apperrors.Forbidden("order %s belongs to another customer", orderID)
	}
	return order, nil
}

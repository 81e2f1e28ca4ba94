package services

import (
	"testing"
	"time"

	"github.com/anjiri1684/fitness_marketplace/apperrors"
	"github.com/anjiri1684/fitness_marketplace/models"
	"github.com/google/uuid"
)

func (f *fixture) coupon(t *testing.T, code string, typ models.CouponType, creator *uuid.UUID) models.Coupon {
	t.Helper()
	c := models.Coupon{
		Code:            code,
		DiscountPercent: dec("10"),
		MaxDiscount:     dec("50000"),
		Type:            typ,
		CreatorID:       creator,
	}
	must(t, f.store.Catalog().CreateCoupon(f.ctx, &c))
	return c
}

func TestCreateOrderPricesFromCatalog(t *testing.T) {
	f := newFixture(t)
	coupon := f.coupon(t, "SYS10", models.CouponTypeSystem, nil)

	o := f.order(t, "SYS10", f.courseLine(1), f.productLine(1))
	if o.Status != models.OrderStatusPending || o.CustomerID != f.customer.UserID {
		t.Fatalf("order = %+v", o)
	}
	assertDecimal(t, "commission rate", o.CommissionRate, "0.15")
	// 620000 subtotal, discount capped at 50000 for the whole order
	assertDecimal(t, "total", o.TotalAmount, "570000")
	if o.CouponID == nil || *o.CouponID != coupon.ID {
		t.Fatal("coupon not attached")
	}
	if len(o.Items) != 2 {
		t.Fatalf("%d items, want 2", len(o.Items))
	}
}

func TestMerchantCouponOnlyAppliesToIssuerLines(t *testing.T) {
	f := newFixture(t)
	f.coupon(t, "GYM10", models.CouponTypeGymOwner, &f.gymOwner.UserID)
	f.coupon(t, "ORPHAN", models.CouponTypeFreelancePT, nil)

	for name, tc := range map[string]struct {
		code  string
		lines []OrderLine
	}{
		"other merchant's package":    {"GYM10", []OrderLine{f.packageLine(1)}},
		"mixed with another merchant": {"GYM10", []OrderLine{f.courseLine(1), f.packageLine(1)}},
		"platform product":            {"GYM10", []OrderLine{f.productLine(1)}},
		"coupon without creator":      {"ORPHAN", []OrderLine{f.packageLine(1)}},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := f.orders.CreateOrder(f.ctx, f.customer, tc.lines, tc.code)
			if !apperrors.Is(err, apperrors.KindBusiness) {
				t.Fatalf("err = %v, want business error", err)
			}
		})
	}

	// Nothing was credited to the trainer through a coupon they never issued.
	f.paidOrder(t, f.packageLine(1))
	assertDecimal(t, "trainer pending balance", f.wallet(t, f.trainer).PendingBalance, "425000")
}

func TestMerchantCouponDiscountMatchesProfitPerLine(t *testing.T) {
	f := newFixture(t)
	f.coupon(t, "GYM10", models.CouponTypeGymOwner, &f.gymOwner.UserID)

	// Two lines of 500000, each capped at 50000.
	o := f.order(t, "GYM10", f.courseLine(1), f.courseLine(1))
	assertDecimal(t, "total", o.TotalAmount, "900000")

	if _, err := f.settlement.ConfirmOrderPayment(f.ctx, o.ID); err != nil {
		t.Fatal(err)
	}
	// (500000 - 50000) * 0.85 per line
	assertDecimal(t, "pending balance", f.wallet(t, f.gymOwner).PendingBalance, "765000")
	// The customer saved exactly what the merchant gave up before commission.
	absorbed := dec("1000000").Mul(dec("0.85")).Sub(dec("765000"))
	assertDecimal(t, "merchant-funded discount after commission", absorbed, "85000")
}

func TestCreateOrderUsesConfiguredCommission(t *testing.T) {
	f := newFixture(t)
	must(t, f.configs.Upsert(f.ctx, &models.SystemConfiguration{
		Key: ConfigCommissionRate, Value: "0.20", DataType: models.ConfigDataTypeDecimal,
	}))
	o := f.paidOrder(t, f.courseLine(1))
	assertDecimal(t, "commission rate", o.CommissionRate, "0.20")
	assertDecimal(t, "pending balance", f.wallet(t, f.gymOwner).PendingBalance, "400000")
}

func TestCreateOrderValidation(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		name  string
		actor models.ActorContext
		lines []OrderLine
		code  string
		kind  apperrors.Kind
	}{
		{"merchant cannot order", f.gymOwner, []OrderLine{f.courseLine(1)}, "", apperrors.KindForbidden},
		{"empty order", f.customer, nil, "", apperrors.KindDataValidationFailed},
		{"zero quantity", f.customer, []OrderLine{f.courseLine(0)}, "", apperrors.KindDataValidationFailed},
		{"negative quantity", f.customer, []OrderLine{f.packageLine(-2)}, "", apperrors.KindDataValidationFailed},
		{"unknown kind", f.customer, []OrderLine{{Kind: "voucher", RefID: uuid.New(), Quantity: 1}}, "", apperrors.KindDataValidationFailed},
		{"unknown course", f.customer, []OrderLine{{Kind: models.ItemKindGymCourse, RefID: uuid.New(), Quantity: 1}}, "", apperrors.KindNotFound},
		{"out of stock", f.customer, []OrderLine{f.productLine(51)}, "", apperrors.KindBusiness},
		{"unknown coupon", f.customer, []OrderLine{f.courseLine(1)}, "NOPE", apperrors.KindNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.orders.CreateOrder(f.ctx, tc.actor, tc.lines, tc.code)
			if !apperrors.Is(err, tc.kind) {
				t.Fatalf("err = %v, want kind %d", err, tc.kind)
			}
		})
	}
}

func TestCreateOrderRejectsNegativePrice(t *testing.T) {
	f := newFixture(t)
	broken := models.Product{Name: "Broken", Price: dec("-10"), Stock: 5}
	must(t, f.store.Catalog().CreateProduct(f.ctx, &broken))

	_, err := f.orders.CreateOrder(f.ctx, f.customer, []OrderLine{{Kind: models.ItemKindProduct, RefID: broken.ID, Quantity: 1}}, "")
	if !apperrors.Is(err, apperrors.KindDataValidationFailed) {
		t.Fatalf("err = %v", err)
	}
}

func TestCreateOrderRejectsExpiredCoupon(t *testing.T) {
	f := newFixture(t)
	expired := f.now.Add(-time.Hour)
	must(t, f.store.Catalog().CreateCoupon(f.ctx, &models.Coupon{
		Code: "OLD", DiscountPercent: dec("5"), MaxDiscount: dec("1000"), Type: models.CouponTypeSystem, ExpiresAt: &expired,
	}))
	_, err := f.orders.CreateOrder(f.ctx, f.customer, []OrderLine{f.courseLine(1)}, "OLD")
	if !apperrors.Is(err, apperrors.KindBusiness) {
		t.Fatalf("err = %v", err)
	}
}

func TestGetOrderOwnership(t *testing.T) {
	f := newFixture(t)
	o := f.order(t, "", f.courseLine(1))
	other := f.user(t, models.RoleCustomer)

	if _, err := f.orders.GetOrder(f.ctx, other, o.ID); !apperrors.Is(err, apperrors.KindForbidden) {
		t.Fatalf("other customer err = %v", err)
	}
	if _, err := f.orders.GetOrder(f.ctx, f.admin, o.ID); err != nil {
		t.Fatalf("admin read: %v", err)
	}
	if _, err := f.orders.GetOrder(f.ctx, f.customer, uuid.New()); !apperrors.Is(err, apperrors.KindNotFound) {
		t.Fatalf("unknown order err = %v", err)
	}
}

func TestPaymentTakesProductStock(t *testing.T) {
	f := newFixture(t)

	first := f.order(t, "", f.productLine(30))
	second := f.order(t, "", f.productLine(30))

	if _, err := f.settlement.ConfirmOrderPayment(f.ctx, first.ID); err != nil {
		t.Fatal(err)
	}
	p, err := f.store.Catalog().GetProduct(f.ctx, f.product.ID)
	if err != nil {
		t.Fatal(err)
	}
	if p.Stock != 20 {
		t.Fatalf("stock = %d, want 20", p.Stock)
	}

	// Both orders fit the stock when created, only one can be paid.
	if _, err := f.settlement.ConfirmOrderPayment(f.ctx, second.ID); !apperrors.Is(err, apperrors.KindBusiness) {
		t.Fatalf("overselling err = %v", err)
	}
	p, _ = f.store.Catalog().GetProduct(f.ctx, f.product.ID)
	if p.Stock != 20 {
		t.Fatalf("stock after rejected payment = %d, want 20", p.Stock)
	}
	unpaid, err := f.store.Orders().GetByID(f.ctx, second.ID)
	if err != nil {
		t.Fatal(err)
	}
	if unpaid.Status != models.OrderStatusPending {
		t.Fatalf("rejected order status = %s", unpaid.Status)
	}

	if _, err := f.orders.CreateOrder(f.ctx, f.customer, []OrderLine{f.productLine(21)}, ""); !apperrors.Is(err, apperrors.KindBusiness) {
		t.Fatalf("order above remaining stock err = %v", err)
	}
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusCancelled OrderStatus = "cancelled"
)

type Order struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CustomerID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"customer_id"`
	CommissionRate decimal.Decimal `gorm:"type:numeric(5,4);not null" json:"commission_rate"`
	CouponID       *uuid.UUID      `gorm:"type:uuid" json:"coupon_id,omitempty"`
	TotalAmount    decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"total_amount"`
	Status         OrderStatus     `gorm:"size:20;not null;default:'pending'" json:"status"`
	PaidAt         *time.Time      `json:"paid_at,omitempty"`

	Coupon *Coupon     `gorm:"foreignkey:CouponID" json:"coupon,omitempty"`
	Items  []OrderItem `gorm:"foreignkey:OrderID" json:"items,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ItemKind is the closed set of things an order line can buy.
type ItemKind string

const (
	ItemKindGymCourse          ItemKind = "gym_course"
	ItemKindFreelancePTPackage ItemKind = "freelance_pt_package"
	ItemKindProduct            ItemKind = "product"
)

type OrderItem struct {
	ID                   uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	OrderID              uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	Price                decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"price"`
	Quantity             int             `gorm:"not null" json:"quantity"`
	GymCourseID          *uuid.UUID      `gorm:"type:uuid" json:"gym_course_id,omitempty"`
	FreelancePTPackageID *uuid.UUID      `gorm:"type:uuid" json:"freelance_pt_package_id,omitempty"`
	ProductID            *uuid.UUID      `gorm:"type:uuid" json:"product_id,omitempty"`
	IsRefunded           bool            `gorm:"default:false" json:"is_refunded"`
	IsFeedback           bool            `gorm:"default:false" json:"is_feedback"`

	ProfitDistributePlannedDate *time.Time `gorm:"index" json:"profit_distribute_planned_date,omitempty"`
	ProfitDistributeActualDate  *time.Time `json:"profit_distribute_actual_date,omitempty"`

	Order              *Order              `gorm:"foreignkey:OrderID" json:"-"`
	GymCourse          *GymCourse          `gorm:"foreignkey:GymCourseID" json:"gym_course,omitempty"`
	FreelancePTPackage *FreelancePTPackage `gorm:"foreignkey:FreelancePTPackageID" json:"freelance_pt_package,omitempty"`
	Product            *Product            `gorm:"foreignkey:ProductID" json:"product,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (i *OrderItem) Kind() ItemKind {
	switch {
	case i.GymCourseID != nil:
		return ItemKindGymCourse
	case i.FreelancePTPackageID != nil:
		return ItemKindFreelancePTPackage
	default:
		return ItemKindProduct
	}
}

func (i *OrderItem) IsService() bool {
	return i.Kind() != ItemKindProduct
}

func (i *OrderItem) IsDistributed() bool {
	return i.ProfitDistributeActualDate != nil
}

// MerchantID returns the seller whose wallet receives the profit for this
// line. Products and lines whose catalog entry was not loaded report false.
func (i *OrderItem) MerchantID() (uuid.UUID, bool) {
	switch i.Kind() {
	case ItemKindGymCourse:
		if i.GymCourse == nil || i.GymCourse.Gym == nil {
			return uuid.Nil, false
		}
		return i.GymCourse.Gym.OwnerID, true
	case ItemKindFreelancePTPackage:
		if i.FreelancePTPackage == nil {
			return uuid.Nil, false
		}
		return i.FreelancePTPackage.PTID, true
	}
	return uuid.Nil, false
}

func (i *OrderItem) NumberOfSessions() int {
	switch i.Kind() {
	case ItemKindGymCourse:
		if i.GymCourse != nil {
			return i.GymCourse.NumberOfSessions * i.Quantity
		}
	case ItemKindFreelancePTPackage:
		if i.FreelancePTPackage != nil {
			return i.FreelancePTPackage.NumberOfSessions * i.Quantity
		}
	}
	return 0
}

type PurchaseStatus string

const (
	PurchaseStatusActive    PurchaseStatus = "active"
	PurchaseStatusCompleted PurchaseStatus = "completed"
)

// CustomerPurchased tracks the sessions a customer still has left on a
// purchased course or package.
type CustomerPurchased struct {
	ID                uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CustomerID        uuid.UUID      `gorm:"type:uuid;not null;index" json:"customer_id"`
	OrderItemID       uuid.UUID      `gorm:"type:uuid;not null;unique" json:"order_item_id"`
	SessionsTotal     int            `gorm:"not null" json:"sessions_total"`
	SessionsRemaining int            `gorm:"not null" json:"sessions_remaining"`
	Status            PurchaseStatus `gorm:"size:20;not null;default:'active'" json:"status"`
	CompletedAt       *time.Time     `json:"completed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CouponType string

const (
	// CouponTypeSystem is funded by the platform and never reduces merchant profit.
	CouponTypeSystem      CouponType = "system"
	CouponTypeGymOwner    CouponType = "gym_owner"
	CouponTypeFreelancePT CouponType = "freelance_pt"
)

type Coupon struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Code            string          `gorm:"size:50;not null;unique" json:"code"`
	DiscountPercent decimal.Decimal `gorm:"type:numeric(5,2);not null" json:"discount_percent"`
	MaxDiscount     decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"max_discount"`
	Type            CouponType      `gorm:"size:20;not null;default:'system'" json:"type"`
	CreatorID       *uuid.UUID      `gorm:"type:uuid" json:"creator_id,omitempty"`
	ExpiresAt       *time.Time      `json:"expires_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Coupon) IsMerchantFunded() bool {
	return c != nil && c.Type != CouponTypeSystem
}

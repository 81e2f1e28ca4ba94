package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Gym struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	OwnerID uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`
	Name    string    `gorm:"size:255;not null" json:"name"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type GymCourse struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	GymID            uuid.UUID       `gorm:"type:uuid;not null;index" json:"gym_id"`
	Name             string          `gorm:"size:255;not null" json:"name"`
	Price            decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"price"`
	NumberOfSessions int             `gorm:"not null;default:1" json:"number_of_sessions"`
	IsActive         bool            `gorm:"default:true" json:"is_active"`

	Gym *Gym `gorm:"foreignkey:GymID" json:"gym,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type FreelancePTPackage struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	PTID             uuid.UUID       `gorm:"type:uuid;not null;index" json:"pt_id"`
	Name             string          `gorm:"size:255;not null" json:"name"`
	Price            decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"price"`
	NumberOfSessions int             `gorm:"not null;default:1" json:"number_of_sessions"`
	IsActive         bool            `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Product is a physical good sold by the platform itself, so it has no
// merchant wallet behind it.
type Product struct {
	ID    uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name  string          `gorm:"size:255;not null" json:"name"`
	Price decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"price"`
	Stock int             `gorm:"not null;default:0" json:"stock"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

package models

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleCustomer    Role = "customer"
	RoleGymOwner    Role = "gym_owner"
	RoleFreelancePT Role = "freelance_pt"
	RoleAdmin       Role = "admin"
)

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	FullName string    `gorm:"size:255;not null" json:"full_name"`
	Email    string    `gorm:"size:255;not null;unique" json:"email"`
	Role     Role      `gorm:"size:20;not null;default:'customer'" json:"role"`
	IsActive bool      `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ActorContext identifies the caller of a service operation. Handlers build it
// from the verified token and pass it down explicitly.
type ActorContext struct {
	UserID uuid.UUID
	Role   Role
}

func (a ActorContext) IsAdmin() bool { return a.Role == RoleAdmin }

func (a ActorContext) IsMerchant() bool {
	return a.Role == RoleGymOwner || a.Role == RoleFreelancePT
}

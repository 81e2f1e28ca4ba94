package models

import (
	"time"

	"github.com/google/uuid"
)

type ReportStatus string

const (
	ReportStatusPending   ReportStatus = "pending"
	ReportStatusConfirmed ReportStatus = "confirmed"
	ReportStatusRejected  ReportStatus = "rejected"
)

// Report is a customer's fraud complaint against a purchased order item.
type Report struct {
	ID             uuid.UUID    `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ReporterID     uuid.UUID    `gorm:"type:uuid;not null;index" json:"reporter_id"`
	ReportedUserID *uuid.UUID   `gorm:"type:uuid" json:"reported_user_id,omitempty"`
	OrderItemID    uuid.UUID    `gorm:"type:uuid;not null;index" json:"order_item_id"`
	Reason         string       `gorm:"type:text;not null" json:"reason"`
	Status         ReportStatus `gorm:"size:20;not null;default:'pending'" json:"status"`
	ResolvedBy     *uuid.UUID   `gorm:"type:uuid" json:"resolved_by,omitempty"`
	ResolutionNote *string      `gorm:"type:text" json:"resolution_note,omitempty"`
	ResolvedAt     *time.Time   `json:"resolved_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

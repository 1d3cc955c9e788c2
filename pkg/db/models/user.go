package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/numdinkushi/vunalet-backend/pkg/enums"
	"github.com/numdinkushi/vunalet-backend/pkg/types"
)

// User represents the canonical identity entity: buyers, farmers, and
// dispatchers share one table and are told apart by role.
type User struct {
	ID                 uuid.UUID                `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email              string                   `gorm:"type:text;not null;uniqueIndex"`
	FirstName          string                   `gorm:"column:first_name;not null"`
	LastName           string                   `gorm:"column:last_name;not null"`
	Phone              *string                  `gorm:"column:phone"`
	Role               enums.UserRole           `gorm:"column:role;type:user_role;not null"`
	VerificationStatus enums.VerificationStatus `gorm:"column:verification_status;type:verification_status;not null;default:'pending'"`
	// Location is free text entered by the user; Coordinates stays nil until
	// a geocoding pipeline exists.
	Location       *string            `gorm:"column:location"`
	Coordinates    *types.Coordinates `gorm:"column:coordinates;type:jsonb"`
	CustomerRating *float64           `gorm:"column:customer_rating"`
	IsActive       bool               `gorm:"column:is_active;not null;default:true"`
	LastActiveAt   *time.Time         `gorm:"column:last_active_at"`
	CreatedAt      time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/numdinkushi/vunalet-backend/pkg/enums"
	"github.com/numdinkushi/vunalet-backend/pkg/types"
)

// Notification stores fire-and-forget messages to dispatchers and the
// operations channel. The assignment engine only ever appends these.
type Notification struct {
	ID        uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID              `gorm:"type:uuid;not null"`
	Type      enums.NotificationType `gorm:"type:notification_type;not null"`
	Title     string                 `gorm:"type:text;not null"`
	Message   string                 `gorm:"type:text;not null"`
	Metadata  types.JSONMap          `gorm:"column:metadata;type:jsonb"`
	IsRead    bool                   `gorm:"column:is_read;not null;default:false"`
	CreatedAt time.Time              `gorm:"type:timestamptz;default:now()"`
}

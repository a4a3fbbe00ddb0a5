package model

import (
	"time"

	"github.com/google/uuid"
)

type Notification struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	AccountID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	Type        string     `gorm:"type:varchar(40);not null"`
	Message     string     `gorm:"not null"`
	Description string
	ReferenceID *uuid.UUID `gorm:"type:uuid"`
	IsRead      bool       `gorm:"not null;default:false"`
	CreatedAt   time.Time
}

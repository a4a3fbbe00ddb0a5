package model

import (
	"time"

	"github.com/google/uuid"
)

// GuestCustomerID identifies anonymous sales. The guest never earns or redeems points.
var GuestCustomerID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

type Customer struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Code          string    `gorm:"uniqueIndex;not null"`
	Name          string    `gorm:"not null"`
	Phone         *string   `gorm:"uniqueIndex"`
	LoyaltyPoints int       `gorm:"not null;default:0;check:chk_customers_loyalty_points,loyalty_points >= 0"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (c *Customer) IsGuest() bool { return c.ID == GuestCustomerID }

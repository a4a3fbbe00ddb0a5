package model

import (
	"time"

	"github.com/google/uuid"
)

// Capabilities checked at the request boundary and used to pick notification targets.
const (
	PermPurchaseOrderManage  = "purchase_order.manage"
	PermPurchaseOrderApprove = "purchase_order.approve"
	PermInventoryManage      = "inventory.manage"
	PermOrderSell            = "order.sell"
	PermOrderCancel          = "order.cancel"
)

// Account is staff reference data. Credentials live with the identity provider.
type Account struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username  string    `gorm:"uniqueIndex;not null"`
	FullName  string    `gorm:"not null"`
	Email     *string
	Role      string `gorm:"type:varchar(30);not null"`
	Active    bool   `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Permissions []AccountPermission `gorm:"foreignKey:AccountID"`
}

type AccountPermission struct {
	AccountID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	Permission string    `gorm:"type:varchar(50);primaryKey"`
}

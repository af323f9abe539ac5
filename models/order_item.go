package models

import "time"

type ItemStatus string

const (
	ItemPending   ItemStatus = "pending"
	ItemPreparing ItemStatus = "preparing"
	ItemReady     ItemStatus = "ready"
)

// OrderItem is one ordered product. UnitPrice is captured from the menu at
// order time and never changes afterwards, so later menu edits cannot
// silently reprice an open order.
type OrderItem struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	OrderID   uint         `gorm:"not null;index" json:"order_id"`
	Order     Order        `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	MenuID    uint         `gorm:"not null" json:"menu_id"`
	Menu      Menu         `gorm:"foreignKey:MenuID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"menu"`
	Quantity  int          `gorm:"not null" json:"quantity"`
	UnitPrice float64      `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	Category  MenuCategory `gorm:"type:varchar(20);not null" json:"category"`
	Status    ItemStatus   `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CreatedAt time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null" json:"updated_at"`
}

func (i *OrderItem) Sector() Sector {
	return i.Category.Sector()
}

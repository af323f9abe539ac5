package models

import (
	"time"

	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPlaced    OrderStatus = "placed"
	OrderConfirmed OrderStatus = "confirmed"
	OrderPreparing OrderStatus = "preparing"
	OrderReady     OrderStatus = "ready"
	OrderDelivered OrderStatus = "delivered"
	OrderPaid      OrderStatus = "paid"
)

// ActiveOrderStatuses are the states in which an order still binds its
// customer (and, for dine-in, its table). Everything short of paid.
var ActiveOrderStatuses = []OrderStatus{
	OrderPending, OrderPlaced, OrderConfirmed, OrderPreparing, OrderReady, OrderDelivered,
}

type Channel string

const (
	ChannelDineIn   Channel = "dine_in"
	ChannelDelivery Channel = "delivery"
)

type Order struct {
	ID              uint               `gorm:"primaryKey" json:"id"`
	TableID         *uint              `gorm:"index" json:"table_id,omitempty"`
	Table           *Table             `gorm:"foreignKey:TableID" json:"table,omitempty"`
	CustomerID      *uint              `gorm:"index" json:"customer_id,omitempty"`
	AnonymousID     *uint              `gorm:"index" json:"anonymous_id,omitempty"`
	Customer        *Customer          `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Anonymous       *AnonymousCustomer `gorm:"foreignKey:AnonymousID" json:"anonymous,omitempty"`
	Channel         Channel            `gorm:"type:varchar(20);not null;default:'dine_in'" json:"channel"`
	Status          OrderStatus        `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Subtotal        float64            `gorm:"type:decimal(10,2);not null;default:0" json:"subtotal"`
	Discount        float64            `gorm:"type:decimal(10,2);not null;default:0" json:"discount"`
	Tip             float64            `gorm:"type:decimal(10,2);not null;default:0" json:"tip"`
	Total           float64            `gorm:"type:decimal(10,2);not null;default:0" json:"total"`
	ShippingAddress string             `gorm:"type:varchar(255)" json:"shipping_address,omitempty"`
	Items           []OrderItem        `gorm:"foreignKey:OrderID" json:"items"`
	CreatedAt       time.Time          `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time          `gorm:"not null" json:"updated_at"`
}

func (o *Order) CustomerRef() CustomerRef { return refOf(o.CustomerID, o.AnonymousID) }

func (o *Order) SetCustomerRef(ref CustomerRef) error {
	cid, aid, err := refColumns(ref)
	if err != nil {
		return err
	}
	o.CustomerID, o.AnonymousID = cid, aid
	return nil
}

// ComputeTotal recomputes the subtotal from line items and the clamped
// total: max(0, subtotal - discount + tip).
func (o *Order) ComputeTotal() {
	if len(o.Items) > 0 {
		var sub float64
		for _, it := range o.Items {
			sub += float64(it.Quantity) * it.UnitPrice
		}
		o.Subtotal = sub
	}
	total := o.Subtotal - o.Discount + o.Tip
	if total < 0 {
		total = 0
	}
	o.Total = total
}

func (o *Order) BeforeSave(*gorm.DB) error {
	return validateRef(o.CustomerID, o.AnonymousID)
}

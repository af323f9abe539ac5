package models

import "time"

type RecipientKind string

const (
	RecipientUser      RecipientKind = "user"
	RecipientCustomer  RecipientKind = "customer"
	RecipientAnonymous RecipientKind = "anonymous"
)

// Notification types emitted by the transition engine.
const (
	NotifOrderPlaced    = "order_placed"
	NotifOrderModified  = "order_modified"
	NotifOrderConfirmed = "order_confirmed"
	NotifOrderRejected  = "order_rejected"
	NotifOrderPreparing = "order_preparing"
	NotifItemReady      = "item_ready"
	NotifOrderReady     = "order_ready"
	NotifOrderDelivered = "order_delivered"
	NotifBillRequested  = "bill_requested"
	NotifOrderPaid      = "order_paid"
	NotifTableAssigned  = "table_assigned"
	NotifTableReleased  = "table_released"
	NotifDeliveryOrder  = "new_delivery_order"
	NotifReservation    = "reservation_update"
)

type Notification struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	RecipientKind RecipientKind `gorm:"type:varchar(20);not null;index:idx_recipient" json:"recipient_kind"`
	RecipientID   uint          `gorm:"not null;index:idx_recipient" json:"recipient_id"`
	Type          string        `gorm:"type:varchar(40);not null" json:"type"`
	Title         string        `gorm:"type:varchar(100);not null" json:"title"`
	Message       string        `gorm:"type:text;not null" json:"message"`
	Payload       string        `gorm:"type:text" json:"payload,omitempty"`
	Read          bool          `gorm:"not null;default:false;index" json:"read"`
	CreatedAt     time.Time     `gorm:"not null" json:"created_at"`
}

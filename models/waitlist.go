package models

import (
	"time"

	"gorm.io/gorm"
)

type WaitlistStatus string

const (
	WaitlistWaiting  WaitlistStatus = "waiting"
	WaitlistAttended WaitlistStatus = "attended"
)

type WaitlistEntry struct {
	ID          uint               `gorm:"primaryKey" json:"id"`
	CustomerID  *uint              `gorm:"index" json:"customer_id,omitempty"`
	AnonymousID *uint              `gorm:"index" json:"anonymous_id,omitempty"`
	Customer    *Customer          `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Anonymous   *AnonymousCustomer `gorm:"foreignKey:AnonymousID" json:"anonymous,omitempty"`
	Status      WaitlistStatus     `gorm:"type:varchar(20);not null;default:'waiting';index" json:"status"`
	JoinedAt    time.Time          `gorm:"not null" json:"joined_at"`
	CreatedAt   time.Time          `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time          `gorm:"not null" json:"updated_at"`
}

func (w *WaitlistEntry) CustomerRef() CustomerRef { return refOf(w.CustomerID, w.AnonymousID) }

func (w *WaitlistEntry) SetCustomerRef(ref CustomerRef) error {
	cid, aid, err := refColumns(ref)
	if err != nil {
		return err
	}
	w.CustomerID, w.AnonymousID = cid, aid
	return nil
}

func (w *WaitlistEntry) BeforeSave(*gorm.DB) error {
	return validateRef(w.CustomerID, w.AnonymousID)
}

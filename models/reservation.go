package models

import (
	"time"

	"gorm.io/gorm"
)

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationCancelled ReservationStatus = "cancelled"
	ReservationRejected  ReservationStatus = "rejected"
	ReservationExpired   ReservationStatus = "expired"
)

// ReservationTolerance is how long past the requested time a reservation is
// held before it expires.
const ReservationTolerance = 45 * time.Minute

type Reservation struct {
	ID          uint               `gorm:"primaryKey" json:"id"`
	CustomerID  *uint              `gorm:"index" json:"customer_id,omitempty"`
	AnonymousID *uint              `gorm:"index" json:"anonymous_id,omitempty"`
	Customer    *Customer          `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Anonymous   *AnonymousCustomer `gorm:"foreignKey:AnonymousID" json:"anonymous,omitempty"`
	RequestedAt time.Time          `gorm:"not null;index" json:"requested_at"`
	PartySize   int                `gorm:"not null" json:"party_size"`
	Status      ReservationStatus  `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Reason      string             `gorm:"type:varchar(255)" json:"reason,omitempty"`
	CreatedAt   time.Time          `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time          `gorm:"not null" json:"updated_at"`
}

func (r *Reservation) CustomerRef() CustomerRef { return refOf(r.CustomerID, r.AnonymousID) }

func (r *Reservation) SetCustomerRef(ref CustomerRef) error {
	cid, aid, err := refColumns(ref)
	if err != nil {
		return err
	}
	r.CustomerID, r.AnonymousID = cid, aid
	return nil
}

// ExpiredBy reports whether the reservation ran past its hold window at the
// given instant.
func (r *Reservation) ExpiredBy(now time.Time) bool {
	return now.After(r.RequestedAt.Add(ReservationTolerance))
}

func (r *Reservation) BeforeSave(*gorm.DB) error {
	return validateRef(r.CustomerID, r.AnonymousID)
}

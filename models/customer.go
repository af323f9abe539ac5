package models

import (
	"errors"
	"time"
)

// Customer is a registered diner with a persistent account.
type Customer struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	LastName  string    `gorm:"type:varchar(100)" json:"last_name"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// AnonymousCustomer is a session-scoped walk-in identity created at
// registration time (QR entry). It never outlives the visit.
type AnonymousCustomer struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"type:varchar(100);not null" json:"name"`
	SessionKey string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"session_key"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
}

type CustomerKind string

const (
	KindRegistered CustomerKind = "registered"
	KindAnonymous  CustomerKind = "anonymous"
)

// CustomerRef identifies exactly one customer, registered or anonymous.
// Orders, wait-list entries, reservations and game results persist it as a
// pair of nullable columns but only ever read/write it through this type,
// so the "both set" / "both null" states the raw schema would permit cannot
// occur.
type CustomerRef struct {
	Kind CustomerKind `json:"kind"`
	ID   uint         `json:"id"`
}

func RegisteredRef(id uint) CustomerRef {
	return CustomerRef{Kind: KindRegistered, ID: id}
}

func AnonymousRef(id uint) CustomerRef {
	return CustomerRef{Kind: KindAnonymous, ID: id}
}

func (r CustomerRef) IsZero() bool {
	return r.ID == 0
}

var ErrAmbiguousCustomer = errors.New("exactly one of customer_id / anonymous_id must be set")

// refColumns splits a CustomerRef into the pair of nullable FK columns the
// carrying record persists. The columns stay inline on each model so GORM
// can resolve the Customer/Anonymous relations against them.
func refColumns(ref CustomerRef) (customerID, anonymousID *uint, err error) {
	if ref.IsZero() {
		return nil, nil, ErrAmbiguousCustomer
	}
	id := ref.ID
	switch ref.Kind {
	case KindRegistered:
		return &id, nil, nil
	case KindAnonymous:
		return nil, &id, nil
	}
	return nil, nil, ErrAmbiguousCustomer
}

func refOf(customerID, anonymousID *uint) CustomerRef {
	if customerID != nil {
		return RegisteredRef(*customerID)
	}
	if anonymousID != nil {
		return AnonymousRef(*anonymousID)
	}
	return CustomerRef{}
}

func validateRef(customerID, anonymousID *uint) error {
	if (customerID == nil) == (anonymousID == nil) {
		return ErrAmbiguousCustomer
	}
	return nil
}

package models

import (
	"time"

	"gorm.io/gorm"
)

type GameType string

const (
	GameMemory GameType = "memory"
	GameQuiz   GameType = "quiz"
	GameMath   GameType = "math"
	GameReflex GameType = "reflex"
)

// DiscountValue is the flat discount a first-try win on each game grants.
func (g GameType) DiscountValue() float64 {
	if g == GameReflex {
		return 20
	}
	return 10
}

func (g GameType) Valid() bool {
	switch g {
	case GameMemory, GameQuiz, GameMath, GameReflex:
		return true
	}
	return false
}

// GameResult records every game attempt for analytics. At most one result
// per (order, customer) may carry a nonzero Discount: the very first
// attempt, and only if it was won.
type GameResult struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	OrderID     uint      `gorm:"not null;index" json:"order_id"`
	CustomerID  *uint     `gorm:"index" json:"customer_id,omitempty"`
	AnonymousID *uint     `gorm:"index" json:"anonymous_id,omitempty"`
	GameType    GameType  `gorm:"type:varchar(20);not null" json:"game_type"`
	Won         bool      `gorm:"not null" json:"won"`
	Attempts    int       `gorm:"not null" json:"attempts"`
	Discount    float64   `gorm:"type:decimal(10,2);not null;default:0" json:"discount"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
}

func (g *GameResult) CustomerRef() CustomerRef { return refOf(g.CustomerID, g.AnonymousID) }

func (g *GameResult) SetCustomerRef(ref CustomerRef) error {
	cid, aid, err := refColumns(ref)
	if err != nil {
		return err
	}
	g.CustomerID, g.AnonymousID = cid, aid
	return nil
}

func (g *GameResult) BeforeSave(*gorm.DB) error {
	return validateRef(g.CustomerID, g.AnonymousID)
}

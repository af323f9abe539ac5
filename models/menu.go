package models

import "time"

type MenuCategory string

const (
	CategoryFood    MenuCategory = "food"
	CategoryDrink   MenuCategory = "drink"
	CategoryDessert MenuCategory = "dessert"
)

// Sector is a preparation station. Kitchen handles food and desserts, the
// bar handles drinks.
type Sector string

const (
	SectorKitchen Sector = "kitchen"
	SectorBar     Sector = "bar"
)

func (c MenuCategory) Sector() Sector {
	if c == CategoryDrink {
		return SectorBar
	}
	return SectorKitchen
}

// Categories returns the menu categories a sector prepares.
func (s Sector) Categories() []MenuCategory {
	if s == SectorBar {
		return []MenuCategory{CategoryDrink}
	}
	return []MenuCategory{CategoryFood, CategoryDessert}
}

type Menu struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	Name        string       `gorm:"type:varchar(255);not null" json:"name"`
	Description string       `gorm:"type:text" json:"description"`
	Category    MenuCategory `gorm:"type:varchar(20);not null;index" json:"category"`
	Price       float64      `gorm:"type:decimal(10,2);not null" json:"price"`
	PrepMinutes int          `json:"prep_minutes"`
	Active      bool         `gorm:"not null;default:true" json:"active"`
	CreatedAt   time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null" json:"updated_at"`
}

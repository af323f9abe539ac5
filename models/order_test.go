package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeTotalFromItems(t *testing.T) {
	o := Order{
		Items: []OrderItem{
			{Quantity: 2, UnitPrice: 10},
			{Quantity: 1, UnitPrice: 5.5},
		},
		Discount: 10,
		Tip:      2,
	}
	o.ComputeTotal()

	assert.Equal(t, 25.5, o.Subtotal)
	assert.Equal(t, 17.5, o.Total)
}

func TestComputeTotalClampsAtZero(t *testing.T) {
	o := Order{Subtotal: 8, Discount: 20}
	o.ComputeTotal()
	assert.Equal(t, 0.0, o.Total)

	// The tip counts before clamping.
	o = Order{Subtotal: 8, Discount: 20, Tip: 5}
	o.ComputeTotal()
	assert.Equal(t, 0.0, o.Total)

	o = Order{Subtotal: 8, Discount: 5, Tip: 2}
	o.ComputeTotal()
	assert.Equal(t, 5.0, o.Total)
}

func TestCustomerRefRoundTrip(t *testing.T) {
	var o Order
	assert.NoError(t, o.SetCustomerRef(RegisteredRef(7)))
	assert.Equal(t, RegisteredRef(7), o.CustomerRef())
	assert.NoError(t, o.BeforeSave(nil))

	assert.NoError(t, o.SetCustomerRef(AnonymousRef(3)))
	assert.Equal(t, AnonymousRef(3), o.CustomerRef())
	assert.Nil(t, o.CustomerID, "switching identity must clear the other column")
	assert.NoError(t, o.BeforeSave(nil))
}

func TestCustomerRefExactlyOne(t *testing.T) {
	var o Order
	assert.ErrorIs(t, o.BeforeSave(nil), ErrAmbiguousCustomer, "both columns null")

	id := uint(1)
	o.CustomerID = &id
	o.AnonymousID = &id
	assert.ErrorIs(t, o.BeforeSave(nil), ErrAmbiguousCustomer, "both columns set")

	assert.Error(t, o.SetCustomerRef(CustomerRef{}), "zero ref is rejected")
	assert.Error(t, o.SetCustomerRef(CustomerRef{Kind: "ghost", ID: 4}))
}

func TestCategorySectorRouting(t *testing.T) {
	assert.Equal(t, SectorKitchen, CategoryFood.Sector())
	assert.Equal(t, SectorKitchen, CategoryDessert.Sector())
	assert.Equal(t, SectorBar, CategoryDrink.Sector())

	assert.ElementsMatch(t, []MenuCategory{CategoryFood, CategoryDessert}, SectorKitchen.Categories())
	assert.ElementsMatch(t, []MenuCategory{CategoryDrink}, SectorBar.Categories())
}

func TestGameDiscountValues(t *testing.T) {
	assert.Equal(t, 10.0, GameMemory.DiscountValue())
	assert.Equal(t, 10.0, GameQuiz.DiscountValue())
	assert.Equal(t, 10.0, GameMath.DiscountValue())
	assert.Equal(t, 20.0, GameReflex.DiscountValue())

	assert.True(t, GameReflex.Valid())
	assert.False(t, GameType("poker").Valid())
}

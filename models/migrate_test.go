package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// TestAutoMigrateAllModels runs the same migration main performs at boot.
// Every record that carries a customer identity must end up with plain
// customer_id / anonymous_id columns that the Customer and Anonymous
// relations resolve against.
func TestAutoMigrateAllModels(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:migrate?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&User{},
		&Customer{},
		&AnonymousCustomer{},
		&Table{},
		&Menu{},
		&Order{},
		&OrderItem{},
		&WaitlistEntry{},
		&Reservation{},
		&GameResult{},
		&Notification{},
	))

	for _, m := range []any{&Order{}, &WaitlistEntry{}, &Reservation{}, &GameResult{}} {
		assert.True(t, db.Migrator().HasColumn(m, "customer_id"), "%T", m)
		assert.True(t, db.Migrator().HasColumn(m, "anonymous_id"), "%T", m)
	}

	cust := Customer{Name: "Nora", Email: "nora@example.com"}
	require.NoError(t, db.Create(&cust).Error)

	order := Order{Channel: ChannelDelivery, Status: OrderPending}
	require.NoError(t, order.SetCustomerRef(RegisteredRef(cust.ID)))
	require.NoError(t, db.Create(&order).Error)

	var got Order
	require.NoError(t, db.Preload("Customer").First(&got, order.ID).Error)
	assert.Equal(t, RegisteredRef(cust.ID), got.CustomerRef())
	require.NotNil(t, got.Customer)
	assert.Equal(t, "Nora", got.Customer.Name)
}

package services

import (
	"fmt"
	"os"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yeremiapane/comanda-app/models"
	"github.com/yeremiapane/comanda-app/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	os.Exit(m.Run())
}

var dbSeq atomic.Int64

// setupDB opens a fresh in-memory database per test. The named shared-cache
// DSN keeps gorm's pooled connections on the same database without leaking
// state between tests.
func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:svc%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.AnonymousCustomer{},
		&models.Table{},
		&models.Menu{},
		&models.Order{},
		&models.OrderItem{},
		&models.WaitlistEntry{},
		&models.GameResult{},
		&models.Reservation{},
		&models.Notification{},
	))
	return db
}

func seedMenu(t *testing.T, db *gorm.DB, name string, category models.MenuCategory, price float64) models.Menu {
	t.Helper()
	menu := models.Menu{Name: name, Category: category, Price: price, Active: true}
	require.NoError(t, db.Create(&menu).Error)
	return menu
}

func seedTable(t *testing.T, db *gorm.DB, number int) models.Table {
	t.Helper()
	table := models.Table{Number: number, Capacity: 4, Status: models.TableFree, QRPayload: utils.TableQRPayload(number)}
	require.NoError(t, db.Create(&table).Error)
	return table
}

func seedCustomer(t *testing.T, db *gorm.DB, name string) models.Customer {
	t.Helper()
	c := models.Customer{Name: name, Email: name + "@example.com"}
	require.NoError(t, db.Create(&c).Error)
	return c
}

func seedStaff(t *testing.T, db *gorm.DB, role models.Role) (models.User, Actor) {
	t.Helper()
	u := models.User{
		Name:     string(role) + " one",
		Email:    fmt.Sprintf("%s%d@example.com", role, dbSeq.Load()),
		Password: "x",
		Role:     role,
		Enabled:  true,
	}
	require.NoError(t, db.Create(&u).Error)
	return u, Actor{ID: u.ID, Role: u.Role}
}

// seedDineInOrder plants a pending dine-in order on an occupied table, the
// state AssignTable leaves behind.
func seedDineInOrder(t *testing.T, db *gorm.DB, table models.Table, ref models.CustomerRef) models.Order {
	t.Helper()

	require.NoError(t, db.Model(&models.Table{}).
		Where("id = ?", table.ID).
		Update("status", models.TableOccupied).Error)

	order := models.Order{
		TableID: &table.ID,
		Channel: models.ChannelDineIn,
		Status:  models.OrderPending,
	}
	require.NoError(t, order.SetCustomerRef(ref))
	require.NoError(t, db.Create(&order).Error)
	return order
}

func countNotifications(t *testing.T, db *gorm.DB, typ string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.Notification{}).Where("type = ?", typ).Count(&n).Error)
	return n
}

package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yeremiapane/comanda-app/models"
	"github.com/yeremiapane/comanda-app/services"
	"github.com/yeremiapane/comanda-app/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

var dbSeq atomic.Int64

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:ctrl%d?mode=memory&cache=shared", dbSeq.Add(1))
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

// asStaff fakes the auth middleware: it plants the identity the real one
// would have extracted from the JWT.
func asStaff(id uint, role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", id)
		c.Set("role", string(role))
		c.Next()
	}
}

func setupOrderRouter(t *testing.T, db *gorm.DB) *gin.Engine {
	t.Helper()
	r := gin.New()

	notifier := services.NewNotifier(db)
	orderCtrl := NewOrderController(db, notifier)
	waitlistCtrl := NewWaitlistController(db, notifier, orderCtrl.Orders)

	r.POST("/walk-ins", waitlistCtrl.RegisterWalkIn)
	r.POST("/orders", orderCtrl.PlaceOrder)
	r.GET("/orders/:order_id", orderCtrl.GetOrderByID)
	r.POST("/orders/:order_id/bill", orderCtrl.RequestBill)

	staff := r.Group("/staff", asStaff(1, models.RoleWaiter))
	staff.GET("/orders", orderCtrl.ListOrders)
	staff.POST("/waitlist/assign", waitlistCtrl.AssignTable)
	staff.POST("/orders/:order_id/confirm", orderCtrl.ConfirmOrder)
	staff.POST("/orders/:order_id/reject", orderCtrl.RejectOrder)
	staff.POST("/orders/:order_id/deliver", orderCtrl.DeliverOrder)
	staff.POST("/orders/:order_id/pay", orderCtrl.PayOrder)

	kitchen := r.Group("/kitchen", asStaff(2, models.RoleChef))
	kitchen.GET("/sectors/:sector/queue", orderCtrl.SectorQueue)
	kitchen.POST("/items/:item_id/start", orderCtrl.StartItem)
	kitchen.POST("/items/:item_id/finish", orderCtrl.FinishItem)

	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, url string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data, _ := resp["data"].(map[string]interface{})
	return data
}

func TestDineInFlowOverHTTP(t *testing.T) {
	db := setupTestDB(t)
	r := setupOrderRouter(t, db)

	require.NoError(t, db.Create(&models.Table{Number: 5, Capacity: 4, Status: models.TableFree}).Error)
	menu := models.Menu{Name: "Milanesa", Category: models.CategoryFood, Price: 12, Active: true}
	require.NoError(t, db.Create(&menu).Error)

	// Walk in.
	w := doJSON(t, r, "POST", "/walk-ins", gin.H{"name": "Marta"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	data := decodeData(t, w)
	anonID := uint(data["customer"].(map[string]interface{})["id"].(float64))

	// Seat at table 5.
	w = doJSON(t, r, "POST", "/staff/waitlist/assign", gin.H{
		"customer_kind": "anonymous", "customer_id": anonID, "table_number": 5,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	orderID := int(decodeData(t, w)["id"].(float64))

	// Submit the cart.
	w = doJSON(t, r, "POST", "/orders", gin.H{
		"customer_kind": "anonymous", "customer_id": anonID,
		"items": []gin.H{{"menu_id": menu.ID, "quantity": 2}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "placed", decodeData(t, w)["status"])

	// Staff accepts.
	w = doJSON(t, r, "POST", fmt.Sprintf("/staff/orders/%d/confirm", orderID), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// The kitchen sees the item and works it.
	w = doJSON(t, r, "GET", "/kitchen/sectors/kitchen/queue", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var queueResp struct {
		Data []models.OrderItem `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &queueResp))
	require.Len(t, queueResp.Data, 1)
	itemID := queueResp.Data[0].ID

	w = doJSON(t, r, "POST", fmt.Sprintf("/kitchen/items/%d/start", itemID), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = doJSON(t, r, "POST", fmt.Sprintf("/kitchen/items/%d/finish", itemID), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Sole item ready -> order ready -> deliver.
	w = doJSON(t, r, "GET", fmt.Sprintf("/orders/%d", orderID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ready", decodeData(t, w)["status"])

	w = doJSON(t, r, "POST", fmt.Sprintf("/staff/orders/%d/deliver", orderID), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Bill with tip, then pay.
	w = doJSON(t, r, "POST", fmt.Sprintf("/orders/%d/bill", orderID), gin.H{
		"customer_kind": "anonymous", "customer_id": anonID, "tip": 3,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 27.0, decodeData(t, w)["total"])

	w = doJSON(t, r, "POST", fmt.Sprintf("/staff/orders/%d/pay", orderID), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "paid", decodeData(t, w)["status"])

	// Table 5 is free again.
	var table models.Table
	require.NoError(t, db.Where("number = ?", 5).First(&table).Error)
	assert.Equal(t, models.TableFree, table.Status)
}

func TestListOrdersStatusFilterLeavesDefaultsAlone(t *testing.T) {
	db := setupTestDB(t)
	r := setupOrderRouter(t, db)

	before := append([]models.OrderStatus(nil), models.ActiveOrderStatuses...)

	w := doJSON(t, r, "GET", "/staff/orders?status=paid&status=delivered", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// The filter must not write through to the package default.
	assert.Equal(t, before, models.ActiveOrderStatuses)

	w = doJSON(t, r, "GET", "/staff/orders", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestRejectNeedsReasonOverHTTP(t *testing.T) {
	db := setupTestDB(t)
	r := setupOrderRouter(t, db)

	require.NoError(t, db.Create(&models.Table{Number: 1, Capacity: 2, Status: models.TableFree}).Error)
	menu := models.Menu{Name: "Fernet", Category: models.CategoryDrink, Price: 6, Active: true}
	require.NoError(t, db.Create(&menu).Error)

	w := doJSON(t, r, "POST", "/walk-ins", gin.H{"name": "Beto"})
	require.Equal(t, http.StatusCreated, w.Code)
	anonID := uint(decodeData(t, w)["customer"].(map[string]interface{})["id"].(float64))

	w = doJSON(t, r, "POST", "/staff/waitlist/assign", gin.H{
		"customer_kind": "anonymous", "customer_id": anonID, "table_number": 1,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	orderID := int(decodeData(t, w)["id"].(float64))

	w = doJSON(t, r, "POST", "/orders", gin.H{
		"customer_kind": "anonymous", "customer_id": anonID,
		"items": []gin.H{{"menu_id": menu.ID, "quantity": 1}},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// Missing reason fails binding.
	w = doJSON(t, r, "POST", fmt.Sprintf("/staff/orders/%d/reject", orderID), gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, "POST", fmt.Sprintf("/staff/orders/%d/reject", orderID), gin.H{"reason": "out of stock"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "pending", decodeData(t, w)["status"])
}

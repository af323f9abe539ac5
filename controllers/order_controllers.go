package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/comanda-app/models"
	"github.com/yeremiapane/comanda-app/services"
	"github.com/yeremiapane/comanda-app/utils"
)

type OrderController struct {
	Orders *services.OrderService
}

func NewOrderController(db *gorm.DB, notifier *services.Notifier) *OrderController {
	return &OrderController{Orders: services.NewOrderService(db, notifier)}
}

// PlaceOrder -> customer submits or edits a cart for their assigned table
func (oc *OrderController) PlaceOrder(c *gin.Context) {
	var body struct {
		CustomerRefReq
		Items []services.ItemInput `json:"items" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	ref, err := body.Ref()
	if err != nil {
		utils.RespondEngineError(c, err)
		return
	}

	order, err := oc.Orders.PlaceOrder(c.Request.Context(), ref, body.Items)
	if err != nil {
		utils.RespondEngineError(c, err)
		return
	}
	utils.InfoLogger.Printf("Order #%d placed (%d items)", order.ID, len(order.Items))
	utils.RespondJSON(c, http.StatusCreated, "Order placed", order)
}

// PlaceDeliveryOrder -> delivery-channel order with a shipping address
func (oc *OrderController) PlaceDeliveryOrder(c *gin.Context) {
	var body struct {
		CustomerRefReq
		Address string               `json:"address" binding:"required"`
		Items   []services.ItemInput `json:"items" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	ref, err := body.Ref()
	if err != nil {
		utils.RespondEngineError(c, err)
		return
	}

	order, err := oc.Orders.PlaceDeliveryOrder(c.Request.Context(), ref, body.Address, body.Items)
	if err != nil {
		utils.RespondEngineError(c, err)
		return
	}
	utils.InfoLogger.Printf("Delivery order #%d placed", order.ID)
	utils.RespondJSON(c, http.StatusCreated, "Delivery order placed", order)
}

// GetOrderByID -> order detail with items
func (oc *OrderController) GetOrderByID(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("order_id"))
	order, err := oc.Orders.GetOrder(c.Request.Context(), uint(id))
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

// ListOrders -> orders filtered by repeated ?status= keys, staff view
func (oc *OrderController) ListOrders(c *gin.Context) {
	statuses := models.ActiveOrderStatuses
	if q := c.QueryArray("status"); len(q) > 0 {
		statuses = make([]models.OrderStatus, 0, len(q))
		for _, s := range q {
			statuses = append(statuses, models.OrderStatus(s))
		}
	}
	orders, err := oc.Orders.ListByStatus(c.Request.Context(), statuses)
	if err != nil {
		utils.RespondEngineError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

// ConfirmOrder -> staff accepts a placed order
func (oc *OrderController) ConfirmOrder(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("order_id"))
	order, err := oc.Orders.Confirm(c.Request.Context(), actorFrom(c), uint(id))
	if err != nil {
		utils.RespondEngineError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order confirmed", order)
}

// RejectOrder -> staff returns a placed order with a reason
func (oc *OrderController) RejectOrder(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("order_id"))
	var body struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	order, err := oc.Orders.Reject(c.Request.Context(), actorFrom(c), uint(id), body.Reason)
	if err != nil {
		utils.RespondEngineError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order returned to customer", order)
}

// DeliverOrder -> ready order handed to the table / sent out
func (oc *OrderController) DeliverOrder(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("order_id"))
	order, err := oc.Orders.Deliver(c.Request.Context(), actorFrom(c), uint(id))
	if err != nil {
		utils.RespondEngineError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order delivered", order)
}

// PayOrder -> settle payment; dine-in also releases the table
func (oc *OrderController) PayOrder(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("order_id"))
	order, err := oc.Orders.Pay(c.Request.Context(), actorFrom(c), uint(id))
	if err != nil {
		utils.RespondEngineError(c, err)
		return
	}
	utils.InfoLogger.Printf("Order #%d paid, total %.2f", order.ID, order.Total)
	utils.RespondJSON(c, http.StatusOK, "Order paid", order)
}

// RequestBill -> customer asks for the bill, optionally with a tip
func (oc *OrderController) RequestBill(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("order_id"))
	var body struct {
		CustomerRefReq
		Tip float64 `json:"tip"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	ref, err := body.Ref()
	if err != nil {
		utils.RespondEngineError(c, err)
		return
	}
	order, err := oc.Orders.RequestBill(c.Request.Context(), ref, uint(id), body.Tip)
	if err != nil {
		utils.RespondEngineError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Bill requested", order)
}

// SectorQueue -> pending line items for kitchen or bar
func (oc *OrderController) SectorQueue(c *gin.Context) {
	sector := models.Sector(c.Param("sector"))
	if sector != models.SectorKitchen && sector != models.SectorBar {
		utils.RespondError(c, http.StatusBadRequest, &CustomError{"unknown sector"})
		return
	}
	items, err := oc.Orders.SectorQueue(c.Request.Context(), actorFrom(c), sector)
	if err != nil {
		utils.RespondEngineError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Sector queue", items)
}

// StartItem -> sector begins preparing one line item
func (oc *OrderController) StartItem(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("item_id"))
	item, err := oc.Orders.StartItem(c.Request.Context(), actorFrom(c), uint(id))
	if err != nil {
		utils.RespondEngineError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Item in preparation", item)
}

// FinishItem -> sector finishes one line item; order may flip to ready
func (oc *OrderController) FinishItem(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("item_id"))
	item, err := oc.Orders.FinishItem(c.Request.Context(), actorFrom(c), uint(id))
	if err != nil {
		utils.RespondEngineError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Item ready", item)
}

// GetTableOrder -> the active order on a table, if any
func (oc *OrderController) GetTableOrder(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("table_id"))
	order, err := oc.Orders.FindActiveOrderForTable(c.Request.Context(), uint(id))
	if err != nil {
		utils.RespondEngineError(c, err)
		return
	}
	if order == nil {
		utils.RespondError(c, http.StatusNotFound, &CustomError{"no active order on this table"})
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Active order", order)
}

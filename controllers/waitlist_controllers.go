package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/comanda-app/services"
	"github.com/yeremiapane/comanda-app/utils"
)

type WaitlistController struct {
	Assignments *services.AssignmentService
}

func NewWaitlistController(db *gorm.DB, notifier *services.Notifier, orders *services.OrderService) *WaitlistController {
	return &WaitlistController{Assignments: services.NewAssignmentService(db, notifier, orders)}
}

// RegisterWalkIn -> entry QR scan: create an anonymous session and queue it
func (wc *WaitlistController) RegisterWalkIn(c *gin.Context) {
	var body struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	anon, entry, err := wc.Assignments.RegisterWalkIn(c.Request.Context(), body.Name)
	if err != nil {
		utils.RespondEngineError(c, err)
		return
	}
	utils.InfoLogger.Printf("Walk-in %q registered (anonymous #%d)", anon.Name, anon.ID)
	utils.RespondJSON(c, http.StatusCreated, "Added to the wait list", gin.H{
		"customer": anon,
		"entry":    entry,
	})
}

// GetEntryQR -> PNG of the door poster code that opens the walk-in form
func (wc *WaitlistController) GetEntryQR(c *gin.Context) {
	png, err := utils.QRPNG(utils.WaitlistEntryPayload)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// JoinWaitlist -> a registered customer queues up
func (wc *WaitlistController) JoinWaitlist(c *gin.Context) {
	var body CustomerRefReq
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	ref, err := body.Ref()
	if err != nil {
		utils.RespondEngineError(c, err)
		return
	}

	entry, err := wc.Assignments.JoinWaitlist(c.Request.Context(), ref)
	if err != nil {
		utils.RespondEngineError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Added to the wait list", entry)
}

// ListWaiting -> staff view of the queue
func (wc *WaitlistController) ListWaiting(c *gin.Context) {
	entries, err := wc.Assignments.Waiting(c.Request.Context())
	if err != nil {
		utils.RespondEngineError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Customers waiting", entries)
}

// AssignTable -> staff seats a waiting customer at a table
func (wc *WaitlistController) AssignTable(c *gin.Context) {
	var body struct {
		CustomerRefReq
		TableNumber int `json:"table_number" binding:"required"`
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

	order, err := wc.Assignments.AssignTable(c.Request.Context(), actorFrom(c), body.TableNumber, ref)
	if err != nil {
		utils.RespondEngineError(c, err)
		return
	}
	utils.InfoLogger.Printf("Table %d assigned, order #%d created", body.TableNumber, order.ID)
	utils.RespondJSON(c, http.StatusCreated, "Table assigned", order)
}

package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/comanda-app/services"
	"github.com/yeremiapane/comanda-app/utils"
)

type ReservationController struct {
	Reservations *services.ReservationService
}

func NewReservationController(db *gorm.DB, notifier *services.Notifier) *ReservationController {
	return &ReservationController{Reservations: services.NewReservationService(db, notifier)}
}

// CreateReservation -> customer books a pending reservation
func (rc *ReservationController) CreateReservation(c *gin.Context) {
	var body struct {
		CustomerRefReq
		RequestedAt time.Time `json:"requested_at" binding:"required"`
		PartySize   int       `json:"party_size" binding:"required"`
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

	res, err := rc.Reservations.Create(c.Request.Context(), ref, body.RequestedAt, body.PartySize)
	if err != nil {
		utils.RespondEngineError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Reservation created", res)
}

// ListReservations -> staff view; expired holds are swept before returning
func (rc *ReservationController) ListReservations(c *gin.Context) {
	list, err := rc.Reservations.List(c.Request.Context())
	if err != nil {
		utils.RespondEngineError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservations", list)
}

// ConfirmReservation -> staff accepts a pending reservation
func (rc *ReservationController) ConfirmReservation(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("reservation_id"))
	res, err := rc.Reservations.Confirm(c.Request.Context(), actorFrom(c), uint(id))
	if err != nil {
		utils.RespondEngineError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation confirmed", res)
}

// RejectReservation -> staff declines with a reason
func (rc *ReservationController) RejectReservation(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("reservation_id"))
	var body struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	res, err := rc.Reservations.Reject(c.Request.Context(), actorFrom(c), uint(id), body.Reason)
	if err != nil {
		utils.RespondEngineError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation rejected", res)
}

// CancelReservation -> the booking customer withdraws
func (rc *ReservationController) CancelReservation(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("reservation_id"))
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
	res, err := rc.Reservations.Cancel(c.Request.Context(), ref, uint(id))
	if err != nil {
		utils.RespondEngineError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation cancelled", res)
}

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

type GameController struct {
	Games *services.GameService
}

func NewGameController(db *gorm.DB) *GameController {
	return &GameController{Games: services.NewGameService(db)}
}

// RecordResult -> a game screen reports a finished attempt
func (gc *GameController) RecordResult(c *gin.Context) {
	var body struct {
		CustomerRefReq
		OrderID  uint   `json:"order_id" binding:"required"`
		GameType string `json:"game_type" binding:"required"`
		Won      bool   `json:"won"`
		Attempt  int    `json:"attempt" binding:"required"`
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

	result, err := gc.Games.Record(c.Request.Context(), services.GameAttempt{
		OrderID:  body.OrderID,
		Customer: ref,
		GameType: models.GameType(body.GameType),
		Won:      body.Won,
		Attempt:  body.Attempt,
	})
	if err != nil {
		utils.RespondEngineError(c, err)
		return
	}

	msg := "Attempt recorded"
	if result.Discount > 0 {
		msg = "Attempt recorded, discount applied"
		utils.InfoLogger.Printf("Game discount %.0f applied to order #%d", result.Discount, result.OrderID)
	}
	utils.RespondJSON(c, http.StatusCreated, msg, result)
}

// GetPrior -> whether this (order, customer) pair already used its shot
func (gc *GameController) GetPrior(c *gin.Context) {
	orderID, _ := strconv.Atoi(c.Param("order_id"))
	var body CustomerRefReq
	body.Kind = c.Query("customer_kind")
	id, _ := strconv.Atoi(c.Query("customer_id"))
	body.ID = uint(id)

	ref, err := body.Ref()
	if err != nil {
		utils.RespondEngineError(c, err)
		return
	}

	prior, err := gc.Games.Prior(c.Request.Context(), uint(orderID), ref)
	if err != nil {
		utils.RespondEngineError(c, err)
		return
	}
	if prior == nil {
		utils.RespondJSON(c, http.StatusOK, "No prior attempt", nil)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Prior attempt", prior)
}

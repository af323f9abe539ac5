package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/comanda-app/models"
	"github.com/yeremiapane/comanda-app/utils"
)

type NotificationController struct {
	DB *gorm.DB
}

func NewNotificationController(db *gorm.DB) *NotificationController {
	return &NotificationController{DB: db}
}

// ListMine -> notifications for the authenticated staff member
func (nc *NotificationController) ListMine(c *gin.Context) {
	actor := actorFrom(c)
	var list []models.Notification
	err := nc.DB.
		Where("recipient_kind = ? AND recipient_id = ?", models.RecipientUser, actor.ID).
		Order("created_at desc").
		Limit(100).
		Find(&list).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Notifications", list)
}

// ListForCustomer -> notifications addressed to a customer session
func (nc *NotificationController) ListForCustomer(c *gin.Context) {
	var body CustomerRefReq
	body.Kind = c.Query("customer_kind")
	id, _ := strconv.Atoi(c.Query("customer_id"))
	body.ID = uint(id)

	ref, err := body.Ref()
	if err != nil {
		utils.RespondEngineError(c, err)
		return
	}

	kind := models.RecipientCustomer
	if ref.Kind == models.KindAnonymous {
		kind = models.RecipientAnonymous
	}

	var list []models.Notification
	err = nc.DB.
		Where("recipient_kind = ? AND recipient_id = ?", kind, ref.ID).
		Order("created_at desc").
		Limit(100).
		Find(&list).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Notifications", list)
}

// MarkRead -> flag a single notification as read
func (nc *NotificationController) MarkRead(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("notification_id"))
	res := nc.DB.Model(&models.Notification{}).
		Where("id = ?", id).
		Update("read", true)
	if res.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		utils.RespondError(c, http.StatusNotFound, &CustomError{"notification not found"})
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Notification marked as read", gin.H{"id": id})
}

// MarkAllRead -> flag every unread notification of the staff member
func (nc *NotificationController) MarkAllRead(c *gin.Context) {
	actor := actorFrom(c)
	res := nc.DB.Model(&models.Notification{}).
		Where("recipient_kind = ? AND recipient_id = ? AND read = ?", models.RecipientUser, actor.ID, false).
		Update("read", true)
	if res.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, res.Error)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Notifications marked as read", gin.H{"updated": res.RowsAffected})
}

package services

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/gorm"

	"github.com/yeremiapane/comanda-app/engine"
	"github.com/yeremiapane/comanda-app/models"
	"github.com/yeremiapane/comanda-app/realtime"
	"github.com/yeremiapane/comanda-app/utils"
)

// Notifier persists notification rows and pushes them over the realtime
// hub. It is strictly fire-and-forget: every failure is logged and
// swallowed, because a lost notification must never undo or block a state
// transition that already committed.
type Notifier struct {
	DB *gorm.DB
}

func NewNotifier(db *gorm.DB) *Notifier {
	return &Notifier{DB: db}
}

const notifyTimeout = 2 * time.Second

// Dispatch resolves the audiences of engine intents for one order and sends
// a notification to each concrete recipient.
func (n *Notifier) Dispatch(o *models.Order, intents []engine.Intent) {
	payload := map[string]interface{}{"order_id": o.ID}
	for _, in := range intents {
		switch in.Audience {
		case engine.AudienceCustomer:
			kind, id := recipientFromRef(o.CustomerRef())
			n.Send(kind, id, in.Type, in.Title, in.Message, payload)
		case engine.AudienceWaiters:
			n.sendToRoles([]models.Role{models.RoleWaiter}, in, payload)
		case engine.AudienceSupervisors:
			n.sendToRoles(models.SupervisorRoles, in, payload)
		}
	}
}

// Send delivers one notification to one recipient.
func (n *Notifier) Send(kind models.RecipientKind, id uint, typ, title, message string, payload map[string]interface{}) {
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	var raw []byte
	if payload != nil {
		raw, _ = json.Marshal(payload)
	}

	notif := models.Notification{
		RecipientKind: kind,
		RecipientID:   id,
		Type:          typ,
		Title:         title,
		Message:       message,
		Payload:       string(raw),
	}
	if err := n.DB.WithContext(ctx).Create(&notif).Error; err != nil {
		utils.ErrorLogger.Printf("notify %s/%d (%s): %v", kind, id, typ, err)
		return
	}
	realtime.BroadcastNotification(notif)
}

// SendToCustomer addresses a notification by customer ref.
func (n *Notifier) SendToCustomer(ref models.CustomerRef, typ, title, message string, payload map[string]interface{}) {
	kind, id := recipientFromRef(ref)
	n.Send(kind, id, typ, title, message, payload)
}

func (n *Notifier) sendToRoles(roles []models.Role, in engine.Intent, payload map[string]interface{}) {
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	var users []models.User
	if err := n.DB.WithContext(ctx).
		Where("role IN ? AND enabled = ?", roles, true).
		Find(&users).Error; err != nil {
		utils.ErrorLogger.Printf("notify roles %v (%s): %v", roles, in.Type, err)
		return
	}
	for _, u := range users {
		n.Send(models.RecipientUser, u.ID, in.Type, in.Title, in.Message, payload)
	}
}

func recipientFromRef(ref models.CustomerRef) (models.RecipientKind, uint) {
	if ref.Kind == models.KindAnonymous {
		return models.RecipientAnonymous, ref.ID
	}
	return models.RecipientCustomer, ref.ID
}

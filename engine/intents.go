package engine

import (
	"fmt"

	"github.com/yeremiapane/comanda-app/models"
)

// Audience is a symbolic recipient set. The engine never resolves who is
// actually behind an audience; the notifier does.
type Audience string

const (
	AudienceCustomer    Audience = "customer"    // the order's customer (registered or anonymous)
	AudienceWaiters     Audience = "waiters"     // every enabled waiter-role user
	AudienceSupervisors Audience = "supervisors" // owner + supervisor roles
)

// Intent is a notification the caller should deliver after a transition
// commits. Delivery failures never roll the transition back.
type Intent struct {
	Audience Audience
	Type     string
	Title    string
	Message  string
}

// OrderInfo is the slice of an order the intent templates need.
type OrderInfo struct {
	ID          uint
	TableNumber int // 0 for delivery
	Channel     models.Channel
	Total       float64
}

func (o OrderInfo) location() string {
	if o.Channel == models.ChannelDelivery {
		return "delivery"
	}
	return fmt.Sprintf("table %d", o.TableNumber)
}

// Intents lists the notifications a committed transition owes. resubmit
// distinguishes a first submission from a cart edit; reason carries the
// staff text for rejections.
func Intents(ev Event, o OrderInfo, resubmit bool) []Intent {
	switch ev.Type {
	case EventSubmit:
		if resubmit {
			return []Intent{{
				Audience: AudienceWaiters,
				Type:     models.NotifOrderModified,
				Title:    "Order modified",
				Message:  fmt.Sprintf("Order #%d (%s) was modified by the customer", o.ID, o.location()),
			}}
		}
		intents := []Intent{{
			Audience: AudienceWaiters,
			Type:     models.NotifOrderPlaced,
			Title:    "New order",
			Message:  fmt.Sprintf("New order #%d from %s", o.ID, o.location()),
		}}
		if o.Channel == models.ChannelDelivery {
			intents = append(intents, Intent{
				Audience: AudienceSupervisors,
				Type:     models.NotifDeliveryOrder,
				Title:    "New delivery order",
				Message:  fmt.Sprintf("Delivery order #%d was placed", o.ID),
			})
		}
		return intents

	case EventConfirm:
		return []Intent{{
			Audience: AudienceCustomer,
			Type:     models.NotifOrderConfirmed,
			Title:    "Order confirmed",
			Message:  "Your order was accepted and is heading to preparation.",
		}}

	case EventReject:
		return []Intent{{
			Audience: AudienceCustomer,
			Type:     models.NotifOrderRejected,
			Title:    "Order returned",
			Message:  fmt.Sprintf("Your order was returned: %s. Please review and resubmit.", ev.Reason),
		}}

	case EventDeliver:
		msg := "Your order was delivered to the table. Enjoy!"
		if o.Channel == models.ChannelDelivery {
			msg = "Your order is on its way to your address."
		}
		return []Intent{{
			Audience: AudienceCustomer,
			Type:     models.NotifOrderDelivered,
			Title:    "Order delivered",
			Message:  msg,
		}}

	case EventPay:
		intents := []Intent{
			{
				Audience: AudienceCustomer,
				Type:     models.NotifOrderPaid,
				Title:    "Thanks for your visit",
				Message:  fmt.Sprintf("Payment of $%.2f received. See you soon!", o.Total),
			},
			{
				Audience: AudienceSupervisors,
				Type:     models.NotifOrderPaid,
				Title:    fmt.Sprintf("Order #%d settled", o.ID),
				Message:  fmt.Sprintf("$%.2f collected for %s", o.Total, o.location()),
			},
		}
		if o.Channel == models.ChannelDineIn {
			intents = append(intents, Intent{
				Audience: AudienceSupervisors,
				Type:     models.NotifTableReleased,
				Title:    "Table released",
				Message:  fmt.Sprintf("Table %d is free again", o.TableNumber),
			})
		}
		return intents
	}

	return nil
}

// ItemReadyIntent notifies waiter-role staff that a single line item left a
// sector. Emitted on every item finish, whether or not the order flipped.
func ItemReadyIntent(o OrderInfo, itemName string) Intent {
	return Intent{
		Audience: AudienceWaiters,
		Type:     models.NotifItemReady,
		Title:    "Item ready",
		Message:  fmt.Sprintf("%s for order #%d (%s) is ready to serve", itemName, o.ID, o.location()),
	}
}

// OrderReadyIntents fires when aggregation flips the whole order to ready.
func OrderReadyIntents(o OrderInfo) []Intent {
	return []Intent{
		{
			Audience: AudienceWaiters,
			Type:     models.NotifOrderReady,
			Title:    "Order ready",
			Message:  fmt.Sprintf("Order #%d (%s) is complete and ready to serve", o.ID, o.location()),
		},
		{
			Audience: AudienceCustomer,
			Type:     models.NotifOrderReady,
			Title:    "Order ready",
			Message:  "Your order is ready and will reach you shortly.",
		},
	}
}

// PreparingIntent tells the customer preparation started. Emitted only when
// the order first leaves confirmed.
func PreparingIntent() Intent {
	return Intent{
		Audience: AudienceCustomer,
		Type:     models.NotifOrderPreparing,
		Title:    "In preparation",
		Message:  "The kitchen started working on your order.",
	}
}

// BillRequestIntents notifies staff a table asked for the bill.
func BillRequestIntents(o OrderInfo, tip float64) []Intent {
	msg := fmt.Sprintf("%s requested the bill: $%.2f (tip $%.2f)", o.location(), o.Total, tip)
	return []Intent{
		{Audience: AudienceWaiters, Type: models.NotifBillRequested, Title: "Bill requested", Message: msg},
		{Audience: AudienceSupervisors, Type: models.NotifBillRequested, Title: "Bill requested", Message: msg},
	}
}

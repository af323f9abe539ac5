// Package engine holds the order lifecycle state machine as pure functions:
// no database handles, no clocks, no side effects. The services layer feeds
// it the current state and an event and acts on what comes back.
package engine

import (
	"github.com/yeremiapane/comanda-app/models"
	"github.com/yeremiapane/comanda-app/utils"
)

type EventType string

const (
	EventSubmit     EventType = "submit"      // customer submits (or edits) a cart
	EventConfirm    EventType = "confirm"     // staff accepts the order
	EventReject     EventType = "reject"      // staff returns a placed order with a reason
	EventItemStart  EventType = "item_start"  // a sector begins preparing a line item
	EventItemFinish EventType = "item_finish" // a sector finishes a line item
	EventDeliver    EventType = "deliver"     // staff delivers / dispatches
	EventPay        EventType = "pay"         // payment settled
)

type Event struct {
	Type   EventType
	Reason string // required for EventReject
}

var order = map[models.OrderStatus]int{
	models.OrderPending:   0,
	models.OrderPlaced:    1,
	models.OrderConfirmed: 2,
	models.OrderPreparing: 3,
	models.OrderReady:     4,
	models.OrderDelivered: 5,
	models.OrderPaid:      6,
}

// targets maps each event to the state it lands in. Submit and the item
// events are special-cased in Next.
var targets = map[EventType]struct {
	from models.OrderStatus
	to   models.OrderStatus
}{
	EventConfirm: {models.OrderPlaced, models.OrderConfirmed},
	EventReject:  {models.OrderPlaced, models.OrderPending},
	EventDeliver: {models.OrderReady, models.OrderDelivered},
	EventPay:     {models.OrderDelivered, models.OrderPaid},
}

// Next validates an event against the current order state and returns the
// state it moves to. An order already sitting in the target state is a
// conflict (another client got there first); any other mismatch is a
// validation failure. Item events are validated here but their resulting
// order state is derived via Aggregate, not chosen by the caller.
func Next(cur models.OrderStatus, ev Event) (models.OrderStatus, error) {
	if _, ok := order[cur]; !ok {
		return cur, utils.Validationf("unknown order state %q", cur)
	}

	switch ev.Type {
	case EventSubmit:
		// First submission or a resubmission while still editable.
		if cur == models.OrderPending || cur == models.OrderPlaced {
			return models.OrderPlaced, nil
		}
		return cur, utils.Validationf("cannot submit a cart while the order is %s", cur)

	case EventReject:
		if ev.Reason == "" {
			return cur, utils.Validationf("a rejection reason is required")
		}
		fallthrough

	case EventConfirm, EventDeliver, EventPay:
		t := targets[ev.Type]
		if cur == t.from {
			return t.to, nil
		}
		if cur == t.to {
			return cur, utils.Conflictf("order is already %s", t.to)
		}
		return cur, utils.Validationf("cannot %s an order that is %s", ev.Type, cur)

	case EventItemStart, EventItemFinish:
		if cur == models.OrderConfirmed || cur == models.OrderPreparing {
			return cur, nil
		}
		return cur, utils.Validationf("line items can only change while the order is confirmed or preparing, not %s", cur)
	}

	return cur, utils.Validationf("unknown event %q", ev.Type)
}

// NextItem returns a line item's state after a sector action. Re-applying
// "begin preparation" to an item already preparing is a no-op, not an error.
func NextItem(cur models.ItemStatus, ev EventType) (models.ItemStatus, error) {
	switch ev {
	case EventItemStart:
		switch cur {
		case models.ItemPending, models.ItemPreparing:
			return models.ItemPreparing, nil
		}
		return cur, utils.Conflictf("item is already %s", cur)
	case EventItemFinish:
		switch cur {
		case models.ItemPending, models.ItemPreparing:
			return models.ItemReady, nil
		}
		return cur, utils.Conflictf("item is already %s", cur)
	}
	return cur, utils.Validationf("event %q does not apply to line items", ev)
}

// Aggregate derives the order-level state from its line items. The order is
// ready iff every item (of at least one) is ready; any progress short of
// that reports preparing; an untouched set of items leaves it confirmed.
func Aggregate(items []models.ItemStatus) models.OrderStatus {
	if len(items) == 0 {
		return models.OrderConfirmed
	}
	allReady := true
	anyTouched := false
	for _, st := range items {
		if st != models.ItemReady {
			allReady = false
		}
		if st != models.ItemPending {
			anyTouched = true
		}
	}
	switch {
	case allReady:
		return models.OrderReady
	case anyTouched:
		return models.OrderPreparing
	default:
		return models.OrderConfirmed
	}
}

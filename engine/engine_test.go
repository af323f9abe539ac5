package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yeremiapane/comanda-app/models"
	"github.com/yeremiapane/comanda-app/utils"
)

func TestNextHappyPath(t *testing.T) {
	cases := []struct {
		cur  models.OrderStatus
		ev   Event
		want models.OrderStatus
	}{
		{models.OrderPending, Event{Type: EventSubmit}, models.OrderPlaced},
		{models.OrderPlaced, Event{Type: EventSubmit}, models.OrderPlaced},
		{models.OrderPlaced, Event{Type: EventConfirm}, models.OrderConfirmed},
		{models.OrderPlaced, Event{Type: EventReject, Reason: "out of stock"}, models.OrderPending},
		{models.OrderReady, Event{Type: EventDeliver}, models.OrderDelivered},
		{models.OrderDelivered, Event{Type: EventPay}, models.OrderPaid},
	}
	for _, tc := range cases {
		got, err := Next(tc.cur, tc.ev)
		assert.NoError(t, err, "%s on %s", tc.ev.Type, tc.cur)
		assert.Equal(t, tc.want, got)
	}
}

func TestNextRejectNeedsReason(t *testing.T) {
	_, err := Next(models.OrderPlaced, Event{Type: EventReject})
	assert.Error(t, err)
	assert.True(t, utils.IsValidation(err))
}

func TestNextAlreadyInTargetIsConflict(t *testing.T) {
	_, err := Next(models.OrderConfirmed, Event{Type: EventConfirm})
	assert.Error(t, err)
	assert.True(t, utils.IsConflict(err), "confirming a confirmed order should conflict")

	_, err = Next(models.OrderPaid, Event{Type: EventPay})
	assert.True(t, utils.IsConflict(err))
}

func TestNextInvalidJump(t *testing.T) {
	// No skipping: a placed order cannot be delivered or paid.
	_, err := Next(models.OrderPlaced, Event{Type: EventDeliver})
	assert.True(t, utils.IsValidation(err))

	_, err = Next(models.OrderPlaced, Event{Type: EventPay})
	assert.True(t, utils.IsValidation(err))

	// Once accepted, the cart can no longer be edited.
	_, err = Next(models.OrderConfirmed, Event{Type: EventSubmit})
	assert.True(t, utils.IsValidation(err))
}

func TestNextUnknownState(t *testing.T) {
	_, err := Next(models.OrderStatus("draft"), Event{Type: EventConfirm})
	assert.True(t, utils.IsValidation(err))
}

func TestNextItemEventsOnlyWhileAccepted(t *testing.T) {
	for _, cur := range []models.OrderStatus{models.OrderConfirmed, models.OrderPreparing} {
		got, err := Next(cur, Event{Type: EventItemStart})
		assert.NoError(t, err)
		assert.Equal(t, cur, got, "item events leave the order state to Aggregate")
	}

	_, err := Next(models.OrderPlaced, Event{Type: EventItemStart})
	assert.True(t, utils.IsValidation(err))

	_, err = Next(models.OrderDelivered, Event{Type: EventItemFinish})
	assert.True(t, utils.IsValidation(err))
}

func TestNextItem(t *testing.T) {
	got, err := NextItem(models.ItemPending, EventItemStart)
	assert.NoError(t, err)
	assert.Equal(t, models.ItemPreparing, got)

	// Idempotent: a second start is a no-op, not an error.
	got, err = NextItem(models.ItemPreparing, EventItemStart)
	assert.NoError(t, err)
	assert.Equal(t, models.ItemPreparing, got)

	got, err = NextItem(models.ItemPreparing, EventItemFinish)
	assert.NoError(t, err)
	assert.Equal(t, models.ItemReady, got)

	// A ready item is final.
	_, err = NextItem(models.ItemReady, EventItemStart)
	assert.True(t, utils.IsConflict(err))
	_, err = NextItem(models.ItemReady, EventItemFinish)
	assert.True(t, utils.IsConflict(err))
}

func TestAggregate(t *testing.T) {
	p, w, r := models.ItemPending, models.ItemPreparing, models.ItemReady

	cases := []struct {
		items []models.ItemStatus
		want  models.OrderStatus
	}{
		{nil, models.OrderConfirmed},
		{[]models.ItemStatus{p, p}, models.OrderConfirmed},
		{[]models.ItemStatus{w, p}, models.OrderPreparing},
		{[]models.ItemStatus{r, p}, models.OrderPreparing},
		{[]models.ItemStatus{r, r, w}, models.OrderPreparing},
		{[]models.ItemStatus{r}, models.OrderReady},
		{[]models.ItemStatus{r, r, r}, models.OrderReady},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Aggregate(tc.items), "items %v", tc.items)
	}
}

package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yeremiapane/comanda-app/models"
	"github.com/yeremiapane/comanda-app/utils"
)

// gameOrder plants a confirmed dine-in order with a known subtotal.
func gameOrder(t *testing.T, db *gorm.DB, subtotal float64) (models.Order, models.CustomerRef) {
	t.Helper()
	table := seedTable(t, db, 1)
	customer := seedCustomer(t, db, "gamer")
	ref := models.RegisteredRef(customer.ID)
	order := seedDineInOrder(t, db, table, ref)
	require.NoError(t, db.Model(&models.Order{}).Where("id = ?", order.ID).
		Updates(map[string]interface{}{
			"status":   models.OrderConfirmed,
			"subtotal": subtotal,
			"total":    subtotal,
		}).Error)
	order.Status = models.OrderConfirmed
	order.Subtotal = subtotal
	order.Total = subtotal
	return order, ref
}

func TestFirstTryWinGrantsDiscount(t *testing.T) {
	db := setupDB(t)
	svc := NewGameService(db)
	order, ref := gameOrder(t, db, 50)

	result, err := svc.Record(context.Background(), GameAttempt{
		OrderID: order.ID, Customer: ref, GameType: models.GameMemory, Won: true, Attempt: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, 10.0, result.Discount)

	var got models.Order
	require.NoError(t, db.First(&got, order.ID).Error)
	assert.Equal(t, 10.0, got.Discount)
	assert.Equal(t, 40.0, got.Total)
}

func TestReflexPaysDouble(t *testing.T) {
	db := setupDB(t)
	svc := NewGameService(db)
	order, ref := gameOrder(t, db, 50)

	result, err := svc.Record(context.Background(), GameAttempt{
		OrderID: order.ID, Customer: ref, GameType: models.GameReflex, Won: true, Attempt: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, 20.0, result.Discount)

	var got models.Order
	require.NoError(t, db.First(&got, order.ID).Error)
	assert.Equal(t, 30.0, got.Total)
}

func TestLossIsFinalEvenIfReplayed(t *testing.T) {
	db := setupDB(t)
	svc := NewGameService(db)
	order, ref := gameOrder(t, db, 50)

	lost, err := svc.Record(context.Background(), GameAttempt{
		OrderID: order.ID, Customer: ref, GameType: models.GameQuiz, Won: false, Attempt: 1,
	})
	require.NoError(t, err)
	assert.Zero(t, lost.Discount)

	// Re-entering the games screen and "winning on attempt 1" again must
	// not grant anything: eligibility reads stored rows, not client state.
	replay, err := svc.Record(context.Background(), GameAttempt{
		OrderID: order.ID, Customer: ref, GameType: models.GameQuiz, Won: true, Attempt: 1,
	})
	require.NoError(t, err)
	assert.Zero(t, replay.Discount)

	var results int64
	require.NoError(t, db.Model(&models.GameResult{}).Where("order_id = ?", order.ID).Count(&results).Error)
	assert.EqualValues(t, 2, results, "every attempt is recorded either way")

	var got models.Order
	require.NoError(t, db.First(&got, order.ID).Error)
	assert.Zero(t, got.Discount)
	assert.Equal(t, 50.0, got.Total)
}

func TestGrantSkippedWhenDiscountAlreadyLanded(t *testing.T) {
	db := setupDB(t)
	svc := NewGameService(db)
	order, ref := gameOrder(t, db, 50)

	// Another eligible attempt applied its discount between our eligibility
	// read and the write. The guarded update must leave the order alone and
	// the attempt must still be recorded, without a discount of its own.
	require.NoError(t, db.Model(&models.Order{}).Where("id = ?", order.ID).
		Updates(map[string]interface{}{"discount": 10.0, "total": 40.0}).Error)

	result, err := svc.Record(context.Background(), GameAttempt{
		OrderID: order.ID, Customer: ref, GameType: models.GameReflex, Won: true, Attempt: 1,
	})
	require.NoError(t, err)
	assert.Zero(t, result.Discount)

	var got models.Order
	require.NoError(t, db.First(&got, order.ID).Error)
	assert.Equal(t, 10.0, got.Discount, "the earlier grant stands")
	assert.Equal(t, 40.0, got.Total)

	var results int64
	require.NoError(t, db.Model(&models.GameResult{}).Where("order_id = ?", order.ID).Count(&results).Error)
	assert.EqualValues(t, 1, results)
}

func TestPaidOrderRecordsAttemptWithoutDiscount(t *testing.T) {
	db := setupDB(t)
	svc := NewGameService(db)
	order, ref := gameOrder(t, db, 50)

	require.NoError(t, db.Model(&models.Order{}).Where("id = ?", order.ID).
		Update("status", models.OrderPaid).Error)

	result, err := svc.Record(context.Background(), GameAttempt{
		OrderID: order.ID, Customer: ref, GameType: models.GameMemory, Won: true, Attempt: 1,
	})
	require.NoError(t, err)
	assert.Zero(t, result.Discount)

	var got models.Order
	require.NoError(t, db.First(&got, order.ID).Error)
	assert.Zero(t, got.Discount)
	assert.Equal(t, 50.0, got.Total)
}

func TestWinOnSecondTryGetsNothing(t *testing.T) {
	db := setupDB(t)
	svc := NewGameService(db)
	order, ref := gameOrder(t, db, 50)

	result, err := svc.Record(context.Background(), GameAttempt{
		OrderID: order.ID, Customer: ref, GameType: models.GameMath, Won: true, Attempt: 2,
	})
	require.NoError(t, err)
	assert.Zero(t, result.Discount)
}

func TestRecordValidation(t *testing.T) {
	db := setupDB(t)
	svc := NewGameService(db)
	order, ref := gameOrder(t, db, 50)

	_, err := svc.Record(context.Background(), GameAttempt{
		OrderID: order.ID, Customer: ref, GameType: "poker", Won: true, Attempt: 1,
	})
	assert.True(t, utils.IsValidation(err), "unknown game")

	_, err = svc.Record(context.Background(), GameAttempt{
		OrderID: order.ID, Customer: ref, GameType: models.GameMath, Won: true, Attempt: 0,
	})
	assert.True(t, utils.IsValidation(err), "attempt below 1")

	stranger := seedCustomer(t, db, "stranger")
	_, err = svc.Record(context.Background(), GameAttempt{
		OrderID: order.ID, Customer: models.RegisteredRef(stranger.ID), GameType: models.GameMath, Won: true, Attempt: 1,
	})
	assert.True(t, utils.IsValidation(err), "not their order")
}

func TestPrior(t *testing.T) {
	db := setupDB(t)
	svc := NewGameService(db)
	order, ref := gameOrder(t, db, 50)

	prior, err := svc.Prior(context.Background(), order.ID, ref)
	require.NoError(t, err)
	assert.Nil(t, prior)

	_, err = svc.Record(context.Background(), GameAttempt{
		OrderID: order.ID, Customer: ref, GameType: models.GameMemory, Won: false, Attempt: 1,
	})
	require.NoError(t, err)

	prior, err = svc.Prior(context.Background(), order.ID, ref)
	require.NoError(t, err)
	require.NotNil(t, prior)
	assert.Equal(t, models.GameMemory, prior.GameType)
}

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

func newAssignmentService(db *gorm.DB) *AssignmentService {
	notifier := NewNotifier(db)
	return NewAssignmentService(db, notifier, NewOrderService(db, notifier))
}

func TestRegisterWalkIn(t *testing.T) {
	db := setupDB(t)
	svc := newAssignmentService(db)

	anon, entry, err := svc.RegisterWalkIn(context.Background(), "Marta")
	require.NoError(t, err)
	assert.Equal(t, "Marta", anon.Name)
	assert.NotEmpty(t, anon.SessionKey)
	assert.Equal(t, models.WaitlistWaiting, entry.Status)
	assert.Equal(t, models.AnonymousRef(anon.ID), entry.CustomerRef())

	// Each walk-in gets its own session.
	anon2, _, err := svc.RegisterWalkIn(context.Background(), "Marta")
	require.NoError(t, err)
	assert.NotEqual(t, anon.SessionKey, anon2.SessionKey)

	_, _, err = svc.RegisterWalkIn(context.Background(), "")
	assert.True(t, utils.IsValidation(err))
}

func TestJoinWaitlistOncePerCustomer(t *testing.T) {
	db := setupDB(t)
	svc := newAssignmentService(db)
	customer := seedCustomer(t, db, "nico")
	ref := models.RegisteredRef(customer.ID)

	entry, err := svc.JoinWaitlist(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, models.WaitlistWaiting, entry.Status)

	_, err = svc.JoinWaitlist(context.Background(), ref)
	assert.True(t, utils.IsConflict(err), "already waiting")
}

func TestWaitingIsOldestFirst(t *testing.T) {
	db := setupDB(t)
	svc := newAssignmentService(db)

	first, _, err := svc.RegisterWalkIn(context.Background(), "first")
	require.NoError(t, err)
	_, _, err = svc.RegisterWalkIn(context.Background(), "second")
	require.NoError(t, err)

	entries, err := svc.Waiting(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.AnonymousRef(first.ID), entries[0].CustomerRef())
}

func TestAssignTable(t *testing.T) {
	db := setupDB(t)
	svc := newAssignmentService(db)
	table := seedTable(t, db, 5)
	_, maitre := seedStaff(t, db, models.RoleMaitre)

	anon, _, err := svc.RegisterWalkIn(context.Background(), "Marta")
	require.NoError(t, err)
	ref := models.AnonymousRef(anon.ID)

	order, err := svc.AssignTable(context.Background(), maitre, 5, ref)
	require.NoError(t, err)

	// One transaction seats the customer: order pending on the table,
	// table occupied, wait-list entry attended.
	assert.Equal(t, models.OrderPending, order.Status)
	assert.Equal(t, models.ChannelDineIn, order.Channel)
	require.NotNil(t, order.TableID)
	assert.Equal(t, table.ID, *order.TableID)

	var got models.Table
	require.NoError(t, db.First(&got, table.ID).Error)
	assert.Equal(t, models.TableOccupied, got.Status)

	var entry models.WaitlistEntry
	require.NoError(t, db.Where("anonymous_id = ?", anon.ID).First(&entry).Error)
	assert.Equal(t, models.WaitlistAttended, entry.Status)

	assert.EqualValues(t, 1, countNotifications(t, db, models.NotifTableAssigned))
}

func TestAssignTableOccupiedLeavesNoTrace(t *testing.T) {
	db := setupDB(t)
	svc := newAssignmentService(db)
	seedTable(t, db, 5)
	_, maitre := seedStaff(t, db, models.RoleMaitre)

	first, _, err := svc.RegisterWalkIn(context.Background(), "first")
	require.NoError(t, err)
	second, _, err := svc.RegisterWalkIn(context.Background(), "second")
	require.NoError(t, err)

	_, err = svc.AssignTable(context.Background(), maitre, 5, models.AnonymousRef(first.ID))
	require.NoError(t, err)

	_, err = svc.AssignTable(context.Background(), maitre, 5, models.AnonymousRef(second.ID))
	assert.True(t, utils.IsConflict(err))

	// The failed assignment rolled back completely: no second order, and
	// the second customer is still waiting.
	var orders int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orders).Error)
	assert.EqualValues(t, 1, orders)

	var entry models.WaitlistEntry
	require.NoError(t, db.Where("anonymous_id = ?", second.ID).First(&entry).Error)
	assert.Equal(t, models.WaitlistWaiting, entry.Status)
}

func TestAssignTableGuards(t *testing.T) {
	db := setupDB(t)
	svc := newAssignmentService(db)
	seedTable(t, db, 5)
	seedTable(t, db, 6)
	_, maitre := seedStaff(t, db, models.RoleMaitre)
	_, chef := seedStaff(t, db, models.RoleChef)

	anon, _, err := svc.RegisterWalkIn(context.Background(), "Marta")
	require.NoError(t, err)
	ref := models.AnonymousRef(anon.ID)

	_, err = svc.AssignTable(context.Background(), chef, 5, ref)
	assert.True(t, utils.IsValidation(err), "chefs do not seat customers")

	_, err = svc.AssignTable(context.Background(), maitre, 99, ref)
	assert.True(t, utils.IsValidation(err), "unknown table")

	_, err = svc.AssignTable(context.Background(), maitre, 5, models.CustomerRef{})
	assert.True(t, utils.IsValidation(err), "missing customer")

	// A seated customer cannot be seated twice.
	_, err = svc.AssignTable(context.Background(), maitre, 5, ref)
	require.NoError(t, err)
	_, err = svc.AssignTable(context.Background(), maitre, 6, ref)
	assert.True(t, utils.IsConflict(err))
}

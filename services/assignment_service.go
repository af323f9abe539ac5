package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yeremiapane/comanda-app/models"
	"github.com/yeremiapane/comanda-app/realtime"
	"github.com/yeremiapane/comanda-app/utils"
)

// AssignmentService owns the walk-in flow: wait-list registration and the
// composite table-assignment transition.
type AssignmentService struct {
	DB       *gorm.DB
	Notifier *Notifier
	Orders   *OrderService
}

func NewAssignmentService(db *gorm.DB, notifier *Notifier, orders *OrderService) *AssignmentService {
	return &AssignmentService{DB: db, Notifier: notifier, Orders: orders}
}

// RegisterWalkIn creates a session-scoped anonymous customer (entry QR
// scan) and puts them on the wait list.
func (s *AssignmentService) RegisterWalkIn(ctx context.Context, name string) (*models.AnonymousCustomer, *models.WaitlistEntry, error) {
	ctx, cancel := boundedCtx(ctx)
	defer cancel()

	if name == "" {
		return nil, nil, utils.Validationf("a name is required")
	}

	anon := models.AnonymousCustomer{
		Name:       name,
		SessionKey: uuid.NewString(),
	}
	entry := models.WaitlistEntry{
		Status:   models.WaitlistWaiting,
		JoinedAt: time.Now(),
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&anon).Error; err != nil {
			return utils.Persistence("create anonymous customer", err)
		}
		if err := entry.SetCustomerRef(models.AnonymousRef(anon.ID)); err != nil {
			return utils.Validationf("%v", err)
		}
		if err := tx.Create(&entry).Error; err != nil {
			return utils.Persistence("create wait-list entry", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	realtime.BroadcastWaitlistUpdate(entry)
	return &anon, &entry, nil
}

// JoinWaitlist adds a registered customer to the wait list.
func (s *AssignmentService) JoinWaitlist(ctx context.Context, ref models.CustomerRef) (*models.WaitlistEntry, error) {
	ctx, cancel := boundedCtx(ctx)
	defer cancel()

	var count int64
	err := refScope(s.DB.WithContext(ctx).Model(&models.WaitlistEntry{}), ref).
		Where("status = ?", models.WaitlistWaiting).
		Count(&count).Error
	if err != nil {
		return nil, utils.Persistence("check wait list", err)
	}
	if count > 0 {
		return nil, utils.Conflictf("customer is already on the wait list")
	}

	entry := models.WaitlistEntry{
		Status:   models.WaitlistWaiting,
		JoinedAt: time.Now(),
	}
	if err := entry.SetCustomerRef(ref); err != nil {
		return nil, utils.Validationf("%v", err)
	}
	if err := s.DB.WithContext(ctx).Create(&entry).Error; err != nil {
		return nil, utils.Persistence("create wait-list entry", err)
	}

	realtime.BroadcastWaitlistUpdate(entry)
	return &entry, nil
}

// Waiting lists wait-list entries still to be attended, oldest first.
func (s *AssignmentService) Waiting(ctx context.Context) ([]models.WaitlistEntry, error) {
	ctx, cancel := boundedCtx(ctx)
	defer cancel()

	var entries []models.WaitlistEntry
	err := s.DB.WithContext(ctx).
		Preload("Customer").Preload("Anonymous").
		Where("status = ?", models.WaitlistWaiting).
		Order("joined_at asc").
		Find(&entries).Error
	if err != nil {
		return nil, utils.Persistence("list wait list", err)
	}
	return entries, nil
}

// AssignTable seats a waiting customer: it creates their order in pending,
// marks the table occupied and the wait-list entry attended, all in one
// transaction — a failure anywhere leaves no occupied table without an
// order — then notifies the customer.
func (s *AssignmentService) AssignTable(ctx context.Context, actor Actor, tableNumber int, ref models.CustomerRef) (*models.Order, error) {
	ctx, cancel := boundedCtx(ctx)
	defer cancel()

	if !actor.CanAssignTables() {
		return nil, utils.Validationf("role %s may not assign tables", actor.Role)
	}
	if ref.IsZero() {
		return nil, utils.Validationf("a customer is required")
	}

	var table models.Table
	var order models.Order

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("number = ?", tableNumber).First(&table).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return utils.Validationf("table %d does not exist", tableNumber)
			}
			return utils.Persistence("load table", err)
		}
		if table.Status == models.TableOccupied {
			return utils.Conflictf("table %d is already occupied", tableNumber)
		}

		var active int64
		err := refScope(tx.Model(&models.Order{}), ref).
			Where("status IN ?", models.ActiveOrderStatuses).
			Count(&active).Error
		if err != nil {
			return utils.Persistence("check active orders", err)
		}
		if active > 0 {
			return utils.Conflictf("customer is already assigned to an active order")
		}

		order = models.Order{
			TableID: &table.ID,
			Channel: models.ChannelDineIn,
			Status:  models.OrderPending,
		}
		if err := order.SetCustomerRef(ref); err != nil {
			return utils.Validationf("%v", err)
		}
		if err := tx.Create(&order).Error; err != nil {
			return utils.Persistence("create order", err)
		}

		// Guarded flip: if another staff member grabbed the table between
		// our read and this write, the whole assignment rolls back.
		res := tx.Model(&models.Table{}).
			Where("id = ? AND status = ?", table.ID, models.TableFree).
			Updates(map[string]interface{}{"status": models.TableOccupied, "updated_at": time.Now()})
		if res.Error != nil {
			return utils.Persistence("occupy table", res.Error)
		}
		if res.RowsAffected == 0 {
			return utils.Conflictf("table %d is already occupied", tableNumber)
		}

		if err := refScope(tx.Model(&models.WaitlistEntry{}), ref).
			Where("status = ?", models.WaitlistWaiting).
			Updates(map[string]interface{}{"status": models.WaitlistAttended, "updated_at": time.Now()}).Error; err != nil {
			return utils.Persistence("mark wait-list entry attended", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	table.Status = models.TableOccupied
	order.Table = &table

	s.Notifier.SendToCustomer(ref,
		models.NotifTableAssigned,
		"Table assigned",
		fmt.Sprintf("Your table is number %d. Follow the staff, please!", table.Number),
		map[string]interface{}{"order_id": order.ID, "table_number": table.Number},
	)
	realtime.BroadcastTableUpdate(table)
	realtime.BroadcastOrderUpdate(order)
	return &order, nil
}

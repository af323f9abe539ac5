package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/yeremiapane/comanda-app/engine"
	"github.com/yeremiapane/comanda-app/models"
	"github.com/yeremiapane/comanda-app/realtime"
	"github.com/yeremiapane/comanda-app/utils"
)

type OrderService struct {
	DB       *gorm.DB
	Notifier *Notifier
}

func NewOrderService(db *gorm.DB, notifier *Notifier) *OrderService {
	return &OrderService{DB: db, Notifier: notifier}
}

// ItemInput is one cart line as submitted by a client.
type ItemInput struct {
	MenuID   uint `json:"menu_id" binding:"required"`
	Quantity int  `json:"quantity" binding:"required"`
}

func orderInfo(o *models.Order) engine.OrderInfo {
	info := engine.OrderInfo{ID: o.ID, Channel: o.Channel, Total: o.Total}
	if o.Table != nil {
		info.TableNumber = o.Table.Number
	}
	return info
}

// PlaceOrder submits (or resubmits) a cart for the customer's current
// dine-in order. A resubmission while the order is still pending/placed
// replaces every previous line item: old lines are deleted and the new set
// inserted in the same transaction, so a failure anywhere leaves the prior
// cart intact.
func (s *OrderService) PlaceOrder(ctx context.Context, ref models.CustomerRef, items []ItemInput) (*models.Order, error) {
	ctx, cancel := boundedCtx(ctx)
	defer cancel()

	if err := validateItems(items); err != nil {
		return nil, err
	}

	var order models.Order
	err := refScope(s.DB.WithContext(ctx).Preload("Table"), ref).
		Where("status IN ?", []models.OrderStatus{models.OrderPending, models.OrderPlaced}).
		First(&order).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.Validationf("no open order for this customer; ask staff for a table first")
		}
		return nil, utils.Persistence("find open order", err)
	}

	prev := order.Status
	if _, err := engine.Next(prev, engine.Event{Type: engine.EventSubmit}); err != nil {
		return nil, err
	}
	resubmit := prev == models.OrderPlaced

	lines, subtotal, err := s.buildLines(ctx, order.ID, items)
	if err != nil {
		return nil, err
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order.Status = models.OrderPlaced
		order.Subtotal = subtotal
		order.ComputeTotal()

		// Guarded against a concurrent confirm: the order must still be in
		// the state we read it in.
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, prev).
			Updates(map[string]interface{}{
				"status":     order.Status,
				"subtotal":   order.Subtotal,
				"total":      order.Total,
				"updated_at": time.Now(),
			})
		if res.Error != nil {
			return utils.Persistence("update order", res.Error)
		}
		if res.RowsAffected == 0 {
			return utils.Conflictf("order #%d changed state while submitting; refresh and retry", order.ID)
		}

		if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
			return utils.Persistence("replace line items", err)
		}
		if err := tx.Create(&lines).Error; err != nil {
			return utils.Persistence("insert line items", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	order.Items = lines
	s.Notifier.Dispatch(&order, engine.Intents(engine.Event{Type: engine.EventSubmit}, orderInfo(&order), resubmit))
	realtime.BroadcastOrderUpdate(order)
	return &order, nil
}

// PlaceDeliveryOrder creates a delivery-channel order directly in placed:
// there is no table assignment step and nothing to release on payment.
func (s *OrderService) PlaceDeliveryOrder(ctx context.Context, ref models.CustomerRef, address string, items []ItemInput) (*models.Order, error) {
	ctx, cancel := boundedCtx(ctx)
	defer cancel()

	if address == "" {
		return nil, utils.Validationf("a delivery address is required")
	}
	if err := validateItems(items); err != nil {
		return nil, err
	}
	if active, err := s.FindActiveOrderForCustomer(ctx, ref); err != nil {
		return nil, err
	} else if active != nil {
		return nil, utils.Conflictf("customer already has an active order (#%d)", active.ID)
	}

	order := models.Order{
		Channel:         models.ChannelDelivery,
		Status:          models.OrderPlaced,
		ShippingAddress: address,
	}
	if err := order.SetCustomerRef(ref); err != nil {
		return nil, utils.Validationf("%v", err)
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return utils.Persistence("create delivery order", err)
		}
		lines, subtotal, err := s.buildLines(ctx, order.ID, items)
		if err != nil {
			return err
		}
		if err := tx.Create(&lines).Error; err != nil {
			return utils.Persistence("insert line items", err)
		}
		order.Items = lines
		order.Subtotal = subtotal
		order.ComputeTotal()
		return tx.Model(&order).
			Updates(map[string]interface{}{"subtotal": order.Subtotal, "total": order.Total}).Error
	})
	if err != nil {
		return nil, err
	}

	s.Notifier.Dispatch(&order, engine.Intents(engine.Event{Type: engine.EventSubmit}, orderInfo(&order), false))
	realtime.BroadcastOrderUpdate(order)
	return &order, nil
}

// Confirm moves a placed order to confirmed (staff accepted it).
func (s *OrderService) Confirm(ctx context.Context, actor Actor, orderID uint) (*models.Order, error) {
	return s.transition(ctx, actor, orderID, engine.Event{Type: engine.EventConfirm})
}

// Reject returns a placed order to pending with a reason the customer sees
// before resubmitting.
func (s *OrderService) Reject(ctx context.Context, actor Actor, orderID uint, reason string) (*models.Order, error) {
	return s.transition(ctx, actor, orderID, engine.Event{Type: engine.EventReject, Reason: reason})
}

// Deliver marks a ready order delivered (or dispatched, for delivery).
func (s *OrderService) Deliver(ctx context.Context, actor Actor, orderID uint) (*models.Order, error) {
	return s.transition(ctx, actor, orderID, engine.Event{Type: engine.EventDeliver})
}

// Pay settles a delivered order. For dine-in the table is released in the
// same transaction; delivery orders have no table to free.
func (s *OrderService) Pay(ctx context.Context, actor Actor, orderID uint) (*models.Order, error) {
	return s.transition(ctx, actor, orderID, engine.Event{Type: engine.EventPay})
}

func (s *OrderService) transition(ctx context.Context, actor Actor, orderID uint, ev engine.Event) (*models.Order, error) {
	ctx, cancel := boundedCtx(ctx)
	defer cancel()

	if !actor.CanManageOrders() {
		return nil, utils.Validationf("role %s may not %s orders", actor.Role, ev.Type)
	}

	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	next, err := engine.Next(order.Status, ev)
	if err != nil {
		return nil, err
	}
	prev := order.Status

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, prev).
			Updates(map[string]interface{}{"status": next, "updated_at": time.Now()})
		if res.Error != nil {
			return utils.Persistence("update order status", res.Error)
		}
		if res.RowsAffected == 0 {
			return utils.Conflictf("order #%d is no longer %s; refresh and retry", order.ID, prev)
		}

		if ev.Type == engine.EventPay && order.Channel == models.ChannelDineIn {
			if order.TableID == nil {
				return utils.Validationf("dine-in order #%d has no table", order.ID)
			}
			res := tx.Model(&models.Table{}).
				Where("id = ? AND status = ?", *order.TableID, models.TableOccupied).
				Updates(map[string]interface{}{"status": models.TableFree, "updated_at": time.Now()})
			if res.Error != nil {
				return utils.Persistence("release table", res.Error)
			}
			if res.RowsAffected == 0 {
				return utils.Conflictf("table for order #%d is not occupied", order.ID)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	order.Status = next
	s.Notifier.Dispatch(order, engine.Intents(ev, orderInfo(order), false))
	realtime.BroadcastOrderUpdate(*order)
	if ev.Type == engine.EventPay && order.Table != nil {
		order.Table.Status = models.TableFree
		realtime.BroadcastTableUpdate(*order.Table)
	}
	return order, nil
}

// StartItem marks a line item as in preparation. Re-applying it to an item
// already preparing is a no-op so sector screens can be sloppy about
// duplicate taps and replayed realtime events.
func (s *OrderService) StartItem(ctx context.Context, actor Actor, itemID uint) (*models.OrderItem, error) {
	ctx, cancel := boundedCtx(ctx)
	defer cancel()

	item, order, err := s.loadItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !actor.CanWorkSector(item.Sector()) {
		return nil, utils.Validationf("role %s does not staff the %s", actor.Role, item.Sector())
	}
	if _, err := engine.Next(order.Status, engine.Event{Type: engine.EventItemStart}); err != nil {
		return nil, err
	}
	if _, err := engine.NextItem(item.Status, engine.EventItemStart); err != nil {
		return nil, err
	}
	if item.Status == models.ItemPreparing {
		return item, nil
	}

	flipped := false
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.OrderItem{}).
			Where("id = ? AND status = ?", item.ID, models.ItemPending).
			Updates(map[string]interface{}{"status": models.ItemPreparing, "updated_at": time.Now()})
		if res.Error != nil {
			return utils.Persistence("update line item", res.Error)
		}
		// Zero rows means another station already started it; that is the
		// idempotent success case, not a conflict.
		if res.RowsAffected == 0 {
			return nil
		}

		if order.Status == models.OrderConfirmed {
			r := tx.Model(&models.Order{}).
				Where("id = ? AND status = ?", order.ID, models.OrderConfirmed).
				Updates(map[string]interface{}{"status": models.OrderPreparing, "updated_at": time.Now()})
			if r.Error != nil {
				return utils.Persistence("advance order to preparing", r.Error)
			}
			flipped = r.RowsAffected > 0
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	item.Status = models.ItemPreparing
	if flipped {
		order.Status = models.OrderPreparing
		s.Notifier.Dispatch(order, []engine.Intent{engine.PreparingIntent()})
		realtime.BroadcastOrderUpdate(*order)
	}
	return item, nil
}

// FinishItem marks a line item ready and re-derives the parent order's
// state: the order flips to ready exactly when its last item does.
func (s *OrderService) FinishItem(ctx context.Context, actor Actor, itemID uint) (*models.OrderItem, error) {
	ctx, cancel := boundedCtx(ctx)
	defer cancel()

	item, order, err := s.loadItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !actor.CanWorkSector(item.Sector()) {
		return nil, utils.Validationf("role %s does not staff the %s", actor.Role, item.Sector())
	}
	if _, err := engine.Next(order.Status, engine.Event{Type: engine.EventItemFinish}); err != nil {
		return nil, err
	}
	if _, err := engine.NextItem(item.Status, engine.EventItemFinish); err != nil {
		return nil, err
	}

	agg := order.Status
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.OrderItem{}).
			Where("id = ? AND status <> ?", item.ID, models.ItemReady).
			Updates(map[string]interface{}{"status": models.ItemReady, "updated_at": time.Now()})
		if res.Error != nil {
			return utils.Persistence("update line item", res.Error)
		}
		if res.RowsAffected == 0 {
			return utils.Conflictf("item #%d is already ready", item.ID)
		}

		var statuses []models.ItemStatus
		if err := tx.Model(&models.OrderItem{}).
			Where("order_id = ?", order.ID).
			Pluck("status", &statuses).Error; err != nil {
			return utils.Persistence("load sibling items", err)
		}

		agg = engine.Aggregate(statuses)
		if agg != order.Status {
			r := tx.Model(&models.Order{}).
				Where("id = ? AND status IN ?", order.ID,
					[]models.OrderStatus{models.OrderConfirmed, models.OrderPreparing}).
				Updates(map[string]interface{}{"status": agg, "updated_at": time.Now()})
			if r.Error != nil {
				return utils.Persistence("aggregate order status", r.Error)
			}
			if r.RowsAffected == 0 {
				return utils.Conflictf("order #%d changed state during aggregation", order.ID)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	prev := order.Status
	item.Status = models.ItemReady
	order.Status = agg

	intents := []engine.Intent{engine.ItemReadyIntent(orderInfo(order), item.Menu.Name)}
	if agg == models.OrderReady {
		intents = append(intents, engine.OrderReadyIntents(orderInfo(order))...)
	} else if agg == models.OrderPreparing && prev == models.OrderConfirmed {
		intents = append(intents, engine.PreparingIntent())
	}
	s.Notifier.Dispatch(order, intents)
	realtime.BroadcastOrderUpdate(*order)
	return item, nil
}

// SectorQueue lists the line items a preparation station still owes:
// items of accepted orders that are not yet ready, oldest first.
func (s *OrderService) SectorQueue(ctx context.Context, actor Actor, sector models.Sector) ([]models.OrderItem, error) {
	ctx, cancel := boundedCtx(ctx)
	defer cancel()

	if !actor.CanWorkSector(sector) {
		return nil, utils.Validationf("role %s does not staff the %s", actor.Role, sector)
	}

	var items []models.OrderItem
	err := s.DB.WithContext(ctx).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.status IN ?", []models.OrderStatus{models.OrderConfirmed, models.OrderPreparing}).
		Where("order_items.status <> ?", models.ItemReady).
		Where("order_items.category IN ?", sector.Categories()).
		Preload("Menu").
		Order("order_items.created_at asc").
		Find(&items).Error
	if err != nil {
		return nil, utils.Persistence("load sector queue", err)
	}
	return items, nil
}

// RequestBill records the tip, recomputes the clamped total and notifies
// staff. The order stays delivered until payment settles.
func (s *OrderService) RequestBill(ctx context.Context, ref models.CustomerRef, orderID uint, tip float64) (*models.Order, error) {
	ctx, cancel := boundedCtx(ctx)
	defer cancel()

	if tip < 0 {
		return nil, utils.Validationf("tip cannot be negative")
	}

	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.CustomerRef() != ref {
		return nil, utils.Validationf("order #%d does not belong to this customer", orderID)
	}
	if order.Status != models.OrderDelivered {
		return nil, utils.Validationf("the bill can only be requested once the order is delivered, not %s", order.Status)
	}

	order.Tip = tip
	order.ComputeTotal()
	res := s.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", order.ID, models.OrderDelivered).
		Updates(map[string]interface{}{"tip": order.Tip, "total": order.Total, "updated_at": time.Now()})
	if res.Error != nil {
		return nil, utils.Persistence("record bill request", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, utils.Conflictf("order #%d is no longer delivered; refresh and retry", order.ID)
	}

	s.Notifier.Dispatch(order, engine.BillRequestIntents(orderInfo(order), tip))
	realtime.BroadcastOrderUpdate(*order)
	return order, nil
}

func (s *OrderService) GetOrder(ctx context.Context, orderID uint) (*models.Order, error) {
	var order models.Order
	err := s.DB.WithContext(ctx).
		Preload("Items").Preload("Items.Menu").Preload("Table").
		First(&order, orderID).Error
	if err != nil {
		return nil, notFound("order", err)
	}
	return &order, nil
}

func (s *OrderService) ListByStatus(ctx context.Context, statuses []models.OrderStatus) ([]models.Order, error) {
	ctx, cancel := boundedCtx(ctx)
	defer cancel()

	var orders []models.Order
	err := s.DB.WithContext(ctx).
		Preload("Items").Preload("Items.Menu").Preload("Table").
		Where("status IN ?", statuses).
		Order("created_at asc").
		Find(&orders).Error
	if err != nil {
		return nil, utils.Persistence("list orders", err)
	}
	return orders, nil
}

// FindActiveOrderForTable returns the table's unpaid order, if any.
func (s *OrderService) FindActiveOrderForTable(ctx context.Context, tableID uint) (*models.Order, error) {
	var order models.Order
	err := s.DB.WithContext(ctx).
		Preload("Items").Preload("Table").
		Where("table_id = ? AND status IN ?", tableID, models.ActiveOrderStatuses).
		Order("created_at desc").
		First(&order).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, utils.Persistence("find active order for table", err)
	}
	return &order, nil
}

// FindActiveOrderForCustomer returns the customer's unpaid order, if any.
func (s *OrderService) FindActiveOrderForCustomer(ctx context.Context, ref models.CustomerRef) (*models.Order, error) {
	var order models.Order
	err := refScope(s.DB.WithContext(ctx).Preload("Items").Preload("Table"), ref).
		Where("status IN ?", models.ActiveOrderStatuses).
		Order("created_at desc").
		First(&order).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, utils.Persistence("find active order for customer", err)
	}
	return &order, nil
}

func (s *OrderService) loadItem(ctx context.Context, itemID uint) (*models.OrderItem, *models.Order, error) {
	var item models.OrderItem
	if err := s.DB.WithContext(ctx).Preload("Menu").First(&item, itemID).Error; err != nil {
		return nil, nil, notFound("line item", err)
	}
	order, err := s.GetOrder(ctx, item.OrderID)
	if err != nil {
		return nil, nil, err
	}
	return &item, order, nil
}

func (s *OrderService) buildLines(ctx context.Context, orderID uint, items []ItemInput) ([]models.OrderItem, float64, error) {
	lines := make([]models.OrderItem, 0, len(items))
	var subtotal float64
	for _, in := range items {
		var menu models.Menu
		if err := s.DB.WithContext(ctx).Where("active = ?", true).First(&menu, in.MenuID).Error; err != nil {
			return nil, 0, notFound("menu item", err)
		}
		lines = append(lines, models.OrderItem{
			OrderID:   orderID,
			MenuID:    menu.ID,
			Quantity:  in.Quantity,
			UnitPrice: menu.Price,
			Category:  menu.Category,
			Status:    models.ItemPending,
		})
		subtotal += float64(in.Quantity) * menu.Price
	}
	return lines, subtotal, nil
}

func validateItems(items []ItemInput) error {
	if len(items) == 0 {
		return utils.Validationf("the cart is empty")
	}
	for _, in := range items {
		if in.Quantity <= 0 {
			return utils.Validationf("quantity must be positive")
		}
	}
	return nil
}

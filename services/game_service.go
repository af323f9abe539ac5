package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/yeremiapane/comanda-app/models"
	"github.com/yeremiapane/comanda-app/utils"
)

// GameService records mini-game attempts and applies the one-time discount.
type GameService struct {
	DB *gorm.DB
}

func NewGameService(db *gorm.DB) *GameService {
	return &GameService{DB: db}
}

// GameAttempt is one finished play reported by a game screen.
type GameAttempt struct {
	OrderID  uint
	Customer models.CustomerRef
	GameType models.GameType
	Won      bool
	Attempt  int
}

// Record stores the attempt and grants the discount only when this is the
// very first recorded attempt for the (order, customer) pair AND the game
// was won on try one. Eligibility is checked against stored rows, not a
// client flag: re-entering the games screen cannot reset it. The grant
// itself is a guarded write on the order (discount still zero, not yet
// paid), so concurrent eligible attempts cannot both land a discount.
// Every attempt is recorded either way.
func (s *GameService) Record(ctx context.Context, at GameAttempt) (*models.GameResult, error) {
	ctx, cancel := boundedCtx(ctx)
	defer cancel()

	if !at.GameType.Valid() {
		return nil, utils.Validationf("unknown game type %q", at.GameType)
	}
	if at.Attempt < 1 {
		return nil, utils.Validationf("attempt number must be at least 1")
	}

	var order models.Order
	if err := s.DB.WithContext(ctx).First(&order, at.OrderID).Error; err != nil {
		return nil, notFound("order", err)
	}
	if order.CustomerRef() != at.Customer {
		return nil, utils.Validationf("order #%d does not belong to this customer", at.OrderID)
	}

	result := models.GameResult{
		OrderID:  at.OrderID,
		GameType: at.GameType,
		Won:      at.Won,
		Attempts: at.Attempt,
	}
	if err := result.SetCustomerRef(at.Customer); err != nil {
		return nil, utils.Validationf("%v", err)
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		prior, err := priorResult(tx, at.OrderID, at.Customer)
		if err != nil {
			return err
		}

		if prior == nil && at.Won && at.Attempt == 1 {
			order.Discount = at.GameType.DiscountValue()
			order.ComputeTotal()
			res := tx.Model(&models.Order{}).
				Where("id = ? AND status <> ? AND discount = 0", order.ID, models.OrderPaid).
				Updates(map[string]interface{}{"discount": order.Discount, "total": order.Total})
			if res.Error != nil {
				return utils.Persistence("apply discount", res.Error)
			}
			// A paid order, or a discount another attempt already landed,
			// leaves the row untouched: record the attempt without one.
			if res.RowsAffected > 0 {
				result.Discount = order.Discount
			}
		}

		if err := tx.Create(&result).Error; err != nil {
			return utils.Persistence("record game result", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Prior returns the first recorded attempt for the pair, or nil.
func (s *GameService) Prior(ctx context.Context, orderID uint, ref models.CustomerRef) (*models.GameResult, error) {
	ctx, cancel := boundedCtx(ctx)
	defer cancel()
	return priorResult(s.DB.WithContext(ctx), orderID, ref)
}

func priorResult(db *gorm.DB, orderID uint, ref models.CustomerRef) (*models.GameResult, error) {
	var prior models.GameResult
	err := refScope(db.Where("order_id = ?", orderID), ref).
		Order("created_at asc").
		First(&prior).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, utils.Persistence("load prior game result", err)
	}
	return &prior, nil
}

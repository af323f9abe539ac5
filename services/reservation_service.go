package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yeremiapane/comanda-app/models"
	"github.com/yeremiapane/comanda-app/utils"
)

type ReservationService struct {
	DB       *gorm.DB
	Notifier *Notifier
}

func NewReservationService(db *gorm.DB, notifier *Notifier) *ReservationService {
	return &ReservationService{DB: db, Notifier: notifier}
}

// Create books a reservation in pending, awaiting staff confirmation.
func (s *ReservationService) Create(ctx context.Context, ref models.CustomerRef, requestedAt time.Time, partySize int) (*models.Reservation, error) {
	ctx, cancel := boundedCtx(ctx)
	defer cancel()

	if partySize < 1 {
		return nil, utils.Validationf("party size must be at least 1")
	}
	if requestedAt.Before(time.Now()) {
		return nil, utils.Validationf("requested time is in the past")
	}

	res := models.Reservation{
		RequestedAt: requestedAt,
		PartySize:   partySize,
		Status:      models.ReservationPending,
	}
	if err := res.SetCustomerRef(ref); err != nil {
		return nil, utils.Validationf("%v", err)
	}
	if err := s.DB.WithContext(ctx).Create(&res).Error; err != nil {
		return nil, utils.Persistence("create reservation", err)
	}
	return &res, nil
}

// List sweeps expired holds first and only then returns what is still
// actionable: stale reservations are never shown as live.
func (s *ReservationService) List(ctx context.Context) ([]models.Reservation, error) {
	ctx, cancel := boundedCtx(ctx)
	defer cancel()

	if _, err := s.Sweep(ctx, time.Now()); err != nil {
		return nil, err
	}

	var list []models.Reservation
	err := s.DB.WithContext(ctx).
		Preload("Customer").Preload("Anonymous").
		Where("status IN ?", []models.ReservationStatus{models.ReservationPending, models.ReservationConfirmed}).
		Order("requested_at asc").
		Find(&list).Error
	if err != nil {
		return nil, utils.Persistence("list reservations", err)
	}
	return list, nil
}

// Sweep expires every pending/confirmed reservation whose hold window ran
// out at the given instant and returns the ones it touched.
func (s *ReservationService) Sweep(ctx context.Context, now time.Time) ([]models.Reservation, error) {
	cutoff := now.Add(-models.ReservationTolerance)

	var stale []models.Reservation
	err := s.DB.WithContext(ctx).
		Where("status IN ?", []models.ReservationStatus{models.ReservationPending, models.ReservationConfirmed}).
		Where("requested_at < ?", cutoff).
		Find(&stale).Error
	if err != nil {
		return nil, utils.Persistence("find stale reservations", err)
	}
	if len(stale) == 0 {
		return nil, nil
	}

	ids := make([]uint, len(stale))
	for i, r := range stale {
		ids[i] = r.ID
	}
	res := s.DB.WithContext(ctx).Model(&models.Reservation{}).
		Where("id IN ? AND status IN ?", ids,
			[]models.ReservationStatus{models.ReservationPending, models.ReservationConfirmed}).
		Updates(map[string]interface{}{"status": models.ReservationExpired, "updated_at": now})
	if res.Error != nil {
		return nil, utils.Persistence("expire reservations", res.Error)
	}
	for i := range stale {
		stale[i].Status = models.ReservationExpired
	}
	return stale, nil
}

// Confirm accepts a pending reservation and notifies the customer.
func (s *ReservationService) Confirm(ctx context.Context, actor Actor, id uint) (*models.Reservation, error) {
	return s.decide(ctx, actor, id, models.ReservationConfirmed, "")
}

// Reject declines a pending reservation with a required reason.
func (s *ReservationService) Reject(ctx context.Context, actor Actor, id uint, reason string) (*models.Reservation, error) {
	if reason == "" {
		return nil, utils.Validationf("a rejection reason is required")
	}
	return s.decide(ctx, actor, id, models.ReservationRejected, reason)
}

func (s *ReservationService) decide(ctx context.Context, actor Actor, id uint, to models.ReservationStatus, reason string) (*models.Reservation, error) {
	ctx, cancel := boundedCtx(ctx)
	defer cancel()

	if !actor.CanManageReservations() {
		return nil, utils.Validationf("role %s may not manage reservations", actor.Role)
	}

	var res models.Reservation
	if err := s.DB.WithContext(ctx).First(&res, id).Error; err != nil {
		return nil, notFound("reservation", err)
	}
	if res.Status == to {
		return nil, utils.Conflictf("reservation is already %s", to)
	}
	if res.Status != models.ReservationPending {
		return nil, utils.Validationf("only pending reservations can be %s, this one is %s", to, res.Status)
	}
	if res.ExpiredBy(time.Now()) {
		if _, err := s.Sweep(ctx, time.Now()); err != nil {
			return nil, err
		}
		return nil, utils.Conflictf("reservation already expired")
	}

	upd := s.DB.WithContext(ctx).Model(&models.Reservation{}).
		Where("id = ? AND status = ?", id, models.ReservationPending).
		Updates(map[string]interface{}{"status": to, "reason": reason, "updated_at": time.Now()})
	if upd.Error != nil {
		return nil, utils.Persistence("update reservation", upd.Error)
	}
	if upd.RowsAffected == 0 {
		return nil, utils.Conflictf("reservation changed state; refresh and retry")
	}

	res.Status = to
	res.Reason = reason
	title, msg := "Reservation confirmed", fmt.Sprintf("See you on %s, party of %d!", res.RequestedAt.Format("Mon 02 Jan 15:04"), res.PartySize)
	if to == models.ReservationRejected {
		title, msg = "Reservation rejected", fmt.Sprintf("We could not take your reservation: %s", reason)
	}
	s.Notifier.SendToCustomer(res.CustomerRef(), models.NotifReservation, title, msg,
		map[string]interface{}{"reservation_id": res.ID})
	return &res, nil
}

// Cancel lets the owner of a reservation withdraw it.
func (s *ReservationService) Cancel(ctx context.Context, ref models.CustomerRef, id uint) (*models.Reservation, error) {
	ctx, cancel := boundedCtx(ctx)
	defer cancel()

	var res models.Reservation
	if err := s.DB.WithContext(ctx).First(&res, id).Error; err != nil {
		return nil, notFound("reservation", err)
	}
	if res.CustomerRef() != ref {
		return nil, utils.Validationf("reservation #%d does not belong to this customer", id)
	}

	upd := s.DB.WithContext(ctx).Model(&models.Reservation{}).
		Where("id = ? AND status IN ?", id,
			[]models.ReservationStatus{models.ReservationPending, models.ReservationConfirmed}).
		Updates(map[string]interface{}{"status": models.ReservationCancelled, "updated_at": time.Now()})
	if upd.Error != nil {
		return nil, utils.Persistence("cancel reservation", upd.Error)
	}
	if upd.RowsAffected == 0 {
		return nil, utils.Conflictf("reservation can no longer be cancelled (status %s)", res.Status)
	}

	res.Status = models.ReservationCancelled
	return &res, nil
}

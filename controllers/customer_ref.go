package controllers

import (
	"github.com/yeremiapane/comanda-app/models"
	"github.com/yeremiapane/comanda-app/utils"
)

// CustomerRefReq is how clients identify themselves (or the customer they
// act on) in request bodies.
type CustomerRefReq struct {
	Kind string `json:"customer_kind" binding:"required"`
	ID   uint   `json:"customer_id" binding:"required"`
}

func (r CustomerRefReq) Ref() (models.CustomerRef, error) {
	switch models.CustomerKind(r.Kind) {
	case models.KindRegistered:
		return models.RegisteredRef(r.ID), nil
	case models.KindAnonymous:
		return models.AnonymousRef(r.ID), nil
	}
	return models.CustomerRef{}, utils.Validationf("customer_kind must be %q or %q", models.KindRegistered, models.KindAnonymous)
}

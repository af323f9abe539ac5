package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/comanda-app/models"
	"github.com/yeremiapane/comanda-app/services"
)

type CustomError struct {
	Message string
}

func (e *CustomError) Error() string {
	return e.Message
}

var ErrNoPermission = &CustomError{"You don't have permission to access this resource"}

// actorFrom rebuilds the acting staff member from the auth middleware's
// context values.
func actorFrom(c *gin.Context) services.Actor {
	var actor services.Actor
	if id, ok := c.Get("user_id"); ok {
		if uid, ok := id.(uint); ok {
			actor.ID = uid
		}
	}
	if role, ok := c.Get("role"); ok {
		if r, ok := role.(string); ok {
			actor.Role = models.Role(r)
		}
	}
	return actor
}

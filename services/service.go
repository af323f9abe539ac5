package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/yeremiapane/comanda-app/models"
	"github.com/yeremiapane/comanda-app/utils"
)

// Every call into the persistence layer is bounded: a hung store surfaces
// as a failed operation, never as a stuck client.
const defaultTimeout = 5 * time.Second

func boundedCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, defaultTimeout)
}

// refScope narrows a query to one customer identity, registered or
// anonymous.
func refScope(q *gorm.DB, ref models.CustomerRef) *gorm.DB {
	if ref.Kind == models.KindAnonymous {
		return q.Where("anonymous_id = ?", ref.ID)
	}
	return q.Where("customer_id = ?", ref.ID)
}

// ErrNotFound converts gorm's sentinel into the taxonomy.
func notFound(what string, err error) error {
	if err == gorm.ErrRecordNotFound {
		return utils.Validationf("%s not found", what)
	}
	return utils.Persistence("load "+what, err)
}

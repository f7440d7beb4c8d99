package purchase

import (
	"context"
	"errors"

	"mandi-backend/internal/apperr"
	"mandi-backend/internal/models"
	"mandi-backend/internal/store"
)

var newestFirst = []store.Order{store.Desc("purchase_date"), store.Desc("created_at")}

func (e *Engine) Get(ctx context.Context, id string) (*models.Purchase, error) {
	p, err := store.Get[models.Purchase](ctx, e.store, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("purchase %s not found", id)
	}
	return p, err
}

func (e *Engine) All(ctx context.Context) ([]models.Purchase, error) {
	return store.All[models.Purchase](ctx, e.store, newestFirst...)
}

func (e *Engine) ByDate(ctx context.Context, date string) ([]models.Purchase, error) {
	return store.WhereEquals[models.Purchase](ctx, e.store, "purchase_date", date, store.Desc("created_at"))
}

func (e *Engine) ByVendor(ctx context.Context, vendorID string) ([]models.Purchase, error) {
	return store.WhereEquals[models.Purchase](ctx, e.store, "vendor_id", vendorID, newestFirst...)
}

// ByRange returns purchases dated from..to inclusive.
func (e *Engine) ByRange(ctx context.Context, from, to string) ([]models.Purchase, error) {
	return store.WhereRange[models.Purchase](ctx, e.store, "purchase_date", from, to, newestFirst...)
}

type DateGroup struct {
	Date      string            `json:"date"`
	Purchases []models.Purchase `json:"purchases"`
}

// Pending returns unverified purchases grouped by purchase date, newest date
// first.
func (e *Engine) Pending(ctx context.Context) ([]DateGroup, error) {
	rows, err := store.WhereEquals[models.Purchase](ctx, e.store, "verification_status",
		models.VerificationPending, newestFirst...)
	if err != nil {
		return nil, err
	}
	return GroupByDate(rows), nil
}

// GroupByDate groups purchases that are already sorted by date, newest first.
func GroupByDate(rows []models.Purchase) []DateGroup {
	groups := []DateGroup{}
	for _, p := range rows {
		n := len(groups)
		if n > 0 && groups[n-1].Date == p.PurchaseDate {
			groups[n-1].Purchases = append(groups[n-1].Purchases, p)
			continue
		}
		groups = append(groups, DateGroup{Date: p.PurchaseDate, Purchases: []models.Purchase{p}})
	}
	return groups
}

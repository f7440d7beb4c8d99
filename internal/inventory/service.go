// Package inventory maintains the per-item stock projection. Stock moves only
// with verified purchases (+received weight) and sales (-quantity); Rebuild
// recomputes it from those records when the projection is in doubt.
package inventory

import (
	"context"
	"math"
	"sort"

	"mandi-backend/internal/models"
	"mandi-backend/internal/store"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Credit adds kg to the item's stock, creating the row on first delivery.
// Call it with the store of the transaction that made the stock change.
func Credit(ctx context.Context, tx *store.Store, item string, kg float64, date string) error {
	rows, err := store.WhereEquals[models.InventoryItem](ctx, tx, "item", item)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return store.Create(ctx, tx, &models.InventoryItem{
			Item:        item,
			TotalStock:  kg,
			LastUpdated: date,
		})
	}
	return store.Update[models.InventoryItem](ctx, tx, rows[0].ID, map[string]any{
		"total_stock":  gorm.Expr("total_stock + ?", kg),
		"last_updated": date,
	})
}

// Debit removes kg from the item's stock. Stock never goes below zero.
func Debit(ctx context.Context, tx *store.Store, item string, kg float64, date string) error {
	rows, err := store.WhereEquals[models.InventoryItem](ctx, tx, "item", item)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	return store.Update[models.InventoryItem](ctx, tx, rows[0].ID, map[string]any{
		"total_stock":  math.Max(0, rows[0].TotalStock-kg),
		"last_updated": date,
	})
}

// Available returns the stock on hand; an unknown item has none.
func Available(ctx context.Context, s *store.Store, item string) (float64, error) {
	rows, err := store.WhereEquals[models.InventoryItem](ctx, s, "item", item)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].TotalStock, nil
}

type Service struct {
	store *store.Store
}

func NewService(s *store.Store) *Service {
	return &Service{store: s}
}

func (s *Service) List(ctx context.Context) ([]models.InventoryItem, error) {
	return store.All[models.InventoryItem](ctx, s.store, store.Asc("item"))
}

type StockDrift struct {
	Item   string  `json:"item"`
	Before float64 `json:"before"`
	After  float64 `json:"after"`
}

type CounterDrift struct {
	VendorID string `json:"vendor_id"`
	Name     string `json:"name"`
	Before   int    `json:"before"`
	After    int    `json:"after"`
}

type RebuildResult struct {
	Items   []StockDrift   `json:"items"`
	Vendors []CounterDrift `json:"vendors"`
}

const stockTolerance = 1e-6

// Rebuild recomputes every stock row as received weight of verified purchases
// minus quantity sold, and every vendor's purchase counter as the number of
// its purchases. It is idempotent and reports what it corrected.
func (s *Service) Rebuild(ctx context.Context) (*RebuildResult, error) {
	res := &RebuildResult{Items: []StockDrift{}, Vendors: []CounterDrift{}}
	today := models.Today()

	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		purchases, err := store.All[models.Purchase](ctx, tx)
		if err != nil {
			return err
		}
		sales, err := store.All[models.Sale](ctx, tx)
		if err != nil {
			return err
		}
		rows, err := store.All[models.InventoryItem](ctx, tx)
		if err != nil {
			return err
		}

		expected := ExpectedStock(purchases, sales)
		existing := make(map[string]models.InventoryItem, len(rows))
		for _, r := range rows {
			existing[r.Item] = r
			if _, ok := expected[r.Item]; !ok {
				expected[r.Item] = 0
			}
		}

		items := make([]string, 0, len(expected))
		for item := range expected {
			items = append(items, item)
		}
		sort.Strings(items)

		for _, item := range items {
			want := expected[item]
			row, ok := existing[item]
			if !ok {
				if err := store.Create(ctx, tx, &models.InventoryItem{Item: item, TotalStock: want, LastUpdated: today}); err != nil {
					return err
				}
				res.Items = append(res.Items, StockDrift{Item: item, Before: 0, After: want})
				continue
			}
			if math.Abs(row.TotalStock-want) <= stockTolerance {
				continue
			}
			if err := store.Update[models.InventoryItem](ctx, tx, row.ID, map[string]any{
				"total_stock":  want,
				"last_updated": today,
			}); err != nil {
				return err
			}
			res.Items = append(res.Items, StockDrift{Item: item, Before: row.TotalStock, After: want})
		}

		counts := make(map[string]int)
		for _, p := range purchases {
			counts[p.VendorID]++
		}
		vendors, err := store.All[models.Vendor](ctx, tx, store.Asc("name"))
		if err != nil {
			return err
		}
		for _, v := range vendors {
			if v.TotalPurchases == counts[v.ID] {
				continue
			}
			if err := store.Update[models.Vendor](ctx, tx, v.ID, map[string]any{
				"total_purchases": counts[v.ID],
			}); err != nil {
				return err
			}
			res.Vendors = append(res.Vendors, CounterDrift{
				VendorID: v.ID,
				Name:     v.Name,
				Before:   v.TotalPurchases,
				After:    counts[v.ID],
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// ExpectedStock derives stock per item from the source records.
func ExpectedStock(purchases []models.Purchase, sales []models.Sale) map[string]float64 {
	sums := make(map[string]decimal.Decimal)
	for _, p := range purchases {
		if p.VerificationStatus == models.VerificationPending || p.ReceivedWeight == nil {
			continue
		}
		sums[p.Item] = sums[p.Item].Add(decimal.NewFromFloat(*p.ReceivedWeight))
	}
	for _, sale := range sales {
		sums[sale.Item] = sums[sale.Item].Sub(decimal.NewFromFloat(sale.QuantitySold))
	}

	out := make(map[string]float64, len(sums))
	for item, d := range sums {
		out[item] = math.Max(0, d.InexactFloat64())
	}
	return out
}

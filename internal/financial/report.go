package financial

import (
	"context"
	"errors"
	"time"

	"mandi-backend/internal/apperr"
	"mandi-backend/internal/models"
	"mandi-backend/internal/store"

	"github.com/shopspring/decimal"
)

type Settings struct {
	// Nominal price used to value stock on the dashboard.
	InventoryValuePerKg float64
	// GST percentage for the tax summary.
	GSTRate float64
}

type Service struct {
	store    *store.Store
	settings Settings
	now      func() time.Time
}

func NewService(s *store.Store, settings Settings) *Service {
	return &Service{store: s, settings: settings, now: time.Now}
}

type Report struct {
	From       string           `json:"from"`
	To         string           `json:"to"`
	Metrics    Metrics          `json:"metrics"`
	Daily      []DailyPoint     `json:"daily"`
	Vendors    []VendorProfit   `json:"vendors"`
	Expenses   []ExpenseShare   `json:"expenses"`
	Categories []CategoryTotals `json:"categories"`
	Tax        Tax              `json:"tax"`
}

// Report loads the period's records and runs every aggregation over that one
// snapshot.
func (s *Service) Report(ctx context.Context, preset Preset, from, to string) (*Report, error) {
	from, to, err := ResolveRange(preset, from, to, s.now())
	if err != nil {
		return nil, err
	}

	sales, err := store.WhereRange[models.Sale](ctx, s.store, "sale_date", from, to)
	if err != nil {
		return nil, err
	}
	expenses, err := store.WhereRange[models.Expense](ctx, s.store, "expense_date", from, to)
	if err != nil {
		return nil, err
	}
	purchases, err := store.WhereRange[models.Purchase](ctx, s.store, "purchase_date", from, to)
	if err != nil {
		return nil, err
	}
	vendors, err := store.All[models.Vendor](ctx, s.store, store.Asc("name"))
	if err != nil {
		return nil, err
	}
	catalog, err := store.All[models.VegetableItem](ctx, s.store)
	if err != nil {
		return nil, err
	}

	m := ComputeMetrics(sales, expenses, purchases)
	return &Report{
		From:       from,
		To:         to,
		Metrics:    m,
		Daily:      DailySeries(sales, expenses, purchases),
		Vendors:    VendorProfitability(vendors, purchases, sales),
		Expenses:   ExpenseBreakdown(expenses),
		Categories: CategoryBreakdown(catalog, sales, purchases),
		Tax:        TaxSummary(m, s.settings.GSTRate),
	}, nil
}

type PendingDay struct {
	Date          string  `json:"date"`
	Count         int     `json:"count"`
	OrderedWeight float64 `json:"ordered_weight"`
}

type Dashboard struct {
	Date               string       `json:"date"`
	TodayPurchases     int          `json:"today_purchases"`
	TodaySpend         float64      `json:"today_spend"`
	TodayDiscrepancies int          `json:"today_discrepancies"`
	PendingCount       int          `json:"pending_count"`
	PendingByDate      []PendingDay `json:"pending_by_date"`
	TotalStock         float64      `json:"total_stock"`
	InventoryValue     float64      `json:"inventory_value"`
	VendorCount        int          `json:"vendor_count"`
}

func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	today := s.now().Format(models.DateLayout)

	todays, err := store.WhereEquals[models.Purchase](ctx, s.store, "purchase_date", today)
	if err != nil {
		return nil, err
	}
	pending, err := store.WhereEquals[models.Purchase](ctx, s.store, "verification_status",
		models.VerificationPending, store.Desc("purchase_date"))
	if err != nil {
		return nil, err
	}
	stock, err := store.All[models.InventoryItem](ctx, s.store)
	if err != nil {
		return nil, err
	}
	vendors, err := store.All[models.Vendor](ctx, s.store)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{
		Date:           today,
		TodayPurchases: len(todays),
		PendingCount:   len(pending),
		PendingByDate:  pendingByDate(pending),
		VendorCount:    len(vendors),
	}

	var spend decimal.Decimal
	for _, p := range todays {
		spend = spend.Add(effectiveCost(p))
		if p.VerificationStatus == models.VerificationDiscrepancy {
			d.TodayDiscrepancies++
		}
	}
	d.TodaySpend = spend.InexactFloat64()

	var total decimal.Decimal
	for _, it := range stock {
		total = total.Add(decimal.NewFromFloat(it.TotalStock))
	}
	d.TotalStock = total.InexactFloat64()
	d.InventoryValue = total.Mul(decimal.NewFromFloat(s.settings.InventoryValuePerKg)).InexactFloat64()

	return d, nil
}

// pendingByDate expects rows sorted by purchase date, newest first.
func pendingByDate(rows []models.Purchase) []PendingDay {
	days := []PendingDay{}
	weights := []decimal.Decimal{}
	for _, p := range rows {
		n := len(days)
		if n == 0 || days[n-1].Date != p.PurchaseDate {
			days = append(days, PendingDay{Date: p.PurchaseDate})
			weights = append(weights, decimal.Zero)
			n++
		}
		days[n-1].Count++
		weights[n-1] = weights[n-1].Add(decimal.NewFromFloat(p.OrderedWeight))
	}
	for i := range days {
		days[i].OrderedWeight = weights[i].InexactFloat64()
	}
	return days
}

type VendorDay struct {
	Date      string            `json:"date"`
	Total     float64           `json:"total"`
	Weight    float64           `json:"weight"`
	Purchases []models.Purchase `json:"purchases"`
}

type VendorDetails struct {
	Vendor        models.Vendor `json:"vendor"`
	PurchaseCount int           `json:"purchase_count"`
	TotalAmount   float64       `json:"total_amount"`
	TotalWeight   float64       `json:"total_weight"`
	CratesIssued  int           `json:"crates_issued"`
	CratesPending int           `json:"crates_pending"`
	Days          []VendorDay   `json:"days"`
}

// VendorDetails summarises everything bought from one vendor, by day. Weight
// is the received weight once verified, the ordered weight before.
func (s *Service) VendorDetails(ctx context.Context, vendorID string) (*VendorDetails, error) {
	v, err := store.Get[models.Vendor](ctx, s.store, vendorID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("vendor %s not found", vendorID)
	}
	if err != nil {
		return nil, err
	}

	rows, err := store.WhereEquals[models.Purchase](ctx, s.store, "vendor_id", vendorID,
		store.Desc("purchase_date"), store.Desc("created_at"))
	if err != nil {
		return nil, err
	}

	out := &VendorDetails{Vendor: *v, PurchaseCount: len(rows), Days: []VendorDay{}}
	index := make(map[string]int)
	dayTotals := []decimal.Decimal{}
	dayWeights := []decimal.Decimal{}
	var total, weight decimal.Decimal

	for _, p := range rows {
		i, ok := index[p.PurchaseDate]
		if !ok {
			i = len(out.Days)
			index[p.PurchaseDate] = i
			out.Days = append(out.Days, VendorDay{Date: p.PurchaseDate})
			dayTotals = append(dayTotals, decimal.Zero)
			dayWeights = append(dayWeights, decimal.Zero)
		}
		cost := effectiveCost(p)
		w := p.OrderedWeight
		if p.ReceivedWeight != nil {
			w = *p.ReceivedWeight
		}
		out.Days[i].Purchases = append(out.Days[i].Purchases, p)
		dayTotals[i] = dayTotals[i].Add(cost)
		dayWeights[i] = dayWeights[i].Add(decimal.NewFromFloat(w))
		total = total.Add(cost)
		weight = weight.Add(decimal.NewFromFloat(w))
		out.CratesIssued += p.CratesCount
		out.CratesPending += p.RemainingCrates()
	}

	for i := range out.Days {
		out.Days[i].Total = dayTotals[i].InexactFloat64()
		out.Days[i].Weight = dayWeights[i].InexactFloat64()
	}
	out.TotalAmount = total.InexactFloat64()
	out.TotalWeight = weight.InexactFloat64()
	return out, nil
}

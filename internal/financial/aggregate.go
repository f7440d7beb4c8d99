// Package financial derives totals, profit and breakdowns from a snapshot of
// sales, expenses and purchases. The functions in this file are pure; money
// is summed in decimal and reported as float64.
package financial

import (
	"sort"
	"strings"

	"mandi-backend/internal/models"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// EffectiveCost is what a purchase really cost: received weight at the agreed
// price once a different weight was delivered, the frozen order total
// otherwise.
func EffectiveCost(p models.Purchase) float64 {
	return effectiveCost(p).InexactFloat64()
}

func effectiveCost(p models.Purchase) decimal.Decimal {
	if p.ReceivedWeight != nil && *p.ReceivedWeight != p.OrderedWeight {
		return decimal.NewFromFloat(*p.ReceivedWeight).Mul(decimal.NewFromFloat(p.PricePerKg))
	}
	return decimal.NewFromFloat(p.TotalAmount)
}

type Metrics struct {
	TotalSales     float64 `json:"total_sales"`
	TotalExpenses  float64 `json:"total_expenses"`
	TotalPurchases float64 `json:"total_purchases"`
	GrossProfit    float64 `json:"gross_profit"`
	NetProfit      float64 `json:"net_profit"`
	ProfitMargin   float64 `json:"profit_margin"`
}

func ComputeMetrics(sales []models.Sale, expenses []models.Expense, purchases []models.Purchase) Metrics {
	var totalSales, totalExpenses, totalPurchases decimal.Decimal
	for _, s := range sales {
		totalSales = totalSales.Add(decimal.NewFromFloat(s.TotalSaleAmount))
	}
	for _, e := range expenses {
		totalExpenses = totalExpenses.Add(decimal.NewFromFloat(e.Amount))
	}
	for _, p := range purchases {
		totalPurchases = totalPurchases.Add(effectiveCost(p))
	}

	gross := totalSales.Sub(totalPurchases)
	net := gross.Sub(totalExpenses)

	return Metrics{
		TotalSales:     totalSales.InexactFloat64(),
		TotalExpenses:  totalExpenses.InexactFloat64(),
		TotalPurchases: totalPurchases.InexactFloat64(),
		GrossProfit:    gross.InexactFloat64(),
		NetProfit:      net.InexactFloat64(),
		ProfitMargin:   percent(net, totalSales).InexactFloat64(),
	}
}

type DailyPoint struct {
	Date      string  `json:"date"`
	Sales     float64 `json:"sales"`
	Expenses  float64 `json:"expenses"`
	Purchases float64 `json:"purchases"`
	Profit    float64 `json:"profit"`
}

// DailySeries buckets the three collections by date. Every date seen in any
// of them gets a point; points are in ascending date order.
func DailySeries(sales []models.Sale, expenses []models.Expense, purchases []models.Purchase) []DailyPoint {
	type bucket struct{ sales, expenses, purchases decimal.Decimal }
	days := make(map[string]*bucket)
	at := func(date string) *bucket {
		b, ok := days[date]
		if !ok {
			b = &bucket{}
			days[date] = b
		}
		return b
	}

	for _, s := range sales {
		b := at(s.SaleDate)
		b.sales = b.sales.Add(decimal.NewFromFloat(s.TotalSaleAmount))
	}
	for _, e := range expenses {
		b := at(e.ExpenseDate)
		b.expenses = b.expenses.Add(decimal.NewFromFloat(e.Amount))
	}
	for _, p := range purchases {
		b := at(p.PurchaseDate)
		b.purchases = b.purchases.Add(effectiveCost(p))
	}

	out := make([]DailyPoint, 0, len(days))
	for date, b := range days {
		out = append(out, DailyPoint{
			Date:      date,
			Sales:     b.sales.InexactFloat64(),
			Expenses:  b.expenses.InexactFloat64(),
			Purchases: b.purchases.InexactFloat64(),
			Profit:    b.sales.Sub(b.purchases).Sub(b.expenses).InexactFloat64(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

type VendorProfit struct {
	VendorID       string  `json:"vendor_id"`
	VendorName     string  `json:"vendor_name"`
	TotalCost      float64 `json:"total_cost"`
	EstimatedSales float64 `json:"estimated_sales"`
	Profit         float64 `json:"profit"`
	Margin         float64 `json:"margin"`
}

// VendorProfitability estimates profit per vendor. Sales are not linked to
// purchase lots, so a vendor is credited with every sale of an item it
// supplied in the period; two vendors of the same item both get that sale.
// Vendors with no cost in the period are left out. Sorted by profit, highest
// first.
func VendorProfitability(vendors []models.Vendor, purchases []models.Purchase, sales []models.Sale) []VendorProfit {
	byVendor := make(map[string][]models.Purchase)
	for _, p := range purchases {
		byVendor[p.VendorID] = append(byVendor[p.VendorID], p)
	}

	out := []VendorProfit{}
	for _, v := range vendors {
		var cost decimal.Decimal
		items := make(map[string]bool)
		for _, p := range byVendor[v.ID] {
			cost = cost.Add(effectiveCost(p))
			items[p.Item] = true
		}
		if cost.IsZero() {
			continue
		}

		var est decimal.Decimal
		for _, s := range sales {
			if items[s.Item] {
				est = est.Add(decimal.NewFromFloat(s.TotalSaleAmount))
			}
		}
		profit := est.Sub(cost)

		out = append(out, VendorProfit{
			VendorID:       v.ID,
			VendorName:     v.Name,
			TotalCost:      cost.InexactFloat64(),
			EstimatedSales: est.InexactFloat64(),
			Profit:         profit.InexactFloat64(),
			Margin:         percent(profit, est).Round(2).InexactFloat64(),
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Profit > out[j].Profit })
	return out
}

type ExpenseShare struct {
	Category   models.ExpenseCategory `json:"category"`
	Amount     float64                `json:"amount"`
	Percentage float64                `json:"percentage"`
}

// ExpenseBreakdown sums expenses per category, in category order. Only
// categories with expenses appear; percentages are whole numbers.
func ExpenseBreakdown(expenses []models.Expense) []ExpenseShare {
	sums := make(map[models.ExpenseCategory]decimal.Decimal)
	var total decimal.Decimal
	for _, e := range expenses {
		amt := decimal.NewFromFloat(e.Amount)
		sums[e.Category] = sums[e.Category].Add(amt)
		total = total.Add(amt)
	}

	out := []ExpenseShare{}
	for _, cat := range models.ExpenseCategories {
		amt, ok := sums[cat]
		if !ok {
			continue
		}
		out = append(out, ExpenseShare{
			Category:   cat,
			Amount:     amt.InexactFloat64(),
			Percentage: percent(amt, total).Round(0).InexactFloat64(),
		})
	}
	return out
}

const Uncategorized = "uncategorized"

type CategoryTotals struct {
	Category  string  `json:"category"`
	Sales     float64 `json:"sales"`
	Purchases float64 `json:"purchases"`
}

// CategoryBreakdown splits sales and purchase cost by catalog category. Items
// missing from the catalog are reported as uncategorized.
func CategoryBreakdown(catalog []models.VegetableItem, sales []models.Sale, purchases []models.Purchase) []CategoryTotals {
	categoryOf := make(map[string]string, len(catalog))
	for _, it := range catalog {
		categoryOf[strings.ToLower(it.Name)] = string(it.Category)
	}
	lookup := func(item string) string {
		if c, ok := categoryOf[strings.ToLower(item)]; ok {
			return c
		}
		return Uncategorized
	}

	order := []string{string(models.CategoryVegetable), string(models.CategoryFruit), Uncategorized}
	salesBy := make(map[string]decimal.Decimal, len(order))
	purchasesBy := make(map[string]decimal.Decimal, len(order))
	for _, s := range sales {
		c := lookup(s.Item)
		salesBy[c] = salesBy[c].Add(decimal.NewFromFloat(s.TotalSaleAmount))
	}
	for _, p := range purchases {
		c := lookup(p.Item)
		purchasesBy[c] = purchasesBy[c].Add(effectiveCost(p))
	}

	out := make([]CategoryTotals, 0, len(order))
	for _, c := range order {
		out = append(out, CategoryTotals{
			Category:  c,
			Sales:     salesBy[c].InexactFloat64(),
			Purchases: purchasesBy[c].InexactFloat64(),
		})
	}
	return out
}

type Tax struct {
	TaxableSales float64 `json:"taxable_sales"`
	Rate         float64 `json:"rate"`
	Amount       float64 `json:"amount"`
	TotalWithTax float64 `json:"total_with_tax"`
}

// TaxSummary applies a GST rate given in percent to total sales.
func TaxSummary(m Metrics, rate float64) Tax {
	taxable := decimal.NewFromFloat(m.TotalSales)
	amt := taxable.Mul(decimal.NewFromFloat(rate)).Div(hundred).Round(2)
	return Tax{
		TaxableSales: m.TotalSales,
		Rate:         rate,
		Amount:       amt.InexactFloat64(),
		TotalWithTax: taxable.Add(amt).InexactFloat64(),
	}
}

// percent is part/whole*100, or 0 for an empty whole.
func percent(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred)
}

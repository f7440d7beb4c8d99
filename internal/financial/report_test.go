package financial

import (
	"bytes"
	"context"
	"testing"
	"time"

	"mandi-backend/internal/apperr"
	"mandi-backend/internal/models"
	"mandi-backend/internal/store"
	"mandi-backend/internal/testutil"

	"github.com/xuri/excelize/v2"
)

func seed(t *testing.T, s *store.Store, recs ...any) {
	t.Helper()
	ctx := context.Background()
	for _, r := range recs {
		var err error
		switch v := r.(type) {
		case *models.Vendor:
			err = store.Create(ctx, s, v)
		case *models.Purchase:
			err = store.Create(ctx, s, v)
		case *models.Sale:
			err = store.Create(ctx, s, v)
		case *models.Expense:
			err = store.Create(ctx, s, v)
		case *models.InventoryItem:
			err = store.Create(ctx, s, v)
		case *models.VegetableItem:
			err = store.Create(ctx, s, v)
		default:
			t.Fatalf("seed: unsupported %T", r)
		}
		if err != nil {
			t.Fatalf("seed %T: %v", r, err)
		}
	}
}

func setupReport(t *testing.T) *Service {
	t.Helper()
	s := testutil.SetupStore(t)

	v := &models.Vendor{ID: "v1", Name: "Anil"}
	short := purchase("v1", "Tomato", "2024-02-10", 50, 20, f(45))
	short.VerificationStatus = models.VerificationDiscrepancy
	short.DiscrepancyAmount = f(5)
	pending := purchase("v1", "Onion", "2024-02-14", 10, 30, nil)
	older := purchase("v1", "Onion", "2024-01-20", 10, 30, nil)

	seed(t, s,
		v,
		&models.VegetableItem{Name: "Tomato", Category: models.CategoryVegetable},
		&short, &pending, &older,
		&models.Sale{Item: "Tomato", QuantitySold: 30, SellingPricePerKg: 40, TotalSaleAmount: 1200, SaleDate: "2024-02-11", PaymentMethod: models.PaymentCash},
		&models.Expense{Category: models.ExpenseTransportation, Amount: 100, ExpenseDate: "2024-02-10"},
		&models.InventoryItem{Item: "Tomato", TotalStock: 15, LastUpdated: "2024-02-11"},
	)

	svc := NewService(s, Settings{InventoryValuePerKg: 50, GSTRate: 0})
	svc.now = func() time.Time { return time.Date(2024, 2, 14, 10, 0, 0, 0, time.UTC) }
	return svc
}

func TestReport(t *testing.T) {
	svc := setupReport(t)

	r, err := svc.Report(context.Background(), PresetMonth, "", "")
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if r.From != "2024-02-01" || r.To != "2024-02-29" {
		t.Fatalf("range = %s..%s", r.From, r.To)
	}
	// January's purchase is out of range.
	if r.Metrics.TotalPurchases != 1200 || r.Metrics.TotalSales != 1200 || r.Metrics.TotalExpenses != 100 {
		t.Fatalf("metrics = %+v", r.Metrics)
	}
	if r.Metrics.NetProfit != -100 {
		t.Fatalf("net = %v", r.Metrics.NetProfit)
	}
	if len(r.Daily) != 3 {
		t.Fatalf("daily = %+v", r.Daily)
	}
	if len(r.Vendors) != 1 || r.Vendors[0].TotalCost != 1200 || r.Vendors[0].EstimatedSales != 1200 {
		t.Fatalf("vendors = %+v", r.Vendors)
	}
	if len(r.Expenses) != 1 || r.Expenses[0].Percentage != 100 {
		t.Fatalf("expenses = %+v", r.Expenses)
	}
	if r.Categories[2].Category != Uncategorized || r.Categories[2].Purchases != 300 {
		t.Fatalf("categories = %+v", r.Categories)
	}

	if _, err := svc.Report(context.Background(), PresetCustom, "2024-03-01", "2024-02-01"); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("inverted custom range: %v", err)
	}
}

func TestDashboard(t *testing.T) {
	svc := setupReport(t)

	d, err := svc.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if d.Date != "2024-02-14" || d.TodayPurchases != 1 || d.TodaySpend != 300 {
		t.Fatalf("today = %+v", d)
	}
	if d.PendingCount != 2 || len(d.PendingByDate) != 2 || d.PendingByDate[0].Date != "2024-02-14" {
		t.Fatalf("pending = %d %+v", d.PendingCount, d.PendingByDate)
	}
	if d.TodayDiscrepancies != 0 {
		t.Fatalf("discrepancies today = %d", d.TodayDiscrepancies)
	}
	if d.TotalStock != 15 || d.InventoryValue != 750 || d.VendorCount != 1 {
		t.Fatalf("stock = %+v", d)
	}
}

func TestVendorDetails(t *testing.T) {
	svc := setupReport(t)

	d, err := svc.VendorDetails(context.Background(), "v1")
	if err != nil {
		t.Fatalf("VendorDetails: %v", err)
	}
	if d.PurchaseCount != 3 || d.TotalAmount != 1500 || d.TotalWeight != 65 {
		t.Fatalf("totals = %+v", d)
	}
	if len(d.Days) != 3 || d.Days[0].Date != "2024-02-14" || d.Days[2].Date != "2024-01-20" {
		t.Fatalf("days = %+v", d.Days)
	}
	if d.Days[1].Total != 900 || d.Days[1].Weight != 45 {
		t.Fatalf("2024-02-10 = %+v", d.Days[1])
	}

	if _, err := svc.VendorDetails(context.Background(), "nope"); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("missing vendor: %v", err)
	}
}

func TestWriteWorkbook(t *testing.T) {
	svc := setupReport(t)
	r, err := svc.Report(context.Background(), PresetMonth, "", "")
	if err != nil {
		t.Fatalf("Report: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteWorkbook(r, &buf); err != nil {
		t.Fatalf("WriteWorkbook: %v", err)
	}

	wb, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer wb.Close()

	want := []string{"Summary", "Daily", "Vendors", "Expenses", "Categories"}
	got := wb.GetSheetList()
	if len(got) != len(want) {
		t.Fatalf("sheets = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sheets = %v, want %v", got, want)
		}
	}

	v, err := wb.GetCellValue("Vendors", "A2")
	if err != nil || v != "Anil" {
		t.Fatalf("Vendors!A2 = %q %v", v, err)
	}
	rows, err := wb.GetRows("Daily")
	if err != nil || len(rows) != 4 {
		t.Fatalf("Daily rows = %d %v", len(rows), err)
	}
}

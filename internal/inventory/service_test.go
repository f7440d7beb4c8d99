package inventory

import (
	"context"
	"testing"

	"mandi-backend/internal/models"
	"mandi-backend/internal/store"
	"mandi-backend/internal/testutil"
)

func TestCreditDebit(t *testing.T) {
	s := testutil.SetupStore(t)
	ctx := context.Background()

	if err := Credit(ctx, s, "Onion", 30, "2024-01-01"); err != nil {
		t.Fatalf("Credit: %v", err)
	}
	if err := Credit(ctx, s, "Onion", 12.5, "2024-01-02"); err != nil {
		t.Fatalf("Credit: %v", err)
	}
	got, _ := Available(ctx, s, "Onion")
	if got != 42.5 {
		t.Fatalf("stock = %v, want 42.5", got)
	}

	if err := Debit(ctx, s, "Onion", 50, "2024-01-03"); err != nil {
		t.Fatalf("Debit: %v", err)
	}
	got, _ = Available(ctx, s, "Onion")
	if got != 0 {
		t.Fatalf("stock = %v, want clamp at 0", got)
	}

	if err := Debit(ctx, s, "Garlic", 1, "2024-01-03"); err != nil {
		t.Fatalf("Debit unknown item: %v", err)
	}
	if got, _ := Available(ctx, s, "Garlic"); got != 0 {
		t.Fatalf("unknown item stock = %v", got)
	}

	rows, _ := NewService(s).List(ctx)
	if len(rows) != 1 || rows[0].LastUpdated != "2024-01-03" {
		t.Fatalf("rows = %+v", rows)
	}
}

func TestRebuild(t *testing.T) {
	s := testutil.SetupStore(t)
	ctx := context.Background()
	svc := NewService(s)

	v := &models.Vendor{Name: "Anil", TotalPurchases: 7}
	if err := store.Create(ctx, s, v); err != nil {
		t.Fatalf("seed vendor: %v", err)
	}
	received := 45.0
	recs := []any{
		&models.Purchase{VendorID: v.ID, VendorName: v.Name, Item: "Tomato", OrderedWeight: 50, PricePerKg: 20, TotalAmount: 1000,
			PurchaseDate: "2024-01-01", VerificationStatus: models.VerificationDiscrepancy, ReceivedWeight: &received, CrateStatus: models.CratePending},
		&models.Purchase{VendorID: v.ID, VendorName: v.Name, Item: "Tomato", OrderedWeight: 10, PricePerKg: 20, TotalAmount: 200,
			PurchaseDate: "2024-01-02", VerificationStatus: models.VerificationPending, CrateStatus: models.CratePending},
		&models.Sale{Item: "Tomato", QuantitySold: 5, SellingPricePerKg: 30, TotalSaleAmount: 150, SaleDate: "2024-01-02", PaymentMethod: models.PaymentCash},
		&models.InventoryItem{Item: "Tomato", TotalStock: 90, LastUpdated: "2024-01-02"},
		&models.InventoryItem{Item: "Ghost", TotalStock: 3, LastUpdated: "2024-01-02"},
	}
	for _, r := range recs {
		var err error
		switch v := r.(type) {
		case *models.Purchase:
			err = store.Create(ctx, s, v)
		case *models.Sale:
			err = store.Create(ctx, s, v)
		case *models.InventoryItem:
			err = store.Create(ctx, s, v)
		}
		if err != nil {
			t.Fatalf("seed %T: %v", r, err)
		}
	}

	res, err := svc.Rebuild(ctx)
	if err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	if len(res.Items) != 2 || len(res.Vendors) != 1 {
		t.Fatalf("corrections = %+v", res)
	}

	if got, _ := Available(ctx, s, "Tomato"); got != 40 {
		t.Fatalf("Tomato = %v, want 40", got)
	}
	if got, _ := Available(ctx, s, "Ghost"); got != 0 {
		t.Fatalf("Ghost = %v, want 0", got)
	}
	vv, _ := store.Get[models.Vendor](ctx, s, v.ID)
	if vv.TotalPurchases != 2 {
		t.Fatalf("total_purchases = %d, want 2", vv.TotalPurchases)
	}

	again, err := svc.Rebuild(ctx)
	if err != nil {
		t.Fatalf("second Rebuild: %v", err)
	}
	if len(again.Items) != 0 || len(again.Vendors) != 0 {
		t.Fatalf("second run should find nothing to correct: %+v", again)
	}
}

func TestExpectedStock(t *testing.T) {
	r1, r2 := 10.0, 4.0
	got := ExpectedStock(
		[]models.Purchase{
			{Item: "Okra", VerificationStatus: models.VerificationVerified, ReceivedWeight: &r1},
			{Item: "Okra", VerificationStatus: models.VerificationDiscrepancy, ReceivedWeight: &r2},
			{Item: "Okra", VerificationStatus: models.VerificationPending},
		},
		[]models.Sale{{Item: "Okra", QuantitySold: 20}, {Item: "Lime", QuantitySold: 1}},
	)
	if got["Okra"] != 0 || got["Lime"] != 0 {
		t.Fatalf("expected = %v", got)
	}
}

package sales

import (
	"context"
	"testing"

	"mandi-backend/internal/apperr"
	"mandi-backend/internal/inventory"
	"mandi-backend/internal/models"
	"mandi-backend/internal/store"
	"mandi-backend/internal/testutil"
)

func setup(t *testing.T, stock float64) (*Service, *store.Store) {
	t.Helper()
	s := testutil.SetupStore(t)
	if stock > 0 {
		if err := inventory.Credit(context.Background(), s, "Tomato", stock, "2024-01-01"); err != nil {
			t.Fatalf("seed stock: %v", err)
		}
	}
	return NewService(s, testutil.Logger()), s
}

func tomatoSale(qty float64) NewSale {
	return NewSale{
		Item:              "Tomato",
		QuantitySold:      qty,
		SellingPricePerKg: 35,
		SaleDate:          "2024-01-02",
		PaymentMethod:     models.PaymentUPI,
	}
}

func TestAddSale(t *testing.T) {
	svc, s := setup(t, 20)
	ctx := context.Background()

	sale, err := svc.AddSale(ctx, tomatoSale(8))
	if err != nil {
		t.Fatalf("AddSale: %v", err)
	}
	if sale.TotalSaleAmount != 280 {
		t.Fatalf("total = %v, want 280", sale.TotalSaleAmount)
	}

	left, _ := inventory.Available(ctx, s, "Tomato")
	if left != 12 {
		t.Fatalf("stock = %v, want 12", left)
	}

	if _, err := svc.AddSale(ctx, tomatoSale(12)); err != nil {
		t.Fatalf("selling the rest: %v", err)
	}
	left, _ = inventory.Available(ctx, s, "Tomato")
	if left != 0 {
		t.Fatalf("stock = %v, want 0", left)
	}
}

func TestAddSaleOverStock(t *testing.T) {
	svc, s := setup(t, 8)
	ctx := context.Background()

	_, err := svc.AddSale(ctx, tomatoSale(10))
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	rows, _ := store.All[models.Sale](ctx, s)
	if len(rows) != 0 {
		t.Fatalf("rejected sale was written")
	}
	left, _ := inventory.Available(ctx, s, "Tomato")
	if left != 8 {
		t.Fatalf("stock = %v, want 8", left)
	}
}

func TestAddSaleWithoutStockRow(t *testing.T) {
	svc, _ := setup(t, 0)
	_, err := svc.AddSale(context.Background(), tomatoSale(1))
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAddSaleValidation(t *testing.T) {
	svc, _ := setup(t, 100)
	ctx := context.Background()

	cases := map[string]func(*NewSale){
		"no item":        func(s *NewSale) { s.Item = "" },
		"zero qty":       func(s *NewSale) { s.QuantitySold = 0 },
		"zero price":     func(s *NewSale) { s.SellingPricePerKg = 0 },
		"bad date":       func(s *NewSale) { s.SaleDate = "yesterday" },
		"unknown method": func(s *NewSale) { s.PaymentMethod = "cheque" },
	}
	for name, edit := range cases {
		in := tomatoSale(1)
		edit(&in)
		if _, err := svc.AddSale(ctx, in); !apperr.Is(err, apperr.KindValidation) {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}
}

func TestList(t *testing.T) {
	svc, _ := setup(t, 100)
	ctx := context.Background()

	for _, d := range []string{"2024-01-01", "2024-01-05", "2024-01-09"} {
		in := tomatoSale(1)
		in.SaleDate = d
		if _, err := svc.AddSale(ctx, in); err != nil {
			t.Fatalf("AddSale: %v", err)
		}
	}

	rows, err := svc.List(ctx, "2024-01-02", "2024-01-09")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(rows) != 2 || rows[0].SaleDate != "2024-01-09" {
		t.Fatalf("rows = %+v", rows)
	}
	all, _ := svc.List(ctx, "", "")
	if len(all) != 3 {
		t.Fatalf("all = %d", len(all))
	}
}

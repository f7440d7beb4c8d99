package purchase

import (
	"context"
	"errors"
	"testing"

	"mandi-backend/internal/apperr"
	"mandi-backend/internal/inventory"
	"mandi-backend/internal/models"
	"mandi-backend/internal/store"
	"mandi-backend/internal/testutil"
)

func setupEngine(t *testing.T) (*Engine, *store.Store, *models.Vendor) {
	t.Helper()
	s := testutil.SetupStore(t)
	v := &models.Vendor{Name: "Ramesh Traders", CrateCodes: []string{"RT", "RT-2"}}
	if err := store.Create(context.Background(), s, v); err != nil {
		t.Fatalf("seed vendor: %v", err)
	}
	return NewEngine(s, testutil.Logger()), s, v
}

func tomatoes(vendorID string) NewPurchase {
	return NewPurchase{
		VendorID:      vendorID,
		Item:          "Tomato",
		OrderedWeight: 50,
		PricePerKg:    20,
		PurchaseDate:  "2024-01-01",
	}
}

func TestRecordPurchase(t *testing.T) {
	eng, s, v := setupEngine(t)
	ctx := context.Background()

	p, err := eng.RecordPurchase(ctx, tomatoes(v.ID))
	if err != nil {
		t.Fatalf("RecordPurchase: %v", err)
	}
	if p.TotalAmount != 1000 {
		t.Fatalf("total = %v, want 1000", p.TotalAmount)
	}
	if p.VerificationStatus != models.VerificationPending || p.ReceivedWeight != nil {
		t.Fatalf("new purchase should be pending without received weight, got %s %v", p.VerificationStatus, p.ReceivedWeight)
	}
	if p.CrateStatus != models.CratePending || p.ReturnedCrates != 0 {
		t.Fatalf("crate state = %s/%d", p.CrateStatus, p.ReturnedCrates)
	}
	if p.VendorName != v.Name {
		t.Fatalf("vendor name = %q", p.VendorName)
	}

	got, err := store.Get[models.Vendor](ctx, s, v.ID)
	if err != nil {
		t.Fatalf("get vendor: %v", err)
	}
	if got.TotalPurchases != 1 {
		t.Fatalf("total_purchases = %d, want 1", got.TotalPurchases)
	}
}

func TestRecordPurchaseValidation(t *testing.T) {
	eng, s, v := setupEngine(t)
	ctx := context.Background()

	cases := []struct {
		name string
		edit func(*NewPurchase)
	}{
		{"zero weight", func(p *NewPurchase) { p.OrderedWeight = 0 }},
		{"negative weight", func(p *NewPurchase) { p.OrderedWeight = -3 }},
		{"zero price", func(p *NewPurchase) { p.PricePerKg = 0 }},
		{"blank item", func(p *NewPurchase) { p.Item = "  " }},
		{"bad date", func(p *NewPurchase) { p.PurchaseDate = "01/01/2024" }},
		{"negative crates", func(p *NewPurchase) { p.CratesCount = -1 }},
		{"crates without code", func(p *NewPurchase) { p.CratesCount = 4 }},
		{"foreign crate code", func(p *NewPurchase) { p.CratesCount = 4; p.CrateCode = "XX" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := tomatoes(v.ID)
			tc.edit(&in)
			_, err := eng.RecordPurchase(ctx, in)
			if !apperr.Is(err, apperr.KindValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}

	rows, err := store.All[models.Purchase](ctx, s)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("rejected purchases were written: %d rows", len(rows))
	}
	got, _ := store.Get[models.Vendor](ctx, s, v.ID)
	if got.TotalPurchases != 0 {
		t.Fatalf("counter moved on rejected input: %d", got.TotalPurchases)
	}
}

func TestRecordPurchaseCrateCode(t *testing.T) {
	eng, _, v := setupEngine(t)
	ctx := context.Background()

	in := tomatoes(v.ID)
	in.CratesCount = 6
	in.CrateCode = "RT-2"
	p, err := eng.RecordPurchase(ctx, in)
	if err != nil {
		t.Fatalf("RecordPurchase: %v", err)
	}
	if p.VendorCrateCode != "RT-2" || p.CratesCount != 6 {
		t.Fatalf("crates = %d %q", p.CratesCount, p.VendorCrateCode)
	}

	in = tomatoes(v.ID)
	in.CrateCode = "RT"
	p, err = eng.RecordPurchase(ctx, in)
	if err != nil {
		t.Fatalf("RecordPurchase without crates: %v", err)
	}
	if p.VendorCrateCode != "" {
		t.Fatalf("crate code should be cleared when no crates are issued, got %q", p.VendorCrateCode)
	}
}

func TestRecordPurchaseUnknownVendor(t *testing.T) {
	eng, _, _ := setupEngine(t)
	_, err := eng.RecordPurchase(context.Background(), tomatoes("missing"))
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestVerifyWeightShortfall(t *testing.T) {
	eng, s, v := setupEngine(t)
	ctx := context.Background()

	p, err := eng.RecordPurchase(ctx, tomatoes(v.ID))
	if err != nil {
		t.Fatalf("RecordPurchase: %v", err)
	}

	got, err := eng.VerifyWeight(ctx, p.ID, 45)
	if err != nil {
		t.Fatalf("VerifyWeight: %v", err)
	}
	if got.VerificationStatus != models.VerificationDiscrepancy {
		t.Fatalf("status = %s, want discrepancy", got.VerificationStatus)
	}
	if got.DiscrepancyAmount == nil || *got.DiscrepancyAmount != 5 {
		t.Fatalf("discrepancy = %v, want 5", got.DiscrepancyAmount)
	}

	stored, err := eng.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.ReceivedWeight == nil || *stored.ReceivedWeight != 45 {
		t.Fatalf("stored received = %v", stored.ReceivedWeight)
	}
	if stored.TotalAmount != 1000 {
		t.Fatalf("order total must stay frozen, got %v", stored.TotalAmount)
	}

	stock, err := inventory.Available(ctx, s, "Tomato")
	if err != nil {
		t.Fatalf("Available: %v", err)
	}
	if stock != 45 {
		t.Fatalf("stock = %v, want 45", stock)
	}
}

func TestVerifyWeightMetOrExceeded(t *testing.T) {
	for _, received := range []float64{50, 52.5} {
		eng, s, v := setupEngine(t)
		ctx := context.Background()

		p, err := eng.RecordPurchase(ctx, tomatoes(v.ID))
		if err != nil {
			t.Fatalf("RecordPurchase: %v", err)
		}
		got, err := eng.VerifyWeight(ctx, p.ID, received)
		if err != nil {
			t.Fatalf("VerifyWeight(%v): %v", received, err)
		}
		if got.VerificationStatus != models.VerificationVerified || got.DiscrepancyAmount != nil {
			t.Fatalf("received %v: status %s discrepancy %v", received, got.VerificationStatus, got.DiscrepancyAmount)
		}
		stored, _ := eng.Get(ctx, p.ID)
		if stored.DiscrepancyAmount != nil {
			t.Fatalf("stored discrepancy should be unset, got %v", *stored.DiscrepancyAmount)
		}
		stock, _ := inventory.Available(ctx, s, "Tomato")
		if stock != received {
			t.Fatalf("stock = %v, want %v", stock, received)
		}
	}
}

func TestVerifyWeightAddsToExistingStock(t *testing.T) {
	eng, s, v := setupEngine(t)
	ctx := context.Background()

	for _, w := range []float64{30, 20} {
		in := tomatoes(v.ID)
		in.OrderedWeight = w
		p, err := eng.RecordPurchase(ctx, in)
		if err != nil {
			t.Fatalf("RecordPurchase: %v", err)
		}
		if _, err := eng.VerifyWeight(ctx, p.ID, w); err != nil {
			t.Fatalf("VerifyWeight: %v", err)
		}
	}

	rows, err := store.All[models.InventoryItem](ctx, s)
	if err != nil {
		t.Fatalf("list inventory: %v", err)
	}
	if len(rows) != 1 || rows[0].TotalStock != 50 {
		t.Fatalf("inventory = %+v, want one Tomato row with 50", rows)
	}
	if rows[0].LastUpdated != models.Today() {
		t.Fatalf("last updated = %s", rows[0].LastUpdated)
	}
}

func TestVerifyWeightTwiceIsRejected(t *testing.T) {
	eng, s, v := setupEngine(t)
	ctx := context.Background()

	p, _ := eng.RecordPurchase(ctx, tomatoes(v.ID))
	if _, err := eng.VerifyWeight(ctx, p.ID, 48); err != nil {
		t.Fatalf("first verify: %v", err)
	}
	_, err := eng.VerifyWeight(ctx, p.ID, 48)
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("second verify: expected conflict, got %v", err)
	}

	stock, _ := inventory.Available(ctx, s, "Tomato")
	if stock != 48 {
		t.Fatalf("stock credited twice: %v", stock)
	}
}

func TestVerifyWeightRejectsBadInput(t *testing.T) {
	eng, _, v := setupEngine(t)
	ctx := context.Background()
	p, _ := eng.RecordPurchase(ctx, tomatoes(v.ID))

	for _, w := range []float64{0, -1} {
		if _, err := eng.VerifyWeight(ctx, p.ID, w); !apperr.Is(err, apperr.KindValidation) {
			t.Fatalf("VerifyWeight(%v): expected validation error, got %v", w, err)
		}
	}
	if _, err := eng.VerifyWeight(ctx, "missing", 10); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	stored, _ := eng.Get(ctx, p.ID)
	if stored.VerificationStatus != models.VerificationPending {
		t.Fatalf("rejected verify changed status to %s", stored.VerificationStatus)
	}
}

func TestPendingMatchesMissingReceivedWeight(t *testing.T) {
	eng, _, v := setupEngine(t)
	ctx := context.Background()

	weights := []float64{0, 40, 0, 55, 0}
	for i, w := range weights {
		in := tomatoes(v.ID)
		in.Item = []string{"Tomato", "Onion", "Potato", "Okra", "Mango"}[i]
		p, err := eng.RecordPurchase(ctx, in)
		if err != nil {
			t.Fatalf("RecordPurchase: %v", err)
		}
		if w > 0 {
			if _, err := eng.VerifyWeight(ctx, p.ID, w); err != nil {
				t.Fatalf("VerifyWeight: %v", err)
			}
		}
	}

	all, err := eng.All(ctx)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	for _, p := range all {
		pending := p.VerificationStatus == models.VerificationPending
		if pending != (p.ReceivedWeight == nil) {
			t.Fatalf("%s: status %s with received %v", p.Item, p.VerificationStatus, p.ReceivedWeight)
		}
		if (p.VerificationStatus == models.VerificationDiscrepancy) != (p.DiscrepancyAmount != nil && *p.DiscrepancyAmount > 0) {
			t.Fatalf("%s: status %s with discrepancy %v", p.Item, p.VerificationStatus, p.DiscrepancyAmount)
		}
	}
}

func TestRecordBatchStopsAtFirstFailure(t *testing.T) {
	eng, s, v := setupEngine(t)
	ctx := context.Background()

	items := []BatchItem{
		{Item: "Tomato", OrderedWeight: 10, PricePerKg: 20},
		{Item: "Onion", OrderedWeight: 15, PricePerKg: 30},
		{Item: "Potato", OrderedWeight: 0, PricePerKg: 12},
		{Item: "Okra", OrderedWeight: 5, PricePerKg: 40},
	}
	done, err := eng.RecordBatch(ctx, v.ID, "2024-01-02", items)

	var be *BatchError
	if !errors.As(err, &be) {
		t.Fatalf("expected *BatchError, got %v", err)
	}
	if be.Index != 2 {
		t.Fatalf("failed index = %d, want 2", be.Index)
	}
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("cause should stay a validation error: %v", err)
	}
	if len(done) != 2 || done[0].Item != "Tomato" || done[1].Item != "Onion" {
		t.Fatalf("committed = %+v", done)
	}

	rows, _ := store.All[models.Purchase](ctx, s)
	if len(rows) != 2 {
		t.Fatalf("stored %d purchases, want 2", len(rows))
	}
	got, _ := store.Get[models.Vendor](ctx, s, v.ID)
	if got.TotalPurchases != 2 {
		t.Fatalf("total_purchases = %d, want 2", got.TotalPurchases)
	}
}

func TestQueries(t *testing.T) {
	eng, _, v := setupEngine(t)
	ctx := context.Background()

	for _, d := range []string{"2024-01-01", "2024-01-03", "2024-01-02", "2024-01-03"} {
		in := tomatoes(v.ID)
		in.PurchaseDate = d
		if _, err := eng.RecordPurchase(ctx, in); err != nil {
			t.Fatalf("RecordPurchase: %v", err)
		}
	}

	all, err := eng.All(ctx)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].PurchaseDate < all[i].PurchaseDate {
			t.Fatalf("not newest first: %s before %s", all[i-1].PurchaseDate, all[i].PurchaseDate)
		}
	}

	day, _ := eng.ByDate(ctx, "2024-01-03")
	if len(day) != 2 {
		t.Fatalf("ByDate = %d rows, want 2", len(day))
	}
	rng, _ := eng.ByRange(ctx, "2024-01-02", "2024-01-03")
	if len(rng) != 3 {
		t.Fatalf("ByRange = %d rows, want 3", len(rng))
	}
	mine, _ := eng.ByVendor(ctx, v.ID)
	if len(mine) != 4 {
		t.Fatalf("ByVendor = %d rows, want 4", len(mine))
	}

	groups, err := eng.Pending(ctx)
	if err != nil {
		t.Fatalf("Pending: %v", err)
	}
	if len(groups) != 3 || groups[0].Date != "2024-01-03" || len(groups[0].Purchases) != 2 || groups[2].Date != "2024-01-01" {
		t.Fatalf("pending groups = %+v", groups)
	}

	if _, err := eng.Get(ctx, "nope"); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("Get missing: %v", err)
	}
}

func TestClassify(t *testing.T) {
	status, d := Classify(50, 45)
	if status != models.VerificationDiscrepancy || d == nil || *d != 5 {
		t.Fatalf("Classify(50,45) = %s %v", status, d)
	}
	status, d = Classify(50, 50)
	if status != models.VerificationVerified || d != nil {
		t.Fatalf("Classify(50,50) = %s %v", status, d)
	}
	status, d = Classify(50, 60)
	if status != models.VerificationVerified || d != nil {
		t.Fatalf("Classify(50,60) = %s %v", status, d)
	}
}

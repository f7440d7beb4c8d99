package catalog

import (
	"context"
	"testing"

	"mandi-backend/internal/apperr"
	"mandi-backend/internal/models"
	"mandi-backend/internal/testutil"
)

func TestAdd(t *testing.T) {
	svc := NewService(testutil.SetupStore(t))
	ctx := context.Background()

	if _, err := svc.Add(ctx, " Tomato ", models.CategoryVegetable); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := svc.Add(ctx, "Banana", models.CategoryFruit); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if _, err := svc.Add(ctx, "tomato", models.CategoryVegetable); !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("duplicate: expected conflict, got %v", err)
	}
	if _, err := svc.Add(ctx, "", models.CategoryFruit); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("blank name: %v", err)
	}
	if _, err := svc.Add(ctx, "Rice", "grain"); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("bad category: %v", err)
	}

	items, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 || items[0].Name != "Banana" || items[1].Name != "Tomato" {
		t.Fatalf("items = %+v", items)
	}
}

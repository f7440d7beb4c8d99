package expense

import (
	"context"
	"strings"

	"mandi-backend/internal/apperr"
	"mandi-backend/internal/models"
	"mandi-backend/internal/store"
)

type NewExpense struct {
	Category    models.ExpenseCategory
	Description string
	Amount      float64
	ExpenseDate string
	ReceiptURL  string
}

type Service struct {
	store *store.Store
}

func NewService(s *store.Store) *Service {
	return &Service{store: s}
}

func (s *Service) AddExpense(ctx context.Context, in NewExpense) (*models.Expense, error) {
	if !in.Category.Valid() {
		return nil, apperr.Validation("unknown expense category %q", in.Category)
	}
	if in.Amount <= 0 {
		return nil, apperr.Validation("amount must be greater than 0")
	}
	if _, err := models.ParseDate(in.ExpenseDate); err != nil {
		return nil, apperr.Validation("expense date must be YYYY-MM-DD")
	}

	e := models.Expense{
		Category:    in.Category,
		Description: strings.TrimSpace(in.Description),
		Amount:      in.Amount,
		ExpenseDate: in.ExpenseDate,
		ReceiptURL:  strings.TrimSpace(in.ReceiptURL),
	}
	if err := store.Create(ctx, s.store, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// List returns expenses dated from..to inclusive, newest first. Empty bounds
// are open.
func (s *Service) List(ctx context.Context, from, to string) ([]models.Expense, error) {
	return store.WhereRange[models.Expense](ctx, s.store, "expense_date", from, to,
		store.Desc("expense_date"), store.Desc("created_at"))
}

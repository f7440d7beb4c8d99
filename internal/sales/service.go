package sales

import (
	"context"
	"fmt"
	"strings"

	"mandi-backend/internal/apperr"
	"mandi-backend/internal/inventory"
	"mandi-backend/internal/models"
	"mandi-backend/internal/store"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type NewSale struct {
	Item              string
	QuantitySold      float64
	SellingPricePerKg float64
	SaleDate          string
	CustomerName      string
	PaymentMethod     models.PaymentMethod
}

type Service struct {
	store *store.Store
	log   logrus.FieldLogger
}

func NewService(s *store.Store, log logrus.FieldLogger) *Service {
	return &Service{store: s, log: log}
}

// AddSale records a sale and takes the quantity out of stock. A sale larger
// than the stock on hand is refused before anything is written.
func (s *Service) AddSale(ctx context.Context, in NewSale) (*models.Sale, error) {
	item := strings.TrimSpace(in.Item)
	if item == "" {
		return nil, apperr.Validation("item is required")
	}
	if in.QuantitySold <= 0 {
		return nil, apperr.Validation("quantity must be greater than 0")
	}
	if in.SellingPricePerKg <= 0 {
		return nil, apperr.Validation("selling price must be greater than 0")
	}
	if _, err := models.ParseDate(in.SaleDate); err != nil {
		return nil, apperr.Validation("sale date must be YYYY-MM-DD")
	}
	if !in.PaymentMethod.Valid() {
		return nil, apperr.Validation("payment method must be one of cash, upi, card, credit")
	}

	total := decimal.NewFromFloat(in.QuantitySold).Mul(decimal.NewFromFloat(in.SellingPricePerKg))
	sale := models.Sale{
		Item:              item,
		QuantitySold:      in.QuantitySold,
		SellingPricePerKg: in.SellingPricePerKg,
		TotalSaleAmount:   total.InexactFloat64(),
		SaleDate:          in.SaleDate,
		CustomerName:      strings.TrimSpace(in.CustomerName),
		PaymentMethod:     in.PaymentMethod,
	}

	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		available, err := inventory.Available(ctx, tx, item)
		if err != nil {
			return err
		}
		if in.QuantitySold > available {
			return apperr.Validation("only %.2fkg of %s in stock", available, item)
		}
		if err := store.Create(ctx, tx, &sale); err != nil {
			return err
		}
		return inventory.Debit(ctx, tx, item, in.QuantitySold, models.Today())
	})
	if err != nil {
		if apperr.Is(err, apperr.KindValidation) {
			return nil, err
		}
		return nil, fmt.Errorf("add sale: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"sale_id": sale.ID,
		"item":    sale.Item,
		"qty":     sale.QuantitySold,
		"total":   sale.TotalSaleAmount,
	}).Info("sale recorded")
	return &sale, nil
}

// List returns sales dated from..to inclusive, newest first. Empty bounds are
// open.
func (s *Service) List(ctx context.Context, from, to string) ([]models.Sale, error) {
	return store.WhereRange[models.Sale](ctx, s.store, "sale_date", from, to,
		store.Desc("sale_date"), store.Desc("created_at"))
}

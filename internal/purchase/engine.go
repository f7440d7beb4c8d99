// Package purchase records wholesale purchases and verifies delivered weight.
// Verification is the only path by which purchased stock reaches inventory.
package purchase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mandi-backend/internal/apperr"
	"mandi-backend/internal/inventory"
	"mandi-backend/internal/models"
	"mandi-backend/internal/store"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type NewPurchase struct {
	VendorID      string
	Item          string
	OrderedWeight float64
	PricePerKg    float64
	PurchaseDate  string
	CratesCount   int
	CrateCode     string
}

// BatchItem is one line of a multi-item order; vendor and date come from the
// batch.
type BatchItem struct {
	Item          string
	OrderedWeight float64
	PricePerKg    float64
	CratesCount   int
	CrateCode     string
}

// BatchError reports which line of a batch failed. Lines before Index are
// already committed.
type BatchError struct {
	Index int
	Err   error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("item %d: %v", e.Index+1, e.Err)
}

func (e *BatchError) Unwrap() error { return e.Err }

type Engine struct {
	store *store.Store
	log   logrus.FieldLogger
}

func NewEngine(s *store.Store, log logrus.FieldLogger) *Engine {
	return &Engine{store: s, log: log}
}

// RecordPurchase validates and stores a pending purchase and bumps the
// vendor's purchase counter in the same transaction.
func (e *Engine) RecordPurchase(ctx context.Context, in NewPurchase) (*models.Purchase, error) {
	vendor, err := e.vendor(ctx, in.VendorID)
	if err != nil {
		return nil, err
	}
	p, err := build(vendor, in)
	if err != nil {
		return nil, err
	}

	err = e.store.Transaction(ctx, func(tx *store.Store) error {
		if err := store.Create(ctx, tx, p); err != nil {
			return err
		}
		return store.Update[models.Vendor](ctx, tx, vendor.ID, map[string]any{
			"total_purchases": gorm.Expr("total_purchases + ?", 1),
		})
	})
	if err != nil {
		return nil, fmt.Errorf("record purchase: %w", err)
	}

	e.log.WithFields(logrus.Fields{
		"purchase_id": p.ID,
		"vendor_id":   p.VendorID,
		"item":        p.Item,
		"total":       p.TotalAmount,
	}).Info("purchase recorded")
	return p, nil
}

// RecordBatch records every line as its own purchase. It stops at the first
// failure and returns the purchases committed before it with a *BatchError.
func (e *Engine) RecordBatch(ctx context.Context, vendorID, date string, items []BatchItem) ([]models.Purchase, error) {
	if len(items) == 0 {
		return nil, apperr.Validation("at least one item is required")
	}

	done := make([]models.Purchase, 0, len(items))
	for i, it := range items {
		p, err := e.RecordPurchase(ctx, NewPurchase{
			VendorID:      vendorID,
			Item:          it.Item,
			OrderedWeight: it.OrderedWeight,
			PricePerKg:    it.PricePerKg,
			PurchaseDate:  date,
			CratesCount:   it.CratesCount,
			CrateCode:     it.CrateCode,
		})
		if err != nil {
			return done, &BatchError{Index: i, Err: err}
		}
		done = append(done, *p)
	}
	return done, nil
}

// VerifyWeight records the weight actually delivered and credits it to
// inventory. A purchase can be verified once.
func (e *Engine) VerifyWeight(ctx context.Context, id string, received float64) (*models.Purchase, error) {
	if received <= 0 {
		return nil, apperr.Validation("received weight must be greater than 0")
	}

	p, err := e.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.VerificationStatus != models.VerificationPending {
		return nil, apperr.Conflict("purchase %s is already %s", id, p.VerificationStatus)
	}

	status, discrepancy := Classify(p.OrderedWeight, received)
	today := models.Today()

	err = e.store.Transaction(ctx, func(tx *store.Store) error {
		fields := map[string]any{
			"received_weight":     received,
			"verification_status": status,
			"discrepancy_amount":  nil,
		}
		if discrepancy != nil {
			fields["discrepancy_amount"] = *discrepancy
		}
		ok, err := store.UpdateIf[models.Purchase](ctx, tx, id,
			map[string]any{"verification_status": models.VerificationPending}, fields)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.Conflict("purchase %s was verified concurrently", id)
		}
		return inventory.Credit(ctx, tx, p.Item, received, today)
	})
	if err != nil {
		if apperr.Is(err, apperr.KindConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("verify purchase %s: %w", id, err)
	}

	p.ReceivedWeight = &received
	p.VerificationStatus = status
	p.DiscrepancyAmount = discrepancy

	e.log.WithFields(logrus.Fields{
		"purchase_id": p.ID,
		"item":        p.Item,
		"ordered":     p.OrderedWeight,
		"received":    received,
		"status":      status,
	}).Info("purchase verified")
	return p, nil
}

// Classify compares delivered against ordered weight. A shortfall is a
// discrepancy of ordered-received; meeting or exceeding the order is verified.
func Classify(ordered, received float64) (models.VerificationStatus, *float64) {
	d := ordered - received
	if d > 0 {
		return models.VerificationDiscrepancy, &d
	}
	return models.VerificationVerified, nil
}

func (e *Engine) vendor(ctx context.Context, id string) (*models.Vendor, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperr.Validation("vendor is required")
	}
	v, err := store.Get[models.Vendor](ctx, e.store, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("vendor %s not found", id)
	}
	return v, err
}

func build(vendor *models.Vendor, in NewPurchase) (*models.Purchase, error) {
	item := strings.TrimSpace(in.Item)
	if item == "" {
		return nil, apperr.Validation("item is required")
	}
	if in.OrderedWeight <= 0 {
		return nil, apperr.Validation("ordered weight must be greater than 0")
	}
	if in.PricePerKg <= 0 {
		return nil, apperr.Validation("price per kg must be greater than 0")
	}
	if _, err := models.ParseDate(in.PurchaseDate); err != nil {
		return nil, apperr.Validation("purchase date must be YYYY-MM-DD")
	}
	if in.CratesCount < 0 {
		return nil, apperr.Validation("crates count cannot be negative")
	}

	code := strings.TrimSpace(in.CrateCode)
	if in.CratesCount == 0 {
		code = ""
	} else {
		if code == "" {
			return nil, apperr.Validation("crate code is required when crates are issued")
		}
		if !vendor.HasCrateCode(code) {
			return nil, apperr.Validation("crate code %s is not registered for %s", code, vendor.Name)
		}
	}

	total := decimal.NewFromFloat(in.OrderedWeight).Mul(decimal.NewFromFloat(in.PricePerKg))

	return &models.Purchase{
		VendorID:           vendor.ID,
		VendorName:         vendor.Name,
		Item:               item,
		OrderedWeight:      in.OrderedWeight,
		PricePerKg:         in.PricePerKg,
		TotalAmount:        total.InexactFloat64(),
		PurchaseDate:       in.PurchaseDate,
		VerificationStatus: models.VerificationPending,
		CratesCount:        in.CratesCount,
		VendorCrateCode:    code,
		ReturnedCrates:     0,
		CrateStatus:        models.CratePending,
	}, nil
}

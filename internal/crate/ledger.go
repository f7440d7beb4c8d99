// Package crate tracks returnable crates issued with purchases. Every crate of
// a purchase carries the purchase's vendor crate code; returns are counted per
// purchase and only ever go up.
package crate

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"mandi-backend/internal/apperr"
	"mandi-backend/internal/models"
	"mandi-backend/internal/store"

	"github.com/sirupsen/logrus"
)

// DeriveStatus maps returned vs issued crates to a status.
func DeriveStatus(returned, count int) models.CrateStatus {
	switch {
	case returned <= 0:
		return models.CratePending
	case returned < count:
		return models.CratePartial
	default:
		return models.CrateReturned
	}
}

type Ledger struct {
	store *store.Store
	log   logrus.FieldLogger
}

func NewLedger(s *store.Store, log logrus.FieldLogger) *Ledger {
	return &Ledger{store: s, log: log}
}

// ReturnCrates records count crates coming back on date.
func (l *Ledger) ReturnCrates(ctx context.Context, purchaseID, date string, count int) (*models.Purchase, error) {
	if _, err := models.ParseDate(date); err != nil {
		return nil, apperr.Validation("return date must be YYYY-MM-DD")
	}
	if count <= 0 {
		return nil, apperr.Validation("return count must be at least 1")
	}

	p, err := store.Get[models.Purchase](ctx, l.store, purchaseID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("purchase %s not found", purchaseID)
	}
	if err != nil {
		return nil, err
	}
	if p.CratesCount == 0 {
		return nil, apperr.Validation("purchase %s has no crates", purchaseID)
	}
	remaining := p.RemainingCrates()
	if count > remaining {
		return nil, apperr.Validation("only %d crates are outstanding, cannot return %d", remaining, count)
	}

	returned := p.ReturnedCrates + count
	status := DeriveStatus(returned, p.CratesCount)

	// Guarded on the count we read so two returns cannot both pass the
	// remaining check.
	ok, err := store.UpdateIf[models.Purchase](ctx, l.store, purchaseID,
		map[string]any{"returned_crates": p.ReturnedCrates},
		map[string]any{
			"returned_crates":  returned,
			"last_return_date": date,
			"crate_status":     status,
		})
	if err != nil {
		return nil, fmt.Errorf("return crates for %s: %w", purchaseID, err)
	}
	if !ok {
		return nil, apperr.Conflict("crates for purchase %s changed, reload and retry", purchaseID)
	}

	p.ReturnedCrates = returned
	p.LastReturnDate = &date
	p.CrateStatus = status

	l.log.WithFields(logrus.Fields{
		"purchase_id": p.ID,
		"vendor_id":   p.VendorID,
		"code":        p.VendorCrateCode,
		"returned":    count,
		"remaining":   p.RemainingCrates(),
	}).Info("crates returned")
	return p, nil
}

type Filter struct {
	VendorID string
	Date     string
	// Query matches vendor name, item or crate code, case-insensitively.
	Query string
}

type VendorCrates struct {
	VendorID   string            `json:"vendor_id"`
	VendorName string            `json:"vendor_name"`
	Issued     int               `json:"issued"`
	Returned   int               `json:"returned"`
	Pending    int               `json:"pending"`
	Purchases  []models.Purchase `json:"purchases"`
}

type Summary struct {
	Vendors  []VendorCrates `json:"vendors"`
	Issued   int            `json:"issued"`
	Returned int            `json:"returned"`
	Pending  int            `json:"pending"`
}

// Summary lists purchases that carried crates, grouped by vendor.
func (l *Ledger) Summary(ctx context.Context, f Filter) (*Summary, error) {
	eq := map[string]any{}
	if f.VendorID != "" {
		eq["vendor_id"] = f.VendorID
	}
	if f.Date != "" {
		eq["purchase_date"] = f.Date
	}
	rows, err := store.Find[models.Purchase](ctx, l.store, eq,
		store.Desc("purchase_date"), store.Desc("created_at"))
	if err != nil {
		return nil, err
	}
	return Summarize(rows, f.Query), nil
}

// Summarize groups crate-carrying purchases by vendor, vendors by name.
func Summarize(rows []models.Purchase, query string) *Summary {
	q := strings.ToLower(strings.TrimSpace(query))
	byVendor := make(map[string]*VendorCrates)
	out := &Summary{Vendors: []VendorCrates{}}

	for _, p := range rows {
		if p.CratesCount == 0 || !matches(p, q) {
			continue
		}
		vc, ok := byVendor[p.VendorID]
		if !ok {
			vc = &VendorCrates{VendorID: p.VendorID, VendorName: p.VendorName}
			byVendor[p.VendorID] = vc
		}
		vc.Issued += p.CratesCount
		vc.Returned += p.ReturnedCrates
		vc.Purchases = append(vc.Purchases, p)
	}

	for _, vc := range byVendor {
		vc.Pending = vc.Issued - vc.Returned
		out.Issued += vc.Issued
		out.Returned += vc.Returned
		out.Vendors = append(out.Vendors, *vc)
	}
	out.Pending = out.Issued - out.Returned
	sort.Slice(out.Vendors, func(i, j int) bool {
		return out.Vendors[i].VendorName < out.Vendors[j].VendorName
	})
	return out
}

func matches(p models.Purchase, q string) bool {
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.VendorName), q) ||
		strings.Contains(strings.ToLower(p.Item), q) ||
		strings.Contains(strings.ToLower(p.VendorCrateCode), q)
}

// Package bill stores receipt attachments. A parent bill covers everything
// bought from a vendor on one date; a child bill belongs to one purchase.
package bill

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"path"
	"strings"

	"mandi-backend/internal/apperr"
	"mandi-backend/internal/models"
	"mandi-backend/internal/store"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	MaxOriginalSize = 5 * 1024 * 1024
	// Inline bills live in a database row.
	MaxInlineSize = 900 * 1024
)

var allowedTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"application/pdf": true,
}

type Upload struct {
	VendorID     string
	PurchaseDate string
	BillType     models.BillType
	PurchaseID   string
	FileName     string
	MimeType     string
	TotalAmount  float64
	Data         []byte
}

type Service struct {
	store *store.Store
	// nil keeps bills inline.
	blobs BlobStore
	log   logrus.FieldLogger
}

func NewService(s *store.Store, blobs BlobStore, log logrus.FieldLogger) *Service {
	return &Service{store: s, blobs: blobs, log: log}
}

func (s *Service) Upload(ctx context.Context, in Upload) (*models.Bill, error) {
	mime := strings.ToLower(strings.TrimSpace(in.MimeType))
	if !allowedTypes[mime] {
		return nil, apperr.Validation("only JPEG, PNG or PDF bills are accepted")
	}
	if len(in.Data) == 0 {
		return nil, apperr.Validation("bill file is empty")
	}
	if len(in.Data) > MaxOriginalSize {
		return nil, apperr.Validation("bill file must be at most 5MB")
	}
	if !in.BillType.Valid() {
		return nil, apperr.Validation("bill type must be parent or child")
	}
	if in.TotalAmount < 0 {
		return nil, apperr.Validation("total amount cannot be negative")
	}

	vendor, err := store.Get[models.Vendor](ctx, s.store, in.VendorID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("vendor %s not found", in.VendorID)
	}
	if err != nil {
		return nil, err
	}

	b := &models.Bill{
		VendorID:     vendor.ID,
		VendorName:   vendor.Name,
		PurchaseDate: in.PurchaseDate,
		BillType:     in.BillType,
		FileName:     fileName(in.FileName),
		MimeType:     mime,
		TotalAmount:  in.TotalAmount,
	}

	switch in.BillType {
	case models.BillParent:
		if _, err := models.ParseDate(in.PurchaseDate); err != nil {
			return nil, apperr.Validation("purchase date must be YYYY-MM-DD")
		}
		existing, err := store.Find[models.Bill](ctx, s.store, map[string]any{
			"vendor_id":     vendor.ID,
			"purchase_date": in.PurchaseDate,
			"bill_type":     models.BillParent,
		})
		if err != nil {
			return nil, err
		}
		if len(existing) > 0 {
			return nil, apperr.Conflict("%s already has a bill for %s", vendor.Name, in.PurchaseDate)
		}
	case models.BillChild:
		if in.PurchaseID == "" {
			return nil, apperr.Validation("purchase is required for a child bill")
		}
		p, err := store.Get[models.Purchase](ctx, s.store, in.PurchaseID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("purchase %s not found", in.PurchaseID)
		}
		if err != nil {
			return nil, err
		}
		if p.VendorID != vendor.ID {
			return nil, apperr.Validation("purchase %s is not from %s", p.ID, vendor.Name)
		}
		if in.PurchaseDate != "" && in.PurchaseDate != p.PurchaseDate {
			return nil, apperr.Validation("purchase %s is dated %s", p.ID, p.PurchaseDate)
		}
		b.PurchaseID = &p.ID
		b.Item = p.Item
		b.PurchaseDate = p.PurchaseDate
	}

	data := in.Data
	if mime != "application/pdf" {
		data, err = Recompress(data)
		if err != nil {
			return nil, apperr.Validation("bill image could not be read")
		}
		b.MimeType = "image/jpeg"
		b.FileName = strings.TrimSuffix(b.FileName, path.Ext(b.FileName)) + ".jpg"
	}
	b.ByteSize = int64(len(data))

	if s.blobs != nil {
		b.Storage = models.BillStorageObject
		b.ObjectKey = fmt.Sprintf("bills/%s/%s/%s%s", vendor.ID, b.PurchaseDate, uuid.NewString(), path.Ext(b.FileName))
		if err := s.blobs.Put(ctx, b.ObjectKey, data, b.MimeType); err != nil {
			return nil, err
		}
	} else {
		encoded := base64.StdEncoding.EncodeToString(data)
		if len(encoded) > MaxInlineSize {
			return nil, apperr.Validation("bill is too large to store, upload a smaller file")
		}
		b.Storage = models.BillStorageInline
		b.Data = encoded
	}

	if err := store.Create(ctx, s.store, b); err != nil {
		if b.Storage == models.BillStorageObject {
			s.removeOrphan(ctx, b.ObjectKey)
		}
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"bill_id":   b.ID,
		"vendor_id": b.VendorID,
		"type":      b.BillType,
		"storage":   b.Storage,
		"bytes":     b.ByteSize,
	}).Info("bill uploaded")
	return b, nil
}

// List returns a vendor's bills, newest purchase date first. A non-empty date
// narrows to that day.
func (s *Service) List(ctx context.Context, vendorID, date string) ([]models.Bill, error) {
	eq := map[string]any{"vendor_id": vendorID}
	if date != "" {
		eq["purchase_date"] = date
	}
	return store.Find[models.Bill](ctx, s.store, eq, store.Desc("purchase_date"), store.Desc("uploaded_at"))
}

// Open returns the bill record and its file content.
func (s *Service) Open(ctx context.Context, id string) (*models.Bill, []byte, error) {
	b, err := store.Get[models.Bill](ctx, s.store, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil, apperr.NotFound("bill %s not found", id)
	}
	if err != nil {
		return nil, nil, err
	}

	switch b.Storage {
	case models.BillStorageInline:
		data, err := base64.StdEncoding.DecodeString(b.Data)
		if err != nil {
			return nil, nil, fmt.Errorf("decode bill %s: %w", id, err)
		}
		return b, data, nil
	case models.BillStorageObject:
		if s.blobs == nil {
			return nil, nil, fmt.Errorf("bill %s is in object storage, which is not configured", id)
		}
		data, err := s.blobs.Get(ctx, b.ObjectKey)
		if err != nil {
			return nil, nil, err
		}
		return b, data, nil
	}
	return nil, nil, fmt.Errorf("bill %s has unknown storage %q", id, b.Storage)
}

// removeOrphan deletes an uploaded object whose bill row was not written.
func (s *Service) removeOrphan(ctx context.Context, key string) {
	if err := s.blobs.Delete(ctx, key); err != nil {
		s.log.WithField("object_key", key).WithError(err).Warn("orphaned bill object not removed")
	}
}

func fileName(name string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if name == "" || name == "." || name == "/" {
		return "bill"
	}
	return name
}

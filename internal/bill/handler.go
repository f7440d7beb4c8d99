package bill

import (
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"mandi-backend/internal/apperr"
	"mandi-backend/internal/audit"
	"mandi-backend/internal/auth"
	"mandi-backend/internal/httpx"
	"mandi-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// UploadBillRequest is the JSON form of an upload; Data is base64, with or
// without a data: URL prefix.
type UploadBillRequest struct {
	VendorID     string  `json:"vendor_id" validate:"required"`
	PurchaseDate string  `json:"purchase_date"`
	BillType     string  `json:"bill_type" validate:"required,oneof=parent child"`
	PurchaseID   string  `json:"purchase_id"`
	FileName     string  `json:"file_name" validate:"required,max=255"`
	MimeType     string  `json:"mime_type" validate:"required"`
	TotalAmount  float64 `json:"total_amount" validate:"gte=0"`
	Data         string  `json:"data" validate:"required"`
}

// POST /api/bills
// multipart/form-data (file + fields) or JSON with base64 data
func UploadBillHandler(svc *Service, logs *audit.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var (
			in  Upload
			err error
		)
		if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
			in, err = fromMultipart(c)
		} else {
			in, err = fromJSON(c)
		}
		if err != nil {
			return err
		}

		b, err := svc.Upload(c.UserContext(), in)
		if err != nil {
			return err
		}

		userID, userName := auth.CurrentUser(c)
		logs.Record(c.UserContext(), audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "bill",
			EntityID:    b.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("%s bill uploaded for %s on %s", b.BillType, b.VendorName, b.PurchaseDate),
			After:       b,
		})

		return c.Status(fiber.StatusCreated).JSON(b)
	}
}

func fromMultipart(c *fiber.Ctx) (Upload, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return Upload{}, apperr.Validation("file is required")
	}
	if fh.Size > MaxOriginalSize {
		return Upload{}, apperr.Validation("bill file must be at most 5MB")
	}
	f, err := fh.Open()
	if err != nil {
		return Upload{}, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxOriginalSize+1))
	if err != nil {
		return Upload{}, fmt.Errorf("read upload: %w", err)
	}

	mime := fh.Header.Get(fiber.HeaderContentType)
	if mime == "" || mime == "application/octet-stream" {
		mime = http.DetectContentType(data)
	}

	var total float64
	if v := c.FormValue("total_amount"); v != "" {
		total, err = strconv.ParseFloat(v, 64)
		if err != nil {
			return Upload{}, apperr.Validation("total_amount must be a number")
		}
	}

	return Upload{
		VendorID:     c.FormValue("vendor_id"),
		PurchaseDate: c.FormValue("purchase_date"),
		BillType:     models.BillType(c.FormValue("bill_type")),
		PurchaseID:   c.FormValue("purchase_id"),
		FileName:     fh.Filename,
		MimeType:     strings.SplitN(mime, ";", 2)[0],
		TotalAmount:  total,
		Data:         data,
	}, nil
}

func fromJSON(c *fiber.Ctx) (Upload, error) {
	var body UploadBillRequest
	if err := httpx.ParseBody(c, &body); err != nil {
		return Upload{}, err
	}

	payload := body.Data
	if i := strings.Index(payload, ";base64,"); strings.HasPrefix(payload, "data:") && i > 0 {
		payload = payload[i+len(";base64,"):]
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Upload{}, apperr.Validation("data must be base64")
	}

	return Upload{
		VendorID:     body.VendorID,
		PurchaseDate: body.PurchaseDate,
		BillType:     models.BillType(body.BillType),
		PurchaseID:   body.PurchaseID,
		FileName:     body.FileName,
		MimeType:     body.MimeType,
		TotalAmount:  body.TotalAmount,
		Data:         data,
	}, nil
}

// GET /api/bills?vendor_id=&date=
func ListBillsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		vendorID := c.Query("vendor_id")
		if vendorID == "" {
			return apperr.Validation("vendor_id is required")
		}
		bills, err := svc.List(c.UserContext(), vendorID, c.Query("date"))
		if err != nil {
			return err
		}
		return c.JSON(bills)
	}
}

// GET /api/vendors/:id/bills
func VendorBillsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		bills, err := svc.List(c.UserContext(), c.Params("id"), "")
		if err != nil {
			return err
		}
		return c.JSON(bills)
	}
}

// GET /api/bills/:id/file
func DownloadBillHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		b, data, err := svc.Open(c.UserContext(), c.Params("id"))
		if err != nil {
			return err
		}
		c.Set(fiber.HeaderContentType, b.MimeType)
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="%s"`, b.FileName))
		return c.Send(data)
	}
}

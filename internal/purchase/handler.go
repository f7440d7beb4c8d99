package purchase

import (
	"errors"
	"fmt"

	"mandi-backend/internal/apperr"
	"mandi-backend/internal/audit"
	"mandi-backend/internal/auth"
	"mandi-backend/internal/financial"
	"mandi-backend/internal/httpx"
	"mandi-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// -------------------------
// Request/Response Types
// -------------------------

type CreatePurchaseRequest struct {
	VendorID        string  `json:"vendor_id" validate:"required"`
	Item            string  `json:"item" validate:"required,max=100"`
	OrderedWeight   float64 `json:"ordered_weight" validate:"gt=0"`
	PricePerKg      float64 `json:"price_per_kg" validate:"gt=0"`
	PurchaseDate    string  `json:"purchase_date" validate:"required,datetime=2006-01-02"`
	CratesCount     int     `json:"crates_count" validate:"gte=0"`
	VendorCrateCode string  `json:"vendor_crate_code"`
}

type BatchLine struct {
	Item            string  `json:"item" validate:"required,max=100"`
	OrderedWeight   float64 `json:"ordered_weight" validate:"gt=0"`
	PricePerKg      float64 `json:"price_per_kg" validate:"gt=0"`
	CratesCount     int     `json:"crates_count" validate:"gte=0"`
	VendorCrateCode string  `json:"vendor_crate_code"`
}

type CreateBatchRequest struct {
	VendorID     string      `json:"vendor_id" validate:"required"`
	PurchaseDate string      `json:"purchase_date" validate:"required,datetime=2006-01-02"`
	Items        []BatchLine `json:"items" validate:"required,min=1,dive"`
}

type VerifyRequest struct {
	ReceivedWeight float64 `json:"received_weight" validate:"gt=0"`
}

type PurchaseResponse struct {
	models.Purchase
	EffectiveCost   float64 `json:"effective_cost"`
	RemainingCrates int     `json:"remaining_crates"`
}

type BatchFailure struct {
	Error       string             `json:"error"`
	FailedIndex int                `json:"failed_index"`
	Committed   []PurchaseResponse `json:"committed"`
}

func toResponse(p models.Purchase) PurchaseResponse {
	return PurchaseResponse{
		Purchase:        p,
		EffectiveCost:   financial.EffectiveCost(p),
		RemainingCrates: p.RemainingCrates(),
	}
}

func toResponses(rows []models.Purchase) []PurchaseResponse {
	out := make([]PurchaseResponse, 0, len(rows))
	for _, p := range rows {
		out = append(out, toResponse(p))
	}
	return out
}

// -------------------------
// Purchase Handlers
// -------------------------

// POST /api/purchases
func CreatePurchaseHandler(eng *Engine, logs *audit.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreatePurchaseRequest
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}

		p, err := eng.RecordPurchase(c.UserContext(), NewPurchase{
			VendorID:      body.VendorID,
			Item:          body.Item,
			OrderedWeight: body.OrderedWeight,
			PricePerKg:    body.PricePerKg,
			PurchaseDate:  body.PurchaseDate,
			CratesCount:   body.CratesCount,
			CrateCode:     body.VendorCrateCode,
		})
		if err != nil {
			return err
		}

		auditCreate(c, logs, p)
		return c.Status(fiber.StatusCreated).JSON(toResponse(*p))
	}
}

// POST /api/purchases/batch
func CreateBatchHandler(eng *Engine, logs *audit.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateBatchRequest
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}

		items := make([]BatchItem, 0, len(body.Items))
		for _, l := range body.Items {
			items = append(items, BatchItem{
				Item:          l.Item,
				OrderedWeight: l.OrderedWeight,
				PricePerKg:    l.PricePerKg,
				CratesCount:   l.CratesCount,
				CrateCode:     l.VendorCrateCode,
			})
		}

		done, err := eng.RecordBatch(c.UserContext(), body.VendorID, body.PurchaseDate, items)
		for i := range done {
			auditCreate(c, logs, &done[i])
		}
		if err == nil {
			return c.Status(fiber.StatusCreated).JSON(toResponses(done))
		}

		var be *BatchError
		if !errors.As(err, &be) {
			return err
		}
		code, msg, ok := apperr.Status(be.Err)
		if !ok {
			eng.log.WithFields(logrus.Fields{
				"vendor_id":    body.VendorID,
				"failed_index": be.Index,
				"committed":    len(done),
			}).WithError(be.Err).Error("purchase batch interrupted")
			msg = "unexpected server error"
		}
		return c.Status(code).JSON(BatchFailure{
			Error:       msg,
			FailedIndex: be.Index,
			Committed:   toResponses(done),
		})
	}
}

// GET /api/purchases?date=2024-01-01
// GET /api/purchases?from=2024-01-01&to=2024-01-31
// GET /api/purchases?vendor_id=...
func ListPurchasesHandler(eng *Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		var (
			rows []models.Purchase
			err  error
		)
		switch {
		case c.Query("date") != "":
			rows, err = eng.ByDate(ctx, c.Query("date"))
		case c.Query("from") != "" || c.Query("to") != "":
			rows, err = eng.ByRange(ctx, c.Query("from"), c.Query("to"))
		case c.Query("vendor_id") != "":
			rows, err = eng.ByVendor(ctx, c.Query("vendor_id"))
		default:
			rows, err = eng.All(ctx)
		}
		if err != nil {
			return err
		}
		return c.JSON(toResponses(rows))
	}
}

// GET /api/vendors/:id/purchases
func VendorPurchasesHandler(eng *Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rows, err := eng.ByVendor(c.UserContext(), c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(toResponses(rows))
	}
}

// GET /api/purchases/pending
func PendingPurchasesHandler(eng *Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		groups, err := eng.Pending(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(groups)
	}
}

// GET /api/purchases/:id
func GetPurchaseHandler(eng *Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := eng.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(toResponse(*p))
	}
}

// POST /api/purchases/:id/verify
func VerifyPurchaseHandler(eng *Engine, logs *audit.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body VerifyRequest
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}

		id := c.Params("id")
		before, err := eng.Get(c.UserContext(), id)
		if err != nil {
			return err
		}

		p, err := eng.VerifyWeight(c.UserContext(), id, body.ReceivedWeight)
		if err != nil {
			return err
		}

		desc := fmt.Sprintf("Weight verified: %s %.2fkg of %.2fkg", p.Item, body.ReceivedWeight, p.OrderedWeight)
		if p.DiscrepancyAmount != nil {
			desc += fmt.Sprintf(" (short %.2fkg)", *p.DiscrepancyAmount)
		}

		userID, userName := auth.CurrentUser(c)
		logs.Record(c.UserContext(), audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "purchase",
			EntityID:    p.ID,
			Action:      models.AuditActionUpdate,
			Description: desc,
			Before:      before,
			After:       p,
		})

		return c.JSON(toResponse(*p))
	}
}

func auditCreate(c *fiber.Ctx, logs *audit.Service, p *models.Purchase) {
	userID, userName := auth.CurrentUser(c)
	logs.Record(c.UserContext(), audit.LogOptions{
		UserID:      userID,
		UserName:    userName,
		EntityType:  "purchase",
		EntityID:    p.ID,
		Action:      models.AuditActionCreate,
		Description: fmt.Sprintf("Purchase: %s %.2fkg from %s", p.Item, p.OrderedWeight, p.VendorName),
		After:       p,
	})
}

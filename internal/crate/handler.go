package crate

import (
	"fmt"

	"mandi-backend/internal/audit"
	"mandi-backend/internal/auth"
	"mandi-backend/internal/httpx"
	"mandi-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type ReturnCratesRequest struct {
	Count      int    `json:"count" validate:"gt=0"`
	ReturnDate string `json:"return_date" validate:"required,datetime=2006-01-02"`
}

// GET /api/crates?vendor_id=&date=&q=
func CrateSummaryHandler(l *Ledger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := l.Summary(c.UserContext(), Filter{
			VendorID: c.Query("vendor_id"),
			Date:     c.Query("date"),
			Query:    c.Query("q"),
		})
		if err != nil {
			return err
		}
		return c.JSON(s)
	}
}

// POST /api/purchases/:id/crate-returns
func ReturnCratesHandler(l *Ledger, logs *audit.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ReturnCratesRequest
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}

		p, err := l.ReturnCrates(c.UserContext(), c.Params("id"), body.ReturnDate, body.Count)
		if err != nil {
			return err
		}

		userID, userName := auth.CurrentUser(c)
		logs.Record(c.UserContext(), audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "purchase",
			EntityID:    p.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("%d crates (%s) returned to %s, %d outstanding", body.Count, p.VendorCrateCode, p.VendorName, p.RemainingCrates()),
			After:       p,
		})

		return c.JSON(p)
	}
}

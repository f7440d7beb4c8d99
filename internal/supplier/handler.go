package supplier

import (
	"fmt"

	"mandi-backend/internal/audit"
	"mandi-backend/internal/auth"
	"mandi-backend/internal/httpx"
	"mandi-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// -------------------------
// Request Types
// -------------------------

type CreateVendorRequest struct {
	Name            string   `json:"name" validate:"required,max=200"`
	Contact         string   `json:"contact" validate:"max=100"`
	Location        string   `json:"location" validate:"max=255"`
	CrateCodes      []string `json:"crate_codes"`
	CrateCodePrefix string   `json:"crate_code_prefix"`
}

type UpdateVendorRequest struct {
	Name       *string   `json:"name"`
	Contact    *string   `json:"contact"`
	Location   *string   `json:"location"`
	CrateCodes *[]string `json:"crate_codes"`
}

// -------------------------
// Vendor CRUD
// -------------------------

// POST /api/vendors
func CreateVendorHandler(svc *Service, logs *audit.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateVendorRequest
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}

		v, err := svc.Create(c.UserContext(), CreateInput{
			Name:            body.Name,
			Contact:         body.Contact,
			Location:        body.Location,
			CrateCodes:      body.CrateCodes,
			CrateCodePrefix: body.CrateCodePrefix,
		})
		if err != nil {
			return err
		}

		userID, userName := auth.CurrentUser(c)
		logs.Record(c.UserContext(), audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "vendor",
			EntityID:    v.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Vendor added: %s", v.Name),
			After:       v,
		})

		return c.Status(fiber.StatusCreated).JSON(v)
	}
}

// GET /api/vendors
func ListVendorsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		vendors, err := svc.List(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(vendors)
	}
}

// GET /api/vendors/:id
func GetVendorHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		v, err := svc.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(v)
	}
}

// PUT /api/vendors/:id
func UpdateVendorHandler(svc *Service, logs *audit.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		before, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return err
		}

		var body UpdateVendorRequest
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}

		v, err := svc.Update(c.UserContext(), id, UpdateInput{
			Name:       body.Name,
			Contact:    body.Contact,
			Location:   body.Location,
			CrateCodes: body.CrateCodes,
		})
		if err != nil {
			return err
		}

		userID, userName := auth.CurrentUser(c)
		logs.Record(c.UserContext(), audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "vendor",
			EntityID:    v.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Vendor updated: %s", v.Name),
			Before:      before,
			After:       v,
		})

		return c.JSON(v)
	}
}

package catalog

import (
	"fmt"

	"mandi-backend/internal/audit"
	"mandi-backend/internal/auth"
	"mandi-backend/internal/httpx"
	"mandi-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreateVegetableRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Category string `json:"category" validate:"required,oneof=vegetable fruit"`
}

// GET /api/vegetables
func ListVegetablesHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := svc.List(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(items)
	}
}

// POST /api/vegetables
func CreateVegetableHandler(svc *Service, logs *audit.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateVegetableRequest
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}

		item, err := svc.Add(c.UserContext(), body.Name, models.ItemCategory(body.Category))
		if err != nil {
			return err
		}

		userID, userName := auth.CurrentUser(c)
		logs.Record(c.UserContext(), audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "vegetable",
			EntityID:    item.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Catalog item added: %s (%s)", item.Name, item.Category),
			After:       item,
		})

		return c.Status(fiber.StatusCreated).JSON(item)
	}
}

package sales

import (
	"fmt"

	"mandi-backend/internal/audit"
	"mandi-backend/internal/auth"
	"mandi-backend/internal/httpx"
	"mandi-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreateSaleRequest struct {
	Item              string  `json:"item" validate:"required,max=100"`
	QuantitySold      float64 `json:"quantity_sold" validate:"gt=0"`
	SellingPricePerKg float64 `json:"selling_price_per_kg" validate:"gt=0"`
	SaleDate          string  `json:"sale_date" validate:"required,datetime=2006-01-02"`
	CustomerName      string  `json:"customer_name" validate:"max=100"`
	PaymentMethod     string  `json:"payment_method" validate:"required,oneof=cash upi card credit"`
}

// POST /api/sales
func CreateSaleHandler(svc *Service, logs *audit.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateSaleRequest
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}

		sale, err := svc.AddSale(c.UserContext(), NewSale{
			Item:              body.Item,
			QuantitySold:      body.QuantitySold,
			SellingPricePerKg: body.SellingPricePerKg,
			SaleDate:          body.SaleDate,
			CustomerName:      body.CustomerName,
			PaymentMethod:     models.PaymentMethod(body.PaymentMethod),
		})
		if err != nil {
			return err
		}

		userID, userName := auth.CurrentUser(c)
		logs.Record(c.UserContext(), audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "sale",
			EntityID:    sale.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Sale: %s %.2fkg for %.2f (%s)", sale.Item, sale.QuantitySold, sale.TotalSaleAmount, sale.PaymentMethod),
			After:       sale,
		})

		return c.Status(fiber.StatusCreated).JSON(sale)
	}
}

// GET /api/sales?from=&to=
func ListSalesHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rows, err := svc.List(c.UserContext(), c.Query("from"), c.Query("to"))
		if err != nil {
			return err
		}
		return c.JSON(rows)
	}
}

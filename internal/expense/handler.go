package expense

import (
	"fmt"

	"mandi-backend/internal/audit"
	"mandi-backend/internal/auth"
	"mandi-backend/internal/httpx"
	"mandi-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreateExpenseRequest struct {
	Category    string  `json:"category" validate:"required,oneof=transportation storage utilities labor rent maintenance other"`
	Description string  `json:"description" validate:"max=255"`
	Amount      float64 `json:"amount" validate:"gt=0"`
	ExpenseDate string  `json:"expense_date" validate:"required,datetime=2006-01-02"`
	ReceiptURL  string  `json:"receipt_url" validate:"omitempty,url,max=500"`
}

// -------------------------
// Expense Handlers
// -------------------------

// POST /api/expenses
func CreateExpenseHandler(svc *Service, logs *audit.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateExpenseRequest
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}

		e, err := svc.AddExpense(c.UserContext(), NewExpense{
			Category:    models.ExpenseCategory(body.Category),
			Description: body.Description,
			Amount:      body.Amount,
			ExpenseDate: body.ExpenseDate,
			ReceiptURL:  body.ReceiptURL,
		})
		if err != nil {
			return err
		}

		userID, userName := auth.CurrentUser(c)
		logs.Record(c.UserContext(), audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "expense",
			EntityID:    e.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Expense: %s %.2f", e.Category, e.Amount),
			After:       e,
		})

		return c.Status(fiber.StatusCreated).JSON(e)
	}
}

// GET /api/expenses?from=&to=
func ListExpensesHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rows, err := svc.List(c.UserContext(), c.Query("from"), c.Query("to"))
		if err != nil {
			return err
		}
		return c.JSON(rows)
	}
}

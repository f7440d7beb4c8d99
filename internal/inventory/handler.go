package inventory

import (
	"fmt"

	"mandi-backend/internal/audit"
	"mandi-backend/internal/auth"
	"mandi-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// GET /api/inventory
func ListInventoryHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := svc.List(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(items)
	}
}

// POST /api/admin/reconcile
func ReconcileHandler(svc *Service, logs *audit.Service, log logrus.FieldLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := svc.Rebuild(c.UserContext())
		if err != nil {
			return err
		}

		log.WithFields(logrus.Fields{
			"items_corrected":   len(res.Items),
			"vendors_corrected": len(res.Vendors),
		}).Info("reconciliation finished")

		if len(res.Items)+len(res.Vendors) > 0 {
			userID, userName := auth.CurrentUser(c)
			logs.Record(c.UserContext(), audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "inventory",
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Reconciliation corrected %d items, %d vendor counters", len(res.Items), len(res.Vendors)),
				After:       res,
			})
		}

		return c.JSON(res)
	}
}

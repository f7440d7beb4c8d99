package audit

import (
	"github.com/gofiber/fiber/v2"
)

// GET /api/audit-logs?entity_type=purchase&entity_id=...&user_id=...
func ListAuditLogsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		logs, err := svc.List(c.UserContext(), Filter{
			EntityType: c.Query("entity_type"),
			EntityID:   c.Query("entity_id"),
			UserID:     c.Query("user_id"),
		})
		if err != nil {
			return err
		}
		return c.JSON(logs)
	}
}

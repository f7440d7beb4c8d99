package financial

import (
	"bytes"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// GET /api/reports/financial?range=today|week|month|custom&from=&to=
func FinancialReportHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		r, err := svc.Report(c.UserContext(), Preset(c.Query("range")), c.Query("from"), c.Query("to"))
		if err != nil {
			return err
		}
		return c.JSON(r)
	}
}

// GET /api/reports/financial/export?range=...
func ExportReportHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		r, err := svc.Report(c.UserContext(), Preset(c.Query("range")), c.Query("from"), c.Query("to"))
		if err != nil {
			return err
		}

		var buf bytes.Buffer
		if err := WriteWorkbook(r, &buf); err != nil {
			return fmt.Errorf("render workbook: %w", err)
		}

		c.Set(fiber.HeaderContentType, XLSXContentType)
		c.Set(fiber.HeaderContentDisposition,
			fmt.Sprintf(`attachment; filename="financial-%s-%s.xlsx"`, r.From, r.To))
		return c.Send(buf.Bytes())
	}
}

// GET /api/dashboard
func DashboardHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		d, err := svc.Dashboard(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(d)
	}
}

// GET /api/vendors/:id/details
func VendorDetailsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		d, err := svc.VendorDetails(c.UserContext(), c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(d)
	}
}

package controllers

import (
	"clinicore-backend/middlewares"
	"clinicore-backend/models"
	"clinicore-backend/reports"

	"github.com/gofiber/fiber/v2"
)

// BillingReport serves ?reportType=summary|detailed over a date range.
func BillingReport(c *fiber.Ctx) error {
	reportType := c.Query("reportType", "summary")
	if reportType != "summary" && reportType != "detailed" {
		return fiber.NewError(fiber.StatusBadRequest, "reportType must be summary or detailed")
	}

	q := middlewares.Tx(c).Model(&models.Invoice{}).Preload("Items")
	start, end, err := dateRange(c)
	if err != nil {
		return err
	}
	if start != nil {
		q = q.Where("created_at >= ?", *start)
	}
	if end != nil {
		q = q.Where("created_at < ?", *end)
	}

	var invoices []models.Invoice
	if err := q.Find(&invoices).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not load invoices")
	}

	if reportType == "detailed" {
		return c.JSON(fiber.Map{"report_type": reportType, "rows": reports.Detailed(invoices)})
	}
	return c.JSON(fiber.Map{"report_type": reportType, "summary": reports.Summary(invoices)})
}

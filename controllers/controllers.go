package controllers

import (
	"time"

	"clinicore-backend/billing"
	"clinicore-backend/config"
	"clinicore-backend/database"

	"github.com/gofiber/fiber/v2"
)

var (
	billingCfg config.Billing
	builder    *billing.Builder
)

// Init wires the billing engine. Call after database.Connect.
func Init() {
	billingCfg = config.LoadBilling()
	resolver := billing.NewCatalogResolver(database.DB, billingCfg.CatalogTimeout)
	builder = billing.NewBuilder(resolver, billingCfg)
}

// caller identity pulled from the auth middleware locals.
type caller struct {
	UserID    string
	Role      string
	PatientID *uint
}

func callerFrom(c *fiber.Ctx) caller {
	out := caller{}
	out.UserID, _ = c.Locals("userID").(string)
	out.Role, _ = c.Locals("role").(string)
	if pid, ok := c.Locals("patientID").(uint); ok {
		out.PatientID = &pid
	}
	return out
}

// dateRange parses optional startDate/endDate query params (YYYY-MM-DD).
// endDate is inclusive: the filter runs to the end of that day.
func dateRange(c *fiber.Ctx) (start, end *time.Time, err error) {
	if s := c.Query("startDate"); s != "" {
		t, e := time.Parse("2006-01-02", s)
		if e != nil {
			return nil, nil, fiber.NewError(fiber.StatusBadRequest, "invalid startDate, want YYYY-MM-DD")
		}
		start = &t
	}
	if s := c.Query("endDate"); s != "" {
		t, e := time.Parse("2006-01-02", s)
		if e != nil {
			return nil, nil, fiber.NewError(fiber.StatusBadRequest, "invalid endDate, want YYYY-MM-DD")
		}
		t = t.AddDate(0, 0, 1)
		end = &t
	}
	return start, end, nil
}

// pagination reads page/limit query params with sane bounds.
func pagination(c *fiber.Ctx) (page, limit int) {
	page = c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit = c.QueryInt("limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

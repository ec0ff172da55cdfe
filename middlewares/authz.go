package middlewares

import (
	"clinicore-backend/models"

	"github.com/gofiber/fiber/v2"
)

// Capabilities an endpoint may require. Routes declare one capability; the
// table below is the single place role grants live.
const (
	CapInvoiceCreate   = "invoice:create"
	CapInvoiceRead     = "invoice:read"
	CapPaymentRecord   = "payment:record"
	CapInsuranceSubmit = "insurance:submit"
	CapReportRead      = "report:read"
	CapClaimCreate     = "claim:create"
	CapClaimRead       = "claim:read"
	CapClaimUpdate     = "claim:update"
	CapClaimDecide     = "claim:decide"
	CapClaimStats      = "claim:stats"
	CapPatientManage   = "patient:manage"
	CapCatalogManage   = "catalog:manage"
	CapClinicalWrite   = "clinical:write"
)

// capabilityTable maps capability -> roles allowed to exercise it. Ownership
// scoping (a doctor sees only their own claims, a patient only their own
// invoices) is enforced by the handlers on top of this gate.
var capabilityTable = map[string][]string{
	CapInvoiceCreate:   {models.RoleAdmin, models.RoleBillingStaff},
	CapInvoiceRead:     {models.RoleAdmin, models.RoleBillingStaff, models.RolePatient},
	CapPaymentRecord:   {models.RoleAdmin, models.RoleBillingStaff},
	CapInsuranceSubmit: {models.RoleAdmin, models.RoleBillingStaff},
	CapReportRead:      {models.RoleAdmin, models.RoleBillingStaff},
	CapClaimCreate:     {models.RoleAdmin, models.RoleDoctor},
	CapClaimRead:       {models.RoleAdmin, models.RoleBillingStaff, models.RoleDoctor, models.RolePatient},
	CapClaimUpdate:     {models.RoleAdmin, models.RoleDoctor},
	CapClaimDecide:     {models.RoleAdmin, models.RoleBillingStaff},
	CapClaimStats:      {models.RoleAdmin, models.RoleBillingStaff},
	CapPatientManage:   {models.RoleAdmin, models.RoleBillingStaff},
	CapCatalogManage:   {models.RoleAdmin},
	CapClinicalWrite:   {models.RoleAdmin, models.RoleDoctor},
}

// Can reports whether role may exercise capability.
func Can(role, capability string) bool {
	for _, r := range capabilityTable[capability] {
		if r == role {
			return true
		}
	}
	return false
}

// Authorize gates a route on a single capability. Runs after
// IsAuthenticatedHeader so the role local is present.
func Authorize(capability string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals("role").(string)
		if !Can(role, capability) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "insufficient permissions",
			})
		}
		return c.Next()
	}
}

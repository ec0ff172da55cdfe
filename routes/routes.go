package routes

import (
	"github.com/gofiber/fiber/v2"

	"clinicore-backend/controllers"
	"clinicore-backend/middlewares"
)

// Register wires all HTTP routes.
func Register(app *fiber.App) {
	api := app.Group("/api")

	// Public auth endpoints
	api.Post("/registration", controllers.Register)
	api.Post("/login", controllers.Login)
	api.Post("/logout", controllers.Logout)

	// Protected endpoints (JWT auth)
	protected := api.Group("")
	protected.Use(middlewares.IsAuthenticatedHeader())

	// Idempotency guard FIRST (not tied to request TX)
	protected.Use(middlewares.Idempotency())

	// Then the per-request transaction (commits/rolls back around the handler)
	protected.Use(middlewares.RequestTx())

	// Administration
	protected.Post("/users", middlewares.Authorize(middlewares.CapCatalogManage), controllers.CreateUser)
	protected.Post("/catalog", middlewares.Authorize(middlewares.CapCatalogManage), controllers.CreateCatalogEntry)
	protected.Get("/catalog", middlewares.Authorize(middlewares.CapInvoiceCreate), controllers.GetCatalog)

	// Patients & insurance administration
	protected.Post("/patients", middlewares.Authorize(middlewares.CapPatientManage), controllers.CreatePatient)
	protected.Get("/patients/:id", middlewares.Authorize(middlewares.CapInvoiceRead), controllers.GetPatient)
	protected.Post("/patients/:patientId/policies", middlewares.Authorize(middlewares.CapPatientManage), controllers.CreatePolicy)
	protected.Post("/insurance/providers", middlewares.Authorize(middlewares.CapPatientManage), controllers.CreateInsuranceProvider)

	// Clinical references (consumed, never created, by the billing core)
	protected.Post("/lab-orders", middlewares.Authorize(middlewares.CapClinicalWrite), controllers.CreateLabOrder)
	protected.Post("/prescriptions", middlewares.Authorize(middlewares.CapClinicalWrite), controllers.CreatePrescription)

	// Billing
	protected.Post("/billing/invoices", middlewares.Authorize(middlewares.CapInvoiceCreate), controllers.CreateInvoice)
	protected.Get("/billing/invoices", middlewares.Authorize(middlewares.CapInvoiceRead), controllers.GetInvoices)
	protected.Get("/billing/invoices/:id", middlewares.Authorize(middlewares.CapInvoiceRead), controllers.GetInvoice)
	protected.Delete("/billing/invoices/:id", middlewares.Authorize(middlewares.CapInvoiceCreate), controllers.CancelInvoice)
	protected.Post("/billing/invoices/:id/payments", middlewares.Authorize(middlewares.CapPaymentRecord), controllers.RecordPayment)
	protected.Post("/billing/invoices/:id/insurance/submit", middlewares.Authorize(middlewares.CapInsuranceSubmit), controllers.SubmitInvoiceInsurance)
	protected.Patch("/billing/invoices/:id/insurance/status", middlewares.Authorize(middlewares.CapInsuranceSubmit), controllers.UpdateInvoiceInsuranceStatus)
	protected.Get("/billing/reports/billing", middlewares.Authorize(middlewares.CapReportRead), controllers.BillingReport)
	protected.Get("/billing/patients/:patientId/billing-history", middlewares.Authorize(middlewares.CapInvoiceRead), controllers.PatientBillingHistory)

	// Insurance claims
	protected.Post("/insurance/claims", middlewares.Authorize(middlewares.CapClaimCreate), controllers.CreateClaim)
	protected.Get("/insurance/claims", middlewares.Authorize(middlewares.CapClaimRead), controllers.GetClaims)
	protected.Get("/insurance/claims/statistics", middlewares.Authorize(middlewares.CapClaimStats), controllers.ClaimStatistics)
	protected.Get("/insurance/claims/:id", middlewares.Authorize(middlewares.CapClaimRead), controllers.GetClaim)
	protected.Put("/insurance/claims/:id", middlewares.Authorize(middlewares.CapClaimUpdate), controllers.UpdateClaim)
	protected.Patch("/insurance/claims/:id/submit", middlewares.Authorize(middlewares.CapClaimUpdate), controllers.SubmitClaim)
	protected.Patch("/insurance/claims/:id/status", middlewares.Authorize(middlewares.CapClaimDecide), controllers.UpdateClaimStatus)
	protected.Delete("/insurance/claims/:id", middlewares.Authorize(middlewares.CapClaimUpdate), controllers.CancelClaim)
}

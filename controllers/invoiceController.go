package controllers

import (
	"time"

	"clinicore-backend/billing"
	"clinicore-backend/middlewares"
	"clinicore-backend/models"

	"github.com/gofiber/fiber/v2"
)

func CreateInvoice(c *fiber.Ctx) error {
	var req billing.BuildRequest
	if err := middlewares.BindAndValidate(c, &req); err != nil {
		return err
	}
	who := callerFrom(c)

	invoice, err := builder.Build(c.UserContext(), middlewares.Tx(c), req, who.UserID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(invoice)
}

func GetInvoices(c *fiber.Ctx) error {
	who := callerFrom(c)
	q := middlewares.Tx(c).Model(&models.Invoice{}).Preload("Items").Preload("Payments")

	// Patients only ever see their own invoices.
	if who.Role == models.RolePatient {
		if who.PatientID == nil {
			return fiber.NewError(fiber.StatusForbidden, "account is not linked to a patient record")
		}
		q = q.Where("patient_id = ?", *who.PatientID)
	} else if pid := c.QueryInt("patientId", 0); pid > 0 {
		q = q.Where("patient_id = ?", pid)
	}

	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
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

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not count invoices")
	}

	page, limit := pagination(c)
	var invoices []models.Invoice
	if err := q.Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&invoices).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not load invoices")
	}

	return c.JSON(fiber.Map{
		"data":  invoices,
		"page":  page,
		"limit": limit,
		"total": total,
	})
}

func GetInvoice(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid invoice id")
	}

	var invoice models.Invoice
	if err := middlewares.Tx(c).
		Preload("Items").Preload("Payments").Preload("Patient").
		First(&invoice, id).Error; err != nil {
		return fiber.NewError(fiber.StatusNotFound, "invoice not found")
	}

	who := callerFrom(c)
	if who.Role == models.RolePatient && (who.PatientID == nil || *who.PatientID != invoice.PatientID) {
		return fiber.NewError(fiber.StatusForbidden, "patients may only view their own invoices")
	}
	return c.JSON(invoice)
}

func RecordPayment(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid invoice id")
	}

	var in billing.PaymentInput
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	who := callerFrom(c)

	invoice, err := billing.RecordPayment(middlewares.Tx(c), uint(id), in, who.UserID, time.Now().UTC())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"invoice_number": invoice.InvoiceNumber,
		"total_amount":   invoice.Total,
		"total_paid":     invoice.PaidTotal,
		"balance":        invoice.Balance,
		"status":         invoice.Status,
	})
}

// CancelInvoice voids an invoice before any payment has posted.
func CancelInvoice(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid invoice id")
	}

	invoice, err := billing.CancelInvoice(middlewares.Tx(c), uint(id))
	if err != nil {
		return err
	}
	return c.JSON(invoice)
}

func SubmitInvoiceInsurance(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid invoice id")
	}

	invoice, err := billing.SubmitInsurance(middlewares.Tx(c), uint(id), time.Now().UTC())
	if err != nil {
		return err
	}
	return c.JSON(invoice)
}

type insuranceStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func UpdateInvoiceInsuranceStatus(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid invoice id")
	}
	var req insuranceStatusRequest
	if err := middlewares.BindAndValidate(c, &req); err != nil {
		return err
	}

	invoice, err := billing.UpdateInsuranceStatus(middlewares.Tx(c), uint(id), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(invoice)
}

// PatientBillingHistory lists a patient's invoices, newest first. Patients
// may only ask for their own history.
func PatientBillingHistory(c *fiber.Ctx) error {
	patientID, err := c.ParamsInt("patientId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid patient id")
	}

	who := callerFrom(c)
	if who.Role == models.RolePatient && (who.PatientID == nil || int(*who.PatientID) != patientID) {
		return fiber.NewError(fiber.StatusForbidden, "patients may only view their own billing history")
	}

	var invoices []models.Invoice
	if err := middlewares.Tx(c).
		Preload("Items").Preload("Payments").
		Where("patient_id = ?", patientID).
		Order("created_at DESC").
		Find(&invoices).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not load billing history")
	}
	return c.JSON(invoices)
}

package controllers

import (
	"clinicore-backend/middlewares"
	"clinicore-backend/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type createLabOrderRequest struct {
	PatientID uint     `json:"patient_id" validate:"required"`
	Tests     []string `json:"tests" validate:"required,min=1,dive,required"`
}

func CreateLabOrder(c *fiber.Ctx) error {
	var req createLabOrderRequest
	if err := middlewares.BindAndValidate(c, &req); err != nil {
		return err
	}
	who := callerFrom(c)

	order := models.LabOrder{
		PatientID: req.PatientID,
		OrderedBy: who.UserID,
		Tests:     req.Tests,
	}
	if err := middlewares.Tx(c).Create(&order).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not create lab order")
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

type createPrescriptionRequest struct {
	PatientID   uint                    `json:"patient_id" validate:"required"`
	Medications []models.MedicationLine `json:"medications" validate:"required,min=1"`
}

func CreatePrescription(c *fiber.Ctx) error {
	var req createPrescriptionRequest
	if err := middlewares.BindAndValidate(c, &req); err != nil {
		return err
	}
	for _, m := range req.Medications {
		if m.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "medication name is required")
		}
	}
	who := callerFrom(c)

	rx := models.Prescription{
		PatientID:    req.PatientID,
		PrescribedBy: who.UserID,
		Medications:  req.Medications,
	}
	if err := middlewares.Tx(c).Create(&rx).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not create prescription")
	}
	return c.Status(fiber.StatusCreated).JSON(rx)
}

type createCatalogEntryRequest struct {
	Code       string          `json:"code" validate:"required"`
	Name       string          `json:"name" validate:"required"`
	Department string          `json:"department" validate:"required"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
}

func CreateCatalogEntry(c *fiber.Ctx) error {
	var req createCatalogEntryRequest
	if err := middlewares.BindAndValidate(c, &req); err != nil {
		return err
	}
	if !req.UnitPrice.IsPositive() {
		return fiber.NewError(fiber.StatusBadRequest, "unit price must be positive")
	}

	entry := models.ServiceCatalogEntry{
		Code:       req.Code,
		Name:       req.Name,
		Department: req.Department,
		UnitPrice:  req.UnitPrice,
		Active:     true,
	}
	if err := middlewares.Tx(c).Create(&entry).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not create catalog entry (duplicate code?)")
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

func GetCatalog(c *fiber.Ctx) error {
	q := middlewares.Tx(c).Where("active")
	if dept := c.Query("department"); dept != "" {
		q = q.Where("department = ?", dept)
	}
	var entries []models.ServiceCatalogEntry
	if err := q.Order("department, name").Find(&entries).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not load catalog")
	}
	return c.JSON(entries)
}

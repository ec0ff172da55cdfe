package controllers

import (
	"clinicore-backend/middlewares"
	"clinicore-backend/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type createPatientRequest struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Phone     string `json:"phone"`
	Email     string `json:"email" validate:"omitempty,email"`
}

func CreatePatient(c *fiber.Ctx) error {
	var req createPatientRequest
	if err := middlewares.BindAndValidate(c, &req); err != nil {
		return err
	}

	patient := models.Patient{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Email:     req.Email,
	}
	if err := middlewares.Tx(c).Create(&patient).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not create patient")
	}
	return c.Status(fiber.StatusCreated).JSON(patient)
}

func GetPatient(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid patient id")
	}
	who := callerFrom(c)
	if who.Role == models.RolePatient && (who.PatientID == nil || int(*who.PatientID) != id) {
		return fiber.NewError(fiber.StatusForbidden, "patients may only view their own record")
	}

	var patient models.Patient
	if err := middlewares.Tx(c).Preload("Policies.Provider").First(&patient, id).Error; err != nil {
		return fiber.NewError(fiber.StatusNotFound, "patient not found")
	}
	return c.JSON(patient)
}

type createProviderRequest struct {
	Name              string          `json:"name" validate:"required"`
	Code              string          `json:"code" validate:"required"`
	ReimbursementRate decimal.Decimal `json:"reimbursement_rate"`
}

func CreateInsuranceProvider(c *fiber.Ctx) error {
	var req createProviderRequest
	if err := middlewares.BindAndValidate(c, &req); err != nil {
		return err
	}
	if req.ReimbursementRate.IsNegative() || req.ReimbursementRate.GreaterThan(decimal.NewFromInt(100)) {
		return fiber.NewError(fiber.StatusBadRequest, "reimbursement rate must be between 0 and 100")
	}

	provider := models.InsuranceProvider{
		Name:              req.Name,
		Code:              req.Code,
		ReimbursementRate: req.ReimbursementRate,
		Active:            true,
	}
	if err := middlewares.Tx(c).Create(&provider).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not create provider (duplicate name/code?)")
	}
	return c.Status(fiber.StatusCreated).JSON(provider)
}

type createPolicyRequest struct {
	ProviderID   uint            `json:"provider_id" validate:"required"`
	PolicyNumber string          `json:"policy_number" validate:"required"`
	GroupNumber  string          `json:"group_number"`
	Deductible   decimal.Decimal `json:"deductible"`
	Copay        decimal.Decimal `json:"copay"`
	Primary      bool            `json:"primary"`
}

// CreatePolicy attaches a policy to a patient. At most one active primary
// policy per patient; a new primary demotes the old one.
func CreatePolicy(c *fiber.Ctx) error {
	patientID, err := c.ParamsInt("patientId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid patient id")
	}

	var req createPolicyRequest
	if err := middlewares.BindAndValidate(c, &req); err != nil {
		return err
	}
	if req.Deductible.IsNegative() || req.Copay.IsNegative() {
		return fiber.NewError(fiber.StatusBadRequest, "deductible and copay must not be negative")
	}

	tx := middlewares.Tx(c)

	var patient models.Patient
	if err := tx.First(&patient, patientID).Error; err != nil {
		return fiber.NewError(fiber.StatusNotFound, "patient not found")
	}
	var provider models.InsuranceProvider
	if err := tx.First(&provider, req.ProviderID).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "insurance provider not found")
	}

	if req.Primary {
		if err := tx.Model(&models.InsurancePolicy{}).
			Where(`patient_id = ? AND "primary" AND active`, patientID).
			Update("primary", false).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not demote existing primary policy")
		}
	}

	policy := models.InsurancePolicy{
		PatientID:    patient.ID,
		ProviderID:   provider.ID,
		PolicyNumber: req.PolicyNumber,
		GroupNumber:  req.GroupNumber,
		Deductible:   req.Deductible,
		Copay:        req.Copay,
		Primary:      req.Primary,
		Active:       true,
	}
	if err := tx.Create(&policy).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not create policy")
	}
	policy.Provider = provider
	return c.Status(fiber.StatusCreated).JSON(policy)
}

package controllers

import (
	"time"

	"clinicore-backend/insurance"
	"clinicore-backend/middlewares"
	"clinicore-backend/models"
	"clinicore-backend/reports"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func CreateClaim(c *fiber.Ctx) error {
	var req insurance.CreateClaimRequest
	if err := middlewares.BindAndValidate(c, &req); err != nil {
		return err
	}
	who := callerFrom(c)

	claim, err := insurance.CreateClaim(middlewares.Tx(c), req, who.UserID,
		billingCfg.DefaultReimbursementRate, time.Now().UTC())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(claim)
}

// scopeClaims applies the caller-role filter every claim query runs behind:
// doctors see claims they submitted, patients their own, staff everything
// (optionally narrowed by providerId).
func scopeClaims(q *gorm.DB, c *fiber.Ctx) (*gorm.DB, error) {
	who := callerFrom(c)
	switch who.Role {
	case models.RoleDoctor:
		return q.Where("provider_user_id = ?", who.UserID), nil
	case models.RolePatient:
		if who.PatientID == nil {
			return nil, fiber.NewError(fiber.StatusForbidden, "account is not linked to a patient record")
		}
		return q.Where("patient_id = ?", *who.PatientID), nil
	default:
		if providerID := c.Query("providerId"); providerID != "" {
			q = q.Where("provider_user_id = ?", providerID)
		}
		return q, nil
	}
}

func GetClaims(c *fiber.Ctx) error {
	q := middlewares.Tx(c).Model(&models.InsuranceClaim{}).
		Preload("Policy.Provider")

	q, err := scopeClaims(q, c)
	if err != nil {
		return err
	}

	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if pid := c.QueryInt("patientId", 0); pid > 0 {
		q = q.Where("patient_id = ?", pid)
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
		return fiber.NewError(fiber.StatusInternalServerError, "could not count claims")
	}

	page, limit := pagination(c)
	var claims []models.InsuranceClaim
	if err := q.Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&claims).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not load claims")
	}

	return c.JSON(fiber.Map{
		"data":  claims,
		"page":  page,
		"limit": limit,
		"total": total,
	})
}

func GetClaim(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid claim id")
	}

	var claim models.InsuranceClaim
	if err := middlewares.Tx(c).
		Preload("Policy.Provider").
		Preload("History", func(db *gorm.DB) *gorm.DB { return db.Order("created_at, id") }).
		Preload("Payments").
		First(&claim, id).Error; err != nil {
		return fiber.NewError(fiber.StatusNotFound, "claim not found")
	}

	if err := checkClaimAccess(c, &claim); err != nil {
		return err
	}
	return c.JSON(claim)
}

func checkClaimAccess(c *fiber.Ctx, claim *models.InsuranceClaim) error {
	who := callerFrom(c)
	switch who.Role {
	case models.RoleDoctor:
		if claim.ProviderUserID != who.UserID {
			return fiber.NewError(fiber.StatusForbidden, "doctors may only access their own claims")
		}
	case models.RolePatient:
		if who.PatientID == nil || *who.PatientID != claim.PatientID {
			return fiber.NewError(fiber.StatusForbidden, "patients may only access their own claims")
		}
	}
	return nil
}

func UpdateClaim(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid claim id")
	}
	var edit insurance.ClaimEdit
	if err := middlewares.BindAndValidate(c, &edit); err != nil {
		return err
	}

	tx := middlewares.Tx(c)
	var existing models.InsuranceClaim
	if err := tx.First(&existing, id).Error; err != nil {
		return fiber.NewError(fiber.StatusNotFound, "claim not found")
	}
	if err := checkClaimAccess(c, &existing); err != nil {
		return err
	}

	who := callerFrom(c)
	claim, err := insurance.EditClaim(tx, uint(id), edit, who.UserID, billingCfg.DefaultReimbursementRate)
	if err != nil {
		return err
	}
	return c.JSON(claim)
}

// SubmitClaim moves a Draft claim into Submitted.
func SubmitClaim(c *fiber.Ctx) error {
	return transitionOwnClaim(c, models.ClaimSubmitted, "claim submitted to payer")
}

// CancelClaim cancels a Draft claim. Later states cannot be cancelled; the
// state machine rejects those with a conflict.
func CancelClaim(c *fiber.Ctx) error {
	return transitionOwnClaim(c, models.ClaimCancelled, "claim cancelled before submission")
}

func transitionOwnClaim(c *fiber.Ctx, newStatus, reason string) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid claim id")
	}

	tx := middlewares.Tx(c)
	var existing models.InsuranceClaim
	if err := tx.First(&existing, id).Error; err != nil {
		return fiber.NewError(fiber.StatusNotFound, "claim not found")
	}
	if err := checkClaimAccess(c, &existing); err != nil {
		return err
	}

	who := callerFrom(c)
	claim, err := insurance.Transition(tx, uint(id), newStatus, insurance.Decision{Reason: reason},
		who.UserID, billingCfg.DefaultReimbursementRate, time.Now().UTC())
	if err != nil {
		return err
	}
	return c.JSON(claim)
}

type claimStatusRequest struct {
	Status string `json:"status" validate:"required"`
	insurance.Decision
}

// UpdateClaimStatus is the staff-side lifecycle endpoint: review
// acknowledgment, decisions, appeal outcomes and payment posting.
func UpdateClaimStatus(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid claim id")
	}
	var req claimStatusRequest
	if err := middlewares.BindAndValidate(c, &req); err != nil {
		return err
	}

	who := callerFrom(c)
	claim, err := insurance.Transition(middlewares.Tx(c), uint(id), req.Status, req.Decision,
		who.UserID, billingCfg.DefaultReimbursementRate, time.Now().UTC())
	if err != nil {
		return err
	}
	return c.JSON(claim)
}

// ClaimStatistics aggregates the caller-visible claims over the date range.
func ClaimStatistics(c *fiber.Ctx) error {
	q := middlewares.Tx(c).Model(&models.InsuranceClaim{})

	q, err := scopeClaims(q, c)
	if err != nil {
		return err
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

	var claims []models.InsuranceClaim
	if err := q.Find(&claims).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not load claims")
	}
	return c.JSON(reports.Claims(claims, time.Now().UTC()))
}

package controllers

import (
	"net/mail"
	"time"

	"clinicore-backend/database"
	"clinicore-backend/middlewares"
	"clinicore-backend/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func Register(c *fiber.Ctx) error {
	var data map[string]string
	if err := c.BodyParser(&data); err != nil {
		return err
	}

	if _, err := mail.ParseAddress(data["email"]); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid email format"})
	}

	var mailExist models.User
	database.DB.Where("email = ?", data["email"]).First(&mailExist)
	if mailExist.Email != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "email already exists"})
	}

	if data["password"] != data["password_confirm"] {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "passwords do not match"})
	}

	role := data["role"]
	if role == "" {
		role = models.RolePatient
	}
	switch role {
	case models.RoleAdmin, models.RoleBillingStaff, models.RoleDoctor, models.RolePatient:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "unknown role"})
	}

	// Open registration creates patient accounts. Staff roles are only
	// accepted while no admin exists, to bootstrap a fresh deployment;
	// afterwards staff come through the admin-only /users endpoint.
	if role != models.RolePatient {
		var adminCount int64
		database.DB.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&adminCount)
		if adminCount > 0 {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "staff accounts are created by an admin"})
		}
	}

	tx := database.DB.Begin()

	user := models.User{
		FirstName: data["first_name"],
		LastName:  data["last_name"],
		Email:     data["email"],
		Role:      role,
	}
	user.SetPassword(data["password"])

	// Patient accounts get a patient record up front.
	if role == models.RolePatient {
		patient := models.Patient{
			FirstName: data["first_name"],
			LastName:  data["last_name"],
			Email:     data["email"],
			Phone:     data["phone"],
		}
		if err := tx.Create(&patient).Error; err != nil {
			tx.Rollback()
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "could not create patient record"})
		}
		user.PatientID = &patient.ID
	}

	if err := tx.Create(&user).Error; err != nil {
		tx.Rollback()
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "could not create user"})
	}

	tx.Commit()
	return c.Status(fiber.StatusCreated).JSON(user)
}

// CreateUser is the admin-only path for staff accounts (doctor, billing
// staff, further admins).
func CreateUser(c *fiber.Ctx) error {
	var data map[string]string
	if err := c.BodyParser(&data); err != nil {
		return err
	}
	if _, err := mail.ParseAddress(data["email"]); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid email format"})
	}
	role := data["role"]
	switch role {
	case models.RoleAdmin, models.RoleBillingStaff, models.RoleDoctor:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "unknown staff role"})
	}

	var mailExist models.User
	database.DB.Where("email = ?", data["email"]).First(&mailExist)
	if mailExist.Email != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "email already exists"})
	}

	user := models.User{
		FirstName: data["first_name"],
		LastName:  data["last_name"],
		Email:     data["email"],
		Role:      role,
	}
	user.SetPassword(data["password"])

	if err := middlewares.Tx(c).Create(&user).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "could not create user"})
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

func Login(c *fiber.Ctx) error {
	var data map[string]string
	if err := c.BodyParser(&data); err != nil {
		return err
	}

	if _, err := mail.ParseAddress(data["email"]); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid email format"})
	}

	var user models.User
	database.DB.Where("email = ?", data["email"]).First(&user)

	if _, err := uuid.Parse(user.Id); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid credentials"})
	}
	if err := user.ComparePassword(data["password"]); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid credentials"})
	}

	token, err := middlewares.GenerateJWT(user.Id, user.Role, user.PatientID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "could not issue token"})
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user": fiber.Map{
			"id":    user.Id,
			"name":  user.FirstName + " " + user.LastName,
			"email": user.Email,
			"role":  user.Role,
		},
	})
}

func Logout(c *fiber.Ctx) error {
	cookie := fiber.Cookie{
		Name:     "jwt",
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
	}
	c.Cookie(&cookie)
	return c.JSON(fiber.Map{
		"message": "success",
	})
}

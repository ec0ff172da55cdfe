package middlewares

import (
	"strings"

	"clinicore-backend/database"
	"clinicore-backend/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RequestTx opens a per-request DB transaction for mutating methods, commits
// on success and rolls back on error or panic. Derived invoice/claim fields
// are therefore always written atomically with the triggering change.
// Order: run AFTER IsAuthenticatedHeader and AFTER Idempotency (idempotency
// records must not be tied to the handler TX).
func RequestTx() fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		method := strings.ToUpper(c.Method())
		if method == fiber.MethodGet || method == fiber.MethodHead {
			return c.Next()
		}

		tx := database.DB.Begin()
		if tx.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to begin transaction")
		}

		// Ensure we always cleanup.
		defer func() {
			if r := recover(); r != nil {
				_ = tx.Rollback()
				panic(r) // re-panic after rollback so Fiber's handler can catch
			}
			if err != nil {
				_ = tx.Rollback()
				return
			}
			if e := tx.Commit().Error; e != nil {
				logger.L.Error("tx commit failed", zap.Error(e))
				err = fiber.NewError(fiber.StatusInternalServerError, "transaction commit failed")
			}
		}()

		// Make the TX available to handlers via Tx(c).
		c.Locals("tx", tx)

		err = c.Next()
		return err
	}
}

// Tx returns the per-request transaction when present, else the shared DB
// handle (read-only paths).
func Tx(c *fiber.Ctx) *gorm.DB {
	if v := c.Locals("tx"); v != nil {
		if tx, ok := v.(*gorm.DB); ok && tx != nil {
			return tx
		}
	}
	return database.DB
}

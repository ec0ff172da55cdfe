package billing

import (
	"context"
	"errors"
	"time"

	"clinicore-backend/logger"
	"clinicore-backend/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Departments the builder prices against.
const (
	DeptConsultation = "Consultation"
	DeptLaboratory   = "Laboratory"
	DeptPharmacy     = "Pharmacy"
)

// Quote is a resolved catalog price.
type Quote struct {
	Code  string
	Name  string
	Price decimal.Decimal
}

// PriceResolver resolves a service or medication to a unit price. A false
// return is a miss; callers fall back to the configured default price table.
// Implementations must come back within a bounded time and never error out
// an invoice build.
type PriceResolver interface {
	Resolve(ctx context.Context, department, nameOrCode string) (Quote, bool)
}

// CatalogResolver looks prices up in the service catalog table under a
// per-call timeout. Misses and timeouts are logged and reported as a miss,
// never as an error.
type CatalogResolver struct {
	db      *gorm.DB
	timeout time.Duration
}

func NewCatalogResolver(db *gorm.DB, timeout time.Duration) *CatalogResolver {
	return &CatalogResolver{db: db, timeout: timeout}
}

func (r *CatalogResolver) Resolve(ctx context.Context, department, nameOrCode string) (Quote, bool) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var entry models.ServiceCatalogEntry
	err := r.db.WithContext(ctx).
		Where("active AND department = ? AND (code = ? OR LOWER(name) = LOWER(?))",
			department, nameOrCode, nameOrCode).
		First(&entry).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.L.Warn("catalog lookup failed, using fallback price",
				zap.String("department", department),
				zap.String("name_or_code", nameOrCode),
				zap.Error(err))
		}
		return Quote{}, false
	}
	return Quote{Code: entry.Code, Name: entry.Name, Price: entry.UnitPrice}, true
}

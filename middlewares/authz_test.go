package middlewares

import (
	"testing"

	"clinicore-backend/models"

	"github.com/stretchr/testify/assert"
)

func TestCan(t *testing.T) {
	cases := []struct {
		role, capability string
		want             bool
	}{
		{models.RoleAdmin, CapCatalogManage, true},
		{models.RoleBillingStaff, CapCatalogManage, false},
		{models.RoleBillingStaff, CapPaymentRecord, true},
		{models.RoleDoctor, CapPaymentRecord, false},
		{models.RoleDoctor, CapClaimCreate, true},
		{models.RoleDoctor, CapClaimDecide, false},
		{models.RoleBillingStaff, CapClaimDecide, true},
		{models.RolePatient, CapInvoiceRead, true},
		{models.RolePatient, CapInvoiceCreate, false},
		{models.RolePatient, CapClaimRead, true},
		{models.RolePatient, CapReportRead, false},
		{"", CapInvoiceRead, false},
		{models.RoleAdmin, "no:such", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Can(tc.role, tc.capability), "%s / %s", tc.role, tc.capability)
	}
}

func TestEveryCapabilityGrantsAdmin(t *testing.T) {
	for capability := range capabilityTable {
		assert.True(t, Can(models.RoleAdmin, capability), capability)
	}
}

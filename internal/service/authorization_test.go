package service

import (
	"testing"

	"securebank/internal/models"
)

func TestCheckTransactionLimit(t *testing.T) {
	cases := []struct {
		role     models.Role
		amount   string
		allowed  bool
		approval bool
	}{
		{models.RoleCustomer, "5000", true, false},
		{models.RoleCustomer, "5000.01", false, false},
		{models.RolePremium, "9999.99", true, false},
		{models.RolePremium, "10000", true, false},
		{models.RolePremium, "10000.01", true, true},
		{models.RoleAdmin, "10000", true, false},
		{models.RoleAdmin, "49999", true, true},
		{models.RoleCustomer, "60000", true, true},
		{"guest", "5000.01", false, false},
	}

	for _, tc := range cases {
		d := CheckTransactionLimit(tc.role, dec(tc.amount))
		if d.Allowed != tc.allowed || d.RequiresApproval != tc.approval {
			t.Fatalf("%s %s: got allowed=%v approval=%v", tc.role, tc.amount, d.Allowed, d.RequiresApproval)
		}
		if !d.Allowed && d.Message == "" {
			t.Fatalf("%s %s: denial without message", tc.role, tc.amount)
		}
	}
}

func TestLimitFor(t *testing.T) {
	if got := LimitFor(models.RoleAdmin); !got.Equal(dec("50000")) {
		t.Fatalf("expected admin limit 50000, got %s", got)
	}
	if got := LimitFor("unknown"); !got.Equal(dec("5000")) {
		t.Fatalf("expected default limit 5000, got %s", got)
	}
	d := CheckTransactionLimit(models.RolePremium, dec("10001"))
	if !d.Limit.Equal(dec("10000")) {
		t.Fatalf("decision should report the role limit, got %s", d.Limit)
	}
}

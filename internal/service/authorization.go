package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"securebank/internal/models"
)

var (
	// approvalThreshold routes transfers to manual approval regardless of role.
	approvalThreshold = decimal.NewFromInt(10000)
	defaultRoleLimit  = decimal.NewFromInt(5000)

	roleLimits = map[models.Role]decimal.Decimal{
		models.RoleCustomer: decimal.NewFromInt(5000),
		models.RolePremium:  decimal.NewFromInt(10000),
		models.RoleAdmin:    decimal.NewFromInt(50000),
	}
)

type LimitDecision struct {
	Allowed          bool            `json:"allowed"`
	RequiresApproval bool            `json:"requiresApproval"`
	Limit            decimal.Decimal `json:"limit"`
	Message          string          `json:"message,omitempty"`
}

// LimitFor returns the per-transfer ceiling of role.
func LimitFor(role models.Role) decimal.Decimal {
	if limit, ok := roleLimits[role]; ok {
		return limit
	}
	return defaultRoleLimit
}

// CheckTransactionLimit decides a transfer of amount for role. The approval
// threshold is checked before the role ceiling, so an amount above both is
// routed to approval rather than denied.
func CheckTransactionLimit(role models.Role, amount decimal.Decimal) LimitDecision {
	limit := LimitFor(role)

	if amount.GreaterThan(approvalThreshold) {
		return LimitDecision{
			Allowed:          true,
			RequiresApproval: true,
			Limit:            limit,
		}
	}

	if amount.GreaterThan(limit) {
		return LimitDecision{
			Limit:   limit,
			Message: fmt.Sprintf("Transaction exceeds your limit of $%s", limit.String()),
		}
	}

	return LimitDecision{Allowed: true, Limit: limit}
}

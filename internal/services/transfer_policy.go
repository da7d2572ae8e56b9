package services

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Lead-Studios/veritix-backend-sub009/internal/status"
	"github.com/Lead-Studios/veritix-backend-sub009/models"
)

// TransferPolicyValidator gates resale-triggered transfers against the
// organizer's resale policy. Checks run in a fixed order and short-circuit
// on the first failure; callers depend on that ordering for deterministic
// error messages.
type TransferPolicyValidator struct{}

func NewTransferPolicyValidator() *TransferPolicyValidator {
	return &TransferPolicyValidator{}
}

// Validate applies the resale rules in order:
//
//  1. resale lock
//  2. transfer deadline
//  3. missing price cap (fail-closed: an absent cap is a misconfiguration,
//     not "no limit")
//  4. requested price validity
//  5. price ceiling
func (v *TransferPolicyValidator) Validate(policy models.ResalePolicy, requestedPrice *decimal.Decimal, now time.Time) error {
	if policy.ResaleLocked {
		return fmt.Errorf("%w: resale is currently locked for this event", status.ErrPolicyViolation)
	}

	if policy.TransferDeadline != nil && policy.TransferDeadline.Before(now) {
		return fmt.Errorf("%w: the transfer deadline for this event has passed", status.ErrPolicyViolation)
	}

	if policy.MaxResalePrice == nil {
		return fmt.Errorf("%w: no resale price policy configured for this event", status.ErrPolicyViolation)
	}

	if requestedPrice == nil || requestedPrice.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: a valid resale price is required", status.ErrPolicyViolation)
	}

	if requestedPrice.GreaterThan(*policy.MaxResalePrice) {
		return fmt.Errorf("%w: Resale price (%s) exceeds the maximum allowed resale price (%s)",
			status.ErrPolicyViolation, requestedPrice.String(), policy.MaxResalePrice.String())
	}

	return nil
}

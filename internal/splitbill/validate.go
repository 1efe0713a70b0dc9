package splitbill

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"finance-cycle-engine/internal/models"
)

// EditTolerance bounds how far participant shares may drift from the base
// amount before an edit is rejected. Deliberately much tighter than the
// cycle settlement tolerance; the two must never be unified.
var EditTolerance = decimal.NewFromFloat(0.01)

// ErrMissingBase is returned by validations that require a base transaction
// when the group is a legacy group without one.
var ErrMissingBase = errors.New("split bill group has no base transaction")

// ValidateConservation checks the per-group invariant that participant
// shares sum to the base transaction's amount. The returned delta is
// Σ participants - |base amount|; it is meaningful even on error so editors
// can surface how far off the edit is.
func ValidateConservation(grp *Group) (decimal.Decimal, error) {
	if !grp.HasBase() {
		return decimal.Zero, ErrMissingBase
	}

	total := grp.Total()
	base := grp.Base.Amount.Abs()
	delta := total.Sub(base)

	if !models.WithinTolerance(total, base, EditTolerance) {
		return delta, errors.Errorf(
			"participant shares %s do not conserve base amount %s (delta %s)",
			total.String(), base.String(), delta.String())
	}
	return delta, nil
}

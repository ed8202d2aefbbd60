// Package target solves the inverse simulation problem: the minimal initial
// integer quantity whose simulated maturity payout meets a target amount.
package target

import (
	"errors"
	"fmt"
	"time"

	"github.com/ofzlab/ofz-planner/internal/bond"
	"github.com/ofzlab/ofz-planner/internal/simulate"
	"github.com/ofzlab/ofz-planner/pkg/constants"
	"go.uber.org/zap"
)

// ErrBoundExceeded indicates the target amount is not reachable within the
// quantity ceiling, given the bond's yield.
var ErrBoundExceeded = errors.New("target amount not reachable within the quantity ceiling")

// Solution is the answer to a target-quantity search: the minimal qualifying
// quantity and its simulated payout, which may exceed the target by an
// integer-lot residual.
type Solution struct {
	InitialQty  int
	FinalAmount float64
}

// SolveMinQty finds the minimal initial quantity whose maturity payout is at
// least targetAmount. Reinvestment always happens at the bond's face value.
//
// The payout is only weakly monotone in the quantity (integer-lot truncation
// creates plateaus), so qualifying candidates found during the binary search
// replace the current best only when their payout is smaller, or equal with a
// smaller quantity.
func SolveMinQty(logger *zap.Logger, b *bond.Bond, purchaseDate time.Time, targetAmount float64, allowCarryOver bool) (Solution, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if targetAmount < 0 {
		return Solution{}, fmt.Errorf("%w: target amount cannot be negative, got %.2f", simulate.ErrInvalidInput, targetAmount)
	}

	reinvestPrice := b.FaceValue

	first, err := simulate.Quick(b, purchaseDate, 1, reinvestPrice, allowCarryOver)
	if err != nil {
		return Solution{}, err
	}
	if first.FinalAmount >= targetAmount {
		return Solution{InitialQty: 1, FinalAmount: first.FinalAmount}, nil
	}

	// Exponential bracketing: double the probe quantity until the payout
	// reaches the target, tracking the last failing lower bound.
	lowerQty := 1
	upperQty := 2
	var upper simulate.Outcome
	for {
		upper, err = simulate.Quick(b, purchaseDate, upperQty, reinvestPrice, allowCarryOver)
		if err != nil {
			return Solution{}, err
		}
		if upper.FinalAmount >= targetAmount {
			break
		}
		lowerQty = upperQty
		upperQty *= 2
		if upperQty > constants.SearchCeiling {
			return Solution{}, fmt.Errorf("%w: target %.2f needs more than %d units of %s",
				ErrBoundExceeded, targetAmount, constants.SearchCeiling, b.SecID)
		}
	}

	logger.Debug("bracketed target quantity",
		zap.String("op", "target.SolveMinQty"),
		zap.String("secid", b.SecID),
		zap.Int("lower", lowerQty),
		zap.Int("upper", upperQty),
		zap.Float64("upperAmount", upper.FinalAmount),
	)

	// Binary search over (lowerQty, upperQty] for the minimal qualifying
	// quantity; ties break toward the smaller payout, then the smaller
	// quantity.
	bestQty := upperQty
	bestAmount := upper.FinalAmount
	left, right := lowerQty+1, upperQty
	for left <= right {
		mid := (left + right) / 2
		probe, err := simulate.Quick(b, purchaseDate, mid, reinvestPrice, allowCarryOver)
		if err != nil {
			return Solution{}, err
		}
		if probe.FinalAmount >= targetAmount {
			if probe.FinalAmount < bestAmount || mid < bestQty {
				bestQty = mid
				bestAmount = probe.FinalAmount
			}
			right = mid - 1
		} else {
			left = mid + 1
		}
	}

	return Solution{InitialQty: bestQty, FinalAmount: bestAmount}, nil
}

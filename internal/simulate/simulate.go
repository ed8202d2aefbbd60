// Package simulate implements the deterministic coupon reinvestment
// simulator. Each coupon payment is reinvested into whole additional units of
// the same issue at a fixed price; the uninvested residual is either carried
// into the next coupon period or discarded, depending on the carry-over mode.
package simulate

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/ofzlab/ofz-planner/internal/bond"
	"github.com/ofzlab/ofz-planner/pkg/constants"
	"github.com/ofzlab/ofz-planner/pkg/datetime"
	"github.com/ofzlab/ofz-planner/pkg/format"
	"github.com/ofzlab/ofz-planner/pkg/mathutil"
	"go.uber.org/zap"
)

// ErrInvalidInput indicates a simulation request with a non-positive quantity,
// price, or target amount.
var ErrInvalidInput = errors.New("invalid simulation input")

// State is the per-step simulation state: units held and the uninvested cash
// residual. A new State is produced on every step; nothing is mutated in
// place.
type State struct {
	Quantity int
	Cash     float64
}

// StepDetail captures the computed figures of a single coupon event.
type StepDetail struct {
	CouponIncome float64
	CarryOver    float64
	Total        float64
	ReinvestQty  int
	Spent        float64
}

// Result is the full outcome of a detailed simulation run.
type Result struct {
	FinalQuantity           int
	FinalAmount             float64
	InitialInvestment       float64
	Profit                  float64
	AnnualizedReturnPercent float64
	Log                     []string
}

// Outcome is the reduced result of the quick variant, used as the search
// oracle by the target-quantity solver.
type Outcome struct {
	FinalAmount float64
	FinalQty    int
}

// Advance applies one non-terminal coupon payment to the state: coupon income
// plus any carried residual buys whole units at reinvestPrice; the remainder
// becomes the new cash residual (rounded to kopecks) or is discarded when
// carry-over is disabled.
func Advance(st State, couponValue, reinvestPrice float64, allowCarryOver bool) (State, StepDetail) {
	couponIncome := couponValue * float64(st.Quantity)
	carryOver := 0.0
	if allowCarryOver {
		carryOver = st.Cash
	}
	total := couponIncome + carryOver

	reinvestQty := int(math.Floor(total / reinvestPrice))
	spent := float64(reinvestQty) * reinvestPrice

	next := State{Quantity: st.Quantity + reinvestQty}
	if allowCarryOver {
		next.Cash = mathutil.Round(total - spent)
	}

	return next, StepDetail{
		CouponIncome: couponIncome,
		CarryOver:    carryOver,
		Total:        total,
		ReinvestQty:  reinvestQty,
		Spent:        spent,
	}
}

// Simulate runs the detailed variant: full result plus one log entry per
// coupon event for human inspection.
func Simulate(logger *zap.Logger, b *bond.Bond, purchaseDate time.Time, initialQty int, reinvestPrice float64, allowCarryOver bool) (Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := validateInputs(initialQty, reinvestPrice); err != nil {
		return Result{}, err
	}

	log := []string{
		fmt.Sprintf("Purchase %s: %d pcs at %s (incl. accrued interest).",
			datetime.FormatDate(purchaseDate), initialQty, format.Rub(b.PurchasePriceWithNKD)),
	}
	if allowCarryOver {
		log = append(log, "Coupon carry-over mode: enabled — the residual rolls into the next coupon.")
	} else {
		log = append(log, "Coupon carry-over mode: disabled — the residual is discarded.")
	}

	future := b.FutureCoupons(purchaseDate)
	if len(future) == 0 {
		log = append(log, fmt.Sprintf("No coupons found after %s. Only the redemption on %s is expected.",
			datetime.FormatDate(purchaseDate), datetime.FormatDate(b.MaturityDate)))
	} else {
		log = append(log, fmt.Sprintf("Coupons until maturity: %d, nearest %s at %s per unit.",
			len(future), datetime.FormatDate(future[0].PayDate), format.Rub(future[0].Value)))
	}

	observe := func(idx int, c bond.Coupon, d StepDetail, st State, terminal bool) {
		if terminal {
			log = append(log, strings.Join([]string{
				fmt.Sprintf("Coupon %d %s (final):", idx, datetime.FormatDate(c.PayDate)),
				fmt.Sprintf("  coupon %s × %d pcs = %s", format.Rub(c.Value), st.Quantity, format.Rub(d.CouponIncome)),
				fmt.Sprintf("  carry-over from previous coupons: %s", format.Rub(d.CarryOver)),
				fmt.Sprintf("  total credited: %s (not reinvested)", format.Rub(d.Total)),
			}, "\n"))
			return
		}
		log = append(log, strings.Join([]string{
			fmt.Sprintf("Coupon %d %s:", idx, datetime.FormatDate(c.PayDate)),
			fmt.Sprintf("  coupon %s × %d pcs = %s", format.Rub(c.Value), st.Quantity-d.ReinvestQty, format.Rub(d.CouponIncome)),
			fmt.Sprintf("  carry-over from previous coupons: %s", format.Rub(d.CarryOver)),
			fmt.Sprintf("  available for reinvestment: %s", format.Rub(d.Total)),
			fmt.Sprintf("  bought %d pcs at %s = %s", d.ReinvestQty, format.Rub(reinvestPrice), format.Rub(d.Spent)),
			fmt.Sprintf("  residual after purchase: %s; total quantity: %d pcs", format.Rub(st.Cash), st.Quantity),
		}, "\n"))
	}

	state, finalCouponCash := run(b, purchaseDate, initialQty, reinvestPrice, allowCarryOver, observe)

	redemption := float64(state.Quantity) * b.FaceValue
	finalAmount := redemption + finalCouponCash + state.Cash
	initialInvestment := float64(initialQty) * b.PurchasePriceWithNKD
	profit := finalAmount - initialInvestment

	annualized := 0.0
	years := datetime.YearsBetween(purchaseDate, b.MaturityDate)
	if years > 0 && initialInvestment > 0 {
		annualized = profit / initialInvestment / years * constants.PercentageMultiplier
	}

	log = append(log, fmt.Sprintf("Redemption %s: face %s + final coupon/residual %s = %s.",
		datetime.FormatDate(b.MaturityDate), format.Rub(redemption),
		format.Rub(finalCouponCash+state.Cash), format.Rub(finalAmount)))

	logger.Debug("simulation complete",
		zap.String("op", "simulate.Simulate"),
		zap.String("secid", b.SecID),
		zap.Int("initialQty", initialQty),
		zap.Int("finalQty", state.Quantity),
		zap.Float64("finalAmount", finalAmount),
	)

	return Result{
		FinalQuantity:           state.Quantity,
		FinalAmount:             finalAmount,
		InitialInvestment:       initialInvestment,
		Profit:                  profit,
		AnnualizedReturnPercent: annualized,
		Log:                     log,
	}, nil
}

// Quick runs the simple variant: no log, only the maturity payout and final
// quantity. Numerically identical to Simulate for the same inputs.
func Quick(b *bond.Bond, purchaseDate time.Time, initialQty int, reinvestPrice float64, allowCarryOver bool) (Outcome, error) {
	if err := validateInputs(initialQty, reinvestPrice); err != nil {
		return Outcome{}, err
	}
	state, finalCouponCash := run(b, purchaseDate, initialQty, reinvestPrice, allowCarryOver, nil)
	return Outcome{
		FinalAmount: float64(state.Quantity)*b.FaceValue + finalCouponCash + state.Cash,
		FinalQty:    state.Quantity,
	}, nil
}

type observeFunc func(idx int, c bond.Coupon, d StepDetail, st State, terminal bool)

// run iterates the future coupon schedule. A coupon paying on or after the
// maturity date is the terminal event: it is credited in full and never
// reinvested, even with carry-over enabled. The returned cash is whatever
// residual remains when the schedule ends without a terminal event.
func run(b *bond.Bond, purchaseDate time.Time, initialQty int, reinvestPrice float64, allowCarryOver bool, observe observeFunc) (State, float64) {
	state := State{Quantity: initialQty}
	finalCouponCash := 0.0

	for idx, c := range b.FutureCoupons(purchaseDate) {
		if !c.PayDate.Before(b.MaturityDate) {
			couponIncome := c.Value * float64(state.Quantity)
			carryOver := 0.0
			if allowCarryOver {
				carryOver = state.Cash
			}
			finalCouponCash = couponIncome + carryOver
			state.Cash = 0
			if observe != nil {
				observe(idx+1, c, StepDetail{
					CouponIncome: couponIncome,
					CarryOver:    carryOver,
					Total:        finalCouponCash,
				}, state, true)
			}
			break
		}

		var detail StepDetail
		state, detail = Advance(state, c.Value, reinvestPrice, allowCarryOver)
		if observe != nil {
			observe(idx+1, c, detail, state, false)
		}
	}

	return state, finalCouponCash
}

func validateInputs(initialQty int, reinvestPrice float64) error {
	if initialQty <= 0 {
		return fmt.Errorf("%w: initial quantity must be positive, got %d", ErrInvalidInput, initialQty)
	}
	if reinvestPrice <= 0 {
		return fmt.Errorf("%w: reinvestment price must be positive, got %.2f", ErrInvalidInput, reinvestPrice)
	}
	return nil
}

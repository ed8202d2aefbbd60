// Package planner picks the OFZ issue that covers a desired annual coupon
// income for a given number of years at the lowest purchase cost.
package planner

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/ofzlab/ofz-planner/pkg/datetime"
	"go.uber.org/zap"
)

// ErrNoCandidate indicates no listed issue satisfies the income requirements.
var ErrNoCandidate = errors.New("no issue satisfies the income requirements")

// Listing is one row of the fixed-coupon OFZ board listing, carrying the
// fields the planner needs.
type Listing struct {
	SecID           string
	ShortName       string
	MaturityDate    time.Time
	FaceValue       float64
	CouponValue     float64 // rubles per unit per payment
	PaymentsPerYear int
	PricePercent    float64 // current price as a percent of face value
}

// Result is the chosen issue plus the derived purchase figures.
type Result struct {
	Listing             Listing
	AnnualCouponPerUnit float64
	UnitsNeeded         int
	PricePerUnit        float64
	TotalCost           float64
}

// ChooseBestIssue selects the issue that pays at least targetAnnualIncome in
// coupons per year for at least yearsNeeded years, minimizing the total
// purchase cost. Issues with unusable coupon or price data are skipped.
func ChooseBestIssue(logger *zap.Logger, listings []Listing, targetAnnualIncome, yearsNeeded float64, now time.Time) (Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if targetAnnualIncome <= 0 {
		return Result{}, fmt.Errorf("target annual income must be positive, got %.2f", targetAnnualIncome)
	}
	if yearsNeeded <= 0 {
		return Result{}, fmt.Errorf("years needed must be positive, got %.2f", yearsNeeded)
	}

	var best *Result
	for _, l := range listings {
		if l.CouponValue <= 0 || l.PaymentsPerYear <= 0 || l.PricePercent <= 0 || l.FaceValue <= 0 {
			continue
		}
		if datetime.YearsBetween(now, l.MaturityDate) < yearsNeeded {
			// The issue matures before the income horizon ends.
			continue
		}

		annualCoupon := l.CouponValue * float64(l.PaymentsPerYear)
		unitsNeeded := int(math.Ceil(targetAnnualIncome / annualCoupon))
		if unitsNeeded < 1 {
			unitsNeeded = 1
		}

		pricePerUnit := l.FaceValue * l.PricePercent / 100
		candidate := Result{
			Listing:             l,
			AnnualCouponPerUnit: annualCoupon,
			UnitsNeeded:         unitsNeeded,
			PricePerUnit:        pricePerUnit,
			TotalCost:           float64(unitsNeeded) * pricePerUnit,
		}

		if best == nil || candidate.TotalCost < best.TotalCost {
			c := candidate
			best = &c
		}
	}

	if best == nil {
		return Result{}, fmt.Errorf("%w: income %.2f over %.2f years", ErrNoCandidate, targetAnnualIncome, yearsNeeded)
	}

	logger.Debug("selected income plan issue",
		zap.String("op", "planner.ChooseBestIssue"),
		zap.String("secid", best.Listing.SecID),
		zap.Int("unitsNeeded", best.UnitsNeeded),
		zap.Float64("totalCost", best.TotalCost),
	)
	return *best, nil
}

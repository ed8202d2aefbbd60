// Package bond defines the bond contract consumed by the simulation core and
// produced by the market-data collaborators.
package bond

import (
	"fmt"
	"time"
)

// Coupon is a single scheduled interest payment per unit held.
type Coupon struct {
	PayDate time.Time
	Value   float64 // per-unit payment in rubles
}

// Bond holds the resolved contract of a fixed-coupon issue. Instances are
// immutable for the duration of a simulation; the simulation core never
// mutates them.
type Bond struct {
	SecID                string
	FaceValue            float64
	MaturityDate         time.Time
	CleanPrice           float64
	AccruedInterest      float64
	PurchasePriceWithNKD float64
	Coupons              []Coupon // sorted ascending by PayDate
}

// FutureCoupons returns the coupons payable on or after the given date,
// preserving schedule order.
func (b *Bond) FutureCoupons(from time.Time) []Coupon {
	var future []Coupon
	for _, c := range b.Coupons {
		if !c.PayDate.Before(from) {
			future = append(future, c)
		}
	}
	return future
}

// Validate checks the invariants the simulation core relies on. It is meant
// to be called at the collaborator boundary, after resolving a bond from the
// market data or the cache.
func (b *Bond) Validate() error {
	if b.FaceValue <= 0 {
		return fmt.Errorf("bond %s: face value must be positive, got %.2f", b.SecID, b.FaceValue)
	}
	if b.MaturityDate.IsZero() {
		return fmt.Errorf("bond %s: maturity date is not set", b.SecID)
	}
	if b.PurchasePriceWithNKD < 0 {
		return fmt.Errorf("bond %s: purchase price cannot be negative, got %.2f", b.SecID, b.PurchasePriceWithNKD)
	}
	for i, c := range b.Coupons {
		if c.Value <= 0 {
			return fmt.Errorf("bond %s: coupon %d has non-positive value %.4f", b.SecID, i+1, c.Value)
		}
		if i > 0 && c.PayDate.Before(b.Coupons[i-1].PayDate) {
			return fmt.Errorf("bond %s: coupon schedule is not sorted at index %d", b.SecID, i)
		}
	}
	return nil
}

// Package output provides utilities for formatting and displaying
// calculation results.
package output

import (
	"fmt"
	"io"
	"time"

	"github.com/ofzlab/ofz-planner/internal/bond"
	"github.com/ofzlab/ofz-planner/internal/planner"
	"github.com/ofzlab/ofz-planner/internal/simulate"
	"github.com/ofzlab/ofz-planner/internal/target"
	"github.com/ofzlab/ofz-planner/pkg/datetime"
	"github.com/ofzlab/ofz-planner/pkg/format"
)

// SimulationPretty outputs a human-readable simulation report.
func SimulationPretty(w io.Writer, b *bond.Bond, purchaseDate time.Time, res simulate.Result) {
	fmt.Fprintf(w, "--- Reinvestment simulation for %s ---\n", b.SecID)
	fmt.Fprintf(w, "Maturity:             %s\n", datetime.FormatDate(b.MaturityDate))
	fmt.Fprintf(w, "Purchase price (NKD): %s\n", format.Rub(b.PurchasePriceWithNKD))
	fmt.Fprintf(w, "Initial investment:   %s\n", format.Rub(res.InitialInvestment))
	fmt.Fprintf(w, "Final quantity:       %d pcs\n", res.FinalQuantity)
	fmt.Fprintf(w, "Amount at maturity:   %s\n", format.Rub(res.FinalAmount))
	fmt.Fprintf(w, "Profit:               %s\n", format.Rub(res.Profit))
	fmt.Fprintf(w, "Annualized return:    %s\n", format.Percent(res.AnnualizedReturnPercent))
	fmt.Fprintf(w, "\nReinvestment steps:\n")
	for _, line := range res.Log {
		fmt.Fprintf(w, "%s\n", line)
	}
}

// SimulationCsv outputs the simulation summary in comma-separated value format.
func SimulationCsv(w io.Writer, b *bond.Bond, purchaseDate time.Time, res simulate.Result) {
	fmt.Fprintf(w, `"secid","purchase_date","maturity_date","initial_investment","final_quantity","final_amount","profit","annualized_return_percent"`)
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, `"%s","%s","%s","%.2f","%d","%.2f","%.2f","%.2f"`,
		b.SecID, datetime.FormatDate(purchaseDate), datetime.FormatDate(b.MaturityDate),
		res.InitialInvestment, res.FinalQuantity, res.FinalAmount, res.Profit, res.AnnualizedReturnPercent)
	fmt.Fprintf(w, "\n")
}

// TargetPretty outputs a human-readable target-quantity report.
func TargetPretty(w io.Writer, b *bond.Bond, sol target.Solution) {
	totalCost := float64(sol.InitialQty) * b.PurchasePriceWithNKD
	fmt.Fprintf(w, "--- Target quantity for %s ---\n", b.SecID)
	fmt.Fprintf(w, "Maturity:                    %s\n", datetime.FormatDate(b.MaturityDate))
	fmt.Fprintf(w, "Units to buy:                %d pcs\n", sol.InitialQty)
	fmt.Fprintf(w, "Purchase cost (incl. NKD):   %s\n", format.Rub(totalCost))
	fmt.Fprintf(w, "Expected amount at maturity: %s\n", format.Rub(sol.FinalAmount))
}

// TargetCsv outputs the target-quantity result in comma-separated value format.
func TargetCsv(w io.Writer, b *bond.Bond, sol target.Solution) {
	totalCost := float64(sol.InitialQty) * b.PurchasePriceWithNKD
	fmt.Fprintf(w, `"secid","maturity_date","initial_qty","purchase_cost","final_amount"`)
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, `"%s","%s","%d","%.2f","%.2f"`,
		b.SecID, datetime.FormatDate(b.MaturityDate), sol.InitialQty, totalCost, sol.FinalAmount)
	fmt.Fprintf(w, "\n")
}

// PlanPretty outputs a human-readable income plan report.
func PlanPretty(w io.Writer, res planner.Result, targetAnnualIncome float64) {
	fmt.Fprintf(w, "--- Income plan: %s per year ---\n", format.Rub(targetAnnualIncome))
	fmt.Fprintf(w, "Issue:                  %s (%s)\n", res.Listing.ShortName, res.Listing.SecID)
	fmt.Fprintf(w, "Maturity:               %s\n", datetime.FormatDate(res.Listing.MaturityDate))
	fmt.Fprintf(w, "Annual coupon per unit: %s\n", format.Rub(res.AnnualCouponPerUnit))
	fmt.Fprintf(w, "Units needed:           %d pcs\n", res.UnitsNeeded)
	fmt.Fprintf(w, "Price per unit:         %s\n", format.Rub(res.PricePerUnit))
	fmt.Fprintf(w, "Total cost:             %s\n", format.Rub(res.TotalCost))
}

// PlanCsv outputs the income plan in comma-separated value format.
func PlanCsv(w io.Writer, res planner.Result) {
	fmt.Fprintf(w, `"secid","shortname","maturity_date","annual_coupon_per_unit","units_needed","price_per_unit","total_cost"`)
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, `"%s","%s","%s","%.2f","%d","%.2f","%.2f"`,
		res.Listing.SecID, res.Listing.ShortName, datetime.FormatDate(res.Listing.MaturityDate),
		res.AnnualCouponPerUnit, res.UnitsNeeded, res.PricePerUnit, res.TotalCost)
	fmt.Fprintf(w, "\n")
}

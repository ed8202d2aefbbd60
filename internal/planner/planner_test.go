package planner

import (
	"errors"
	"testing"
	"time"

	"github.com/ofzlab/ofz-planner/pkg/datetime"
	"github.com/ofzlab/ofz-planner/pkg/mathutil"
	"go.uber.org/zap"
)

func date(value string) time.Time {
	return datetime.MustParseDate(value)
}

func TestChooseBestIssue(t *testing.T) {
	now := date("2026-01-01")

	cheap := Listing{
		SecID: "SU26230RMFS1", ShortName: "ОФЗ 26230",
		MaturityDate: date("2039-03-16"), FaceValue: 1000,
		CouponValue: 38.39, PaymentsPerYear: 2, PricePercent: 65.0,
	}
	expensive := Listing{
		SecID: "SU26238RMFS4", ShortName: "ОФЗ 26238",
		MaturityDate: date("2041-05-15"), FaceValue: 1000,
		CouponValue: 35.40, PaymentsPerYear: 2, PricePercent: 105.0,
	}
	shortDated := Listing{
		SecID: "SU26222RMFS8", ShortName: "ОФЗ 26222",
		MaturityDate: date("2026-10-16"), FaceValue: 1000,
		CouponValue: 35.40, PaymentsPerYear: 2, PricePercent: 60.0,
	}
	noPrice := Listing{
		SecID: "SU26240RMFS0", ShortName: "ОФЗ 26240",
		MaturityDate: date("2036-07-30"), FaceValue: 1000,
		CouponValue: 34.90, PaymentsPerYear: 2, PricePercent: 0,
	}

	res, err := ChooseBestIssue(zap.NewNop(), []Listing{expensive, shortDated, noPrice, cheap}, 100_000, 5, now)
	if err != nil {
		t.Fatalf("ChooseBestIssue returned error: %v", err)
	}

	if res.Listing.SecID != cheap.SecID {
		t.Errorf("expected %s, got %s", cheap.SecID, res.Listing.SecID)
	}
	if !mathutil.WithinTolerance(res.AnnualCouponPerUnit, 76.78, 1e-9) {
		t.Errorf("expected annual coupon 76.78 per unit, got %.4f", res.AnnualCouponPerUnit)
	}
	// ceil(100000 / 76.78) = 1303 units at 650 rubles each.
	if res.UnitsNeeded != 1303 {
		t.Errorf("expected 1303 units, got %d", res.UnitsNeeded)
	}
	if !mathutil.WithinTolerance(res.PricePerUnit, 650, 1e-9) {
		t.Errorf("expected price per unit 650, got %.4f", res.PricePerUnit)
	}
	if !mathutil.WithinTolerance(res.TotalCost, 1303*650, 1e-6) {
		t.Errorf("expected total cost %.2f, got %.4f", 1303*650.0, res.TotalCost)
	}
}

func TestChooseBestIssueTinyIncomeNeedsOneUnit(t *testing.T) {
	l := Listing{
		SecID: "SU26230RMFS1", MaturityDate: date("2039-03-16"),
		FaceValue: 1000, CouponValue: 38.39, PaymentsPerYear: 2, PricePercent: 65.0,
	}

	res, err := ChooseBestIssue(nil, []Listing{l}, 0.01, 1, date("2026-01-01"))
	if err != nil {
		t.Fatalf("ChooseBestIssue returned error: %v", err)
	}
	if res.UnitsNeeded != 1 {
		t.Errorf("expected 1 unit, got %d", res.UnitsNeeded)
	}
}

func TestChooseBestIssueNoCandidate(t *testing.T) {
	now := date("2026-01-01")
	shortDated := Listing{
		SecID: "SU26222RMFS8", MaturityDate: date("2026-10-16"),
		FaceValue: 1000, CouponValue: 35.40, PaymentsPerYear: 2, PricePercent: 98.0,
	}
	broken := Listing{
		SecID: "SU26300RMFS9", MaturityDate: date("2040-01-01"),
		FaceValue: 1000, CouponValue: 0, PaymentsPerYear: 2, PricePercent: 98.0,
	}

	_, err := ChooseBestIssue(nil, []Listing{shortDated, broken}, 100_000, 5, now)
	if !errors.Is(err, ErrNoCandidate) {
		t.Errorf("expected ErrNoCandidate, got %v", err)
	}
}

func TestChooseBestIssueInvalidArguments(t *testing.T) {
	l := Listing{
		SecID: "SU26230RMFS1", MaturityDate: date("2039-03-16"),
		FaceValue: 1000, CouponValue: 38.39, PaymentsPerYear: 2, PricePercent: 65.0,
	}

	if _, err := ChooseBestIssue(nil, []Listing{l}, 0, 5, date("2026-01-01")); err == nil {
		t.Error("expected error for zero target income")
	}
	if _, err := ChooseBestIssue(nil, []Listing{l}, 100_000, 0, date("2026-01-01")); err == nil {
		t.Error("expected error for zero years")
	}
}

package models

import (
	"github.com/ofzlab/ofz-planner/internal/bond"
	"github.com/ofzlab/ofz-planner/pkg/datetime"
)

// ErrorDetail carries a machine-readable code plus a human-readable message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is the error envelope of every failed request.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// CouponResponse is one coupon of a bond payload.
type CouponResponse struct {
	PayDate string  `json:"pay_date"`
	Value   float64 `json:"value"`
}

// BondResponse is the resolved bond contract.
type BondResponse struct {
	SecID                string           `json:"secid"`
	FaceValue            float64          `json:"face_value"`
	MaturityDate         string           `json:"maturity_date"`
	CleanPrice           float64          `json:"clean_price"`
	AccruedInterest      float64          `json:"accrued_int"`
	PurchasePriceWithNKD float64          `json:"purchase_price_with_nkd"`
	Coupons              []CouponResponse `json:"coupons"`
}

// NewBondResponse converts a bond contract into its JSON shape.
func NewBondResponse(b *bond.Bond) BondResponse {
	resp := BondResponse{
		SecID:                b.SecID,
		FaceValue:            b.FaceValue,
		MaturityDate:         datetime.FormatDate(b.MaturityDate),
		CleanPrice:           b.CleanPrice,
		AccruedInterest:      b.AccruedInterest,
		PurchasePriceWithNKD: b.PurchasePriceWithNKD,
		Coupons:              make([]CouponResponse, 0, len(b.Coupons)),
	}
	for _, c := range b.Coupons {
		resp.Coupons = append(resp.Coupons, CouponResponse{
			PayDate: datetime.FormatDate(c.PayDate),
			Value:   c.Value,
		})
	}
	return resp
}

// SimulateResponse is the outcome of a reinvestment simulation.
type SimulateResponse struct {
	SecID                   string   `json:"secid"`
	PurchaseDate            string   `json:"purchase_date"`
	MaturityDate            string   `json:"maturity_date"`
	FinalQuantity           int      `json:"final_quantity"`
	FinalAmount             float64  `json:"final_amount"`
	InitialInvestment       float64  `json:"initial_investment"`
	Profit                  float64  `json:"profit"`
	AnnualizedReturnPercent float64  `json:"annualized_return_percent"`
	Log                     []string `json:"log"`
}

// TargetResponse is the outcome of a target-quantity search.
type TargetResponse struct {
	SecID        string  `json:"secid"`
	PurchaseDate string  `json:"purchase_date"`
	MaturityDate string  `json:"maturity_date"`
	InitialQty   int     `json:"initial_qty"`
	PurchaseCost float64 `json:"purchase_cost"`
	FinalAmount  float64 `json:"final_amount"`
}

// PlanResponse is the outcome of an income plan.
type PlanResponse struct {
	SecID               string  `json:"secid"`
	ShortName           string  `json:"shortname"`
	MaturityDate        string  `json:"maturity_date"`
	AnnualCouponPerUnit float64 `json:"annual_coupon_per_unit"`
	UnitsNeeded         int     `json:"units_needed"`
	PricePerUnit        float64 `json:"price_per_unit"`
	TotalCost           float64 `json:"total_cost"`
}

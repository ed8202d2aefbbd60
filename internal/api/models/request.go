// Package models defines the JSON request and response shapes of the API.
package models

// SimulateRequest asks for a reinvestment simulation of one issue.
type SimulateRequest struct {
	SecID          string `json:"secid" binding:"required"`
	PurchaseDate   string `json:"purchase_date"` // YYYY-MM-DD, empty means today
	Quantity       int    `json:"quantity" binding:"required"`
	AllowCarryOver *bool  `json:"allow_carry_over"` // nil means the server default
}

// TargetRequest asks for the minimal quantity reaching a target payout.
type TargetRequest struct {
	SecID          string  `json:"secid" binding:"required"`
	PurchaseDate   string  `json:"purchase_date"`
	TargetAmount   float64 `json:"target_amount" binding:"required"`
	AllowCarryOver *bool   `json:"allow_carry_over"`
}

// PlanRequest asks for the cheapest issue covering an annual coupon income.
type PlanRequest struct {
	TargetAnnualIncome float64 `json:"target_annual_income" binding:"required"`
	YearsNeeded        float64 `json:"years_needed" binding:"required"`
}

// Package handlers implements the HTTP handlers of the calculation API.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ofzlab/ofz-planner/internal/api/models"
	"github.com/ofzlab/ofz-planner/internal/bond"
	"github.com/ofzlab/ofz-planner/internal/moex"
	"github.com/ofzlab/ofz-planner/internal/planner"
	"github.com/ofzlab/ofz-planner/internal/simulate"
	"github.com/ofzlab/ofz-planner/internal/target"
	"github.com/ofzlab/ofz-planner/pkg/datetime"
	"go.uber.org/zap"
)

// BondResolver supplies resolved bonds and listings; satisfied by
// cache.Provider.
type BondResolver interface {
	GetBond(ctx context.Context, secid string) (*bond.Bond, error)
	Listings(ctx context.Context) ([]planner.Listing, error)
}

// Handler serves the calculation endpoints.
type Handler struct {
	logger       *zap.Logger
	bonds        BondResolver
	carryDefault bool
}

// NewHandler constructs a Handler. carryDefault is applied when a request
// does not specify the carry-over mode.
func NewHandler(logger *zap.Logger, bonds BondResolver, carryDefault bool) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{logger: logger, bonds: bonds, carryDefault: carryDefault}
}

// Register attaches all routes to the router.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/health", h.Health)
	v1 := r.Group("/api/v1")
	v1.GET("/bonds/:secid", h.GetBond)
	v1.POST("/simulate", h.Simulate)
	v1.POST("/target", h.Target)
	v1.POST("/plan", h.Plan)
}

// Health handles GET /health.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetBond handles GET /api/v1/bonds/:secid.
func (h *Handler) GetBond(c *gin.Context) {
	b, err := h.bonds.GetBond(c.Request.Context(), c.Param("secid"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewBondResponse(b))
}

// Simulate handles POST /api/v1/simulate.
func (h *Handler) Simulate(c *gin.Context) {
	var req models.SimulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	purchaseDate, err := h.parsePurchaseDate(req.PurchaseDate)
	if err != nil {
		h.badRequest(c, err)
		return
	}

	b, err := h.bonds.GetBond(c.Request.Context(), req.SecID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	res, err := simulate.Simulate(h.logger, b, purchaseDate, req.Quantity, b.FaceValue, h.carryOver(req.AllowCarryOver))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SimulateResponse{
		SecID:                   b.SecID,
		PurchaseDate:            datetime.FormatDate(purchaseDate),
		MaturityDate:            datetime.FormatDate(b.MaturityDate),
		FinalQuantity:           res.FinalQuantity,
		FinalAmount:             res.FinalAmount,
		InitialInvestment:       res.InitialInvestment,
		Profit:                  res.Profit,
		AnnualizedReturnPercent: res.AnnualizedReturnPercent,
		Log:                     res.Log,
	})
}

// Target handles POST /api/v1/target.
func (h *Handler) Target(c *gin.Context) {
	var req models.TargetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	purchaseDate, err := h.parsePurchaseDate(req.PurchaseDate)
	if err != nil {
		h.badRequest(c, err)
		return
	}

	b, err := h.bonds.GetBond(c.Request.Context(), req.SecID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	sol, err := target.SolveMinQty(h.logger, b, purchaseDate, req.TargetAmount, h.carryOver(req.AllowCarryOver))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.TargetResponse{
		SecID:        b.SecID,
		PurchaseDate: datetime.FormatDate(purchaseDate),
		MaturityDate: datetime.FormatDate(b.MaturityDate),
		InitialQty:   sol.InitialQty,
		PurchaseCost: float64(sol.InitialQty) * b.PurchasePriceWithNKD,
		FinalAmount:  sol.FinalAmount,
	})
}

// Plan handles POST /api/v1/plan.
func (h *Handler) Plan(c *gin.Context) {
	var req models.PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	listings, err := h.bonds.Listings(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	res, err := planner.ChooseBestIssue(h.logger, listings, req.TargetAnnualIncome, req.YearsNeeded, time.Now())
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.PlanResponse{
		SecID:               res.Listing.SecID,
		ShortName:           res.Listing.ShortName,
		MaturityDate:        datetime.FormatDate(res.Listing.MaturityDate),
		AnnualCouponPerUnit: res.AnnualCouponPerUnit,
		UnitsNeeded:         res.UnitsNeeded,
		PricePerUnit:        res.PricePerUnit,
		TotalCost:           res.TotalCost,
	})
}

func (h *Handler) carryOver(requested *bool) bool {
	if requested != nil {
		return *requested
	}
	return h.carryDefault
}

func (h *Handler) parsePurchaseDate(raw string) (time.Time, error) {
	if raw == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return datetime.ParseDate(raw)
}

func (h *Handler) badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error: models.ErrorDetail{Code: "INVALID_REQUEST", Message: err.Error()},
	})
}

// writeError maps domain errors to status codes and the error envelope.
func (h *Handler) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	code := "INTERNAL_ERROR"

	var apiErr *moex.APIError
	switch {
	case errors.Is(err, simulate.ErrInvalidInput):
		status, code = http.StatusBadRequest, "INVALID_INPUT"
	case errors.Is(err, target.ErrBoundExceeded):
		status, code = http.StatusUnprocessableEntity, "TARGET_UNREACHABLE"
	case errors.Is(err, planner.ErrNoCandidate):
		status, code = http.StatusUnprocessableEntity, "NO_CANDIDATE"
	case errors.Is(err, moex.ErrSecurityNotFound):
		status, code = http.StatusNotFound, "SECURITY_NOT_FOUND"
	case errors.Is(err, moex.ErrNoMarketPrice):
		status, code = http.StatusBadGateway, "NO_MARKET_PRICE"
	case errors.As(err, &apiErr):
		status, code = http.StatusBadGateway, "MARKET_DATA_ERROR"
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("op", "api.writeError"),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
	}

	c.JSON(status, models.ErrorResponse{
		Error: models.ErrorDetail{Code: code, Message: err.Error()},
	})
}

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ofzlab/ofz-planner/internal/api/models"
	"github.com/ofzlab/ofz-planner/internal/bond"
	"github.com/ofzlab/ofz-planner/internal/moex"
	"github.com/ofzlab/ofz-planner/internal/planner"
	"github.com/ofzlab/ofz-planner/pkg/datetime"
	"github.com/ofzlab/ofz-planner/pkg/mathutil"
	"go.uber.org/zap"
)

// stubResolver serves one canned bond and a fixed listing.
type stubResolver struct {
	bond     *bond.Bond
	listings []planner.Listing
}

func (s *stubResolver) GetBond(_ context.Context, secid string) (*bond.Bond, error) {
	if s.bond != nil && secid == s.bond.SecID {
		return s.bond, nil
	}
	return nil, moex.ErrSecurityNotFound
}

func (s *stubResolver) Listings(_ context.Context) ([]planner.Listing, error) {
	return s.listings, nil
}

func testRouter(t *testing.T, resolver BondResolver) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(zap.NewNop(), resolver, true).Register(router)
	return router
}

func testBond() *bond.Bond {
	return &bond.Bond{
		SecID:                "SU26238RMFS4",
		FaceValue:            1000,
		MaturityDate:         datetime.MustParseDate("2026-12-01"),
		CleanPrice:           980,
		AccruedInterest:      0,
		PurchasePriceWithNKD: 980,
		Coupons: []bond.Coupon{
			{PayDate: datetime.MustParseDate("2026-06-01"), Value: 35},
			{PayDate: datetime.MustParseDate("2026-12-01"), Value: 1035},
		},
	}
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()
	var resp models.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding error envelope: %v; body: %s", err, w.Body.String())
	}
	return resp
}

func TestHealth(t *testing.T) {
	router := testRouter(t, &stubResolver{})

	w := doJSON(t, router, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Errorf("unexpected body %s", w.Body.String())
	}
}

func TestGetBond(t *testing.T) {
	router := testRouter(t, &stubResolver{bond: testBond()})

	w := doJSON(t, router, http.MethodGet, "/api/v1/bonds/SU26238RMFS4", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp models.BondResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.SecID != "SU26238RMFS4" || resp.MaturityDate != "2026-12-01" {
		t.Errorf("unexpected bond payload %+v", resp)
	}
	if len(resp.Coupons) != 2 {
		t.Errorf("expected 2 coupons, got %d", len(resp.Coupons))
	}
}

func TestGetBondNotFound(t *testing.T) {
	router := testRouter(t, &stubResolver{bond: testBond()})

	w := doJSON(t, router, http.MethodGet, "/api/v1/bonds/SU00000000", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if resp := decodeError(t, w); resp.Error.Code != "SECURITY_NOT_FOUND" {
		t.Errorf("expected SECURITY_NOT_FOUND, got %q", resp.Error.Code)
	}
}

func TestSimulate(t *testing.T) {
	router := testRouter(t, &stubResolver{bond: testBond()})

	w := doJSON(t, router, http.MethodPost, "/api/v1/simulate",
		`{"secid": "SU26238RMFS4", "purchase_date": "2026-01-15", "quantity": 10}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp models.SimulateResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.FinalQuantity != 10 {
		t.Errorf("expected final quantity 10, got %d", resp.FinalQuantity)
	}
	if !mathutil.WithinTolerance(resp.FinalAmount, 20700, 1e-9) {
		t.Errorf("expected final amount 20700, got %.4f", resp.FinalAmount)
	}
	if !mathutil.WithinTolerance(resp.Profit, 10900, 1e-9) {
		t.Errorf("expected profit 10900, got %.4f", resp.Profit)
	}
	if len(resp.Log) == 0 {
		t.Error("expected a non-empty simulation log")
	}
}

func TestSimulateValidation(t *testing.T) {
	router := testRouter(t, &stubResolver{bond: testBond()})

	tests := []struct {
		name     string
		body     string
		wantCode int
		wantErr  string
	}{
		{
			name:     "missing secid",
			body:     `{"quantity": 10}`,
			wantCode: http.StatusBadRequest, wantErr: "INVALID_REQUEST",
		},
		{
			name:     "missing quantity",
			body:     `{"secid": "SU26238RMFS4"}`,
			wantCode: http.StatusBadRequest, wantErr: "INVALID_REQUEST",
		},
		{
			name:     "malformed purchase date",
			body:     `{"secid": "SU26238RMFS4", "quantity": 10, "purchase_date": "15.01.2026"}`,
			wantCode: http.StatusBadRequest, wantErr: "INVALID_REQUEST",
		},
		{
			name:     "negative quantity",
			body:     `{"secid": "SU26238RMFS4", "quantity": -5}`,
			wantCode: http.StatusBadRequest, wantErr: "INVALID_INPUT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodPost, "/api/v1/simulate", tt.body)
			if w.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d: %s", tt.wantCode, w.Code, w.Body.String())
			}
			if resp := decodeError(t, w); resp.Error.Code != tt.wantErr {
				t.Errorf("expected %s, got %q", tt.wantErr, resp.Error.Code)
			}
		})
	}
}

func TestTarget(t *testing.T) {
	router := testRouter(t, &stubResolver{bond: testBond()})

	w := doJSON(t, router, http.MethodPost, "/api/v1/target",
		`{"secid": "SU26238RMFS4", "purchase_date": "2026-01-15", "target_amount": 20700}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp models.TargetResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.InitialQty != 10 {
		t.Errorf("expected 10 units, got %d", resp.InitialQty)
	}
	if !mathutil.WithinTolerance(resp.PurchaseCost, 9800, 1e-9) {
		t.Errorf("expected purchase cost 9800, got %.4f", resp.PurchaseCost)
	}
	if resp.FinalAmount < 20700 {
		t.Errorf("payout %.4f below the requested target", resp.FinalAmount)
	}
}

func TestTargetUnreachable(t *testing.T) {
	router := testRouter(t, &stubResolver{bond: testBond()})

	w := doJSON(t, router, http.MethodPost, "/api/v1/target",
		`{"secid": "SU26238RMFS4", "purchase_date": "2026-01-15", "target_amount": 1e15}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", w.Code, w.Body.String())
	}
	if resp := decodeError(t, w); resp.Error.Code != "TARGET_UNREACHABLE" {
		t.Errorf("expected TARGET_UNREACHABLE, got %q", resp.Error.Code)
	}
}

func TestPlan(t *testing.T) {
	maturity := time.Now().AddDate(15, 0, 0)
	router := testRouter(t, &stubResolver{listings: []planner.Listing{
		{
			SecID: "SU26230RMFS1", ShortName: "ОФЗ 26230", MaturityDate: maturity,
			FaceValue: 1000, CouponValue: 38.39, PaymentsPerYear: 2, PricePercent: 65.0,
		},
	}})

	w := doJSON(t, router, http.MethodPost, "/api/v1/plan",
		`{"target_annual_income": 100000, "years_needed": 5}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp models.PlanResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.SecID != "SU26230RMFS1" {
		t.Errorf("unexpected issue %q", resp.SecID)
	}
	if resp.UnitsNeeded != 1303 {
		t.Errorf("expected 1303 units, got %d", resp.UnitsNeeded)
	}
}

func TestPlanNoCandidate(t *testing.T) {
	router := testRouter(t, &stubResolver{})

	w := doJSON(t, router, http.MethodPost, "/api/v1/plan",
		`{"target_annual_income": 100000, "years_needed": 5}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", w.Code, w.Body.String())
	}
	if resp := decodeError(t, w); resp.Error.Code != "NO_CANDIDATE" {
		t.Errorf("expected NO_CANDIDATE, got %q", resp.Error.Code)
	}
}

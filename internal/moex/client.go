// Package moex fetches bond data from the MOEX ISS REST API: security cards,
// market quotes, coupon schedules, and the fixed-coupon OFZ listing.
package moex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ofzlab/ofz-planner/internal/bond"
	"github.com/ofzlab/ofz-planner/internal/planner"
	"github.com/ofzlab/ofz-planner/pkg/constants"
	"github.com/ofzlab/ofz-planner/pkg/datetime"
	"github.com/ofzlab/ofz-planner/pkg/mathutil"
	"go.uber.org/zap"
)

// Coupon types whose payouts are not fixed; such issues are filtered out of
// the listing because the simulator only supports fixed coupons.
var skippedCouponTypes = map[string]bool{
	"FLOAT":    true,
	"VARIABLE": true,
	"INFL":     true,
	"AMORT":    true,
}

var (
	// ErrSecurityNotFound indicates the ISS returned no rows for a SECID.
	ErrSecurityNotFound = errors.New("security not found")

	// ErrNoMarketPrice indicates no usable price on boards TQOB/TQOD.
	ErrNoMarketPrice = errors.New("no market price available on boards TQOB/TQOD")
)

// APIError represents a non-200 response from the ISS.
type APIError struct {
	StatusCode int
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("moex iss: %s returned status %d", e.URL, e.StatusCode)
}

// Client provides access to the MOEX ISS API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	logger     *zap.Logger
}

// NewClient constructs an ISS client. An empty baseURL falls back to the
// public ISS endpoint; a non-positive timeout falls back to the default.
func NewClient(logger *zap.Logger, baseURL string, timeout time.Duration) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if baseURL == "" {
		baseURL = constants.DefaultMoexBaseURL
	}
	if timeout <= 0 {
		timeout = constants.DefaultMoexTimeoutSeconds * time.Second
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// issTable is the column/row block format every ISS response uses.
type issTable struct {
	Columns []string `json:"columns"`
	Data    [][]any  `json:"data"`
}

// rows zips each data row with the column names.
func (t issTable) rows() []map[string]any {
	rows := make([]map[string]any, 0, len(t.Data))
	for _, raw := range t.Data {
		row := make(map[string]any, len(t.Columns))
		for i, col := range t.Columns {
			if i < len(raw) {
				row[col] = raw[i]
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// FetchBond resolves the full contract of a fixed-coupon bond: face value and
// maturity from the security card, price and accrued interest from the
// market data, and the coupon schedule from the bondization endpoint.
func (c *Client) FetchBond(ctx context.Context, secid string) (*bond.Bond, error) {
	secid = strings.ToUpper(strings.TrimSpace(secid))

	var card struct {
		Securities issTable `json:"securities"`
		Marketdata issTable `json:"marketdata"`
	}
	params := url.Values{
		"iss.meta":           {"off"},
		"securities.columns": {"SECID,FACEVALUE,MATDATE"},
		"marketdata.columns": {"SECID,BOARDID,LAST,PREVPRICE,ACCRUEDINT"},
	}
	if err := c.getJSON(ctx, "/engines/stock/markets/bonds/securities/"+secid+".json", params, &card); err != nil {
		return nil, err
	}

	secRows := card.Securities.rows()
	if len(secRows) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrSecurityNotFound, secid)
	}
	sec := secRows[0]

	faceValue := asFloat(sec["FACEVALUE"])
	if faceValue <= 0 {
		faceValue = constants.DefaultFaceValue
	}
	maturityDate, err := datetime.ParseDate(asString(sec["MATDATE"]))
	if err != nil {
		return nil, fmt.Errorf("parsing maturity date of %s: %w", secid, err)
	}

	market := selectBoardRow(card.Marketdata.rows())
	cleanPricePct := asFloat(market["LAST"])
	if cleanPricePct == 0 {
		cleanPricePct = asFloat(market["PREVPRICE"])
	}
	if cleanPricePct == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoMarketPrice, secid)
	}
	accruedInterest := asFloat(market["ACCRUEDINT"])
	cleanPrice := cleanPricePct / 100 * faceValue

	coupons, err := c.fetchCoupons(ctx, secid, faceValue)
	if err != nil {
		return nil, err
	}

	b := &bond.Bond{
		SecID:                secid,
		FaceValue:            faceValue,
		MaturityDate:         maturityDate,
		CleanPrice:           cleanPrice,
		AccruedInterest:      accruedInterest,
		PurchasePriceWithNKD: cleanPrice + accruedInterest,
		Coupons:              coupons,
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}

	c.logger.Debug("fetched bond",
		zap.String("op", "moex.FetchBond"),
		zap.String("secid", secid),
		zap.Float64("purchasePrice", b.PurchasePriceWithNKD),
		zap.Int("coupons", len(coupons)),
	)
	return b, nil
}

// fetchCoupons loads the coupon schedule. Per-coupon value resolution order:
// the nominal value, then the ruble value, then a value derived from the
// coupon percent and the accrual period length. Coupons without a positive
// value are dropped.
func (c *Client) fetchCoupons(ctx context.Context, secid string, faceValue float64) ([]bond.Coupon, error) {
	var payload struct {
		Coupons issTable `json:"coupons"`
	}
	params := url.Values{
		"iss.meta": {"off"},
		"limit":    {"5000"},
		"start":    {"0"},
	}
	if err := c.getJSON(ctx, "/securities/"+secid+"/bondization.json", params, &payload); err != nil {
		return nil, err
	}

	var coupons []bond.Coupon
	for _, row := range payload.Coupons.rows() {
		payDate, err := datetime.ParseDate(asString(row["coupondate"]))
		if err != nil {
			continue
		}

		value := asFloat(row["value"])
		if value <= 0 {
			value = asFloat(row["value_rub"])
		}
		if value <= 0 {
			if pct := asFloat(row["valueprc"]); pct > 0 {
				if startDate, err := datetime.ParseDate(asString(row["startdate"])); err == nil {
					periodDays := payDate.Sub(startDate).Hours() / 24
					if periodDays > 0 {
						value = pct / 100 * faceValue * periodDays / 365
					}
				}
			}
		}
		if value <= 0 {
			continue
		}

		coupons = append(coupons, bond.Coupon{PayDate: payDate, Value: mathutil.RoundCoupon(value)})
	}

	sort.SliceStable(coupons, func(i, j int) bool {
		return coupons[i].PayDate.Before(coupons[j].PayDate)
	})
	return coupons, nil
}

// ListFixedCouponBonds returns the OFZ listing (SECID prefix SU), excluding
// issues with floating, variable, inflation-linked, or amortizing coupons.
func (c *Client) ListFixedCouponBonds(ctx context.Context) ([]planner.Listing, error) {
	var payload struct {
		Securities issTable `json:"securities"`
	}
	params := url.Values{
		"iss.meta":           {"off"},
		"iss.only":           {"securities"},
		"limit":              {"5000"},
		"securities.columns": {"SECID,SHORTNAME,COUPONTYPE,FACEVALUE,COUPONVALUE,COUPONPERIOD,PREVPRICE,MATDATE"},
	}
	if err := c.getJSON(ctx, "/engines/stock/markets/bonds/securities.json", params, &payload); err != nil {
		return nil, err
	}

	var listings []planner.Listing
	for _, row := range payload.Securities.rows() {
		secid := strings.ToUpper(asString(row["SECID"]))
		if !strings.HasPrefix(secid, "SU") {
			continue
		}
		if skippedCouponTypes[strings.ToUpper(asString(row["COUPONTYPE"]))] {
			continue
		}

		maturityDate, err := datetime.ParseDate(asString(row["MATDATE"]))
		if err != nil {
			continue
		}

		faceValue := asFloat(row["FACEVALUE"])
		if faceValue <= 0 {
			faceValue = constants.DefaultFaceValue
		}

		paymentsPerYear := 0
		if period := asFloat(row["COUPONPERIOD"]); period > 0 {
			paymentsPerYear = int(math.Round(365 / period))
			if paymentsPerYear < 1 {
				paymentsPerYear = 1
			}
		}

		listings = append(listings, planner.Listing{
			SecID:           secid,
			ShortName:       asString(row["SHORTNAME"]),
			MaturityDate:    maturityDate,
			FaceValue:       faceValue,
			CouponValue:     asFloat(row["COUPONVALUE"]),
			PaymentsPerYear: paymentsPerYear,
			PricePercent:    asFloat(row["PREVPRICE"]),
		})
	}

	c.logger.Debug("listed fixed-coupon bonds",
		zap.String("op", "moex.ListFixedCouponBonds"),
		zap.Int("count", len(listings)),
	)
	return listings, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	fullURL := c.BaseURL + path
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("requesting %s: %w", fullURL, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode, URL: fullURL}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s: %w", fullURL, err)
	}
	return nil
}

// selectBoardRow prefers the row quoted on the main OFZ boards, falling back
// to the first row when neither is present.
func selectBoardRow(rows []map[string]any) map[string]any {
	for _, row := range rows {
		board := asString(row["BOARDID"])
		if board == "TQOB" || board == "TQOD" {
			return row
		}
	}
	if len(rows) > 0 {
		return rows[0]
	}
	return map[string]any{}
}

func asFloat(value any) float64 {
	switch v := value.(type) {
	case nil:
		return 0
	case float64:
		return v
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(v), ",", ".")
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func asString(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	return ""
}

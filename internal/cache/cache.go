// Package cache persists fetched bond contracts as a single JSON snapshot
// file, so repeated calculations do not hit the MOEX ISS every time.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ofzlab/ofz-planner/internal/bond"
	"github.com/ofzlab/ofz-planner/pkg/datetime"
	"go.uber.org/zap"
)

// ErrNoSnapshot indicates the cache file does not exist yet.
var ErrNoSnapshot = errors.New("no cache snapshot")

// Dates cross the file boundary as YYYY-MM-DD strings; the in-memory bond
// types keep real time.Time values.
type storedCoupon struct {
	PayDate string  `json:"pay_date"`
	Value   float64 `json:"value"`
}

type storedBond struct {
	SecID                string         `json:"secid"`
	FaceValue            float64        `json:"face_value"`
	MaturityDate         string         `json:"maturity_date"`
	CleanPrice           float64        `json:"clean_price"`
	AccruedInterest      float64        `json:"accrued_int"`
	PurchasePriceWithNKD float64        `json:"purchase_price_with_nkd"`
	Coupons              []storedCoupon `json:"coupons"`
}

type snapshot struct {
	UpdatedAt string                `json:"updated_at"`
	Items     map[string]storedBond `json:"items"`
}

// Store reads and writes the snapshot file.
type Store struct {
	path   string
	logger *zap.Logger
}

// NewStore constructs a Store for the given file path.
func NewStore(logger *zap.Logger, path string) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{path: path, logger: logger}
}

// Save writes the full bond set as a new snapshot, stamping the current time.
func (s *Store) Save(bonds map[string]*bond.Bond) error {
	snap := snapshot{
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
		Items:     make(map[string]storedBond, len(bonds)),
	}
	for secid, b := range bonds {
		stored := storedBond{
			SecID:                b.SecID,
			FaceValue:            b.FaceValue,
			MaturityDate:         datetime.FormatDate(b.MaturityDate),
			CleanPrice:           b.CleanPrice,
			AccruedInterest:      b.AccruedInterest,
			PurchasePriceWithNKD: b.PurchasePriceWithNKD,
			Coupons:              make([]storedCoupon, 0, len(b.Coupons)),
		}
		for _, c := range b.Coupons {
			stored.Coupons = append(stored.Coupons, storedCoupon{
				PayDate: datetime.FormatDate(c.PayDate),
				Value:   c.Value,
			})
		}
		snap.Items[secid] = stored
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding cache snapshot: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("writing cache snapshot %s: %w", s.path, err)
	}

	s.logger.Debug("saved cache snapshot",
		zap.String("op", "cache.Save"),
		zap.String("path", s.path),
		zap.Int("bonds", len(bonds)),
	)
	return nil
}

// Load reads the snapshot and returns the bonds keyed by SECID along with the
// snapshot timestamp.
func (s *Store) Load() (map[string]*bond.Bond, time.Time, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, time.Time{}, fmt.Errorf("%w: %s", ErrNoSnapshot, s.path)
		}
		return nil, time.Time{}, fmt.Errorf("reading cache snapshot %s: %w", s.path, err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, time.Time{}, fmt.Errorf("decoding cache snapshot %s: %w", s.path, err)
	}

	updatedAt, _ := time.Parse(time.RFC3339, snap.UpdatedAt)

	bonds := make(map[string]*bond.Bond, len(snap.Items))
	for secid, stored := range snap.Items {
		maturityDate, err := datetime.ParseDate(stored.MaturityDate)
		if err != nil {
			return nil, time.Time{}, fmt.Errorf("cache snapshot %s: bond %s: %w", s.path, secid, err)
		}
		b := &bond.Bond{
			SecID:                stored.SecID,
			FaceValue:            stored.FaceValue,
			MaturityDate:         maturityDate,
			CleanPrice:           stored.CleanPrice,
			AccruedInterest:      stored.AccruedInterest,
			PurchasePriceWithNKD: stored.PurchasePriceWithNKD,
		}
		for _, c := range stored.Coupons {
			payDate, err := datetime.ParseDate(c.PayDate)
			if err != nil {
				return nil, time.Time{}, fmt.Errorf("cache snapshot %s: bond %s: %w", s.path, secid, err)
			}
			b.Coupons = append(b.Coupons, bond.Coupon{PayDate: payDate, Value: c.Value})
		}
		bonds[secid] = b
	}
	return bonds, updatedAt, nil
}

// Info returns the snapshot timestamp without materializing the bonds.
func (s *Store) Info() (time.Time, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return time.Time{}, fmt.Errorf("%w: %s", ErrNoSnapshot, s.path)
		}
		return time.Time{}, err
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return time.Time{}, fmt.Errorf("decoding cache snapshot %s: %w", s.path, err)
	}
	return time.Parse(time.RFC3339, snap.UpdatedAt)
}

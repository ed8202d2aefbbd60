package cache

import (
	"context"
	"errors"
	"strings"

	"github.com/ofzlab/ofz-planner/internal/bond"
	"github.com/ofzlab/ofz-planner/internal/planner"
	"go.uber.org/zap"
)

// Source resolves bonds from the market data; satisfied by moex.Client.
type Source interface {
	FetchBond(ctx context.Context, secid string) (*bond.Bond, error)
	ListFixedCouponBonds(ctx context.Context) ([]planner.Listing, error)
}

// Provider resolves bonds from the snapshot cache when enabled, falling back
// to the market-data source. A cache miss never rewrites the snapshot.
type Provider struct {
	store    *Store
	source   Source
	useCache bool
	logger   *zap.Logger
}

// NewProvider constructs a Provider.
func NewProvider(logger *zap.Logger, store *Store, source Source, useCache bool) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{store: store, source: source, useCache: useCache, logger: logger}
}

// GetBond returns the bond from the snapshot when present, otherwise from
// the source.
func (p *Provider) GetBond(ctx context.Context, secid string) (*bond.Bond, error) {
	secid = strings.ToUpper(strings.TrimSpace(secid))

	if p.useCache {
		bonds, _, err := p.store.Load()
		if err == nil {
			if b, ok := bonds[secid]; ok {
				p.logger.Debug("cache hit",
					zap.String("op", "cache.GetBond"),
					zap.String("secid", secid),
				)
				return b, nil
			}
		} else if !errors.Is(err, ErrNoSnapshot) {
			p.logger.Warn("failed to read cache snapshot, falling back to the market data",
				zap.String("op", "cache.GetBond"),
				zap.Error(err),
			)
		}
	}

	return p.source.FetchBond(ctx, secid)
}

// Listings returns the fixed-coupon OFZ listing from the source.
func (p *Provider) Listings(ctx context.Context) ([]planner.Listing, error) {
	return p.source.ListFixedCouponBonds(ctx)
}

// Refresh downloads every listed fixed-coupon issue and writes a new
// snapshot. Issues that fail to fetch are skipped with a warning. Returns the
// number of bonds saved.
func (p *Provider) Refresh(ctx context.Context) (int, error) {
	listings, err := p.source.ListFixedCouponBonds(ctx)
	if err != nil {
		return 0, err
	}

	bonds := make(map[string]*bond.Bond, len(listings))
	for _, l := range listings {
		b, err := p.source.FetchBond(ctx, l.SecID)
		if err != nil {
			p.logger.Warn("skipping issue during cache refresh",
				zap.String("op", "cache.Refresh"),
				zap.String("secid", l.SecID),
				zap.Error(err),
			)
			continue
		}
		bonds[l.SecID] = b
	}

	if err := p.store.Save(bonds); err != nil {
		return 0, err
	}
	return len(bonds), nil
}

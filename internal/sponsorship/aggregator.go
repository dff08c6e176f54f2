// Package sponsorship folds the sponsorship records of competitor brands
// into creator rollups and distribution histograms.
package sponsorship

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/competitor-intel/internal/apperr"
	"github.com/sells-group/competitor-intel/internal/model"
)

// Source reads joined sponsorship rows.
type Source interface {
	// ListSponsorships returns every sponsorship of the given brands.
	ListSponsorships(ctx context.Context, brandIDs []string) ([]model.SponsorshipRecord, error)
	// GetBrand returns nil and no error when the brand does not exist.
	GetBrand(ctx context.Context, id string) (*model.Brand, error)
	// ListBrandSponsorships returns one brand's sponsorships, newest first.
	ListBrandSponsorships(ctx context.Context, brandID string) ([]model.SponsorshipRecord, error)
}

// Aggregator builds analytics views over the data store.
type Aggregator struct {
	src Source
}

// NewAggregator creates an Aggregator.
func NewAggregator(src Source) *Aggregator {
	return &Aggregator{src: src}
}

// Analyze aggregates every sponsorship of brandIDs. No matching rows yield
// zero-valued analytics.
func (a *Aggregator) Analyze(ctx context.Context, brandIDs []string) (*model.Analytics, error) {
	if len(brandIDs) == 0 {
		return nil, apperr.Validation("competitor_ids array is required")
	}

	records, err := a.src.ListSponsorships(ctx, brandIDs)
	if err != nil {
		return nil, apperr.FromContext(ctx, apperr.KindUpstream, err, "failed to fetch sponsorships")
	}

	f := NewFold()
	for _, rec := range records {
		f.Add(rec)
	}
	out := f.Result()

	zap.L().Info("sponsorship: analytics ready",
		zap.Int("brands", len(brandIDs)),
		zap.Int("sponsorships", out.TotalSponsorships),
		zap.Int("creators", out.TotalCreators),
	)
	return out, nil
}

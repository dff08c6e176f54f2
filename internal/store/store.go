// Package store reads brands and joined sponsorship rows from the
// sponsorship database.
package store

import (
	"context"
	"time"

	"github.com/sells-group/competitor-intel/internal/model"
)

// Store is the read-only view of the sponsorship database.
type Store interface {
	// ListBrands returns at most limit brands.
	ListBrands(ctx context.Context, limit int) ([]model.Brand, error)
	// GetBrand returns nil and no error when the brand does not exist.
	GetBrand(ctx context.Context, id string) (*model.Brand, error)
	// ListSponsorships returns every sponsorship of the given brands joined
	// with brand, creator, video and the video's account.
	ListSponsorships(ctx context.Context, brandIDs []string) ([]model.SponsorshipRecord, error)
	// ListBrandSponsorships returns one brand's joined sponsorships, newest first.
	ListBrandSponsorships(ctx context.Context, brandID string) ([]model.SponsorshipRecord, error)

	Close() error
}

// joinedColumns is the select list for joined sponsorship rows. Every column
// from a LEFT JOIN may be NULL.
const joinedColumns = `
	s.id, s.brand_id, s.creator_id, s.video_id,
	s.detection_confidence, s.mention_type, s.start_second, s.created_at,
	b.name,
	c.id, c.display_name, c.category, c.country_code, c.total_followers,
	v.id, v.creator_account_id, v.title, v.views, v.published_at, v.category, v.url,
	a.id, a.platform, a.username, a.url, a.followers`

const joinedFrom = `
	FROM sponsorships s
	JOIN brands b ON b.id = s.brand_id
	LEFT JOIN creators c ON c.id = s.creator_id
	LEFT JOIN videos v ON v.id = s.video_id
	LEFT JOIN creator_accounts a ON a.id = v.creator_account_id`

// joinedRow holds scan targets for one joinedColumns row.
type joinedRow struct {
	s         model.Sponsorship
	brandName string

	creatorID, creatorName       *string
	creatorCategory, countryCode *string
	totalFollowers               *int64

	videoID, videoAccountID      *string
	title                        *string
	views                        *int64
	publishedAt                  *time.Time
	videoCategory, videoURL      *string

	accountID, platform, username, accountURL *string
	followers                                 *int64
}

func (r *joinedRow) dest() []any {
	return []any{
		&r.s.ID, &r.s.BrandID, &r.s.CreatorID, &r.s.VideoID,
		&r.s.DetectionConfidence, &r.s.MentionType, &r.s.StartSecond, &r.s.CreatedAt,
		&r.brandName,
		&r.creatorID, &r.creatorName, &r.creatorCategory, &r.countryCode, &r.totalFollowers,
		&r.videoID, &r.videoAccountID, &r.title, &r.views, &r.publishedAt, &r.videoCategory, &r.videoURL,
		&r.accountID, &r.platform, &r.username, &r.accountURL, &r.followers,
	}
}

func (r *joinedRow) record() model.SponsorshipRecord {
	rec := model.SponsorshipRecord{
		Sponsorship: r.s,
		Brand:       model.Brand{ID: r.s.BrandID, Name: r.brandName},
	}
	if r.creatorID != nil {
		rec.Creator = &model.Creator{
			ID:             *r.creatorID,
			DisplayName:    deref(r.creatorName),
			Category:       r.creatorCategory,
			CountryCode:    r.countryCode,
			TotalFollowers: r.totalFollowers,
		}
	}
	if r.videoID != nil {
		rec.Video = &model.Video{
			ID:               *r.videoID,
			CreatorAccountID: deref(r.videoAccountID),
			CreatorID:        r.s.CreatorID,
			Title:            r.title,
			Views:            r.views,
			PublishedAt:      r.publishedAt,
			Category:         r.videoCategory,
			URL:              r.videoURL,
		}
	}
	if r.accountID != nil {
		rec.Account = &model.CreatorAccount{
			ID:        *r.accountID,
			CreatorID: r.s.CreatorID,
			Platform:  model.Platform(deref(r.platform)),
			Username:  deref(r.username),
			URL:       r.accountURL,
			Followers: r.followers,
		}
	}
	return rec
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

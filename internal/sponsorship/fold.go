package sponsorship

import (
	"maps"
	"math"
	"sort"

	"github.com/sells-group/competitor-intel/internal/model"
)

// followerBucket returns the histogram label for a follower count. Each
// bucket includes its lower bound.
func followerBucket(followers int64) string {
	switch {
	case followers < 10_000:
		return model.FollowersUnder10K
	case followers < 100_000:
		return model.Followers10KTo100K
	case followers < 500_000:
		return model.Followers100KTo500
	case followers < 1_000_000:
		return model.Followers500KTo1M
	case followers < 5_000_000:
		return model.Followers1MTo5M
	default:
		return model.FollowersOver5M
	}
}

func orUnknown(s *string) string {
	if s == nil || *s == "" {
		return model.UnknownLabel
	}
	return *s
}

func derefInt(p *int64) int64 {
	if p == nil {
		return 0
	}
	return *p
}

// roundDiv divides and rounds half away from zero; 0 when n is 0.
func roundDiv(total int64, n int) int64 {
	if n == 0 {
		return 0
	}
	return int64(math.Round(float64(total) / float64(n)))
}

type creatorAcc struct {
	rollup    model.CreatorRollup
	brandSeen map[string]struct{}
	viewTotal int64
}

// Fold accumulates joined sponsorship rows into analytics. The zero value
// is not usable; call NewFold.
type Fold struct {
	total    int
	creators map[string]*creatorAcc
	order    []string

	categories map[string]int
	followers  map[string]int
	geography  map[string]int
	months     map[string]int

	viewTotal   int64
	viewedCount int
}

// NewFold returns an empty accumulator.
func NewFold() *Fold {
	f := &Fold{
		creators:   make(map[string]*creatorAcc),
		categories: make(map[string]int),
		followers:  make(map[string]int, len(model.FollowerBuckets)),
		geography:  make(map[string]int),
		months:     make(map[string]int),
	}
	for _, label := range model.FollowerBuckets {
		f.followers[label] = 0
	}
	return f
}

// Add folds one row. Rows without a joined creator or video still count
// toward the sponsorship total but contribute nothing else.
func (f *Fold) Add(rec model.SponsorshipRecord) {
	f.total++
	if rec.Creator == nil || rec.Video == nil {
		return
	}

	acc := f.creator(rec.Creator)
	acc.rollup.SponsorshipCount++
	if name := rec.Brand.Name; name != "" {
		if _, ok := acc.brandSeen[name]; !ok {
			acc.brandSeen[name] = struct{}{}
			acc.rollup.Brands = append(acc.rollup.Brands, name)
		}
	}

	if rec.Video.Views != nil {
		views := *rec.Video.Views
		acc.viewTotal += views
		f.viewTotal += views
		f.viewedCount++
	}

	acc.rollup.Videos = append(acc.rollup.Videos, videoSummary(rec.Video, rec.Account, false))

	if !rec.CreatedAt.IsZero() {
		f.months[rec.CreatedAt.UTC().Format("2006-01")]++
	}
}

// creator returns the accumulator for c, creating it and counting the
// creator in the distributions on first sight.
func (f *Fold) creator(c *model.Creator) *creatorAcc {
	if acc, ok := f.creators[c.ID]; ok {
		return acc
	}

	category := orUnknown(c.Category)
	country := orUnknown(c.CountryCode)
	followers := derefInt(c.TotalFollowers)

	acc := &creatorAcc{
		rollup: model.CreatorRollup{
			ID:             c.ID,
			DisplayName:    c.DisplayName,
			Category:       category,
			CountryCode:    country,
			TotalFollowers: followers,
			Brands:         []string{},
			Videos:         []model.VideoSummary{},
		},
		brandSeen: make(map[string]struct{}),
	}
	f.creators[c.ID] = acc
	f.order = append(f.order, c.ID)

	f.categories[category]++
	f.geography[country]++
	f.followers[followerBucket(followers)]++
	return acc
}

// Result finalizes the accumulated rows.
func (f *Fold) Result() *model.Analytics {
	creators := make([]model.CreatorRollup, 0, len(f.order))
	var followerTotal int64
	for _, id := range f.order {
		acc := f.creators[id]
		r := acc.rollup
		// Videos without a view count still count toward the creator's average.
		r.AvgVideoViews = roundDiv(acc.viewTotal, len(r.Videos))
		followerTotal += r.TotalFollowers
		creators = append(creators, r)
	}
	sort.SliceStable(creators, func(i, j int) bool {
		return creators[i].SponsorshipCount > creators[j].SponsorshipCount
	})

	timeline := make([]model.TimelinePoint, 0, len(f.months))
	for month, n := range f.months {
		timeline = append(timeline, model.TimelinePoint{Month: month, Count: n})
	}
	sort.Slice(timeline, func(i, j int) bool {
		return timeline[i].Month < timeline[j].Month
	})

	// No rows at all yields an empty histogram rather than zeroed buckets.
	followers := map[string]int{}
	if f.total > 0 {
		followers = maps.Clone(f.followers)
	}

	return &model.Analytics{
		TotalSponsorships:      f.total,
		TotalCreators:          len(creators),
		Creators:               creators,
		CategoryDistribution:   maps.Clone(f.categories),
		FollowerDistribution:   followers,
		GeographicDistribution: maps.Clone(f.geography),
		Timeline:               timeline,
		Summary: model.AnalyticsSummary{
			AvgFollowers:    roundDiv(followerTotal, len(creators)),
			TotalVideoViews: f.viewTotal,
			AvgVideoViews:   roundDiv(f.viewTotal, f.viewedCount),
			TotalVideos:     f.viewedCount,
		},
	}
}

// videoSummary converts a joined video. withFollowers adds the account's
// follower count, which only the single-brand profile shows.
func videoSummary(v *model.Video, a *model.CreatorAccount, withFollowers bool) model.VideoSummary {
	vs := model.VideoSummary{
		ID:          v.ID,
		Title:       v.Title,
		Views:       v.Views,
		PublishedAt: v.PublishedAt,
		Category:    v.Category,
		URL:         v.URL,
	}
	if a != nil {
		ref := accountRef(a)
		if !withFollowers {
			ref.Followers = nil
		}
		vs.CreatorAccount = &ref
	}
	return vs
}

func accountRef(a *model.CreatorAccount) model.AccountRef {
	return model.AccountRef{
		Platform:  a.Platform,
		Username:  a.Username,
		URL:       a.URL,
		Followers: a.Followers,
	}
}

package sponsorship

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/sells-group/competitor-intel/internal/apperr"
	"github.com/sells-group/competitor-intel/internal/model"
)

type profileAcc struct {
	creator     model.ProfileCreator
	accountSeen map[string]struct{}
}

// Profile returns the drill-down view of one brand: its creators with their
// sponsored videos and distinct accounts.
func (a *Aggregator) Profile(ctx context.Context, brandID string) (*model.CompetitorProfile, error) {
	if brandID == "" {
		return nil, apperr.Validation("Competitor ID is required")
	}

	brand, err := a.src.GetBrand(ctx, brandID)
	if err != nil {
		return nil, apperr.FromContext(ctx, apperr.KindUpstream, err, "failed to fetch brand")
	}
	if brand == nil {
		return nil, apperr.NotFound("Brand not found")
	}

	records, err := a.src.ListBrandSponsorships(ctx, brandID)
	if err != nil {
		return nil, apperr.FromContext(ctx, apperr.KindUpstream, err, "failed to fetch sponsorships")
	}

	byID := make(map[string]*profileAcc)
	var order []string
	for _, rec := range records {
		if rec.Creator == nil {
			continue
		}
		acc, ok := byID[rec.Creator.ID]
		if !ok {
			acc = &profileAcc{
				creator: model.ProfileCreator{
					ID:             rec.Creator.ID,
					DisplayName:    rec.Creator.DisplayName,
					Category:       orUnknown(rec.Creator.Category),
					CountryCode:    orUnknown(rec.Creator.CountryCode),
					TotalFollowers: derefInt(rec.Creator.TotalFollowers),
					Videos:         []model.VideoSummary{},
					Accounts:       []model.AccountRef{},
				},
				accountSeen: make(map[string]struct{}),
			}
			byID[rec.Creator.ID] = acc
			order = append(order, rec.Creator.ID)
		}
		acc.creator.SponsorshipCount++

		if rec.Video == nil {
			continue
		}
		vs := videoSummary(rec.Video, rec.Account, true)
		vs.MentionType = rec.MentionType
		vs.StartSecond = rec.StartSecond
		created := rec.CreatedAt
		vs.CreatedAt = &created
		acc.creator.Videos = append(acc.creator.Videos, vs)

		if rec.Account != nil {
			key := accountKey(rec.Account)
			if _, seen := acc.accountSeen[key]; !seen {
				acc.accountSeen[key] = struct{}{}
				acc.creator.Accounts = append(acc.creator.Accounts, accountRef(rec.Account))
			}
		}
	}

	creators := make([]model.ProfileCreator, 0, len(order))
	var followerTotal, viewTotal int64
	for _, id := range order {
		c := byID[id].creator
		followerTotal += c.TotalFollowers
		for _, v := range c.Videos {
			viewTotal += derefInt(v.Views)
		}
		creators = append(creators, c)
	}
	sort.SliceStable(creators, func(i, j int) bool {
		return creators[i].SponsorshipCount > creators[j].SponsorshipCount
	})

	return &model.CompetitorProfile{
		Brand:    *brand,
		Creators: creators,
		Summary: model.ProfileSummary{
			TotalSponsorships: len(records),
			TotalCreators:     len(creators),
			TotalVideoViews:   viewTotal,
			AvgFollowers:      roundDiv(followerTotal, len(creators)),
		},
	}, nil
}

func accountKey(a *model.CreatorAccount) string {
	url := ""
	if a.URL != nil {
		url = *a.URL
	}
	followers := "-"
	if a.Followers != nil {
		followers = strconv.FormatInt(*a.Followers, 10)
	}
	return strings.Join([]string{string(a.Platform), a.Username, url, followers}, "\x00")
}

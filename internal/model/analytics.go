package model

import "time"

// Follower bucket labels, smallest first.
const (
	FollowersUnder10K  = "0-10k"
	Followers10KTo100K = "10k-100k"
	Followers100KTo500 = "100k-500k"
	Followers500KTo1M  = "500k-1M"
	Followers1MTo5M    = "1M-5M"
	FollowersOver5M    = "5M+"
)

// FollowerBuckets lists every bucket label in ascending order.
var FollowerBuckets = []string{
	FollowersUnder10K,
	Followers10KTo100K,
	Followers100KTo500,
	Followers500KTo1M,
	Followers1MTo5M,
	FollowersOver5M,
}

// UnknownLabel replaces a missing category or country.
const UnknownLabel = "Unknown"

// AccountRef is the creator account a video was published from.
type AccountRef struct {
	Platform  Platform `json:"platform"`
	Username  string   `json:"username"`
	URL       *string  `json:"url"`
	Followers *int64   `json:"followers,omitempty"`
}

// VideoSummary is a sponsored video as shown under a creator.
type VideoSummary struct {
	ID             string      `json:"id"`
	Title          *string     `json:"title"`
	Views          *int64      `json:"views"`
	PublishedAt    *time.Time  `json:"publishedAt"`
	Category       *string     `json:"category"`
	URL            *string     `json:"url"`
	CreatorAccount *AccountRef `json:"creatorAccount"`

	// Populated only in single-brand profiles.
	MentionType *string    `json:"mentionType,omitempty"`
	StartSecond *int64     `json:"startSecond,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
}

// CreatorRollup summarizes one creator across the fetched sponsorships.
type CreatorRollup struct {
	ID               string         `json:"id"`
	DisplayName      string         `json:"displayName"`
	Category         string         `json:"category"`
	CountryCode      string         `json:"countryCode"`
	TotalFollowers   int64          `json:"totalFollowers"`
	SponsorshipCount int            `json:"sponsorshipCount"`
	Brands           []string       `json:"brands"`
	AvgVideoViews    int64          `json:"avgVideoViews"`
	Videos           []VideoSummary `json:"videos"`
}

// TimelinePoint counts sponsorships created in one month (YYYY-MM).
type TimelinePoint struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// AnalyticsSummary holds the global averages.
type AnalyticsSummary struct {
	AvgFollowers    int64 `json:"avgFollowers"`
	TotalVideoViews int64 `json:"totalVideoViews"`
	AvgVideoViews   int64 `json:"avgVideoViews"`
	TotalVideos     int   `json:"totalVideos"`
}

// Analytics is the aggregated sponsorship view over a set of competitor brands.
type Analytics struct {
	TotalSponsorships      int              `json:"totalSponsorships"`
	TotalCreators          int              `json:"totalCreators"`
	Creators               []CreatorRollup  `json:"creators"`
	CategoryDistribution   map[string]int   `json:"categoryDistribution"`
	FollowerDistribution   map[string]int   `json:"followerDistribution"`
	GeographicDistribution map[string]int   `json:"geographicDistribution"`
	Timeline               []TimelinePoint  `json:"timeline"`
	Summary                AnalyticsSummary `json:"summary"`
}

// ProfileCreator is a creator as shown on a single brand's profile.
type ProfileCreator struct {
	ID               string         `json:"id"`
	DisplayName      string         `json:"displayName"`
	Category         string         `json:"category"`
	CountryCode      string         `json:"countryCode"`
	TotalFollowers   int64          `json:"totalFollowers"`
	SponsorshipCount int            `json:"sponsorshipCount"`
	Videos           []VideoSummary `json:"videos"`
	Accounts         []AccountRef   `json:"accounts"`
}

// ProfileSummary holds totals for a single brand's profile.
type ProfileSummary struct {
	TotalSponsorships int   `json:"totalSponsorships"`
	TotalCreators     int   `json:"totalCreators"`
	TotalVideoViews   int64 `json:"totalVideoViews"`
	AvgFollowers      int64 `json:"avgFollowers"`
}

// CompetitorProfile is the drill-down view of one competitor brand.
type CompetitorProfile struct {
	Brand    Brand            `json:"brand"`
	Creators []ProfileCreator `json:"creators"`
	Summary  ProfileSummary   `json:"summary"`
}

package model

import "time"

// Platform identifies the social platform a creator account lives on.
type Platform string

const (
	PlatformYouTube   Platform = "youtube"
	PlatformTikTok    Platform = "tiktok"
	PlatformInstagram Platform = "instagram"
	PlatformTwitter   Platform = "twitter"
)

// Brand is a company tracked as a potential competitor and/or sponsor.
type Brand struct {
	ID              string  `json:"id" yaml:"id"`
	Name            string  `json:"name" yaml:"name"`
	Website         *string `json:"website" yaml:"website"`
	Description     *string `json:"description" yaml:"description"`
	PrimaryCategory *string `json:"primaryCategory" yaml:"primary_category"`
}

// Creator is a content creator who may appear in sponsorships.
type Creator struct {
	ID             string  `json:"id" yaml:"id"`
	DisplayName    string  `json:"displayName" yaml:"display_name"`
	Category       *string `json:"category" yaml:"category"`
	CountryCode    *string `json:"countryCode" yaml:"country_code"`
	TotalFollowers *int64  `json:"totalFollowers" yaml:"total_followers"`
}

// CreatorAccount is one platform presence of a creator.
type CreatorAccount struct {
	ID        string   `json:"id" yaml:"id"`
	CreatorID string   `json:"creatorId" yaml:"creator_id"`
	Platform  Platform `json:"platform" yaml:"platform"`
	Username  string   `json:"username" yaml:"username"`
	URL       *string  `json:"url" yaml:"url"`
	Followers *int64   `json:"followers" yaml:"followers"`
}

// Video is one sponsorship-eligible upload.
type Video struct {
	ID               string     `json:"id" yaml:"id"`
	CreatorAccountID string     `json:"creatorAccountId" yaml:"creator_account_id"`
	CreatorID        string     `json:"creatorId" yaml:"creator_id"`
	Title            *string    `json:"title" yaml:"title"`
	Views            *int64     `json:"views" yaml:"views"`
	PublishedAt      *time.Time `json:"publishedAt" yaml:"published_at"`
	Category         *string    `json:"category" yaml:"category"`
	URL              *string    `json:"url" yaml:"url"`
}

// Sponsorship links one brand, one creator and one video.
type Sponsorship struct {
	ID                  string    `json:"id" yaml:"id"`
	BrandID             string    `json:"brandId" yaml:"brand_id"`
	CreatorID           string    `json:"creatorId" yaml:"creator_id"`
	VideoID             string    `json:"videoId" yaml:"video_id"`
	DetectionConfidence *float64  `json:"detectionConfidence" yaml:"detection_confidence"`
	MentionType         *string   `json:"mentionType" yaml:"mention_type"`
	StartSecond         *int64    `json:"startSecond" yaml:"start_second"`
	CreatedAt           time.Time `json:"createdAt" yaml:"created_at"`
}

// SponsorshipRecord is a sponsorship joined with its brand, creator, video
// and the video's creator account. Creator, Video and Account are nil when
// the joined row is missing.
type SponsorshipRecord struct {
	Sponsorship
	Brand   Brand
	Creator *Creator
	Video   *Video
	Account *CreatorAccount
}

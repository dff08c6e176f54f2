package competitor

import "time"

// Config tunes the scorer. MaxCandidateBrands is the main lever on request
// duration since every BatchSize brands cost one sequential model call.
type Config struct {
	// MaxCandidateBrands is the page limit for the brand fetch.
	MaxCandidateBrands int
	// BatchSize is the number of brands scored per model call.
	BatchSize int
	// TopN caps the returned competitor list.
	TopN int
	// MinSimilarity is the lowest score kept, inclusive.
	MinSimilarity int
	// BatchDelay is the pause between consecutive batches.
	BatchDelay time.Duration
	// DescriptionMaxChars truncates stored brand descriptions in the prompt.
	DescriptionMaxChars int
	Model               string
	MaxTokens           int64
}

// DefaultConfig returns the production tuning.
func DefaultConfig() Config {
	return Config{
		MaxCandidateBrands:  50,
		BatchSize:           10,
		TopN:                15,
		MinSimilarity:       30,
		BatchDelay:          300 * time.Millisecond,
		DescriptionMaxChars: 200,
		Model:               "claude-haiku-4-5-20251001",
		MaxTokens:           1000,
	}
}

// normalize replaces unusable sizes with defaults. MinSimilarity and
// BatchDelay are taken as given.
func (c Config) normalize() Config {
	def := DefaultConfig()
	if c.MaxCandidateBrands <= 0 {
		c.MaxCandidateBrands = def.MaxCandidateBrands
	}
	if c.BatchSize <= 0 {
		c.BatchSize = def.BatchSize
	}
	if c.TopN <= 0 {
		c.TopN = def.TopN
	}
	if c.DescriptionMaxChars <= 0 {
		c.DescriptionMaxChars = def.DescriptionMaxChars
	}
	if c.Model == "" {
		c.Model = def.Model
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = def.MaxTokens
	}
	if c.BatchDelay < 0 {
		c.BatchDelay = 0
	}
	return c
}

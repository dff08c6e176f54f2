// Package competitor scores candidate brands against a target company and
// returns the closest competitors.
package competitor

import (
	"context"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/competitor-intel/internal/apperr"
	"github.com/sells-group/competitor-intel/internal/llmjson"
	"github.com/sells-group/competitor-intel/internal/model"
	"github.com/sells-group/competitor-intel/pkg/anthropic"
)

// BrandSource supplies candidate brands.
type BrandSource interface {
	ListBrands(ctx context.Context, limit int) ([]model.Brand, error)
}

// Request is the target company to find competitors for.
type Request struct {
	Industry           string `json:"industry"`
	CompanyDescription string `json:"company_description,omitempty"`
}

// Result is the ranked competitor list.
type Result struct {
	Competitors []model.CompetitorCandidate `json:"competitors"`
	// TotalAnalyzed is the number of brands fetched.
	TotalAnalyzed int `json:"totalAnalyzed"`
	// TotalCompetitors counts candidates before truncation to TopN.
	TotalCompetitors int `json:"totalCompetitors"`
}

// verdict is one entry of a batch reply.
type verdict struct {
	BrandIndex      *int    `json:"brand_index"`
	IsCompetitor    bool    `json:"is_competitor"`
	SimilarityScore float64 `json:"similarity_score"`
	Description     string  `json:"description"`
	Reasoning       string  `json:"reasoning"`
}

// Scorer identifies competitors by asking the model to score brands in
// sequential batches.
type Scorer struct {
	brands BrandSource
	client anthropic.Client
	cfg    Config
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewScorer creates a Scorer.
func NewScorer(brands BrandSource, client anthropic.Client, cfg Config) *Scorer {
	return &Scorer{
		brands: brands,
		client: client,
		cfg:    cfg.normalize(),
		sleep:  sleepCtx,
	}
}

// Identify scores up to MaxCandidateBrands brands against req and returns
// the TopN by similarity. A failed batch is logged and skipped.
func (s *Scorer) Identify(ctx context.Context, req Request) (*Result, error) {
	if req.Industry == "" {
		return nil, apperr.Validation("industry is required")
	}

	brands, err := s.brands.ListBrands(ctx, s.cfg.MaxCandidateBrands)
	if err != nil {
		return nil, apperr.FromContext(ctx, apperr.KindUpstream, err, "failed to fetch brands")
	}
	if len(brands) == 0 {
		return &Result{Competitors: []model.CompetitorCandidate{}}, nil
	}

	system := systemPrompt(req.Industry, req.CompanyDescription)
	batches := (len(brands) + s.cfg.BatchSize - 1) / s.cfg.BatchSize

	var found []model.CompetitorCandidate
	for n := 0; n < batches; n++ {
		if err := ctx.Err(); err != nil {
			return nil, apperr.FromContext(ctx, apperr.KindUpstream, err, "competitor identification interrupted")
		}
		if n > 0 && s.cfg.BatchDelay > 0 {
			if err := s.sleep(ctx, s.cfg.BatchDelay); err != nil {
				return nil, apperr.FromContext(ctx, apperr.KindUpstream, err, "competitor identification interrupted")
			}
		}

		start := n * s.cfg.BatchSize
		end := min(start+s.cfg.BatchSize, len(brands))
		found = append(found, s.scoreBatch(ctx, system, brands[start:end], n+1)...)
	}
	if err := ctx.Err(); err != nil {
		return nil, apperr.FromContext(ctx, apperr.KindUpstream, err, "competitor identification interrupted")
	}

	sort.SliceStable(found, func(i, j int) bool {
		return found[i].SimilarityScore > found[j].SimilarityScore
	})

	res := &Result{
		Competitors:      found,
		TotalAnalyzed:    len(brands),
		TotalCompetitors: len(found),
	}
	if len(res.Competitors) > s.cfg.TopN {
		res.Competitors = res.Competitors[:s.cfg.TopN]
	}
	if res.Competitors == nil {
		res.Competitors = []model.CompetitorCandidate{}
	}

	zap.L().Info("competitor: identification complete",
		zap.String("industry", req.Industry),
		zap.Int("brands", res.TotalAnalyzed),
		zap.Int("batches", batches),
		zap.Int("competitors", res.TotalCompetitors),
	)
	return res, nil
}

// scoreBatch returns the kept candidates for one batch, or nil when the
// model call or its reply fails.
func (s *Scorer) scoreBatch(ctx context.Context, system string, batch []model.Brand, num int) []model.CompetitorCandidate {
	log := zap.L().With(zap.Int("batch", num), zap.Int("brands", len(batch)))

	resp, err := s.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     s.cfg.Model,
		MaxTokens: s.cfg.MaxTokens,
		System:    system,
		Messages: []anthropic.Message{
			{Role: "user", Content: userPrompt(batch, s.cfg.DescriptionMaxChars)},
		},
	})
	if err != nil {
		log.Warn("competitor: batch skipped, model call failed", zap.Error(err))
		return nil
	}
	resp.Usage.LogCost(s.cfg.Model, "competitor")

	verdicts, err := llmjson.DecodeArray[verdict](resp.Text())
	if err != nil {
		log.Warn("competitor: batch skipped, unreadable reply", zap.Error(err))
		return nil
	}

	var out []model.CompetitorCandidate
	for _, v := range verdicts {
		c, ok := s.candidate(v, batch)
		if ok {
			out = append(out, c)
		}
	}
	log.Debug("competitor: batch scored", zap.Int("verdicts", len(verdicts)), zap.Int("kept", len(out)))
	return out
}

func (s *Scorer) candidate(v verdict, batch []model.Brand) (model.CompetitorCandidate, bool) {
	if v.BrandIndex == nil || !v.IsCompetitor {
		return model.CompetitorCandidate{}, false
	}
	idx := *v.BrandIndex
	if idx < 0 || idx >= len(batch) {
		return model.CompetitorCandidate{}, false
	}
	if v.SimilarityScore < float64(s.cfg.MinSimilarity) {
		return model.CompetitorCandidate{}, false
	}

	brand := batch[idx]
	desc := brand.Description
	if v.Description != "" {
		d := v.Description
		desc = &d
	}
	return model.CompetitorCandidate{
		ID:              brand.ID,
		Name:            brand.Name,
		Website:         brand.Website,
		Description:     desc,
		SimilarityScore: int(math.Round(v.SimilarityScore)),
	}, true
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

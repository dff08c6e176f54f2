// Package pipeline runs the full competitor report for one website:
// extract, classify, identify competitors, then aggregate their sponsorships.
package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/competitor-intel/internal/apperr"
	"github.com/sells-group/competitor-intel/internal/competitor"
	"github.com/sells-group/competitor-intel/internal/extract"
	"github.com/sells-group/competitor-intel/internal/model"
)

// Step names, in execution order.
const (
	StepExtract  = "extract"
	StepClassify = "classify"
	StepIdentify = "identify"
	StepAnalyze  = "analyze"
)

// TextExtractor fetches a page as plain text.
type TextExtractor interface {
	Extract(ctx context.Context, url string) (string, error)
}

// ProfileClassifier describes a company from its page text.
type ProfileClassifier interface {
	Classify(ctx context.Context, websiteURL, text string) (*model.CompanyProfile, error)
}

// CompetitorFinder ranks competitor brands for an industry.
type CompetitorFinder interface {
	Identify(ctx context.Context, req competitor.Request) (*competitor.Result, error)
}

// SponsorshipAnalyzer aggregates sponsorships of a set of brands.
type SponsorshipAnalyzer interface {
	Analyze(ctx context.Context, brandIDs []string) (*model.Analytics, error)
}

// Pipeline runs the steps sequentially; each step's output is the next
// step's input.
type Pipeline struct {
	extractor  TextExtractor
	classifier ProfileClassifier
	finder     CompetitorFinder
	analyzer   SponsorshipAnalyzer
}

// New creates a Pipeline.
func New(e TextExtractor, c ProfileClassifier, f CompetitorFinder, a SponsorshipAnalyzer) *Pipeline {
	return &Pipeline{extractor: e, classifier: c, finder: f, analyzer: a}
}

// Run produces the report for websiteURL. The returned report is never nil;
// on failure it holds the steps completed so far and the error is classified
// by the failing step.
func (p *Pipeline) Run(ctx context.Context, websiteURL string) (*model.Report, error) {
	log := zap.L().With(zap.String("url", websiteURL))
	log.Info("pipeline: starting report")

	report := &model.Report{WebsiteURL: websiteURL, Competitors: []model.CompetitorCandidate{}}

	track := func(name string, fn func() error) error {
		start := time.Now()
		err := fn()
		res := model.StepResult{
			Name:       name,
			Status:     model.StepComplete,
			DurationMs: time.Since(start).Milliseconds(),
		}
		if err != nil {
			res.Status = model.StepFailed
			res.Error = err.Error()
			log.Error("pipeline: step failed",
				zap.String("step", name),
				zap.Int64("duration_ms", res.DurationMs),
				zap.String("kind", apperr.KindOf(err).String()),
				zap.Error(err),
			)
			err = apperr.Wrap(apperr.KindOf(err), err, name)
		} else {
			log.Info("pipeline: step complete",
				zap.String("step", name),
				zap.Int64("duration_ms", res.DurationMs),
			)
		}
		report.Steps = append(report.Steps, res)
		return err
	}

	if err := extract.ValidateURL(websiteURL); err != nil {
		return report, err
	}

	var text string
	if err := track(StepExtract, func() (err error) {
		text, err = p.extractor.Extract(ctx, websiteURL)
		return err
	}); err != nil {
		return report, err
	}

	if err := track(StepClassify, func() error {
		profile, err := p.classifier.Classify(ctx, websiteURL, text)
		if err != nil {
			return err
		}
		report.Company = *profile
		return nil
	}); err != nil {
		return report, err
	}

	if err := track(StepIdentify, func() error {
		res, err := p.finder.Identify(ctx, competitor.Request{
			Industry:           report.Company.Industry,
			CompanyDescription: report.Company.Description,
		})
		if err != nil {
			return err
		}
		report.Competitors = res.Competitors
		report.TotalAnalyzed = res.TotalAnalyzed
		report.TotalCompetitors = res.TotalCompetitors
		return nil
	}); err != nil {
		return report, err
	}

	if len(report.Competitors) == 0 {
		report.Steps = append(report.Steps, model.StepResult{Name: StepAnalyze, Status: model.StepSkipped})
		log.Info("pipeline: no competitors, analytics skipped")
		return report, nil
	}

	ids := make([]string, len(report.Competitors))
	for i, c := range report.Competitors {
		ids[i] = c.ID
	}
	if err := track(StepAnalyze, func() error {
		analytics, err := p.analyzer.Analyze(ctx, ids)
		if err != nil {
			return err
		}
		report.Analytics = analytics
		return nil
	}); err != nil {
		return report, err
	}

	log.Info("pipeline: report complete",
		zap.String("company", report.Company.CompanyName),
		zap.Int("competitors", len(report.Competitors)),
	)
	return report, nil
}

package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/competitor-intel/internal/classify"
	"github.com/sells-group/competitor-intel/internal/competitor"
	"github.com/sells-group/competitor-intel/internal/config"
	"github.com/sells-group/competitor-intel/internal/db"
	"github.com/sells-group/competitor-intel/internal/extract"
	"github.com/sells-group/competitor-intel/internal/fetcher"
	"github.com/sells-group/competitor-intel/internal/pipeline"
	"github.com/sells-group/competitor-intel/internal/resilience"
	"github.com/sells-group/competitor-intel/internal/server"
	"github.com/sells-group/competitor-intel/internal/sponsorship"
	"github.com/sells-group/competitor-intel/internal/store"
	anthropicpkg "github.com/sells-group/competitor-intel/pkg/anthropic"
)

// defaultSQLitePath is used when the sqlite driver has no database_url.
const defaultSQLitePath = "competitor-intel.db"

// appEnv holds the store and the pipeline steps shared by serve and report.
type appEnv struct {
	Store      store.Store
	Extractor  *extract.Extractor
	Classifier *classify.Classifier
	Scorer     *competitor.Scorer
	Aggregator *sponsorship.Aggregator
	Pipeline   *pipeline.Pipeline
}

// Close releases the store connection.
func (e *appEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// Services exposes the steps to the HTTP router.
func (e *appEnv) Services() server.Services {
	return server.Services{
		Extractor:  e.Extractor,
		Classifier: e.Classifier,
		Finder:     e.Scorer,
		Analyzer:   e.Aggregator,
	}
}

// initEnv validates cfg for mode and builds every step. Callers should
// defer env.Close().
func initEnv(ctx context.Context, mode string) (*appEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	st, err := initStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}

	client := newModelClient(cfg.Anthropic)
	env := &appEnv{
		Store:      st,
		Extractor:  newExtractor(cfg.Extract),
		Classifier: classify.New(client, cfg.Anthropic.HaikuModel, cfg.Classify.MaxTokens),
		Scorer:     competitor.NewScorer(st, client, scorerConfig(cfg.Scorer, cfg.Anthropic.HaikuModel)),
		Aggregator: sponsorship.NewAggregator(st),
	}
	env.Pipeline = pipeline.New(env.Extractor, env.Classifier, env.Scorer, env.Aggregator)
	return env, nil
}

// initStore opens the configured sponsorship store.
func initStore(ctx context.Context, sc config.StoreConfig) (store.Store, error) {
	switch sc.Driver {
	case "postgres":
		st, err := store.NewPostgres(ctx, sc.DatabaseURL, db.PoolConfig{
			MaxConns: sc.MaxConns,
			MinConns: sc.MinConns,
		})
		if err != nil {
			return nil, eris.Wrap(err, "init postgres store")
		}
		zap.L().Info("using postgres store")
		return st, nil
	case "sqlite":
		st, err := openSQLite(ctx, sc)
		if err != nil {
			return nil, err
		}
		zap.L().Info("using sqlite store", zap.String("path", sqlitePath(sc)))
		return st, nil
	default:
		return nil, eris.Errorf("unknown store driver %q", sc.Driver)
	}
}

func openSQLite(ctx context.Context, sc config.StoreConfig) (*store.SQLiteStore, error) {
	st, err := store.NewSQLite(sqlitePath(sc))
	if err != nil {
		return nil, eris.Wrap(err, "init sqlite store")
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate sqlite store")
	}
	return st, nil
}

func sqlitePath(sc config.StoreConfig) string {
	if sc.DatabaseURL != "" {
		return sc.DatabaseURL
	}
	return defaultSQLitePath
}

func newModelClient(ac config.AnthropicConfig) anthropicpkg.Client {
	return anthropicpkg.NewClient(ac.Key, anthropicpkg.Options{
		BaseURL:    ac.BaseURL,
		Timeout:    time.Duration(ac.TimeoutSecs) * time.Second,
		MaxRetries: ac.MaxRetries,
	})
}

func newExtractor(ec config.ExtractConfig) *extract.Extractor {
	retry := resilience.DefaultRetryConfig()
	if ec.MaxAttempts > 0 {
		retry.MaxAttempts = ec.MaxAttempts
	}
	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		Timeout:      time.Duration(ec.TimeoutSecs) * time.Second,
		MaxBodyBytes: ec.MaxBodyBytes,
		Retry:        retry,
		RatePerHost:  rate.Limit(ec.RatePerHost),
	})
	return extract.New(f, ec.MaxChars)
}

func scorerConfig(sc config.ScorerConfig, model string) competitor.Config {
	return competitor.Config{
		MaxCandidateBrands:  sc.MaxCandidateBrands,
		BatchSize:           sc.BatchSize,
		TopN:                sc.TopN,
		MinSimilarity:       sc.MinSimilarity,
		BatchDelay:          sc.BatchDelay(),
		DescriptionMaxChars: sc.DescriptionMaxChars,
		Model:               model,
		MaxTokens:           sc.MaxTokens,
	}
}

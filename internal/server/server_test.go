package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sells-group/competitor-intel/internal/apperr"
	"github.com/sells-group/competitor-intel/internal/competitor"
	"github.com/sells-group/competitor-intel/internal/model"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

type mockExtractor struct{ mock.Mock }

func (m *mockExtractor) Extract(ctx context.Context, url string) (string, error) {
	args := m.Called(ctx, url)
	return args.String(0), args.Error(1)
}

type mockClassifier struct{ mock.Mock }

func (m *mockClassifier) Classify(ctx context.Context, websiteURL, text string) (*model.CompanyProfile, error) {
	args := m.Called(ctx, websiteURL, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CompanyProfile), args.Error(1)
}

type mockFinder struct{ mock.Mock }

func (m *mockFinder) Identify(ctx context.Context, req competitor.Request) (*competitor.Result, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*competitor.Result), args.Error(1)
}

type mockAnalyzer struct{ mock.Mock }

func (m *mockAnalyzer) Analyze(ctx context.Context, brandIDs []string) (*model.Analytics, error) {
	args := m.Called(ctx, brandIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Analytics), args.Error(1)
}

func (m *mockAnalyzer) Profile(ctx context.Context, brandID string) (*model.CompetitorProfile, error) {
	args := m.Called(ctx, brandID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CompetitorProfile), args.Error(1)
}

type fixture struct {
	ext *mockExtractor
	cls *mockClassifier
	fnd *mockFinder
	ana *mockAnalyzer
	h   http.Handler
}

func newFixture(opts Options) *fixture {
	f := &fixture{ext: &mockExtractor{}, cls: &mockClassifier{}, fnd: &mockFinder{}, ana: &mockAnalyzer{}}
	f.h = NewRouter(Services{Extractor: f.ext, Classifier: f.cls, Finder: f.fnd, Analyzer: f.ana}, opts)
	return f
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	f.h.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

func assertFailure(t *testing.T, rr *httptest.ResponseRecorder, status int, msg string) {
	t.Helper()
	assert.Equal(t, status, rr.Code)
	body := decode(t, rr)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, msg, body["error"])
}

func TestHealth(t *testing.T) {
	f := newFixture(Options{})
	rr := f.do(http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")
	assert.Equal(t, "ok", decode(t, rr)["status"])
	assert.NotEmpty(t, rr.Header().Get(RequestIDHeader))
}

func TestRequestID_Propagated(t *testing.T) {
	f := newFixture(Options{})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rr := httptest.NewRecorder()
	f.h.ServeHTTP(rr, req)

	assert.Equal(t, "abc-123", rr.Header().Get(RequestIDHeader))
}

func TestUnknownRoute(t *testing.T) {
	f := newFixture(Options{})
	rr := f.do(http.MethodGet, "/nope", "")
	assertFailure(t, rr, http.StatusNotFound, "not found")
}

func TestAnalyzeCompany_Success(t *testing.T) {
	f := newFixture(Options{})
	f.ext.On("Extract", mock.Anything, "https://acme.com").Return("Acme text", nil)
	f.cls.On("Classify", mock.Anything, "https://acme.com", "Acme text").Return(&model.CompanyProfile{
		CompanyName:      "Acme",
		Industry:         "SaaS",
		ProductsServices: []string{},
	}, nil)

	rr := f.do(http.MethodPost, "/analyze-company", `{"website_url":"https://acme.com"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	body := decode(t, rr)
	assert.Equal(t, true, body["success"])
	analysis := body["analysis"].(map[string]any)
	assert.Equal(t, "Acme", analysis["company_name"])
	assert.Equal(t, []any{}, analysis["products_services"])
}

func TestAnalyzeCompany_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing url", `{}`, "website_url is required"},
		{"malformed url", `{"website_url":"acme"}`, "Invalid URL format"},
		{"malformed json", `{"website_url":`, "invalid request body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(Options{})
			rr := f.do(http.MethodPost, "/analyze-company", tt.body)
			assertFailure(t, rr, http.StatusBadRequest, tt.want)
			f.ext.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
		})
	}
}

func TestAnalyzeCompany_FetchFailure(t *testing.T) {
	f := newFixture(Options{})
	f.ext.On("Extract", mock.Anything, mock.Anything).
		Return("", apperr.Wrap(apperr.KindFetch, errors.New("dial"), "website scraping failed: HTTP 503"))

	rr := f.do(http.MethodPost, "/analyze-company", `{"website_url":"https://acme.com"}`)
	assertFailure(t, rr, http.StatusInternalServerError, "website scraping failed: HTTP 503")
}

func TestAnalyzeCompany_ParseFailure(t *testing.T) {
	f := newFixture(Options{})
	f.ext.On("Extract", mock.Anything, mock.Anything).Return("text", nil)
	f.cls.On("Classify", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, apperr.New(apperr.KindParse, "no JSON object found in model response"))

	rr := f.do(http.MethodPost, "/analyze-company", `{"website_url":"https://acme.com"}`)
	assertFailure(t, rr, http.StatusInternalServerError, "no JSON object found in model response")
}

func TestAnalyzeCompany_UnclassifiedErrorHidesDetail(t *testing.T) {
	f := newFixture(Options{})
	f.ext.On("Extract", mock.Anything, mock.Anything).Return("text", nil)
	f.cls.On("Classify", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("secret internal detail"))

	rr := f.do(http.MethodPost, "/analyze-company", `{"website_url":"https://acme.com"}`)
	assertFailure(t, rr, http.StatusInternalServerError, "Failed to analyze company")
}

func TestIdentifyCompetitors_Success(t *testing.T) {
	f := newFixture(Options{})
	f.fnd.On("Identify", mock.Anything, competitor.Request{Industry: "fintech", CompanyDescription: "payments"}).
		Return(&competitor.Result{
			Competitors:      []model.CompetitorCandidate{{ID: "b0", Name: "Stripe", SimilarityScore: 85}},
			TotalAnalyzed:    3,
			TotalCompetitors: 1,
		}, nil)

	rr := f.do(http.MethodPost, "/identify-competitors", `{"industry":"fintech","company_description":"payments"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	body := decode(t, rr)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(3), body["totalAnalyzed"])
	assert.Equal(t, float64(1), body["totalCompetitors"])
	comps := body["competitors"].([]any)
	require.Len(t, comps, 1)
	assert.Equal(t, float64(85), comps[0].(map[string]any)["similarityScore"])
}

func TestIdentifyCompetitors_MissingIndustry(t *testing.T) {
	f := newFixture(Options{})
	f.fnd.On("Identify", mock.Anything, competitor.Request{}).
		Return(nil, apperr.Validation("industry is required"))

	rr := f.do(http.MethodPost, "/identify-competitors", `{}`)
	assertFailure(t, rr, http.StatusBadRequest, "industry is required")
}

func TestIdentifyCompetitors_Timeout(t *testing.T) {
	f := newFixture(Options{})
	f.fnd.On("Identify", mock.Anything, mock.Anything).
		Return(nil, apperr.Wrap(apperr.KindTimeout, context.DeadlineExceeded, "competitor identification interrupted"))

	rr := f.do(http.MethodPost, "/identify-competitors", `{"industry":"fintech"}`)
	assertFailure(t, rr, http.StatusGatewayTimeout, identifyTimeoutMsg)
}

func TestIdentifyCompetitors_Upstream(t *testing.T) {
	f := newFixture(Options{})
	f.fnd.On("Identify", mock.Anything, mock.Anything).
		Return(nil, apperr.Wrap(apperr.KindUpstream, errors.New("pg down"), "failed to fetch brands"))

	rr := f.do(http.MethodPost, "/identify-competitors", `{"industry":"fintech"}`)
	assertFailure(t, rr, http.StatusInternalServerError, "failed to fetch brands")
}

func TestIdentifyCompetitors_RequestDeadlineApplied(t *testing.T) {
	f := newFixture(Options{RequestTimeout: 5 * time.Second})
	f.fnd.On("Identify", mock.MatchedBy(func(ctx context.Context) bool {
		dl, ok := ctx.Deadline()
		return ok && time.Until(dl) <= 5*time.Second
	}), mock.Anything).Return(&competitor.Result{Competitors: []model.CompetitorCandidate{}}, nil)

	rr := f.do(http.MethodPost, "/identify-competitors", `{"industry":"fintech"}`)
	assert.Equal(t, http.StatusOK, rr.Code)
	f.fnd.AssertExpectations(t)
}

func TestCompetitorAnalytics_Success(t *testing.T) {
	f := newFixture(Options{})
	f.ana.On("Analyze", mock.Anything, []string{"b0", "b2"}).Return(&model.Analytics{
		TotalSponsorships: 3,
		TotalCreators:     2,
		Creators:          []model.CreatorRollup{},
	}, nil)

	rr := f.do(http.MethodPost, "/competitor-analytics", `{"competitor_ids":["b0","b2"]}`)
	require.Equal(t, http.StatusOK, rr.Code)

	body := decode(t, rr)
	analytics := body["analytics"].(map[string]any)
	assert.Equal(t, float64(3), analytics["totalSponsorships"])
	assert.Equal(t, float64(2), analytics["totalCreators"])
}

func TestCompetitorAnalytics_Validation(t *testing.T) {
	for _, body := range []string{
		`{}`,
		`{"competitor_ids":[]}`,
		`{"competitor_ids":"b0"}`,
		`{"competitor_ids":null}`,
		`{"competitor_ids":[1,2]}`,
	} {
		t.Run(body, func(t *testing.T) {
			f := newFixture(Options{})
			rr := f.do(http.MethodPost, "/competitor-analytics", body)
			assertFailure(t, rr, http.StatusBadRequest, "competitor_ids array is required")
			f.ana.AssertNotCalled(t, "Analyze", mock.Anything, mock.Anything)
		})
	}
}

func TestCompetitorAnalytics_StoreFailure(t *testing.T) {
	f := newFixture(Options{})
	f.ana.On("Analyze", mock.Anything, mock.Anything).
		Return(nil, apperr.Wrap(apperr.KindUpstream, errors.New("pg down"), "failed to fetch sponsorships"))

	rr := f.do(http.MethodPost, "/competitor-analytics", `{"competitor_ids":["b0"]}`)
	assertFailure(t, rr, http.StatusInternalServerError, "failed to fetch sponsorships")
}

func TestCompetitorProfile(t *testing.T) {
	f := newFixture(Options{})
	f.ana.On("Profile", mock.Anything, "b0").Return(&model.CompetitorProfile{
		Brand:    model.Brand{ID: "b0", Name: "Stripe"},
		Creators: []model.ProfileCreator{},
		Summary:  model.ProfileSummary{TotalSponsorships: 4},
	}, nil)

	rr := f.do(http.MethodGet, "/competitors/b0", "")
	require.Equal(t, http.StatusOK, rr.Code)

	body := decode(t, rr)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Stripe", body["brand"].(map[string]any)["name"])
	assert.Equal(t, float64(4), body["summary"].(map[string]any)["totalSponsorships"])
}

func TestCompetitorProfile_NotFound(t *testing.T) {
	f := newFixture(Options{})
	f.ana.On("Profile", mock.Anything, "missing").Return(nil, apperr.NotFound("Brand not found"))

	rr := f.do(http.MethodGet, "/competitors/missing", "")
	assertFailure(t, rr, http.StatusNotFound, "Brand not found")
}

func TestCORS(t *testing.T) {
	f := newFixture(Options{CORSOrigins: []string{"https://app.example.com"}})

	req := httptest.NewRequest(http.MethodOptions, "/identify-competitors", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	f.h.ServeHTTP(rr, req)

	assert.Equal(t, "https://app.example.com", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.True(t, strings.Contains(rr.Header().Get("Access-Control-Allow-Methods"), http.MethodPost))
}

func TestMethodNotAllowed(t *testing.T) {
	f := newFixture(Options{})
	rr := f.do(http.MethodGet, "/identify-competitors", "")
	assertFailure(t, rr, http.StatusMethodNotAllowed, "method not allowed")
}

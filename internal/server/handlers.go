package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sells-group/competitor-intel/internal/apperr"
	"github.com/sells-group/competitor-intel/internal/competitor"
	"github.com/sells-group/competitor-intel/internal/extract"
	"github.com/sells-group/competitor-intel/internal/model"
)

// identifyTimeoutMsg replaces the generic timeout message on the scoring
// endpoint, whose duration grows with the candidate brand count.
const identifyTimeoutMsg = "Competitor identification timed out. Please retry with a shorter company description or a narrower industry."

type handlers struct {
	svc Services
}

type analyzeRequest struct {
	WebsiteURL string `json:"website_url"`
}

type analyzeResponse struct {
	Success  bool                 `json:"success"`
	Analysis model.CompanyProfile `json:"analysis"`
}

func (h *handlers) analyzeCompany(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err, "invalid request body")
		return
	}
	if err := extract.ValidateURL(req.WebsiteURL); err != nil {
		writeError(w, r, err, "invalid website_url")
		return
	}

	text, err := h.svc.Extractor.Extract(r.Context(), req.WebsiteURL)
	if err != nil {
		writeError(w, r, err, "Failed to analyze company")
		return
	}
	profile, err := h.svc.Classifier.Classify(r.Context(), req.WebsiteURL, text)
	if err != nil {
		writeError(w, r, err, "Failed to analyze company")
		return
	}

	writeJSON(w, http.StatusOK, analyzeResponse{Success: true, Analysis: *profile})
}

type identifyResponse struct {
	Success bool `json:"success"`
	competitor.Result
}

func (h *handlers) identifyCompetitors(w http.ResponseWriter, r *http.Request) {
	var req competitor.Request
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err, "invalid request body")
		return
	}

	res, err := h.svc.Finder.Identify(r.Context(), req)
	if err != nil {
		if apperr.Is(err, apperr.KindTimeout) {
			err = apperr.Wrap(apperr.KindTimeout, err, identifyTimeoutMsg)
		}
		writeError(w, r, err, "Failed to identify competitors")
		return
	}

	writeJSON(w, http.StatusOK, identifyResponse{Success: true, Result: *res})
}

type analyticsRequest struct {
	CompetitorIDs json.RawMessage `json:"competitor_ids"`
}

type analyticsResponse struct {
	Success   bool             `json:"success"`
	Analytics *model.Analytics `json:"analytics"`
}

func (h *handlers) competitorAnalytics(w http.ResponseWriter, r *http.Request) {
	var req analyticsRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err, "invalid request body")
		return
	}
	var ids []string
	if len(req.CompetitorIDs) == 0 || json.Unmarshal(req.CompetitorIDs, &ids) != nil || len(ids) == 0 {
		writeError(w, r, apperr.Validation("competitor_ids array is required"), "")
		return
	}

	analytics, err := h.svc.Analyzer.Analyze(r.Context(), ids)
	if err != nil {
		writeError(w, r, err, "Failed to fetch competitor analytics")
		return
	}

	writeJSON(w, http.StatusOK, analyticsResponse{Success: true, Analytics: analytics})
}

type profileResponse struct {
	Success bool `json:"success"`
	*model.CompetitorProfile
}

func (h *handlers) competitorProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.svc.Analyzer.Profile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err, "Failed to fetch competitor profile")
		return
	}

	writeJSON(w, http.StatusOK, profileResponse{Success: true, CompetitorProfile: profile})
}

// Package extract turns a company's web page into capped plain text.
package extract

import (
	"context"
	"errors"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/sells-group/competitor-intel/internal/apperr"
	"github.com/sells-group/competitor-intel/internal/fetcher"
	"github.com/sells-group/competitor-intel/internal/resilience"
)

// DefaultMaxChars caps extracted text to keep prompts small.
const DefaultMaxChars = 8000

var (
	scriptRe     = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleRe      = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	tagRe        = regexp.MustCompile(`<[^>]+>`)
	strayRe      = regexp.MustCompile(`[<>]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// Extractor fetches pages and strips them to text.
type Extractor struct {
	fetcher  fetcher.Fetcher
	maxChars int
}

// New creates an Extractor. maxChars <= 0 uses DefaultMaxChars.
func New(f fetcher.Fetcher, maxChars int) *Extractor {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	return &Extractor{fetcher: f, maxChars: maxChars}
}

// Extract fetches rawURL and returns its visible text. An empty page yields
// an empty string, not an error.
func (e *Extractor) Extract(ctx context.Context, rawURL string) (string, error) {
	page, err := e.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		if apperr.IsDeadline(ctx, err) {
			return "", apperr.Wrap(apperr.KindTimeout, err, "website scraping timed out")
		}
		var se *resilience.StatusError
		if errors.As(err, &se) {
			return "", apperr.Wrap(apperr.KindFetch, err, "website scraping failed: HTTP "+strconv.Itoa(se.StatusCode))
		}
		return "", apperr.Wrap(apperr.KindFetch, err, "website scraping failed")
	}

	text := StripHTML(page.Body, e.maxChars)
	zap.L().Debug("extract: page text ready",
		zap.String("url", rawURL),
		zap.Int("html_bytes", len(page.Body)),
		zap.Int("text_chars", utf8.RuneCountInString(text)),
	)
	return text, nil
}

// ValidateURL checks that raw is an absolute http(s) URL with a host.
func ValidateURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return apperr.Validation("website_url is required")
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return apperr.Validation("Invalid URL format")
	}
	return nil
}

// StripHTML removes script and style blocks and all remaining tags,
// collapses whitespace, and truncates the result to maxChars runes.
func StripHTML(html string, maxChars int) string {
	text := scriptRe.ReplaceAllString(html, "")
	text = styleRe.ReplaceAllString(text, "")
	text = tagRe.ReplaceAllString(text, " ")
	// Unterminated tags and bare angle brackets never reach the prompt.
	text = strayRe.ReplaceAllString(text, " ")
	text = whitespaceRe.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)
	return truncateRunes(text, maxChars)
}

func truncateRunes(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

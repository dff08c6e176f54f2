// Package llmjson pulls JSON values out of free-text model replies.
//
// Replies are cleaned in a fixed order: code fences are stripped, the
// outermost object or array span is located, and the span is decoded with
// up to three progressively more aggressive repair passes.
package llmjson

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/sells-group/competitor-intel/internal/apperr"
)

var (
	fenceOpenRe  = regexp.MustCompile("```json\\n?")
	fenceCloseRe = regexp.MustCompile("```\\n?")

	controlRe        = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`)
	newlineBeforeRe  = regexp.MustCompile(`\n\s*([,\}\]])`)
	newlineAfterRe   = regexp.MustCompile(`([,\{\[])\s*\n`)
	unescapedNewline = regexp.MustCompile(`([^\\])\n`)
)

// StripFences removes markdown code fence markers.
func StripFences(s string) string {
	s = fenceOpenRe.ReplaceAllString(s, "")
	return fenceCloseRe.ReplaceAllString(s, "")
}

// FindObject returns the span from the first '{' to the last '}'.
func FindObject(s string) (string, bool) {
	return findSpan(s, '{', '}')
}

// FindArray returns the span from the first '[' to the last ']'.
func FindArray(s string) (string, bool) {
	return findSpan(s, '[', ']')
}

func findSpan(s string, open, close byte) (string, bool) {
	start := strings.IndexByte(s, open)
	end := strings.LastIndexByte(s, close)
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

// Unmarshal decodes span into v, trying the raw text first, then the text
// with control characters removed and newlines around structural tokens
// collapsed, then additionally with every remaining raw newline escaped.
// The error from the first attempt is reported when all three fail.
func Unmarshal(span string, v any) error {
	firstErr := json.Unmarshal([]byte(span), v)
	if firstErr == nil {
		return nil
	}

	cleaned := controlRe.ReplaceAllString(span, "")
	cleaned = newlineBeforeRe.ReplaceAllString(cleaned, " $1")
	cleaned = newlineAfterRe.ReplaceAllString(cleaned, "$1 ")
	if err := json.Unmarshal([]byte(cleaned), v); err == nil {
		return nil
	}

	cleaned = unescapedNewline.ReplaceAllString(cleaned, `$1\n`)
	if err := json.Unmarshal([]byte(cleaned), v); err == nil {
		return nil
	}

	return apperr.Wrap(apperr.KindParse, firstErr, "failed to parse JSON")
}

// DecodeObject extracts and decodes the JSON object embedded in reply.
func DecodeObject[T any](reply string) (T, error) {
	var out T
	span, ok := FindObject(StripFences(reply))
	if !ok {
		return out, apperr.New(apperr.KindParse, "no JSON object found in model response")
	}
	if err := Unmarshal(span, &out); err != nil {
		return out, err
	}
	return out, nil
}

// DecodeArray extracts and decodes the JSON array embedded in reply.
func DecodeArray[T any](reply string) ([]T, error) {
	span, ok := FindArray(strings.TrimSpace(StripFences(reply)))
	if !ok {
		return nil, apperr.New(apperr.KindParse, "no JSON array found in model response")
	}
	var out []T
	if err := Unmarshal(span, &out); err != nil {
		return nil, err
	}
	return out, nil
}

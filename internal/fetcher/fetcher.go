// Package fetcher downloads web pages for text extraction.
package fetcher

import "context"

// Page is a fetched document decoded to UTF-8.
type Page struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        string
}

// Fetcher retrieves a single URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Page, error)
}

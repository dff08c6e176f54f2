package extract

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sells-group/competitor-intel/internal/apperr"
	"github.com/sells-group/competitor-intel/internal/fetcher"
	"github.com/sells-group/competitor-intel/internal/resilience"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) Fetch(ctx context.Context, url string) (*fetcher.Page, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fetcher.Page), args.Error(1)
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{"plain", "hello world", "hello world"},
		{"tags", "<h1>Acme</h1><p>Payments  for\n\teveryone</p>", "Acme Payments for everyone"},
		{"script", `<script type="text/javascript">var x = "<b>";</script>Visible`, "Visible"},
		{"style uppercase", "<STYLE>body { color: red }</STYLE>Text", "Text"},
		{"multiline script", "<script>\nline1\nline2\n</script> after", "after"},
		{"empty", "", ""},
		{"only tags", "<div><span></span></div>", ""},
		{"stray brackets", "5 < 6 <div", "5 6 div"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripHTML(tt.html, DefaultMaxChars))
		})
	}
}

func TestStripHTML_Truncates(t *testing.T) {
	html := "<p>" + strings.Repeat("word ", 5000) + "</p>"
	got := StripHTML(html, DefaultMaxChars)
	assert.Equal(t, DefaultMaxChars, utf8.RuneCountInString(got))
	assert.NotContains(t, got, "<")
	assert.NotContains(t, got, ">")
}

func TestStripHTML_TruncatesOnRuneBoundary(t *testing.T) {
	got := StripHTML("héllo wörld", 4)
	assert.Equal(t, "héll", got)
	assert.True(t, utf8.ValidString(got))
}

func TestExtract_Success(t *testing.T) {
	f := &mockFetcher{}
	f.On("Fetch", mock.Anything, "https://acme.com").
		Return(&fetcher.Page{Body: "<title>Acme</title><body>We process payments</body>", StatusCode: 200}, nil)

	text, err := New(f, 0).Extract(context.Background(), "https://acme.com")
	require.NoError(t, err)
	assert.Equal(t, "Acme We process payments", text)
	f.AssertExpectations(t)
}

func TestExtract_EmptyPage(t *testing.T) {
	f := &mockFetcher{}
	f.On("Fetch", mock.Anything, "https://empty.example").
		Return(&fetcher.Page{Body: "", StatusCode: 200}, nil)

	text, err := New(f, 100).Extract(context.Background(), "https://empty.example")
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestExtract_HTTPErrorIsFetchError(t *testing.T) {
	f := &mockFetcher{}
	f.On("Fetch", mock.Anything, "https://acme.com/gone").
		Return(nil, &resilience.StatusError{StatusCode: http.StatusNotFound, URL: "https://acme.com/gone"})

	_, err := New(f, 0).Extract(context.Background(), "https://acme.com/gone")
	require.Error(t, err)
	assert.Equal(t, apperr.KindFetch, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "HTTP 404")
}

func TestExtract_TransportErrorIsFetchError(t *testing.T) {
	f := &mockFetcher{}
	f.On("Fetch", mock.Anything, "https://down.example").
		Return(nil, errors.New("dial tcp: no such host"))

	_, err := New(f, 0).Extract(context.Background(), "https://down.example")
	require.Error(t, err)
	assert.Equal(t, apperr.KindFetch, apperr.KindOf(err))
}

func TestExtract_DeadlineIsTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	f := &mockFetcher{}
	f.On("Fetch", mock.Anything, "https://slow.example").
		Return(nil, ctx.Err())

	_, err := New(f, 0).Extract(ctx, "https://slow.example")
	require.Error(t, err)
	assert.Equal(t, apperr.KindTimeout, apperr.KindOf(err))
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		raw     string
		wantErr string
	}{
		{"https://acme.com", ""},
		{"http://acme.com/about?x=1", ""},
		{"", "website_url is required"},
		{"   ", "website_url is required"},
		{"acme.com", "Invalid URL format"},
		{"ftp://acme.com", "Invalid URL format"},
		{"https://", "Invalid URL format"},
		{"http://[::1", "Invalid URL format"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			err := ValidateURL(tt.raw)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}

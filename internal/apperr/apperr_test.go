package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestError_Message(t *testing.T) {
	assert.Equal(t, "industry is required", Validation("industry is required").Error())
	assert.Equal(t, "fetch page: boom", Wrap(KindFetch, errors.New("boom"), "fetch page").Error())
	assert.Equal(t, "boom", Wrap(KindParse, errors.New("boom"), "").Error())
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindParse, KindOf(Wrap(KindParse, errors.New("x"), "parse")))
	assert.Equal(t, KindNotFound, KindOf(fmt.Errorf("outer: %w", NotFound("brand not found"))))
	assert.Equal(t, KindUpstream, KindOf(errors.New("plain")))
	assert.True(t, Is(Validation("bad"), KindValidation))
	assert.False(t, Is(errors.New("plain"), KindValidation))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindValidation, http.StatusBadRequest},
		{KindNotFound, http.StatusNotFound},
		{KindTimeout, http.StatusGatewayTimeout},
		{KindFetch, http.StatusInternalServerError},
		{KindParse, http.StatusInternalServerError},
		{KindUpstream, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.kind))
		})
	}
}

func TestFromContext_Deadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	err := FromContext(ctx, KindUpstream, errors.New("request failed"), "score batch")
	assert.Equal(t, KindTimeout, err.Kind)
}

func TestFromContext_WrappedDeadline(t *testing.T) {
	err := FromContext(context.Background(), KindUpstream, fmt.Errorf("call: %w", context.DeadlineExceeded), "fetch")
	assert.Equal(t, KindTimeout, err.Kind)
}

func TestFromContext_Other(t *testing.T) {
	err := FromContext(context.Background(), KindUpstream, errors.New("connection refused"), "fetch brands")
	assert.Equal(t, KindUpstream, err.Kind)
}

func TestMessage(t *testing.T) {
	err := Wrap(KindUpstream, errors.New("pq: password authentication failed"), "failed to fetch brands")
	assert.Equal(t, "failed to fetch brands", Message(err, "internal error"))
	assert.Equal(t, "internal error", Message(errors.New("raw"), "internal error"))
	assert.Equal(t, "internal error", Message(Wrap(KindParse, errors.New("x"), ""), "internal error"))
}

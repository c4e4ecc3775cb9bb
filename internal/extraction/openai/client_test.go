package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kanaan7/NutritionTracker/internal"
)

func completion(content string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []any{map[string]any{"message": map[string]any{"role": "assistant", "content": content}}},
	})
	return string(b)
}

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	c := New(Options{BaseURL: srv.URL + "/v1/", APIKey: "sk-test", Model: "gpt-test", Temperature: 0.7, Timeout: 5 * time.Second}, internal.NopLogger())
	return c, &calls
}

func TestExtract_Success(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req chatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-test", req.Model)
		assert.InDelta(t, 0.7, req.Temperature, 1e-9)
		if !assert.Len(t, req.Messages, 2) {
			return
		}
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Contains(t, req.Messages[0].Content, "  - fiber\n")
		assert.Equal(t, "user", req.Messages[1].Role)
		assert.Equal(t, "two eggs", req.Messages[1].Content)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completion(`{"date":"2024-01-01","calories":150,"fiber":0,"tips":"nice"}`)))
	})

	res, err := c.Extract(context.Background(), "two eggs", []string{"calories", "fiber"})
	require.NoError(t, err)
	assert.Equal(t, internal.Fields{"calories": 150, "fiber": 0}, res.Fields)
	assert.Equal(t, "nice", res.Tips)
	assert.EqualValues(t, 1, atomic.LoadInt32(calls))
}

func TestExtract_MalformedContent(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(completion("I think that is about 300 calories.")))
	})

	res, err := c.Extract(context.Background(), "pizza", []string{"calories"})
	assert.Nil(t, res)
	var pe *internal.ExtractionParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "I think that is about 300 calories.", pe.Raw)
	assert.EqualValues(t, 1, atomic.LoadInt32(calls), "parse failures must not be retried")
}

func TestExtract_QuotaByStatus(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"Rate limit reached","type":"requests"}}`))
	})

	_, err := c.Extract(context.Background(), "pizza", []string{"calories"})
	assert.ErrorIs(t, err, internal.ErrQuotaExhausted)
	assert.EqualValues(t, 1, atomic.LoadInt32(calls))
}

func TestExtract_QuotaByCode(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"message":"You exceeded your current quota","type":"insufficient_quota","code":"insufficient_quota"}}`))
	})

	_, err := c.Extract(context.Background(), "pizza", []string{"calories"})
	assert.ErrorIs(t, err, internal.ErrQuotaExhausted)
}

func TestExtract_ServiceError(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom","code":null}}`))
	})

	_, err := c.Extract(context.Background(), "pizza", []string{"calories"})
	var se *internal.ExtractionServiceError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusInternalServerError, se.Status)
	assert.Contains(t, se.Error(), "boom")
	assert.False(t, errors.Is(err, internal.ErrQuotaExhausted))
	assert.EqualValues(t, 1, atomic.LoadInt32(calls))
}

func TestExtract_NoChoices(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})

	_, err := c.Extract(context.Background(), "pizza", []string{"calories"})
	var se *internal.ExtractionServiceError
	assert.True(t, errors.As(err, &se))
}

func TestExtract_ContextDeadline(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.Extract(ctx, "pizza", []string{"calories"})
	var se *internal.ExtractionServiceError
	require.True(t, errors.As(err, &se))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

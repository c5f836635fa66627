package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

type fakeSink struct {
	saved [][]json.RawMessage
	err   error
}

func (f *fakeSink) Append(_ context.Context, logs []json.RawMessage) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.saved = append(f.saved, logs)
	return len(logs), nil
}

func setupRouter(sink LogSink, limiter *rate.Limiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	New(sink, limiter).Register(r.Group("/api/monitoring"))
	return r
}

func post(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/monitoring/errors", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSaveErrors_Success(t *testing.T) {
	sink := &fakeSink{}
	r := setupRouter(sink, nil)

	w := post(r, `{"logs":[{"message":"boom","level":"error"},"plain text"]}`)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(2), body["saved"])
	require.Len(t, sink.saved, 1)
	assert.Len(t, sink.saved[0], 2)
}

func TestSaveErrors_EmptyArray(t *testing.T) {
	r := setupRouter(&fakeSink{}, nil)

	w := post(r, `{"logs":[]}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"saved":0}`, w.Body.String())
}

func TestSaveErrors_MalformedBody(t *testing.T) {
	cases := map[string]string{
		"not json":      `{logs`,
		"missing logs":  `{}`,
		"null logs":     `{"logs":null}`,
		"logs not list": `{"logs":"oops"}`,
		"top level arr": `[1,2]`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			sink := &fakeSink{}
			r := setupRouter(sink, nil)

			w := post(r, body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), `"error"`)
			assert.Empty(t, sink.saved)
		})
	}
}

func TestSaveErrors_SinkFailure(t *testing.T) {
	r := setupRouter(&fakeSink{err: errors.New("disk full")}, nil)

	w := post(r, `{"logs":[{"m":1}]}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "disk full")
}

func TestSaveErrors_RateLimited(t *testing.T) {
	r := setupRouter(&fakeSink{}, rate.NewLimiter(rate.Limit(0.001), 1))

	first := post(r, `{"logs":[]}`)
	second := post(r, `{"logs":[]}`)

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

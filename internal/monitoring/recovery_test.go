package monitoring

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReporter struct {
	reports []map[string]interface{}
}

func (f *fakeReporter) Report(_ context.Context, fields map[string]interface{}) error {
	f.reports = append(f.reports, fields)
	return nil
}

func TestRecovery_ReportsPanic(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reporter := &fakeReporter{}

	r := gin.New()
	r.Use(Recovery(reporter))
	r.GET("/boom", func(c *gin.Context) {
		panic("something broke")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())

	require.Len(t, reporter.reports, 1)
	report := reporter.reports[0]
	assert.Equal(t, "panic", report["type"])
	assert.Equal(t, "something broke", report["message"])
	assert.Equal(t, "/boom", report["path"])
	assert.Contains(t, report["stack"], "goroutine")
}

func TestRecovery_NoPanic(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reporter := &fakeReporter{}

	r := gin.New()
	r.Use(Recovery(reporter))
	r.GET("/ok", func(c *gin.Context) {
		c.String(http.StatusOK, "fine")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, reporter.reports)
}

package response

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/teamup-app/teamup-backend/internal/auth"
	"github.com/teamup-app/teamup-backend/internal/domain"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		err    error
		kind   string
		status int
	}{
		{auth.ErrMissingCredential, "Unauthenticated", http.StatusUnauthorized},
		{auth.ErrInvalidCredential, "Unauthenticated", http.StatusUnauthorized},
		{domain.ErrEventNotFound, "NotFound", http.StatusNotFound},
		{domain.ErrAlreadyMember, "AlreadyMember", http.StatusBadRequest},
		{domain.ErrNotAMember, "NotAMember", http.StatusBadRequest},
		{domain.ErrOrganizerCannotLeave, "OrganizerCannotLeave", http.StatusBadRequest},
		{domain.ErrEventFull, "EventFull", http.StatusBadRequest},
		{domain.ErrForbidden, "Forbidden", http.StatusForbidden},
		{domain.ErrServiceUnavailable, "ServiceUnavailable", http.StatusServiceUnavailable},
		{fmt.Errorf("join: %w", domain.ErrAlreadyMember), "AlreadyMember", http.StatusBadRequest},
		{errors.New("rpc error: code = Unavailable"), "Internal", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			got := Classify(tt.err)
			assert.Equal(t, tt.kind, got.Kind)
			assert.Equal(t, tt.status, got.Status)
			assert.NotEmpty(t, got.Message)
		})
	}
}

func TestRenderErr_HidesInternalDetail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/events/E1/join", nil)

	RenderErr(c, "events.join", errors.New("dial tcp 10.0.0.3:5432: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"code":"Internal","error":"internal server error"}`, w.Body.String())
	assert.True(t, c.IsAborted())
}

// Package response renders caller-visible errors as stable
// (kind, message, status) triples.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/teamup-app/teamup-backend/internal/auth"
	"github.com/teamup-app/teamup-backend/internal/domain"
	"github.com/teamup-app/teamup-backend/internal/logging"
)

// Err is the caller-visible form of an error.
type Err struct {
	Kind    string `json:"code"`
	Message string `json:"error"`
	Status  int    `json:"-"`
}

var (
	errUnauthenticated = Err{Kind: "Unauthenticated", Message: "missing or invalid credentials", Status: http.StatusUnauthorized}
	errInternal        = Err{Kind: "Internal", Message: "internal server error", Status: http.StatusInternalServerError}
)

var table = []struct {
	target error
	resp   Err
}{
	{auth.ErrMissingCredential, Err{"Unauthenticated", "missing authorization token", http.StatusUnauthorized}},
	{auth.ErrInvalidCredential, Err{"Unauthenticated", "invalid token", http.StatusUnauthorized}},
	{domain.ErrEventNotFound, Err{"NotFound", "event not found", http.StatusNotFound}},
	{domain.ErrUserNotFound, Err{"NotFound", "user not found", http.StatusNotFound}},
	{domain.ErrAlreadyMember, Err{"AlreadyMember", "you have already joined this event", http.StatusBadRequest}},
	{domain.ErrNotAMember, Err{"NotAMember", "you are not a participant of this event", http.StatusBadRequest}},
	{domain.ErrOrganizerCannotLeave, Err{"OrganizerCannotLeave", "the organizer cannot leave their own event", http.StatusBadRequest}},
	{domain.ErrEventFull, Err{"EventFull", "this event is full", http.StatusBadRequest}},
	{domain.ErrForbidden, Err{"Forbidden", "you can only update your own notification token", http.StatusForbidden}},
	{domain.ErrServiceUnavailable, Err{"ServiceUnavailable", "service temporarily unavailable", http.StatusServiceUnavailable}},
}

// Classify maps err to its caller-visible triple. Unknown errors are Internal.
func Classify(err error) Err {
	for _, row := range table {
		if errors.Is(err, row.target) {
			return row.resp
		}
	}
	return errInternal
}

// RenderErr writes the classified error and aborts the request. Internal
// errors are logged with their detail, which never reaches the caller.
func RenderErr(c *gin.Context, operation string, err error) {
	resp := Classify(err)
	if resp.Status >= http.StatusInternalServerError {
		logging.FromContext(c.Request.Context()).WithFields(logrus.Fields{
			"operation": operation,
			"status":    resp.Status,
		}).WithError(err).Error("request failed")
	}
	c.AbortWithStatusJSON(resp.Status, resp)
}

// BadRequest renders an input validation failure.
func BadRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, Err{Kind: "InvalidRequest", Message: message})
}

// Unauthenticated renders a missing identity on a protected route.
func Unauthenticated(c *gin.Context) {
	c.AbortWithStatusJSON(errUnauthenticated.Status, errUnauthenticated)
}

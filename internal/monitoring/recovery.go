package monitoring

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/teamup-app/teamup-backend/internal/logging"
)

type Reporter interface {
	Report(ctx context.Context, fields map[string]interface{}) error
}

// Recovery turns a handler panic into a 500 with a fixed body and reports
// the fault, with its stack, to the reporter.
func Recovery(reporter Reporter) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		stack := string(debug.Stack())
		ctx := c.Request.Context()
		log := logging.FromContext(ctx)

		log.WithField("panic", fmt.Sprint(recovered)).Error("handler panicked")

		if reporter != nil {
			err := reporter.Report(context.WithoutCancel(ctx), map[string]interface{}{
				"type":    "panic",
				"message": fmt.Sprint(recovered),
				"method":  c.Request.Method,
				"path":    c.Request.URL.Path,
				"stack":   stack,
			})
			if err != nil {
				log.WithError(err).Warn("failed to report panic")
			}
		}

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	})
}

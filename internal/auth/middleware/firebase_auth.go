package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/teamup-app/teamup-backend/internal/api/http/response"
	"github.com/teamup-app/teamup-backend/internal/auth"
	"github.com/teamup-app/teamup-backend/internal/logging"
)

// FirebaseAuthMiddleware validates Firebase ID tokens and stores the caller
// identity in the Gin context.
func FirebaseAuthMiddleware(verifier *auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := auth.BearerToken(c.GetHeader("Authorization"))

		identity, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			logging.FromContext(c.Request.Context()).WithFields(logrus.Fields{
				"operation": "auth.verify",
				"path":      c.Request.URL.Path,
			}).Debug(err.Error())
			response.RenderErr(c, "auth.verify", err)
			return
		}

		c.Set(auth.CtxFirebaseUID, identity.UID)
		if identity.Email != "" {
			c.Set(auth.CtxEmail, identity.Email)
		}

		c.Next()
	}
}

package middleware

import (
	"crypto/subtle"
	"net/http"

	"vestiaire_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// CSRFCookieName holds the anti-forgery token. Unlike the session cookie it
// is readable by the front-end, which echoes it back in CSRFHeaderName.
const (
	CSRFCookieName = "vestiaire_csrf"
	CSRFHeaderName = "X-CSRF-Token"
)

// CSRFMiddleware enforces the double-submit contract on unsafe methods:
// the token issued at login must come back both as the cookie and as the
// header, and the two must match. Safe methods pass through.
func CSRFMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		cookie, err := c.Cookie(CSRFCookieName)
		header := c.GetHeader(CSRFHeaderName)
		if err != nil || cookie == "" || header == "" ||
			subtle.ConstantTimeCompare([]byte(cookie), []byte(header)) != 1 {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeCSRF,
				"Jeton anti-CSRF manquant ou invalide", ""))
			return
		}
		c.Next()
	}
}

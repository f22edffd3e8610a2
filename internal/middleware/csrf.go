package middleware

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/e-terminus/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	csrfHeader     = "X-CSRF-Token"
	csrfCookieName = "csrf_token"
	csrfKeyPrefix  = "et:csrf:"
	csrfTTL        = time.Hour
)

// IssueCSRFToken mints a random token and stores it server-side.
// The caller sets it both as a cookie and in the response body (double submit).
func IssueCSRFToken(ctx context.Context, rdb *redis.Client) (string, error) {
	b := make([]byte, 20)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	token := hex.EncodeToString(b)
	if err := rdb.Set(ctx, csrfKeyPrefix+token, "1", csrfTTL).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// CSRF requires a known token in the X-CSRF-Token header matching the
// csrf_token cookie. Tokens are single use.
func CSRF(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(csrfHeader)
		if header == "" {
			response.Forbidden(c, "Missing CSRF token")
			return
		}
		cookie, err := c.Cookie(csrfCookieName)
		if err != nil || cookie != header {
			response.Forbidden(c, "Invalid CSRF token")
			return
		}

		ctx := c.Request.Context()
		n, err := rdb.Del(ctx, csrfKeyPrefix+header).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			response.InternalError(c)
			return
		}
		if n == 0 {
			response.Forbidden(c, "Invalid CSRF token")
			return
		}

		c.Next()
	}
}

// CSRFCookieName is exposed for the handler that sets the cookie.
func CSRFCookieName() string { return csrfCookieName }

package middleware

import (
	"errors"
	"strings"

	"github.com/e-terminus/core/internal/pkg/jwt"
	"github.com/e-terminus/core/internal/pkg/response"
	sessionpkg "github.com/e-terminus/core/internal/pkg/session"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	ContextKeyUserID = "user_id"
	ContextKeyEmail  = "user_email"
	ContextKeyRole   = "user_role"
	ContextKeySID    = "session_id"

	// AuthCookieName is the cookie the login handler sets.
	AuthCookieName = "auth_token"
)

// Auth returns a middleware that enforces authentication. When roles are
// given, the token's role must be one of them (403 otherwise). A valid
// signature alone is not enough: the backing session row must still be alive.
func Auth(db *gorm.DB, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := ValidateTokenClaims(db, ExtractToken(c))
		if err != nil {
			response.Unauthorized(c, unauthorizedMessage(err))
			return
		}
		if len(roles) > 0 && !roleAllowed(claims.Role, roles) {
			response.Forbidden(c, "Insufficient permissions")
			return
		}
		setIdentity(c, claims)
		c.Next()
	}
}

// OptionalAuth sets the identity if a valid token is present, but never blocks.
func OptionalAuth(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, err := ValidateTokenClaims(db, ExtractToken(c)); err == nil && claims.UserID != "" {
			setIdentity(c, claims)
		}
		c.Next()
	}
}

var errSessionRevoked = errors.New("session expired or revoked")

// ValidateTokenClaims verifies the JWT and its session liveness.
func ValidateTokenClaims(db *gorm.DB, rawToken string) (*jwt.Claims, error) {
	token := NormalizeToken(rawToken)
	if token == "" {
		return nil, errors.New("token is required")
	}

	claims, err := jwt.Parse(token)
	if err != nil {
		return nil, err
	}
	active, err := sessionpkg.IsActive(db, claims.UserID, claims.SessionID)
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, errSessionRevoked
	}
	return claims, nil
}

func setIdentity(c *gin.Context, claims *jwt.Claims) {
	c.Set(ContextKeyUserID, claims.UserID)
	c.Set(ContextKeyEmail, claims.Email)
	c.Set(ContextKeyRole, claims.Role)
	c.Set(ContextKeySID, claims.SessionID)
}

// CurrentUserID extracts the authenticated user ID from context.
func CurrentUserID(c *gin.Context) string {
	v, _ := c.Get(ContextKeyUserID)
	id, _ := v.(string)
	return id
}

// CurrentRole extracts the authenticated role from context.
func CurrentRole(c *gin.Context) string {
	v, _ := c.Get(ContextKeyRole)
	role, _ := v.(string)
	return role
}

// CurrentSessionID extracts the authenticated session ID from context.
func CurrentSessionID(c *gin.Context) string {
	v, _ := c.Get(ContextKeySID)
	id, _ := v.(string)
	return id
}

// IsAuthenticated returns true if the request carries a valid auth token.
func IsAuthenticated(c *gin.Context) bool {
	return CurrentUserID(c) != ""
}

// ExtractToken resolves the credential: Authorization header, then the auth
// cookie, then a query token.
func ExtractToken(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); auth != "" {
		return NormalizeToken(auth)
	}
	if raw, err := c.Cookie(AuthCookieName); err == nil {
		if token := NormalizeToken(raw); token != "" {
			return token
		}
	}
	return NormalizeToken(c.Query("token"))
}

// NormalizeToken trims spaces and strips an optional Bearer prefix.
func NormalizeToken(raw string) string {
	token := strings.TrimSpace(raw)
	if token == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		return strings.TrimSpace(token[7:])
	}
	return token
}

func roleAllowed(role string, allowed []string) bool {
	for _, r := range allowed {
		if role == r {
			return true
		}
	}
	return false
}

func unauthorizedMessage(err error) string {
	if errors.Is(err, errSessionRevoked) {
		return "Session expired or revoked"
	}
	return "Authentication required"
}

package auth

import (
	"html/template"
	"net/http"

	"github.com/e-terminus/core/internal/config"
	"github.com/e-terminus/core/internal/middleware"
	"github.com/gin-gonic/gin"
)

func setAuthTokenCookie(c *gin.Context, token string, maxAge int, cfg *config.AppConfig) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.AuthCookieName, token, maxAge, "/", cookieDomain(cfg), cookieSecure(cfg), true)
}

func clearAuthTokenCookie(c *gin.Context, cfg *config.AppConfig) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.AuthCookieName, "", -1, "/", cookieDomain(cfg), cookieSecure(cfg), true)
}

func setCSRFCookie(c *gin.Context, token string, cfg *config.AppConfig) {
	c.SetSameSite(http.SameSiteStrictMode)
	// Not http-only: the client echoes it back in the X-CSRF-Token header.
	c.SetCookie(middleware.CSRFCookieName(), token, 3600, "/", cookieDomain(cfg), cookieSecure(cfg), false)
}

func cookieDomain(cfg *config.AppConfig) string {
	if cfg == nil {
		return ""
	}
	return cfg.CookieDomain
}

func cookieSecure(cfg *config.AppConfig) bool {
	return cfg == nil || !cfg.IsDev()
}

var verifyPageTpl = template.Must(template.New("verify_page").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>E-Terminus</title></head>
<body style="font-family: sans-serif; max-width: 480px; margin: 80px auto; text-align: center;">
  <h1>E-Terminus</h1>
  <p>{{.Message}}</p>
</body>
</html>`))

func renderVerifyPage(c *gin.Context, status int, message string) {
	c.Status(status)
	c.Header("Content-Type", "text/html; charset=utf-8")
	_ = verifyPageTpl.Execute(c.Writer, gin.H{"Message": message})
}

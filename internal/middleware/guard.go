package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"financehub/portal/internal/session"
)

const (
	// PaginaEntrada is where unauthenticated visitors land.
	PaginaEntrada = "/"
	// PaginaDashboard is where authenticated visitors are sent from entry
	// pages.
	PaginaDashboard = "/portal/dashboard"
)

// tokenDaRequisicao extracts the bearer token from the session cookie or the
// Authorization header. A token whose JWT exp claim is parseable and already
// past counts as absent; the backend still has the final word on anything
// that passes.
func tokenDaRequisicao(c *gin.Context, cookieName string) string {
	token, err := c.Cookie(cookieName)
	if err != nil || token == "" {
		header := c.GetHeader("Authorization")
		if strings.HasPrefix(header, "Bearer ") {
			token = strings.TrimPrefix(header, "Bearer ")
		}
	}
	if token == "" {
		return ""
	}
	if expirado(token) {
		return ""
	}
	return token
}

func expirado(token string) bool {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		// Opaque tokens are not expirable locally.
		return false
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}

// GuardaPortal gates the portal page prefix: without a token the visitor is
// redirected to the entry page before any portal code runs. Token presence
// is all the page guards check; the backend rules on validity.
func GuardaPortal(cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenDaRequisicao(c, cookieName) == "" {
			c.Redirect(http.StatusTemporaryRedirect, PaginaEntrada)
			c.Abort()
			return
		}
		c.Next()
	}
}

// GuardaEntrada is the inverse guard for the entry pages: a visitor who
// already carries a token goes straight to the dashboard.
func GuardaEntrada(cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenDaRequisicao(c, cookieName) != "" {
			c.Redirect(http.StatusTemporaryRedirect, PaginaDashboard)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireSession protects the JSON API. The token must match the session
// store's current token; mismatches and absences get 401 rather than a
// redirect.
func RequireSession(sess *session.Store, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenDaRequisicao(c, cookieName)
		if token == "" || !sess.Authenticated() || token != sess.Token() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "sessão expirada"})
			return
		}
		c.Next()
	}
}

package handlers

import (
	"net/http"
	"strconv"
	"time"

	"proposalforge-backend/auth"

	"github.com/gin-gonic/gin"
)

const (
	sessionCookie = "auth_token"
	anonCookie    = "anon_generations"

	anonCookieTTL = 365 * 24 * time.Hour
)

func setSessionCookie(c *gin.Context, token string, secure bool) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(sessionCookie, token, int(auth.SessionTTL.Seconds()), "/", "", secure, true)
}

func clearSessionCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(sessionCookie, "", -1, "/", "", secure, true)
}

// anonCount reads the anonymous generation counter. A missing or malformed
// cookie counts as zero.
func anonCount(c *gin.Context) int {
	v, err := c.Cookie(anonCookie)
	if err != nil {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func setAnonCount(c *gin.Context, count int, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(anonCookie, strconv.Itoa(count), int(anonCookieTTL.Seconds()), "/", "", secure, true)
}

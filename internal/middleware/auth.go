package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// APIKeyHeader carries the shared key of the upload API
const APIKeyHeader = "X-Internal-API-Key"

// APIKeyAuth admits requests presenting apiKey either in the X-Internal-API-Key
// header or as an Authorization bearer token. An empty apiKey rejects every
// request with 500.
func APIKeyAuth(apiKey string) gin.HandlerFunc {
	want := []byte(apiKey)

	return func(c *gin.Context) {
		if len(want) == 0 {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "api key not configured"})
			return
		}

		got := presentedKey(c.Request)
		if subtle.ConstantTimeCompare([]byte(got), want) != 1 {
			log.Debug().Str("ip", c.ClientIP()).Bool("key_present", got != "").Msg("Rejected request")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

func presentedKey(r *http.Request) string {
	if key := r.Header.Get(APIKeyHeader); key != "" {
		return key
	}
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}
	return ""
}

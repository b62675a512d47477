package server

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// QuoteRateLimit throttles quote endpoints per caller. A Redis outage
// fails open so pricing stays available without the limiter.
func (s *Server) QuoteRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.quoteLimiter.Enabled() {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		endpoint := c.FullPath()

		allowed, err := s.quoteLimiter.AllowClient(ctx, clientKey(c))
		if err != nil {
			s.obsMetrics.RecordRateLimitAllowed(ctx, endpoint)
			c.Next()
			return
		}
		if !allowed {
			s.obsMetrics.RecordRateLimitDenied(ctx, endpoint, "client_bucket")
			AbortWithError(c, ErrTooManyRequests)
			return
		}

		s.obsMetrics.RecordRateLimitAllowed(ctx, endpoint)
		c.Next()
	}
}

func clientKey(c *gin.Context) string {
	if id := strings.TrimSpace(c.GetHeader("X-Client-Id")); id != "" {
		return id
	}
	return c.ClientIP()
}

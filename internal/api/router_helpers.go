package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/clustermail/topicd/internal/middleware"
)

// maxUserLength bounds the user_email query parameter.
const maxUserLength = 320

// maxRecentLimit caps the recent-emails page size.
const maxRecentLimit = 500

// getUser extracts and validates the user_email query parameter. On a
// missing or oversized value it writes the error response and returns "".
func getUser(c *gin.Context) string {
	user := strings.TrimSpace(c.Query("user_email"))

	if user == "" {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "user_email is required")

		return ""
	}

	if len(user) > maxUserLength {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "user_email exceeds maximum length")

		return ""
	}

	return user
}

// parseLimit parses a positive limit, returning 0 (service default) on junk
// and capping oversized values.
func parseLimit(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 {
		return 0
	}

	if v > maxRecentLimit {
		return maxRecentLimit
	}

	return v
}

func ginLogger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		fields := logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
			"client":   c.ClientIP(),
		}
		if rid, exists := c.Get(middleware.RequestIDKey); exists {
			fields["request_id"] = rid
		}
		log.WithFields(fields).Info("request")
	}
}

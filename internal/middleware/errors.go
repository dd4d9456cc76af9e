package middleware

import "github.com/gin-gonic/gin"

// respondError writes the same JSON error shape the API handlers use and
// aborts the request.
func respondError(c *gin.Context, status int, code, message string) {
	resp := map[string]string{
		"code":    code,
		"message": message,
	}

	if rid, exists := c.Get(RequestIDKey); exists {
		if s, ok := rid.(string); ok && s != "" {
			resp["request_id"] = s
		}
	}

	c.AbortWithStatusJSON(status, resp)
}

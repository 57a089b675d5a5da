// Package respond holds the error envelope every endpoint shares:
// {"error": <short message>, "details": <longer diagnostic, optional>}.
// Prompt text and stack traces never reach a response.
package respond

import (
	"github.com/gin-gonic/gin"
)

// Error writes the shared error envelope and aborts the request.
func Error(c *gin.Context, status int, message string, err error) {
	body := gin.H{"error": message}
	if err != nil {
		body["details"] = err.Error()
	}
	c.AbortWithStatusJSON(status, body)
}

// NotConfigured is the 503 variant for features whose provider credential
// is absent.
func NotConfigured(c *gin.Context, message string) {
	Error(c, 503, message, nil)
}

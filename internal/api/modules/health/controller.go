package health

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Return status of the API and the configured model name
func getStatus(model string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"ok":    true,
			"model": model,
		})
	}
}

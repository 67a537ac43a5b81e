package middlewares

import (
	"log"

	"github.com/gin-gonic/gin"
)

// RespondJSON writes a JSON response with the given status.
func RespondJSON(c *gin.Context, data interface{}, status int) {
	c.JSON(status, data)
}

// HttpError logs the underlying error and writes only the public
// message to the client. Storage and infra details stay in the logs.
func HttpError(c *gin.Context, message string, status int, err error) {
	log.Printf("HTTP %d %s %s - %s: %v", status, c.Request.Method, c.Request.URL.Path, message, err)
	c.JSON(status, gin.H{"error": message})
}

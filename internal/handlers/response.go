package handlers

import "github.com/gin-gonic/gin"

// writeSuccess writes the standard success envelope
func writeSuccess(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"status": "success",
		"data":   data,
	})
}

// writeError writes the standard error envelope. Internal error text
// never travels here; callers pass a safe message.
func writeError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"status": "error",
		"error":  message,
	})
}

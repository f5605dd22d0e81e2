package utils

import "github.com/gin-gonic/gin"

func RespondWithError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "msg": msg})
}

// RespondWithData writes a success envelope. msg is omitted when empty.
func RespondWithData(c *gin.Context, status int, msg string, data interface{}) {
	body := gin.H{"success": true}
	if msg != "" {
		body["msg"] = msg
	}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}

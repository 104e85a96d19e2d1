package utils

import (
	"github.com/gin-gonic/gin"
)

// RespondWithError aborts the request with {"detail": detail}.
func RespondWithError(c *gin.Context, status int, detail any) {
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}

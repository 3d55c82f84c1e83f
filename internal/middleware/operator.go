package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

const operatorKeyHeader = "X-Operator-Key"

// OperatorKey admits requests carrying apiKey in the X-Operator-Key header.
func OperatorKey(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		given := c.GetHeader(operatorKeyHeader)
		if apiKey == "" || subtle.ConstantTimeCompare([]byte(given), []byte(apiKey)) != 1 {
			abort(c, http.StatusUnauthorized, "invalid operator key")
			return
		}
		c.Next()
	}
}

package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
)

// TransactionAttributes tags the New Relic transaction started by nrgin with
// the authenticated actor. It is a no-op when no transaction is running.
func TransactionAttributes() gin.HandlerFunc {
	return func(c *gin.Context) {
		txn := nrgin.Transaction(c)
		if txn != nil {
			if profile := ProfileFrom(c); profile != nil {
				txn.AddAttribute("actor.id", profile.ID)
				txn.AddAttribute("actor.role", string(profile.Role))
			}
		}

		c.Next()

		if txn != nil {
			for _, err := range c.Errors {
				txn.NoticeError(err.Err)
			}
		}
	}
}

package router

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gimenezlucas594-sudo/stocking-app/pkg/global"
)

// AuthTokenMiddleware extracts the bearer token for pass-through to the
// backend. The engine never validates it; the backend is the authority.
func AuthTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.JSON(http.StatusUnauthorized, global.ErrorResponse("Authorization required", []global.ValidationError{
				{Field: "authorization", Message: "Bearer token is required", Code: "required"},
			}))
			c.Abort()
			return
		}

		c.Set("token", token)
		c.Next()
	}
}

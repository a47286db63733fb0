package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// apikeyAuthentication only lets requests with the given Api-Token pass.
// An empty key closes the route.
func (s *Server) apikeyAuthentication(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiToken := c.GetHeader("Api-Token")
		if key == "" || apiToken == "" || apiToken != key {
			abortWithEncoding(c, http.StatusForbidden, errorInvalidAPIToken)
			return
		}
		c.Next()
	}
}

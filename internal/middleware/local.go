package middleware

import (
	"net"      // IP and address parsing
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework
)

// LocalOnlyMiddleware rejects requests that did not reach the internal listener on port
// directly from the loopback interface. Requests relayed by a reverse proxy are refused
// even though the proxy connects from loopback. The chat bot runs next to the API and
// is the only caller of these routes.
func LocalOnlyMiddleware(port string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !isLocal(c, port) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Local requests only"})
			return
		}
		c.Next()
	}
}

func isLocal(c *gin.Context, port string) bool {
	ip := net.ParseIP(c.RemoteIP()) // Direct peer address
	if ip == nil || !ip.IsLoopback() {
		return false
	}
	if c.ClientIP() != c.RemoteIP() {
		return false // Forwarded by a trusted proxy
	}
	addr, ok := c.Request.Context().Value(http.LocalAddrContextKey).(net.Addr)
	if !ok {
		return false
	}
	_, localPort, err := net.SplitHostPort(addr.String())
	return err == nil && localPort == port
}

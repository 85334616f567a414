package server

import (
	"fmt"
	"io"

	"github.com/gin-gonic/gin"
)

// Header values added to every response. The server is meant for local
// development only, so CORS is fully open and nothing is cached.
const (
	AllowOrigin  = "*"
	CacheControl = "no-cache, no-store, must-revalidate"
)

// HeadersMiddleware sets the CORS and no-cache headers before any handler
// writes, so they appear on files, redirects and errors alike.
func HeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", AllowOrigin)
		c.Header("Cache-Control", CacheControl)
		c.Next()
	}
}

// RequestLogger writes one line per request to out:
//
//	[19/Oct/2026 14:03:07] GET /js/game.js HTTP/1.1 200
func RequestLogger(out io.Writer) gin.HandlerFunc {
	return gin.LoggerWithConfig(gin.LoggerConfig{
		Output: out,
		Formatter: func(p gin.LogFormatterParams) string {
			return fmt.Sprintf("[%s] %s %s %s %d\n",
				p.TimeStamp.Format("02/Jan/2006 15:04:05"),
				p.Method, p.Path, p.Request.Proto, p.StatusCode)
		},
	})
}

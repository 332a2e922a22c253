package middleware

import (
	"log/slog"
	"net/http"

	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/handler/httperr"

	"github.com/gin-gonic/gin"
)

// ErrorHandler writes the last public error if the handler left the response empty.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}
		for i := len(c.Errors) - 1; i >= 0; i-- {
			err := c.Errors[i]
			if !err.IsType(gin.ErrorTypePublic) {
				continue
			}
			if resp, ok := err.Meta.(httperr.Response); ok {
				c.JSON(resp.Status, resp)
				return
			}
		}
		if status := c.Writer.Status(); status != http.StatusOK {
			c.Status(status)
			c.Writer.WriteHeaderNow()
			return
		}
		if len(c.Errors) > 0 {
			c.JSON(http.StatusInternalServerError, httperr.New(c, http.StatusInternalServerError, "Internal server error", nil))
		}
	}
}

func CustomRecovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				slog.Error("recovered from panic",
					"error", err,
					"path", c.Request.URL.Path,
					"request_id", GetRequestID(c),
				)

				c.AbortWithStatusJSON(http.StatusInternalServerError,
					httperr.New(c, http.StatusInternalServerError, "Internal server error", nil))
			}
		}()
		c.Next()
	}
}

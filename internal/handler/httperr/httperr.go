package httperr

import (
	"github.com/gin-gonic/gin"
)

// set by the request logging middleware
const requestIDKey = "request_id"

type Response struct {
	Status int `json:"-"`
	Error  struct {
		Message string `json:"message"`
	} `json:"error"`
	Detail    any    `json:"detail,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// New builds the body without aborting; middleware that writes its own status uses it.
func New(c *gin.Context, status int, msg string, detail any) Response {
	resp := Response{Status: status, Detail: detail, RequestID: c.GetString(requestIDKey)}
	resp.Error.Message = msg
	return resp
}

// AbortWithError records err on the context for the logger and writes the public body.
func AbortWithError(c *gin.Context, status int, err error, msg string, detail any) {
	if err == nil {
		panic("AbortWithError: err cannot be nil")
	}

	resp := New(c, status, msg, detail)
	_ = c.Error(gin.Error{
		Err:  err,
		Type: gin.ErrorTypePublic,
		Meta: resp,
	})
	c.AbortWithStatusJSON(status, resp)
}

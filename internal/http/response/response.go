package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/roadmap-backend/internal/platform/apierr"
)

// ErrorBody is the single error shape of the API: a user-facing message
// plus a stable machine code.
type ErrorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorBody{Error: msg, Code: code})
}

// RespondAPIError writes err with the status and user-facing message of its
// *apierr.Error, or as a generic 500.
func RespondAPIError(c *gin.Context, err error) {
	ae := apierr.From(err)
	if ae == nil {
		RespondError(c, http.StatusInternalServerError, "internal", nil)
		return
	}
	if ae.Status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	RespondError(c, ae.Status, ae.Code, ae)
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

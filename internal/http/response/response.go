package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/skillquest-backend/internal/platform/apierr"
	"github.com/yungbote/skillquest-backend/internal/platform/ctxutil"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	// Fields carries per-field messages for 422 responses.
	Fields map[string]string `json:"fields,omitempty"`
	// RequestID is set on 5xx responses so clients can quote it.
	RequestID string `json:"request_id,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = apierr.MessageOf(err)
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondErr maps err to its status and code and writes the error envelope.
// 5xx causes are recorded on the gin context for the request logger.
func RespondErr(c *gin.Context, err error) {
	status, code := apierr.StatusOf(err)
	env := ErrorEnvelope{Error: APIError{Message: apierr.MessageOf(err), Code: code}}
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		env.Error.RequestID = ctxutil.RequestID(c.Request.Context())
	}
	var fe *FieldErrors
	if asFieldErrors(err, &fe) {
		env.Error.Fields = fe.Fields
	}
	c.AbortWithStatusJSON(status, env)
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

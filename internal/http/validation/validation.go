package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	types "github.com/yungbote/skillquest-backend/internal/domain"
	"github.com/yungbote/skillquest-backend/internal/http/response"
	"github.com/yungbote/skillquest-backend/internal/platform/apierr"
)

var registerOnce sync.Once

// Register installs the JSON tag name func and the custom enum tags on gin's
// validator engine. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(jsonFieldName)
		_ = v.RegisterValidation("learning_speed", func(fl validator.FieldLevel) bool {
			return types.LearningSpeed(strings.ToLower(fl.Field().String())).Valid()
		})
		_ = v.RegisterValidation("learning_style", func(fl validator.FieldLevel) bool {
			return types.LearningStyle(strings.ToLower(fl.Field().String())).Valid()
		})
	})
}

// BindJSON decodes the request body into dst and validates its binding tags.
// Malformed bodies are 400 invalid_request; tag failures are 422 with
// per-field messages.
func BindJSON(c *gin.Context, dst any) error {
	Register()
	if err := c.ShouldBindJSON(dst); err != nil {
		return translate(err)
	}
	return nil
}

func translate(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fieldMessage(fe)
		}
		return response.NewFieldErrors(fields)
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, io.EOF):
		return apierr.Validation("invalid_request", "Request body is required")
	case errors.As(err, &syntaxErr):
		return apierr.Validation("invalid_request", "Request body is not valid JSON")
	case errors.As(err, &typeErr):
		return apierr.Validation("invalid_request", fmt.Sprintf("Field %s has the wrong type", typeErr.Field))
	}
	return apierr.Validation("invalid_request", err.Error())
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "min":
		return fmt.Sprintf("Must be at least %s.", fe.Param())
	case "max":
		return fmt.Sprintf("Must be at most %s.", fe.Param())
	case "gte":
		return fmt.Sprintf("Must be greater than or equal to %s.", fe.Param())
	case "lte":
		return fmt.Sprintf("Must be less than or equal to %s.", fe.Param())
	case "learning_speed":
		return "Must be one of slow, medium, fast."
	case "learning_style":
		return "Must be one of visual, practical, theoretical."
	}
	return fmt.Sprintf("Failed %s validation.", fe.Tag())
}

func jsonFieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

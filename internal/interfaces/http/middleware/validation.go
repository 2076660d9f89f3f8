package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/dropship/backend/internal/infrastructure/logger"
	"github.com/dropship/backend/internal/interfaces/http/dto"
)

// ruleMessages are the client-facing texts for the binding tags used by request DTOs.
// %s is replaced by the tag parameter.
var ruleMessages = map[string]string{
	"required": "This field is required",
	"email":    "Invalid email format",
	"uuid":     "Invalid UUID format",
	"url":      "Invalid URL format",
	"oneof":    "Must be one of: %s",
	"gt":       "Must be greater than %s",
	"unique":   "Must not contain duplicate values",
	"dive":     "Invalid list element",
}

// SetupValidator makes field errors carry the JSON (or query) name clients sent
func SetupValidator() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(requestFieldName)
	}
}

func requestFieldName(field reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name, _, _ := strings.Cut(field.Tag.Get(tag), ",")
		switch name {
		case "-":
			return ""
		case "":
			continue
		default:
			return name
		}
	}
	return ""
}

// FormatValidationErrors turns a bind error into the 400 body.
// Errors that are not field violations, such as broken JSON, are reported without details.
func FormatValidationErrors(err error, requestID string) dto.Response {
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return dto.NewValidationErrorResponse("Malformed request body", requestID, nil)
	}
	details := make([]dto.ValidationDetail, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		details = append(details, dto.ValidationDetail{Field: fe.Field(), Message: ruleMessage(fe)})
	}
	return dto.NewValidationErrorResponse("Request validation failed", requestID, details)
}

// HandleValidationError aborts the request with a 400 describing err
func HandleValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, FormatValidationErrors(err, logger.GetRequestID(c.Request.Context())))
}

func ruleMessage(fe validator.FieldError) string {
	if fe.Tag() == "min" || fe.Tag() == "max" {
		return boundMessage(fe)
	}
	msg, ok := ruleMessages[fe.Tag()]
	if !ok {
		return "Invalid value"
	}
	if strings.Contains(msg, "%s") {
		return fmt.Sprintf(msg, fe.Param())
	}
	return msg
}

// boundMessage words min and max by what is bounded: characters, list entries or the value itself
func boundMessage(fe validator.FieldError) string {
	word := "at least"
	if fe.Tag() == "max" {
		word = "at most"
	}
	switch fe.Kind() {
	case reflect.String:
		return fmt.Sprintf("Must be %s %s characters", word, fe.Param())
	case reflect.Slice, reflect.Array, reflect.Map:
		return fmt.Sprintf("Must contain %s %s entries", word, fe.Param())
	default:
		return fmt.Sprintf("Must be %s %s", word, fe.Param())
	}
}

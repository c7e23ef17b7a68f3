package handlers

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
)

type quantityRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

type fieldRequest struct {
	Field string `json:"field" validate:"required"`
	Value string `json:"value"`
}

type deliveryRequest struct {
	Method string `json:"method" validate:"required,oneof=courier pickup"`
}

// newRequestValidator reports request fields by their JSON names.
func newRequestValidator() *validatorv10.Validate {
	v := validatorv10.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// BindAndValidate binds the JSON body into out and validates it. On failure
// it writes a 400 and returns the error so the handler can stop.
func (h *Handler) BindAndValidate(c *gin.Context, out any) error {
	if err := c.ShouldBindJSON(out); err != nil {
		h.respond(c, http.StatusBadRequest, gin.H{
			"error": "invalid_request_body",
			"msg":   err.Error(),
		})
		return err
	}

	if err := h.validate.Struct(out); err != nil {
		h.respond(c, http.StatusBadRequest, gin.H{
			"error":  "validation_failed",
			"fields": validationErrorsToMap(err),
		})
		return err
	}
	return nil
}

func validationErrorsToMap(err error) map[string]string {
	out := map[string]string{}
	var ve validatorv10.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			out[fe.Field()] = fe.Tag()
		}
	} else {
		out["error"] = err.Error()
	}
	return out
}

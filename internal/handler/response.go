package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"haul/internal/repository"
	"haul/internal/service"
)

const unavailableMessage = "service temporarily unavailable, please retry"

// Response is the envelope of every API response.
type Response struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Data    any      `json:"data,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

// PageResponse is the data of a listing response.
type PageResponse[T any] struct {
	Items      []T  `json:"items"`
	NextOffset int  `json:"next_offset"`
	HasMore    bool `json:"has_more"`
}

func toPage[S, T any](page *service.ResultPage[S], convert func(S) T) PageResponse[T] {
	items := make([]T, 0, len(page.Items))
	for _, item := range page.Items {
		items = append(items, convert(item))
	}
	return PageResponse[T]{Items: items, NextOffset: page.NextOffset, HasMore: page.HasMore}
}

// respondJSON sends a successful envelope with the given status code.
func respondJSON(c *gin.Context, code int, message string, data any) {
	c.JSON(code, Response{Success: true, Message: message, Data: data})
}

// respondError sends an error envelope with the status code matching err.
func respondError(c *gin.Context, log logrus.FieldLogger, err error) {
	code := mapErrorToHTTPStatus(err)
	message := err.Error()
	switch code {
	case http.StatusServiceUnavailable:
		log.WithError(err).Warn("store unavailable")
		message = unavailableMessage
	case http.StatusInternalServerError:
		log.WithError(err).Error("request failed")
		_ = c.Error(err)
		message = "internal server error"
	}
	c.JSON(code, Response{Success: false, Message: message})
}

// respondBindError reports a malformed or invalid request body.
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Message: "invalid request",
			Errors:  formatValidationErrors(verrs),
		})
		return
	}
	c.JSON(http.StatusBadRequest, Response{Success: false, Message: "invalid request body"})
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest

	// Insufficient funds is a rejected request, not a state conflict.
	case errors.Is(err, service.ErrInsufficientFunds):
		return http.StatusBadRequest

	case errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized

	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden

	case errors.Is(err, service.ErrNotFound),
		errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict

	case errors.Is(err, service.ErrStoreUnavailable),
		errors.Is(err, repository.ErrUnavailable):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

func formatValidationErrors(verrs validator.ValidationErrors) []string {
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		field := e.Field()
		switch e.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "oneof":
			msgs = append(msgs, field+" must be one of "+e.Param())
		case "max":
			msgs = append(msgs, field+" must have maximum length "+e.Param())
		default:
			msgs = append(msgs, field+" is invalid ("+e.Tag()+")")
		}
	}
	return msgs
}

var registerOnce sync.Once

// RegisterValidatorTags makes validation messages name fields by their JSON
// names.
func RegisterValidatorTags() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
	})
}

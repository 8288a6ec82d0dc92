package api

import (
	"encoding/json"
	"errors"
	"io"
	"reflect"
	"strconv"

	"github.com/gin-gonic/gin"

	"silant-backend/internal/apperr"
	"silant-backend/internal/service"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	svc         *service.Service
	pageSize    int
	maxPageSize int
}

// NewHandler creates a new API handler.
func NewHandler(svc *service.Service, pageSize, maxPageSize int) *Handler {
	if pageSize <= 0 {
		pageSize = 10
	}
	if maxPageSize < pageSize {
		maxPageSize = pageSize
	}
	return &Handler{
		svc:         svc,
		pageSize:    pageSize,
		maxPageSize: maxPageSize,
	}
}

// pathID parses the :id segment. A malformed id matches nothing.
func pathID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.NotFound()
	}
	return uint(id), nil
}

// bindJSON decodes a write payload. An empty body decodes to no fields. A
// value of the wrong JSON type is a field error on that field.
func bindJSON(c *gin.Context, dst any) error {
	err := c.ShouldBindJSON(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		if typeErr.Field == "" {
			return apperr.Validation(apperr.Fields{
				apperr.NonFieldKey: {"Invalid data. Expected a dictionary, but got " + typeErr.Value + "."},
			})
		}
		return apperr.Validation(apperr.Fields{typeErr.Field: {typeMismatchMessage(typeErr.Type)}})
	}
	return apperr.BadRequest("JSON parse error - "+err.Error(), err)
}

func typeMismatchMessage(t reflect.Type) string {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "Invalid value."
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "A valid integer is required."
	case reflect.String:
		return "Not a valid string."
	case reflect.Bool:
		return "Must be a valid boolean."
	default:
		return "Invalid value."
	}
}

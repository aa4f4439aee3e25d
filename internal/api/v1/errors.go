package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"nutriplan/internal/importer"
	"nutriplan/internal/model"
	"nutriplan/internal/narrative"
	"nutriplan/internal/parser"
)

// statusForError 领域错误到 HTTP 状态码的映射
func statusForError(err error) int {
	var (
		schemaErr   *model.SchemaError
		recordErr   *model.RecordError
		quantityErr *model.InvalidQuantityError
		foodErr     *model.UnknownFoodError
		profileErr  *model.UnknownProfileError
	)
	switch {
	case errors.As(err, &schemaErr),
		errors.As(err, &recordErr),
		errors.As(err, &quantityErr),
		errors.Is(err, parser.ErrUnsupportedFormat),
		errors.Is(err, parser.ErrEmptyTable),
		errors.Is(err, importer.ErrUnknownSheet):
		return http.StatusBadRequest
	case errors.As(err, &foodErr), errors.As(err, &profileErr):
		return http.StatusNotFound
	case errors.Is(err, importer.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, narrative.ErrNotConfigured):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	c.JSON(statusForError(err), gin.H{"error": err.Error()})
}

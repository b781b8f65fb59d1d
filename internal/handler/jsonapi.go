package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"webapi-relay/internal/service"
	"webapi-relay/internal/stream"
)

// JSONAPIHandler serves /json_api.
type JSONAPIHandler struct {
	logger  *slog.Logger
	marshal func(any) ([]byte, error)
}

// NewJSONAPIHandler creates a JSONAPIHandler.
func NewJSONAPIHandler(logger *slog.Logger) *JSONAPIHandler {
	return &JSONAPIHandler{
		logger:  logger.With("component", "json_api_handler"),
		marshal: json.Marshal,
	}
}

// Mutate reads the whole request body, sets "test" to "test_value" and
// echoes the document back. Any failure is returned without a response.
func (h *JSONAPIHandler) Mutate(c echo.Context) error {
	body := stream.New(c.Request().Body)

	data, err := body.ReadAll()
	if err != nil {
		return fmt.Errorf("json api: %w", err)
	}

	out, err := service.MutateDocument(data)
	if err != nil {
		return fmt.Errorf("json api: %w", err)
	}

	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, out)
}

// List returns ["foo","bar"]. A serialization failure is answered with a
// plain 500 rather than returned.
func (h *JSONAPIHandler) List(c echo.Context) error {
	out, err := service.ListDocument(h.marshal)
	if err != nil {
		h.logger.Error("serialize list", "err", err)
		return writeRaw(c, http.StatusInternalServerError, internalServerErrorBody)
	}
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, out)
}

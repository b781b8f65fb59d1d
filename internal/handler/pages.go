package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

var (
	indexBody               = []byte(`<a href="test.html">test.html</a>`)
	notFoundBody            = []byte("Not Found")
	internalServerErrorBody = []byte("Internal Server Error")
)

// PageHandler serves the static index and not-found responses.
type PageHandler struct{}

// NewPageHandler creates a PageHandler.
func NewPageHandler() *PageHandler {
	return &PageHandler{}
}

// Index serves the link to the relay route.
func (h *PageHandler) Index(c echo.Context) error {
	return writeRaw(c, http.StatusOK, indexBody)
}

// NotFound answers every request outside the dispatch table.
func (h *PageHandler) NotFound(c echo.Context) error {
	return writeRaw(c, http.StatusNotFound, notFoundBody)
}

// writeRaw writes body with no Content-Type header. Setting the header key
// to nil stops net/http from sniffing one.
func writeRaw(c echo.Context, code int, body []byte) error {
	res := c.Response()
	res.Header()[echo.HeaderContentType] = nil
	res.WriteHeader(code)
	_, err := res.Write(body)
	return err
}

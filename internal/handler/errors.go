package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
)

// NewErrorHandler returns the echo error handler for the service.
//
// *echo.HTTPError values, produced by middleware such as the body limit
// and rate limiter, get echo's default response. Every other handler error
// is logged and the connection is aborted without a response: route
// handlers have no error body of their own, so a client sees the request
// fail rather than a synthesized 500.
func NewErrorHandler(e *echo.Echo, logger *slog.Logger) echo.HTTPErrorHandler {
	logger = logger.With("component", "error_handler")

	return func(err error, c echo.Context) {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			e.DefaultHTTPErrorHandler(err, c)
			return
		}

		req := c.Request()
		logger.Error("request failed",
			"err", err,
			"method", req.Method,
			"path", req.URL.Path,
			"committed", c.Response().Committed,
		)
		panic(http.ErrAbortHandler)
	}
}

package handler

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes mounts the dispatch table on the Echo instance. Every
// method and path reaches the Router, so unknown combinations get the
// service's own 404 rather than echo's 404/405 responses. Any covers the
// standard methods; RouteNotFound catches the rest.
func RegisterRoutes(e *echo.Echo, router *Router) {
	for _, path := range []string{"/", "/*"} {
		e.Any(path, router.Dispatch)
		e.RouteNotFound(path, router.Dispatch)
	}
}

package handler

import (
	"net/http"
	"slices"

	"github.com/labstack/echo/v4"
)

// Route maps a method and a set of exact paths to one handler.
type Route struct {
	Method  string
	Paths   []string
	Handler echo.HandlerFunc
}

// Router dispatches requests through an ordered route table. The first
// matching route wins; requests matching none go to the not-found handler.
type Router struct {
	routes   []Route
	notFound echo.HandlerFunc
}

// NewRouter builds the dispatch table for the service.
func NewRouter(pages *PageHandler, relay *RelayHandler, api *JSONAPIHandler) *Router {
	return &Router{
		routes: []Route{
			{Method: http.MethodGet, Paths: []string{"/", "/index.html"}, Handler: pages.Index},
			{Method: http.MethodGet, Paths: []string{"/test.html"}, Handler: relay.Handle},
			{Method: http.MethodPost, Paths: []string{"/json_api"}, Handler: api.Mutate},
			{Method: http.MethodGet, Paths: []string{"/json_api"}, Handler: api.List},
		},
		notFound: pages.NotFound,
	}
}

// Match returns the handler for method and path. It performs no I/O.
func (r *Router) Match(method, path string) echo.HandlerFunc {
	for _, route := range r.routes {
		if route.Method == method && slices.Contains(route.Paths, path) {
			return route.Handler
		}
	}
	return r.notFound
}

// Dispatch invokes the matched handler once and returns its error unchanged.
func (r *Router) Dispatch(c echo.Context) error {
	req := c.Request()
	return r.Match(req.Method, req.URL.Path)(c)
}

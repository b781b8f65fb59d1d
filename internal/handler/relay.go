package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"webapi-relay/internal/service"
)

// RelayHandler serves GET /test.html by relaying the upstream call's body.
type RelayHandler struct {
	service *service.RelayService
	logger  *slog.Logger
}

// NewRelayHandler creates a RelayHandler.
func NewRelayHandler(svc *service.RelayService, logger *slog.Logger) *RelayHandler {
	return &RelayHandler{
		service: svc,
		logger:  logger.With("component", "relay_handler"),
	}
}

// Handle opens the upstream call and streams each transformed chunk to the
// client as soon as it is produced, flushing after every chunk.
//
// A failure before the upstream headers arrive is returned to the caller.
// Once the 200 status is sent, a failed upstream read or an undecodable
// chunk is returned too; the error handler then aborts the connection so
// the client sees a truncated body instead of a clean end of stream.
func (h *RelayHandler) Handle(c echo.Context) error {
	relay, err := h.service.Open(c.Request().Context())
	if err != nil {
		return fmt.Errorf("relay %s: %w", c.Request().URL.Path, err)
	}
	defer func() { _ = relay.Close() }()

	res := c.Response()
	res.Header()[echo.HeaderContentType] = nil
	res.WriteHeader(http.StatusOK)
	res.Flush()

	chunks := 0
	for chunk, err := range relay.Chunks() {
		if err != nil {
			return fmt.Errorf("relay aborted after %d chunks (upstream status %d): %w",
				chunks, relay.UpstreamStatus, err)
		}
		if _, err := res.Write(chunk); err != nil {
			// Client went away; nothing left to deliver.
			h.logger.Debug("client write failed", "err", err, "chunks", chunks)
			return nil
		}
		res.Flush()
		chunks++
	}

	h.logger.Debug("relay complete",
		"chunks", chunks,
		"upstream_status", relay.UpstreamStatus,
		"upstream_content_type", relay.UpstreamContentType,
	)
	return nil
}

// Package service implements the relay and JSON API logic behind the routes.
package service

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"net/http"

	"webapi-relay/internal/client"
	"webapi-relay/internal/config"
	"webapi-relay/internal/metrics"
	"webapi-relay/internal/model"
	"webapi-relay/internal/stream"
)

// PostData is the literal body of every relay call.
const PostData = `{"original": "data"}`

// RelayService issues the fixed upstream call and transforms its body chunk by chunk.
type RelayService struct {
	client  *client.UpstreamClient
	call    model.UpstreamCall
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewRelayService creates a RelayService posting to cfg.Upstream.URL.
// The metrics parameter is optional.
func NewRelayService(c *client.UpstreamClient, cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) *RelayService {
	return &RelayService{
		client: c,
		call: model.UpstreamCall{
			Method:      http.MethodPost,
			URL:         cfg.Upstream.URL,
			ContentType: "application/json",
			Body:        PostData,
		},
		logger:  logger.With("component", "relay_service"),
		metrics: m,
	}
}

// Call returns the upstream call descriptor.
func (s *RelayService) Call() model.UpstreamCall {
	return s.call
}

// Relay is an in-flight relayed upstream response.
type Relay struct {
	// UpstreamStatus is informational; the relay route always answers 200.
	UpstreamStatus int
	// UpstreamContentType is informational; relayed chunks are sent without one.
	UpstreamContentType string

	body   *stream.Body
	chunks iter.Seq2[[]byte, error]
}

// Chunks yields one transformed chunk per upstream body chunk.
// It can be ranged over once.
func (r *Relay) Chunks() iter.Seq2[[]byte, error] {
	return r.chunks
}

// Close releases the upstream connection.
func (r *Relay) Close() error {
	return r.body.Close()
}

// Open issues the upstream call and returns as soon as response headers
// arrive. The caller must Close the returned Relay.
func (s *RelayService) Open(ctx context.Context) (*Relay, error) {
	resp, err := s.client.Do(ctx, s.call)
	if err != nil {
		return nil, fmt.Errorf("relay: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	s.logger.Debug("upstream responded", "status", resp.StatusCode, "content_type", contentType)

	body := stream.New(resp.Body)
	return &Relay{
		UpstreamStatus:      resp.StatusCode,
		UpstreamContentType: contentType,
		body:                body,
		chunks:              stream.Map(body.Chunks(), s.transform),
	}, nil
}

// transform wraps a single upstream chunk. The prefix is emitted once per
// chunk, so a body that arrives in N chunks carries the prefix N times.
func (s *RelayService) transform(chunk []byte) ([]byte, error) {
	text, err := stream.Text(chunk)
	if err != nil {
		return nil, fmt.Errorf("relay: decode upstream chunk: %w", err)
	}
	if s.metrics != nil {
		s.metrics.RelayedChunks.Inc()
	}
	return FormatRelayChunk(s.call.Body, text), nil
}

// FormatRelayChunk renders one relayed chunk.
func FormatRelayChunk(requestBody, responseText string) []byte {
	return fmt.Appendf(nil, "<b>POST request body</b>: %s<br><b>Response</b>: %s", requestBody, responseText)
}

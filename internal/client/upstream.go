// Package client provides the shared outbound HTTP client used by the relay route.
package client

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"webapi-relay/internal/config"
	"webapi-relay/internal/metrics"
	"webapi-relay/internal/model"
)

// UpstreamClient sends the relay's outbound request. A single instance is
// shared by all requests; it holds no per-request state.
type UpstreamClient struct {
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// NewUpstreamClient creates an UpstreamClient with connection pooling.
// The client sets no overall timeout because response bodies are streamed;
// upstream.header_timeout_seconds bounds only the wait for headers.
// Compression is disabled so the outbound request carries no Accept-Encoding
// and body reads follow the upstream's own chunks.
// The metrics parameter is optional; pass nil to disable upstream metrics recording.
func NewUpstreamClient(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) *UpstreamClient {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          cfg.Upstream.IdleConnections,
		MaxIdleConnsPerHost:   cfg.Upstream.IdleConnections,
		IdleConnTimeout:       90 * time.Second,
		ResponseHeaderTimeout: time.Duration(cfg.Upstream.HeaderTimeoutSeconds) * time.Second,
		DisableCompression:    true,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	}

	return &UpstreamClient{
		httpClient: &http.Client{Transport: transport},
		logger:     logger.With("component", "upstream_client"),
		metrics:    m,
	}
}

// Do issues call and returns once the response headers have arrived.
// The body is left unread; the caller is responsible for closing it.
// ctx controls the whole exchange, including later body reads.
func (c *UpstreamClient) Do(ctx context.Context, call model.UpstreamCall) (*model.UpstreamResponse, error) {
	req, err := http.NewRequestWithContext(ctx, call.Method, call.URL, call.NewRequestBody())
	if err != nil {
		return nil, fmt.Errorf("build upstream request: %w", err)
	}
	req.Header.Set("Content-Type", call.ContentType)

	c.logger.Debug("upstream request",
		"method", call.Method,
		"url", call.URL,
	)

	start := time.Now()
	resp, err := c.httpClient.Do(req) //nolint:bodyclose // body ownership transfers to caller via UpstreamResponse
	duration := time.Since(start).Seconds()

	if c.metrics != nil {
		c.metrics.UpstreamDuration.Observe(duration)
	}
	if err != nil {
		return nil, fmt.Errorf("upstream request: %w", err)
	}

	if c.metrics != nil {
		c.metrics.UpstreamResponses.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()
	}

	return &model.UpstreamResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       resp.Body,
	}, nil
}

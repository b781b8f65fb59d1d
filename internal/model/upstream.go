// Package model defines shared types for the relay.
package model

import (
	"io"
	"net/http"
	"strings"
)

// UpstreamCall describes the outbound request issued by the relay route.
// It is built once and reused unchanged for every call.
type UpstreamCall struct {
	Method      string
	URL         string
	ContentType string
	Body        string
}

// NewRequestBody returns a fresh reader over the call body.
func (c UpstreamCall) NewRequestBody() io.Reader {
	return strings.NewReader(c.Body)
}

// UpstreamResponse is the upstream reply, with the body left unread.
type UpstreamResponse struct {
	StatusCode int
	Header     http.Header
	Body       io.ReadCloser
}

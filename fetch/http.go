package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/urlordjames/green-lib/errors"
)

// DefaultUserAgent is sent when no WithUserAgent option is given.
const DefaultUserAgent = "greensync"

const defaultHTTPTimeout = 5 * time.Minute

// HTTPOption configures an HTTPSource.
type HTTPOption func(*HTTPSource)

// WithHTTPClient sets the client used for requests.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(s *HTTPSource) {
		if client != nil {
			s.client = client
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) HTTPOption {
	return func(s *HTTPSource) {
		s.userAgent = ua
	}
}

// HTTPSource fetches http and https URLs with a GET request.
type HTTPSource struct {
	client    *http.Client
	userAgent string
}

// NewHTTPSource creates an HTTPSource.
func NewHTTPSource(opts ...HTTPOption) *HTTPSource {
	s := &HTTPSource{
		client:    &http.Client{Timeout: defaultHTTPTimeout},
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fetch implements Source. A request that cannot be completed is reported as
// errors.CodeNetwork. A response with a non-2xx status, or whose body cannot
// be read, is reported as errors.CodeProtocol.
func (s *HTTPSource) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeInvalidInput, "invalid request",
			map[string]interface{}{"url": rawURL})
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.Wrap(ctx.Err(), errors.CodeCanceled, "request aborted")
		}
		return nil, errors.WrapWithContext(err, errors.CodeNetwork, "request failed",
			map[string]interface{}{"url": rawURL})
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.WrapWithContext(
			fmt.Errorf("unexpected status %s", resp.Status),
			errors.CodeProtocol, "bad response",
			map[string]interface{}{"url": rawURL, "status": resp.StatusCode},
		)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeProtocol, "read response body",
			map[string]interface{}{"url": rawURL})
	}
	return body, nil
}

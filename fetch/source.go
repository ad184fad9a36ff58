package fetch

import (
	"context"
	"net/url"
	"strings"

	"github.com/urlordjames/green-lib/errors"
)

// Source retrieves the bytes behind a URL.
//
// Implementations classify failures with error codes: a failure to make the
// request at all (connection refused, DNS failure, timeout) must carry a
// retryable code such as errors.CodeNetwork. Anything else is treated as fatal.
type Source interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context, rawURL string) ([]byte, error)

// Fetch implements Source.
func (f SourceFunc) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	return f(ctx, rawURL)
}

// Router dispatches to a Source by URL scheme.
type Router struct {
	sources map[string]Source
}

// NewRouter returns an empty Router.
func NewRouter() *Router {
	return &Router{sources: make(map[string]Source)}
}

// DefaultRouter returns a Router serving http and https with an HTTPSource
// and s3 with an S3Source.
func DefaultRouter(httpSrc *HTTPSource, s3Src *S3Source) *Router {
	return NewRouter().
		Handle("http", httpSrc).
		Handle("https", httpSrc).
		Handle("s3", s3Src)
}

// Handle registers src for scheme and returns r.
func (r *Router) Handle(scheme string, src Source) *Router {
	r.sources[strings.ToLower(scheme)] = src
	return r
}

// Fetch implements Source.
func (r *Router) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeInvalidInput, "invalid source url",
			map[string]interface{}{"url": rawURL})
	}

	src, ok := r.sources[strings.ToLower(u.Scheme)]
	if !ok {
		return nil, errors.WrapWithContext(nil, errors.CodeInvalidInput, "unsupported url scheme",
			map[string]interface{}{"url": rawURL, "scheme": u.Scheme})
	}
	return src.Fetch(ctx, rawURL)
}

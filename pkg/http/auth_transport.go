package http

import "net/http"

// headerTransport sets fixed headers on every outbound request.
type headerTransport struct {
	headers   map[string]string
	transport http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	reqCopy := req.Clone(req.Context())

	for key, value := range t.headers {
		if value == "" {
			continue
		}
		// Per-request headers take precedence over client-wide ones
		if reqCopy.Header.Get(key) != "" {
			continue
		}
		reqCopy.Header.Set(key, value)
	}

	return t.transport.RoundTrip(reqCopy)
}

// WithStaticHeader sets key to value on every request that does not set it itself.
func WithStaticHeader(key, value string) HttpOpts {
	return WithTransport(func(rt http.RoundTripper) http.RoundTripper {
		return &headerTransport{
			headers:   map[string]string{key: value},
			transport: rt,
		}
	})
}

// WithAuthToken sends "Authorization: Bearer <token>" unless the request carries its own.
func WithAuthToken(token string) HttpOpts {
	if token == "" {
		return func(*httpConfig) {}
	}
	return WithStaticHeader("Authorization", "Bearer "+token)
}

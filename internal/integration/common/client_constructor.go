package common

import (
	"github.com/futig/notes-answer/internal/config"
	pkgRetry "github.com/futig/notes-answer/internal/pkg/retry"
	pkgHTTP "github.com/futig/notes-answer/pkg/http"
	"go.uber.org/zap"
)

// NewBaseConnector builds a JSON connector for one upstream service with the
// shared timeout, logging and retry settings.
func NewBaseConnector(
	baseURL string,
	cfg config.HTTPClientConfig,
	retry pkgRetry.RetryConfig,
	logger *zap.Logger,
	extra ...pkgHTTP.HttpOpts,
) *pkgHTTP.Connector {
	connCfg := &pkgHTTP.ConnectorConfig{
		Logger:  logger,
		BaseURL: baseURL,
		Retry:   &retry,
	}

	// Transports wrap outward: logging is innermost so it sees the headers
	// set by the decorators appended after it
	opts := []pkgHTTP.HttpOpts{
		pkgHTTP.WithRequestLogging(),
		pkgHTTP.WithRequestTimeout(cfg.RequestTimeout),
		pkgHTTP.WithConnClientTimeout(cfg.ConnTimeout),
		pkgHTTP.WithClientKeepAlive(cfg.KeepAlive),
		pkgHTTP.WithIdleConnTimeout(cfg.IdleConnTimeout),
		pkgHTTP.WithResponseHeaderTimeout(cfg.ResponseHeaderTimeout),
	}
	opts = append(opts, extra...)

	return pkgHTTP.NewConnector(connCfg, opts...)
}

package graph

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/slgMitch/fidelity-interview/internal/database"
	"github.com/slgMitch/fidelity-interview/internal/logging"
)

type contextKey string

const contextKeyRequest contextKey = "request"

// RequestContext is built once per operation and dropped when it completes.
type RequestContext struct {
	DB        *database.Client
	RequestID string
	Logger    logging.Entry
}

// WithRequestContext attaches rc to ctx.
func WithRequestContext(ctx context.Context, rc *RequestContext) context.Context {
	return context.WithValue(ctx, contextKeyRequest, rc)
}

// ForContext returns the request context of an operation, or nil outside one.
func ForContext(ctx context.Context) *RequestContext {
	rc, _ := ctx.Value(contextKeyRequest).(*RequestContext)
	return rc
}

// LoggerFor returns the request-scoped logger, or a standard logger entry
// when ctx carries no request.
func LoggerFor(ctx context.Context) logging.Entry {
	if rc := ForContext(ctx); rc != nil && rc.Logger != nil {
		return rc.Logger
	}
	return logrus.NewEntry(logrus.StandardLogger())
}

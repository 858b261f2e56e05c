package graph

import (
	"context"
	"time"

	graphql "github.com/graph-gophers/graphql-go"

	"github.com/slgMitch/fidelity-interview/internal/auth"
	"github.com/slgMitch/fidelity-interview/internal/database"
	"github.com/slgMitch/fidelity-interview/internal/logging"
)

// Params is a GraphQL request as sent over HTTP or given on the command line.
type Params struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName"`
	Variables     map[string]any `json:"variables"`
}

// Observer receives one call per executed operation.
type Observer interface {
	ObserveOperation(operation string, duration time.Duration, errorCount int)
}

// Executor runs operations against the schema, giving each one its own
// request context.
type Executor struct {
	schema   *graphql.Schema
	db       *database.Client
	logger   logging.Logger
	observer Observer
}

// NewExecutor builds the schema over db and returns an executor for it. A nil
// logger discards.
func NewExecutor(db *database.Client, logger logging.Logger, maxDepth int) (*Executor, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	schema, err := NewSchema(NewResolver(db), logger, maxDepth)
	if err != nil {
		return nil, err
	}
	return &Executor{schema: schema, db: db, logger: logger}, nil
}

// SetObserver installs o; nil disables observation.
func (e *Executor) SetObserver(o Observer) {
	e.observer = o
}

// Exec runs one operation. Resolver errors are reported in the response,
// never as a Go error.
func (e *Executor) Exec(ctx context.Context, requestID string, p Params) *graphql.Response {
	start := time.Now()

	entry := e.logger.WithFields(logging.Fields{
		"request_id": requestID,
		"operation":  p.OperationName,
		"subject":    auth.FromContext(ctx).Subject,
	})
	ctx = WithRequestContext(ctx, &RequestContext{
		DB:        e.db,
		RequestID: requestID,
		Logger:    entry,
	})

	resp := e.schema.Exec(ctx, p.Query, p.OperationName, p.Variables)

	duration := time.Since(start)
	if len(resp.Errors) > 0 {
		entry.WithFields(logging.Fields{
			"errors":   len(resp.Errors),
			"first":    resp.Errors[0].Message,
			"duration": duration,
		}).Warn("GraphQL operation failed")
	} else {
		entry.WithField("duration", duration).Debug("GraphQL operation executed")
	}

	if e.observer != nil {
		e.observer.ObserveOperation(operationLabel(p.OperationName), duration, len(resp.Errors))
	}
	return resp
}

func operationLabel(name string) string {
	if name == "" {
		return "anonymous"
	}
	return name
}

package graph

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"

	graphql "github.com/graph-gophers/graphql-go"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"

	"github.com/slgMitch/fidelity-interview/internal/logging"
)

//go:embed schema.graphqls
var schemaSDL string

// DefaultMaxDepth bounds selection nesting when no depth is configured.
const DefaultMaxDepth = 10

// NewSchema parses the SDL and binds it to the resolver. It fails when a
// field has no matching resolver method.
func NewSchema(r *Resolver, logger logging.Logger, maxDepth int) (*graphql.Schema, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	opts := []graphql.SchemaOpt{
		graphql.UseStringDescriptions(),
		graphql.MaxDepth(maxDepth),
	}
	if logger != nil {
		opts = append(opts, graphql.Logger(panicLogger{logger: logger}))
	}

	schema, err := graphql.ParseSchema(schemaSDL, r.root(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse GraphQL schema: %w", err)
	}
	return schema, nil
}

// FormatSDL validates the schema with gqlparser and returns it in
// normalized form. This is what the schema command writes out.
func FormatSDL() (string, error) {
	schema, err := gqlparser.LoadSchema(&ast.Source{Name: "schema.graphqls", Input: schemaSDL})
	if err != nil {
		return "", fmt.Errorf("invalid GraphQL schema: %w", err)
	}

	var buf bytes.Buffer
	f := formatter.NewFormatter(&buf, formatter.WithIndent("  "))
	f.FormatSchema(schema)
	return buf.String(), nil
}

type panicLogger struct {
	logger logging.Logger
}

func (l panicLogger) LogPanic(ctx context.Context, value interface{}) {
	entry := l.logger.WithField("panic", value)
	if rc := ForContext(ctx); rc != nil {
		entry = entry.WithField("request_id", rc.RequestID)
	}
	entry.Error("GraphQL resolver panic")
}

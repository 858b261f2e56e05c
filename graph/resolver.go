// Package graph provides the GraphQL schema and resolvers for accounts and contacts.
package graph

import (
	"context"

	"github.com/slgMitch/fidelity-interview/internal/database"
)

// Resolver is the root resolver for GraphQL queries and mutations.
type Resolver struct {
	db *database.Client
}

// NewResolver creates a new resolver with the given dependencies.
func NewResolver(db *database.Client) *Resolver {
	return &Resolver{
		db: db,
	}
}

// client returns the data client of the current request, falling back to
// the one the resolver was built with.
func (r *Resolver) client(ctx context.Context) *database.Client {
	if rc := ForContext(ctx); rc != nil && rc.DB != nil {
		return rc.DB
	}
	return r.db
}

// root is the value bound to the schema: query and mutation fields both
// resolve on it.
type root struct {
	*queryResolver
	*mutationResolver
}

func (r *Resolver) root() *root {
	return &root{
		queryResolver:    r.Query(),
		mutationResolver: r.Mutation(),
	}
}

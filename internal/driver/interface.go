package driver

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Statement is one Cypher query with its parameters.
type Statement struct {
	Query  string
	Params map[string]interface{}
}

type GraphDriver interface {
	ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error)
	// ExecuteWrite runs every statement in one managed write transaction.
	ExecuteWrite(ctx context.Context, statements []Statement) error
	BuildIndices(ctx context.Context) error
	Close(ctx context.Context) error
}

package graphql

import (
	"net/http"

	graphqlgo "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"
	"github.com/graph-gophers/graphql-transport-ws/graphqlws"
)

// ParseSchema binds the SDL to the root resolver.
func ParseSchema(resolver *Resolver) (*graphqlgo.Schema, error) {
	return graphqlgo.ParseSchema(Schema, resolver)
}

// NewHandler serves queries and mutations over HTTP POST.
func NewHandler(schema *graphqlgo.Schema) http.Handler {
	return &relay.Handler{Schema: schema}
}

// NewSubscriptionHandler upgrades graphql-ws connections for subscriptions
// and falls back to the plain HTTP handler for everything else.
func NewSubscriptionHandler(schema *graphqlgo.Schema) http.Handler {
	return graphqlws.NewHandlerFunc(schema, NewHandler(schema))
}

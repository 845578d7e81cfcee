// Package resolver builds the executable GraphQL schema for the shipment
// tracking API and wires every field to the storage layer. Queries and
// mutations are guarded by the caller's identity before any data access.
package resolver

import (
	"github.com/graphql-go/graphql"

	"shiptrack-graphql/internal/apperrors"
	"shiptrack-graphql/internal/logging"
	"shiptrack-graphql/internal/observability"
	"shiptrack-graphql/internal/store"
)

// Resolver handles GraphQL execution against the shipment store.
type Resolver struct {
	store   *store.Store
	logger  *logging.Logger
	metrics *observability.Metrics

	statusEnum        *graphql.Enum
	priorityEnum      *graphql.Enum
	shipmentTypeEnum  *graphql.Enum
	roleEnum          *graphql.Enum
	sortFieldEnum     *graphql.Enum
	sortDirectionEnum *graphql.Enum

	userType         *graphql.Object
	shipmentType     *graphql.Object
	pageInfoType     *graphql.Object
	shipmentEdgeType *graphql.Object
	shipmentPageType *graphql.Object
	statusCountType  *graphql.Object
	statsType        *graphql.Object
	deletePayload    *graphql.Object
	bulkPayload      *graphql.Object

	filterInput *graphql.InputObject
	sortInput   *graphql.InputObject
	createInput *graphql.InputObject
	updateInput *graphql.InputObject
}

// NewResolver creates a resolver bound to the given store. The metrics
// parameter may be nil, in which case error counters are not recorded.
func NewResolver(st *store.Store, logger *logging.Logger, metrics *observability.Metrics) *Resolver {
	r := &Resolver{
		store:   st,
		logger:  logger,
		metrics: metrics,
	}
	r.buildEnums()
	r.buildTypes()
	r.buildInputs()
	return r
}

// BuildSchema constructs the executable schema with all queries and
// mutations attached.
func (r *Resolver) BuildSchema() (graphql.Schema, error) {
	rootQuery := graphql.NewObject(graphql.ObjectConfig{
		Name:   "Query",
		Fields: r.queryFields(),
	})
	rootMutation := graphql.NewObject(graphql.ObjectConfig{
		Name:   "Mutation",
		Fields: r.mutationFields(),
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    rootQuery,
		Mutation: rootMutation,
	})
}

// fail records the error code metric and surfaces the error to the
// GraphQL layer, where apperrors carry their code in extensions.
func (r *Resolver) fail(err error) (interface{}, error) {
	if r.metrics != nil {
		r.metrics.GraphQLErrors.WithLabelValues(string(apperrors.CodeOf(err))).Inc()
	}
	return nil, err
}

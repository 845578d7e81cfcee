package resolver

import (
	"github.com/graphql-go/graphql"

	"shiptrack-graphql/internal/apperrors"
	"shiptrack-graphql/internal/auth"
	"shiptrack-graphql/internal/cursor"
	"shiptrack-graphql/internal/loader"
	"shiptrack-graphql/internal/model"
	"shiptrack-graphql/internal/planner"
)

func (r *Resolver) queryFields() graphql.Fields {
	return graphql.Fields{
		"shipments": &graphql.Field{
			Type:        graphql.NewNonNull(r.shipmentPageType),
			Description: "Page through shipments matching the given filter.",
			Args: graphql.FieldConfigArgument{
				"filter":   &graphql.ArgumentConfig{Type: r.filterInput},
				"sort":     &graphql.ArgumentConfig{Type: r.sortInput},
				"page":     &graphql.ArgumentConfig{Type: graphql.Int},
				"pageSize": &graphql.ArgumentConfig{Type: graphql.Int},
			},
			Resolve: r.resolveShipments,
		},
		"shipment": &graphql.Field{
			Type: r.shipmentType,
			Args: graphql.FieldConfigArgument{
				"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
			},
			Resolve: r.resolveShipment,
		},
		"shipmentByTrackingNumber": &graphql.Field{
			Type: r.shipmentType,
			Args: graphql.FieldConfigArgument{
				"trackingNumber": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: r.resolveShipmentByTrackingNumber,
		},
		"shipmentStats": &graphql.Field{
			Type:        graphql.NewNonNull(r.statsType),
			Description: "Aggregate counters over the whole shipment collection.",
			Resolve:     r.resolveShipmentStats,
		},
		"me": &graphql.Field{
			Type:    graphql.NewNonNull(r.userType),
			Resolve: r.resolveMe,
		},
		"users": &graphql.Field{
			Type:        graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(r.userType))),
			Description: "All user accounts. Admin only.",
			Resolve:     r.resolveUsers,
		},
	}
}

func (r *Resolver) resolveShipments(p graphql.ResolveParams) (interface{}, error) {
	if _, err := auth.RequireAuthenticated(p.Context); err != nil {
		return r.fail(err)
	}

	filter := decodeFilter(p.Args["filter"])
	sort := decodeSort(p.Args["sort"])
	page := planner.PageRequest{
		Page:     intArg(p.Args, "page"),
		PageSize: intArg(p.Args, "pageSize"),
	}

	plan, err := planner.PlanShipmentQuery(filter, sort, page)
	if err != nil {
		return r.fail(err)
	}

	shipments, totalCount, err := r.store.FindShipmentPage(p.Context, plan)
	if err != nil {
		return r.fail(err)
	}

	// Seed the batch loader with every user reference on the page so the
	// first createdBy or updatedBy access fetches them all in one query.
	if l, ok := loader.FromContext(p.Context); ok {
		for i := range shipments {
			l.Load(p.Context, shipments[i].CreatedBy)
			l.Load(p.Context, shipments[i].UpdatedBy)
		}
	}

	return buildShipmentPage(shipments, plan.Page, totalCount), nil
}

// buildShipmentPage assembles the connection envelope the page field
// resolvers read from. Cursors are positional markers derived from record
// identity; pagination itself is page driven.
func buildShipmentPage(shipments []model.Shipment, page planner.PageRequest, totalCount int) map[string]interface{} {
	edges := make([]map[string]interface{}, len(shipments))
	for i, shipment := range shipments {
		edges[i] = map[string]interface{}{
			"cursor": cursor.Encode("Shipment", shipment.ID),
			"node":   shipment,
		}
	}

	var startCursor, endCursor interface{}
	if len(edges) > 0 {
		startCursor = edges[0]["cursor"]
		endCursor = edges[len(edges)-1]["cursor"]
	}

	meta := planner.BuildPageMeta(page, totalCount)
	return map[string]interface{}{
		"edges": edges,
		"nodes": shipments,
		"pageInfo": map[string]interface{}{
			"hasNextPage":     meta.HasNextPage,
			"hasPreviousPage": meta.HasPreviousPage,
			"currentPage":     meta.CurrentPage,
			"pageSize":        meta.PageSize,
			"totalCount":      meta.TotalCount,
			"totalPages":      meta.TotalPages,
			"startCursor":     startCursor,
			"endCursor":       endCursor,
		},
	}
}

func (r *Resolver) resolveShipment(p graphql.ResolveParams) (interface{}, error) {
	if _, err := auth.RequireAuthenticated(p.Context); err != nil {
		return r.fail(err)
	}
	id, _ := p.Args["id"].(string)

	shipment, err := r.store.GetShipment(p.Context, id)
	if err != nil {
		return r.fail(err)
	}
	if shipment == nil {
		return r.fail(apperrors.NotFound("shipment %q not found", id))
	}
	return shipment, nil
}

func (r *Resolver) resolveShipmentByTrackingNumber(p graphql.ResolveParams) (interface{}, error) {
	if _, err := auth.RequireAuthenticated(p.Context); err != nil {
		return r.fail(err)
	}
	trackingNumber, _ := p.Args["trackingNumber"].(string)

	shipment, err := r.store.GetShipmentByTrackingNumber(p.Context, trackingNumber)
	if err != nil {
		return r.fail(err)
	}
	if shipment == nil {
		return r.fail(apperrors.NotFound("shipment with tracking number %q not found", trackingNumber))
	}
	return shipment, nil
}

func (r *Resolver) resolveShipmentStats(p graphql.ResolveParams) (interface{}, error) {
	if _, err := auth.RequireAuthenticated(p.Context); err != nil {
		return r.fail(err)
	}
	stats, err := r.store.ShipmentStats(p.Context)
	if err != nil {
		return r.fail(err)
	}
	return stats, nil
}

func (r *Resolver) resolveMe(p graphql.ResolveParams) (interface{}, error) {
	identity, err := auth.RequireAuthenticated(p.Context)
	if err != nil {
		return r.fail(err)
	}
	user, err := r.store.GetUser(p.Context, identity.UserID)
	if err != nil {
		return r.fail(err)
	}
	if user == nil {
		return r.fail(apperrors.NotFound("user %q not found", identity.UserID))
	}
	return user, nil
}

func (r *Resolver) resolveUsers(p graphql.ResolveParams) (interface{}, error) {
	if _, err := auth.RequireAdmin(p.Context); err != nil {
		return r.fail(err)
	}
	users, err := r.store.ListUsers(p.Context)
	if err != nil {
		return r.fail(err)
	}
	return users, nil
}

func intArg(args map[string]interface{}, key string) int {
	value, _ := args[key].(int)
	return value
}

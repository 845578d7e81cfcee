package resolver

import (
	"fmt"

	"github.com/graphql-go/graphql"

	"shiptrack-graphql/internal/loader"
	"shiptrack-graphql/internal/model"
	"shiptrack-graphql/internal/planner"
)

func (r *Resolver) buildEnums() {
	statusValues := graphql.EnumValueConfigMap{}
	for _, status := range model.ShipmentStatuses {
		statusValues[string(status)] = &graphql.EnumValueConfig{Value: status}
	}
	r.statusEnum = graphql.NewEnum(graphql.EnumConfig{
		Name:        "ShipmentStatus",
		Description: "Lifecycle state of a shipment.",
		Values:      statusValues,
	})

	priorityValues := graphql.EnumValueConfigMap{}
	for _, priority := range model.Priorities {
		priorityValues[string(priority)] = &graphql.EnumValueConfig{Value: priority}
	}
	r.priorityEnum = graphql.NewEnum(graphql.EnumConfig{
		Name:   "ShipmentPriority",
		Values: priorityValues,
	})

	typeValues := graphql.EnumValueConfigMap{}
	for _, shipmentType := range model.ShipmentTypes {
		typeValues[string(shipmentType)] = &graphql.EnumValueConfig{Value: shipmentType}
	}
	r.shipmentTypeEnum = graphql.NewEnum(graphql.EnumConfig{
		Name:   "ShipmentType",
		Values: typeValues,
	})

	roleValues := graphql.EnumValueConfigMap{}
	for _, role := range model.Roles {
		roleValues[string(role)] = &graphql.EnumValueConfig{Value: role}
	}
	r.roleEnum = graphql.NewEnum(graphql.EnumConfig{
		Name:   "UserRole",
		Values: roleValues,
	})

	sortFieldValues := graphql.EnumValueConfigMap{}
	for _, field := range planner.SortFields {
		sortFieldValues[string(field)] = &graphql.EnumValueConfig{Value: field}
	}
	r.sortFieldEnum = graphql.NewEnum(graphql.EnumConfig{
		Name:        "ShipmentSortField",
		Description: "Sortable shipment attributes.",
		Values:      sortFieldValues,
	})

	r.sortDirectionEnum = graphql.NewEnum(graphql.EnumConfig{
		Name: "SortDirection",
		Values: graphql.EnumValueConfigMap{
			"ASC":  &graphql.EnumValueConfig{Value: "ASC"},
			"DESC": &graphql.EnumValueConfig{Value: "DESC"},
		},
	})
}

func (r *Resolver) buildTypes() {
	r.userType = graphql.NewObject(graphql.ObjectConfig{
		Name: "User",
		Fields: graphql.Fields{
			"id":        &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"email":     &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"name":      &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"role":      &graphql.Field{Type: graphql.NewNonNull(r.roleEnum)},
			"createdAt": &graphql.Field{Type: graphql.NewNonNull(graphql.DateTime)},
		},
	})

	r.shipmentType = graphql.NewObject(graphql.ObjectConfig{
		Name: "Shipment",
		Fields: graphql.Fields{
			"id":                &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"trackingNumber":    &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"description":       &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"status":            &graphql.Field{Type: graphql.NewNonNull(r.statusEnum)},
			"priority":          &graphql.Field{Type: graphql.NewNonNull(r.priorityEnum)},
			"shipmentType":      &graphql.Field{Type: graphql.NewNonNull(r.shipmentTypeEnum)},
			"carrier":           &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"flagged":           &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
			"originCity":        &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"originState":       &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"destinationCity":   &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"destinationState":  &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"cost":              &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
			"estimatedDelivery": &graphql.Field{Type: graphql.NewNonNull(graphql.DateTime)},
			"deliveredAt": &graphql.Field{
				Type: graphql.DateTime,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					shipment, err := shipmentFromSource(p.Source)
					if err != nil {
						return nil, err
					}
					if shipment.DeliveredAt == nil {
						return nil, nil
					}
					return *shipment.DeliveredAt, nil
				},
			},
			"createdBy": &graphql.Field{
				Type: r.userType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.resolveUserRef(p, func(s *model.Shipment) string { return s.CreatedBy })
				},
			},
			"updatedBy": &graphql.Field{
				Type: r.userType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.resolveUserRef(p, func(s *model.Shipment) string { return s.UpdatedBy })
				},
			},
			"createdAt": &graphql.Field{Type: graphql.NewNonNull(graphql.DateTime)},
			"updatedAt": &graphql.Field{Type: graphql.NewNonNull(graphql.DateTime)},
		},
	})

	r.pageInfoType = graphql.NewObject(graphql.ObjectConfig{
		Name: "PageInfo",
		Fields: graphql.Fields{
			"hasNextPage":     &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
			"hasPreviousPage": &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
			"currentPage":     &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"pageSize":        &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"totalCount":      &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"totalPages":      &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"startCursor":     &graphql.Field{Type: graphql.String},
			"endCursor":       &graphql.Field{Type: graphql.String},
		},
	})

	r.shipmentEdgeType = graphql.NewObject(graphql.ObjectConfig{
		Name: "ShipmentEdge",
		Fields: graphql.Fields{
			"cursor": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"node":   &graphql.Field{Type: graphql.NewNonNull(r.shipmentType)},
		},
	})

	r.shipmentPageType = graphql.NewObject(graphql.ObjectConfig{
		Name: "ShipmentPage",
		Fields: graphql.Fields{
			"edges":    &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(r.shipmentEdgeType)))},
			"nodes":    &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(r.shipmentType)))},
			"pageInfo": &graphql.Field{Type: graphql.NewNonNull(r.pageInfoType)},
		},
	})

	r.statusCountType = graphql.NewObject(graphql.ObjectConfig{
		Name: "StatusCount",
		Fields: graphql.Fields{
			"status": &graphql.Field{Type: graphql.NewNonNull(r.statusEnum)},
			"count":  &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		},
	})

	r.statsType = graphql.NewObject(graphql.ObjectConfig{
		Name: "ShipmentStats",
		Fields: graphql.Fields{
			"countsByStatus": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(r.statusCountType))),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					stats, ok := p.Source.(*model.ShipmentStats)
					if !ok {
						return nil, fmt.Errorf("unexpected stats source %T", p.Source)
					}
					// Emit every status in declaration order so clients get
					// stable, zero-filled buckets.
					counts := make([]map[string]interface{}, 0, len(model.ShipmentStatuses))
					for _, status := range model.ShipmentStatuses {
						counts = append(counts, map[string]interface{}{
							"status": status,
							"count":  stats.CountsByStatus[status],
						})
					}
					return counts, nil
				},
			},
			"flaggedCount": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"averageCost":  &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
			"totalCost":    &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
		},
	})

	r.deletePayload = graphql.NewObject(graphql.ObjectConfig{
		Name: "DeleteShipmentPayload",
		Fields: graphql.Fields{
			"id":      &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"success": &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		},
	})

	r.bulkPayload = graphql.NewObject(graphql.ObjectConfig{
		Name: "BulkUpdateShipmentStatusPayload",
		Fields: graphql.Fields{
			"updatedCount": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		},
	})
}

// resolveUserRef resolves a user reference through the request's batch
// loader, returning a thunk so sibling references coalesce into one fetch.
// Without a loader in context it falls back to a direct lookup.
func (r *Resolver) resolveUserRef(p graphql.ResolveParams, ref func(*model.Shipment) string) (interface{}, error) {
	shipment, err := shipmentFromSource(p.Source)
	if err != nil {
		return nil, err
	}
	id := ref(shipment)
	if id == "" {
		return nil, nil
	}

	l, ok := loader.FromContext(p.Context)
	if !ok {
		user, err := r.store.GetUser(p.Context, id)
		if err != nil {
			return r.fail(err)
		}
		return user, nil
	}

	thunk := l.Load(p.Context, id)
	return func() (interface{}, error) {
		user, err := thunk()
		if err != nil {
			return r.fail(err)
		}
		if user == nil {
			return nil, nil
		}
		return user, nil
	}, nil
}

func shipmentFromSource(source interface{}) (*model.Shipment, error) {
	switch s := source.(type) {
	case *model.Shipment:
		return s, nil
	case model.Shipment:
		return &s, nil
	default:
		return nil, fmt.Errorf("unexpected shipment source %T", source)
	}
}

package resolver

import (
	"log/slog"

	"github.com/graphql-go/graphql"

	"shiptrack-graphql/internal/apperrors"
	"shiptrack-graphql/internal/auth"
	"shiptrack-graphql/internal/logging"
	"shiptrack-graphql/internal/model"
)

func (r *Resolver) mutationFields() graphql.Fields {
	return graphql.Fields{
		"createShipment": &graphql.Field{
			Type: graphql.NewNonNull(r.shipmentType),
			Args: graphql.FieldConfigArgument{
				"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(r.createInput)},
			},
			Resolve: r.resolveCreateShipment,
		},
		"updateShipment": &graphql.Field{
			Type: graphql.NewNonNull(r.shipmentType),
			Args: graphql.FieldConfigArgument{
				"id":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(r.updateInput)},
			},
			Resolve: r.resolveUpdateShipment,
		},
		"updateShipmentStatus": &graphql.Field{
			Type:        graphql.NewNonNull(r.shipmentType),
			Description: "Transition a shipment's status. Moving to DELIVERED records the delivery time.",
			Args: graphql.FieldConfigArgument{
				"id":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				"status": &graphql.ArgumentConfig{Type: graphql.NewNonNull(r.statusEnum)},
			},
			Resolve: r.resolveUpdateShipmentStatus,
		},
		"flagShipment": &graphql.Field{
			Type: graphql.NewNonNull(r.shipmentType),
			Args: graphql.FieldConfigArgument{
				"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
			},
			Resolve: r.flagResolver(true),
		},
		"unflagShipment": &graphql.Field{
			Type: graphql.NewNonNull(r.shipmentType),
			Args: graphql.FieldConfigArgument{
				"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
			},
			Resolve: r.flagResolver(false),
		},
		"bulkUpdateShipmentStatus": &graphql.Field{
			Type:        graphql.NewNonNull(r.bulkPayload),
			Description: "Transition many shipments in one statement. Admin only.",
			Args: graphql.FieldConfigArgument{
				"ids":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.ID)))},
				"status": &graphql.ArgumentConfig{Type: graphql.NewNonNull(r.statusEnum)},
			},
			Resolve: r.resolveBulkUpdateShipmentStatus,
		},
		"deleteShipment": &graphql.Field{
			Type:        graphql.NewNonNull(r.deletePayload),
			Description: "Permanently remove a shipment. Admin only.",
			Args: graphql.FieldConfigArgument{
				"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
			},
			Resolve: r.resolveDeleteShipment,
		},
	}
}

func (r *Resolver) resolveCreateShipment(p graphql.ResolveParams) (interface{}, error) {
	identity, err := auth.RequireAuthenticated(p.Context)
	if err != nil {
		return r.fail(err)
	}
	args, _ := p.Args["input"].(map[string]interface{})
	input := decodeCreateInput(args)

	shipment, err := r.store.CreateShipment(p.Context, input, identity.UserID)
	if err != nil {
		return r.fail(err)
	}

	logging.FromContext(p.Context).Info("shipment created",
		slog.String("shipment_id", shipment.ID),
		slog.String("tracking_number", shipment.TrackingNumber),
		slog.String("created_by", identity.UserID),
	)
	return shipment, nil
}

func (r *Resolver) resolveUpdateShipment(p graphql.ResolveParams) (interface{}, error) {
	identity, err := auth.RequireAuthenticated(p.Context)
	if err != nil {
		return r.fail(err)
	}
	id, _ := p.Args["id"].(string)
	args, _ := p.Args["input"].(map[string]interface{})
	update := decodeUpdateInput(args)

	shipment, err := r.store.UpdateShipment(p.Context, id, update, identity.UserID)
	if err != nil {
		return r.fail(err)
	}
	return shipment, nil
}

func (r *Resolver) resolveUpdateShipmentStatus(p graphql.ResolveParams) (interface{}, error) {
	identity, err := auth.RequireAuthenticated(p.Context)
	if err != nil {
		return r.fail(err)
	}
	id, _ := p.Args["id"].(string)
	status, ok := p.Args["status"].(model.ShipmentStatus)
	if !ok {
		return r.fail(apperrors.InvalidInput("status is required"))
	}

	shipment, err := r.store.UpdateShipmentStatus(p.Context, id, status, identity.UserID)
	if err != nil {
		return r.fail(err)
	}
	return shipment, nil
}

func (r *Resolver) flagResolver(flagged bool) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		identity, err := auth.RequireAuthenticated(p.Context)
		if err != nil {
			return r.fail(err)
		}
		id, _ := p.Args["id"].(string)

		shipment, err := r.store.SetShipmentFlag(p.Context, id, flagged, identity.UserID)
		if err != nil {
			return r.fail(err)
		}
		return shipment, nil
	}
}

func (r *Resolver) resolveBulkUpdateShipmentStatus(p graphql.ResolveParams) (interface{}, error) {
	identity, err := auth.RequireAdmin(p.Context)
	if err != nil {
		return r.fail(err)
	}
	status, ok := p.Args["status"].(model.ShipmentStatus)
	if !ok {
		return r.fail(apperrors.InvalidInput("status is required"))
	}
	var ids []string
	for _, value := range listArg(p.Args, "ids") {
		if id, ok := value.(string); ok {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return r.fail(apperrors.InvalidInput("ids must not be empty"))
	}

	updated, err := r.store.BulkUpdateStatus(p.Context, ids, status, identity.UserID)
	if err != nil {
		return r.fail(err)
	}

	logging.FromContext(p.Context).Info("bulk status update applied",
		slog.String("status", string(status)),
		slog.Int("requested", len(ids)),
		slog.Int("updated", updated),
		slog.String("updated_by", identity.UserID),
	)
	return map[string]interface{}{"updatedCount": updated}, nil
}

func (r *Resolver) resolveDeleteShipment(p graphql.ResolveParams) (interface{}, error) {
	identity, err := auth.RequireAdmin(p.Context)
	if err != nil {
		return r.fail(err)
	}
	id, _ := p.Args["id"].(string)

	if err := r.store.DeleteShipment(p.Context, id); err != nil {
		return r.fail(err)
	}

	logging.FromContext(p.Context).Info("shipment deleted",
		slog.String("shipment_id", id),
		slog.String("deleted_by", identity.UserID),
	)
	return map[string]interface{}{"id": id, "success": true}, nil
}

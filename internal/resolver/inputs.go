package resolver

import (
	"time"

	"github.com/graphql-go/graphql"

	"shiptrack-graphql/internal/model"
	"shiptrack-graphql/internal/planner"
	"shiptrack-graphql/internal/store"
)

func (r *Resolver) buildInputs() {
	r.filterInput = graphql.NewInputObject(graphql.InputObjectConfig{
		Name:        "ShipmentFilter",
		Description: "Criteria combined conjunctively; an empty filter matches everything.",
		Fields: graphql.InputObjectConfigFieldMap{
			"statuses":         &graphql.InputObjectFieldConfig{Type: graphql.NewList(graphql.NewNonNull(r.statusEnum))},
			"priorities":       &graphql.InputObjectFieldConfig{Type: graphql.NewList(graphql.NewNonNull(r.priorityEnum))},
			"types":            &graphql.InputObjectFieldConfig{Type: graphql.NewList(graphql.NewNonNull(r.shipmentTypeEnum))},
			"carrier":          &graphql.InputObjectFieldConfig{Type: graphql.String},
			"flagged":          &graphql.InputObjectFieldConfig{Type: graphql.Boolean},
			"originCity":       &graphql.InputObjectFieldConfig{Type: graphql.String},
			"originState":      &graphql.InputObjectFieldConfig{Type: graphql.String},
			"destinationCity":  &graphql.InputObjectFieldConfig{Type: graphql.String},
			"destinationState": &graphql.InputObjectFieldConfig{Type: graphql.String},
			"minCost":          &graphql.InputObjectFieldConfig{Type: graphql.Float},
			"maxCost":          &graphql.InputObjectFieldConfig{Type: graphql.Float},
			"estimatedFrom":    &graphql.InputObjectFieldConfig{Type: graphql.String},
			"estimatedUntil":   &graphql.InputObjectFieldConfig{Type: graphql.String},
			"createdFrom":      &graphql.InputObjectFieldConfig{Type: graphql.String},
			"createdUntil":     &graphql.InputObjectFieldConfig{Type: graphql.String},
			"search":           &graphql.InputObjectFieldConfig{Type: graphql.String},
		},
	})

	r.sortInput = graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "ShipmentSort",
		Fields: graphql.InputObjectConfigFieldMap{
			"field":     &graphql.InputObjectFieldConfig{Type: r.sortFieldEnum},
			"direction": &graphql.InputObjectFieldConfig{Type: r.sortDirectionEnum},
		},
	})

	r.createInput = graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "CreateShipmentInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"trackingNumber":    &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"description":       &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"status":            &graphql.InputObjectFieldConfig{Type: r.statusEnum},
			"priority":          &graphql.InputObjectFieldConfig{Type: r.priorityEnum},
			"shipmentType":      &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(r.shipmentTypeEnum)},
			"carrier":           &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"originCity":        &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"originState":       &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"destinationCity":   &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"destinationState":  &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"cost":              &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
			"estimatedDelivery": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.DateTime)},
		},
	})

	r.updateInput = graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "UpdateShipmentInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"description":       &graphql.InputObjectFieldConfig{Type: graphql.String},
			"priority":          &graphql.InputObjectFieldConfig{Type: r.priorityEnum},
			"shipmentType":      &graphql.InputObjectFieldConfig{Type: r.shipmentTypeEnum},
			"carrier":           &graphql.InputObjectFieldConfig{Type: graphql.String},
			"originCity":        &graphql.InputObjectFieldConfig{Type: graphql.String},
			"originState":       &graphql.InputObjectFieldConfig{Type: graphql.String},
			"destinationCity":   &graphql.InputObjectFieldConfig{Type: graphql.String},
			"destinationState":  &graphql.InputObjectFieldConfig{Type: graphql.String},
			"cost":              &graphql.InputObjectFieldConfig{Type: graphql.Float},
			"estimatedDelivery": &graphql.InputObjectFieldConfig{Type: graphql.DateTime},
		},
	})
}

// decodeFilter maps filter input arguments onto a planner spec. Enum values
// arrive pre-validated by GraphQL argument coercion.
func decodeFilter(raw interface{}) planner.FilterSpec {
	spec := planner.FilterSpec{}
	args, ok := raw.(map[string]interface{})
	if !ok {
		return spec
	}

	for _, value := range listArg(args, "statuses") {
		if status, ok := value.(model.ShipmentStatus); ok {
			spec.Statuses = append(spec.Statuses, status)
		}
	}
	for _, value := range listArg(args, "priorities") {
		if priority, ok := value.(model.Priority); ok {
			spec.Priorities = append(spec.Priorities, priority)
		}
	}
	for _, value := range listArg(args, "types") {
		if shipmentType, ok := value.(model.ShipmentType); ok {
			spec.Types = append(spec.Types, shipmentType)
		}
	}

	spec.Carrier = stringArg(args, "carrier")
	spec.Flagged = boolPtrArg(args, "flagged")
	spec.OriginCity = stringArg(args, "originCity")
	spec.OriginState = stringArg(args, "originState")
	spec.DestinationCity = stringArg(args, "destinationCity")
	spec.DestinationState = stringArg(args, "destinationState")
	spec.MinCost = floatPtrArg(args, "minCost")
	spec.MaxCost = floatPtrArg(args, "maxCost")
	spec.EstimatedFrom = stringArg(args, "estimatedFrom")
	spec.EstimatedUntil = stringArg(args, "estimatedUntil")
	spec.CreatedFrom = stringArg(args, "createdFrom")
	spec.CreatedUntil = stringArg(args, "createdUntil")
	spec.Search = stringArg(args, "search")
	return spec
}

// decodeSort maps sort input arguments onto a planner spec. A missing or
// partial sort falls back to the planner defaults.
func decodeSort(raw interface{}) planner.SortSpec {
	spec := planner.SortSpec{}
	args, ok := raw.(map[string]interface{})
	if !ok {
		return spec
	}
	if field, ok := args["field"].(planner.SortField); ok {
		spec.Field = field
	}
	if direction, ok := args["direction"].(string); ok {
		spec.Direction = direction
	}
	return spec
}

func decodeCreateInput(args map[string]interface{}) store.ShipmentInput {
	input := store.ShipmentInput{
		TrackingNumber:   stringArg(args, "trackingNumber"),
		Description:      stringArg(args, "description"),
		Carrier:          stringArg(args, "carrier"),
		OriginCity:       stringArg(args, "originCity"),
		OriginState:      stringArg(args, "originState"),
		DestinationCity:  stringArg(args, "destinationCity"),
		DestinationState: stringArg(args, "destinationState"),
	}
	if status, ok := args["status"].(model.ShipmentStatus); ok {
		input.Status = status
	}
	if priority, ok := args["priority"].(model.Priority); ok {
		input.Priority = priority
	}
	if shipmentType, ok := args["shipmentType"].(model.ShipmentType); ok {
		input.ShipmentType = shipmentType
	}
	if cost, ok := args["cost"].(float64); ok {
		input.Cost = cost
	}
	if estimated, ok := args["estimatedDelivery"].(time.Time); ok {
		input.EstimatedDelivery = estimated
	}
	return input
}

func decodeUpdateInput(args map[string]interface{}) store.ShipmentUpdate {
	update := store.ShipmentUpdate{
		Description:      stringPtrArg(args, "description"),
		Carrier:          stringPtrArg(args, "carrier"),
		OriginCity:       stringPtrArg(args, "originCity"),
		OriginState:      stringPtrArg(args, "originState"),
		DestinationCity:  stringPtrArg(args, "destinationCity"),
		DestinationState: stringPtrArg(args, "destinationState"),
		Cost:             floatPtrArg(args, "cost"),
	}
	if priority, ok := args["priority"].(model.Priority); ok {
		update.Priority = &priority
	}
	if shipmentType, ok := args["shipmentType"].(model.ShipmentType); ok {
		update.ShipmentType = &shipmentType
	}
	if estimated, ok := args["estimatedDelivery"].(time.Time); ok {
		update.EstimatedDelivery = &estimated
	}
	return update
}

func listArg(args map[string]interface{}, key string) []interface{} {
	values, _ := args[key].([]interface{})
	return values
}

func stringArg(args map[string]interface{}, key string) string {
	value, _ := args[key].(string)
	return value
}

func stringPtrArg(args map[string]interface{}, key string) *string {
	if value, ok := args[key].(string); ok {
		return &value
	}
	return nil
}

func boolPtrArg(args map[string]interface{}, key string) *bool {
	if value, ok := args[key].(bool); ok {
		return &value
	}
	return nil
}

func floatPtrArg(args map[string]interface{}, key string) *float64 {
	if value, ok := args[key].(float64); ok {
		return &value
	}
	return nil
}

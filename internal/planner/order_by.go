package planner

import "strings"

// SortField is a logical sort field exposed by the API.
type SortField string

const (
	SortCreatedAt         SortField = "CREATED_AT"
	SortUpdatedAt         SortField = "UPDATED_AT"
	SortEstimatedDelivery SortField = "ESTIMATED_DELIVERY"
	SortCost              SortField = "COST"
	SortStatus            SortField = "STATUS"
	SortPriority          SortField = "PRIORITY"
	SortCarrier           SortField = "CARRIER"
	SortTrackingNumber    SortField = "TRACKING_NUMBER"
)

// SortFields lists every logical sort field in declaration order.
var SortFields = []SortField{
	SortCreatedAt,
	SortUpdatedAt,
	SortEstimatedDelivery,
	SortCost,
	SortStatus,
	SortPriority,
	SortCarrier,
	SortTrackingNumber,
}

// defaultSortColumn is the physical fallback when the logical field is
// absent or outside the mapping table.
const defaultSortColumn = "created_at"

// sortColumns is the closed mapping from logical sort fields to physical
// column names. No dynamic field discovery: anything not listed here falls
// back to the default.
var sortColumns = map[SortField]string{
	SortCreatedAt:         "created_at",
	SortUpdatedAt:         "updated_at",
	SortEstimatedDelivery: "estimated_delivery",
	SortCost:              "cost",
	SortStatus:            "status",
	SortPriority:          "priority",
	SortCarrier:           "carrier",
	SortTrackingNumber:    "tracking_number",
}

// SortSpec pairs a logical field with a direction.
type SortSpec struct {
	Field     SortField
	Direction string // ASC or DESC
}

// ResolveSort maps a SortSpec to a physical ORDER BY clause. Unrecognized
// fields resolve to the creation-time column; unrecognized directions
// default to descending.
func ResolveSort(spec SortSpec) string {
	column, ok := sortColumns[spec.Field]
	if !ok {
		column = defaultSortColumn
	}

	direction := strings.ToUpper(spec.Direction)
	if direction != "ASC" && direction != "DESC" {
		direction = "DESC"
	}
	return column + " " + direction
}

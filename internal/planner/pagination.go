package planner

import (
	sq "github.com/Masterminds/squirrel"
)

const (
	// DefaultPageSize is used when the caller omits a page size.
	DefaultPageSize = 20
	// MaxPageSize caps the number of items fetched per page.
	MaxPageSize = 100
)

// ShipmentColumns is the full physical column list, in scan order. The
// store scans rows in exactly this order.
var ShipmentColumns = []string{
	"id",
	"tracking_number",
	"description",
	"status",
	"priority",
	"shipment_type",
	"carrier",
	"flagged",
	"origin_city",
	"origin_state",
	"destination_city",
	"destination_state",
	"cost",
	"estimated_delivery",
	"delivered_at",
	"created_by",
	"updated_by",
	"created_at",
	"updated_at",
}

// PageRequest carries 1-based page navigation parameters.
type PageRequest struct {
	Page     int
	PageSize int
}

// Normalize clamps the request into valid bounds: page has a floor of 1,
// size is clamped to [1, MaxPageSize] with DefaultPageSize when
// unspecified (zero).
func (r PageRequest) Normalize() PageRequest {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.PageSize == 0 {
		r.PageSize = DefaultPageSize
	}
	if r.PageSize < 1 {
		r.PageSize = 1
	}
	if r.PageSize > MaxPageSize {
		r.PageSize = MaxPageSize
	}
	return r
}

// Offset computes the row offset for the normalized request.
func (r PageRequest) Offset() int {
	return (r.Page - 1) * r.PageSize
}

// Statement is a built SQL statement with its bound arguments.
type Statement struct {
	SQL  string
	Args []interface{}
}

// QueryPlan holds the page-fetch and count statements for one shipment
// query. Both share the same predicate; they are executed concurrently and
// are not transactionally consistent with each other.
type QueryPlan struct {
	Select Statement
	Count  Statement
	Page   PageRequest
}

// PlanShipmentQuery compiles filter, sort, and page inputs into an
// executable query plan against the shipments table.
func PlanShipmentQuery(filter FilterSpec, sort SortSpec, page PageRequest) (*QueryPlan, error) {
	predicate, err := CompileFilter(filter)
	if err != nil {
		return nil, err
	}
	page = page.Normalize()

	selectBuilder := sq.Select(ShipmentColumns...).
		From("shipments").
		OrderBy(ResolveSort(sort)).
		Limit(uint64(page.PageSize)).
		Offset(uint64(page.Offset()))
	countBuilder := sq.Select("COUNT(*)").From("shipments")

	if predicate != nil {
		selectBuilder = selectBuilder.Where(predicate)
		countBuilder = countBuilder.Where(predicate)
	}

	selectSQL, selectArgs, err := selectBuilder.ToSql()
	if err != nil {
		return nil, err
	}
	countSQL, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, err
	}

	return &QueryPlan{
		Select: Statement{SQL: selectSQL, Args: selectArgs},
		Count:  Statement{SQL: countSQL, Args: countArgs},
		Page:   page,
	}, nil
}

// PageMeta is the navigation metadata computed from a total count and the
// normalized page request.
type PageMeta struct {
	CurrentPage     int
	PageSize        int
	TotalCount      int
	TotalPages      int
	HasNextPage     bool
	HasPreviousPage bool
}

// BuildPageMeta derives page metadata. totalPages is zero iff totalCount is
// zero; hasNextPage compares against totalPages and hasPreviousPage depends
// only on the current page number.
func BuildPageMeta(page PageRequest, totalCount int) PageMeta {
	page = page.Normalize()

	totalPages := 0
	if totalCount > 0 {
		totalPages = (totalCount + page.PageSize - 1) / page.PageSize
	}

	return PageMeta{
		CurrentPage:     page.Page,
		PageSize:        page.PageSize,
		TotalCount:      totalCount,
		TotalPages:      totalPages,
		HasNextPage:     page.Page < totalPages,
		HasPreviousPage: page.Page > 1,
	}
}

// Package planner translates API-level filter, sort, and page inputs into
// SQL query plans. It is pure: no I/O happens here, execution belongs to
// the store.
package planner

import (
	"fmt"
	"strings"
	"time"

	"shiptrack-graphql/internal/apperrors"
	"shiptrack-graphql/internal/model"

	sq "github.com/Masterminds/squirrel"
)

// FilterSpec is the structured filter description for shipment queries.
// Every field is optional; a zero value places no constraint on that
// dimension. Date bounds are carried as text and parsed during compilation.
type FilterSpec struct {
	Statuses         []model.ShipmentStatus
	Priorities       []model.Priority
	Types            []model.ShipmentType
	Carrier          string
	Flagged          *bool
	OriginCity       string
	OriginState      string
	DestinationCity  string
	DestinationState string
	MinCost          *float64
	MaxCost          *float64
	EstimatedFrom    string
	EstimatedUntil   string
	CreatedFrom      string
	CreatedUntil     string
	Search           string
}

// searchColumns is the fixed set of full-text indexed fields the free-text
// search term is matched against.
const searchColumns = "tracking_number, description, origin_city, destination_city, carrier"

// CompileFilter translates a FilterSpec into a conjunctive SQL predicate.
// An empty spec compiles to a nil predicate matching every record. The only
// failure mode is malformed date text, surfaced as InvalidInput.
func CompileFilter(spec FilterSpec) (sq.Sqlizer, error) {
	conditions := sq.And{}

	if len(spec.Statuses) > 0 {
		conditions = append(conditions, sq.Eq{"status": spec.Statuses})
	}
	if len(spec.Priorities) > 0 {
		conditions = append(conditions, sq.Eq{"priority": spec.Priorities})
	}
	if len(spec.Types) > 0 {
		conditions = append(conditions, sq.Eq{"shipment_type": spec.Types})
	}

	if spec.Carrier != "" {
		conditions = append(conditions, containsFold("carrier", spec.Carrier))
	}
	if spec.OriginCity != "" {
		conditions = append(conditions, containsFold("origin_city", spec.OriginCity))
	}
	if spec.OriginState != "" {
		conditions = append(conditions, containsFold("origin_state", spec.OriginState))
	}
	if spec.DestinationCity != "" {
		conditions = append(conditions, containsFold("destination_city", spec.DestinationCity))
	}
	if spec.DestinationState != "" {
		conditions = append(conditions, containsFold("destination_state", spec.DestinationState))
	}

	if spec.Flagged != nil {
		conditions = append(conditions, sq.Eq{"flagged": *spec.Flagged})
	}

	if spec.MinCost != nil {
		conditions = append(conditions, sq.GtOrEq{"cost": *spec.MinCost})
	}
	if spec.MaxCost != nil {
		conditions = append(conditions, sq.LtOrEq{"cost": *spec.MaxCost})
	}

	dateBounds := []struct {
		column string
		value  string
		lower  bool
	}{
		{"estimated_delivery", spec.EstimatedFrom, true},
		{"estimated_delivery", spec.EstimatedUntil, false},
		{"created_at", spec.CreatedFrom, true},
		{"created_at", spec.CreatedUntil, false},
	}
	for _, bound := range dateBounds {
		if bound.value == "" {
			continue
		}
		parsed, err := ParseDateBound(bound.value)
		if err != nil {
			return nil, err
		}
		if bound.lower {
			conditions = append(conditions, sq.GtOrEq{bound.column: parsed})
		} else {
			conditions = append(conditions, sq.LtOrEq{bound.column: parsed})
		}
	}

	if term := strings.TrimSpace(spec.Search); term != "" {
		conditions = append(conditions, sq.Expr(
			fmt.Sprintf("MATCH(%s) AGAINST(? IN NATURAL LANGUAGE MODE)", searchColumns), term,
		))
	}

	if len(conditions) == 0 {
		return nil, nil
	}
	return conditions, nil
}

// ParseDateBound parses a date/time filter bound. RFC 3339 timestamps and
// bare dates (2006-01-02) are accepted; anything else is a caller error.
func ParseDateBound(value string) (time.Time, error) {
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, nil
	}
	if parsed, err := time.Parse("2006-01-02", value); err == nil {
		return parsed, nil
	}
	return time.Time{}, apperrors.InvalidInput("invalid date filter value: %q", value)
}

// containsFold builds a case-insensitive substring match for a column.
func containsFold(column, value string) sq.Sqlizer {
	pattern := "%" + strings.ToLower(value) + "%"
	return sq.Expr(fmt.Sprintf("LOWER(%s) LIKE ?", column), pattern)
}

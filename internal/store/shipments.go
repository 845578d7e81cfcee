package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"shiptrack-graphql/internal/apperrors"
	"shiptrack-graphql/internal/model"
	"shiptrack-graphql/internal/planner"

	sq "github.com/Masterminds/squirrel"
	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
)

// mysqlDuplicateEntry is the server error number for unique key violations.
const mysqlDuplicateEntry = 1062

func scanShipment(scan func(...interface{}) error) (*model.Shipment, error) {
	var s model.Shipment
	var deliveredAt sql.NullTime
	err := scan(
		&s.ID,
		&s.TrackingNumber,
		&s.Description,
		&s.Status,
		&s.Priority,
		&s.ShipmentType,
		&s.Carrier,
		&s.Flagged,
		&s.OriginCity,
		&s.OriginState,
		&s.DestinationCity,
		&s.DestinationState,
		&s.Cost,
		&s.EstimatedDelivery,
		&deliveredAt,
		&s.CreatedBy,
		&s.UpdatedBy,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.DeliveredAt = nullableTime(deliveredAt)
	return &s, nil
}

// FindShipmentPage executes a query plan: the page fetch and the matching
// count run concurrently on separate pool connections. The two results are
// not transactionally consistent with each other; concurrent writes may be
// reflected differently in each. Either failure fails the whole page.
func (s *Store) FindShipmentPage(ctx context.Context, plan *planner.QueryPlan) ([]model.Shipment, int, error) {
	type countResult struct {
		total int
		err   error
	}
	countCh := make(chan countResult, 1)
	go func() {
		var total int
		err := s.db.QueryRowContext(ctx, plan.Count.SQL, plan.Count.Args...).Scan(&total)
		countCh <- countResult{total: total, err: err}
	}()

	shipments, fetchErr := s.queryShipments(ctx, plan.Select.SQL, plan.Select.Args...)
	count := <-countCh

	if fetchErr != nil {
		return nil, 0, apperrors.Upstream("failed to fetch shipments", fetchErr)
	}
	if count.err != nil {
		return nil, 0, apperrors.Upstream("failed to count shipments", count.err)
	}
	return shipments, count.total, nil
}

func (s *Store) queryShipments(ctx context.Context, query string, args ...interface{}) ([]model.Shipment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	shipments := []model.Shipment{}
	for rows.Next() {
		shipment, err := scanShipment(rows.Scan)
		if err != nil {
			return nil, err
		}
		shipments = append(shipments, *shipment)
	}
	return shipments, rows.Err()
}

// GetShipment fetches one shipment by its unique identifier. A missing
// record returns (nil, nil).
func (s *Store) GetShipment(ctx context.Context, id string) (*model.Shipment, error) {
	return s.getShipmentBy(ctx, sq.Eq{"id": id})
}

// GetShipmentByTrackingNumber fetches one shipment by its business key.
func (s *Store) GetShipmentByTrackingNumber(ctx context.Context, trackingNumber string) (*model.Shipment, error) {
	return s.getShipmentBy(ctx, sq.Eq{"tracking_number": trackingNumber})
}

func (s *Store) getShipmentBy(ctx context.Context, pred sq.Sqlizer) (*model.Shipment, error) {
	query, args, err := sq.Select(planner.ShipmentColumns...).From("shipments").Where(pred).ToSql()
	if err != nil {
		return nil, err
	}

	shipment, err := scanShipment(s.db.QueryRowContext(ctx, query, args...).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Upstream("failed to fetch shipment", err)
	}
	return shipment, nil
}

// ShipmentInput carries the caller-supplied fields for creating a shipment.
type ShipmentInput struct {
	TrackingNumber    string
	Description       string
	Status            model.ShipmentStatus
	Priority          model.Priority
	ShipmentType      model.ShipmentType
	Carrier           string
	OriginCity        string
	OriginState       string
	DestinationCity   string
	DestinationState  string
	Cost              float64
	EstimatedDelivery time.Time
}

// CreateShipment inserts a new shipment and returns the stored record.
// A duplicate tracking number is a caller error, not a storage failure.
func (s *Store) CreateShipment(ctx context.Context, input ShipmentInput, createdBy string) (*model.Shipment, error) {
	now := time.Now().UTC().Truncate(time.Second)
	shipment := model.Shipment{
		ID:                uuid.New().String(),
		TrackingNumber:    input.TrackingNumber,
		Description:       input.Description,
		Status:            input.Status,
		Priority:          input.Priority,
		ShipmentType:      input.ShipmentType,
		Carrier:           input.Carrier,
		OriginCity:        input.OriginCity,
		OriginState:       input.OriginState,
		DestinationCity:   input.DestinationCity,
		DestinationState:  input.DestinationState,
		Cost:              input.Cost,
		EstimatedDelivery: input.EstimatedDelivery,
		CreatedBy:         createdBy,
		UpdatedBy:         createdBy,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if shipment.Status == "" {
		shipment.Status = model.StatusPending
	}
	if shipment.Priority == "" {
		shipment.Priority = model.PriorityStandard
	}

	query, args, err := sq.Insert("shipments").
		Columns(planner.ShipmentColumns...).
		Values(
			shipment.ID,
			shipment.TrackingNumber,
			shipment.Description,
			shipment.Status,
			shipment.Priority,
			shipment.ShipmentType,
			shipment.Carrier,
			shipment.Flagged,
			shipment.OriginCity,
			shipment.OriginState,
			shipment.DestinationCity,
			shipment.DestinationState,
			shipment.Cost,
			shipment.EstimatedDelivery,
			nil,
			shipment.CreatedBy,
			shipment.UpdatedBy,
			shipment.CreatedAt,
			shipment.UpdatedAt,
		).ToSql()
	if err != nil {
		return nil, err
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
			return nil, apperrors.InvalidInput("tracking number %q already exists", input.TrackingNumber)
		}
		return nil, apperrors.Upstream("failed to create shipment", err)
	}
	return &shipment, nil
}

// ShipmentUpdate carries optional field updates; nil fields are untouched.
type ShipmentUpdate struct {
	Description       *string
	Priority          *model.Priority
	ShipmentType      *model.ShipmentType
	Carrier           *string
	OriginCity        *string
	OriginState       *string
	DestinationCity   *string
	DestinationState  *string
	Cost              *float64
	EstimatedDelivery *time.Time
}

// UpdateShipment applies a partial update and returns the refreshed record.
func (s *Store) UpdateShipment(ctx context.Context, id string, update ShipmentUpdate, updatedBy string) (*model.Shipment, error) {
	builder := sq.Update("shipments").
		Set("updated_by", updatedBy).
		Set("updated_at", time.Now().UTC().Truncate(time.Second)).
		Where(sq.Eq{"id": id})

	if update.Description != nil {
		builder = builder.Set("description", *update.Description)
	}
	if update.Priority != nil {
		builder = builder.Set("priority", *update.Priority)
	}
	if update.ShipmentType != nil {
		builder = builder.Set("shipment_type", *update.ShipmentType)
	}
	if update.Carrier != nil {
		builder = builder.Set("carrier", *update.Carrier)
	}
	if update.OriginCity != nil {
		builder = builder.Set("origin_city", *update.OriginCity)
	}
	if update.OriginState != nil {
		builder = builder.Set("origin_state", *update.OriginState)
	}
	if update.DestinationCity != nil {
		builder = builder.Set("destination_city", *update.DestinationCity)
	}
	if update.DestinationState != nil {
		builder = builder.Set("destination_state", *update.DestinationState)
	}
	if update.Cost != nil {
		builder = builder.Set("cost", *update.Cost)
	}
	if update.EstimatedDelivery != nil {
		builder = builder.Set("estimated_delivery", *update.EstimatedDelivery)
	}

	if err := s.execShipmentUpdate(ctx, builder, id); err != nil {
		return nil, err
	}
	return s.GetShipment(ctx, id)
}

// UpdateShipmentStatus transitions a shipment's status. Transitioning to
// DELIVERED records the delivery-completion timestamp as a side effect.
func (s *Store) UpdateShipmentStatus(ctx context.Context, id string, status model.ShipmentStatus, updatedBy string) (*model.Shipment, error) {
	builder := sq.Update("shipments").
		Set("status", status).
		Set("updated_by", updatedBy).
		Set("updated_at", time.Now().UTC().Truncate(time.Second)).
		Where(sq.Eq{"id": id})
	if status == model.StatusDelivered {
		builder = builder.Set("delivered_at", time.Now().UTC().Truncate(time.Second))
	}

	if err := s.execShipmentUpdate(ctx, builder, id); err != nil {
		return nil, err
	}
	return s.GetShipment(ctx, id)
}

// SetShipmentFlag flags or unflags a shipment.
func (s *Store) SetShipmentFlag(ctx context.Context, id string, flagged bool, updatedBy string) (*model.Shipment, error) {
	builder := sq.Update("shipments").
		Set("flagged", flagged).
		Set("updated_by", updatedBy).
		Set("updated_at", time.Now().UTC().Truncate(time.Second)).
		Where(sq.Eq{"id": id})

	if err := s.execShipmentUpdate(ctx, builder, id); err != nil {
		return nil, err
	}
	return s.GetShipment(ctx, id)
}

func (s *Store) execShipmentUpdate(ctx context.Context, builder sq.UpdateBuilder, id string) error {
	query, args, err := builder.ToSql()
	if err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.Upstream("failed to update shipment", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Upstream("failed to update shipment", err)
	}
	if affected == 0 {
		// RowsAffected is zero both for missing ids and no-op updates;
		// distinguish by checking existence.
		existing, err := s.GetShipment(ctx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return apperrors.NotFound("shipment %s not found", id)
		}
	}
	return nil
}

// BulkUpdateStatus transitions every listed shipment in one statement and
// returns the number of affected records. Transitioning to DELIVERED sets
// the delivery-completion timestamp on every affected record.
func (s *Store) BulkUpdateStatus(ctx context.Context, ids []string, status model.ShipmentStatus, updatedBy string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	builder := sq.Update("shipments").
		Set("status", status).
		Set("updated_by", updatedBy).
		Set("updated_at", time.Now().UTC().Truncate(time.Second)).
		Where(sq.Eq{"id": ids})
	if status == model.StatusDelivered {
		builder = builder.Set("delivered_at", time.Now().UTC().Truncate(time.Second))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, err
	}
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, apperrors.Upstream("failed to bulk update shipments", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Upstream("failed to bulk update shipments", err)
	}
	return int(affected), nil
}

// DeleteShipment removes a shipment permanently.
func (s *Store) DeleteShipment(ctx context.Context, id string) error {
	query, args, err := sq.Delete("shipments").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.Upstream("failed to delete shipment", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Upstream("failed to delete shipment", err)
	}
	if affected == 0 {
		return apperrors.NotFound("shipment %s not found", id)
	}
	return nil
}

// ShipmentStats aggregates status counts, flagged count, and cost totals
// across the whole collection.
func (s *Store) ShipmentStats(ctx context.Context) (*model.ShipmentStats, error) {
	stats := &model.ShipmentStats{
		CountsByStatus: make(map[model.ShipmentStatus]int),
	}

	rows, err := s.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM shipments GROUP BY status")
	if err != nil {
		return nil, apperrors.Upstream("failed to aggregate shipment statuses", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var status model.ShipmentStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, apperrors.Upstream("failed to aggregate shipment statuses", err)
		}
		stats.CountsByStatus[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Upstream("failed to aggregate shipment statuses", err)
	}

	var avgCost, totalCost sql.NullFloat64
	err = s.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(flagged), 0), AVG(cost), SUM(cost) FROM shipments",
	).Scan(&stats.FlaggedCount, &avgCost, &totalCost)
	if err != nil {
		return nil, apperrors.Upstream("failed to aggregate shipment costs", err)
	}
	stats.AverageCost = avgCost.Float64
	stats.TotalCost = totalCost.Float64

	return stats, nil
}

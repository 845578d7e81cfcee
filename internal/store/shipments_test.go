package store

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shiptrack-graphql/internal/apperrors"
	"shiptrack-graphql/internal/model"
	"shiptrack-graphql/internal/planner"
)

func newTestStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewWithDB(db), mock
}

func shipmentRow(id, trackingNumber string) []driverValue {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	return []driverValue{
		id, trackingNumber, "pallet of servers",
		string(model.StatusInTransit), string(model.PriorityHigh), string(model.TypeFreight),
		"Maersk", false,
		"Oakland", "CA", "Memphis", "TN",
		1250.0, now.Add(72 * time.Hour), nil,
		"u-1", "u-1", now, now,
	}
}

type driverValue = driver.Value

func addShipmentRows(rows *sqlmock.Rows, values ...[]driverValue) *sqlmock.Rows {
	for _, v := range values {
		rows.AddRow(v...)
	}
	return rows
}

func emptyShipmentRows() *sqlmock.Rows {
	return sqlmock.NewRows(planner.ShipmentColumns)
}

func TestFindShipmentPage(t *testing.T) {
	st, mock := newTestStore(t)
	// The fetch and count run concurrently, so arrival order is not fixed.
	mock.MatchExpectationsInOrder(false)

	plan, err := planner.PlanShipmentQuery(planner.FilterSpec{}, planner.SortSpec{}, planner.PageRequest{Page: 2, PageSize: 2})
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta(plan.Select.SQL)).
		WillReturnRows(addShipmentRows(emptyShipmentRows(),
			shipmentRow("s-3", "TRK-3"),
			shipmentRow("s-4", "TRK-4"),
		))
	mock.ExpectQuery(regexp.QuoteMeta(plan.Count.SQL)).
		WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(45))

	shipments, total, err := st.FindShipmentPage(context.Background(), plan)
	require.NoError(t, err)
	assert.Equal(t, 45, total)
	require.Len(t, shipments, 2)
	assert.Equal(t, "s-3", shipments[0].ID)
	assert.Equal(t, "TRK-4", shipments[1].TrackingNumber)
	assert.Nil(t, shipments[0].DeliveredAt)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindShipmentPage_CountFailure(t *testing.T) {
	st, mock := newTestStore(t)
	mock.MatchExpectationsInOrder(false)

	plan, err := planner.PlanShipmentQuery(planner.FilterSpec{}, planner.SortSpec{}, planner.PageRequest{})
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta(plan.Select.SQL)).WillReturnRows(emptyShipmentRows())
	mock.ExpectQuery(regexp.QuoteMeta(plan.Count.SQL)).WillReturnError(errors.New("server has gone away"))

	_, _, err = st.FindShipmentPage(context.Background(), plan)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeUpstreamFailure, apperrors.CodeOf(err))
}

func TestGetShipment(t *testing.T) {
	st, mock := newTestStore(t)

	mock.ExpectQuery("SELECT .* FROM shipments WHERE id = ?").
		WithArgs("s-1").
		WillReturnRows(addShipmentRows(emptyShipmentRows(), shipmentRow("s-1", "TRK-1")))

	shipment, err := st.GetShipment(context.Background(), "s-1")
	require.NoError(t, err)
	require.NotNil(t, shipment)
	assert.Equal(t, "TRK-1", shipment.TrackingNumber)
	assert.Equal(t, model.StatusInTransit, shipment.Status)
}

func TestGetShipment_Missing(t *testing.T) {
	st, mock := newTestStore(t)

	mock.ExpectQuery("SELECT .* FROM shipments WHERE id = ?").
		WithArgs("nope").
		WillReturnRows(emptyShipmentRows())

	shipment, err := st.GetShipment(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, shipment)
}

func TestGetShipmentByTrackingNumber(t *testing.T) {
	st, mock := newTestStore(t)

	mock.ExpectQuery("SELECT .* FROM shipments WHERE tracking_number = ?").
		WithArgs("TRK-9").
		WillReturnRows(addShipmentRows(emptyShipmentRows(), shipmentRow("s-9", "TRK-9")))

	shipment, err := st.GetShipmentByTrackingNumber(context.Background(), "TRK-9")
	require.NoError(t, err)
	require.NotNil(t, shipment)
	assert.Equal(t, "s-9", shipment.ID)
}

func TestCreateShipment_Defaults(t *testing.T) {
	st, mock := newTestStore(t)

	mock.ExpectExec("INSERT INTO shipments").
		WillReturnResult(sqlmock.NewResult(0, 1))

	shipment, err := st.CreateShipment(context.Background(), ShipmentInput{
		TrackingNumber:    "TRK-NEW",
		Description:       "crate of manuals",
		ShipmentType:      model.TypeParcel,
		Carrier:           "UPS",
		OriginCity:        "Reno",
		OriginState:       "NV",
		DestinationCity:   "Boise",
		DestinationState:  "ID",
		Cost:              42.5,
		EstimatedDelivery: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
	}, "u-7")
	require.NoError(t, err)

	assert.NotEmpty(t, shipment.ID)
	assert.Equal(t, model.StatusPending, shipment.Status)
	assert.Equal(t, model.PriorityStandard, shipment.Priority)
	assert.Equal(t, "u-7", shipment.CreatedBy)
	assert.Equal(t, "u-7", shipment.UpdatedBy)
	assert.Nil(t, shipment.DeliveredAt)
}

func TestCreateShipment_DuplicateTrackingNumber(t *testing.T) {
	st, mock := newTestStore(t)

	mock.ExpectExec("INSERT INTO shipments").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'TRK-DUP'"})

	_, err := st.CreateShipment(context.Background(), ShipmentInput{TrackingNumber: "TRK-DUP"}, "u-1")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.CodeOf(err))
	assert.Contains(t, err.Error(), "TRK-DUP")
}

func TestUpdateShipmentStatus_DeliveredSetsDeliveredAt(t *testing.T) {
	st, mock := newTestStore(t)

	mock.ExpectExec(regexp.QuoteMeta(
		"UPDATE shipments SET status = ?, updated_by = ?, updated_at = ?, delivered_at = ? WHERE id = ?",
	)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT .* FROM shipments WHERE id = ?").
		WillReturnRows(addShipmentRows(emptyShipmentRows(), shipmentRow("s-1", "TRK-1")))

	_, err := st.UpdateShipmentStatus(context.Background(), "s-1", model.StatusDelivered, "u-1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateShipmentStatus_NonDeliveredLeavesDeliveredAt(t *testing.T) {
	st, mock := newTestStore(t)

	mock.ExpectExec(regexp.QuoteMeta(
		"UPDATE shipments SET status = ?, updated_by = ?, updated_at = ? WHERE id = ?",
	)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT .* FROM shipments WHERE id = ?").
		WillReturnRows(addShipmentRows(emptyShipmentRows(), shipmentRow("s-1", "TRK-1")))

	_, err := st.UpdateShipmentStatus(context.Background(), "s-1", model.StatusDelayed, "u-1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateShipment_MissingRecord(t *testing.T) {
	st, mock := newTestStore(t)

	mock.ExpectExec("UPDATE shipments SET").
		WillReturnResult(sqlmock.NewResult(0, 0))
	// Zero rows affected triggers an existence check.
	mock.ExpectQuery("SELECT .* FROM shipments WHERE id = ?").
		WillReturnRows(emptyShipmentRows())

	description := "renamed"
	_, err := st.UpdateShipment(context.Background(), "gone", ShipmentUpdate{Description: &description}, "u-1")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))
}

func TestSetShipmentFlag(t *testing.T) {
	st, mock := newTestStore(t)

	mock.ExpectExec(regexp.QuoteMeta(
		"UPDATE shipments SET flagged = ?, updated_by = ?, updated_at = ? WHERE id = ?",
	)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT .* FROM shipments WHERE id = ?").
		WillReturnRows(addShipmentRows(emptyShipmentRows(), shipmentRow("s-1", "TRK-1")))

	_, err := st.SetShipmentFlag(context.Background(), "s-1", true, "u-2")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkUpdateStatus(t *testing.T) {
	st, mock := newTestStore(t)

	mock.ExpectExec(regexp.QuoteMeta(
		"UPDATE shipments SET status = ?, updated_by = ?, updated_at = ?, delivered_at = ? WHERE id IN (?,?,?)",
	)).WillReturnResult(sqlmock.NewResult(0, 2))

	updated, err := st.BulkUpdateStatus(context.Background(), []string{"a", "b", "gone"}, model.StatusDelivered, "admin-1")
	require.NoError(t, err)
	// Unknown ids are silently skipped by the IN predicate.
	assert.Equal(t, 2, updated)
}

func TestBulkUpdateStatus_EmptyIDs(t *testing.T) {
	st, mock := newTestStore(t)

	updated, err := st.BulkUpdateStatus(context.Background(), nil, model.StatusDelayed, "admin-1")
	require.NoError(t, err)
	assert.Zero(t, updated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteShipment(t *testing.T) {
	st, mock := newTestStore(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM shipments WHERE id = ?")).
		WithArgs("s-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, st.DeleteShipment(context.Background(), "s-1"))
}

func TestDeleteShipment_Missing(t *testing.T) {
	st, mock := newTestStore(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM shipments WHERE id = ?")).
		WithArgs("gone").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := st.DeleteShipment(context.Background(), "gone")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))
}

func TestShipmentStats(t *testing.T) {
	st, mock := newTestStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT status, COUNT(*) FROM shipments GROUP BY status")).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow(string(model.StatusPending), 3).
			AddRow(string(model.StatusDelivered), 12))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(SUM(flagged), 0), AVG(cost), SUM(cost) FROM shipments")).
		WillReturnRows(sqlmock.NewRows([]string{"flagged", "avg", "sum"}).AddRow(4, 310.5, 4657.5))

	stats, err := st.ShipmentStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.CountsByStatus[model.StatusPending])
	assert.Equal(t, 12, stats.CountsByStatus[model.StatusDelivered])
	assert.Zero(t, stats.CountsByStatus[model.StatusDelayed])
	assert.Equal(t, 4, stats.FlaggedCount)
	assert.Equal(t, 310.5, stats.AverageCost)
	assert.Equal(t, 4657.5, stats.TotalCost)
}

func TestShipmentStats_EmptyTable(t *testing.T) {
	st, mock := newTestStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT status, COUNT(*) FROM shipments GROUP BY status")).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(SUM(flagged), 0), AVG(cost), SUM(cost) FROM shipments")).
		WillReturnRows(sqlmock.NewRows([]string{"flagged", "avg", "sum"}).AddRow(0, nil, nil))

	stats, err := st.ShipmentStats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.FlaggedCount)
	assert.Zero(t, stats.AverageCost)
	assert.Zero(t, stats.TotalCost)
}

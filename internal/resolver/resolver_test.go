package resolver

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shiptrack-graphql/internal/auth"
	"shiptrack-graphql/internal/cursor"
	"shiptrack-graphql/internal/loader"
	"shiptrack-graphql/internal/model"
	"shiptrack-graphql/internal/planner"
	"shiptrack-graphql/internal/store"
)

func newTestSchema(t *testing.T) (graphql.Schema, *store.Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	st := store.NewWithDB(db)
	schema, err := NewResolver(st, nil, nil).BuildSchema()
	require.NoError(t, err)
	return schema, st, mock
}

func requestContext(st *store.Store, role model.Role) context.Context {
	ctx := auth.WithIdentity(context.Background(), auth.Identity{
		UserID: "u-1",
		Email:  "worker@example.com",
		Role:   role,
	})
	return loader.WithLoader(ctx, loader.NewUserLoader(st))
}

func shipmentTestRow(id, trackingNumber, createdBy, updatedBy string) []driver.Value {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	return []driver.Value{
		id, trackingNumber, "pallet of servers",
		string(model.StatusInTransit), string(model.PriorityHigh), string(model.TypeFreight),
		"Maersk", false,
		"Oakland", "CA", "Memphis", "TN",
		1250.0, now.Add(72 * time.Hour), nil,
		createdBy, updatedBy, now, now,
	}
}

func execute(t *testing.T, schema graphql.Schema, ctx context.Context, query string) *graphql.Result {
	t.Helper()
	return graphql.Do(graphql.Params{
		Schema:        schema,
		RequestString: query,
		Context:       ctx,
	})
}

func errorCode(t *testing.T, result *graphql.Result) string {
	t.Helper()
	require.NotEmpty(t, result.Errors)
	extensions := result.Errors[0].Extensions
	require.NotNil(t, extensions)
	code, _ := extensions["code"].(string)
	return code
}

func TestBuildSchema(t *testing.T) {
	_, _, _ = newTestSchema(t)
}

func TestShipmentsQuery(t *testing.T) {
	schema, st, mock := newTestSchema(t)
	mock.MatchExpectationsInOrder(false)

	plan, err := planner.PlanShipmentQuery(
		planner.FilterSpec{Statuses: []model.ShipmentStatus{model.StatusInTransit}},
		planner.SortSpec{Field: planner.SortCost, Direction: "ASC"},
		planner.PageRequest{Page: 2, PageSize: 2},
	)
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta(plan.Select.SQL)).
		WillReturnRows(sqlmock.NewRows(planner.ShipmentColumns).
			AddRow(shipmentTestRow("s-3", "TRK-3", "u-1", "u-1")...).
			AddRow(shipmentTestRow("s-4", "TRK-4", "u-1", "u-1")...))
	mock.ExpectQuery(regexp.QuoteMeta(plan.Count.SQL)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(45))

	result := execute(t, schema, requestContext(st, model.RoleEmployee), `{
		shipments(
			filter: {statuses: [IN_TRANSIT]}
			sort: {field: COST, direction: ASC}
			page: 2
			pageSize: 2
		) {
			nodes { id trackingNumber status }
			edges { cursor }
			pageInfo { currentPage pageSize totalCount totalPages hasNextPage hasPreviousPage }
		}
	}`)
	require.Empty(t, result.Errors)

	data := result.Data.(map[string]interface{})
	page := data["shipments"].(map[string]interface{})

	nodes := page["nodes"].([]interface{})
	require.Len(t, nodes, 2)
	first := nodes[0].(map[string]interface{})
	assert.Equal(t, "s-3", first["id"])
	assert.Equal(t, "TRK-3", first["trackingNumber"])
	assert.Equal(t, "IN_TRANSIT", first["status"])

	edges := page["edges"].([]interface{})
	require.Len(t, edges, 2)
	typeName, id, err := cursor.Decode(edges[0].(map[string]interface{})["cursor"].(string))
	require.NoError(t, err)
	assert.Equal(t, "Shipment", typeName)
	assert.Equal(t, "s-3", id)

	pageInfo := page["pageInfo"].(map[string]interface{})
	assert.Equal(t, 2, pageInfo["currentPage"])
	assert.Equal(t, 2, pageInfo["pageSize"])
	assert.Equal(t, 45, pageInfo["totalCount"])
	assert.Equal(t, 23, pageInfo["totalPages"])
	assert.Equal(t, true, pageInfo["hasNextPage"])
	assert.Equal(t, true, pageInfo["hasPreviousPage"])
}

func TestShipmentsQuery_Unauthenticated(t *testing.T) {
	schema, st, _ := newTestSchema(t)

	// Loader present, identity absent.
	ctx := loader.WithLoader(context.Background(), loader.NewUserLoader(st))
	result := execute(t, schema, ctx, `{ shipments { pageInfo { totalCount } } }`)

	assert.Equal(t, "UNAUTHENTICATED", errorCode(t, result))
}

func TestShipmentQuery_NotFound(t *testing.T) {
	schema, st, mock := newTestSchema(t)

	mock.ExpectQuery("SELECT .* FROM shipments WHERE id = ?").
		WillReturnRows(sqlmock.NewRows(planner.ShipmentColumns))

	result := execute(t, schema, requestContext(st, model.RoleEmployee),
		`{ shipment(id: "ghost") { id } }`)

	assert.Equal(t, "NOT_FOUND", errorCode(t, result))
}

func TestShipmentQuery_ResolvesUserRefsInOneBatch(t *testing.T) {
	schema, st, mock := newTestSchema(t)
	mock.MatchExpectationsInOrder(false)

	plan, err := planner.PlanShipmentQuery(planner.FilterSpec{}, planner.SortSpec{}, planner.PageRequest{})
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta(plan.Select.SQL)).
		WillReturnRows(sqlmock.NewRows(planner.ShipmentColumns).
			AddRow(shipmentTestRow("s-1", "TRK-1", "u-1", "u-2")...).
			AddRow(shipmentTestRow("s-2", "TRK-2", "u-2", "u-1")...))
	mock.ExpectQuery(regexp.QuoteMeta(plan.Count.SQL)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	// Four user references, two unique ids, exactly one users query.
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id IN (?,?)")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "role", "created_at"}).
			AddRow("u-1", "a@example.com", "Alice", "EMPLOYEE", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)).
			AddRow("u-2", "b@example.com", "Bob", "ADMIN", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))

	result := execute(t, schema, requestContext(st, model.RoleEmployee), `{
		shipments {
			nodes {
				id
				createdBy { id name }
				updatedBy { id name }
			}
		}
	}`)
	require.Empty(t, result.Errors)
	assert.NoError(t, mock.ExpectationsWereMet())

	nodes := result.Data.(map[string]interface{})["shipments"].(map[string]interface{})["nodes"].([]interface{})
	first := nodes[0].(map[string]interface{})
	createdBy := first["createdBy"].(map[string]interface{})
	assert.Equal(t, "Alice", createdBy["name"])
	updatedBy := first["updatedBy"].(map[string]interface{})
	assert.Equal(t, "Bob", updatedBy["name"])
}

func TestUsersQuery_RequiresAdmin(t *testing.T) {
	schema, st, mock := newTestSchema(t)

	result := execute(t, schema, requestContext(st, model.RoleEmployee), `{ users { id } }`)
	assert.Equal(t, "FORBIDDEN", errorCode(t, result))

	mock.ExpectQuery("FROM users ORDER BY created_at ASC").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "role", "created_at"}).
			AddRow("u-9", "admin@example.com", "Root", "ADMIN", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))

	result = execute(t, schema, requestContext(st, model.RoleAdmin), `{ users { id role } }`)
	require.Empty(t, result.Errors)
	users := result.Data.(map[string]interface{})["users"].([]interface{})
	require.Len(t, users, 1)
	assert.Equal(t, "ADMIN", users[0].(map[string]interface{})["role"])
}

func TestMeQuery(t *testing.T) {
	schema, st, mock := newTestSchema(t)

	mock.ExpectQuery("FROM users WHERE id = ?").
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "role", "created_at"}).
			AddRow("u-1", "worker@example.com", "Worker", "EMPLOYEE", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))

	result := execute(t, schema, requestContext(st, model.RoleEmployee), `{ me { id email } }`)
	require.Empty(t, result.Errors)
	me := result.Data.(map[string]interface{})["me"].(map[string]interface{})
	assert.Equal(t, "worker@example.com", me["email"])
}

func TestShipmentStatsQuery(t *testing.T) {
	schema, st, mock := newTestSchema(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT status, COUNT(*) FROM shipments GROUP BY status")).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("PENDING", 3).
			AddRow("DELIVERED", 12))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(SUM(flagged), 0), AVG(cost), SUM(cost) FROM shipments")).
		WillReturnRows(sqlmock.NewRows([]string{"flagged", "avg", "sum"}).AddRow(4, 310.5, 4657.5))

	result := execute(t, schema, requestContext(st, model.RoleEmployee), `{
		shipmentStats {
			countsByStatus { status count }
			flaggedCount
			averageCost
			totalCost
		}
	}`)
	require.Empty(t, result.Errors)

	stats := result.Data.(map[string]interface{})["shipmentStats"].(map[string]interface{})
	counts := stats["countsByStatus"].([]interface{})
	// Zero-filled buckets for every status, in declaration order.
	require.Len(t, counts, len(model.ShipmentStatuses))
	first := counts[0].(map[string]interface{})
	assert.Equal(t, "PENDING", first["status"])
	assert.Equal(t, 3, first["count"])
	assert.Equal(t, 4, stats["flaggedCount"])
	assert.Equal(t, 310.5, stats["averageCost"])
}

func TestUpdateShipmentStatusMutation(t *testing.T) {
	schema, st, mock := newTestSchema(t)

	mock.ExpectExec(regexp.QuoteMeta(
		"UPDATE shipments SET status = ?, updated_by = ?, updated_at = ?, delivered_at = ? WHERE id = ?",
	)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT .* FROM shipments WHERE id = ?").
		WillReturnRows(sqlmock.NewRows(planner.ShipmentColumns).
			AddRow(shipmentTestRow("s-1", "TRK-1", "u-1", "u-1")...))

	result := execute(t, schema, requestContext(st, model.RoleEmployee), `mutation {
		updateShipmentStatus(id: "s-1", status: DELIVERED) { id status }
	}`)
	require.Empty(t, result.Errors)
	updated := result.Data.(map[string]interface{})["updateShipmentStatus"].(map[string]interface{})
	assert.Equal(t, "s-1", updated["id"])
}

func TestBulkUpdateMutation_AdminOnly(t *testing.T) {
	schema, st, mock := newTestSchema(t)

	result := execute(t, schema, requestContext(st, model.RoleEmployee), `mutation {
		bulkUpdateShipmentStatus(ids: ["a", "b"], status: DELAYED) { updatedCount }
	}`)
	assert.Equal(t, "FORBIDDEN", errorCode(t, result))

	mock.ExpectExec("UPDATE shipments SET status = ").
		WillReturnResult(sqlmock.NewResult(0, 2))

	result = execute(t, schema, requestContext(st, model.RoleAdmin), `mutation {
		bulkUpdateShipmentStatus(ids: ["a", "b"], status: DELAYED) { updatedCount }
	}`)
	require.Empty(t, result.Errors)
	payload := result.Data.(map[string]interface{})["bulkUpdateShipmentStatus"].(map[string]interface{})
	assert.Equal(t, 2, payload["updatedCount"])
}

func TestDeleteShipmentMutation_AdminOnly(t *testing.T) {
	schema, st, mock := newTestSchema(t)

	result := execute(t, schema, requestContext(st, model.RoleEmployee), `mutation {
		deleteShipment(id: "s-1") { success }
	}`)
	assert.Equal(t, "FORBIDDEN", errorCode(t, result))

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM shipments WHERE id = ?")).
		WithArgs("s-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	result = execute(t, schema, requestContext(st, model.RoleAdmin), `mutation {
		deleteShipment(id: "s-1") { id success }
	}`)
	require.Empty(t, result.Errors)
	payload := result.Data.(map[string]interface{})["deleteShipment"].(map[string]interface{})
	assert.Equal(t, true, payload["success"])
}

func TestCreateShipmentMutation(t *testing.T) {
	schema, st, mock := newTestSchema(t)

	mock.ExpectExec("INSERT INTO shipments").
		WillReturnResult(sqlmock.NewResult(0, 1))

	result := execute(t, schema, requestContext(st, model.RoleEmployee), `mutation {
		createShipment(input: {
			trackingNumber: "TRK-NEW"
			description: "crate of manuals"
			shipmentType: PARCEL
			carrier: "UPS"
			originCity: "Reno"
			originState: "NV"
			destinationCity: "Boise"
			destinationState: "ID"
			cost: 42.5
			estimatedDelivery: "2026-09-01T00:00:00Z"
		}) { trackingNumber status priority }
	}`)
	require.Empty(t, result.Errors)

	created := result.Data.(map[string]interface{})["createShipment"].(map[string]interface{})
	assert.Equal(t, "TRK-NEW", created["trackingNumber"])
	assert.Equal(t, "PENDING", created["status"])
	assert.Equal(t, "STANDARD", created["priority"])
}

func TestShipmentsQuery_InvalidDateFilter(t *testing.T) {
	schema, st, _ := newTestSchema(t)

	result := execute(t, schema, requestContext(st, model.RoleEmployee), `{
		shipments(filter: {createdFrom: "whenever"}) { pageInfo { totalCount } }
	}`)
	assert.Equal(t, "BAD_USER_INPUT", errorCode(t, result))
}

package store_test

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"silant-backend/internal/authz"
	"silant-backend/internal/model"
	"silant-backend/internal/store"
	"silant-backend/internal/testutil"
)

// A helper function to create a mock database connection.
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)

	return gormDB, mock
}

func newSeededStore(t *testing.T) (store.Store, *testutil.Fixture) {
	s := store.NewGormStore(testutil.NewDB(t))
	return s, testutil.Seed(t, s)
}

func serials(rows []model.Machine) []string {
	out := make([]string, len(rows))
	for i, m := range rows {
		out[i] = m.SerialNumber
	}
	return out
}

func TestListMachinesScope(t *testing.T) {
	s, f := newSeededStore(t)
	ctx := context.Background()

	testCases := []struct {
		name  string
		actor *model.User
		want  []string
	}{
		{"manager sees all", f.Manager, []string{"0001", "0002"}},
		{"client sees owned", f.Client, []string{"0001"}},
		{"other client sees owned", f.OtherClient, []string{"0002"}},
		{"service company sees serviced", f.Service, []string{"0001"}},
		{"unknown role sees nothing", &model.User{ID: f.Manager.ID, Role: "AUDITOR"}, []string{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rows, count, err := s.ListMachines(ctx, authz.ScopeFor(tc.actor), store.ListQuery{})
			require.NoError(t, err)
			assert.Equal(t, int64(len(tc.want)), count)
			assert.Equal(t, tc.want, serials(rows))
		})
	}
}

func TestListRecordsScopeThroughMachine(t *testing.T) {
	s, f := newSeededStore(t)
	ctx := context.Background()

	mts, count, err := s.ListMaintenances(ctx, authz.ScopeFor(f.Client), store.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	require.Len(t, mts, 1)
	assert.Equal(t, f.Maintenance.ID, mts[0].ID)
	assert.Equal(t, "0001", mts[0].Machine.SerialNumber)
	assert.Equal(t, "TO-1", mts[0].ServiceType.Name)

	cs, count, err := s.ListComplaints(ctx, authz.ScopeFor(f.OtherService), store.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	require.Len(t, cs, 1)
	assert.Equal(t, f.OtherComplaint.ID, cs[0].ID)

	cs, count, err = s.ListComplaints(ctx, authz.ScopeFor(f.Manager), store.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.Len(t, cs, 2)
}

func TestGetOutsideScopeIsNotFound(t *testing.T) {
	s, f := newSeededStore(t)
	ctx := context.Background()

	_, err := s.GetMachine(ctx, authz.ScopeFor(f.Client), f.OtherMachine.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.GetMaintenance(ctx, authz.ScopeFor(f.Service), f.OtherMaintenance.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.GetComplaint(ctx, authz.ScopeFor(nil), f.Complaint.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	m, err := s.GetMachine(ctx, authz.ScopeFor(f.Client), f.Machine.ID)
	require.NoError(t, err)
	assert.Equal(t, "client", m.Client.Username)
	assert.Equal(t, "PD3.0", m.TechniqueModel.Name)
}

func TestListMachinesFiltersAndOrdering(t *testing.T) {
	s, f := newSeededStore(t)
	ctx := context.Background()
	all := authz.ScopeFor(f.Manager)

	other := &model.CatalogEntry{Kind: model.KindEngineModel, Name: "Deutz TD2.9"}
	require.NoError(t, s.UpsertCatalogEntry(ctx, other))
	third := testutil.AddMachine(t, s, f, "0003", f.Client, f.Service, model.NewDate(2021, time.May, 1))
	third.EngineModelID = other.ID
	require.NoError(t, s.UpdateMachine(ctx, third))
	assert.Equal(t, "Deutz TD2.9", third.EngineModel.Name)

	rows, _, err := s.ListMachines(ctx, all, store.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, []string{"0003", "0001", "0002"}, serials(rows), "default order is by shipment date")

	rows, _, err = s.ListMachines(ctx, all, store.ListQuery{Orders: []store.Order{{Field: "serial_number", Desc: true}}})
	require.NoError(t, err)
	assert.Equal(t, []string{"0003", "0002", "0001"}, serials(rows))

	rows, count, err := s.ListMachines(ctx, all, store.ListQuery{
		Filters: []store.Filter{{Field: "engine_model__name", Lookup: store.LookupIContains, Value: "deutz"}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, []string{"0003"}, serials(rows))

	rows, _, err = s.ListMachines(ctx, all, store.ListQuery{
		Filters: []store.Filter{{Field: "engine_model__name", Lookup: store.LookupExact, Value: "Kubota D1803"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"0001", "0002"}, serials(rows))

	rows, count, err = s.ListMachines(ctx, authz.ScopeFor(f.OtherClient), store.ListQuery{
		Filters: []store.Filter{{Field: "engine_model__name", Lookup: store.LookupIContains, Value: "deutz"}},
	})
	require.NoError(t, err)
	assert.Zero(t, count, "filters never widen the scope")
	assert.Empty(t, rows)

	rows, count, err = s.ListMachines(ctx, all, store.ListQuery{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	assert.Equal(t, []string{"0002"}, serials(rows))
}

func TestIContainsMatchesWildcardsLiterally(t *testing.T) {
	s, f := newSeededStore(t)
	ctx := context.Background()
	all := authz.ScopeFor(f.Manager)

	odd := &model.CatalogEntry{Kind: model.KindEngineModel, Name: `Deutz_TD 50%\x`}
	require.NoError(t, s.UpsertCatalogEntry(ctx, odd))
	third := testutil.AddMachine(t, s, f, "0003", f.Client, f.Service, model.NewDate(2021, time.May, 1))
	third.EngineModelID = odd.ID
	require.NoError(t, s.UpdateMachine(ctx, third))

	testCases := []struct {
		value string
		want  []string
	}{
		{"kubota", []string{"0001", "0002"}},
		{"Kubota_D", nil},
		{"z_td", []string{"0003"}},
		{"%", []string{"0003"}},
		{"50%", []string{"0003"}},
		{`\`, []string{"0003"}},
		{"_", []string{"0003"}},
	}

	for _, tc := range testCases {
		t.Run(tc.value, func(t *testing.T) {
			rows, count, err := s.ListMachines(ctx, all, store.ListQuery{
				Filters: []store.Filter{{Field: "engine_model__name", Lookup: store.LookupIContains, Value: tc.value}},
			})
			require.NoError(t, err)
			assert.Equal(t, int64(len(tc.want)), count)
			if tc.want == nil {
				assert.Empty(t, rows)
				return
			}
			assert.ElementsMatch(t, tc.want, serials(rows))
		})
	}
}

func TestListMaintenancesBySerialNumber(t *testing.T) {
	s, f := newSeededStore(t)

	rows, count, err := s.ListMaintenances(context.Background(), authz.ScopeFor(f.Manager), store.ListQuery{
		Filters: []store.Filter{{Field: "machine__serial_number", Lookup: store.LookupExact, Value: "0002"}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	require.Len(t, rows, 1)
	assert.Equal(t, f.OtherMaintenance.ID, rows[0].ID)
}

func TestDeleteMachineCascades(t *testing.T) {
	s, f := newSeededStore(t)
	ctx := context.Background()
	all := authz.ScopeFor(f.Manager)

	require.NoError(t, s.DeleteMachine(ctx, f.Machine.ID))

	_, err := s.GetMaintenance(ctx, all, f.Maintenance.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.GetComplaint(ctx, all, f.Complaint.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.GetComplaint(ctx, all, f.OtherComplaint.ID)
	assert.NoError(t, err)

	assert.ErrorIs(t, s.DeleteMachine(ctx, f.Machine.ID), store.ErrNotFound)
}

func TestDeleteReferencedIsBlocked(t *testing.T) {
	s, f := newSeededStore(t)
	ctx := context.Background()

	err := s.DeleteCatalogEntry(ctx, model.KindTechniqueModel, "PD3.0")
	assert.ErrorIs(t, err, store.ErrReferenced)

	err = s.DeleteUser(ctx, f.Client.Username)
	assert.ErrorIs(t, err, store.ErrReferenced)

	unused := &model.CatalogEntry{Kind: model.KindTechniqueModel, Name: "PD5.0"}
	require.NoError(t, s.UpsertCatalogEntry(ctx, unused))
	require.NoError(t, s.DeleteCatalogEntry(ctx, model.KindTechniqueModel, "PD5.0"))
	assert.ErrorIs(t, s.DeleteCatalogEntry(ctx, model.KindTechniqueModel, "PD5.0"), store.ErrNotFound)

	assert.NoError(t, s.DeleteUser(ctx, f.Manager.Username))
}

func TestCreateMachineDuplicateSerial(t *testing.T) {
	s, f := newSeededStore(t)
	ctx := context.Background()

	taken, err := s.SerialNumberTaken(ctx, "0001", 0)
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = s.SerialNumberTaken(ctx, "0001", f.Machine.ID)
	require.NoError(t, err)
	assert.False(t, taken, "a machine does not collide with itself")

	dup := *f.OtherMachine
	dup.ID = 0
	dup.SerialNumber = "0001"
	err = s.CreateMachine(ctx, &dup)
	assert.ErrorIs(t, err, store.ErrDuplicate)
}

func TestTechnicalSpec(t *testing.T) {
	s, _ := newSeededStore(t)
	ctx := context.Background()

	spec, err := s.TechnicalSpec(ctx, "0002")
	require.NoError(t, err)
	assert.Equal(t, model.TechnicalSpec{
		SerialNumber:       "0002",
		TechniqueModel:     "PD3.0",
		EngineModel:        "Kubota D1803",
		EngineNumber:       "E-0002",
		TransmissionModel:  "10VB-00106",
		TransmissionNumber: "T-0002",
		DriveAxleModel:     "20VB-00101",
		DriveAxleNumber:    "D-0002",
		SteeringAxleModel:  "VS-30",
		SteeringAxleNumber: "S-0002",
	}, *spec)

	_, err = s.TechnicalSpec(ctx, "9999")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCatalogAndUsers(t *testing.T) {
	s, f := newSeededStore(t)
	ctx := context.Background()

	extra := &model.CatalogEntry{Kind: model.KindServiceType, Name: "TO-0", Description: "first"}
	require.NoError(t, s.UpsertCatalogEntry(ctx, extra))
	again := &model.CatalogEntry{Kind: model.KindServiceType, Name: "TO-0", Description: "updated"}
	require.NoError(t, s.UpsertCatalogEntry(ctx, again))
	assert.Equal(t, extra.ID, again.ID)

	entries, err := s.ListCatalog(ctx, model.KindServiceType)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "TO-0", entries[0].Name)
	assert.Equal(t, "updated", entries[0].Description)

	_, err = s.GetCatalogEntry(ctx, model.KindFailureNode, extra.ID)
	assert.ErrorIs(t, err, store.ErrNotFound, "ids are looked up within their kind")

	u, err := s.UserByUsername(ctx, "service")
	require.NoError(t, err)
	assert.Equal(t, f.Service.ID, u.ID)
	assert.Equal(t, model.RoleServiceCompany, u.Role)

	renamed := &model.User{Username: "service", FirstName: "Renamed", PasswordHash: "x", Role: model.RoleManager}
	require.NoError(t, s.UpsertUser(ctx, renamed))
	assert.Equal(t, f.Service.ID, renamed.ID)
	assert.Equal(t, model.RoleServiceCompany, renamed.Role, "role survives an upsert")
	assert.Equal(t, "Renamed", renamed.FirstName)

	_, err = s.UserByID(ctx, 9999)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestGetMachineQueryError(t *testing.T) {
	gormDB, mock := newMockDB(t)
	s := store.NewGormStore(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "machines" WHERE client_id = $1 AND id = $2`)).
		WithArgs(7, 3, Any{}).
		WillReturnError(errors.New("connection reset"))

	_, err := s.GetMachine(context.Background(), authz.ScopeFor(&model.User{ID: 7, Role: model.RoleClient}), 3)
	require.Error(t, err)
	assert.NotErrorIs(t, err, store.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteMachineRollsBack(t *testing.T) {
	gormDB, mock := newMockDB(t)
	s := store.NewGormStore(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "maintenances" WHERE machine_id = $1`)).
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "complaints" WHERE machine_id = $1`)).
		WithArgs(5).
		WillReturnError(errors.New("lock timeout"))
	mock.ExpectRollback()

	err := s.DeleteMachine(context.Background(), 5)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Any is a helper for sqlmock to match any argument.
type Any struct{}

// Match satisfies the sqlmock.Argument interface
func (a Any) Match(v driver.Value) bool {
	return true
}

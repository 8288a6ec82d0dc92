package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"silant-backend/internal/apperr"
	"silant-backend/internal/auth"
	"silant-backend/internal/model"
	"silant-backend/internal/service"
	"silant-backend/internal/store"
	"silant-backend/internal/testutil"
)

var fixedNow = time.Date(2024, time.June, 15, 9, 0, 0, 0, time.UTC)

func newService(t *testing.T) (*service.Service, store.Store, *testutil.Fixture) {
	s := store.NewGormStore(testutil.NewDB(t))
	f := testutil.Seed(t, s)
	svc := service.New(s, auth.NewTokens("service-test-secret-of-32-bytes!!", "silant", time.Hour), service.Options{
		Now:        func() time.Time { return fixedNow },
		BcryptCost: bcrypt.MinCost,
	})
	return svc, s, f
}

func ptr[T any](v T) *T { return &v }

func status(t *testing.T, err error) int {
	t.Helper()
	var appErr *apperr.AppError
	require.True(t, errors.As(err, &appErr), "want an AppError, got %v", err)
	return appErr.HTTPStatus
}

func fields(t *testing.T, err error) apperr.Fields {
	t.Helper()
	var appErr *apperr.AppError
	require.True(t, errors.As(err, &appErr), "want an AppError, got %v", err)
	require.Equal(t, apperr.CodeValidation, appErr.Code, appErr.Message)
	return appErr.Fields
}

func TestAnonymousActorIsRejected(t *testing.T) {
	svc, _, f := newService(t)
	ctx := context.Background()

	_, _, err := svc.ListMachines(ctx, nil, store.ListQuery{})
	assert.Equal(t, http.StatusUnauthorized, status(t, err))

	_, err = svc.GetComplaint(ctx, nil, f.Complaint.ID)
	assert.Equal(t, http.StatusUnauthorized, status(t, err))

	_, err = svc.ListCatalog(ctx, nil, model.KindServiceType)
	assert.Equal(t, http.StatusUnauthorized, status(t, err))
}

func TestScopeIsCheckedBeforePermission(t *testing.T) {
	svc, _, f := newService(t)
	ctx := context.Background()
	patch := service.MaintenanceInput{OrderNumber: ptr("ORD-X")}

	// Out of scope: not found, even though the client may not write at all.
	_, err := svc.UpdateMaintenance(ctx, f.Client, f.OtherMaintenance.ID, patch, true)
	assert.Equal(t, http.StatusNotFound, status(t, err))

	// In scope but not writable: forbidden.
	_, err = svc.UpdateMaintenance(ctx, f.Client, f.Maintenance.ID, patch, true)
	assert.Equal(t, http.StatusForbidden, status(t, err))

	err = svc.DeleteComplaint(ctx, f.Service, f.Complaint.ID)
	assert.Equal(t, http.StatusForbidden, status(t, err))

	err = svc.DeleteMachine(ctx, f.Service, f.OtherMachine.ID)
	assert.Equal(t, http.StatusNotFound, status(t, err))
}

func TestPermissionIsCheckedBeforeValidation(t *testing.T) {
	svc, _, f := newService(t)

	_, err := svc.CreateMachine(context.Background(), f.Service, service.MachineInput{})
	assert.Equal(t, http.StatusForbidden, status(t, err))

	_, err = svc.CreateMachine(context.Background(), f.Manager, service.MachineInput{})
	assert.Len(t, fields(t, err), 16, "every machine field except equipment_options is required")
}

func TestUpdateMaintenancePartialAndFull(t *testing.T) {
	svc, _, f := newService(t)
	ctx := context.Background()

	m, err := svc.UpdateMaintenance(ctx, f.Service, f.Maintenance.ID, service.MaintenanceInput{
		OperatingHours: ptr(int64(500)),
	}, true)
	require.NoError(t, err)
	assert.Equal(t, uint(500), m.OperatingHours)
	assert.Equal(t, "ORD-0001", m.OrderNumber)
	assert.Equal(t, "TO-1", m.ServiceType.Name)

	_, err = svc.UpdateMaintenance(ctx, f.Service, f.Maintenance.ID, service.MaintenanceInput{
		OperatingHours: ptr(int64(500)),
	}, false)
	errs := fields(t, err)
	assert.Contains(t, errs, "machine")
	assert.Contains(t, errs, "order_date")
	assert.NotContains(t, errs, "operating_hours")
}

func TestMaintenanceServiceCompanyRoles(t *testing.T) {
	svc, _, f := newService(t)
	ctx := context.Background()
	in := service.MaintenanceInput{
		Machine:        ptr("0001"),
		ServiceType:    ptr("TO-1"),
		EventDate:      ptr("2024-06-01"),
		OperatingHours: ptr(int64(10)),
		OrderNumber:    ptr("ORD-9"),
		OrderDate:      ptr("2024-06-01"),
		ServiceCompany: ptr("manager"),
	}

	m, err := svc.CreateMaintenance(ctx, f.Manager, in)
	require.NoError(t, err)
	assert.Equal(t, f.Manager.ID, m.ServiceCompanyID)

	in.ServiceCompany = ptr("other-client")
	_, err = svc.CreateMaintenance(ctx, f.Manager, in)
	assert.Equal(t, apperr.Fields{
		"service_company": {"User other-client does not have the SERVICE or MANAGER role."},
	}, fields(t, err))
}

func TestComplaintDateRules(t *testing.T) {
	svc, _, f := newService(t)
	ctx := context.Background()

	testCases := []struct {
		name        string
		failure     string
		restoration string
		want        apperr.Fields
	}{
		{"restoration before failure", "2024-01-05", "2024-01-01", apperr.Fields{
			apperr.NonFieldKey: {"Restoration date cannot be earlier than failure date."},
		}},
		{"future restoration", "2024-06-10", "2024-06-16", apperr.Fields{
			"restoration_date": {"Restoration date cannot be in the future."},
		}},
		{"future failure after restoration", "2024-06-20", "2024-06-01", apperr.Fields{
			"failure_date":     {"Failure date cannot be in the future."},
			apperr.NonFieldKey: {"Restoration date cannot be earlier than failure date."},
		}},
		{"unparseable failure skips the record rule", "yesterday", "2024-06-01", apperr.Fields{
			"failure_date": {"Date has wrong format. Use one of these formats instead: YYYY-MM-DD."},
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateComplaint(ctx, f.Service, service.ComplaintInput{
				Machine:            ptr("0001"),
				FailureDate:        ptr(tc.failure),
				OperatingHours:     ptr(int64(10)),
				FailureNode:        ptr("Engine"),
				FailureDescription: ptr("Noise"),
				RecoveryMethod:     ptr("Part replacement"),
				RestorationDate:    ptr(tc.restoration),
				ServiceCompany:     ptr("service"),
			})
			assert.Equal(t, tc.want, fields(t, err))
		})
	}

	// A patch touching one date does not re-run the record rule.
	c, err := svc.UpdateComplaint(ctx, f.Service, f.Complaint.ID, service.ComplaintInput{
		RestorationDate: ptr("2023-04-01"),
	}, true)
	require.NoError(t, err)
	assert.Equal(t, 0, c.Downtime())
}

func TestUpdateMachineSerialUniqueness(t *testing.T) {
	svc, _, f := newService(t)
	ctx := context.Background()

	_, err := svc.UpdateMachine(ctx, f.Manager, f.Machine.ID, service.MachineInput{SerialNumber: ptr("0002")}, true)
	assert.Equal(t, apperr.Fields{"serial_number": {service.MsgSerialTaken}}, fields(t, err))

	// Keeping its own serial is not a collision.
	m, err := svc.UpdateMachine(ctx, f.Manager, f.Machine.ID, service.MachineInput{
		SerialNumber: ptr("0001"),
		Client:       ptr("other-client"),
	}, true)
	require.NoError(t, err)
	assert.Equal(t, "other-client", m.Client.Username)

	// The machine left the client's scope with the change of owner.
	_, err = svc.GetMachine(ctx, f.Client, f.Machine.ID)
	assert.Equal(t, http.StatusNotFound, status(t, err))
}

func TestSearchMachine(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	spec, err := svc.SearchMachine(ctx, " 0002 ")
	require.NoError(t, err)
	assert.Equal(t, "E-0002", spec.EngineNumber)
	assert.Equal(t, "PD3.0", spec.TechniqueModel)

	_, err = svc.SearchMachine(ctx, "")
	assert.Equal(t, apperr.Fields{"serial_number": {service.MsgSerialRequired}}, fields(t, err))

	_, err = svc.SearchMachine(ctx, "9999")
	assert.Equal(t, http.StatusNotFound, status(t, err))
}

func TestLoginAndAuthenticate(t *testing.T) {
	svc, _, f := newService(t)
	ctx := context.Background()

	token, err := svc.Login(ctx, "client", testutil.Password)
	require.NoError(t, err)

	u, err := svc.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, f.Client.ID, u.ID)

	_, err = svc.Login(ctx, "client", "nope")
	assert.Equal(t, apperr.Fields{apperr.NonFieldKey: {service.MsgBadCredentials}}, fields(t, err))

	_, err = svc.Login(ctx, "nobody", testutil.Password)
	assert.Equal(t, apperr.Fields{apperr.NonFieldKey: {service.MsgBadCredentials}}, fields(t, err))

	_, err = svc.Authenticate(ctx, "")
	assert.Equal(t, http.StatusUnauthorized, status(t, err))

	_, err = svc.Authenticate(ctx, token+"x")
	assert.Equal(t, http.StatusUnauthorized, status(t, err))
}

func TestTodayUsesConfiguredLocation(t *testing.T) {
	vladivostok, err := time.LoadLocation("Asia/Vladivostok")
	require.NoError(t, err)
	svc := service.New(nil, nil, service.Options{
		Location: vladivostok,
		Now:      func() time.Time { return time.Date(2024, time.June, 15, 20, 0, 0, 0, time.UTC) },
	})
	assert.Equal(t, model.NewDate(2024, time.June, 16), svc.Today())
}

func TestSeed(t *testing.T) {
	svc, s, _ := newService(t)
	ctx := context.Background()
	fixtures := service.Fixtures{
		Catalogs: map[model.CatalogKind][]service.CatalogFixture{
			model.KindServiceType: {{Name: "TO-1", Description: "updated"}, {Name: "TO-2"}},
		},
		Users: []service.NewUser{
			{Username: "client", Password: "rotated", Role: model.RoleManager},
			{Username: "promtekh", Password: "pw", Role: model.RoleServiceCompany},
		},
	}

	for i := 0; i < 2; i++ {
		res, err := svc.Seed(ctx, fixtures)
		require.NoError(t, err)
		assert.Equal(t, service.SeedResult{CatalogEntries: 2, Users: 2}, res)
	}

	entries, err := s.ListCatalog(ctx, model.KindServiceType)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "updated", entries[0].Description)

	// Seeding rotates the password but never changes the role.
	u, err := s.UserByUsername(ctx, "client")
	require.NoError(t, err)
	assert.Equal(t, model.RoleClient, u.Role)
	assert.True(t, auth.CheckPassword(u.PasswordHash, "rotated"))

	_, err = svc.Seed(ctx, service.Fixtures{Catalogs: map[model.CatalogKind][]service.CatalogFixture{"colour": {{Name: "red"}}}})
	assert.ErrorContains(t, err, `unknown catalog kind "colour"`)
}

func TestAccountAdministration(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, service.NewUser{Username: "client", Password: "pw", Role: model.RoleClient})
	assert.ErrorContains(t, err, "already exists")

	err = svc.DeleteUser(ctx, "service")
	assert.ErrorIs(t, err, store.ErrReferenced)

	err = svc.DeleteCatalogEntry(ctx, model.KindFailureNode, "Engine")
	assert.ErrorIs(t, err, store.ErrReferenced)

	err = svc.DeleteCatalogEntry(ctx, "colour", "red")
	assert.ErrorContains(t, err, "unknown catalog kind")
}

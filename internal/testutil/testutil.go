// Package testutil opens throwaway databases and seeds a small fleet for
// store, service and API tests.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"silant-backend/config"
	"silant-backend/internal/auth"
	"silant-backend/internal/db"
	"silant-backend/internal/model"
	"silant-backend/internal/store"
)

// Password is the password of every seeded user.
const Password = "correct-horse"

// NewDB opens a private in-memory sqlite database with the full schema. The
// database lives as long as the test.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	gormDB, err := db.Open(&config.DatabaseConfig{
		Driver:       config.DriverSQLite,
		DSN:          fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		LogLevel:     "silent",
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB))

	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return gormDB
}

// Fixture is the seeded fleet. Machine belongs to Client and is serviced by
// Service; OtherMachine belongs to OtherClient and is serviced by
// OtherService.
type Fixture struct {
	Manager      *model.User
	Client       *model.User
	OtherClient  *model.User
	Service      *model.User
	OtherService *model.User

	Entries map[model.CatalogKind]*model.CatalogEntry

	Machine      *model.Machine
	OtherMachine *model.Machine

	Maintenance      *model.Maintenance
	OtherMaintenance *model.Maintenance
	Complaint        *model.Complaint
	OtherComplaint   *model.Complaint
}

// EntryNames are the names of the seeded catalog entries, one per kind.
var EntryNames = map[model.CatalogKind]string{
	model.KindTechniqueModel:    "PD3.0",
	model.KindEngineModel:       "Kubota D1803",
	model.KindTransmissionModel: "10VB-00106",
	model.KindDriveAxleModel:    "20VB-00101",
	model.KindSteeringAxleModel: "VS-30",
	model.KindServiceType:       "TO-1",
	model.KindFailureNode:       "Engine",
	model.KindRecoveryMethod:    "Part replacement",
}

// Seed fills s with the fixture fleet.
func Seed(t testing.TB, s store.Store) *Fixture {
	t.Helper()
	ctx := context.Background()
	f := &Fixture{Entries: map[model.CatalogKind]*model.CatalogEntry{}}

	f.Manager = AddUser(t, s, "manager", model.RoleManager)
	f.Client = AddUser(t, s, "client", model.RoleClient)
	f.OtherClient = AddUser(t, s, "other-client", model.RoleClient)
	f.Service = AddUser(t, s, "service", model.RoleServiceCompany)
	f.OtherService = AddUser(t, s, "other-service", model.RoleServiceCompany)

	for _, kind := range model.CatalogKinds() {
		e := &model.CatalogEntry{Kind: kind, Name: EntryNames[kind], Description: "seeded " + string(kind)}
		require.NoError(t, s.UpsertCatalogEntry(ctx, e))
		f.Entries[kind] = e
	}

	f.Machine = AddMachine(t, s, f, "0001", f.Client, f.Service, model.NewDate(2022, time.January, 10))
	f.OtherMachine = AddMachine(t, s, f, "0002", f.OtherClient, f.OtherService, model.NewDate(2022, time.March, 5))

	f.Maintenance = AddMaintenance(t, s, f, f.Machine, model.NewDate(2023, time.February, 1))
	f.OtherMaintenance = AddMaintenance(t, s, f, f.OtherMachine, model.NewDate(2023, time.April, 1))
	f.Complaint = AddComplaint(t, s, f, f.Machine, model.NewDate(2023, time.May, 1), model.NewDate(2023, time.May, 4))
	f.OtherComplaint = AddComplaint(t, s, f, f.OtherMachine, model.NewDate(2023, time.June, 1), model.NewDate(2023, time.June, 2))
	return f
}

// AddUser provisions a user whose password is Password.
func AddUser(t testing.TB, s store.Store, username string, role model.Role) *model.User {
	t.Helper()
	hash, err := auth.HashPassword(Password, bcrypt.MinCost)
	require.NoError(t, err)
	u := &model.User{Username: username, FirstName: username, PasswordHash: hash, Role: role}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

// AddMachine registers a machine built from the seeded catalog entries.
func AddMachine(t testing.TB, s store.Store, f *Fixture, serial string, client, service *model.User, shipped model.Date) *model.Machine {
	t.Helper()
	m := &model.Machine{
		SerialNumber:          serial,
		TechniqueModelID:      f.Entries[model.KindTechniqueModel].ID,
		EngineModelID:         f.Entries[model.KindEngineModel].ID,
		EngineNumber:          "E-" + serial,
		TransmissionModelID:   f.Entries[model.KindTransmissionModel].ID,
		TransmissionNumber:    "T-" + serial,
		DriveAxleModelID:      f.Entries[model.KindDriveAxleModel].ID,
		DriveAxleNumber:       "D-" + serial,
		SteeringAxleModelID:   f.Entries[model.KindSteeringAxleModel].ID,
		SteeringAxleNumber:    "S-" + serial,
		SupplyContractNumDate: "Contract #" + serial + " of 2021-12-01",
		ShipmentDate:          shipped,
		Consignee:             "Consignee " + serial,
		DeliveryAddress:       "Cherepovets, Mira st. " + serial,
		EquipmentOptions:      "Standard",
		ClientID:              client.ID,
		ServiceCompanyID:      service.ID,
	}
	require.NoError(t, s.CreateMachine(context.Background(), m))
	return m
}

// AddMaintenance records a maintenance on m by m's service company.
func AddMaintenance(t testing.TB, s store.Store, f *Fixture, m *model.Machine, on model.Date) *model.Maintenance {
	t.Helper()
	mt := &model.Maintenance{
		MachineID:        m.ID,
		ServiceTypeID:    f.Entries[model.KindServiceType].ID,
		EventDate:        on,
		OperatingHours:   120,
		OrderNumber:      "ORD-" + m.SerialNumber,
		OrderDate:        on,
		ServiceCompanyID: m.ServiceCompanyID,
	}
	require.NoError(t, s.CreateMaintenance(context.Background(), mt))
	return mt
}

// AddComplaint records a complaint on m by m's service company.
func AddComplaint(t testing.TB, s store.Store, f *Fixture, m *model.Machine, failed, restored model.Date) *model.Complaint {
	t.Helper()
	c := &model.Complaint{
		MachineID:          m.ID,
		FailureDate:        failed,
		OperatingHours:     300,
		FailureNodeID:      f.Entries[model.KindFailureNode].ID,
		FailureDescription: "Does not start",
		RecoveryMethodID:   f.Entries[model.KindRecoveryMethod].ID,
		SparePartsUsed:     "Starter",
		RestorationDate:    restored,
		ServiceCompanyID:   m.ServiceCompanyID,
	}
	require.NoError(t, s.CreateComplaint(context.Background(), c))
	return c
}

package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"silant-backend/internal/authz"
	"silant-backend/internal/model"
)

// Store defines the interface for all database operations. Scoped reads take
// the caller's authz.Scope; lookups by human key are unscoped and serve
// reference resolution only.
type Store interface {
	Ping(ctx context.Context) error

	ListMachines(ctx context.Context, scope authz.Scope, q ListQuery) ([]model.Machine, int64, error)
	GetMachine(ctx context.Context, scope authz.Scope, id uint) (*model.Machine, error)
	CreateMachine(ctx context.Context, m *model.Machine) error
	UpdateMachine(ctx context.Context, m *model.Machine) error
	DeleteMachine(ctx context.Context, id uint) error
	MachineBySerial(ctx context.Context, serial string) (*model.Machine, error)
	SerialNumberTaken(ctx context.Context, serial string, exceptID uint) (bool, error)
	TechnicalSpec(ctx context.Context, serial string) (*model.TechnicalSpec, error)

	ListMaintenances(ctx context.Context, scope authz.Scope, q ListQuery) ([]model.Maintenance, int64, error)
	GetMaintenance(ctx context.Context, scope authz.Scope, id uint) (*model.Maintenance, error)
	CreateMaintenance(ctx context.Context, m *model.Maintenance) error
	UpdateMaintenance(ctx context.Context, m *model.Maintenance) error
	DeleteMaintenance(ctx context.Context, id uint) error

	ListComplaints(ctx context.Context, scope authz.Scope, q ListQuery) ([]model.Complaint, int64, error)
	GetComplaint(ctx context.Context, scope authz.Scope, id uint) (*model.Complaint, error)
	CreateComplaint(ctx context.Context, c *model.Complaint) error
	UpdateComplaint(ctx context.Context, c *model.Complaint) error
	DeleteComplaint(ctx context.Context, id uint) error

	ListCatalog(ctx context.Context, kind model.CatalogKind) ([]model.CatalogEntry, error)
	GetCatalogEntry(ctx context.Context, kind model.CatalogKind, id uint) (*model.CatalogEntry, error)
	CatalogEntryByName(ctx context.Context, kind model.CatalogKind, name string) (*model.CatalogEntry, error)
	UpsertCatalogEntry(ctx context.Context, e *model.CatalogEntry) error
	DeleteCatalogEntry(ctx context.Context, kind model.CatalogKind, name string) error

	UserByID(ctx context.Context, id uint) (*model.User, error)
	UserByUsername(ctx context.Context, username string) (*model.User, error)
	CreateUser(ctx context.Context, u *model.User) error
	UpsertUser(ctx context.Context, u *model.User) error
	DeleteUser(ctx context.Context, username string) error
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// translate maps driver and gorm errors onto the store sentinels. The gorm
// session must run with TranslateError so dialect errors arrive normalized.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %v", ErrReferenced, err)
	}
	return err
}

// scoped narrows a query on spec's table to the rows scope admits.
// Maintenances and complaints are narrowed through their machine.
func scoped(db *gorm.DB, spec *entitySpec, scope authz.Scope) *gorm.DB {
	if scope.All() {
		return db
	}
	var column string
	switch scope.Owner() {
	case authz.OwnerClient:
		column = "client_id"
	case authz.OwnerServiceCompany:
		column = "service_company_id"
	default:
		return db.Where("1 = 0")
	}
	if spec.table == machines.table {
		return db.Where(column+" = ?", scope.ActorID())
	}
	return db.Where("machine_id IN (SELECT id FROM machines WHERE "+column+" = ?)", scope.ActorID())
}

func list[T any](ctx context.Context, db *gorm.DB, spec *entitySpec, scope authz.Scope, q ListQuery) ([]T, int64, error) {
	base := scoped(db.WithContext(ctx).Model(new(T)), spec, scope)
	base = spec.filter(base, q.Filters).Session(&gorm.Session{})

	var count int64
	if err := base.Count(&count).Error; err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", spec.table, err)
	}

	rows := make([]T, 0)
	if count == 0 {
		return rows, 0, nil
	}
	tx := spec.order(spec.preload(base), q.Orders)
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit).Offset(q.Offset)
	}
	if err := tx.Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", spec.table, err)
	}
	return rows, count, nil
}

func get[T any](ctx context.Context, db *gorm.DB, spec *entitySpec, scope authz.Scope, id uint) (*T, error) {
	var row T
	tx := scoped(db.WithContext(ctx).Model(&row), spec, scope)
	if err := spec.preload(tx).Where("id = ?", id).Take(&row).Error; err != nil {
		return nil, translate(err)
	}
	return &row, nil
}

// create inserts row and reads it back with its associations in the same
// transaction.
func create[T any](ctx context.Context, db *gorm.DB, spec *entitySpec, row *T) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(row).Error; err != nil {
			return translate(err)
		}
		return translate(spec.preload(tx).Take(row).Error)
	})
}

// update writes every column of row and reads it back. Associations loaded on
// row are never written.
func update[T any](ctx context.Context, db *gorm.DB, spec *entitySpec, row *T) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(row).Error; err != nil {
			return translate(err)
		}
		return translate(spec.preload(tx).Take(row).Error)
	})
}

func remove[T any](ctx context.Context, db *gorm.DB, id uint) error {
	res := db.WithContext(ctx).Delete(new(T), id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// countReferences sums the rows of every (table, column) pair equal to id.
func countReferences(tx *gorm.DB, refs map[string][]string, id uint) (int64, error) {
	var total int64
	for table, columns := range refs {
		for _, column := range columns {
			var n int64
			if err := tx.Table(table).Where(column+" = ?", id).Count(&n).Error; err != nil {
				return 0, fmt.Errorf("count %s.%s references: %w", table, column, err)
			}
			total += n
		}
	}
	return total, nil
}

package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"silant-backend/internal/model"
)

// catalogRefs lists every column that points into catalog_entries.
var catalogRefs = map[string][]string{
	"machines": {
		"technique_model_id", "engine_model_id", "transmission_model_id",
		"drive_axle_model_id", "steering_axle_model_id",
	},
	"maintenances": {"service_type_id"},
	"complaints":   {"failure_node_id", "recovery_method_id"},
}

// userRefs lists every column that points into users.
var userRefs = map[string][]string{
	"machines":     {"client_id", "service_company_id"},
	"maintenances": {"service_company_id"},
	"complaints":   {"service_company_id"},
}

func (s *gormStore) ListCatalog(ctx context.Context, kind model.CatalogKind) ([]model.CatalogEntry, error) {
	entries := make([]model.CatalogEntry, 0)
	err := s.db.WithContext(ctx).
		Where("kind = ?", kind).
		Order("name").Order("id").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("list %s catalog: %w", kind, err)
	}
	return entries, nil
}

func (s *gormStore) GetCatalogEntry(ctx context.Context, kind model.CatalogKind, id uint) (*model.CatalogEntry, error) {
	var e model.CatalogEntry
	if err := s.db.WithContext(ctx).Where("kind = ? AND id = ?", kind, id).Take(&e).Error; err != nil {
		return nil, translate(err)
	}
	return &e, nil
}

func (s *gormStore) CatalogEntryByName(ctx context.Context, kind model.CatalogKind, name string) (*model.CatalogEntry, error) {
	var e model.CatalogEntry
	if err := s.db.WithContext(ctx).Where("kind = ? AND name = ?", kind, name).Take(&e).Error; err != nil {
		return nil, translate(err)
	}
	return &e, nil
}

// UpsertCatalogEntry inserts e or refreshes the description of the entry with
// the same kind and name.
func (s *gormStore) UpsertCatalogEntry(ctx context.Context, e *model.CatalogEntry) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "kind"}, {Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"description"}),
		}).Create(e).Error; err != nil {
			return fmt.Errorf("upsert %s %q: %w", e.Kind, e.Name, translate(err))
		}
		return translate(tx.Where("kind = ? AND name = ?", e.Kind, e.Name).Take(e).Error)
	})
}

// DeleteCatalogEntry removes an entry nothing references.
func (s *gormStore) DeleteCatalogEntry(ctx context.Context, kind model.CatalogKind, name string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var e model.CatalogEntry
		if err := tx.Where("kind = ? AND name = ?", kind, name).Take(&e).Error; err != nil {
			return translate(err)
		}
		n, err := countReferences(tx, catalogRefs, e.ID)
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: %s %q is used by %d records", ErrReferenced, kind, name, n)
		}
		return translate(tx.Delete(&e).Error)
	})
}

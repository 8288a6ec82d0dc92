package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"silant-backend/internal/authz"
	"silant-backend/internal/model"
)

func (s *gormStore) ListMachines(ctx context.Context, scope authz.Scope, q ListQuery) ([]model.Machine, int64, error) {
	return list[model.Machine](ctx, s.db, machines, scope, q)
}

func (s *gormStore) GetMachine(ctx context.Context, scope authz.Scope, id uint) (*model.Machine, error) {
	return get[model.Machine](ctx, s.db, machines, scope, id)
}

func (s *gormStore) CreateMachine(ctx context.Context, m *model.Machine) error {
	return create(ctx, s.db, machines, m)
}

func (s *gormStore) UpdateMachine(ctx context.Context, m *model.Machine) error {
	return update(ctx, s.db, machines, m)
}

// DeleteMachine removes a machine together with its maintenances and
// complaints.
func (s *gormStore) DeleteMachine(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("machine_id = ?", id).Delete(&model.Maintenance{}).Error; err != nil {
			return fmt.Errorf("failed to delete maintenances of machine %d: %w", id, err)
		}
		if err := tx.Where("machine_id = ?", id).Delete(&model.Complaint{}).Error; err != nil {
			return fmt.Errorf("failed to delete complaints of machine %d: %w", id, err)
		}
		res := tx.Delete(&model.Machine{}, id)
		if res.Error != nil {
			return translate(res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (s *gormStore) MachineBySerial(ctx context.Context, serial string) (*model.Machine, error) {
	var m model.Machine
	if err := s.db.WithContext(ctx).Where("serial_number = ?", serial).Take(&m).Error; err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

func (s *gormStore) SerialNumberTaken(ctx context.Context, serial string, exceptID uint) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&model.Machine{}).
		Where("serial_number = ? AND id <> ?", serial, exceptID).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("check serial number: %w", err)
	}
	return n > 0, nil
}

// TechnicalSpec selects only the public columns of a machine, with model
// names joined in. Commercial columns are never read.
func (s *gormStore) TechnicalSpec(ctx context.Context, serial string) (*model.TechnicalSpec, error) {
	var spec model.TechnicalSpec
	res := s.db.WithContext(ctx).
		Table("machines AS m").
		Select(`m.serial_number,
			tm.name AS technique_model,
			em.name AS engine_model, m.engine_number,
			trm.name AS transmission_model, m.transmission_number,
			dam.name AS drive_axle_model, m.drive_axle_number,
			sam.name AS steering_axle_model, m.steering_axle_number`).
		Joins("JOIN catalog_entries tm ON tm.id = m.technique_model_id").
		Joins("JOIN catalog_entries em ON em.id = m.engine_model_id").
		Joins("JOIN catalog_entries trm ON trm.id = m.transmission_model_id").
		Joins("JOIN catalog_entries dam ON dam.id = m.drive_axle_model_id").
		Joins("JOIN catalog_entries sam ON sam.id = m.steering_axle_model_id").
		Where("m.serial_number = ?", serial).
		Limit(1).
		Scan(&spec)
	if res.Error != nil {
		return nil, fmt.Errorf("load technical spec: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return &spec, nil
}

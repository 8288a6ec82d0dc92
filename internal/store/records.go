package store

import (
	"context"

	"silant-backend/internal/authz"
	"silant-backend/internal/model"
)

func (s *gormStore) ListMaintenances(ctx context.Context, scope authz.Scope, q ListQuery) ([]model.Maintenance, int64, error) {
	return list[model.Maintenance](ctx, s.db, maintenances, scope, q)
}

func (s *gormStore) GetMaintenance(ctx context.Context, scope authz.Scope, id uint) (*model.Maintenance, error) {
	return get[model.Maintenance](ctx, s.db, maintenances, scope, id)
}

func (s *gormStore) CreateMaintenance(ctx context.Context, m *model.Maintenance) error {
	return create(ctx, s.db, maintenances, m)
}

func (s *gormStore) UpdateMaintenance(ctx context.Context, m *model.Maintenance) error {
	return update(ctx, s.db, maintenances, m)
}

func (s *gormStore) DeleteMaintenance(ctx context.Context, id uint) error {
	return remove[model.Maintenance](ctx, s.db, id)
}

func (s *gormStore) ListComplaints(ctx context.Context, scope authz.Scope, q ListQuery) ([]model.Complaint, int64, error) {
	return list[model.Complaint](ctx, s.db, complaints, scope, q)
}

func (s *gormStore) GetComplaint(ctx context.Context, scope authz.Scope, id uint) (*model.Complaint, error) {
	return get[model.Complaint](ctx, s.db, complaints, scope, id)
}

func (s *gormStore) CreateComplaint(ctx context.Context, c *model.Complaint) error {
	return create(ctx, s.db, complaints, c)
}

func (s *gormStore) UpdateComplaint(ctx context.Context, c *model.Complaint) error {
	return update(ctx, s.db, complaints, c)
}

func (s *gormStore) DeleteComplaint(ctx context.Context, id uint) error {
	return remove[model.Complaint](ctx, s.db, id)
}

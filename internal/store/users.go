package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"silant-backend/internal/model"
)

func (s *gormStore) UserByID(ctx context.Context, id uint) (*model.User, error) {
	var u model.User
	if err := s.db.WithContext(ctx).Take(&u, id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *gormStore) UserByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).Take(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *gormStore) CreateUser(ctx context.Context, u *model.User) error {
	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		return translate(err)
	}
	return nil
}

// UpsertUser inserts u or refreshes the password and first name of the user
// with the same username. An existing user's role is kept.
func (s *gormStore) UpsertUser(ctx context.Context, u *model.User) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "username"}},
			DoUpdates: clause.AssignmentColumns([]string{"first_name", "password_hash", "updated_at"}),
		}).Create(u).Error; err != nil {
			return fmt.Errorf("upsert user %q: %w", u.Username, translate(err))
		}
		return translate(tx.Where("username = ?", u.Username).Take(u).Error)
	})
}

// DeleteUser removes a user no machine, maintenance or complaint references.
func (s *gormStore) DeleteUser(ctx context.Context, username string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u model.User
		if err := tx.Where("username = ?", username).Take(&u).Error; err != nil {
			return translate(err)
		}
		n, err := countReferences(tx, userRefs, u.ID)
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: user %q is used by %d records", ErrReferenced, username, n)
		}
		return translate(tx.Delete(&u).Error)
	})
}

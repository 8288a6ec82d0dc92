package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"silant-backend/internal/apperr"
	"silant-backend/internal/auth"
	"silant-backend/internal/logger"
	"silant-backend/internal/model"
	"silant-backend/internal/store"
	"silant-backend/internal/validate"
)

// Messages of the token endpoint and bearer authentication.
const (
	MsgBadCredentials = "Unable to log in with provided credentials."
	MsgNoCredentials  = "Authentication credentials were not provided."
	MsgInvalidToken   = "Invalid token."
)

// Login exchanges a username and password for a bearer token.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	errs := apperr.Fields{}
	if username == "" {
		errs.Add("username", validate.MsgRequired)
	}
	if password == "" {
		errs.Add("password", validate.MsgRequired)
	}
	if len(errs) > 0 {
		return "", apperr.Validation(errs)
	}

	u, err := s.store.UserByUsername(ctx, username)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return "", apperr.Internal(err)
	}
	if u == nil || !auth.CheckPassword(u.PasswordHash, password) {
		logger.L().Info("login rejected", zap.String("username", username))
		return "", apperr.Validation(apperr.Fields{apperr.NonFieldKey: {MsgBadCredentials}})
	}

	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return "", apperr.Internal(err)
	}
	return token, nil
}

// Authenticate resolves a bearer token to its actor. The actor is reloaded on
// every call, so a deleted account loses access at once.
func (s *Service) Authenticate(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, apperr.Unauthenticated(MsgNoCredentials)
	}
	id, err := s.tokens.Parse(token)
	if err != nil {
		return nil, apperr.Unauthenticated(MsgInvalidToken)
	}
	u, err := s.store.UserByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Unauthenticated(MsgInvalidToken)
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return u, nil
}

// NewUser is an account to provision.
type NewUser struct {
	Username  string     `yaml:"username"`
	Password  string     `yaml:"password"`
	FirstName string     `yaml:"first_name"`
	Role      model.Role `yaml:"role"`
}

func (s *Service) userRow(nu NewUser) (*model.User, error) {
	nu.Username = strings.TrimSpace(nu.Username)
	if nu.Username == "" {
		return nil, errors.New("username is required")
	}
	if nu.Password == "" {
		return nil, fmt.Errorf("user %s: password is required", nu.Username)
	}
	if !nu.Role.Valid() {
		return nil, fmt.Errorf("user %s: unknown role %q", nu.Username, nu.Role)
	}
	hash, err := auth.HashPassword(nu.Password, s.cost)
	if err != nil {
		return nil, err
	}
	return &model.User{
		Username:     nu.Username,
		FirstName:    nu.FirstName,
		PasswordHash: hash,
		Role:         nu.Role,
	}, nil
}

// CreateUser provisions an account. The role is fixed for the account's
// lifetime.
func (s *Service) CreateUser(ctx context.Context, nu NewUser) (*model.User, error) {
	u, err := s.userRow(nu)
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, fmt.Errorf("user %s already exists", u.Username)
		}
		return nil, err
	}
	return u, nil
}

// DeleteUser removes an account nothing references.
func (s *Service) DeleteUser(ctx context.Context, username string) error {
	return s.store.DeleteUser(ctx, username)
}

// DeleteCatalogEntry removes a catalog entry nothing references.
func (s *Service) DeleteCatalogEntry(ctx context.Context, kind model.CatalogKind, name string) error {
	if !kind.Valid() {
		return fmt.Errorf("unknown catalog kind %q", kind)
	}
	return s.store.DeleteCatalogEntry(ctx, kind, name)
}

// CatalogFixture is one catalog entry to seed.
type CatalogFixture struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Fixtures is the content of a seed file.
type Fixtures struct {
	Catalogs map[model.CatalogKind][]CatalogFixture `yaml:"catalogs"`
	Users    []NewUser                              `yaml:"users"`
}

// SeedResult counts what a seed run wrote.
type SeedResult struct {
	CatalogEntries int
	Users          int
}

// Seed upserts every catalog entry (by kind and name) and every user (by
// username). Running it twice leaves the same rows.
func (s *Service) Seed(ctx context.Context, f Fixtures) (SeedResult, error) {
	var res SeedResult
	for kind := range f.Catalogs {
		if !kind.Valid() {
			return res, fmt.Errorf("unknown catalog kind %q", kind)
		}
	}
	for _, kind := range model.CatalogKinds() {
		for _, cf := range f.Catalogs[kind] {
			e := &model.CatalogEntry{Kind: kind, Name: strings.TrimSpace(cf.Name), Description: cf.Description}
			if e.Name == "" {
				return res, fmt.Errorf("%s: entry without a name", kind)
			}
			if err := s.store.UpsertCatalogEntry(ctx, e); err != nil {
				return res, err
			}
			res.CatalogEntries++
		}
	}
	for _, nu := range f.Users {
		u, err := s.userRow(nu)
		if err != nil {
			return res, err
		}
		if err := s.store.UpsertUser(ctx, u); err != nil {
			return res, err
		}
		res.Users++
	}
	return res, nil
}

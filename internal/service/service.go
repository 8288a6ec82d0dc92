// Package service runs every API operation: it resolves the actor's scope,
// checks write permissions, validates payloads and maps store failures onto
// apperr errors.
package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"silant-backend/internal/apperr"
	"silant-backend/internal/auth"
	"silant-backend/internal/authz"
	"silant-backend/internal/logger"
	"silant-backend/internal/model"
	"silant-backend/internal/store"
)

// Options tunes a Service.
type Options struct {
	// Location defines "today" for date validation. Defaults to UTC.
	Location *time.Location
	// Now defaults to time.Now.
	Now func() time.Time
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
}

// Service is the application layer shared by the HTTP API and the admin CLI.
type Service struct {
	store  store.Store
	tokens *auth.Tokens
	loc    *time.Location
	now    func() time.Time
	cost   int
}

// New creates a Service. tokens may be nil for callers that never log in or
// authenticate, such as the admin CLI.
func New(s store.Store, tokens *auth.Tokens, opts Options) *Service {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		store:  s,
		tokens: tokens,
		loc:    opts.Location,
		now:    opts.Now,
		cost:   opts.BcryptCost,
	}
}

// Today is the current calendar day in the configured location.
func (s *Service) Today() model.Date {
	return model.DateOf(s.now().In(s.loc))
}

// Ping reports whether the store answers.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// readScope fails closed: an anonymous actor is rejected outright.
func readScope(actor *model.User) (authz.Scope, error) {
	if actor == nil {
		return authz.Scope{}, apperr.Unauthenticated("Authentication credentials were not provided.")
	}
	return authz.ScopeFor(actor), nil
}

func requireWrite(actor *model.User, resource authz.Resource, action authz.Action) error {
	if actor == nil {
		return apperr.Unauthenticated("Authentication credentials were not provided.")
	}
	if !authz.Can(actor, resource, action) {
		logger.L().Info("write denied",
			zap.Uint("actor_id", actor.ID),
			zap.String("role", string(actor.Role)),
			zap.String("resource", string(resource)),
			zap.String("action", string(action)),
		)
		return apperr.Forbidden()
	}
	return nil
}

// storeErr maps store sentinels onto request errors.
func storeErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return apperr.NotFound()
	case errors.Is(err, store.ErrReferenced):
		return apperr.Referenced("Cannot delete: other records still reference it.", err)
	}
	return apperr.Internal(err)
}

// finish turns the outcome of a binding pass into a request error.
func finish(errs apperr.Fields, lookupErr error) error {
	if lookupErr != nil {
		return apperr.Internal(lookupErr)
	}
	if len(errs) > 0 {
		return apperr.Validation(errs)
	}
	return nil
}

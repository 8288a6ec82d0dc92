package validate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"silant-backend/internal/apperr"
	"silant-backend/internal/model"
	"silant-backend/internal/store"
)

// Resolver looks up referenced rows by their human key.
type Resolver interface {
	CatalogEntryByName(ctx context.Context, kind model.CatalogKind, name string) (*model.CatalogEntry, error)
	UserByUsername(ctx context.Context, username string) (*model.User, error)
	MachineBySerial(ctx context.Context, serial string) (*model.Machine, error)
}

// Binder copies payload fields onto a row, recording violations instead of
// stopping at the first one. A nil payload field is absent: on a full write
// (create, PUT) that is a "required" violation, on a partial write (PATCH) the
// row keeps its value.
//
// Fields that already carry a violation (from Struct) are not copied.
type Binder struct {
	ctx  context.Context
	res  Resolver
	full bool
	errs apperr.Fields
	err  error
}

// NewBinder starts a binding pass seeded with the violations in prior.
// prior itself is left untouched.
func NewBinder(ctx context.Context, res Resolver, full bool, prior apperr.Fields) *Binder {
	errs := apperr.Fields{}
	errs.Merge(prior)
	return &Binder{ctx: ctx, res: res, full: full, errs: errs}
}

// Errs returns the collected violations.
func (b *Binder) Errs() apperr.Fields { return b.errs }

// Err returns the first lookup failure that is not a missing row. It makes
// the whole write fail as an internal error.
func (b *Binder) Err() error { return b.err }

func (b *Binder) absent(field string, present bool) bool {
	if present {
		return false
	}
	if b.full {
		b.errs.Add(field, MsgRequired)
	}
	return true
}

// Text binds a required, non-blank string.
func (b *Binder) Text(field string, v *string, dst *string) {
	if b.absent(field, v != nil) || b.errs.Has(field) {
		return
	}
	if strings.TrimSpace(*v) == "" {
		b.errs.Add(field, MsgBlank)
		return
	}
	*dst = *v
}

// OptionalText binds a string that may be blank or absent.
func (b *Binder) OptionalText(field string, v *string, dst *string) {
	if v == nil || b.errs.Has(field) {
		return
	}
	*dst = *v
}

// Hours binds a non-negative counter.
func (b *Binder) Hours(field string, v *int64, dst *uint) {
	if b.absent(field, v != nil) || b.errs.Has(field) {
		return
	}
	if *v < 0 {
		b.errs.Add(field, "Ensure this value is greater than or equal to 0.")
		return
	}
	*dst = uint(*v)
}

// Date binds a YYYY-MM-DD date. It reports whether a date was bound, so
// dependent rules run only on dates that parsed.
func (b *Binder) Date(field string, v *string, dst *model.Date) bool {
	if b.absent(field, v != nil) || b.errs.Has(field) {
		return false
	}
	d, err := model.ParseDate(*v)
	if err != nil {
		b.errs.Add(field, MsgDateFormat)
		return false
	}
	*dst = d
	return true
}

// Catalog binds a catalog reference given by entry name.
func (b *Binder) Catalog(field string, kind model.CatalogKind, v *string, dst *uint) {
	if b.absent(field, v != nil) || b.errs.Has(field) {
		return
	}
	if strings.TrimSpace(*v) == "" {
		b.errs.Add(field, MsgBlank)
		return
	}
	e, err := b.res.CatalogEntryByName(b.ctx, kind, *v)
	if b.lookupFailed(field, "name", *v, err) {
		return
	}
	*dst = e.ID
}

// User binds an actor reference given by username. The actor must hold one
// of roles.
func (b *Binder) User(field string, roles []model.Role, v *string, dst *uint) {
	if b.absent(field, v != nil) || b.errs.Has(field) {
		return
	}
	if strings.TrimSpace(*v) == "" {
		b.errs.Add(field, MsgBlank)
		return
	}
	u, err := b.res.UserByUsername(b.ctx, *v)
	if b.lookupFailed(field, "username", *v, err) {
		return
	}
	for _, r := range roles {
		if u.Role == r {
			*dst = u.ID
			return
		}
	}
	b.errs.Add(field, fmt.Sprintf("User %s does not have the %s role.", *v, roleList(roles)))
}

// Machine binds a machine reference given by serial number.
func (b *Binder) Machine(field string, v *string, dst *uint) {
	if b.absent(field, v != nil) || b.errs.Has(field) {
		return
	}
	if strings.TrimSpace(*v) == "" {
		b.errs.Add(field, MsgBlank)
		return
	}
	m, err := b.res.MachineBySerial(b.ctx, *v)
	if b.lookupFailed(field, "serial_number", *v, err) {
		return
	}
	*dst = m.ID
}

func (b *Binder) lookupFailed(field, key, value string, err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, store.ErrNotFound):
		b.errs.Add(field, fmt.Sprintf("Object with %s=%s does not exist.", key, value))
	case b.err == nil:
		b.err = fmt.Errorf("resolve %s: %w", field, err)
	}
	return true
}

func roleList(roles []model.Role) string {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return strings.Join(names, " or ")
}

package service

import (
	"context"
	"strings"

	"silant-backend/internal/apperr"
	"silant-backend/internal/model"
)

// MsgSerialRequired is the guest search rejection for an empty query.
const MsgSerialRequired = "serial number required"

// ListCatalog returns every entry of a catalog kind. Catalogs are not scoped;
// any authenticated actor reads them.
func (s *Service) ListCatalog(ctx context.Context, actor *model.User, kind model.CatalogKind) ([]model.CatalogEntry, error) {
	if _, err := readScope(actor); err != nil {
		return nil, err
	}
	if !kind.Valid() {
		return nil, apperr.NotFound()
	}
	entries, err := s.store.ListCatalog(ctx, kind)
	if err != nil {
		return nil, storeErr(err)
	}
	return entries, nil
}

// GetCatalogEntry returns one catalog entry of kind.
func (s *Service) GetCatalogEntry(ctx context.Context, actor *model.User, kind model.CatalogKind, id uint) (*model.CatalogEntry, error) {
	if _, err := readScope(actor); err != nil {
		return nil, err
	}
	if !kind.Valid() {
		return nil, apperr.NotFound()
	}
	e, err := s.store.GetCatalogEntry(ctx, kind, id)
	if err != nil {
		return nil, storeErr(err)
	}
	return e, nil
}

// SearchMachine is the anonymous lookup by serial number. It only ever sees
// the technical specification of a machine.
func (s *Service) SearchMachine(ctx context.Context, serial string) (*model.TechnicalSpec, error) {
	serial = strings.TrimSpace(serial)
	if serial == "" {
		return nil, apperr.Validation(apperr.Fields{"serial_number": {MsgSerialRequired}})
	}
	spec, err := s.store.TechnicalSpec(ctx, serial)
	if err != nil {
		return nil, storeErr(err)
	}
	return spec, nil
}

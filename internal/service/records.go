package service

import (
	"context"

	"silant-backend/internal/authz"
	"silant-backend/internal/model"
	"silant-backend/internal/store"
	"silant-backend/internal/validate"
)

// Maintenances and complaints may name a service company or a manager as
// the company that did the work.
var recordServiceRoles = []model.Role{model.RoleServiceCompany, model.RoleManager}

// MaintenanceInput is a maintenance write payload.
type MaintenanceInput struct {
	Machine        *string `json:"machine"`
	ServiceType    *string `json:"service_type"`
	EventDate      *string `json:"event_date"`
	OperatingHours *int64  `json:"operating_hours" validate:"omitempty,gte=0"`
	OrderNumber    *string `json:"order_number" validate:"omitempty,max=100"`
	OrderDate      *string `json:"order_date"`
	ServiceCompany *string `json:"service_company"`
}

// ComplaintInput is a complaint write payload.
type ComplaintInput struct {
	Machine            *string `json:"machine"`
	FailureDate        *string `json:"failure_date"`
	OperatingHours     *int64  `json:"operating_hours" validate:"omitempty,gte=0"`
	FailureNode        *string `json:"failure_node"`
	FailureDescription *string `json:"failure_description"`
	RecoveryMethod     *string `json:"recovery_method"`
	SparePartsUsed     *string `json:"spare_parts_used"`
	RestorationDate    *string `json:"restoration_date"`
	ServiceCompany     *string `json:"service_company"`
}

// ListMaintenances returns one page of the maintenances on machines the actor
// may see.
func (s *Service) ListMaintenances(ctx context.Context, actor *model.User, q store.ListQuery) ([]model.Maintenance, int64, error) {
	scope, err := readScope(actor)
	if err != nil {
		return nil, 0, err
	}
	rows, count, err := s.store.ListMaintenances(ctx, scope, q)
	if err != nil {
		return nil, 0, storeErr(err)
	}
	return rows, count, nil
}

// GetMaintenance returns a maintenance in the actor's scope.
func (s *Service) GetMaintenance(ctx context.Context, actor *model.User, id uint) (*model.Maintenance, error) {
	scope, err := readScope(actor)
	if err != nil {
		return nil, err
	}
	m, err := s.store.GetMaintenance(ctx, scope, id)
	if err != nil {
		return nil, storeErr(err)
	}
	return m, nil
}

// CreateMaintenance records a maintenance. Service companies may record one
// for any machine, including machines they do not service.
func (s *Service) CreateMaintenance(ctx context.Context, actor *model.User, in MaintenanceInput) (*model.Maintenance, error) {
	if err := requireWrite(actor, authz.ResourceMaintenance, authz.ActionCreate); err != nil {
		return nil, err
	}
	var m model.Maintenance
	if err := s.bindMaintenance(ctx, &m, in, true); err != nil {
		return nil, err
	}
	if err := s.store.CreateMaintenance(ctx, &m); err != nil {
		return nil, storeErr(err)
	}
	return &m, nil
}

// UpdateMaintenance replaces or patches a maintenance in the actor's scope.
func (s *Service) UpdateMaintenance(ctx context.Context, actor *model.User, id uint, in MaintenanceInput, partial bool) (*model.Maintenance, error) {
	m, err := s.GetMaintenance(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := requireWrite(actor, authz.ResourceMaintenance, authz.ActionUpdate); err != nil {
		return nil, err
	}
	if err := s.bindMaintenance(ctx, m, in, !partial); err != nil {
		return nil, err
	}
	if err := s.store.UpdateMaintenance(ctx, m); err != nil {
		return nil, storeErr(err)
	}
	return m, nil
}

// DeleteMaintenance removes a maintenance in the actor's scope.
func (s *Service) DeleteMaintenance(ctx context.Context, actor *model.User, id uint) error {
	if _, err := s.GetMaintenance(ctx, actor, id); err != nil {
		return err
	}
	if err := requireWrite(actor, authz.ResourceMaintenance, authz.ActionDelete); err != nil {
		return err
	}
	return storeErr(s.store.DeleteMaintenance(ctx, id))
}

func (s *Service) bindMaintenance(ctx context.Context, m *model.Maintenance, in MaintenanceInput, full bool) error {
	b := validate.NewBinder(ctx, s.store, full, validate.Struct(in))

	b.Machine("machine", in.Machine, &m.MachineID)
	b.Catalog("service_type", model.KindServiceType, in.ServiceType, &m.ServiceTypeID)
	if b.Date("event_date", in.EventDate, &m.EventDate) {
		validate.NotInFuture(b.Errs(), "event_date", m.EventDate, s.Today())
	}
	b.Hours("operating_hours", in.OperatingHours, &m.OperatingHours)
	b.Text("order_number", in.OrderNumber, &m.OrderNumber)
	b.Date("order_date", in.OrderDate, &m.OrderDate)
	b.User("service_company", recordServiceRoles, in.ServiceCompany, &m.ServiceCompanyID)

	return finish(b.Errs(), b.Err())
}

// ListComplaints returns one page of the complaints on machines the actor may
// see.
func (s *Service) ListComplaints(ctx context.Context, actor *model.User, q store.ListQuery) ([]model.Complaint, int64, error) {
	scope, err := readScope(actor)
	if err != nil {
		return nil, 0, err
	}
	rows, count, err := s.store.ListComplaints(ctx, scope, q)
	if err != nil {
		return nil, 0, storeErr(err)
	}
	return rows, count, nil
}

// GetComplaint returns a complaint in the actor's scope.
func (s *Service) GetComplaint(ctx context.Context, actor *model.User, id uint) (*model.Complaint, error) {
	scope, err := readScope(actor)
	if err != nil {
		return nil, err
	}
	c, err := s.store.GetComplaint(ctx, scope, id)
	if err != nil {
		return nil, storeErr(err)
	}
	return c, nil
}

// CreateComplaint records a complaint. Like maintenances, service companies
// are not limited to the machines they service.
func (s *Service) CreateComplaint(ctx context.Context, actor *model.User, in ComplaintInput) (*model.Complaint, error) {
	if err := requireWrite(actor, authz.ResourceComplaint, authz.ActionCreate); err != nil {
		return nil, err
	}
	var c model.Complaint
	if err := s.bindComplaint(ctx, &c, in, true); err != nil {
		return nil, err
	}
	if err := s.store.CreateComplaint(ctx, &c); err != nil {
		return nil, storeErr(err)
	}
	return &c, nil
}

// UpdateComplaint replaces or patches a complaint in the actor's scope.
func (s *Service) UpdateComplaint(ctx context.Context, actor *model.User, id uint, in ComplaintInput, partial bool) (*model.Complaint, error) {
	c, err := s.GetComplaint(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := requireWrite(actor, authz.ResourceComplaint, authz.ActionUpdate); err != nil {
		return nil, err
	}
	if err := s.bindComplaint(ctx, c, in, !partial); err != nil {
		return nil, err
	}
	if err := s.store.UpdateComplaint(ctx, c); err != nil {
		return nil, storeErr(err)
	}
	return c, nil
}

// DeleteComplaint removes a complaint in the actor's scope.
func (s *Service) DeleteComplaint(ctx context.Context, actor *model.User, id uint) error {
	if _, err := s.GetComplaint(ctx, actor, id); err != nil {
		return err
	}
	if err := requireWrite(actor, authz.ResourceComplaint, authz.ActionDelete); err != nil {
		return err
	}
	return storeErr(s.store.DeleteComplaint(ctx, id))
}

func (s *Service) bindComplaint(ctx context.Context, c *model.Complaint, in ComplaintInput, full bool) error {
	b := validate.NewBinder(ctx, s.store, full, validate.Struct(in))
	today := s.Today()

	b.Machine("machine", in.Machine, &c.MachineID)
	failureSet := b.Date("failure_date", in.FailureDate, &c.FailureDate)
	if failureSet {
		validate.NotInFuture(b.Errs(), "failure_date", c.FailureDate, today)
	}
	b.Hours("operating_hours", in.OperatingHours, &c.OperatingHours)
	b.Catalog("failure_node", model.KindFailureNode, in.FailureNode, &c.FailureNodeID)
	b.Text("failure_description", in.FailureDescription, &c.FailureDescription)
	b.Catalog("recovery_method", model.KindRecoveryMethod, in.RecoveryMethod, &c.RecoveryMethodID)
	b.OptionalText("spare_parts_used", in.SparePartsUsed, &c.SparePartsUsed)
	restorationSet := b.Date("restoration_date", in.RestorationDate, &c.RestorationDate)
	if restorationSet {
		validate.NotInFuture(b.Errs(), "restoration_date", c.RestorationDate, today)
	}
	b.User("service_company", recordServiceRoles, in.ServiceCompany, &c.ServiceCompanyID)

	if failureSet && restorationSet {
		validate.RestorationNotBeforeFailure(b.Errs(), c.FailureDate, c.RestorationDate)
	}
	return finish(b.Errs(), b.Err())
}

package service

import (
	"context"
	"errors"

	"silant-backend/internal/apperr"
	"silant-backend/internal/authz"
	"silant-backend/internal/model"
	"silant-backend/internal/store"
	"silant-backend/internal/validate"
)

// MsgSerialTaken is reported when a serial number is already registered.
const MsgSerialTaken = "machine with this serial number already exists."

// MachineInput is a machine write payload. Referenced rows are given by human
// key: catalog entry name and username.
type MachineInput struct {
	SerialNumber          *string `json:"serial_number" validate:"omitempty,max=100"`
	TechniqueModel        *string `json:"technique_model"`
	EngineModel           *string `json:"engine_model"`
	EngineNumber          *string `json:"engine_number" validate:"omitempty,max=100"`
	TransmissionModel     *string `json:"transmission_model"`
	TransmissionNumber    *string `json:"transmission_number" validate:"omitempty,max=100"`
	DriveAxleModel        *string `json:"drive_axle_model"`
	DriveAxleNumber       *string `json:"drive_axle_number" validate:"omitempty,max=100"`
	SteeringAxleModel     *string `json:"steering_axle_model"`
	SteeringAxleNumber    *string `json:"steering_axle_number" validate:"omitempty,max=100"`
	SupplyContractNumDate *string `json:"supply_contract_num_date" validate:"omitempty,max=255"`
	ShipmentDate          *string `json:"shipment_date"`
	Consignee             *string `json:"consignee" validate:"omitempty,max=255"`
	DeliveryAddress       *string `json:"delivery_address" validate:"omitempty,max=255"`
	EquipmentOptions      *string `json:"equipment_options"`
	Client                *string `json:"client"`
	ServiceCompany        *string `json:"service_company"`
}

// ListMachines returns one page of the machines the actor may see.
func (s *Service) ListMachines(ctx context.Context, actor *model.User, q store.ListQuery) ([]model.Machine, int64, error) {
	scope, err := readScope(actor)
	if err != nil {
		return nil, 0, err
	}
	rows, count, err := s.store.ListMachines(ctx, scope, q)
	if err != nil {
		return nil, 0, storeErr(err)
	}
	return rows, count, nil
}

// GetMachine returns a machine in the actor's scope. Machines outside it are
// reported as not found.
func (s *Service) GetMachine(ctx context.Context, actor *model.User, id uint) (*model.Machine, error) {
	scope, err := readScope(actor)
	if err != nil {
		return nil, err
	}
	m, err := s.store.GetMachine(ctx, scope, id)
	if err != nil {
		return nil, storeErr(err)
	}
	return m, nil
}

// CreateMachine registers a new machine.
func (s *Service) CreateMachine(ctx context.Context, actor *model.User, in MachineInput) (*model.Machine, error) {
	if err := requireWrite(actor, authz.ResourceMachine, authz.ActionCreate); err != nil {
		return nil, err
	}
	var m model.Machine
	if err := s.bindMachine(ctx, &m, in, true); err != nil {
		return nil, err
	}
	if err := s.store.CreateMachine(ctx, &m); err != nil {
		return nil, machineWriteErr(err)
	}
	return &m, nil
}

// UpdateMachine replaces (partial == false) or patches a machine. The machine
// must be visible to the actor before the write permission is checked.
func (s *Service) UpdateMachine(ctx context.Context, actor *model.User, id uint, in MachineInput, partial bool) (*model.Machine, error) {
	m, err := s.GetMachine(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := requireWrite(actor, authz.ResourceMachine, authz.ActionUpdate); err != nil {
		return nil, err
	}
	if err := s.bindMachine(ctx, m, in, !partial); err != nil {
		return nil, err
	}
	if err := s.store.UpdateMachine(ctx, m); err != nil {
		return nil, machineWriteErr(err)
	}
	return m, nil
}

// DeleteMachine removes a machine with its maintenances and complaints.
func (s *Service) DeleteMachine(ctx context.Context, actor *model.User, id uint) error {
	if _, err := s.GetMachine(ctx, actor, id); err != nil {
		return err
	}
	if err := requireWrite(actor, authz.ResourceMachine, authz.ActionDelete); err != nil {
		return err
	}
	return storeErr(s.store.DeleteMachine(ctx, id))
}

func (s *Service) bindMachine(ctx context.Context, m *model.Machine, in MachineInput, full bool) error {
	b := validate.NewBinder(ctx, s.store, full, validate.Struct(in))

	b.Text("serial_number", in.SerialNumber, &m.SerialNumber)
	b.Catalog("technique_model", model.KindTechniqueModel, in.TechniqueModel, &m.TechniqueModelID)
	b.Catalog("engine_model", model.KindEngineModel, in.EngineModel, &m.EngineModelID)
	b.Text("engine_number", in.EngineNumber, &m.EngineNumber)
	b.Catalog("transmission_model", model.KindTransmissionModel, in.TransmissionModel, &m.TransmissionModelID)
	b.Text("transmission_number", in.TransmissionNumber, &m.TransmissionNumber)
	b.Catalog("drive_axle_model", model.KindDriveAxleModel, in.DriveAxleModel, &m.DriveAxleModelID)
	b.Text("drive_axle_number", in.DriveAxleNumber, &m.DriveAxleNumber)
	b.Catalog("steering_axle_model", model.KindSteeringAxleModel, in.SteeringAxleModel, &m.SteeringAxleModelID)
	b.Text("steering_axle_number", in.SteeringAxleNumber, &m.SteeringAxleNumber)
	b.Text("supply_contract_num_date", in.SupplyContractNumDate, &m.SupplyContractNumDate)
	b.Date("shipment_date", in.ShipmentDate, &m.ShipmentDate)
	b.Text("consignee", in.Consignee, &m.Consignee)
	b.Text("delivery_address", in.DeliveryAddress, &m.DeliveryAddress)
	b.OptionalText("equipment_options", in.EquipmentOptions, &m.EquipmentOptions)
	b.User("client", []model.Role{model.RoleClient}, in.Client, &m.ClientID)
	b.User("service_company", []model.Role{model.RoleServiceCompany}, in.ServiceCompany, &m.ServiceCompanyID)

	errs := b.Errs()
	if in.SerialNumber != nil && !errs.Has("serial_number") && b.Err() == nil {
		taken, err := s.store.SerialNumberTaken(ctx, m.SerialNumber, m.ID)
		if err != nil {
			return apperr.Internal(err)
		}
		if taken {
			errs.Add("serial_number", MsgSerialTaken)
		}
	}
	return finish(errs, b.Err())
}

// machineWriteErr reports a unique index collision that slipped past the
// serial number check as the same field error.
func machineWriteErr(err error) error {
	if errors.Is(err, store.ErrDuplicate) {
		return apperr.Validation(apperr.Fields{"serial_number": {MsgSerialTaken}})
	}
	return storeErr(err)
}

package api

import "silant-backend/internal/model"

// Referenced rows are rendered by the same human key a write accepts:
// catalog entries by name, users by username, machines by serial number.

type machineResponse struct {
	ID                    uint       `json:"id"`
	SerialNumber          string     `json:"serial_number"`
	TechniqueModel        string     `json:"technique_model"`
	EngineModel           string     `json:"engine_model"`
	EngineNumber          string     `json:"engine_number"`
	TransmissionModel     string     `json:"transmission_model"`
	TransmissionNumber    string     `json:"transmission_number"`
	DriveAxleModel        string     `json:"drive_axle_model"`
	DriveAxleNumber       string     `json:"drive_axle_number"`
	SteeringAxleModel     string     `json:"steering_axle_model"`
	SteeringAxleNumber    string     `json:"steering_axle_number"`
	SupplyContractNumDate string     `json:"supply_contract_num_date"`
	ShipmentDate          model.Date `json:"shipment_date"`
	Consignee             string     `json:"consignee"`
	DeliveryAddress       string     `json:"delivery_address"`
	EquipmentOptions      string     `json:"equipment_options"`
	Client                string     `json:"client"`
	ServiceCompany        string     `json:"service_company"`
}

func newMachineResponse(m *model.Machine) machineResponse {
	return machineResponse{
		ID:                    m.ID,
		SerialNumber:          m.SerialNumber,
		TechniqueModel:        m.TechniqueModel.Name,
		EngineModel:           m.EngineModel.Name,
		EngineNumber:          m.EngineNumber,
		TransmissionModel:     m.TransmissionModel.Name,
		TransmissionNumber:    m.TransmissionNumber,
		DriveAxleModel:        m.DriveAxleModel.Name,
		DriveAxleNumber:       m.DriveAxleNumber,
		SteeringAxleModel:     m.SteeringAxleModel.Name,
		SteeringAxleNumber:    m.SteeringAxleNumber,
		SupplyContractNumDate: m.SupplyContractNumDate,
		ShipmentDate:          m.ShipmentDate,
		Consignee:             m.Consignee,
		DeliveryAddress:       m.DeliveryAddress,
		EquipmentOptions:      m.EquipmentOptions,
		Client:                m.Client.Username,
		ServiceCompany:        m.ServiceCompany.Username,
	}
}

type maintenanceResponse struct {
	ID             uint       `json:"id"`
	Machine        string     `json:"machine"`
	ServiceType    string     `json:"service_type"`
	EventDate      model.Date `json:"event_date"`
	OperatingHours uint       `json:"operating_hours"`
	OrderNumber    string     `json:"order_number"`
	OrderDate      model.Date `json:"order_date"`
	ServiceCompany string     `json:"service_company"`
}

func newMaintenanceResponse(m *model.Maintenance) maintenanceResponse {
	return maintenanceResponse{
		ID:             m.ID,
		Machine:        m.Machine.SerialNumber,
		ServiceType:    m.ServiceType.Name,
		EventDate:      m.EventDate,
		OperatingHours: m.OperatingHours,
		OrderNumber:    m.OrderNumber,
		OrderDate:      m.OrderDate,
		ServiceCompany: m.ServiceCompany.Username,
	}
}

type complaintResponse struct {
	ID                 uint       `json:"id"`
	Machine            string     `json:"machine"`
	FailureDate        model.Date `json:"failure_date"`
	OperatingHours     uint       `json:"operating_hours"`
	FailureNode        string     `json:"failure_node"`
	FailureDescription string     `json:"failure_description"`
	RecoveryMethod     string     `json:"recovery_method"`
	SparePartsUsed     string     `json:"spare_parts_used"`
	RestorationDate    model.Date `json:"restoration_date"`
	Downtime           int        `json:"downtime"`
	ServiceCompany     string     `json:"service_company"`
}

func newComplaintResponse(c *model.Complaint) complaintResponse {
	return complaintResponse{
		ID:                 c.ID,
		Machine:            c.Machine.SerialNumber,
		FailureDate:        c.FailureDate,
		OperatingHours:     c.OperatingHours,
		FailureNode:        c.FailureNode.Name,
		FailureDescription: c.FailureDescription,
		RecoveryMethod:     c.RecoveryMethod.Name,
		SparePartsUsed:     c.SparePartsUsed,
		RestorationDate:    c.RestorationDate,
		Downtime:           c.Downtime(),
		ServiceCompany:     c.ServiceCompany.Username,
	}
}

type meResponse struct {
	ID        uint       `json:"id"`
	Username  string     `json:"username"`
	FirstName string     `json:"first_name"`
	Role      model.Role `json:"role"`
}

// mapSlice renders each row of a page.
func mapSlice[T, R any](rows []T, fn func(*T) R) []R {
	out := make([]R, len(rows))
	for i := range rows {
		out[i] = fn(&rows[i])
	}
	return out
}

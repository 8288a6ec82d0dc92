package model

import "time"

// Machine is one physical unit shipped to a client and serviced by a service
// company.
type Machine struct {
	ID           uint   `gorm:"primaryKey"`
	SerialNumber string `gorm:"uniqueIndex;size:100;not null"`

	TechniqueModelID    uint   `gorm:"not null;index"`
	EngineModelID       uint   `gorm:"not null;index"`
	EngineNumber        string `gorm:"size:100;not null"`
	TransmissionModelID uint   `gorm:"not null;index"`
	TransmissionNumber  string `gorm:"size:100;not null"`
	DriveAxleModelID    uint   `gorm:"not null;index"`
	DriveAxleNumber     string `gorm:"size:100;not null"`
	SteeringAxleModelID uint   `gorm:"not null;index"`
	SteeringAxleNumber  string `gorm:"size:100;not null"`

	SupplyContractNumDate string `gorm:"size:255;not null"`
	ShipmentDate          Date   `gorm:"not null;index"`
	Consignee             string `gorm:"size:255;not null"`
	DeliveryAddress       string `gorm:"size:255;not null"`
	EquipmentOptions      string `gorm:"type:text;not null;default:''"`

	ClientID         uint `gorm:"not null;index"`
	ServiceCompanyID uint `gorm:"not null;index"`

	CreatedAt time.Time
	UpdatedAt time.Time

	// Associations
	TechniqueModel    CatalogEntry `gorm:"foreignKey:TechniqueModelID;constraint:OnDelete:RESTRICT"`
	EngineModel       CatalogEntry `gorm:"foreignKey:EngineModelID;constraint:OnDelete:RESTRICT"`
	TransmissionModel CatalogEntry `gorm:"foreignKey:TransmissionModelID;constraint:OnDelete:RESTRICT"`
	DriveAxleModel    CatalogEntry `gorm:"foreignKey:DriveAxleModelID;constraint:OnDelete:RESTRICT"`
	SteeringAxleModel CatalogEntry `gorm:"foreignKey:SteeringAxleModelID;constraint:OnDelete:RESTRICT"`
	Client            User         `gorm:"foreignKey:ClientID;constraint:OnDelete:RESTRICT"`
	ServiceCompany    User         `gorm:"foreignKey:ServiceCompanyID;constraint:OnDelete:RESTRICT"`
}

// TechnicalSpec is the public projection of a Machine served to guests. It is
// loaded column by column and never built from a full Machine row.
type TechnicalSpec struct {
	SerialNumber       string `json:"serial_number"`
	TechniqueModel     string `json:"technique_model"`
	EngineModel        string `json:"engine_model"`
	EngineNumber       string `json:"engine_number"`
	TransmissionModel  string `json:"transmission_model"`
	TransmissionNumber string `json:"transmission_number"`
	DriveAxleModel     string `json:"drive_axle_model"`
	DriveAxleNumber    string `json:"drive_axle_number"`
	SteeringAxleModel  string `json:"steering_axle_model"`
	SteeringAxleNumber string `json:"steering_axle_number"`
}

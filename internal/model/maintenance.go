package model

import "time"

// Maintenance is a service event performed on a Machine.
type Maintenance struct {
	ID               uint   `gorm:"primaryKey"`
	MachineID        uint   `gorm:"not null;index"`
	ServiceTypeID    uint   `gorm:"not null;index"`
	EventDate        Date   `gorm:"not null;index"`
	OperatingHours   uint   `gorm:"not null"`
	OrderNumber      string `gorm:"size:100;not null"`
	OrderDate        Date   `gorm:"not null"`
	ServiceCompanyID uint   `gorm:"not null;index"`
	CreatedAt        time.Time
	UpdatedAt        time.Time

	// Associations
	Machine        Machine      `gorm:"constraint:OnDelete:CASCADE"`
	ServiceType    CatalogEntry `gorm:"foreignKey:ServiceTypeID;constraint:OnDelete:RESTRICT"`
	ServiceCompany User         `gorm:"foreignKey:ServiceCompanyID;constraint:OnDelete:RESTRICT"`
}

package model

import "time"

// Complaint is a failure reported on a Machine together with its repair.
type Complaint struct {
	ID                 uint   `gorm:"primaryKey"`
	MachineID          uint   `gorm:"not null;index"`
	FailureDate        Date   `gorm:"not null;index"`
	OperatingHours     uint   `gorm:"not null"`
	FailureNodeID      uint   `gorm:"not null;index"`
	FailureDescription string `gorm:"type:text;not null"`
	RecoveryMethodID   uint   `gorm:"not null;index"`
	SparePartsUsed     string `gorm:"type:text;not null;default:''"`
	RestorationDate    Date   `gorm:"not null"`
	ServiceCompanyID   uint   `gorm:"not null;index"`
	CreatedAt          time.Time
	UpdatedAt          time.Time

	// Associations
	Machine        Machine      `gorm:"constraint:OnDelete:CASCADE"`
	FailureNode    CatalogEntry `gorm:"foreignKey:FailureNodeID;constraint:OnDelete:RESTRICT"`
	RecoveryMethod CatalogEntry `gorm:"foreignKey:RecoveryMethodID;constraint:OnDelete:RESTRICT"`
	ServiceCompany User         `gorm:"foreignKey:ServiceCompanyID;constraint:OnDelete:RESTRICT"`
}

// Downtime is the number of whole days between failure and restoration. It is
// 0 when either date is missing and never negative.
func (c Complaint) Downtime() int {
	if c.FailureDate.IsZero() || c.RestorationDate.IsZero() {
		return 0
	}
	if days := c.RestorationDate.DaysSince(c.FailureDate); days > 0 {
		return days
	}
	return 0
}

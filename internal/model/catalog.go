package model

// CatalogKind discriminates the reference lists sharing the catalog table.
type CatalogKind string

const (
	KindTechniqueModel    CatalogKind = "technique_model"
	KindEngineModel       CatalogKind = "engine_model"
	KindTransmissionModel CatalogKind = "transmission_model"
	KindDriveAxleModel    CatalogKind = "drive_axle_model"
	KindSteeringAxleModel CatalogKind = "steering_axle_model"
	KindServiceType       CatalogKind = "service_type"
	KindFailureNode       CatalogKind = "failure_node"
	KindRecoveryMethod    CatalogKind = "recovery_method"
)

// CatalogKinds lists every catalog kind.
func CatalogKinds() []CatalogKind {
	return []CatalogKind{
		KindTechniqueModel,
		KindEngineModel,
		KindTransmissionModel,
		KindDriveAxleModel,
		KindSteeringAxleModel,
		KindServiceType,
		KindFailureNode,
		KindRecoveryMethod,
	}
}

// Valid reports whether k is a known catalog kind.
func (k CatalogKind) Valid() bool {
	for _, known := range CatalogKinds() {
		if k == known {
			return true
		}
	}
	return false
}

// CatalogEntry is a named reference value of one catalog kind. Name is unique
// within its kind.
type CatalogEntry struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Kind        CatalogKind `gorm:"size:32;not null;uniqueIndex:idx_catalog_kind_name" json:"-"`
	Name        string      `gorm:"size:255;not null;uniqueIndex:idx_catalog_kind_name" json:"name"`
	Description string      `gorm:"type:text;not null;default:''" json:"description"`
}

// TableName keeps every kind in one table.
func (CatalogEntry) TableName() string { return "catalog_entries" }

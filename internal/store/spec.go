package store

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// fieldRef locates a public filter field. A direct field compares column
// itself; a related field compares target inside table and keeps the rows
// whose column points at a match.
type fieldRef struct {
	column string
	table  string
	target string
}

func (f fieldRef) expr(lookup Lookup) string {
	subject := f.column
	if f.table != "" {
		subject = f.target
	}
	cond := subject + " = ?"
	if lookup == LookupIContains {
		cond = "LOWER(" + subject + `) LIKE ? ESCAPE '\'`
	}
	if f.table == "" {
		return cond
	}
	return f.column + " IN (SELECT id FROM " + f.table + " WHERE " + cond + ")"
}

// likeEscaper makes LIKE wildcards in user input match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// entitySpec is the listing metadata of one scoped table.
type entitySpec struct {
	table        string
	preloads     []string
	filters      map[string]fieldRef
	orders       map[string]string
	defaultOrder string
}

func (s *entitySpec) preload(tx *gorm.DB) *gorm.DB {
	for _, p := range s.preloads {
		tx = tx.Preload(p)
	}
	return tx
}

func (s *entitySpec) filter(tx *gorm.DB, filters []Filter) *gorm.DB {
	for _, f := range filters {
		ref, ok := s.filters[f.Field]
		if !ok {
			continue
		}
		value := f.Value
		if f.Lookup == LookupIContains {
			str, _ := value.(string)
			value = "%" + likeEscaper.Replace(strings.ToLower(str)) + "%"
		}
		tx = tx.Where(ref.expr(f.Lookup), value)
	}
	return tx
}

// order applies the requested ordering, then the default ordering, then id so
// pages are stable.
func (s *entitySpec) order(tx *gorm.DB, orders []Order) *gorm.DB {
	seen := map[string]bool{}
	by := func(column string, desc bool) {
		if seen[column] {
			return
		}
		seen[column] = true
		tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: desc})
	}
	for _, o := range orders {
		if column, ok := s.orders[o.Field]; ok {
			by(column, o.Desc)
		}
	}
	if s.defaultOrder != "" {
		by(s.defaultOrder, false)
	}
	by("id", false)
	return tx
}

func catalogName(column string) fieldRef {
	return fieldRef{column: column, table: "catalog_entries", target: "name"}
}

var machineSerial = fieldRef{column: "machine_id", table: "machines", target: "serial_number"}

var machines = &entitySpec{
	table: "machines",
	preloads: []string{
		"TechniqueModel", "EngineModel", "TransmissionModel",
		"DriveAxleModel", "SteeringAxleModel", "Client", "ServiceCompany",
	},
	filters: map[string]fieldRef{
		"technique_model__name":     catalogName("technique_model_id"),
		"engine_model__name":        catalogName("engine_model_id"),
		"transmission_model__name":  catalogName("transmission_model_id"),
		"drive_axle_model__name":    catalogName("drive_axle_model_id"),
		"steering_axle_model__name": catalogName("steering_axle_model_id"),
	},
	orders: map[string]string{
		"id":                       "id",
		"serial_number":            "serial_number",
		"technique_model":          "technique_model_id",
		"engine_model":             "engine_model_id",
		"engine_number":            "engine_number",
		"transmission_model":       "transmission_model_id",
		"transmission_number":      "transmission_number",
		"drive_axle_model":         "drive_axle_model_id",
		"drive_axle_number":        "drive_axle_number",
		"steering_axle_model":      "steering_axle_model_id",
		"steering_axle_number":     "steering_axle_number",
		"supply_contract_num_date": "supply_contract_num_date",
		"shipment_date":            "shipment_date",
		"consignee":                "consignee",
		"delivery_address":         "delivery_address",
		"equipment_options":        "equipment_options",
		"client":                   "client_id",
		"service_company":          "service_company_id",
	},
	defaultOrder: "shipment_date",
}

var maintenances = &entitySpec{
	table: "maintenances",
	preloads: []string{
		"Machine", "ServiceType", "ServiceCompany",
	},
	filters: map[string]fieldRef{
		"service_type":           {column: "service_type_id"},
		"service_company":        {column: "service_company_id"},
		"machine__serial_number": machineSerial,
	},
	orders: map[string]string{
		"id":              "id",
		"machine":         "machine_id",
		"service_type":    "service_type_id",
		"event_date":      "event_date",
		"operating_hours": "operating_hours",
		"order_number":    "order_number",
		"order_date":      "order_date",
		"service_company": "service_company_id",
	},
	defaultOrder: "event_date",
}

var complaints = &entitySpec{
	table: "complaints",
	preloads: []string{
		"Machine", "FailureNode", "RecoveryMethod", "ServiceCompany",
	},
	filters: map[string]fieldRef{
		"failure_node":           {column: "failure_node_id"},
		"recovery_method":        {column: "recovery_method_id"},
		"service_company":        {column: "service_company_id"},
		"machine__serial_number": machineSerial,
	},
	orders: map[string]string{
		"id":                  "id",
		"machine":             "machine_id",
		"failure_date":        "failure_date",
		"operating_hours":     "operating_hours",
		"failure_node":        "failure_node_id",
		"failure_description": "failure_description",
		"recovery_method":     "recovery_method_id",
		"spare_parts_used":    "spare_parts_used",
		"restoration_date":    "restoration_date",
		"service_company":     "service_company_id",
	},
	defaultOrder: "failure_date",
}

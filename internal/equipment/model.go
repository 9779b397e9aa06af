package equipment

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

type Type string

const (
	TypeCardio             Type = "CARDIO"
	TypeStrength           Type = "STRENGTH"
	TypeFlexibility        Type = "FLEXIBILITY"
	TypeWeightTraining     Type = "WEIGHT_TRAINING"
	TypeFunctionalTraining Type = "FUNCTIONAL_TRAINING"
	TypeSportsEquipment    Type = "SPORTS_EQUIPMENT"
)

var equipmentTypes = []interface{}{
	string(TypeCardio), string(TypeStrength), string(TypeFlexibility),
	string(TypeWeightTraining), string(TypeFunctionalTraining), string(TypeSportsEquipment),
}

type Status string

const (
	StatusAvailable   Status = "AVAILABLE"
	StatusInUse       Status = "IN_USE"
	StatusMaintenance Status = "MAINTENANCE"
	StatusOutOfOrder  Status = "OUT_OF_ORDER"
	StatusRetired     Status = "RETIRED"
)

var statuses = []interface{}{
	string(StatusAvailable), string(StatusInUse), string(StatusMaintenance),
	string(StatusOutOfOrder), string(StatusRetired),
}

func ParseType(s string) (Type, bool) {
	t := Type(strings.ToUpper(strings.TrimSpace(s)))
	for _, v := range equipmentTypes {
		if string(t) == v {
			return t, true
		}
	}
	return t, false
}

func ParseStatus(s string) (Status, bool) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	for _, v := range statuses {
		if string(st) == v {
			return st, true
		}
	}
	return st, false
}

type Equipment struct {
	ID                  int        `db:"id" json:"id"`
	Name                string     `db:"name" json:"name"`
	Description         string     `db:"description" json:"description"`
	Type                Type       `db:"type" json:"type" swaggertype:"string" example:"CARDIO"`
	Status              Status     `db:"status" json:"status" swaggertype:"string" example:"AVAILABLE"`
	PurchasePriceCents  int64      `db:"purchase_price_cents" json:"purchase_price_cents"`
	PurchaseDate        time.Time  `db:"purchase_date" json:"purchase_date"`
	LastMaintenanceDate *time.Time `db:"last_maintenance_date" json:"last_maintenance_date,omitempty"`
	NextMaintenanceDate *time.Time `db:"next_maintenance_date" json:"next_maintenance_date,omitempty"`
	Location            string     `db:"location" json:"location"`
	SerialNumber        *string    `db:"serial_number" json:"serial_number,omitempty"`
	WarrantyExpiry      *time.Time `db:"warranty_expiry" json:"warranty_expiry,omitempty"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at" json:"updated_at"`
}

// NeedsMaintenance reports equipment held in maintenance whose next
// maintenance date has been reached.
func (e *Equipment) NeedsMaintenance(now time.Time) bool {
	return e.Status == StatusMaintenance && e.NextMaintenanceDate != nil && !e.NextMaintenanceDate.After(now)
}

type EquipmentRequest struct {
	Name                string     `json:"name" example:"Treadmill T-200"`
	Description         string     `json:"description"`
	Type                string     `json:"type" example:"CARDIO"`
	PurchasePriceCents  int64      `json:"purchase_price_cents" example:"250000"`
	PurchaseDate        *time.Time `json:"purchase_date,omitempty"`
	LastMaintenanceDate *time.Time `json:"last_maintenance_date,omitempty"`
	NextMaintenanceDate *time.Time `json:"next_maintenance_date,omitempty"`
	Location            string     `json:"location" example:"Cardio zone"`
	SerialNumber        string     `json:"serial_number,omitempty" example:"TM-2024-0001"`
	WarrantyExpiry      *time.Time `json:"warranty_expiry,omitempty"`
}

func (r EquipmentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Description, validation.Length(0, 500)),
		validation.Field(&r.Type, validation.Required, validation.In(equipmentTypes...)),
		validation.Field(&r.PurchasePriceCents, validation.Required, validation.Min(int64(1))),
		validation.Field(&r.Location, validation.Length(0, 100)),
		validation.Field(&r.SerialNumber, validation.Length(0, 100), is.PrintableASCII),
	)
}

// toEquipment builds the row for r. A missing purchase date defaults to now
// and an empty serial number is stored as NULL.
func (r EquipmentRequest) toEquipment(now time.Time) *Equipment {
	t, _ := ParseType(r.Type)
	e := &Equipment{
		Name:                r.Name,
		Description:         r.Description,
		Type:                t,
		PurchasePriceCents:  r.PurchasePriceCents,
		PurchaseDate:        now,
		LastMaintenanceDate: r.LastMaintenanceDate,
		NextMaintenanceDate: r.NextMaintenanceDate,
		Location:            r.Location,
		WarrantyExpiry:      r.WarrantyExpiry,
	}
	if r.PurchaseDate != nil {
		e.PurchaseDate = *r.PurchaseDate
	}
	if serial := strings.TrimSpace(r.SerialNumber); serial != "" {
		e.SerialNumber = &serial
	}
	return e
}

type StatusRequest struct {
	Status string `json:"status" example:"OUT_OF_ORDER"`
}

func (r StatusRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Status, validation.Required, validation.In(statuses...)),
	)
}

type MaintenanceRequest struct {
	NextMaintenanceDate time.Time `json:"next_maintenance_date" example:"2026-06-01T09:00:00Z"`
}

func (r MaintenanceRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.NextMaintenanceDate, validation.Required),
	)
}

type WarrantyRequest struct {
	WarrantyExpiry time.Time `json:"warranty_expiry" example:"2028-01-01T00:00:00Z"`
}

func (r WarrantyRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.WarrantyExpiry, validation.Required),
	)
}

package registration

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

type Status string

const (
	StatusRegistered Status = "REGISTERED"
	StatusAttended   Status = "ATTENDED"
	StatusCancelled  Status = "CANCELLED"
	StatusNoShow     Status = "NO_SHOW"
)

var statuses = []interface{}{
	string(StatusRegistered), string(StatusAttended), string(StatusCancelled), string(StatusNoShow),
}

func ParseStatus(s string) (Status, bool) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case StatusRegistered, StatusAttended, StatusCancelled, StatusNoShow:
		return st, true
	}
	return st, false
}

type Registration struct {
	ID               int        `db:"id" json:"id"`
	MemberID         int        `db:"member_id" json:"member_id"`
	GymClassID       int        `db:"gym_class_id" json:"gym_class_id"`
	Status           Status     `db:"status" json:"status" swaggertype:"string" example:"REGISTERED"`
	RegistrationDate time.Time  `db:"registration_date" json:"registration_date"`
	AttendanceDate   *time.Time `db:"attendance_date" json:"attendance_date,omitempty"`
	Notes            string     `db:"notes" json:"notes"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

// RegistrationWithClass is a registration joined with its class schedule.
type RegistrationWithClass struct {
	Registration
	ClassName      string `db:"class_name" json:"class_name"`
	ClassStartTime string `db:"class_start_time" json:"class_start_time"`
	ClassEndTime   string `db:"class_end_time" json:"class_end_time"`
	ScheduleDays   string `db:"schedule_days" json:"schedule_days"`
}

type StatsByDay struct {
	Bucket     string `db:"bucket" json:"bucket"`
	Registered int    `db:"registered" json:"registered"`
	Attended   int    `db:"attended" json:"attended"`
	Cancelled  int    `db:"cancelled" json:"cancelled"`
	NoShow     int    `db:"no_show" json:"no_show"`
}

type StatsByClass struct {
	GymClassID int    `db:"gym_class_id" json:"gym_class_id"`
	ClassName  string `db:"class_name" json:"class_name"`
	Registered int    `db:"registered" json:"registered"`
	Attended   int    `db:"attended" json:"attended"`
	Cancelled  int    `db:"cancelled" json:"cancelled"`
	NoShow     int    `db:"no_show" json:"no_show"`
}

type RegisterRequest struct {
	MemberID   int    `json:"member_id" example:"5"`
	GymClassID int    `json:"gym_class_id" example:"1"`
	Notes      string `json:"notes,omitempty"`
}

func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.MemberID, validation.Required, validation.Min(1)),
		validation.Field(&r.GymClassID, validation.Required, validation.Min(1)),
		validation.Field(&r.Notes, validation.Length(0, 500)),
	)
}

type StatusRequest struct {
	Status string `json:"status" example:"ATTENDED"`
}

func (r StatusRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Status, validation.Required, validation.In(statuses...)),
	)
}

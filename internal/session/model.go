package session

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

type Type string

const (
	TypePersonalTraining    Type = "PERSONAL_TRAINING"
	TypeGroupTraining       Type = "GROUP_TRAINING"
	TypeConsultation        Type = "CONSULTATION"
	TypeAssessment          Type = "ASSESSMENT"
	TypeNutritionCounseling Type = "NUTRITION_COUNSELING"
)

var sessionTypes = []interface{}{
	string(TypePersonalTraining), string(TypeGroupTraining), string(TypeConsultation),
	string(TypeAssessment), string(TypeNutritionCounseling),
}

func ParseType(s string) (Type, bool) {
	t := Type(strings.ToUpper(strings.TrimSpace(s)))
	for _, v := range sessionTypes {
		if string(t) == v.(string) {
			return t, true
		}
	}
	return t, false
}

type Status string

const (
	StatusScheduled  Status = "SCHEDULED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
	StatusNoShow     Status = "NO_SHOW"
)

var statuses = []interface{}{
	string(StatusScheduled), string(StatusInProgress), string(StatusCompleted), string(StatusCancelled), string(StatusNoShow),
}

func ParseStatus(s string) (Status, bool) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	for _, v := range statuses {
		if string(st) == v.(string) {
			return st, true
		}
	}
	return st, false
}

// MinDurationMinutes is the shortest session that can be booked.
const MinDurationMinutes = 15

type Session struct {
	ID            int        `db:"id" json:"id"`
	TrainerID     int        `db:"trainer_id" json:"trainer_id"`
	MemberID      int        `db:"member_id" json:"member_id"`
	Type          Type       `db:"type" json:"type" swaggertype:"string" example:"PERSONAL_TRAINING"`
	Status        Status     `db:"status" json:"status" swaggertype:"string" example:"SCHEDULED"`
	ScheduledDate time.Time  `db:"scheduled_date" json:"scheduled_date"`
	Duration      int        `db:"duration" json:"duration" example:"60"`
	StartTime     *time.Time `db:"start_time" json:"start_time,omitempty"`
	EndTime       *time.Time `db:"end_time" json:"end_time,omitempty"`
	PriceCents    int64      `db:"price_cents" json:"price_cents"`
	Notes         string     `db:"notes" json:"notes"`
	Location      string     `db:"location" json:"location"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// EndsAt is the planned end of the session.
func (s *Session) EndsAt() time.Time {
	return s.ScheduledDate.Add(time.Duration(s.Duration) * time.Minute)
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) share any instant.
// Touching windows do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	start := aStart
	if bStart.After(start) {
		start = bStart
	}
	end := aEnd
	if bEnd.Before(end) {
		end = bEnd
	}
	return start.Before(end)
}

type SessionRequest struct {
	TrainerID     int       `json:"trainer_id" example:"2"`
	MemberID      int       `json:"member_id" example:"5"`
	Type          string    `json:"type" example:"PERSONAL_TRAINING"`
	ScheduledDate time.Time `json:"scheduled_date" example:"2026-03-02T18:00:00Z"`
	Duration      int       `json:"duration" example:"60"`
	PriceCents    int64     `json:"price_cents" example:"4000"`
	Notes         string    `json:"notes,omitempty"`
	Location      string    `json:"location,omitempty"`
}

func (r SessionRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.TrainerID, validation.Required, validation.Min(1)),
		validation.Field(&r.MemberID, validation.Required, validation.Min(1)),
		validation.Field(&r.Type, validation.Required, validation.In(sessionTypes...)),
		validation.Field(&r.ScheduledDate, validation.Required),
		validation.Field(&r.Duration, validation.Required,
			validation.Min(MinDurationMinutes).Error("Duration must be at least 15 minutes")),
		validation.Field(&r.PriceCents, validation.Min(int64(0))),
		validation.Field(&r.Notes, validation.Length(0, 1000)),
		validation.Field(&r.Location, validation.Length(0, 200)),
	)
}

// UpdateRequest changes everything but the people involved.
type UpdateRequest struct {
	Type          string    `json:"type" example:"ASSESSMENT"`
	ScheduledDate time.Time `json:"scheduled_date" example:"2026-03-02T18:00:00Z"`
	Duration      int       `json:"duration" example:"45"`
	PriceCents    int64     `json:"price_cents" example:"3000"`
	Notes         string    `json:"notes,omitempty"`
	Location      string    `json:"location,omitempty"`
}

func (r UpdateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Type, validation.Required, validation.In(sessionTypes...)),
		validation.Field(&r.ScheduledDate, validation.Required),
		validation.Field(&r.Duration, validation.Required,
			validation.Min(MinDurationMinutes).Error("Duration must be at least 15 minutes")),
		validation.Field(&r.PriceCents, validation.Min(int64(0))),
		validation.Field(&r.Notes, validation.Length(0, 1000)),
		validation.Field(&r.Location, validation.Length(0, 200)),
	)
}

type RescheduleRequest struct {
	ScheduledDate time.Time `json:"scheduled_date" example:"2026-03-03T18:00:00Z"`
}

func (r RescheduleRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ScheduledDate, validation.Required),
	)
}

type StatusRequest struct {
	Status string `json:"status" example:"IN_PROGRESS"`
}

func (r StatusRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Status, validation.Required, validation.In(statuses...)),
	)
}

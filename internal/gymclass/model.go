package gymclass

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

type ClassType string

const (
	TypeYoga             ClassType = "YOGA"
	TypePilates          ClassType = "PILATES"
	TypeSpinning         ClassType = "SPINNING"
	TypeZumba            ClassType = "ZUMBA"
	TypeCrossfit         ClassType = "CROSSFIT"
	TypeStrengthTraining ClassType = "STRENGTH_TRAINING"
	TypeCardio           ClassType = "CARDIO"
	TypeStretching       ClassType = "STRETCHING"
	TypeBoxing           ClassType = "BOXING"
	TypeKickboxing       ClassType = "KICKBOXING"
)

var classTypes = []interface{}{
	string(TypeYoga), string(TypePilates), string(TypeSpinning), string(TypeZumba), string(TypeCrossfit),
	string(TypeStrengthTraining), string(TypeCardio), string(TypeStretching), string(TypeBoxing), string(TypeKickboxing),
}

type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusInactive  Status = "INACTIVE"
	StatusCancelled Status = "CANCELLED"
	StatusFull      Status = "FULL"
)

var statuses = []interface{}{
	string(StatusActive), string(StatusInactive), string(StatusCancelled), string(StatusFull),
}

func ParseClassType(s string) (ClassType, bool) {
	t := ClassType(strings.ToUpper(strings.TrimSpace(s)))
	for _, v := range classTypes {
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

var ErrEnrollmentOutOfRange = errors.New("enrollment out of range")

type GymClass struct {
	ID                int       `db:"id" json:"id"`
	Name              string    `db:"name" json:"name"`
	Description       string    `db:"description" json:"description"`
	Type              ClassType `db:"type" json:"type" swaggertype:"string" example:"YOGA"`
	Status            Status    `db:"status" json:"status" swaggertype:"string" example:"ACTIVE"`
	TrainerID         int       `db:"trainer_id" json:"trainer_id"`
	StartTime         string    `db:"start_time" json:"start_time" example:"09:00"`
	EndTime           string    `db:"end_time" json:"end_time" example:"10:00"`
	MaxCapacity       int       `db:"max_capacity" json:"max_capacity"`
	CurrentEnrollment int       `db:"current_enrollment" json:"current_enrollment"`
	PriceCents        int64     `db:"price_cents" json:"price_cents"`
	Location          string    `db:"location" json:"location"`
	ScheduleDays      string    `db:"schedule_days" json:"schedule_days" example:"MON,WED,FRI"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

func (g *GymClass) DurationMinutes() int {
	d, err := windowMinutes(g.StartTime, g.EndTime)
	if err != nil {
		return 0
	}
	return d
}

func (g *GymClass) AvailableSpots() int {
	if g.CurrentEnrollment >= g.MaxCapacity {
		return 0
	}
	return g.MaxCapacity - g.CurrentEnrollment
}

func (g *GymClass) IsFull() bool {
	return g.Status == StatusFull || g.CurrentEnrollment >= g.MaxCapacity
}

// AdjustEnrollment moves the enrollment count by delta and recomputes the
// status. The count never leaves [0, MaxCapacity].
func (g *GymClass) AdjustEnrollment(delta int) error {
	return g.SetEnrollment(g.CurrentEnrollment + delta)
}

// SetEnrollment replaces the enrollment count and recomputes the status.
func (g *GymClass) SetEnrollment(n int) error {
	if n < 0 || n > g.MaxCapacity {
		return fmt.Errorf("%w: %d not in [0, %d]", ErrEnrollmentOutOfRange, n, g.MaxCapacity)
	}

	g.CurrentEnrollment = n
	switch {
	case n >= g.MaxCapacity:
		if g.Status == StatusActive || g.Status == StatusFull {
			g.Status = StatusFull
		}
	case g.Status == StatusFull:
		g.Status = StatusActive
	}
	return nil
}

var timeOfDay = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

func windowMinutes(start, end string) (int, error) {
	s, err := time.Parse("15:04", start)
	if err != nil {
		return 0, err
	}
	e, err := time.Parse("15:04", end)
	if err != nil {
		return 0, err
	}
	return int(e.Sub(s).Minutes()), nil
}

type ClassRequest struct {
	Name         string `json:"name" example:"Morning Yoga"`
	Description  string `json:"description"`
	Type         string `json:"type" example:"YOGA"`
	TrainerID    int    `json:"trainer_id" example:"2"`
	StartTime    string `json:"start_time" example:"09:00"`
	EndTime      string `json:"end_time" example:"10:00"`
	MaxCapacity  int    `json:"max_capacity" example:"20"`
	PriceCents   int64  `json:"price_cents" example:"1500"`
	Location     string `json:"location" example:"Studio A"`
	ScheduleDays string `json:"schedule_days" example:"MON,WED"`
}

func (r ClassRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Description, validation.Length(0, 500)),
		validation.Field(&r.Type, validation.Required, validation.In(classTypes...)),
		validation.Field(&r.TrainerID, validation.Required, validation.Min(1)),
		validation.Field(&r.StartTime, validation.Required, validation.Match(timeOfDay)),
		validation.Field(&r.EndTime, validation.Required, validation.Match(timeOfDay), validation.By(r.endAfterStart)),
		validation.Field(&r.MaxCapacity, validation.Required, validation.Min(1)),
		validation.Field(&r.PriceCents, validation.Min(int64(0))),
		validation.Field(&r.Location, validation.Length(0, 100)),
		validation.Field(&r.ScheduleDays, validation.Length(0, 50)),
	)
}

func (r ClassRequest) endAfterStart(interface{}) error {
	d, err := windowMinutes(r.StartTime, r.EndTime)
	if err != nil {
		return nil
	}
	if d <= 0 {
		return errors.New("must be after start_time")
	}
	return nil
}

type StatusRequest struct {
	Status string `json:"status" example:"INACTIVE"`
}

func (r StatusRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Status, validation.Required, validation.In(statuses...)),
	)
}

type EnrollmentRequest struct {
	CurrentEnrollment int `json:"current_enrollment" example:"5"`
}

func (r EnrollmentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CurrentEnrollment, validation.Min(0)),
	)
}

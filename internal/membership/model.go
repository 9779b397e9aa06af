package membership

import (
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

type Type string

const (
	TypeBasic   Type = "BASIC"
	TypePremium Type = "PREMIUM"
	TypeVIP     Type = "VIP"
	TypeStudent Type = "STUDENT"
	TypeSenior  Type = "SENIOR"
)

var membershipTypes = []interface{}{
	string(TypeBasic), string(TypePremium), string(TypeVIP), string(TypeStudent), string(TypeSenior),
}

func ParseType(s string) (Type, bool) {
	t := Type(strings.ToUpper(strings.TrimSpace(s)))
	for _, v := range membershipTypes {
		if string(t) == v.(string) {
			return t, true
		}
	}
	return t, false
}

type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusExpired   Status = "EXPIRED"
	StatusSuspended Status = "SUSPENDED"
	StatusCancelled Status = "CANCELLED"
)

var statuses = []interface{}{
	string(StatusActive), string(StatusExpired), string(StatusSuspended), string(StatusCancelled),
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

type Membership struct {
	ID          int       `db:"id" json:"id"`
	UserID      int       `db:"user_id" json:"user_id"`
	Type        Type      `db:"type" json:"type" swaggertype:"string" example:"PREMIUM"`
	Status      Status    `db:"status" json:"status" swaggertype:"string" example:"ACTIVE"`
	PriceCents  int64     `db:"price_cents" json:"price_cents"`
	StartDate   time.Time `db:"start_date" json:"start_date"`
	EndDate     time.Time `db:"end_date" json:"end_date"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// IsActiveAt reports whether the membership counts as the user's active one at t.
func (m *Membership) IsActiveAt(t time.Time) bool {
	return m.Status == StatusActive && m.EndDate.After(t)
}

// Plan is the catalogue entry a membership type is sold as.
type Plan struct {
	Type        Type   `json:"type" swaggertype:"string" example:"BASIC"`
	Name        string `json:"name" example:"Basic"`
	Description string `json:"description"`
	PriceCents  int64  `json:"price_cents" example:"2999"`
	Months      int    `json:"months" example:"1"`
}

func Plans() []Plan {
	return []Plan{
		{Type: TypeBasic, Name: "Basic", Description: "Gym floor access during staffed hours", PriceCents: 2999, Months: 1},
		{Type: TypePremium, Name: "Premium", Description: "Gym floor and all group classes", PriceCents: 4999, Months: 1},
		{Type: TypeVIP, Name: "VIP", Description: "Everything plus monthly personal training", PriceCents: 8999, Months: 1},
		{Type: TypeStudent, Name: "Student", Description: "Premium access with a valid student card", PriceCents: 1999, Months: 1},
		{Type: TypeSenior, Name: "Senior", Description: "Premium access for members over 65", PriceCents: 1999, Months: 1},
	}
}

func FindPlan(t Type) (Plan, bool) {
	for _, p := range Plans() {
		if p.Type == t {
			return p, true
		}
	}
	return Plan{}, false
}

// MembershipRequest creates or replaces a membership. Missing price and end
// date are taken from the plan of the chosen type.
type MembershipRequest struct {
	UserID      int        `json:"user_id" example:"5"`
	Type        string     `json:"type" example:"PREMIUM"`
	PriceCents  *int64     `json:"price_cents,omitempty" example:"4999"`
	StartDate   time.Time  `json:"start_date" example:"2026-03-01T00:00:00Z"`
	EndDate     *time.Time `json:"end_date,omitempty" example:"2026-04-01T00:00:00Z"`
	Description string     `json:"description,omitempty"`
}

var errEndBeforeStart = errors.New("end_date must be after start_date")

func (r MembershipRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.UserID, validation.Required, validation.Min(1)),
		validation.Field(&r.Type, validation.Required, validation.In(membershipTypes...)),
		validation.Field(&r.PriceCents, validation.Min(int64(0))),
		validation.Field(&r.StartDate, validation.Required),
		validation.Field(&r.EndDate, validation.By(func(interface{}) error {
			if r.EndDate != nil && !r.EndDate.After(r.StartDate) {
				return errEndBeforeStart
			}
			return nil
		})),
		validation.Field(&r.Description, validation.Length(0, 500)),
	)
}

// resolve fills plan defaults and returns the membership the request describes.
func (r MembershipRequest) resolve() *Membership {
	t, _ := ParseType(r.Type)
	plan, _ := FindPlan(t)

	m := &Membership{
		UserID:      r.UserID,
		Type:        t,
		PriceCents:  plan.PriceCents,
		StartDate:   r.StartDate,
		EndDate:     r.StartDate.AddDate(0, plan.Months, 0),
		Description: r.Description,
	}
	if r.PriceCents != nil {
		m.PriceCents = *r.PriceCents
	}
	if r.EndDate != nil {
		m.EndDate = *r.EndDate
	}
	return m
}

type StatusRequest struct {
	Status string `json:"status" example:"SUSPENDED"`
}

func (r StatusRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Status, validation.Required, validation.In(statuses...)),
	)
}

type RenewRequest struct {
	EndDate time.Time `json:"end_date" example:"2026-05-01T00:00:00Z"`
}

func (r RenewRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.EndDate, validation.Required),
	)
}

type ExpireResponse struct {
	Expired int64 `json:"expired" example:"3"`
}

package user

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"gymhub/internal/auth"
)

type User struct {
	ID           int       `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FirstName    string    `db:"first_name" json:"first_name"`
	LastName     string    `db:"last_name" json:"last_name"`
	Role         auth.Role `db:"role" json:"role" swaggertype:"string" example:"MEMBER"`
	Enabled      bool      `db:"enabled" json:"enabled"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Identity is what the user's tokens carry.
func (u *User) Identity() auth.Identity {
	return auth.Identity{Caller: auth.Caller{ID: u.ID, Role: u.Role}, Email: u.Email}
}

func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

func (u *User) Caller() auth.Caller {
	return auth.Caller{ID: u.ID, Role: u.Role}
}

type SignupRequest struct {
	Username  string   `json:"username" example:"jdoe"`
	Email     string   `json:"email" example:"jdoe@example.com"`
	Password  string   `json:"password" example:"secret123"`
	FirstName string   `json:"first_name" example:"John"`
	LastName  string   `json:"last_name" example:"Doe"`
	Roles     []string `json:"roles,omitempty" example:"member"`
}

func (r SignupRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.Length(3, 50), is.PrintableASCII),
		validation.Field(&r.Email, validation.Required, validation.Length(0, 100), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 100), validation.By(passwordPolicy)),
		validation.Field(&r.FirstName, validation.Required, validation.Length(1, 50)),
		validation.Field(&r.LastName, validation.Length(0, 50)),
	)
}

type SigninRequest struct {
	Login    string `json:"login" example:"jdoe"`
	Password string `json:"password" example:"secret123"`
}

func (r SigninRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Login, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (r RefreshRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.RefreshToken, validation.Required),
	)
}

// UpdateRequest carries optional profile changes. Role and Enabled are
// honoured only for administrators.
type UpdateRequest struct {
	Email     *string `json:"email,omitempty"`
	Password  *string `json:"password,omitempty"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Role      *string `json:"role,omitempty" example:"TRAINER"`
	Enabled   *bool   `json:"enabled,omitempty"`
}

func (r UpdateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, is.Email),
		validation.Field(&r.Password, validation.Length(6, 100), validation.By(passwordPolicy)),
		validation.Field(&r.FirstName, validation.Length(1, 50)),
		validation.Field(&r.LastName, validation.Length(0, 50)),
		validation.Field(&r.Role, validation.By(validRole)),
	)
}

type AuthResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type" example:"Bearer"`
	User         User   `json:"user"`
}

type RefreshResponse struct {
	AccessToken string `json:"access_token"`
	User        User   `json:"user"`
}

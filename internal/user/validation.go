package user

import (
	"errors"

	"github.com/dlclark/regexp2"

	"gymhub/internal/auth"
)

// At least one letter and one digit; no whitespace.
var passwordPattern = regexp2.MustCompile(`^(?=.*[A-Za-z])(?=.*\d)\S+$`, regexp2.None)

func passwordPolicy(value interface{}) error {
	var password string
	switch v := value.(type) {
	case string:
		password = v
	case *string:
		if v == nil {
			return nil
		}
		password = *v
	default:
		return errors.New("must be a string")
	}

	ok, err := passwordPattern.MatchString(password)
	if err != nil || !ok {
		return errors.New("must contain a letter and a digit and no spaces")
	}
	return nil
}

func validRole(value interface{}) error {
	role, ok := value.(*string)
	if !ok || role == nil {
		return nil
	}
	if _, valid := auth.ParseRole(*role); !valid {
		return errors.New("must be one of ADMIN, TRAINER, STAFF, MEMBER")
	}
	return nil
}

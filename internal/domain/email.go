package domain

import (
	"encoding/json"
	"fmt"

	"github.com/asaskevich/govalidator"
)

// Email is a validated subscriber email address. The zero value is not a
// valid address; always construct through ParseEmail.
type Email struct {
	addr string
}

// ParseEmail validates a raw email string. It rejects anything that does
// not match standard email-address grammar: a missing "@", an empty local
// part, or an empty domain all fail.
func ParseEmail(raw string) (Email, error) {
	if raw == "" || !govalidator.IsEmail(raw) {
		return Email{}, fmt.Errorf("%q is not a valid email address", raw)
	}
	return Email{addr: raw}, nil
}

// String returns the validated address.
func (e Email) String() string { return e.addr }

// IsZero reports whether the email was never parsed.
func (e Email) IsZero() bool { return e.addr == "" }

// MarshalJSON encodes the email as a plain JSON string.
func (e Email) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.addr)
}

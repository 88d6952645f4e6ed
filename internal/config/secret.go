package config

// Secret wraps a credential so it cannot leak through ordinary printing.
// fmt verbs, JSON, and YAML all render "[REDACTED]"; the raw value is only
// reachable through ExposeSecret.
type Secret struct {
	value string
}

// NewSecret wraps a raw credential.
func NewSecret(v string) Secret { return Secret{value: v} }

// ExposeSecret returns the wrapped credential. Call sites should be easy
// to audit: the value must go straight into a connection string or an
// outbound request header, never into a log field.
func (s Secret) ExposeSecret() string { return s.value }

// IsZero reports whether the secret is unset.
func (s Secret) IsZero() bool { return s.value == "" }

// String implements fmt.Stringer.
func (s Secret) String() string { return "[REDACTED]" }

// GoString implements fmt.GoStringer so %#v does not leak either.
func (s Secret) GoString() string { return "config.Secret{[REDACTED]}" }

// MarshalJSON never emits the wrapped value.
func (s Secret) MarshalJSON() ([]byte, error) { return []byte(`"[REDACTED]"`), nil }

// MarshalYAML never emits the wrapped value.
func (s Secret) MarshalYAML() (interface{}, error) { return "[REDACTED]", nil }

// UnmarshalYAML reads the secret from a config file scalar.
func (s *Secret) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	s.value = raw
	return nil
}

package oauthmodel

// Redacted wraps a secret so it never shows up in logs or error strings.
// Value returns the wrapped string for use in request headers and bodies.
type Redacted struct {
	value string
}

func NewRedacted(value string) Redacted {
	return Redacted{value: value}
}

func (r Redacted) Value() string {
	return r.value
}

func (r Redacted) IsEmpty() bool {
	return r.value == ""
}

func (r Redacted) String() string {
	if r.value == "" {
		return ""
	}
	return "[REDACTED]"
}

func (r Redacted) GoString() string {
	return "oauthmodel.Redacted{[REDACTED]}"
}

func (r Redacted) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

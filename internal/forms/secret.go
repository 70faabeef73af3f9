package forms

const redacted = "[redacted]"

// Secret wraps a password so it never leaks through fmt, %v or JSON encoding.
// It carries no cryptographic meaning; callers unwrap with Reveal.
type Secret struct {
	value string
}

// NewSecret wraps the provided value.
func NewSecret(value string) Secret {
	return Secret{value: value}
}

// Reveal returns the wrapped value.
func (s Secret) Reveal() string {
	return s.value
}

// IsZero reports whether the secret is empty.
func (s Secret) IsZero() bool {
	return s.value == ""
}

// Equal compares two secrets by their wrapped value.
func (s Secret) Equal(other Secret) bool {
	return s.value == other.value
}

// String never reveals the wrapped value.
func (s Secret) String() string {
	return redacted
}

func (s Secret) GoString() string {
	return "forms.Secret{" + redacted + "}"
}

func (s Secret) MarshalJSON() ([]byte, error) {
	return []byte(`"` + redacted + `"`), nil
}

func (s Secret) MarshalText() ([]byte, error) {
	return []byte(redacted), nil
}

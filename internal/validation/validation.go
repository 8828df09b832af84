package validation

import (
	"net/mail"
	"strings"
)

// FieldError is one flattened violation as it appears in the
// validation_errors list of an error envelope.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Violations collects validation messages per field. Field order and
// per-field message order are insertion order, so flattening is
// deterministic and matches the order the rules ran in.
type Violations struct {
	order   []string
	byField map[string][]string
}

func New() *Violations {
	return &Violations{byField: make(map[string][]string)}
}

// Add records a violation message for a field.
func (v *Violations) Add(field, message string) {
	if _, seen := v.byField[field]; !seen {
		v.order = append(v.order, field)
	}
	v.byField[field] = append(v.byField[field], message)
}

func (v *Violations) Empty() bool { return len(v.order) == 0 }

// Messages returns the messages recorded for a field, in order.
func (v *Violations) Messages(field string) []string {
	return v.byField[field]
}

// Flatten expands the field -> messages mapping into one entry per
// message: fields in first-insertion order, messages in add order.
func (v *Violations) Flatten() []FieldError {
	var out []FieldError
	for _, field := range v.order {
		for _, msg := range v.byField[field] {
			out = append(out, FieldError{Field: field, Message: msg})
		}
	}
	return out
}

// Basic validators

func Required(field, value string, v *Violations) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, "required")
	}
}

// In adds a violation unless value is one of allowed.
func In(field, value string, allowed []string, v *Violations) {
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	v.Add(field, "invalid")
}

func Email(field, value string, v *Violations) {
	if _, err := mail.ParseAddress(value); err != nil {
		v.Add(field, "invalid")
	}
}

func MinLen(field, value string, n int, v *Violations) {
	if len(value) < n {
		v.Add(field, "too_short")
	}
}

// RequiredID checks a numeric identifier reference (e.g. an author id).
func RequiredID(field string, id uint, v *Violations) {
	if id == 0 {
		v.Add(field, "required")
	}
}

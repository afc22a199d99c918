// Package validator provides a Validator type for accumulating field-level
// validation errors. Every failing check is kept, so one response can report
// all violations at once.
package validator

import "slices"

// Validator holds a map of field names to their validation error messages.
// A Validator with an empty Errors map is considered valid.
type Validator struct {
	Errors map[string][]string
}

// New creates and returns a fresh, empty Validator.
func New() *Validator {
	return &Validator{Errors: make(map[string][]string)}
}

// Valid returns true if the Errors map contains no entries.
func (v *Validator) Valid() bool {
	return len(v.Errors) == 0
}

// AddError appends message to the list of failures recorded for key.
// The same message is never recorded twice for one key.
func (v *Validator) AddError(key, message string) {
	if slices.Contains(v.Errors[key], message) {
		return
	}
	v.Errors[key] = append(v.Errors[key], message)
}

// Check adds an error for key with message only when ok is false.
// Use this as a single-line guard:
//
//	v.Check(len(title) > 0, "title", "must be provided")
func (v *Validator) Check(ok bool, key, message string) {
	if !ok {
		v.AddError(key, message)
	}
}

// Has reports whether key has at least one recorded error.
func (v *Validator) Has(key string) bool {
	return len(v.Errors[key]) > 0
}

// In returns true if value is present in the list slice.
func In(value string, list ...string) bool {
	return slices.Contains(list, value)
}

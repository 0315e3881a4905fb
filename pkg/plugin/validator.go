package plugin

import (
	"fmt"
	"slices"
	"unicode/utf8"
)

// ValidatorKind selects the rule a Validator applies.
type ValidatorKind string

const (
	// ValidateNone accepts any value.
	ValidateNone ValidatorKind = "none"
	// ValidateString accepts any non-empty string.
	ValidateString ValidatorKind = "string"
	// ValidateExactLength accepts strings of exactly Length characters.
	ValidateExactLength ValidatorKind = "exact_length"
	// ValidateOneOf accepts one of Values.
	ValidateOneOf ValidatorKind = "one_of"
)

// Validator describes how a configuration value is checked. It is plain
// data so it can be sent to the host and evaluated on either side.
type Validator struct {
	Kind   ValidatorKind `json:"kind"`
	Length int           `json:"length,omitempty"`
	Values []string      `json:"values,omitempty"`
}

// NoValidation accepts everything.
func NoValidation() Validator { return Validator{Kind: ValidateNone} }

// NonEmpty requires a non-empty string.
func NonEmpty() Validator { return Validator{Kind: ValidateString} }

// ExactLength requires exactly n characters.
func ExactLength(n int) Validator { return Validator{Kind: ValidateExactLength, Length: n} }

// OneOf requires one of the given values.
func OneOf(values ...string) Validator { return Validator{Kind: ValidateOneOf, Values: values} }

// Validate checks value against the rule.
func (v Validator) Validate(value string) error {
	switch v.Kind {
	case ValidateNone, "":
		return nil
	case ValidateString:
		if value == "" {
			return fmt.Errorf("%w: value is required", ErrInvalidConfiguration)
		}
		return nil
	case ValidateExactLength:
		if n := utf8.RuneCountInString(value); n != v.Length {
			return fmt.Errorf("%w: expected %d characters, got %d", ErrInvalidConfiguration, v.Length, n)
		}
		return nil
	case ValidateOneOf:
		if !slices.Contains(v.Values, value) {
			return fmt.Errorf("%w: %q is not one of %v", ErrInvalidConfiguration, value, v.Values)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown validator kind %q", ErrInvalidConfiguration, v.Kind)
	}
}

// ValidateFields checks values (keyed by field name) against the fields.
// Option fields sharing a name are validated as a single choice.
func ValidateFields(fields []ConfigField, values map[string]string) error {
	options := map[string][]string{}
	for _, f := range fields {
		if f.Type == FieldOption {
			options[f.Name] = append(options[f.Name], f.Value)
		}
	}
	seen := map[string]bool{}
	for _, f := range fields {
		if seen[f.Name] {
			continue
		}
		seen[f.Name] = true

		v := values[f.Name]
		if f.Type == FieldOption {
			if err := OneOf(options[f.Name]...).Validate(v); err != nil {
				return fmt.Errorf("%s: %w", f.Name, err)
			}
			continue
		}
		if err := f.Validator.Validate(v); err != nil {
			return fmt.Errorf("%s: %w", f.Name, err)
		}
	}
	return nil
}

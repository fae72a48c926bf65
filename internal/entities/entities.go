// Package entities declares every configuration entity the console manages:
// its fields, its table mapping, its validation and its list columns.
package entities

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"

	"github.com/lib/pq"
)

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

var hexColor = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

func validColor(field, value string) error {
	if value == "" || hexColor.MatchString(value) {
		return nil
	}
	return fmt.Errorf("%s must be a hex color like #1f6feb, got %q", field, value)
}

func validEmail(field string, value *string) error {
	if value == nil || *value == "" {
		return nil
	}
	if _, err := mail.ParseAddress(*value); err != nil {
		return fmt.Errorf("%s must be a valid email address, got %q", field, *value)
	}
	return nil
}

func oneOf(field, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("%s must be one of %s, got %q", field, strings.Join(allowed, ", "), value)
}

func optionalOneOf(field, value string, allowed ...string) error {
	if value == "" {
		return nil
	}
	return oneOf(field, value, allowed...)
}

func nonNegative[N int | float64](field string, value *N) error {
	if value != nil && *value < 0 {
		return fmt.Errorf("%s must not be negative", field)
	}
	return nil
}

// array binds a string slice to a Postgres text[] column. A nil slice is
// written as an empty array so NOT NULL columns accept it.
func array(s []string) interface{} {
	if s == nil {
		s = []string{}
	}
	return pq.Array(s)
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

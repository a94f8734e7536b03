// Watchwise - Engagement Tracking and Personalized Recommendations
// Copyright 2026 Max Ishida (maxishida)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/maxishida/watchwise

// Package validation provides struct validation using go-playground/validator
// v10. It exposes a thread-safe singleton validator (struct info is cached)
// plus error types that translate field failures into the API's
// VALIDATION_ERROR format.
//
//	type RecordViewRequest struct {
//	    UserID string `validate:"required,max=128"`
//	    ItemID string `validate:"required,max=128"`
//	}
//
//	if err := validation.ValidateStruct(&req); err != nil {
//	    // reject before any store access
//	}
package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError is a single field validation failure.
type FieldError struct {
	Field   string
	Tag     string
	Param   string
	Message string
}

// Error returns a human-readable message.
func (e *FieldError) Error() string {
	return e.Message
}

// RequestError is a collection of field validation failures for one request.
type RequestError struct {
	fields []FieldError
}

// Fields returns the individual field failures.
func (e *RequestError) Fields() []FieldError {
	return e.fields
}

// Error joins all field messages.
func (e *RequestError) Error() string {
	msgs := make([]string, 0, len(e.fields))
	for i := range e.fields {
		msgs = append(msgs, e.fields[i].Message)
	}
	return strings.Join(msgs, "; ")
}

// getValidator returns the singleton validator instance.
func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// ValidateStruct validates a struct against its `validate` tags.
// Returns nil on success or a *RequestError describing every failed field.
func ValidateStruct(v interface{}) *RequestError {
	err := getValidator().Struct(v)
	if err == nil {
		return nil
	}

	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		return &RequestError{fields: []FieldError{{
			Field:   "",
			Tag:     "struct",
			Message: "invalid value passed to validator",
		}}}
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &RequestError{fields: []FieldError{{Message: err.Error()}}}
	}

	out := make([]FieldError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Message: describeFailure(fe),
		})
	}
	return &RequestError{fields: out}
}

// describeFailure renders a readable message for one field failure.
func describeFailure(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}

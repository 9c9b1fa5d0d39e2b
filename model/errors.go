package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Error taxonomy shared by store, policy and workflows. The HTTP layer maps
// each type to a status code; anything else is treated as an internal error.

// ValidationError is a form level failure, Fields maps a form field to the
// message that should be shown next to it.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	e.Fields[field] = msg
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid form: " + strings.Join(parts, "; ")
}

// ConflictError is a uniqueness collision on username, email or title. No
// state is changed when it is returned.
type ConflictError struct {
	Field string
	Msg   string
}

func (e *ConflictError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return fmt.Sprintf("%s already taken", e.Field)
}

// AuthenticationError means the request has no usable identity: missing
// session, unknown email or wrong password.
type AuthenticationError struct {
	Msg string
}

func (e *AuthenticationError) Error() string {
	return e.Msg
}

// AuthorizationError means the actor is known but lacks the role or the
// ownership the operation needs.
type AuthorizationError struct {
	Msg string
}

func (e *AuthorizationError) Error() string {
	return e.Msg
}

// NotFoundError is a lookup miss by id or by unique field.
type NotFoundError struct {
	Entity string
	Key    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.Key)
}

var (
	ErrLoginRequired    = &AuthenticationError{Msg: "Please log in to access this page"}
	ErrUnknownEmail     = &AuthenticationError{Msg: "Email doesn't exist! Please Register"}
	ErrWrongPassword    = &AuthenticationError{Msg: "Wrong Password"}
	ErrPermissionDenied = &AuthorizationError{Msg: "You don't have the required permissions"}

	ErrEmailTaken    = &ConflictError{Field: "email", Msg: "Email already registered! Try Login"}
	ErrUsernameTaken = &ConflictError{Field: "username", Msg: "Username taken"}
	ErrTitleTaken    = &ConflictError{Field: "title", Msg: "A post with this title already exists"}
)

func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

func IsConflict(err error) bool {
	var e *ConflictError
	return errors.As(err, &e)
}

func IsAuthentication(err error) bool {
	var e *AuthenticationError
	return errors.As(err, &e)
}

func IsAuthorization(err error) bool {
	var e *AuthorizationError
	return errors.As(err, &e)
}

func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

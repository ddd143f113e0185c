package application

import "errors"

// Failure taxonomy surfaced to the HTTP boundary. Anything not listed
// here is an internal collaborator failure: logged, and reported to
// the caller as a bare server error.
var (
	// ErrInvalidCredentials covers both "no such account" and "wrong
	// password"; login must not reveal whether an email is registered.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotFound           = errors.New("not found")
	ErrEmailTaken         = errors.New("user already exists")
	ErrNotOwner           = errors.New("not the owner")
)

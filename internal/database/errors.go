package database

import "errors"

var (
	// ErrCodeExists is returned when an attempt is made to create
	// a new link with a short code that already exists.
	ErrCodeExists = errors.New("short code exists")
	// ErrLinkNotFound is returned when an attempt is made to retrieve
	// a link using a short code that doesn't exist.
	ErrLinkNotFound = errors.New("link not found")
	// ErrEmailExists is returned when an attempt is made to register
	// a user with an email that is already taken.
	ErrEmailExists = errors.New("email exists")
	// ErrUserNotFound is returned when a user with the given email
	// doesn't exist.
	ErrUserNotFound = errors.New("user not found")
)

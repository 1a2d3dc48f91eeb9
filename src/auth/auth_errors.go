package auth

import "errors"

// ErrUserAlreadyExists is returned when a username or email is already registered.
var ErrUserAlreadyExists = errors.New("user already exists")
var ErrUserNotFound = errors.New("user not found")

// ErrInvalidCredentials is returned when a username and password do not match.
var ErrInvalidCredentials = errors.New("invalid username or password")

var ErrWeakPassword = errors.New("password is too short")
var ErrInvalidUser = errors.New("invalid user details")

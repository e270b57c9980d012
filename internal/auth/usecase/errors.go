package usecase

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrEmailTaken         = errors.New("email is already taken")
	ErrUsernameTaken      = errors.New("username is already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidIdentity    = errors.New("identity token is invalid")
	ErrMissingIdentity    = errors.New("missing UID or email")
	ErrEmailNotVerified   = errors.New("email address is not verified")
	ErrTokenInvalid       = errors.New("token is invalid")
	ErrUIDRequired        = errors.New("UID required")
	ErrInvalidRole        = errors.New("invalid role")
	ErrAccountNotFound    = errors.New("account not found")
)

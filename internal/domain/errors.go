package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking
// infrastructure details. The set is closed: the HTTP layer matches it exhaustively.
var (
	// Credential / account errors.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrFirstNameRequired  = errors.New("first name is required")

	// OTP challenge errors.
	ErrOTPAlreadySent = errors.New("an OTP was already sent to this email")
	ErrOTPNotFound    = errors.New("no OTP found for this email")
	ErrOTPExpired     = errors.New("OTP expired")
	ErrOTPMaxAttempts = errors.New("maximum OTP attempts exceeded")
	ErrInvalidOTPCode = errors.New("invalid OTP code")

	// Token errors.
	ErrNoToken      = errors.New("no token provided")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
	ErrUnauthorized = errors.New("unauthorized")

	ErrInternal = errors.New("internal error")
)

package domain

import "time"

// AuthProvider identifies how an account authenticates.
type AuthProvider string

const (
	AuthProviderEmail  AuthProvider = "email"
	AuthProviderGoogle AuthProvider = "google"
	AuthProviderApple  AuthProvider = "apple"
	AuthProviderGitHub AuthProvider = "github"
)

type User struct {
	ID           int64        `json:"id" dynamodbav:"id"`
	UUID         string       `json:"uuid" dynamodbav:"uuid"`
	FirstName    string       `json:"first_name" dynamodbav:"first_name"`
	LastName     string       `json:"last_name,omitempty" dynamodbav:"last_name"`
	Email        string       `json:"email" dynamodbav:"email"`
	Phone        *string      `json:"phone,omitempty" dynamodbav:"phone"`
	Photo        *string      `json:"photo,omitempty" dynamodbav:"photo"`
	PasswordHash string       `json:"-" dynamodbav:"password_hash"`
	AuthProvider AuthProvider `json:"auth_provider" dynamodbav:"auth_provider"`
	CreatedAt    time.Time    `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" dynamodbav:"updated_at"`
}

// HasPassword reports whether the account can log in with a password.
// Accounts created through the OTP or social flows carry no hash.
func (u *User) HasPassword() bool { return u.PasswordHash != "" }

type RegisterRequest struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SendOTPRequest struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

type GoogleLoginRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

type UpdateUserRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
	Photo     *string `json:"photo" validate:"omitempty,url"`
}

package http

import (
	"github.com/go-auth-api/internal/infrastructure/dynamo"
	googleinfra "github.com/go-auth-api/internal/infrastructure/google"
	jwtinfra "github.com/go-auth-api/internal/infrastructure/jwt"
	"github.com/go-auth-api/internal/infrastructure/otp"
	s3infra "github.com/go-auth-api/internal/infrastructure/s3"
)

// Deps carries the infrastructure the router wires into services and middleware.
type Deps struct {
	UserRepo       *dynamo.UserRepo
	OTPStore       *otp.Store
	TokenProvider  *jwtinfra.Provider
	GoogleVerifier *googleinfra.Verifier
	PhotoStore     *s3infra.Store
}

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/go-auth-api/internal/domain"
	googleinfra "github.com/go-auth-api/internal/infrastructure/google"
	"github.com/go-auth-api/internal/infrastructure/otp"
	"github.com/go-auth-api/internal/pkg/password"
	"github.com/go-auth-api/internal/pkg/sanitize"
	"github.com/google/uuid"
)

// Result is the outcome of any successful authentication: the account plus a
// freshly issued bearer token.
type Result struct {
	User  *domain.User
	Token string
}

type Service interface {
	Register(ctx context.Context, req domain.RegisterRequest) (*Result, error)
	Login(ctx context.Context, req domain.LoginRequest) (*Result, error)
	SendOTP(ctx context.Context, req domain.SendOTPRequest) error
	// VerifyOTP reports created=true when the challenge registered a new account.
	VerifyOTP(ctx context.Context, req domain.VerifyOTPRequest) (result *Result, created bool, err error)
	LoginWithGoogle(ctx context.Context, idToken string) (*Result, error)
}

type userStore interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type otpStore interface {
	Request(email, firstName, lastName string) error
	Verify(email, code string) (otp.Challenge, error)
}

type tokenSigner interface {
	Sign(userID int64, email string) (string, error)
}

type googleVerifier interface {
	Verify(ctx context.Context, idToken string) (*googleinfra.Payload, error)
}

type service struct {
	users  userStore
	otp    otpStore
	tokens tokenSigner
	google googleVerifier
}

type ServiceDeps struct {
	UserRepo       userStore
	OTPStore       otpStore
	TokenProvider  tokenSigner
	GoogleVerifier googleVerifier
}

func NewService(deps ServiceDeps) Service {
	return &service{
		users:  deps.UserRepo,
		otp:    deps.OTPStore,
		tokens: deps.TokenProvider,
		google: deps.GoogleVerifier,
	}
}

func (s *service) Register(ctx context.Context, req domain.RegisterRequest) (*Result, error) {
	email := sanitize.Email(req.Email)
	firstName := sanitize.String(req.FirstName)
	lastName := sanitize.String(req.LastName)

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("register: %w", domain.ErrEmailAlreadyExists)
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	u := newUser(firstName, lastName, email)
	u.PasswordHash = hash
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return s.issue(u)
}

func (s *service) Login(ctx context.Context, req domain.LoginRequest) (*Result, error) {
	email := sanitize.Email(req.Email)

	// A missing account, a social-only account and a wrong password all report
	// the same error so the endpoint cannot be used to enumerate emails.
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil || !u.HasPassword() {
		return nil, fmt.Errorf("login: %w", domain.ErrInvalidCredentials)
	}
	ok, err := password.Verify(req.Password, u.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("login: %w", domain.ErrInvalidCredentials)
	}
	return s.issue(u)
}

func (s *service) SendOTP(ctx context.Context, req domain.SendOTPRequest) error {
	// The registration-vs-login branch is decided solely by whether the caller
	// supplied a first name.
	return s.otp.Request(sanitize.Email(req.Email), req.FirstName, req.LastName)
}

func (s *service) VerifyOTP(ctx context.Context, req domain.VerifyOTPRequest) (*Result, bool, error) {
	email := sanitize.Email(req.Email)

	ch, err := s.otp.Verify(email, req.Code)
	if err != nil {
		return nil, false, err
	}

	if ch.IsRegistration {
		if ch.FirstName == "" {
			return nil, false, fmt.Errorf("verify otp: %w", domain.ErrFirstNameRequired)
		}
		// The account may have been created between send and verify.
		if _, err := s.users.GetByEmail(ctx, email); err == nil {
			return nil, false, fmt.Errorf("verify otp: %w", domain.ErrEmailAlreadyExists)
		}
		u := newUser(sanitize.String(ch.FirstName), sanitize.String(ch.LastName), email)
		if err := s.users.Create(ctx, u); err != nil {
			return nil, false, err
		}
		result, err := s.issue(u)
		return result, true, err
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, false, fmt.Errorf("verify otp: %w", domain.ErrUserNotFound)
	}
	result, err := s.issue(u)
	return result, false, err
}

func (s *service) LoginWithGoogle(ctx context.Context, idToken string) (*Result, error) {
	p, err := s.google.Verify(ctx, idToken)
	if err != nil {
		return nil, err
	}
	if !p.EmailVerified {
		return nil, fmt.Errorf("google email not verified: %w", domain.ErrUnauthorized)
	}

	email := sanitize.Email(p.Email)
	if u, err := s.users.GetByEmail(ctx, email); err == nil {
		return s.issue(u)
	}

	u := newUser(sanitize.String(p.FirstName), sanitize.String(p.LastName), email)
	u.AuthProvider = domain.AuthProviderGoogle
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return s.issue(u)
}

func (s *service) issue(u *domain.User) (*Result, error) {
	token, err := s.tokens.Sign(u.ID, u.Email)
	if err != nil {
		return nil, err
	}
	return &Result{User: u, Token: token}, nil
}

func newUser(firstName, lastName, email string) *domain.User {
	now := time.Now().UTC()
	return &domain.User{
		UUID:         uuid.NewString(),
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		AuthProvider: domain.AuthProviderEmail,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-auth-api/internal/application/auth"
	"github.com/go-auth-api/internal/domain"
	"github.com/go-auth-api/internal/transport/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mock ---

type mockAuthSvc struct{ mock.Mock }

func (m *mockAuthSvc) Register(ctx context.Context, req domain.RegisterRequest) (*auth.Result, error) {
	args := m.Called(ctx, req)
	if r, _ := args.Get(0).(*auth.Result); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAuthSvc) Login(ctx context.Context, req domain.LoginRequest) (*auth.Result, error) {
	args := m.Called(ctx, req)
	if r, _ := args.Get(0).(*auth.Result); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAuthSvc) SendOTP(ctx context.Context, req domain.SendOTPRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *mockAuthSvc) VerifyOTP(ctx context.Context, req domain.VerifyOTPRequest) (*auth.Result, bool, error) {
	args := m.Called(ctx, req)
	if r, _ := args.Get(0).(*auth.Result); r != nil {
		return r, args.Bool(1), args.Error(2)
	}
	return nil, args.Bool(1), args.Error(2)
}

func (m *mockAuthSvc) LoginWithGoogle(ctx context.Context, idToken string) (*auth.Result, error) {
	args := m.Called(ctx, idToken)
	if r, _ := args.Get(0).(*auth.Result); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

// --- helpers ---

func jsonReq(t *testing.T, method, target string, v interface{}) *http.Request {
	t.Helper()
	body, err := json.Marshal(v)
	require.NoError(t, err)
	return httptest.NewRequest(method, target, bytes.NewReader(body))
}

func sessionCookie(rr *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			return c
		}
	}
	return nil
}

func okResult(id int64, email string) *auth.Result {
	return &auth.Result{
		User:  &domain.User{ID: id, Email: email, FirstName: "Ada"},
		Token: "bearer-token",
	}
}

// --- Register ---

func TestRegister_InvalidBody(t *testing.T) {
	h := NewAuthHandler(&mockAuthSvc{}, false)
	r := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewBufferString("not-json"))
	rr := httptest.NewRecorder()
	h.Register(rr, r)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRegister_ValidationFailure(t *testing.T) {
	h := NewAuthHandler(&mockAuthSvc{}, false)
	r := jsonReq(t, http.MethodPost, "/auth/register", domain.RegisterRequest{Email: "a@b.com"}) // missing name and password
	rr := httptest.NewRecorder()
	h.Register(rr, r)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestRegister_Conflict(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("Register", mock.Anything, mock.Anything).Return(nil, domain.ErrEmailAlreadyExists)
	h := NewAuthHandler(svc, false)
	r := jsonReq(t, http.MethodPost, "/auth/register", domain.RegisterRequest{
		FirstName: "Ada", Email: "a@b.com", Password: "hunter22",
	})
	rr := httptest.NewRecorder()
	h.Register(rr, r)
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestRegister_HappyPath(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("Register", mock.Anything, mock.Anything).Return(okResult(1, "a@b.com"), nil)
	h := NewAuthHandler(svc, false)
	r := jsonReq(t, http.MethodPost, "/auth/register", domain.RegisterRequest{
		FirstName: "Ada", Email: "a@b.com", Password: "hunter22",
	})
	rr := httptest.NewRecorder()
	h.Register(rr, r)

	assert.Equal(t, http.StatusCreated, rr.Code)
	var resp AuthEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "bearer-token", resp.Token)
	assert.Equal(t, "a@b.com", resp.User.Email)

	c := sessionCookie(rr)
	require.NotNil(t, c)
	assert.Equal(t, "bearer-token", c.Value)
	assert.True(t, c.HttpOnly)
	svc.AssertExpectations(t)
}

// --- Login ---

func TestLogin_InvalidCredentials(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("Login", mock.Anything, mock.Anything).Return(nil, domain.ErrInvalidCredentials)
	h := NewAuthHandler(svc, false)
	r := jsonReq(t, http.MethodPost, "/auth/login", domain.LoginRequest{Email: "a@b.com", Password: "wrong"})
	rr := httptest.NewRecorder()
	h.Login(rr, r)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestLogin_HappyPath(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("Login", mock.Anything, mock.Anything).Return(okResult(1, "a@b.com"), nil)
	h := NewAuthHandler(svc, false)
	r := jsonReq(t, http.MethodPost, "/auth/login", domain.LoginRequest{Email: "a@b.com", Password: "hunter22"})
	rr := httptest.NewRecorder()
	h.Login(rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, sessionCookie(rr))
}

// --- Logout ---

func TestLogout_ClearsCookie(t *testing.T) {
	h := NewAuthHandler(&mockAuthSvc{}, false)
	rr := httptest.NewRecorder()
	h.Logout(rr, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	c := sessionCookie(rr)
	require.NotNil(t, c)
	assert.Empty(t, c.Value)
	assert.Negative(t, c.MaxAge)
}

// --- SendOTP ---

func TestSendOTP_HappyPath(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("SendOTP", mock.Anything, mock.Anything).Return(nil)
	h := NewAuthHandler(svc, false)
	r := jsonReq(t, http.MethodPost, "/auth/send-otp", domain.SendOTPRequest{Email: "a@b.com"})
	rr := httptest.NewRecorder()
	h.SendOTP(rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp MessageEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "OTP sent", resp.Message)
}

func TestSendOTP_AlreadyActive(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("SendOTP", mock.Anything, mock.Anything).Return(domain.ErrOTPAlreadySent)
	h := NewAuthHandler(svc, false)
	r := jsonReq(t, http.MethodPost, "/auth/send-otp", domain.SendOTPRequest{Email: "a@b.com"})
	rr := httptest.NewRecorder()
	h.SendOTP(rr, r)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

// --- VerifyOTP ---

func TestVerifyOTP_ValidationRejectsShortCode(t *testing.T) {
	h := NewAuthHandler(&mockAuthSvc{}, false)
	r := jsonReq(t, http.MethodPost, "/auth/verify-otp", domain.VerifyOTPRequest{Email: "a@b.com", Code: "123"})
	rr := httptest.NewRecorder()
	h.VerifyOTP(rr, r)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestVerifyOTP_LoginReturns200(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("VerifyOTP", mock.Anything, mock.Anything).Return(okResult(1, "a@b.com"), false, nil)
	h := NewAuthHandler(svc, false)
	r := jsonReq(t, http.MethodPost, "/auth/verify-otp", domain.VerifyOTPRequest{Email: "a@b.com", Code: "123456"})
	rr := httptest.NewRecorder()
	h.VerifyOTP(rr, r)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestVerifyOTP_RegistrationReturns201(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("VerifyOTP", mock.Anything, mock.Anything).Return(okResult(1, "a@b.com"), true, nil)
	h := NewAuthHandler(svc, false)
	r := jsonReq(t, http.MethodPost, "/auth/verify-otp", domain.VerifyOTPRequest{Email: "a@b.com", Code: "123456"})
	rr := httptest.NewRecorder()
	h.VerifyOTP(rr, r)
	assert.Equal(t, http.StatusCreated, rr.Code)
}

func TestVerifyOTP_WrongCode(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("VerifyOTP", mock.Anything, mock.Anything).Return(nil, false, domain.ErrInvalidOTPCode)
	h := NewAuthHandler(svc, false)
	r := jsonReq(t, http.MethodPost, "/auth/verify-otp", domain.VerifyOTPRequest{Email: "a@b.com", Code: "000000"})
	rr := httptest.NewRecorder()
	h.VerifyOTP(rr, r)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

// --- GoogleLogin ---

func TestGoogleLogin_InvalidToken(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("LoginWithGoogle", mock.Anything, "bad").Return(nil, domain.ErrUnauthorized)
	h := NewAuthHandler(svc, false)
	r := jsonReq(t, http.MethodPost, "/auth/google", domain.GoogleLoginRequest{IDToken: "bad"})
	rr := httptest.NewRecorder()
	h.GoogleLogin(rr, r)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestGoogleLogin_HappyPath(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("LoginWithGoogle", mock.Anything, "id-token").Return(okResult(1, "a@b.com"), nil)
	h := NewAuthHandler(svc, false)
	r := jsonReq(t, http.MethodPost, "/auth/google", domain.GoogleLoginRequest{IDToken: "id-token"})
	rr := httptest.NewRecorder()
	h.GoogleLogin(rr, r)
	assert.Equal(t, http.StatusOK, rr.Code)
}

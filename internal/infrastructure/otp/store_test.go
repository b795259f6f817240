package otp

import (
	"errors"
	"testing"
	"time"

	"github.com/go-auth-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) SendEmail(to, subject, body string) error {
	return m.Called(to, subject, body).Error(0)
}

// okNotifier accepts anything; used when delivery is not under test.
func okNotifier() *mockNotifier {
	n := &mockNotifier{}
	n.On("SendEmail", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	return n
}

// fakeClock is a settable time source for expiry tests.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

// peekCode reads the pending code for email directly from the store.
func peekCode(t *testing.T, s *Store, email string) string {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.challenges[email]
	require.True(t, ok, "no pending challenge for %s", email)
	return e.Code
}

func TestRequest_DeliversCode(t *testing.T) {
	n := &mockNotifier{}
	n.On("SendEmail", "a@b.com", mock.Anything, mock.MatchedBy(func(body string) bool {
		return len(codeFromBody(body)) == 6
	})).Return(nil)

	s := NewStore(n, 5*time.Minute, 3)
	require.NoError(t, s.Request("a@b.com", "", ""))
	n.AssertExpectations(t)
}

// codeFromBody extracts the 6-digit code from the delivery body.
func codeFromBody(body string) string {
	const prefix = "Your OTP code is: "
	if len(body) < len(prefix)+6 {
		return ""
	}
	return body[len(prefix) : len(prefix)+6]
}

func TestRequest_SecondSendWhileActive(t *testing.T) {
	s := NewStore(okNotifier(), 5*time.Minute, 3)
	require.NoError(t, s.Request("a@b.com", "", ""))

	err := s.Request("a@b.com", "", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrOTPAlreadySent))
}

func TestRequest_ReplacesExpiredChallenge(t *testing.T) {
	clock := newFakeClock()
	s := NewStore(okNotifier(), 5*time.Minute, 3, WithClock(clock.now))

	require.NoError(t, s.Request("a@b.com", "", ""))
	s.mu.Lock()
	firstID := s.challenges["a@b.com"].ID
	s.mu.Unlock()

	clock.advance(6 * time.Minute)
	require.NoError(t, s.Request("a@b.com", "", ""))

	ch, err := s.Verify("a@b.com", peekCode(t, s, "a@b.com"))
	require.NoError(t, err)
	assert.NotEqual(t, firstID, ch.ID)
}

func TestRequest_DeliveryFailureKeepsChallenge(t *testing.T) {
	n := &mockNotifier{}
	n.On("SendEmail", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	s := NewStore(n, 5*time.Minute, 3)
	require.NoError(t, s.Request("a@b.com", "", ""))

	code := peekCode(t, s, "a@b.com")
	ch, err := s.Verify("a@b.com", code)
	require.NoError(t, err)
	assert.Equal(t, code, ch.Code)
}

func TestRequest_RegistrationFlag(t *testing.T) {
	s := NewStore(okNotifier(), 5*time.Minute, 3)

	require.NoError(t, s.Request("reg@b.com", "Ada", "Lovelace"))
	ch, err := s.Verify("reg@b.com", peekCode(t, s, "reg@b.com"))
	require.NoError(t, err)
	assert.True(t, ch.IsRegistration)
	assert.Equal(t, "Ada", ch.FirstName)
	assert.Equal(t, "Lovelace", ch.LastName)

	require.NoError(t, s.Request("login@b.com", "", ""))
	ch, err = s.Verify("login@b.com", peekCode(t, s, "login@b.com"))
	require.NoError(t, err)
	assert.False(t, ch.IsRegistration)
}

func TestRequest_WhitespaceFirstNameIsLogin(t *testing.T) {
	s := NewStore(okNotifier(), 5*time.Minute, 3)
	require.NoError(t, s.Request("a@b.com", "   ", "Lovelace"))

	ch, err := s.Verify("a@b.com", peekCode(t, s, "a@b.com"))
	require.NoError(t, err)
	assert.False(t, ch.IsRegistration)
	assert.Empty(t, ch.FirstName)
	assert.Empty(t, ch.LastName)
}

func TestVerify_NoChallenge(t *testing.T) {
	s := NewStore(okNotifier(), 5*time.Minute, 3)
	_, err := s.Verify("nobody@b.com", "123456")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrOTPNotFound))
}

func TestVerify_Expired(t *testing.T) {
	clock := newFakeClock()
	s := NewStore(okNotifier(), 5*time.Minute, 3, WithClock(clock.now))
	require.NoError(t, s.Request("a@b.com", "", ""))
	code := peekCode(t, s, "a@b.com")

	clock.advance(5 * time.Minute)
	_, err := s.Verify("a@b.com", code)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrOTPExpired))

	// The expired entry is gone, not retryable.
	_, err = s.Verify("a@b.com", code)
	assert.True(t, errors.Is(err, domain.ErrOTPNotFound))
}

func TestVerify_SingleUse(t *testing.T) {
	s := NewStore(okNotifier(), 5*time.Minute, 3)
	require.NoError(t, s.Request("a@b.com", "", ""))
	code := peekCode(t, s, "a@b.com")

	_, err := s.Verify("a@b.com", code)
	require.NoError(t, err)

	_, err = s.Verify("a@b.com", code)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrOTPNotFound))
}

func TestVerify_WrongCodeSequence(t *testing.T) {
	s := NewStore(okNotifier(), 5*time.Minute, 3)
	require.NoError(t, s.Request("a@b.com", "", ""))
	code := peekCode(t, s, "a@b.com")
	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}

	// Two wrong attempts leave the challenge alive.
	for i := 0; i < 2; i++ {
		_, err := s.Verify("a@b.com", wrong)
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrInvalidOTPCode))
	}

	// The third wrong attempt exhausts the budget and deletes the entry.
	_, err := s.Verify("a@b.com", wrong)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidOTPCode))

	_, err = s.Verify("a@b.com", code)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrOTPNotFound))
}

func TestVerify_CorrectCodeAfterTwoWrongAttempts(t *testing.T) {
	s := NewStore(okNotifier(), 5*time.Minute, 3)
	require.NoError(t, s.Request("a@b.com", "", ""))
	code := peekCode(t, s, "a@b.com")
	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}

	_, err := s.Verify("a@b.com", wrong)
	require.Error(t, err)
	_, err = s.Verify("a@b.com", wrong)
	require.Error(t, err)

	// The last attempt in the budget can still succeed.
	ch, err := s.Verify("a@b.com", code)
	require.NoError(t, err)
	assert.Equal(t, code, ch.Code)
}

func TestClear_Idempotent(t *testing.T) {
	s := NewStore(okNotifier(), 5*time.Minute, 3)
	require.NoError(t, s.Request("a@b.com", "", ""))

	s.Clear("a@b.com")
	s.Clear("a@b.com")

	_, err := s.Verify("a@b.com", "123456")
	assert.True(t, errors.Is(err, domain.ErrOTPNotFound))
}

func TestExpire_StaleTimerLeavesReplacementAlone(t *testing.T) {
	clock := newFakeClock()
	s := NewStore(okNotifier(), 5*time.Minute, 3, WithClock(clock.now))

	require.NoError(t, s.Request("a@b.com", "", ""))
	s.mu.Lock()
	staleID := s.challenges["a@b.com"].ID
	s.mu.Unlock()

	clock.advance(6 * time.Minute)
	require.NoError(t, s.Request("a@b.com", "", ""))

	// The stale timer firing late must not evict the fresh challenge.
	s.expire("a@b.com", staleID)
	code := peekCode(t, s, "a@b.com")
	ch, err := s.Verify("a@b.com", code)
	require.NoError(t, err)
	assert.NotEqual(t, staleID, ch.ID)
}

func TestGenerateCode_SixDigits(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := generateCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
		assert.GreaterOrEqual(t, code, "100000")
		assert.LessOrEqual(t, code, "999999")
	}
}

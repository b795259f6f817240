// Package otp implements the in-memory OTP challenge store. Challenges are
// process-local and lost on restart, which is acceptable given the short TTL.
package otp

import (
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/go-auth-api/internal/domain"
	"github.com/go-auth-api/internal/pkg/id"
)

// Challenge is one pending OTP challenge, keyed by normalized email.
// The ID ties the TTL cleanup timer to this exact entry: a timer firing after
// the entry was replaced must not delete the fresher challenge.
type Challenge struct {
	ID             string
	Code           string
	ExpiresAt      time.Time
	Attempts       int
	IsRegistration bool
	FirstName      string
	LastName       string
}

// Notifier delivers OTP codes. Delivery is best-effort: a failure is logged
// and the challenge stays valid.
type Notifier interface {
	SendEmail(to, subject, body string) error
}

type entry struct {
	Challenge
	timer *time.Timer
}

// Store holds at most one live challenge per email. It is the only shared
// mutable state in the process and is safe for concurrent use.
type Store struct {
	notifier    Notifier
	ttl         time.Duration
	maxAttempts int
	now         func() time.Time

	mu         sync.Mutex
	challenges map[string]*entry
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source, for deterministic expiry tests.
// The TTL cleanup timers still run on real time.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(notifier Notifier, ttl time.Duration, maxAttempts int, opts ...Option) *Store {
	s := &Store{
		notifier:    notifier,
		ttl:         ttl,
		maxAttempts: maxAttempts,
		now:         time.Now,
		challenges:  make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Request creates a challenge for email and hands the code to the notifier.
// Fails with domain.ErrOTPAlreadySent while an unexpired challenge exists.
// A non-empty firstName marks the challenge as a registration attempt.
func (s *Store) Request(email, firstName, lastName string) error {
	s.mu.Lock()
	if e, ok := s.challenges[email]; ok && s.now().Before(e.ExpiresAt) {
		s.mu.Unlock()
		return domain.ErrOTPAlreadySent
	}

	code, err := generateCode()
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("generate OTP code: %w", domain.ErrInternal)
	}

	ch := Challenge{
		ID:             id.New(),
		Code:           code,
		ExpiresAt:      s.now().Add(s.ttl),
		IsRegistration: strings.TrimSpace(firstName) != "",
	}
	if ch.IsRegistration {
		ch.FirstName = firstName
		ch.LastName = lastName
	}

	e := &entry{Challenge: ch}
	e.timer = time.AfterFunc(s.ttl, func() { s.expire(email, ch.ID) })
	if old, ok := s.challenges[email]; ok {
		old.timer.Stop()
	}
	s.challenges[email] = e
	s.mu.Unlock()

	// Best-effort delivery: the challenge stays valid even if the email
	// cannot be sent.
	subject := "Your OTP Code"
	body := fmt.Sprintf("Your OTP code is: %s. It will expire in %d minutes.", code, int(s.ttl.Minutes()))
	if err := s.notifier.SendEmail(email, subject, body); err != nil {
		slog.Warn("failed to deliver OTP email", "email", email, "err", err)
	}
	return nil
}

// Verify checks code against the pending challenge for email.
// The attempt counter is incremented before the comparison, so a wrong final
// attempt both reaches the maximum and deletes the entry atomically.
// On success the entry is deleted and the stored challenge returned.
func (s *Store) Verify(email, code string) (Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.challenges[email]
	if !ok {
		return Challenge{}, domain.ErrOTPNotFound
	}
	if !s.now().Before(e.ExpiresAt) {
		s.remove(email, e)
		return Challenge{}, domain.ErrOTPExpired
	}
	if e.Attempts >= s.maxAttempts {
		s.remove(email, e)
		return Challenge{}, domain.ErrOTPMaxAttempts
	}

	e.Attempts++

	if e.Code != code {
		if e.Attempts >= s.maxAttempts {
			s.remove(email, e)
		}
		return Challenge{}, domain.ErrInvalidOTPCode
	}

	s.remove(email, e)
	return e.Challenge, nil
}

// Clear unconditionally removes any challenge for email. Idempotent.
func (s *Store) Clear(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.challenges[email]; ok {
		s.remove(email, e)
	}
}

// expire is the TTL timer callback. It deletes the entry only if it is still
// the one the timer was scheduled for; a replacement created after an
// expiry-replacement is left alone.
func (s *Store) expire(email, challengeID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.challenges[email]; ok && e.ID == challengeID {
		delete(s.challenges, email)
	}
}

// remove deletes an entry and cancels its pending cleanup timer.
// Callers must hold s.mu.
func (s *Store) remove(email string, e *entry) {
	e.timer.Stop()
	delete(s.challenges, email)
}

// generateCode returns a random 6-digit code in [100000, 999999].
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

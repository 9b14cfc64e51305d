// Package auth holds the bearer-token session and the sign-in flow.
package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"

	"github.com/alcyxob/FitnessClient-sub001/internal/api"
	"github.com/alcyxob/FitnessClient-sub001/internal/domain"
	"github.com/alcyxob/FitnessClient-sub001/internal/promise"
)

// --- Error Definitions ---
var (
	ErrNotSignedIn      = errors.New("not signed in")
	ErrTokenExpired     = errors.New("session token has expired")
	ErrSignInSuperseded = errors.New("sign-in superseded by a newer attempt")
)

// LoginFunc performs the credentials exchange; api.Client.Login satisfies it.
type LoginFunc func(ctx context.Context, email, password string) (*api.LoginResult, error)

// sessionClaims mirrors the claim structure the backend signs into its
// tokens. The client never verifies the signature (it has no secret); it
// only reads the expiry to decide when re-login is needed.
type sessionClaims struct {
	UserID string      `json:"uid"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// Session owns the current bearer token and user. At most one sign-in is in
// flight: starting a new one rejects the pending promise of the previous
// attempt instead of leaving it dangling.
type Session struct {
	logger *zap.Logger

	mu        sync.Mutex
	token     string
	user      *domain.User
	expiresAt time.Time
	pending   *promise.Promise[*api.LoginResult]
}

// NewSession creates an empty (signed-out) session.
func NewSession(logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{logger: logger}
}

// SignIn runs the login flow. If a previous sign-in is still unresolved its
// promise is rejected with ErrSignInSuperseded before the new attempt starts.
func (s *Session) SignIn(ctx context.Context, login LoginFunc, email, password string) (*domain.User, error) {
	fut := promise.New[*api.LoginResult]()

	s.mu.Lock()
	if s.pending != nil {
		s.pending.Reject(ErrSignInSuperseded)
	}
	s.pending = fut
	s.mu.Unlock()

	go func() {
		result, err := login(ctx, email, password)
		if err != nil {
			fut.Reject(err)
			return
		}
		fut.Resolve(result)
	}()

	result, err := fut.Await(ctx)
	if err != nil {
		return nil, err
	}

	expiresAt := tokenExpiry(result.Token)

	s.mu.Lock()
	if s.pending == fut {
		s.pending = nil
	}
	s.token = result.Token
	user := result.User
	s.user = &user
	s.expiresAt = expiresAt
	s.mu.Unlock()

	s.logger.Info("signed in",
		zap.String("userId", result.User.ID),
		zap.String("role", string(result.User.Role)))
	return &user, nil
}

// SignOut clears the session.
func (s *Session) SignOut() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = nil
	s.expiresAt = time.Time{}
}

// Token is the api.TokenSource for this session.
func (s *Session) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" {
		return "", ErrNotSignedIn
	}
	if !s.expiresAt.IsZero() && time.Now().After(s.expiresAt) {
		return "", ErrTokenExpired
	}
	return s.token, nil
}

// User returns the authenticated user, if any.
func (s *Session) User() (domain.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return domain.User{}, false
	}
	return *s.user, true
}

// Valid reports whether the session holds a non-expired token.
func (s *Session) Valid() bool {
	_, err := s.Token(context.Background())
	return err == nil
}

// tokenExpiry reads the exp claim without verifying the signature;
// verification is the server's job, the client only schedules re-login.
func tokenExpiry(token string) time.Time {
	claims := &sessionClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}

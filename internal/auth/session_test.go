package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alcyxob/FitnessClient-sub001/internal/api"
	"github.com/alcyxob/FitnessClient-sub001/internal/domain"
)

// signToken mints a token the way the backend does, so expiry parsing is
// exercised against a real JWT rather than a handcrafted string.
func signToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()
	claims := sessionClaims{
		UserID: "u1",
		Role:   domain.RoleClient,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func stubLogin(result *api.LoginResult, err error) LoginFunc {
	return func(ctx context.Context, email, password string) (*api.LoginResult, error) {
		return result, err
	}
}

func TestSignInStoresTokenAndUser(t *testing.T) {
	session := NewSession(nil)
	token := signToken(t, time.Now().Add(time.Hour))
	login := stubLogin(&api.LoginResult{
		Token: token,
		User:  domain.User{ID: "u1", Name: "Anna", Role: domain.RoleClient},
	}, nil)

	user, err := session.SignIn(context.Background(), login, "anna@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)

	got, err := session.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, token, got)

	stored, ok := session.User()
	require.True(t, ok)
	assert.Equal(t, "Anna", stored.Name)
	assert.True(t, session.Valid())
}

func TestSignInFailureLeavesSessionSignedOut(t *testing.T) {
	session := NewSession(nil)
	login := stubLogin(nil, &api.Error{Kind: api.KindUnauthorized, Status: 401, Message: "bad credentials"})

	_, err := session.SignIn(context.Background(), login, "anna@example.com", "wrong")
	require.Error(t, err)

	_, tokenErr := session.Token(context.Background())
	assert.ErrorIs(t, tokenErr, ErrNotSignedIn)
	_, ok := session.User()
	assert.False(t, ok)
}

func TestNewSignInSupersedesPendingOne(t *testing.T) {
	session := NewSession(nil)

	release := make(chan struct{})
	slowLogin := func(ctx context.Context, email, password string) (*api.LoginResult, error) {
		<-release
		return &api.LoginResult{Token: signToken(t, time.Now().Add(time.Hour))}, nil
	}

	firstErr := make(chan error, 1)
	go func() {
		_, err := session.SignIn(context.Background(), slowLogin, "first@example.com", "pw")
		firstErr <- err
	}()

	// Let the first attempt register its pending promise.
	require.Eventually(t, func() bool {
		session.mu.Lock()
		defer session.mu.Unlock()
		return session.pending != nil
	}, time.Second, 5*time.Millisecond)

	token := signToken(t, time.Now().Add(time.Hour))
	fastLogin := stubLogin(&api.LoginResult{
		Token: token,
		User:  domain.User{ID: "u2", Role: domain.RoleTrainer},
	}, nil)
	user, err := session.SignIn(context.Background(), fastLogin, "second@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "u2", user.ID)

	assert.ErrorIs(t, <-firstErr, ErrSignInSuperseded)
	close(release)

	// The winning session survives the late completion of the first login.
	got, tokenErr := session.Token(context.Background())
	require.NoError(t, tokenErr)
	assert.Equal(t, token, got)
}

func TestTokenReportsExpiry(t *testing.T) {
	session := NewSession(nil)
	login := stubLogin(&api.LoginResult{
		Token: signToken(t, time.Now().Add(-time.Minute)),
		User:  domain.User{ID: "u1"},
	}, nil)

	_, err := session.SignIn(context.Background(), login, "anna@example.com", "pw")
	require.NoError(t, err)

	_, tokenErr := session.Token(context.Background())
	assert.ErrorIs(t, tokenErr, ErrTokenExpired)
	assert.False(t, session.Valid())
}

func TestTokenWithoutExpiryClaimNeverExpires(t *testing.T) {
	assert.True(t, tokenExpiry("not-a-jwt").IsZero())

	session := NewSession(nil)
	login := stubLogin(&api.LoginResult{Token: "opaque-token"}, nil)
	_, err := session.SignIn(context.Background(), login, "anna@example.com", "pw")
	require.NoError(t, err)

	got, tokenErr := session.Token(context.Background())
	require.NoError(t, tokenErr)
	assert.Equal(t, "opaque-token", got)
}

func TestSignOutClearsSession(t *testing.T) {
	session := NewSession(nil)
	login := stubLogin(&api.LoginResult{
		Token: signToken(t, time.Now().Add(time.Hour)),
		User:  domain.User{ID: "u1"},
	}, nil)
	_, err := session.SignIn(context.Background(), login, "anna@example.com", "pw")
	require.NoError(t, err)

	session.SignOut()

	_, tokenErr := session.Token(context.Background())
	assert.ErrorIs(t, tokenErr, ErrNotSignedIn)
	assert.False(t, session.Valid())
}

func TestSignInHonorsContextCancellation(t *testing.T) {
	session := NewSession(nil)
	ctx, cancel := context.WithCancel(context.Background())

	blocked := func(loginCtx context.Context, email, password string) (*api.LoginResult, error) {
		<-loginCtx.Done()
		return nil, loginCtx.Err()
	}

	errCh := make(chan error, 1)
	go func() {
		_, err := session.SignIn(ctx, blocked, "anna@example.com", "pw")
		errCh <- err
	}()

	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)

	_, tokenErr := session.Token(context.Background())
	assert.ErrorIs(t, tokenErr, ErrNotSignedIn)
}

var _ api.TokenSource = (*Session)(nil).Token

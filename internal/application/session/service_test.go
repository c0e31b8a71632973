package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/audionote/api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) GetBySessionToken(ctx context.Context, token string) (*domain.User, error) {
	args := m.Called(ctx, token)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) Put(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}
func (m *mockUserStore) Update(ctx context.Context, userID string, updates map[string]interface{}) error {
	return m.Called(ctx, userID, updates).Error(0)
}
func (m *mockUserStore) ClearSession(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

// --- LoginOrCreate ---

func TestLoginOrCreate_NewUser_GetsFreeTrial(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "a@b.com").Return(nil, domain.ErrNotFound)

	var created *domain.User
	us.On("Put", mock.Anything, mock.AnythingOfType("*domain.User")).
		Run(func(args mock.Arguments) { created = args.Get(1).(*domain.User) }).
		Return(nil)

	svc := NewService(us, 1.0, 30*24*time.Hour)
	res, err := svc.LoginOrCreate(context.Background(), "a@b.com")

	require.NoError(t, err)
	assert.True(t, res.IsNewUser)
	assert.Equal(t, "a@b.com", res.Email)
	assert.Equal(t, 1.0, res.RemainingMinutes)
	assert.NotEmpty(t, res.SessionToken)

	require.NotNil(t, created)
	assert.NotEmpty(t, created.UserID)
	assert.Equal(t, res.SessionToken, created.SessionToken)
	assert.Greater(t, created.SessionExpiresAt, time.Now().Unix())
	assert.Zero(t, created.TotalMinutesUsed)
	us.AssertExpectations(t)
}

func TestLoginOrCreate_ExistingUser_RotatesToken(t *testing.T) {
	us := &mockUserStore{}
	oldToken := "old-token"
	us.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{
		UserID:           "u1",
		Email:            "a@b.com",
		RemainingMinutes: 3.5,
		SessionToken:     oldToken,
	}, nil)

	var updates map[string]interface{}
	us.On("Update", mock.Anything, "u1", mock.AnythingOfType("map[string]interface {}")).
		Run(func(args mock.Arguments) { updates = args.Get(2).(map[string]interface{}) }).
		Return(nil)

	svc := NewService(us, 1.0, 30*24*time.Hour)
	res, err := svc.LoginOrCreate(context.Background(), "a@b.com")

	require.NoError(t, err)
	assert.False(t, res.IsNewUser)
	assert.Equal(t, 3.5, res.RemainingMinutes)
	assert.NotEqual(t, oldToken, res.SessionToken)
	assert.Equal(t, res.SessionToken, updates["session_token"])
	us.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestLoginOrCreate_PutFailure(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "a@b.com").Return(nil, domain.ErrNotFound)
	us.On("Put", mock.Anything, mock.Anything).Return(errors.New("dynamo unavailable"))

	svc := NewService(us, 1.0, 30*24*time.Hour)
	_, err := svc.LoginOrCreate(context.Background(), "a@b.com")
	require.Error(t, err)
}

// --- Resolve ---

func TestResolve_EmptyToken(t *testing.T) {
	svc := NewService(&mockUserStore{}, 1.0, 30*24*time.Hour)
	_, err := svc.Resolve(context.Background(), "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestResolve_UnknownToken(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetBySessionToken", mock.Anything, "nope").Return(nil, domain.ErrNotFound)

	svc := NewService(us, 1.0, 30*24*time.Hour)
	_, err := svc.Resolve(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestResolve_ExpiredSession(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetBySessionToken", mock.Anything, "tok").Return(&domain.User{
		UserID:           "u1",
		SessionToken:     "tok",
		SessionExpiresAt: time.Now().Add(-time.Hour).Unix(),
	}, nil)

	svc := NewService(us, 1.0, 30*24*time.Hour)
	_, err := svc.Resolve(context.Background(), "tok")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestResolve_LiveSession(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetBySessionToken", mock.Anything, "tok").Return(&domain.User{
		UserID:           "u1",
		Email:            "a@b.com",
		SessionToken:     "tok",
		SessionExpiresAt: time.Now().Add(time.Hour).Unix(),
	}, nil)

	svc := NewService(us, 1.0, 30*24*time.Hour)
	u, err := svc.Resolve(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.UserID)
}

// --- Logout ---

func TestLogout_RemovesSession(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetBySessionToken", mock.Anything, "tok").Return(&domain.User{
		UserID:           "u1",
		SessionToken:     "tok",
		SessionExpiresAt: time.Now().Add(time.Hour).Unix(),
	}, nil)
	us.On("ClearSession", mock.Anything, "u1").Return(nil)

	svc := NewService(us, 1.0, 30*24*time.Hour)
	require.NoError(t, svc.Logout(context.Background(), "tok"))
	us.AssertExpectations(t)
	// The token must never be blanked through a SET update: it keys the
	// session token index, which rejects empty string values.
	us.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestLogout_InvalidToken(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetBySessionToken", mock.Anything, "tok").Return(nil, domain.ErrNotFound)

	svc := NewService(us, 1.0, 30*24*time.Hour)
	err := svc.Logout(context.Background(), "tok")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
	us.AssertNotCalled(t, "ClearSession", mock.Anything, mock.Anything)
}

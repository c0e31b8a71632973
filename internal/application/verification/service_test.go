package verification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/audionote/api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- mocks ---

type mockVerificationStore struct{ mock.Mock }

func (m *mockVerificationStore) Put(ctx context.Context, v *domain.EmailVerification) error {
	return m.Called(ctx, v).Error(0)
}
func (m *mockVerificationStore) Get(ctx context.Context, email string) (*domain.EmailVerification, error) {
	args := m.Called(ctx, email)
	if v, _ := args.Get(0).(*domain.EmailVerification); v != nil {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockVerificationStore) IncrementAttempts(ctx context.Context, email string, attempts int) error {
	return m.Called(ctx, email, attempts).Error(0)
}
func (m *mockVerificationStore) Delete(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendEmail(to, subject, body string) error {
	return m.Called(to, subject, body).Error(0)
}

func hashed(t *testing.T, code string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

// --- IssueCode ---

func TestIssueCode_StoresHashAndMails(t *testing.T) {
	vs := &mockVerificationStore{}
	ml := &mockMailer{}

	var stored *domain.EmailVerification
	vs.On("Put", mock.Anything, mock.AnythingOfType("*domain.EmailVerification")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*domain.EmailVerification) }).
		Return(nil)
	ml.On("SendEmail", "a@b.com", mock.Anything, mock.Anything).Return(nil)

	svc := NewService(vs, ml, 10*time.Minute)
	code, err := svc.IssueCode(context.Background(), "a@b.com")

	require.NoError(t, err)
	assert.Len(t, code, 6)
	require.NotNil(t, stored)
	// The plaintext code never hits the table.
	assert.NotEqual(t, code, stored.CodeHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.CodeHash), []byte(code)))
	assert.Greater(t, stored.ExpiresAt, time.Now().Unix())
	assert.Equal(t, 0, stored.Attempts)
	vs.AssertExpectations(t)
	ml.AssertExpectations(t)
}

func TestIssueCode_MailFailureIsNotFatal(t *testing.T) {
	vs := &mockVerificationStore{}
	ml := &mockMailer{}
	vs.On("Put", mock.Anything, mock.Anything).Return(nil)
	ml.On("SendEmail", "a@b.com", mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	svc := NewService(vs, ml, 10*time.Minute)
	code, err := svc.IssueCode(context.Background(), "a@b.com")

	require.NoError(t, err)
	assert.Len(t, code, 6)
}

func TestIssueCode_StoreFailure(t *testing.T) {
	vs := &mockVerificationStore{}
	ml := &mockMailer{}
	vs.On("Put", mock.Anything, mock.Anything).Return(errors.New("dynamo unavailable"))

	svc := NewService(vs, ml, 10*time.Minute)
	_, err := svc.IssueCode(context.Background(), "a@b.com")

	require.Error(t, err)
	ml.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything, mock.Anything)
}

// --- VerifyCode ---

func TestVerifyCode_HappyPath_DeletesRecord(t *testing.T) {
	vs := &mockVerificationStore{}
	vs.On("Get", mock.Anything, "a@b.com").Return(&domain.EmailVerification{
		Email:     "a@b.com",
		CodeHash:  hashed(t, "123456"),
		ExpiresAt: time.Now().Add(5 * time.Minute).Unix(),
	}, nil)
	vs.On("Delete", mock.Anything, "a@b.com").Return(nil)

	svc := NewService(vs, &mockMailer{}, 10*time.Minute)
	err := svc.VerifyCode(context.Background(), "a@b.com", "123456")

	require.NoError(t, err)
	vs.AssertExpectations(t)
}

func TestVerifyCode_NoPendingCode(t *testing.T) {
	vs := &mockVerificationStore{}
	vs.On("Get", mock.Anything, "a@b.com").Return(nil, domain.ErrNotFound)

	svc := NewService(vs, &mockMailer{}, 10*time.Minute)
	err := svc.VerifyCode(context.Background(), "a@b.com", "123456")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestVerifyCode_Expired(t *testing.T) {
	vs := &mockVerificationStore{}
	vs.On("Get", mock.Anything, "a@b.com").Return(&domain.EmailVerification{
		Email:     "a@b.com",
		CodeHash:  hashed(t, "123456"),
		ExpiresAt: time.Now().Add(-time.Minute).Unix(),
	}, nil)
	vs.On("Delete", mock.Anything, "a@b.com").Return(nil)

	svc := NewService(vs, &mockMailer{}, 10*time.Minute)
	err := svc.VerifyCode(context.Background(), "a@b.com", "123456")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
	vs.AssertExpectations(t)
}

func TestVerifyCode_WrongCode_IncrementsAttempts(t *testing.T) {
	vs := &mockVerificationStore{}
	vs.On("Get", mock.Anything, "a@b.com").Return(&domain.EmailVerification{
		Email:     "a@b.com",
		CodeHash:  hashed(t, "123456"),
		ExpiresAt: time.Now().Add(5 * time.Minute).Unix(),
		Attempts:  1,
	}, nil)
	vs.On("IncrementAttempts", mock.Anything, "a@b.com", 2).Return(nil)

	svc := NewService(vs, &mockMailer{}, 10*time.Minute)
	err := svc.VerifyCode(context.Background(), "a@b.com", "000000")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
	vs.AssertExpectations(t)
	vs.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestVerifyCode_AttemptsExhausted_DiscardsCode(t *testing.T) {
	vs := &mockVerificationStore{}
	vs.On("Get", mock.Anything, "a@b.com").Return(&domain.EmailVerification{
		Email:     "a@b.com",
		CodeHash:  hashed(t, "123456"),
		ExpiresAt: time.Now().Add(5 * time.Minute).Unix(),
		Attempts:  domain.MaxVerifyAttempts,
	}, nil)
	vs.On("Delete", mock.Anything, "a@b.com").Return(nil)

	svc := NewService(vs, &mockMailer{}, 10*time.Minute)
	// Even the correct code is rejected once the attempt budget is spent.
	err := svc.VerifyCode(context.Background(), "a@b.com", "123456")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
	vs.AssertExpectations(t)
}

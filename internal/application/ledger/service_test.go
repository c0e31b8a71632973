package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/audionote/api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) Update(ctx context.Context, userID string, updates map[string]interface{}) error {
	return m.Called(ctx, userID, updates).Error(0)
}
func (m *mockUserStore) AddMinutes(ctx context.Context, userID string, delta float64) error {
	return m.Called(ctx, userID, delta).Error(0)
}

type mockEventStore struct{ mock.Mock }

func (m *mockEventStore) Append(ctx context.Context, e *domain.Event) error {
	return m.Called(ctx, e).Error(0)
}
func (m *mockEventStore) AppendUnique(ctx context.Context, e *domain.Event) error {
	return m.Called(ctx, e).Error(0)
}
func (m *mockEventStore) Delete(ctx context.Context, eventID string) error {
	return m.Called(ctx, eventID).Error(0)
}
func (m *mockEventStore) ListByUser(ctx context.Context, userID, kind string, limit int32) ([]domain.Event, error) {
	args := m.Called(ctx, userID, kind, limit)
	if evs, _ := args.Get(0).([]domain.Event); evs != nil {
		return evs, args.Error(1)
	}
	return nil, args.Error(1)
}

// --- Credit ---

func TestCredit_HappyPath(t *testing.T) {
	us := &mockUserStore{}
	es := &mockEventStore{}

	var appended *domain.Event
	es.On("AppendUnique", mock.Anything, mock.AnythingOfType("*domain.Event")).
		Run(func(args mock.Arguments) { appended = args.Get(1).(*domain.Event) }).
		Return(nil)
	us.On("AddMinutes", mock.Anything, "u1", 5.0).Return(nil)
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", RemainingMinutes: 6.0}, nil)

	svc := NewService(us, es)
	res, err := svc.Credit(context.Background(), "u1", 5.0, "pi_123")

	require.NoError(t, err)
	assert.False(t, res.Duplicate)
	assert.Equal(t, 6.0, res.RemainingMinutes)

	require.NotNil(t, appended)
	assert.Equal(t, "pi_123", appended.EventID)
	assert.Equal(t, domain.EventKindPayment, appended.Kind)
	us.AssertExpectations(t)
}

func TestCredit_ReplayedPaymentID_IsNoOp(t *testing.T) {
	us := &mockUserStore{}
	es := &mockEventStore{}
	es.On("AppendUnique", mock.Anything, mock.Anything).Return(domain.ErrConflict)
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", RemainingMinutes: 6.0}, nil)

	svc := NewService(us, es)
	res, err := svc.Credit(context.Background(), "u1", 5.0, "pi_123")

	require.NoError(t, err)
	assert.True(t, res.Duplicate)
	assert.Equal(t, 6.0, res.RemainingMinutes)
	us.AssertNotCalled(t, "AddMinutes", mock.Anything, mock.Anything, mock.Anything)
}

func TestCredit_BalanceFailure_BacksOutPaymentEvent(t *testing.T) {
	us := &mockUserStore{}
	es := &mockEventStore{}
	es.On("AppendUnique", mock.Anything, mock.Anything).Return(nil)
	us.On("AddMinutes", mock.Anything, "u1", 5.0).Return(errors.New("dynamo unavailable"))
	es.On("Delete", mock.Anything, "pi_123").Return(nil)

	svc := NewService(us, es)
	_, err := svc.Credit(context.Background(), "u1", 5.0, "pi_123")

	// The payment record must not survive a failed credit: a retry of the
	// same payment id has to credit, not read as a replay.
	require.Error(t, err)
	es.AssertExpectations(t)
}

func TestCredit_RetryAfterBalanceFailure_Credits(t *testing.T) {
	us := &mockUserStore{}
	es := &mockEventStore{}
	es.On("AppendUnique", mock.Anything, mock.Anything).Return(nil).Twice()
	us.On("AddMinutes", mock.Anything, "u1", 5.0).Return(errors.New("dynamo unavailable")).Once()
	es.On("Delete", mock.Anything, "pi_123").Return(nil).Once()
	us.On("AddMinutes", mock.Anything, "u1", 5.0).Return(nil).Once()
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", RemainingMinutes: 6.0}, nil)

	svc := NewService(us, es)
	_, err := svc.Credit(context.Background(), "u1", 5.0, "pi_123")
	require.Error(t, err)

	res, err := svc.Credit(context.Background(), "u1", 5.0, "pi_123")
	require.NoError(t, err)
	assert.False(t, res.Duplicate)
	assert.Equal(t, 6.0, res.RemainingMinutes)
	es.AssertExpectations(t)
	us.AssertExpectations(t)
}

func TestCredit_RejectsNonPositiveAmount(t *testing.T) {
	svc := NewService(&mockUserStore{}, &mockEventStore{})
	_, err := svc.Credit(context.Background(), "u1", 0, "pi_123")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestCredit_RejectsMissingPaymentID(t *testing.T) {
	svc := NewService(&mockUserStore{}, &mockEventStore{})
	_, err := svc.Credit(context.Background(), "u1", 5.0, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

// --- Debit ---

func TestDebit_DeductsAndRecordsUsage(t *testing.T) {
	us := &mockUserStore{}
	es := &mockEventStore{}
	us.On("Get", mock.Anything, "u1").Return(&domain.User{
		UserID: "u1", RemainingMinutes: 2.5, TotalMinutesUsed: 4.0,
	}, nil)

	var updates map[string]interface{}
	us.On("Update", mock.Anything, "u1", mock.AnythingOfType("map[string]interface {}")).
		Run(func(args mock.Arguments) { updates = args.Get(2).(map[string]interface{}) }).
		Return(nil)

	var ev *domain.Event
	es.On("Append", mock.Anything, mock.AnythingOfType("*domain.Event")).
		Run(func(args mock.Arguments) { ev = args.Get(1).(*domain.Event) }).
		Return(nil)

	svc := NewService(us, es)
	remaining, err := svc.Debit(context.Background(), "u1", 1.0, "enhancement:fix")

	require.NoError(t, err)
	assert.Equal(t, 1.5, remaining)
	assert.Equal(t, 1.5, updates["remaining_minutes"])
	assert.Equal(t, 5.0, updates["total_minutes_used"])

	require.NotNil(t, ev)
	assert.Equal(t, domain.EventKindUsage, ev.Kind)
	assert.Equal(t, "enhancement:fix", ev.Reason)
	assert.NotEmpty(t, ev.EventID)
}

func TestDebit_ClampsAtZero(t *testing.T) {
	us := &mockUserStore{}
	es := &mockEventStore{}
	us.On("Get", mock.Anything, "u1").Return(&domain.User{
		UserID: "u1", RemainingMinutes: 0.4,
	}, nil)

	var updates map[string]interface{}
	us.On("Update", mock.Anything, "u1", mock.AnythingOfType("map[string]interface {}")).
		Run(func(args mock.Arguments) { updates = args.Get(2).(map[string]interface{}) }).
		Return(nil)
	es.On("Append", mock.Anything, mock.Anything).Return(nil)

	svc := NewService(us, es)
	remaining, err := svc.Debit(context.Background(), "u1", 1.0, "enhancement:fix")

	// The balance never goes negative, even when the debit exceeds it.
	require.NoError(t, err)
	assert.Equal(t, 0.0, remaining)
	assert.Equal(t, 0.0, updates["remaining_minutes"])
}

func TestDebit_RejectsNonPositiveAmount(t *testing.T) {
	svc := NewService(&mockUserStore{}, &mockEventStore{})
	_, err := svc.Debit(context.Background(), "u1", -1.0, "enhancement:fix")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestDebit_UnknownUser(t *testing.T) {
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "ghost").Return(nil, domain.ErrNotFound)

	svc := NewService(us, &mockEventStore{})
	_, err := svc.Debit(context.Background(), "ghost", 1.0, "enhancement:fix")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

// --- History ---

func TestHistory_ReturnsBothKinds(t *testing.T) {
	es := &mockEventStore{}
	es.On("ListByUser", mock.Anything, "u1", domain.EventKindUsage, int32(20)).
		Return([]domain.Event{{EventID: "e1", Kind: domain.EventKindUsage}}, nil)
	es.On("ListByUser", mock.Anything, "u1", domain.EventKindPayment, int32(20)).
		Return([]domain.Event{{EventID: "pi_1", Kind: domain.EventKindPayment}}, nil)

	svc := NewService(&mockUserStore{}, es)
	usage, payments, err := svc.History(context.Background(), "u1", 20)

	require.NoError(t, err)
	require.Len(t, usage, 1)
	require.Len(t, payments, 1)
	assert.Equal(t, "e1", usage[0].EventID)
	assert.Equal(t, "pi_1", payments[0].EventID)
}

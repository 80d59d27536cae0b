package entitlement

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/mentor-gateway/internal/models"
)

type StoreMock struct{ mock.Mock }

func (m *StoreMock) GetSubscriptionStatus(ctx context.Context, identityID string) (models.SubscriptionStatus, bool, error) {
	args := m.Called(ctx, identityID)
	return args.Get(0).(models.SubscriptionStatus), args.Bool(1), args.Error(2)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestDecide(t *testing.T) {
	used := models.ClientState{HasUsedFreeMessage: true}
	fresh := models.ClientState{}

	tests := []struct {
		name      string
		state     models.ClientState
		identity  string
		status    models.SubscriptionStatus
		found     bool
		statusErr error
		want      Decision
	}{
		{
			name:  "free message for anonymous client",
			state: fresh,
			want:  Decision{Allowed: true, FreeGrant: true},
		},
		{
			name:     "free message ignores subscription",
			state:    fresh,
			identity: "user_1",
			status:   models.StatusCanceled,
			found:    true,
			want:     Decision{Allowed: true, FreeGrant: true},
		},
		{
			name:  "quota used and signed out",
			state: used,
			want:  Decision{Reason: ReasonAuthRequired},
		},
		{
			name:     "active subscriber",
			state:    used,
			identity: "user_1",
			status:   models.StatusActive,
			found:    true,
			want:     Decision{Allowed: true, Status: models.StatusActive},
		},
		{
			name:     "trialing subscriber",
			state:    used,
			identity: "user_1",
			status:   models.StatusTrialing,
			found:    true,
			want:     Decision{Allowed: true, Status: models.StatusTrialing},
		},
		{
			name:     "past due subscriber",
			state:    used,
			identity: "user_1",
			status:   models.StatusPastDue,
			found:    true,
			want:     Decision{Reason: ReasonSubscriptionRequired, Status: models.StatusPastDue},
		},
		{
			name:     "no subscription",
			state:    used,
			identity: "user_1",
			want:     Decision{Reason: ReasonSubscriptionRequired},
		},
		{
			name:      "store error fails closed",
			state:     used,
			identity:  "user_1",
			status:    models.StatusActive,
			found:     true,
			statusErr: errors.New("connection refused"),
			want:      Decision{Reason: ReasonStatusUnavailable},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decide(tt.state, tt.identity, tt.status, tt.found, tt.statusErr)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecide_AllStatuses(t *testing.T) {
	used := models.ClientState{HasUsedFreeMessage: true}
	statuses := []models.SubscriptionStatus{
		models.StatusIncomplete, models.StatusIncompleteExpired, models.StatusTrialing,
		models.StatusActive, models.StatusPastDue, models.StatusCanceled,
		models.StatusUnpaid, models.StatusPaused,
	}
	for _, st := range statuses {
		d := Decide(used, "user_1", st, true, nil)
		want := st == models.StatusActive || st == models.StatusTrialing
		assert.Equal(t, want, d.Allowed, string(st))
	}
}

func TestDecision_Err(t *testing.T) {
	assert.NoError(t, Decision{Allowed: true}.Err())
	assert.ErrorIs(t, Decision{Reason: ReasonAuthRequired}.Err(), models.ErrAuthRequired)
	assert.ErrorIs(t, Decision{Reason: ReasonSubscriptionRequired}.Err(), models.ErrSubscriptionRequired)
	assert.ErrorIs(t, Decision{Reason: ReasonStatusUnavailable}.Err(), ErrStatusUnavailable)
}

func TestEvaluator_Evaluate(t *testing.T) {
	t.Run("free grant does not touch store", func(t *testing.T) {
		store := new(StoreMock)
		e := NewEvaluator(store, newNoopLogger())

		d := e.Evaluate(context.Background(), models.ClientState{}, "", "")

		assert.True(t, d.Allowed)
		assert.True(t, d.FreeGrant)
		store.AssertNotCalled(t, "GetSubscriptionStatus", mock.Anything, mock.Anything)
	})

	t.Run("signed out does not touch store", func(t *testing.T) {
		store := new(StoreMock)
		e := NewEvaluator(store, newNoopLogger())

		d := e.Evaluate(context.Background(), models.ClientState{HasUsedFreeMessage: true}, "", "")

		assert.Equal(t, ReasonAuthRequired, d.Reason)
		store.AssertNotCalled(t, "GetSubscriptionStatus", mock.Anything, mock.Anything)
	})

	t.Run("store is queried on every request", func(t *testing.T) {
		store := new(StoreMock)
		store.On("GetSubscriptionStatus", mock.Anything, "user_1").
			Return(models.StatusActive, true, nil).Once()
		store.On("GetSubscriptionStatus", mock.Anything, "user_1").
			Return(models.StatusCanceled, true, nil).Once()
		e := NewEvaluator(store, newNoopLogger())
		used := models.ClientState{HasUsedFreeMessage: true}

		first := e.Evaluate(context.Background(), used, "user_1", "")
		second := e.Evaluate(context.Background(), used, "user_1", "")

		assert.True(t, first.Allowed)
		assert.False(t, second.Allowed)
		assert.Equal(t, ReasonSubscriptionRequired, second.Reason)
		store.AssertExpectations(t)
	})

	t.Run("store error is denied", func(t *testing.T) {
		store := new(StoreMock)
		store.On("GetSubscriptionStatus", mock.Anything, "user_1").
			Return(models.SubscriptionStatus(""), false, errors.New("timeout")).Once()
		e := NewEvaluator(store, newNoopLogger())

		d := e.Evaluate(context.Background(), models.ClientState{HasUsedFreeMessage: true}, "user_1", "")

		assert.False(t, d.Allowed)
		assert.Equal(t, ReasonStatusUnavailable, d.Reason)
	})
}

func TestEvaluator_CheckIgnoresQuota(t *testing.T) {
	store := new(StoreMock)
	store.On("GetSubscriptionStatus", mock.Anything, "user_1").
		Return(models.SubscriptionStatus(""), false, nil).Once()
	e := NewEvaluator(store, newNoopLogger())

	d := e.Check(context.Background(), "user_1", "")

	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonSubscriptionRequired, d.Reason)
	assert.Equal(t, ReasonAuthRequired, e.Check(context.Background(), "", "").Reason)
}

func TestClientSession_FreeQuotaMonotonic(t *testing.T) {
	store := new(StoreMock)
	store.On("GetSubscriptionStatus", mock.Anything, "user_1").
		Return(models.StatusActive, true, nil)
	e := NewEvaluator(store, newNoopLogger())
	s := NewClientSession(models.ClientState{})
	ctx := context.Background()

	// отправка не удалась: флаг не меняется
	d := s.Attempt(ctx, e, "", "")
	assert.True(t, d.FreeGrant)
	assert.False(t, s.State().HasUsedFreeMessage)

	// успешная отправка расходует квоту
	d = s.Attempt(ctx, e, "", "")
	s.Commit(d)
	assert.True(t, s.State().HasUsedFreeMessage)

	// второй ход без входа запрещён
	d = s.Attempt(ctx, e, "", "")
	assert.Equal(t, ReasonAuthRequired, d.Reason)
	s.Commit(d)
	assert.True(t, s.State().HasUsedFreeMessage)

	// подписчику разрешено, флаг остаётся выставленным
	d = s.Attempt(ctx, e, "user_1", "")
	assert.True(t, d.Allowed)
	assert.False(t, d.FreeGrant)
	s.Commit(d)
	assert.True(t, s.State().HasUsedFreeMessage)
}

type LinkerMock struct{ mock.Mock }

func (m *LinkerMock) LinkIdentity(ctx context.Context, identityID, email string) (*models.Account, bool, error) {
	args := m.Called(ctx, identityID, email)
	acct, _ := args.Get(0).(*models.Account)
	return acct, args.Bool(1), args.Error(2)
}

func TestEvaluator_StoreErrorAfterActive(t *testing.T) {
	store := new(StoreMock)
	store.On("GetSubscriptionStatus", mock.Anything, "user_1").
		Return(models.StatusActive, true, nil).Once()
	store.On("GetSubscriptionStatus", mock.Anything, "user_1").
		Return(models.SubscriptionStatus(""), false, errors.New("connection refused")).Once()
	e := NewEvaluator(store, newNoopLogger())
	used := models.ClientState{HasUsedFreeMessage: true}

	first := e.Evaluate(context.Background(), used, "user_1", "")
	second := e.Evaluate(context.Background(), used, "user_1", "")

	assert.True(t, first.Allowed)
	assert.False(t, second.Allowed)
	assert.Equal(t, ReasonStatusUnavailable, second.Reason)
	assert.ErrorIs(t, second.Err(), ErrStatusUnavailable)
	store.AssertExpectations(t)
}

func TestEvaluator_CheckLinksPaidBeforeSignIn(t *testing.T) {
	ctx := context.Background()

	t.Run("subscription found after linking by email", func(t *testing.T) {
		store := new(StoreMock)
		store.On("GetSubscriptionStatus", mock.Anything, "user_42").
			Return(models.SubscriptionStatus(""), false, nil).Once()
		store.On("GetSubscriptionStatus", mock.Anything, "user_42").
			Return(models.StatusActive, true, nil).Once()
		linker := new(LinkerMock)
		linker.On("LinkIdentity", mock.Anything, "user_42", "ann@example.com").
			Return(&models.Account{ID: "acc_email", ExternalIdentityID: "user_42"}, true, nil).Once()
		e := NewEvaluator(store, newNoopLogger()).WithLinker(linker)

		d := e.Check(ctx, "user_42", "ann@example.com")

		assert.True(t, d.Allowed)
		assert.Equal(t, models.StatusActive, d.Status)
		store.AssertExpectations(t)
		linker.AssertExpectations(t)
	})

	t.Run("nothing to link", func(t *testing.T) {
		store := new(StoreMock)
		store.On("GetSubscriptionStatus", mock.Anything, "user_42").
			Return(models.SubscriptionStatus(""), false, nil).Once()
		linker := new(LinkerMock)
		linker.On("LinkIdentity", mock.Anything, "user_42", "ann@example.com").Return(nil, false, nil).Once()
		e := NewEvaluator(store, newNoopLogger()).WithLinker(linker)

		d := e.Check(ctx, "user_42", "ann@example.com")

		assert.Equal(t, ReasonSubscriptionRequired, d.Reason)
		store.AssertNumberOfCalls(t, "GetSubscriptionStatus", 1)
	})

	t.Run("link failure is denied", func(t *testing.T) {
		store := new(StoreMock)
		store.On("GetSubscriptionStatus", mock.Anything, "user_42").
			Return(models.SubscriptionStatus(""), false, nil).Once()
		linker := new(LinkerMock)
		linker.On("LinkIdentity", mock.Anything, "user_42", "ann@example.com").
			Return(nil, false, errors.New("timeout")).Once()
		e := NewEvaluator(store, newNoopLogger()).WithLinker(linker)

		d := e.Check(ctx, "user_42", "ann@example.com")

		assert.False(t, d.Allowed)
		assert.Equal(t, ReasonStatusUnavailable, d.Reason)
	})

	t.Run("found subscription skips linking", func(t *testing.T) {
		store := new(StoreMock)
		store.On("GetSubscriptionStatus", mock.Anything, "user_42").
			Return(models.StatusCanceled, true, nil).Once()
		linker := new(LinkerMock)
		e := NewEvaluator(store, newNoopLogger()).WithLinker(linker)

		d := e.Check(ctx, "user_42", "ann@example.com")

		assert.Equal(t, ReasonSubscriptionRequired, d.Reason)
		linker.AssertNotCalled(t, "LinkIdentity", mock.Anything, mock.Anything, mock.Anything)
	})
}

package service

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"walletgate/internal/auth/service/mocks"
	"walletgate/internal/auth/store"
	dErrors "walletgate/pkg/domain-errors"
	audit "walletgate/pkg/platform/audit"
)

func TestHandleCallback_AuditsAuthorizationFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	emitter := mocks.NewMockEmitter(ctrl)

	var emitted []string
	emitter.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, event audit.Event) error {
			emitted = append(emitted, event.Action)
			return nil
		}).AnyTimes()

	f := newFixture(t, func(d *Deps) { d.Audit = emitter })

	query := url.Values{}
	query.Set("error", "access_denied")
	query.Set("error_description", "User cancelled")

	_, err := f.svc.HandleCallback(context.Background(), query)
	require.Error(t, err)
	assert.Contains(t, emitted, string(audit.EventAuthFailed))
}

func TestHandleCallback_NetworkFailure(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	doer := mocks.NewMockDoer(ctrl)
	doer.EXPECT().Do(gomock.Any()).Return(nil, errors.New("connection refused"))

	f := newFixture(t, func(d *Deps) { d.HTTP = doer })

	_, err := f.svc.BeginLogin(ctx)
	require.NoError(t, err)
	state, err := f.transient.Get(ctx, store.KeyState)
	require.NoError(t, err)

	query := url.Values{}
	query.Set("code", "ABC123")
	query.Set("state", state)

	_, err = f.svc.HandleCallback(ctx, query)
	require.Error(t, err)

	var exchErr *TokenExchangeError
	require.ErrorAs(t, err, &exchErr)
	assert.True(t, dErrors.Is(err, dErrors.CodeInternal))
	assert.False(t, f.svc.IsAuthenticated(ctx))
}

// An emitter failure must never fail the login flow itself.
func TestEmit_FailureIsNonFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	emitter := mocks.NewMockEmitter(ctrl)
	emitter.EXPECT().Emit(gomock.Any(), gomock.Any()).
		Return(errors.New("sink down")).AnyTimes()

	f := newFixture(t, func(d *Deps) { d.Audit = emitter })

	loginURL, err := f.svc.BeginLogin(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, loginURL)
}

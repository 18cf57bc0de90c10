package wallet

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "walletgate/pkg/domain-errors"
)

func TestStub_RequiresLoginForWalletOps(t *testing.T) {
	ctx := context.Background()
	s := NewStub()

	_, err := s.FetchWalletData(ctx)
	assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
	assert.True(t, dErrors.Is(s.ViewInWallet(ctx), dErrors.CodeUnauthorized))
	assert.True(t, dErrors.Is(s.AddToWallet(ctx), dErrors.CodeUnauthorized))

	require.NoError(t, s.LoginWithToken(ctx, "AT1"))
	s.SetData(Data{HasCredentialLink: true, IsCredentialDeployable: true})

	data, err := s.FetchWalletData(ctx)
	require.NoError(t, err)
	assert.True(t, data.HasCredentialLink)
	assert.True(t, data.IsCredentialDeployable)
	assert.NoError(t, s.ViewInWallet(ctx))
	assert.NoError(t, s.AddToWallet(ctx))
}

func TestStub_LoginValidation(t *testing.T) {
	ctx := context.Background()
	s := NewStub()

	assert.True(t, dErrors.Is(s.LoginWithCredentials(ctx, "", ""), dErrors.CodeInvalidInput))
	assert.True(t, dErrors.Is(s.LoginWithToken(ctx, ""), dErrors.CodeInvalidInput))
	assert.NoError(t, s.LoginWithCredentials(ctx, "ada", "secret"))

	ok, err := s.IsSDKInitialized(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStub_LifecycleSubscriptions(t *testing.T) {
	s := NewStub()

	var resumed, errored int
	subResume := s.On(EventResume, func(any) { resumed++ })
	subError := s.On(EventError, func(any) { errored++ })

	s.Fire(EventResume, nil)
	s.Fire(EventResume, nil)
	s.Fire(EventError, "boom")
	assert.Equal(t, 2, resumed)
	assert.Equal(t, 1, errored)

	subResume.Cancel()
	subResume.Cancel() // safe twice
	s.Fire(EventResume, nil)
	assert.Equal(t, 2, resumed)

	subError.Cancel()
	s.Fire(EventError, nil)
	assert.Equal(t, 1, errored)
}

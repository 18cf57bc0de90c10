// Package wallet types the surface of the native wallet-credential plugin.
// The real SDK lives outside this repository; the application talks to it
// only through Plugin so the core flow stays testable without a device.
package wallet

import "context"

// Data is the wallet state returned by FetchWalletData.
type Data struct {
	HasCredentialLink      bool `json:"has_credential_link"`
	IsCredentialDeployable bool `json:"is_credential_deployable"`
}

// Lifecycle names a plugin lifecycle or data event.
type Lifecycle string

const (
	EventResume    Lifecycle = "resume"
	EventStop      Lifecycle = "stop"
	EventStart     Lifecycle = "start"
	EventDestroy   Lifecycle = "destroy"
	EventError     Lifecycle = "error"
	EventDataReady Lifecycle = "data_ready"
)

// Subscription is a disposable handle to a lifecycle listener.
type Subscription interface {
	Cancel()
}

// Plugin is the consumed native SDK surface. Every blocking call takes a
// context; errors come back explicitly rather than through an event channel.
type Plugin interface {
	LoginWithCredentials(ctx context.Context, username, password string) error
	LoginWithInteractiveUser(ctx context.Context) error
	LoginWithToken(ctx context.Context, accessToken string) error

	FetchWalletData(ctx context.Context) (*Data, error)
	ViewInWallet(ctx context.Context) error
	AddToWallet(ctx context.Context) error

	SetIDToken(ctx context.Context, idToken string) error
	IsSDKInitialized(ctx context.Context) (bool, error)

	On(event Lifecycle, fn func(payload any)) Subscription
}

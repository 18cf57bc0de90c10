package wallet

import (
	"context"
	"sync"

	dErrors "walletgate/pkg/domain-errors"
)

// Stub is an in-process Plugin for tests and demo runs. It tracks login
// state and fans lifecycle events out to registered listeners.
type Stub struct {
	mu          sync.Mutex
	initialized bool
	loggedIn    bool
	idToken     string
	data        Data

	nextID    int
	listeners map[Lifecycle]map[int]func(any)
}

// NewStub returns an initialized stub with no wallet data.
func NewStub() *Stub {
	return &Stub{
		initialized: true,
		listeners:   make(map[Lifecycle]map[int]func(any)),
	}
}

// SetData seeds the wallet data returned by FetchWalletData.
func (s *Stub) SetData(data Data) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data
}

func (s *Stub) LoginWithCredentials(_ context.Context, username, password string) error {
	if username == "" || password == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "credentials required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loggedIn = true
	return nil
}

func (s *Stub) LoginWithInteractiveUser(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loggedIn = true
	return nil
}

func (s *Stub) LoginWithToken(_ context.Context, accessToken string) error {
	if accessToken == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "access token required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loggedIn = true
	return nil
}

func (s *Stub) FetchWalletData(context.Context) (*Data, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loggedIn {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "wallet requires login")
	}
	data := s.data
	return &data, nil
}

func (s *Stub) ViewInWallet(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loggedIn {
		return dErrors.New(dErrors.CodeUnauthorized, "wallet requires login")
	}
	return nil
}

func (s *Stub) AddToWallet(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loggedIn {
		return dErrors.New(dErrors.CodeUnauthorized, "wallet requires login")
	}
	return nil
}

func (s *Stub) SetIDToken(_ context.Context, idToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.idToken = idToken
	return nil
}

func (s *Stub) IsSDKInitialized(context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized, nil
}

type stubSubscription struct {
	cancel func()
	once   sync.Once
}

func (s *stubSubscription) Cancel() { s.once.Do(s.cancel) }

// On registers a listener for one lifecycle event.
func (s *Stub) On(event Lifecycle, fn func(payload any)) Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	if s.listeners[event] == nil {
		s.listeners[event] = make(map[int]func(any))
	}
	s.listeners[event][id] = fn

	return &stubSubscription{cancel: func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners[event], id)
	}}
}

// Fire synchronously invokes every listener for the event. Test hook.
func (s *Stub) Fire(event Lifecycle, payload any) {
	s.mu.Lock()
	fns := make([]func(any), 0, len(s.listeners[event]))
	for _, fn := range s.listeners[event] {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(payload)
	}
}

var _ Plugin = (*Stub)(nil)

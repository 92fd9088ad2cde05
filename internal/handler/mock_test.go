package handler

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/hitoshi/keybind/internal/account"
)

type mockLookupService struct {
	lookupFn func(ctx context.Context, publicKey []byte) (uuid.UUID, error)
}

func (m *mockLookupService) Lookup(ctx context.Context, publicKey []byte) (uuid.UUID, error) {
	if m.lookupFn != nil {
		return m.lookupFn(ctx, publicKey)
	}
	return uuid.Nil, errors.New("not implemented")
}

type mockRegistrationService struct {
	registerFn func(ctx context.Context, req account.RegisterRequest) (uuid.UUID, error)
}

func (m *mockRegistrationService) Register(ctx context.Context, req account.RegisterRequest) (uuid.UUID, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, req)
	}
	return uuid.Nil, errors.New("not implemented")
}

type mockAuthenticationService struct {
	authenticateFn func(ctx context.Context, req account.AuthenticateRequest) (uuid.UUID, error)
}

func (m *mockAuthenticationService) Authenticate(ctx context.Context, req account.AuthenticateRequest) (uuid.UUID, error) {
	if m.authenticateFn != nil {
		return m.authenticateFn(ctx, req)
	}
	return uuid.Nil, errors.New("not implemented")
}

type mockHealthChecker struct {
	err error
}

func (m *mockHealthChecker) PingContext(context.Context) error { return m.err }

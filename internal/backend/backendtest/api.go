// Package backendtest provides a testify mock of the Reloop backend API.
package backendtest

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/reloop/portal/internal/backend"
)

type MockAPI struct {
	mock.Mock
}

var _ backend.API = (*MockAPI)(nil)

func (m *MockAPI) LoginCustomer(ctx context.Context, creds backend.CustomerCredentials) (*backend.Token, error) {
	args := m.Called(ctx, creds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*backend.Token), args.Error(1)
}

func (m *MockAPI) LoginWorker(ctx context.Context, creds backend.WorkerCredentials) (*backend.Token, error) {
	args := m.Called(ctx, creds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*backend.Token), args.Error(1)
}

func (m *MockAPI) UserProfile(ctx context.Context, token string) (*backend.UserProfile, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*backend.UserProfile), args.Error(1)
}

func (m *MockAPI) WorkerProfile(ctx context.Context, token string) (*backend.WorkerProfile, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*backend.WorkerProfile), args.Error(1)
}

func (m *MockAPI) CoinInfo(ctx context.Context, token string) (int, error) {
	args := m.Called(ctx, token)
	return args.Int(0), args.Error(1)
}

func (m *MockAPI) Redeem(ctx context.Context, token string, amount int) (*backend.RedeemResult, error) {
	args := m.Called(ctx, token, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*backend.RedeemResult), args.Error(1)
}

func (m *MockAPI) CoinTransactions(ctx context.Context, token string) (*backend.Transactions, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*backend.Transactions), args.Error(1)
}

func (m *MockAPI) ScanQR(ctx context.Context, token string, upload backend.ScanUpload) (*backend.ScanResult, error) {
	args := m.Called(ctx, token, upload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*backend.ScanResult), args.Error(1)
}

func (m *MockAPI) AboutBag(ctx context.Context, token string, image []byte, filename string) (*backend.BagSummary, error) {
	args := m.Called(ctx, token, image, filename)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*backend.BagSummary), args.Error(1)
}

package controller_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/reloop/portal/internal/backend"
	"github.com/reloop/portal/internal/controller"
	customerrors "github.com/reloop/portal/internal/customErrors"
	"github.com/reloop/portal/internal/dto"
)

type MockCustomerService struct {
	mock.Mock
}

func (m *MockCustomerService) Dashboard(ctx context.Context, token string) (*dto.DashboardResponse, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.DashboardResponse), args.Error(1)
}

func (m *MockCustomerService) Profile(ctx context.Context, token string) (*dto.ProfileResponse, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ProfileResponse), args.Error(1)
}

func (m *MockCustomerService) RedeemOptions(ctx context.Context, token string) (*dto.RedeemOptionsResponse, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.RedeemOptionsResponse), args.Error(1)
}

func (m *MockCustomerService) Redeem(ctx context.Context, token string, req dto.RedeemRequest) (*dto.RedeemResponse, error) {
	args := m.Called(token, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.RedeemResponse), args.Error(1)
}

func (m *MockCustomerService) Transactions(ctx context.Context, token string) (*dto.TransactionsResponse, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.TransactionsResponse), args.Error(1)
}

/*******************************************************************************/

func setupCustomerController() (*MockCustomerService, *controller.CustomerController) {
	mockService := new(MockCustomerService)
	return mockService, controller.NewCustomerController(mockService)
}

func TestCustomerControllerDashboard(t *testing.T) {
	mockService, c := setupCustomerController()
	mockService.On("Dashboard", accessTokenString).Return(&dto.DashboardResponse{Name: "Ana", TotalCoins: 245, MaxRedeemable: 240}, nil)

	rec := httptest.NewRecorder()
	err := c.Dashboard(rec, withSession(createRequest(http.MethodGet, "/dashboard", nil), backend.UserTypeCustomer, "ana@example.com"))

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var res dto.DashboardResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	assert.Equal(t, 240, res.MaxRedeemable)
}

func TestCustomerControllerRedeem(t *testing.T) {
	mockService, c := setupCustomerController()
	mockService.On("Redeem", accessTokenString, dto.RedeemRequest{Amount: 100}).
		Return(&dto.RedeemResponse{Message: "Redemption submitted", Redeemed: 100, Redirect: "/dashboard"}, nil)

	rec := httptest.NewRecorder()
	req := createRequest(http.MethodPost, "/redeem", dto.RedeemRequest{Amount: 100})
	err := c.Redeem(rec, withSession(req, backend.UserTypeCustomer, "ana@example.com"))

	require.NoError(t, err)
	assert.Contains(t, rec.Body.String(), `"redirect":"/dashboard"`)
}

func TestCustomerControllerRedeemErrors(t *testing.T) {
	t.Run("InvalidJSON", func(t *testing.T) {
		_, c := setupCustomerController()
		req := httptest.NewRequest(http.MethodPost, "/redeem", strings.NewReader(`{"amount":"lots"}`))

		err := c.Redeem(httptest.NewRecorder(), withSession(req, backend.UserTypeCustomer, "ana@example.com"))
		assert.Equal(t, customerrors.ErrInvalidRedeemAmount, err)
	})

	t.Run("InsufficientCoins", func(t *testing.T) {
		mockService, c := setupCustomerController()
		mockService.On("Redeem", accessTokenString, dto.RedeemRequest{Amount: 500}).Return(nil, customerrors.ErrInsufficientCoins)

		req := createRequest(http.MethodPost, "/redeem", dto.RedeemRequest{Amount: 500})
		err := c.Redeem(httptest.NewRecorder(), withSession(req, backend.UserTypeCustomer, "ana@example.com"))
		assert.Equal(t, customerrors.ErrInsufficientCoins, err)
	})

	t.Run("NoSession", func(t *testing.T) {
		_, c := setupCustomerController()
		err := c.Redeem(httptest.NewRecorder(), createRequest(http.MethodPost, "/redeem", dto.RedeemRequest{Amount: 5}))
		assert.Equal(t, customerrors.ErrUnauthorized, err)
	})
}

func TestCustomerControllerTransactions(t *testing.T) {
	mockService, c := setupCustomerController()
	mockService.On("Transactions", accessTokenString).Return(&dto.TransactionsResponse{
		Earning:  []backend.EarningTransaction{},
		Spending: []backend.SpendingTransaction{},
	}, nil)

	rec := httptest.NewRecorder()
	err := c.Transactions(rec, withSession(createRequest(http.MethodGet, "/transactions", nil), backend.UserTypeCustomer, "ana@example.com"))

	require.NoError(t, err)
	assert.Contains(t, rec.Body.String(), `"earning_transactions":[]`)
}

package controller_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authservice "github.com/reloop/portal/internal/auth/service"
	"github.com/reloop/portal/internal/backend"
	"github.com/reloop/portal/internal/config"
	"github.com/reloop/portal/internal/controller"
	customerrors "github.com/reloop/portal/internal/customErrors"
	"github.com/reloop/portal/internal/dto"
	"github.com/reloop/portal/internal/middleware"
	workerservice "github.com/reloop/portal/internal/worker/service"
)

const (
	endpointLoginString  = "/auth/login"
	endpointLogoutString = "/auth/logout"
	endpointScanString   = "/worker/scan"
	cookieName           = "reloop_session"
	accessTokenString    = "backend-token"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, req dto.LoginRequest) (*authservice.Session, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authservice.Session), args.Error(1)
}

func (m *MockAuthService) Validate(token string) (*config.Claims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*config.Claims), args.Error(1)
}

type MockWorkerService struct {
	mock.Mock
}

func (m *MockWorkerService) Dashboard(ctx context.Context, token, workerID string) (*dto.WorkerDashboardResponse, error) {
	args := m.Called(token, workerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.WorkerDashboardResponse), args.Error(1)
}

func (m *MockWorkerService) Profile(ctx context.Context, token string) (*dto.WorkerProfileResponse, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.WorkerProfileResponse), args.Error(1)
}

func (m *MockWorkerService) Scan(ctx context.Context, token, workerID string, req dto.ScanRequest, img workerservice.Image) (*dto.ScanResponse, error) {
	args := m.Called(token, workerID, req, img)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ScanResponse), args.Error(1)
}

func (m *MockWorkerService) CheckBag(ctx context.Context, token string, img workerservice.Image) (*dto.BagHistoryResponse, error) {
	args := m.Called(token, img)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.BagHistoryResponse), args.Error(1)
}

type stubPinger struct{ err error }

func (s stubPinger) Ping(ctx context.Context) error { return s.err }

/*******************************************************************************/

func createRequest(method, endpoint string, payload any) *http.Request {
	if payload == nil {
		return httptest.NewRequest(method, endpoint, nil)
	}

	jsonBytes, _ := json.Marshal(payload)
	return httptest.NewRequest(method, endpoint, bytes.NewBuffer(jsonBytes))
}

func withSession(r *http.Request, userType backend.UserType, subject string) *http.Request {
	claims := &config.Claims{UserType: string(userType), AccessToken: accessTokenString}
	claims.Subject = subject
	return r.WithContext(middleware.WithSession(r.Context(), claims))
}

func createMultipartRequest(t *testing.T, endpoint string, fields map[string]string, image []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if image != nil {
		part, err := w.CreateFormFile("qr_image", "frame.jpg")
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, endpoint, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func sessionConfig() config.SessionConfig {
	return config.SessionConfig{CookieName: cookieName, CookieSecure: true}
}

func TestAuthControllerLogin(t *testing.T) {
	mockService := new(MockAuthService)
	c := controller.NewAuthController(mockService, sessionConfig())
	expiresAt := time.Now().Add(time.Hour).Truncate(time.Second)

	req := dto.LoginRequest{UserType: "worker", WorkerID: "W-7", Password: "pw"}
	mockService.On("Login", req).Return(&authservice.Session{
		Token:     "signed",
		UserType:  backend.UserTypeWorker,
		Subject:   "W-7",
		ExpiresAt: expiresAt,
		Redirect:  authservice.WorkerLanding,
	}, nil)

	rec := httptest.NewRecorder()
	err := c.Login(rec, createRequest(http.MethodPost, endpointLoginString, req))

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var res dto.LoginResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	assert.Equal(t, "/worker/dashboard", res.Redirect)
	assert.Equal(t, expiresAt.Unix(), res.ExpiresAt)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, cookieName, cookies[0].Name)
	assert.Equal(t, "signed", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)
}

func TestAuthControllerLoginErrors(t *testing.T) {
	t.Run("InvalidJSON", func(t *testing.T) {
		c := controller.NewAuthController(new(MockAuthService), sessionConfig())
		req := httptest.NewRequest(http.MethodPost, endpointLoginString, strings.NewReader("invalid-json"))

		err := c.Login(httptest.NewRecorder(), req)
		assert.Equal(t, customerrors.ErrBadRequest, err)
	})

	t.Run("InvalidCredentials", func(t *testing.T) {
		mockService := new(MockAuthService)
		c := controller.NewAuthController(mockService, sessionConfig())
		mockService.On("Login", mock.Anything).Return(nil, customerrors.ErrInvalidCredentials)

		rec := httptest.NewRecorder()
		err := c.Login(rec, createRequest(http.MethodPost, endpointLoginString, dto.LoginRequest{UserType: "user"}))

		assert.Equal(t, customerrors.ErrInvalidCredentials, err)
		assert.Empty(t, rec.Result().Cookies())
	})
}

func TestAuthControllerLogout(t *testing.T) {
	c := controller.NewAuthController(new(MockAuthService), sessionConfig())
	rec := httptest.NewRecorder()

	require.NoError(t, c.Logout(rec, createRequest(http.MethodPost, endpointLogoutString, nil)))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.Less(t, cookies[0].MaxAge, 0)
}

func TestWorkerControllerScan(t *testing.T) {
	mockService := new(MockWorkerService)
	c := controller.NewWorkerController(mockService, 1<<20)
	image := []byte("jpeg-bytes")

	mockService.On("Scan", accessTokenString, "W-7",
		dto.ScanRequest{UserID: "U-1", ScanMode: "recycle"},
		workerservice.Image{Data: image, Filename: "frame.jpg"},
	).Return(&dto.ScanResponse{Message: "Bag scanned successfully", BagID: "BAG001"}, nil)

	req := createMultipartRequest(t, endpointScanString, map[string]string{"user_id": "U-1", "scan_mode": "recycle"}, image)
	rec := httptest.NewRecorder()

	err := c.Scan(rec, withSession(req, backend.UserTypeWorker, "W-7"))

	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rec.Code)
	mockService.AssertExpectations(t)
}

func TestWorkerControllerScanWithoutImage(t *testing.T) {
	mockService := new(MockWorkerService)
	c := controller.NewWorkerController(mockService, 1<<20)

	mockService.On("Scan", accessTokenString, "W-7", dto.ScanRequest{UserID: "U-1"}, workerservice.Image{}).
		Return(nil, customerrors.ErrMissingImage)

	req := createMultipartRequest(t, endpointScanString, map[string]string{"user_id": "U-1"}, nil)
	err := c.Scan(httptest.NewRecorder(), withSession(req, backend.UserTypeWorker, "W-7"))

	assert.Equal(t, customerrors.ErrMissingImage, err)
	mockService.AssertExpectations(t)
}

func TestWorkerControllerScanWithoutUserID(t *testing.T) {
	mockService := new(MockWorkerService)
	c := controller.NewWorkerController(mockService, 1<<20)

	req := createMultipartRequest(t, endpointScanString, nil, nil)
	err := c.Scan(httptest.NewRecorder(), withSession(req, backend.UserTypeWorker, "W-7"))

	assert.Equal(t, customerrors.ErrMissingUserID, err)
	mockService.AssertNotCalled(t, "Scan", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestWorkerControllerScanTooLarge(t *testing.T) {
	c := controller.NewWorkerController(new(MockWorkerService), 1024)

	req := createMultipartRequest(t, endpointScanString, map[string]string{"user_id": "U-1"}, bytes.Repeat([]byte{0xff}, 4096))
	err := c.Scan(httptest.NewRecorder(), withSession(req, backend.UserTypeWorker, "W-7"))

	assert.Equal(t, customerrors.ErrImageTooLarge, err)
}

func TestWorkerControllerScanUploadErrors(t *testing.T) {
	oversize := bytes.Repeat([]byte{0xff}, 4096)

	testCases := []struct {
		name          string
		request       func(t *testing.T) *http.Request
		expectedError error
	}{
		{
			name: "OversizeImageWithoutUserID",
			request: func(t *testing.T) *http.Request {
				return createMultipartRequest(t, endpointScanString, map[string]string{"scan_mode": "checkout"}, oversize)
			},
			expectedError: customerrors.ErrMissingUserID,
		},
		{
			name: "OversizeImageBlankUserID",
			request: func(t *testing.T) *http.Request {
				return createMultipartRequest(t, endpointScanString, map[string]string{"user_id": "  "}, oversize)
			},
			expectedError: customerrors.ErrMissingUserID,
		},
		{
			name: "JSONBodyWithoutUserID",
			request: func(t *testing.T) *http.Request {
				return createRequest(http.MethodPost, endpointScanString, map[string]string{"scan_mode": "checkout"})
			},
			expectedError: customerrors.ErrMissingUserID,
		},
		{
			name: "BrokenMultipartWithoutUserID",
			request: func(t *testing.T) *http.Request {
				req := httptest.NewRequest(http.MethodPost, endpointScanString, strings.NewReader("--x\r\ngarbage"))
				req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
				return req
			},
			expectedError: customerrors.ErrMissingUserID,
		},
		{
			name: "BrokenMultipartAfterUserID",
			request: func(t *testing.T) *http.Request {
				body := "--x\r\nContent-Disposition: form-data; name=\"user_id\"\r\n\r\nU-1\r\n--x\r\ngarbage"
				req := httptest.NewRequest(http.MethodPost, endpointScanString, strings.NewReader(body))
				req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
				return req
			},
			expectedError: customerrors.ErrBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockService := new(MockWorkerService)
			c := controller.NewWorkerController(mockService, 1024)

			err := c.Scan(httptest.NewRecorder(), withSession(tc.request(t), backend.UserTypeWorker, "W-7"))

			assert.Equal(t, tc.expectedError, err)
			mockService.AssertNotCalled(t, "Scan", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestWorkerControllerScanURLEncodedForm(t *testing.T) {
	mockService := new(MockWorkerService)
	c := controller.NewWorkerController(mockService, 1024)

	mockService.On("Scan", accessTokenString, "W-7", dto.ScanRequest{UserID: "U-1", ScanMode: "checkout"}, workerservice.Image{}).
		Return(nil, customerrors.ErrMissingImage)

	req := httptest.NewRequest(http.MethodPost, endpointScanString, strings.NewReader("user_id=U-1&scan_mode=checkout"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	err := c.Scan(httptest.NewRecorder(), withSession(req, backend.UserTypeWorker, "W-7"))

	assert.Equal(t, customerrors.ErrMissingImage, err)
	mockService.AssertExpectations(t)
}

func TestWorkerControllerCheckBagTooLarge(t *testing.T) {
	c := controller.NewWorkerController(new(MockWorkerService), 1024)

	req := createMultipartRequest(t, "/worker/check-bag", nil, bytes.Repeat([]byte{0xff}, 4096))
	err := c.CheckBag(httptest.NewRecorder(), withSession(req, backend.UserTypeWorker, "W-7"))

	assert.Equal(t, customerrors.ErrImageTooLarge, err)
}

func TestWorkerControllerWithoutSession(t *testing.T) {
	c := controller.NewWorkerController(new(MockWorkerService), 1024)

	err := c.Dashboard(httptest.NewRecorder(), createRequest(http.MethodGet, "/worker/dashboard", nil))
	assert.Equal(t, customerrors.ErrUnauthorized, err)
}

func TestWorkerControllerDashboard(t *testing.T) {
	mockService := new(MockWorkerService)
	c := controller.NewWorkerController(mockService, 0)
	mockService.On("Dashboard", accessTokenString, "W-7").Return(&dto.WorkerDashboardResponse{
		WorkerProfileResponse: dto.WorkerProfileResponse{Name: "Bo", Accuracy: 100},
	}, nil)

	rec := httptest.NewRecorder()
	err := c.Dashboard(rec, withSession(createRequest(http.MethodGet, "/worker/dashboard", nil), backend.UserTypeWorker, "W-7"))

	require.NoError(t, err)
	assert.Contains(t, rec.Body.String(), `"name":"Bo"`)
}

func TestHealthController(t *testing.T) {
	testCases := []struct {
		name          string
		pingErr       error
		expectedError error
	}{
		{name: "Healthy"},
		{name: "Unreachable", pingErr: errors.New("connection refused"), expectedError: customerrors.ErrDbUnreacheable},
		{name: "Timeout", pingErr: context.DeadlineExceeded, expectedError: customerrors.ErrDbTimeout},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := controller.NewHealthController(stubPinger{err: tc.pingErr})
			rec := httptest.NewRecorder()

			err := c.HealthCheck(rec, createRequest(http.MethodGet, "/healthz", nil))

			if tc.expectedError != nil {
				assert.Equal(t, tc.expectedError, err)
				return
			}
			require.NoError(t, err)
			var res dto.HealthResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
			assert.Equal(t, dto.HealthResponse{Status: "OK", Database: "Connected"}, res)
		})
	}
}

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// API is the subset of the Reloop backend the portal depends on.
type API interface {
	LoginCustomer(ctx context.Context, creds CustomerCredentials) (*Token, error)
	LoginWorker(ctx context.Context, creds WorkerCredentials) (*Token, error)
	UserProfile(ctx context.Context, token string) (*UserProfile, error)
	WorkerProfile(ctx context.Context, token string) (*WorkerProfile, error)
	CoinInfo(ctx context.Context, token string) (int, error)
	Redeem(ctx context.Context, token string, amount int) (*RedeemResult, error)
	CoinTransactions(ctx context.Context, token string) (*Transactions, error)
	ScanQR(ctx context.Context, token string, upload ScanUpload) (*ScanResult, error)
	AboutBag(ctx context.Context, token string, image []byte, filename string) (*BagSummary, error)
}

var ErrMissingToken = errors.New("backend login response has no access token")

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	if msg := e.detail(); msg != "" {
		return fmt.Sprintf("reloop backend %s %s: %d: %s", e.Method, e.Path, e.Status, msg)
	}
	return fmt.Sprintf("reloop backend %s %s: %d %s", e.Method, e.Path, e.Status, http.StatusText(e.Status))
}

// StatusCode maps the backend status onto the status the portal answers with.
func (e *APIError) StatusCode() int {
	switch {
	case e.Status == http.StatusUnauthorized, e.Status == http.StatusForbidden, e.Status == http.StatusNotFound:
		return e.Status
	case e.Status == http.StatusUnprocessableEntity, e.Status == http.StatusBadRequest:
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

// PublicMessage is the backend's own explanation, or the status text of the
// mapped status. It never names the backend route.
func (e *APIError) PublicMessage() string {
	if msg := e.detail(); msg != "" {
		return msg
	}
	return http.StatusText(e.StatusCode())
}

// detail extracts the message of a {"detail": ...} or {"message": ...} body.
func (e *APIError) detail() string {
	var body struct {
		Detail  any    `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal([]byte(e.Body), &body); err != nil {
		return ""
	}
	if s, ok := body.Detail.(string); ok && s != "" {
		return s
	}
	return body.Message
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

func (c *Client) LoginCustomer(ctx context.Context, creds CustomerCredentials) (*Token, error) {
	return c.login(ctx, "/auth/"+string(UserTypeCustomer)+"/login", creds)
}

func (c *Client) LoginWorker(ctx context.Context, creds WorkerCredentials) (*Token, error) {
	return c.login(ctx, "/api/"+string(UserTypeWorker)+"/login", creds)
}

func (c *Client) login(ctx context.Context, path string, creds any) (*Token, error) {
	body, err := json.Marshal(creds)
	if err != nil {
		return nil, err
	}

	var token Token
	if err := c.do(ctx, http.MethodPost, path, "", bytes.NewReader(body), "application/json", &token); err != nil {
		return nil, err
	}
	if token.AccessToken == "" || token.TokenType == "" {
		return nil, ErrMissingToken
	}
	return &token, nil
}

func (c *Client) UserProfile(ctx context.Context, token string) (*UserProfile, error) {
	var profile UserProfile
	if err := c.getJSON(ctx, "/dashboard/user/profile", token, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (c *Client) WorkerProfile(ctx context.Context, token string) (*WorkerProfile, error) {
	var profile WorkerProfile
	if err := c.getJSON(ctx, "/dashboard/worker/profile", token, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (c *Client) CoinInfo(ctx context.Context, token string) (int, error) {
	var coins json.Number
	if err := c.getJSON(ctx, "/dashboard/user/coin_info", token, &coins); err != nil {
		return 0, err
	}
	n, err := coins.Int64()
	if err != nil {
		f, ferr := coins.Float64()
		if ferr != nil {
			return 0, fmt.Errorf("decode coin balance %q: %w", coins, err)
		}
		n = int64(f)
	}
	return int(n), nil
}

func (c *Client) Redeem(ctx context.Context, token string, amount int) (*RedeemResult, error) {
	var result RedeemResult
	path := "/dashboard/user/redeem/" + strconv.Itoa(amount)
	if err := c.do(ctx, http.MethodPost, path, token, nil, "application/json", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) CoinTransactions(ctx context.Context, token string) (*Transactions, error) {
	var txs Transactions
	if err := c.getJSON(ctx, "/dashboard/user/coin_transactions", token, &txs); err != nil {
		return nil, err
	}
	return &txs, nil
}

func (c *Client) ScanQR(ctx context.Context, token string, upload ScanUpload) (*ScanResult, error) {
	body, contentType, err := multipartBody(upload.Filename, upload.Image, map[string]string{
		"user_id":    upload.UserID,
		"scan_mode":  upload.ScanMode,
		"worker_id":  upload.WorkerID,
		"qr_payload": upload.QRPayload,
	})
	if err != nil {
		return nil, err
	}

	var result ScanResult
	if err := c.do(ctx, http.MethodPost, "/dashboard/worker/scan_qr", token, body, contentType, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) AboutBag(ctx context.Context, token string, image []byte, filename string) (*BagSummary, error) {
	body, contentType, err := multipartBody(filename, image, nil)
	if err != nil {
		return nil, err
	}

	var summary BagSummary
	if err := c.do(ctx, http.MethodPost, "/dashboard/worker/about_bag", token, body, contentType, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (c *Client) getJSON(ctx context.Context, path, token string, out any) error {
	return c.do(ctx, http.MethodGet, path, token, nil, "application/json", out)
}

func (c *Client) do(ctx context.Context, method, path, token string, body io.Reader, contentType string, out any) error {
	endpoint, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	res, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("backend request failed",
			zap.String("method", method), zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	c.log.Debug("backend request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", res.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read %s %s response: %w", method, path, err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return &APIError{Method: method, Path: path, Status: res.StatusCode, Body: string(raw)}
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func multipartBody(filename string, image []byte, fields map[string]string) (io.Reader, string, error) {
	if filename == "" {
		filename = "qr.jpg"
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("qr_image", filename)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(image); err != nil {
		return nil, "", err
	}

	for _, key := range []string{"user_id", "scan_mode", "worker_id", "qr_payload"} {
		value, ok := fields[key]
		if !ok || value == "" {
			continue
		}
		if err := w.WriteField(key, value); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

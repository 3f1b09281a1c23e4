package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/mediabot/internal/client/models"
)

// envelope is the part every backend response shares.
type envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

type HTTPClient struct {
	baseURL string
	http    *http.Client
}

// NewHTTPClient targets the backend at baseURL. A nil hc means a plain
// http.Client with no timeout of its own.
func NewHTTPClient(baseURL string, hc *http.Client) *HTTPClient {
	if hc == nil {
		hc = &http.Client{}
	}
	return &HTTPClient{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var resp struct {
		Token     string       `json:"token"`
		User      *models.User `json:"user"`
		ExpiresIn string       `json:"expires_in"`
	}
	in := map[string]string{"email": email, "password": password}
	if err := c.post(ctx, "/api/auth/login", "", in, &resp); err != nil {
		return nil, err
	}
	if resp.Token == "" || resp.User == nil {
		return nil, fmt.Errorf("%w: login response without token or user", ErrBadResponse)
	}
	return &LoginResult{Token: resp.Token, User: *resp.User, ExpiresIn: resp.ExpiresIn}, nil
}

func (c *HTTPClient) Logout(ctx context.Context, token string) error {
	return c.post(ctx, "/api/auth/logout", token, nil, nil)
}

func (c *HTTPClient) VerifyToken(ctx context.Context, token string) error {
	return c.post(ctx, "/api/auth/verify-token", token, nil, nil)
}

func (c *HTTPClient) SendOTP(ctx context.Context, email string) error {
	return c.post(ctx, "/api/auth/send-otp", "", map[string]string{"email": email}, nil)
}

func (c *HTTPClient) VerifyOTP(ctx context.Context, email, otp string) (*OTPResult, error) {
	var resp struct {
		Token      string `json:"token"`
		BusinessID string `json:"business_id"`
	}
	in := map[string]string{"email": email, "otp": otp}
	if err := c.post(ctx, "/api/auth/verify-otp", "", in, &resp); err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, fmt.Errorf("%w: otp response without token", ErrBadResponse)
	}
	return &OTPResult{Token: resp.Token, BusinessID: resp.BusinessID}, nil
}

func (c *HTTPClient) SubmitOnboarding(ctx context.Context, email string, data map[string]any) error {
	in := map[string]any{"email": email, "onboardingData": data}
	return c.post(ctx, "/api/onboarding", "", in, nil)
}

// post sends a JSON POST and decodes the answer into out (when non-nil).
// The body is decoded whatever the status code, since the backend reports
// failures as {"success": false, "error": ...}.
func (c *HTTPClient) post(ctx context.Context, path, token string, in, out any) error {
	var body io.Reader = http.NoBody
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return do(c.http, req, out)
}

func do(hc *http.Client, req *http.Request, out any) error {
	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("%w: %s", ErrUnavailable, resp.Status)
		}
		return fmt.Errorf("%w: %s: %v", ErrBadResponse, resp.Status, err)
	}

	if !env.Success {
		return &APIError{StatusCode: resp.StatusCode, Message: env.Error, Code: env.Code}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("%w: %v", ErrBadResponse, err)
		}
	}
	return nil
}

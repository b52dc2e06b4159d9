package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/syllabify/internal/client/models"
	"github.com/dmitrijs2005/syllabify/internal/logging"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

const (
	loginPath         = "/api/auth/login"
	securitySetupPath = "/api/auth/security-setup"
	mePath            = "/api/auth/me"

	RequestIDHeaderName = "X-Request-ID"
)

type HTTPClient struct {
	baseURL string
	rest    *resty.Client
	log     logging.Logger
}

// NewHTTPClient returns a client talking to the API at baseURL.
// A zero timeout means requests are bounded only by their context.
func NewHTTPClient(baseURL string, timeout time.Duration, log logging.Logger) *HTTPClient {
	baseURL = strings.TrimRight(baseURL, "/")

	rest := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
			r.SetHeader(RequestIDHeaderName, uuid.NewString())
			return nil
		})

	if timeout > 0 {
		rest.SetTimeout(timeout)
	}

	return &HTTPClient{baseURL: baseURL, rest: rest, log: log.With("component", "api")}
}

func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (c *HTTPClient) Login(ctx context.Context, username, password string) (*models.LoginResult, error) {
	var (
		result  models.LoginResult
		failure errorBody
	)

	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(&loginRequest{Username: username, Password: password}).
		SetResult(&result).
		SetError(&failure).
		Post(loginPath)

	if aerr := c.mapResponse(ctx, "login", resp, err, &failure, msgLoginFailed); aerr != nil {
		return nil, aerr
	}

	if result.Token == "" {
		c.log.Warn(ctx, "login response carries no token", "status", resp.StatusCode())
		return nil, &AuthError{Op: "login", Status: resp.StatusCode(), Message: msgLoginFailed, Err: ErrRejected}
	}

	return &result, nil
}

type securitySetupRequest struct {
	Questions []models.SecurityQuestion `json:"questions"`
}

func (c *HTTPClient) SecuritySetup(ctx context.Context, token string, questions []models.SecurityQuestion) error {
	var failure errorBody

	if questions == nil {
		questions = []models.SecurityQuestion{}
	}

	resp, err := c.rest.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetBody(&securitySetupRequest{Questions: questions}).
		SetError(&failure).
		Post(securitySetupPath)

	if aerr := c.mapResponse(ctx, "security-setup", resp, err, &failure, msgSecuritySetupFailed); aerr != nil {
		return aerr
	}
	return nil
}

// Me resolves the profile behind token. Any failure is reported as nil.
func (c *HTTPClient) Me(ctx context.Context, token string) *models.User {
	if token == "" {
		return nil
	}

	var user models.User

	resp, err := c.rest.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetResult(&user).
		Get(mePath)

	if err != nil {
		c.log.Debug(ctx, "profile fetch failed", "error", err)
		return nil
	}
	if !resp.IsSuccess() {
		c.log.Debug(ctx, "profile fetch rejected", "status", resp.StatusCode())
		return nil
	}

	return &user
}

// mapResponse turns a failed exchange into an *AuthError, or returns nil
// when the response is a 2xx.
func (c *HTTPClient) mapResponse(ctx context.Context, op string, resp *resty.Response, err error, failure *errorBody, fallback string) *AuthError {
	status := 0
	if resp != nil && resp.RawResponse != nil {
		status = resp.StatusCode()
	}

	if err != nil {
		// A response that arrived but could not be decoded still has a status.
		c.log.Warn(ctx, "request failed", "op", op, "status", status, "error", err)
		if status >= http.StatusOK && status < http.StatusMultipleChoices {
			return &AuthError{Op: op, Status: status, Message: fallback, Err: ErrRejected}
		}
		return newAuthError(op, status, nil, fallback)
	}

	if resp.IsSuccess() {
		return nil
	}

	c.log.Info(ctx, "request rejected", "op", op, "status", status)
	return newAuthError(op, status, failure, fallback)
}

// Package client is a Go client for the dcode API.
package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dcode-ide/apiserver/internal/urlx"
	"github.com/dcode-ide/apiserver/types"
	"github.com/go-resty/resty/v2"
)

const defaultTimeout = 30 * time.Second

// APIError is a non-success answer from the server.
type APIError struct {
	Status int
	Msg    string
}

func (e *APIError) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("dcode api: %d %s", e.Status, msg)
}

// Client calls a dcode server. Methods that act on projects take the token
// returned by Login.
type Client struct {
	http    *resty.Client
	baseURL string
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.SetTimeout(d) }
}

// WithHTTPClient routes requests through hc.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		timeout := c.http.GetClient().Timeout
		c.http = resty.NewWithClient(hc).
			SetTimeout(timeout).
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "application/json")
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		http: resty.New().
			SetTimeout(defaultTimeout).
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "application/json"),
		baseURL: strings.TrimSpace(baseURL),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the server address the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type envelope struct {
	Success bool   `json:"success"`
	Msg     string `json:"msg"`
}

func (c *Client) do(ctx context.Context, method, endpoint string, body, result any) error {
	var failure envelope
	req := c.http.R().
		SetContext(ctx).
		SetError(&failure)
	if body != nil {
		req.SetBody(body)
	}
	if result != nil {
		req.SetResult(result)
	}

	resp, err := req.Execute(method, urlx.Join(c.baseURL, endpoint))
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	if resp.IsError() {
		return &APIError{Status: resp.StatusCode(), Msg: failure.Msg}
	}
	return nil
}

func (c *Client) post(ctx context.Context, endpoint string, body, result any) error {
	return c.do(ctx, http.MethodPost, endpoint, body, result)
}

// SignUp creates an account.
func (c *Client) SignUp(ctx context.Context, email, password, fullName string) error {
	return c.post(ctx, "/signUp", map[string]string{
		"email":    email,
		"pwd":      password,
		"fullName": fullName,
	}, nil)
}

// Login returns a token for the account.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	err := c.post(ctx, "/login", map[string]string{"email": email, "pwd": password}, &out)
	return out.Token, err
}

// CreateProject creates a project and returns its id.
func (c *Client) CreateProject(ctx context.Context, token, name, language, version string) (string, error) {
	var out struct {
		ProjectID string `json:"projectId"`
	}
	err := c.post(ctx, "/createProj", map[string]string{
		"token":        token,
		"name":         name,
		"projLanguage": language,
		"version":      version,
	}, &out)
	return out.ProjectID, err
}

// SaveProject overwrites a project's code.
func (c *Client) SaveProject(ctx context.Context, token, projectID, code string) error {
	return c.post(ctx, "/saveProject", map[string]string{
		"token":     token,
		"projectId": projectID,
		"code":      code,
	}, nil)
}

// GetProjects lists the caller's projects, newest first.
func (c *Client) GetProjects(ctx context.Context, token string) ([]types.Project, error) {
	var out struct {
		Projects []types.Project `json:"projects"`
	}
	err := c.post(ctx, "/getProjects", map[string]string{"token": token}, &out)
	return out.Projects, err
}

// GetProject fetches one of the caller's projects.
func (c *Client) GetProject(ctx context.Context, token, projectID string) (types.Project, error) {
	var out struct {
		Project types.Project `json:"project"`
	}
	err := c.post(ctx, "/getProject", map[string]string{"token": token, "projectId": projectID}, &out)
	return out.Project, err
}

// DeleteProject removes one of the caller's projects.
func (c *Client) DeleteProject(ctx context.Context, token, projectID string) error {
	return c.post(ctx, "/deleteProject", map[string]string{"token": token, "projectId": projectID}, nil)
}

// EditProject renames one of the caller's projects.
func (c *Client) EditProject(ctx context.Context, token, projectID, name string) error {
	return c.post(ctx, "/editProject", map[string]string{
		"token":     token,
		"projectId": projectID,
		"name":      name,
	}, nil)
}

// RunProject executes a project. A nil code runs the stored code.
func (c *Client) RunProject(ctx context.Context, token, projectID string, code *string, stdin string) (types.RunResult, error) {
	body := map[string]any{
		"token":     token,
		"projectId": projectID,
		"stdin":     stdin,
	}
	if code != nil {
		body["code"] = *code
	}
	var out types.RunResult
	err := c.post(ctx, "/runProject", body, &out)
	return out, err
}

// AskAIRequest is a question for the AI assistant.
type AskAIRequest struct {
	Code      string `json:"code,omitempty"`
	Question  string `json:"question,omitempty"`
	Language  string `json:"language,omitempty"`
	ProjectID string `json:"projectId,omitempty"`
}

// AskAI returns the assistant's answer.
func (c *Client) AskAI(ctx context.Context, req AskAIRequest) (string, error) {
	var out struct {
		Response string `json:"response"`
	}
	err := c.post(ctx, "/askAI", req, &out)
	return out.Response, err
}

// Languages lists the languages the server supports.
func (c *Client) Languages(ctx context.Context) ([]types.Language, error) {
	var out struct {
		Languages []types.Language `json:"languages"`
	}
	err := c.do(ctx, http.MethodGet, "/languages", nil, &out)
	return out.Languages, err
}

// Banner is the server's root liveness answer.
type Banner struct {
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

// Health is the server's health report. Uptime is in seconds.
type Health struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Uptime    float64   `json:"uptime"`
}

// Banner fetches the root liveness banner.
func (c *Client) Banner(ctx context.Context) (Banner, error) {
	var out Banner
	err := c.do(ctx, http.MethodGet, "/", nil, &out)
	return out, err
}

// Health fetches the health report.
func (c *Client) Health(ctx context.Context) (Health, error) {
	var out Health
	err := c.do(ctx, http.MethodGet, "/health", nil, &out)
	return out, err
}

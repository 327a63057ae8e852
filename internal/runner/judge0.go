// Package runner executes source code through a Judge0 CE compatible API.
package runner

import (
	"context"
	"strings"
	"time"

	"github.com/dcode-ide/apiserver/config"
	"github.com/dcode-ide/apiserver/internal/upstream"
	"github.com/dcode-ide/apiserver/internal/urlx"
	"github.com/dcode-ide/apiserver/types"
	"github.com/go-resty/resty/v2"
)

const (
	serviceName         = "judge0"
	submissionsEndpoint = "/submissions"
	noOutput            = "No output"
)

// Submission is a single synchronous execution request.
type Submission struct {
	LanguageID int    `json:"language_id"`
	SourceCode string `json:"source_code"`
	Stdin      string `json:"stdin"`
}

// Client submits code to Judge0 and waits for the verdict.
type Client struct {
	http   *resty.Client
	url    string
	apiKey string
}

func NewClient(cfg config.RunnerConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		http: resty.New().
			SetTimeout(timeout).
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "application/json"),
		url:    urlx.Join(cfg.BaseURL, submissionsEndpoint),
		apiKey: strings.TrimSpace(cfg.APIKey),
	}
}

// Run executes sub and reduces the Judge0 reply to what the editor shows.
func (c *Client) Run(ctx context.Context, sub Submission) (types.RunResult, error) {
	req := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"base64_encoded": "false",
			"wait":           "true",
		}).
		SetBody(sub)
	if c.apiKey != "" {
		req.SetHeader("X-Auth-Token", c.apiKey)
	}

	var result submissionResponse
	var apiErr errorResponse
	resp, err := req.SetResult(&result).SetError(&apiErr).Post(c.url)
	if err := upstream.Check(serviceName, resp, err, apiErr.message()); err != nil {
		return types.RunResult{}, err
	}

	return result.toRunResult(), nil
}

type submissionResponse struct {
	Stdout        *string `json:"stdout"`
	Stderr        *string `json:"stderr"`
	CompileOutput *string `json:"compile_output"`
	Message       *string `json:"message"`
	Time          *string `json:"time"`
	Memory        *int64  `json:"memory"`
	Status        struct {
		ID          int    `json:"id"`
		Description string `json:"description"`
	} `json:"status"`
}

func (r submissionResponse) toRunResult() types.RunResult {
	out := types.RunResult{Status: r.Status.Description}
	if r.Time != nil {
		out.Time = *r.Time
	}
	if r.Memory != nil {
		out.Memory = *r.Memory
	}

	switch {
	case nonEmpty(r.Stdout):
		out.Output = *r.Stdout
	case nonEmpty(r.Stderr):
		out.Output, out.IsError = *r.Stderr, true
	case nonEmpty(r.CompileOutput):
		out.Output, out.IsError = *r.CompileOutput, true
	case nonEmpty(r.Message):
		out.Output, out.IsError = *r.Message, true
	default:
		out.Output = noOutput
	}
	return out
}

func nonEmpty(s *string) bool {
	return s != nil && *s != ""
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (e errorResponse) message() string {
	if e.Error != "" {
		return e.Error
	}
	return e.Message
}

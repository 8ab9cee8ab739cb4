// Package api is the HTTP client of the workbench server.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/cristianoliveira/workbench/internal/config"
	"github.com/cristianoliveira/workbench/internal/logging"
	"github.com/google/uuid"
	"resty.dev/v3"
)

// Options configures a Client.
type Options struct {
	BaseURL       string
	CSRFToken     string
	SessionCookie string
	Timeout       time.Duration
	Logger        logging.Logger
}

// OptionsFromConfig reads Options from the global configuration.
func OptionsFromConfig() Options {
	return Options{
		BaseURL:       config.Get("server_url", "http://localhost:8000"),
		CSRFToken:     config.Get("csrf_token", ""),
		SessionCookie: config.Get("session_cookie", ""),
		Timeout:       config.GetDuration("fetch_timeout", 30*time.Second),
	}
}

// Client talks to the workbench JSON API.
type Client struct {
	http    *resty.Client
	baseURL string
	cookie  string
	log     logging.Logger
}

// New returns a Client for opts.BaseURL.
func New(opts Options) *Client {
	log := opts.Logger
	if log == nil {
		log = logging.With("component", "api")
	}
	hc := resty.New().
		SetBaseURL(opts.BaseURL).
		SetHeader("Accept", "application/json")
	if opts.Timeout > 0 {
		hc.SetTimeout(opts.Timeout)
	}
	if opts.CSRFToken != "" {
		hc.SetHeader("X-CSRFToken", opts.CSRFToken)
	}
	if opts.SessionCookie != "" {
		hc.SetHeader("Cookie", opts.SessionCookie)
	}
	return &Client{http: hc, baseURL: opts.BaseURL, cookie: opts.SessionCookie, log: log}
}

// NewFromConfig returns a Client configured from the global configuration.
func NewFromConfig() *Client {
	return New(OptionsFromConfig())
}

// BaseURL is the server root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// SessionCookie is the Cookie header sent with every request.
func (c *Client) SessionCookie() string { return c.cookie }

// Close releases idle connections.
func (c *Client) Close() error {
	return c.http.Close()
}

type request struct {
	method string
	path   string
	query  map[string]string
	body   any
	out    any
}

func (c *Client) do(ctx context.Context, r request) error {
	reqID := uuid.NewString()
	req := c.http.R().
		SetContext(ctx).
		SetHeader("X-Request-ID", reqID)
	if r.body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(r.body)
	}
	if len(r.query) > 0 {
		req.SetQueryParams(r.query)
	}

	started := time.Now()
	res, err := req.Execute(r.method, r.path)
	if err != nil {
		c.log.Warn("api request failed", "request_id", reqID, "method", r.method, "path", r.path, "error", err)
		return fmt.Errorf("%s %s: %w", r.method, r.path, err)
	}
	c.log.Debug("api request", "request_id", reqID, "method", r.method, "path", r.path,
		"status", res.StatusCode(), "duration", time.Since(started).String())

	if !res.IsSuccess() {
		return newStatusError(r.method, r.path, res.StatusCode(), res.String())
	}
	if r.out == nil {
		return nil
	}
	if err := json.Unmarshal([]byte(res.String()), r.out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", r.method, r.path, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, request{method: http.MethodGet, path: path, out: out})
}

func workflowPath(id int) string {
	return "/api/workflows/" + strconv.Itoa(id)
}

func wfModulePath(id int) string {
	return "/api/wfmodules/" + strconv.Itoa(id)
}

// rowRange builds the startrow/endrow query, leaving out zero bounds.
func rowRange(startRow, endRow int) map[string]string {
	q := map[string]string{}
	if startRow > 0 {
		q["startrow"] = strconv.Itoa(startRow)
	}
	if endRow > 0 {
		q["endrow"] = strconv.Itoa(endRow)
	}
	return q
}

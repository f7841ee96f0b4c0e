// Package client is a typed HTTP client for the oracle REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/paw-chain/tee-oracle/x/oracle/types"
)

// DefaultTimeout bounds every request unless overridden
const DefaultTimeout = 30 * time.Second

// Client talks to one oracle API server
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
	userAgent  string
}

// Option configures a Client
type Option func(*Client)

// WithToken authenticates state-changing calls with a bearer token
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithTimeout sets the per-request timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = timeout }
}

// WithUserAgent sets the User-Agent header
func WithUserAgent(userAgent string) Option {
	return func(c *Client) { c.userAgent = userAgent }
}

// New creates a client for the server at baseURL
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid api url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid api url %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		userAgent:  "oracled-client/1.0",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// APIError is a rejection returned by the server
type APIError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"error"`
	Code       string `json:"code,omitempty"`
	Details    string `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// IsClass reports whether err is an API rejection of the given class
func IsClass(err error, class types.ErrorClass) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == string(class)
}

// IsNotFound reports whether err is a not-found rejection
func IsNotFound(err error) bool {
	return IsClass(err, types.ClassNotFound)
}

// Event is a committed event as returned by the server
type Event struct {
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
}

// TxResponse is the outcome of a state-changing call
type TxResponse struct {
	Version int64           `json:"version"`
	Data    json.RawMessage `json:"data"`
	Events  []Event         `json:"events"`
}

// Event returns the first event of the given type
func (r *TxResponse) Event(eventType string) (Event, bool) {
	for _, event := range r.Events {
		if event.Type == eventType {
			return event, true
		}
	}
	return Event{}, false
}

// do performs a request and decodes a successful response into out
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		bz, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		if err := json.Unmarshal(bz, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(bz))
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Broadcast submits msg under the identity of the client's token. The caller
// field of msg is ignored by the server.
func (c *Client) Broadcast(ctx context.Context, msg types.Msg) (*TxResponse, error) {
	msgType := types.MsgType(msg)
	if msgType == "" {
		return nil, fmt.Errorf("unknown message type %T", msg)
	}

	var res TxResponse
	if err := c.do(ctx, http.MethodPost, "/v1/tx/"+msgType, msg, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// BroadcastInto submits msg and decodes the response data into out
func (c *Client) BroadcastInto(ctx context.Context, msg types.Msg, out interface{}) (*TxResponse, error) {
	res, err := c.Broadcast(ctx, msg)
	if err != nil {
		return nil, err
	}
	if out != nil && len(res.Data) > 0 {
		if err := json.Unmarshal(res.Data, out); err != nil {
			return nil, fmt.Errorf("failed to decode %s response: %w", types.MsgType(msg), err)
		}
	}
	return res, nil
}

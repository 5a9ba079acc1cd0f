package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/kursadbilgin/tcxc-automation/internal/domain"
	"github.com/kursadbilgin/tcxc-automation/internal/ratelimit"
	"github.com/spf13/cast"
)

const (
	DefaultBaseURL = "https://apiv2.telecomsxchange.com"
	statusSuccess  = "success"
)

// Payload is an endpoint-specific request body. Values are sent as strings.
type Payload map[string]any

// Request is a single marketplace call.
type Request struct {
	Endpoint string
	// Method defaults to POST.
	Method  string
	Payload Payload
}

// Response is a successful call: HTTP 200 and a body whose status is "success".
type Response struct {
	Endpoint   string
	StatusCode int
	Body       map[string]any
	Raw        []byte
}

// Decode unmarshals the raw response body into v.
func (r *Response) Decode(v any) error {
	if r == nil {
		return fmt.Errorf("response is nil")
	}
	return json.Unmarshal(r.Raw, v)
}

// String returns the value of a top-level body field as a string.
func (r *Response) String(field string) string {
	if r == nil || r.Body == nil {
		return ""
	}
	value, ok := r.Body[field]
	if !ok || value == nil {
		return ""
	}
	return cast.ToString(value)
}

// CallObserver receives one observation per marketplace call.
type CallObserver interface {
	ObserveCall(endpoint string, outcome string, duration time.Duration)
}

// Client issues Digest-authenticated form requests to the marketplace API.
type Client struct {
	http     *resty.Client
	baseURL  string
	observer CallObserver
	pacer    ratelimit.Pacer
	now      func() time.Time
}

// NewClient builds a client with resty's transport defaults. A zero timeout
// leaves the transport default in place.
func NewClient(baseURL string, credentials domain.Credentials, timeout time.Duration) (*Client, error) {
	client := resty.New()
	if timeout > 0 {
		client.SetTimeout(timeout)
	}

	return NewClientWithResty(baseURL, credentials, client)
}

func NewClientWithResty(baseURL string, credentials domain.Credentials, client *resty.Client) (*Client, error) {
	if err := credentials.Validate(); err != nil {
		return nil, err
	}

	trimmedBaseURL := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmedBaseURL == "" {
		trimmedBaseURL = DefaultBaseURL
	}
	if _, err := url.ParseRequestURI(trimmedBaseURL); err != nil {
		return nil, fmt.Errorf("invalid marketplace base url: %w", err)
	}
	if client == nil {
		return nil, fmt.Errorf("resty client is required")
	}

	client.SetRetryCount(0)
	client.SetDigestAuth(credentials.Username, credentials.Password)

	return &Client{
		http:    client,
		baseURL: trimmedBaseURL,
		now:     time.Now,
	}, nil
}

func (c *Client) SetObserver(observer CallObserver) {
	if c == nil {
		return
	}
	c.observer = observer
}

// SetPacer makes every call wait for a free slot on its endpoint first.
func (c *Client) SetPacer(pacer ratelimit.Pacer) {
	if c == nil {
		return
	}
	c.pacer = pacer
}

// Call sends one request and normalizes the response. It never retries.
func (c *Client) Call(ctx context.Context, req Request) (*Response, error) {
	if c == nil || c.http == nil {
		return nil, fmt.Errorf("marketplace client is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	endpoint := strings.TrimSpace(req.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}

	values, err := encodePayload(req.Payload)
	if err != nil {
		return nil, fmt.Errorf("invalid payload for %s: %w", endpoint, err)
	}

	if c.pacer != nil {
		if err := c.pacer.Wait(ctx, endpoint); err != nil {
			return nil, &Error{
				Kind:     KindTransport,
				Endpoint: endpoint,
				Reason:   "call pacing interrupted",
				Cause:    err,
			}
		}
	}

	start := c.now()
	resp, err := c.send(ctx, strings.ToUpper(strings.TrimSpace(req.Method)), c.url(endpoint), values)
	if err != nil {
		callErr := &Error{
			Kind:     KindTransport,
			Endpoint: endpoint,
			Reason:   "transport error",
			Cause:    err,
		}
		c.observe(endpoint, callErr, start)
		return nil, callErr
	}

	result, callErr := classify(endpoint, resp.StatusCode(), resp.Body())
	c.observe(endpoint, callErr, start)
	if callErr != nil {
		return nil, callErr
	}
	return result, nil
}

func (c *Client) send(ctx context.Context, method string, target string, values url.Values) (*resty.Response, error) {
	r := c.http.R().SetContext(ctx)

	switch method {
	case http.MethodGet:
		return r.SetQueryParamsFromValues(values).Get(target)
	case "", http.MethodPost:
		return r.SetFormDataFromValues(values).Post(target)
	default:
		return nil, fmt.Errorf("unsupported method %q", method)
	}
}

func (c *Client) url(endpoint string) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	return c.baseURL + endpoint
}

func (c *Client) observe(endpoint string, err error, start time.Time) {
	if c.observer == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = string(KindOf(err))
	}
	c.observer.ObserveCall(endpoint, outcome, c.now().Sub(start))
}

// classify turns an HTTP status and body into a Response or an *Error.
// Non-200 bodies are never parsed.
func classify(endpoint string, statusCode int, body []byte) (*Response, error) {
	if statusCode != http.StatusOK {
		return nil, &Error{
			Kind:       KindTransport,
			Endpoint:   endpoint,
			StatusCode: statusCode,
			Reason:     "transport error",
		}
	}

	var parsed map[string]any
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &Error{
			Kind:       KindMalformed,
			Endpoint:   endpoint,
			StatusCode: statusCode,
			Reason:     "invalid json",
			Cause:      err,
		}
	}

	if status, _ := parsed["status"].(string); status == statusSuccess {
		return &Response{
			Endpoint:   endpoint,
			StatusCode: statusCode,
			Body:       parsed,
			Raw:        body,
		}, nil
	}

	return nil, &Error{
		Kind:       KindApplication,
		Endpoint:   endpoint,
		StatusCode: statusCode,
		Reason:     applicationReason(parsed, body),
		Body:       parsed,
	}
}

func applicationReason(parsed map[string]any, body []byte) string {
	if message, ok := parsed["message"]; ok && message != nil {
		if text := strings.TrimSpace(cast.ToString(message)); text != "" {
			return text
		}
	}
	return string(bytes.TrimSpace(body))
}

func encodePayload(payload Payload) (url.Values, error) {
	values := make(url.Values, len(payload))
	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value, err := cast.ToStringE(payload[key])
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", key, err)
		}
		values.Set(key, value)
	}
	return values, nil
}

// asMalformed wraps a decode failure of an otherwise successful response.
func asMalformed(endpoint string, err error) error {
	var mErr *Error
	if errors.As(err, &mErr) {
		return err
	}
	return &Error{
		Kind:       KindMalformed,
		Endpoint:   endpoint,
		StatusCode: http.StatusOK,
		Reason:     "unexpected response shape",
		Cause:      err,
	}
}

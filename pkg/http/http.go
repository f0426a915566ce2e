// Package http is the fluent outbound HTTP client the dashboard uses to talk
// to the shop API.
//
//	var p models.ServicePricing
//	resp, err := http.Get(base + "/service/wash").
//	    Bearer(token).
//	    Timeout(5 * time.Second).
//	    WithContext(ctx).
//	    Send()
//	if err == nil {
//	    err = resp.Throw()
//	}
//	if err == nil {
//	    err = resp.JSON(&p)
//	}
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	gohttp "net/http"
	"time"

	"github.com/shashiranjanraj/laundry/pkg/logger"
	"github.com/shashiranjanraj/laundry/pkg/reqid"
)

var defaultTransport = &gohttp.Transport{
	Proxy:               gohttp.ProxyFromEnvironment,
	MaxIdleConns:        100,
	MaxIdleConnsPerHost: 20,
	IdleConnTimeout:     90 * time.Second,
}

// DefaultClient is shared by every outbound request. Tests swap its
// Transport and restore it with ResetTransport.
var DefaultClient = &gohttp.Client{
	Transport: defaultTransport,
}

func ResetTransport() {
	DefaultClient.Transport = defaultTransport
}

// RequestError is returned by Throw for a non-2xx response.
type RequestError struct {
	Method     string
	URL        string
	StatusCode int
	Body       []byte
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("http: %s %s failed with status %d: %s", e.Method, e.URL, e.StatusCode, bytes.TrimSpace(e.Body))
}

// Message extracts the "message" field of a JSON error envelope, if any.
func (e *RequestError) Message() string {
	var env struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(e.Body, &env) == nil {
		return env.Message
	}
	return ""
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var re *RequestError
	if errors.As(err, &re) {
		return re.StatusCode
	}
	return 0
}

// ------------------- Request -------------------

type Request struct {
	method    string
	url       string
	headers   map[string]string
	body      interface{}
	upload    *filePart
	timeout   time.Duration
	retries   int
	retryWait time.Duration
	ctx       context.Context
}

type filePart struct {
	field, filename string
	r               io.Reader
}

func Get(url string) *Request    { return newRequest(gohttp.MethodGet, url) }
func Post(url string) *Request   { return newRequest(gohttp.MethodPost, url) }
func Put(url string) *Request    { return newRequest(gohttp.MethodPut, url) }
func Delete(url string) *Request { return newRequest(gohttp.MethodDelete, url) }

func newRequest(method, url string) *Request {
	return &Request{
		method:    method,
		url:       url,
		headers:   map[string]string{"Accept": "application/json"},
		timeout:   10 * time.Second,
		retries:   1,
		retryWait: 500 * time.Millisecond,
		ctx:       context.Background(),
	}
}

func (r *Request) Header(key, value string) *Request {
	r.headers[key] = value
	return r
}

// Bearer sets Authorization unless token is empty.
func (r *Request) Bearer(token string) *Request {
	if token == "" {
		return r
	}
	return r.Header("Authorization", "Bearer "+token)
}

// Body sets the request body; anything but string/[]byte is sent as JSON.
func (r *Request) Body(v interface{}) *Request {
	r.body = v
	return r
}

// File sends a multipart/form-data body with a single file part.
func (r *Request) File(field, filename string, content io.Reader) *Request {
	r.upload = &filePart{field: field, filename: filename, r: content}
	return r
}

// Timeout sets the per-attempt timeout.
func (r *Request) Timeout(d time.Duration) *Request {
	r.timeout = d
	return r
}

// Retry sets total attempts (1 = no retry) and the first backoff, which
// doubles after every failed attempt. Only transport failures are retried.
func (r *Request) Retry(n int, wait time.Duration) *Request {
	if n < 1 {
		n = 1
	}
	r.retries = n
	r.retryWait = wait
	return r
}

func (r *Request) WithContext(ctx context.Context) *Request {
	r.ctx = ctx
	return r
}

// ------------------- Send -------------------

func (r *Request) Send() (*Response, error) {
	var lastErr error
	wait := r.retryWait

	for attempt := 1; attempt <= r.retries; attempt++ {
		resp, err := r.do()
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if attempt == r.retries || r.ctx.Err() != nil {
			break
		}

		logger.WithCtx(r.ctx).Warn("http: request failed, retrying",
			"url", r.url, "attempt", attempt, "backoff", wait, "error", err)
		select {
		case <-time.After(wait):
		case <-r.ctx.Done():
			return nil, r.ctx.Err()
		}
		wait *= 2
	}

	return nil, fmt.Errorf("http: %s %s: %w", r.method, r.url, lastErr)
}

func (r *Request) do() (*Response, error) {
	body, ct, err := r.buildBody()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(r.ctx, r.timeout)
	defer cancel()

	req, err := gohttp.NewRequestWithContext(ctx, r.method, r.url, body)
	if err != nil {
		return nil, fmt.Errorf("http: build request: %w", err)
	}

	for k, v := range r.headers {
		req.Header.Set(k, v)
	}
	if ct != "" {
		req.Header.Set("Content-Type", ct)
	}
	if id := reqid.FromCtx(r.ctx); id != "" {
		req.Header.Set(reqid.Header, id)
	}

	resp, err := DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http: send: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("http: read body: %w", err)
	}

	return &Response{
		Method:     r.method,
		URL:        r.url,
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Raw:        raw,
	}, nil
}

func (r *Request) buildBody() (io.Reader, string, error) {
	if r.upload != nil {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		part, err := mw.CreateFormFile(r.upload.field, r.upload.filename)
		if err != nil {
			return nil, "", fmt.Errorf("http: multipart: %w", err)
		}
		if _, err := io.Copy(part, r.upload.r); err != nil {
			return nil, "", fmt.Errorf("http: multipart copy: %w", err)
		}
		if err := mw.Close(); err != nil {
			return nil, "", fmt.Errorf("http: multipart close: %w", err)
		}
		// The reader is consumed, so retries resend the buffered body.
		data := buf.Bytes()
		r.upload = nil
		r.body = data
		r.headers["Content-Type"] = mw.FormDataContentType()
		return bytes.NewReader(data), mw.FormDataContentType(), nil
	}

	if r.body == nil {
		return nil, "", nil
	}
	switch v := r.body.(type) {
	case string:
		return bytes.NewBufferString(v), "text/plain", nil
	case []byte:
		ct := r.headers["Content-Type"]
		if ct == "" {
			ct = "application/octet-stream"
		}
		return bytes.NewReader(v), ct, nil
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, "", fmt.Errorf("http: marshal body: %w", err)
		}
		return bytes.NewReader(b), "application/json", nil
	}
}

// ------------------- Response -------------------

type Response struct {
	Method     string
	URL        string
	StatusCode int
	Headers    gohttp.Header
	Raw        []byte
}

// OK reports whether the status code is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func (r *Response) JSON(dest interface{}) error {
	if err := json.Unmarshal(r.Raw, dest); err != nil {
		return fmt.Errorf("http: decode JSON: %w", err)
	}
	return nil
}

func (r *Response) Text() string { return string(r.Raw) }

// Throw returns a *RequestError if the status is not 2xx.
func (r *Response) Throw() error {
	if !r.OK() {
		return &RequestError{Method: r.Method, URL: r.URL, StatusCode: r.StatusCode, Body: r.Raw}
	}
	return nil
}

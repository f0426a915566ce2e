// Package testkit holds shared test helpers: a route-table fake for the
// outbound HTTP client and JSON assertions for handler tests.
package testkit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	apihttp "github.com/shashiranjanraj/laundry/pkg/http"
)

// Responder builds the reply for one matched request.
type Responder func(req *http.Request, body []byte) (int, interface{})

// Call is one recorded outbound request.
type Call struct {
	Method string
	Path   string
	Body   []byte
	Header http.Header
}

// MockTransport is an http.RoundTripper that answers from a route table
// keyed by "METHOD /path" and records every request.
//
//	mt := testkit.NewMockTransport().
//	    JSON("GET", "/api/service/wash", 200, map[string]any{"defaultCost": 150})
//	mt.Install(t)
type MockTransport struct {
	mu     sync.Mutex
	routes map[string]Responder
	hits   map[string]int
	calls  []Call
}

func NewMockTransport() *MockTransport {
	return &MockTransport{routes: map[string]Responder{}, hits: map[string]int{}}
}

// On registers a responder for method and path.
func (mt *MockTransport) On(method, path string, fn Responder) *MockTransport {
	mt.mu.Lock()
	mt.routes[method+" "+path] = fn
	mt.mu.Unlock()
	return mt
}

// JSON registers a fixed JSON reply.
func (mt *MockTransport) JSON(method, path string, status int, body interface{}) *MockTransport {
	return mt.On(method, path, func(*http.Request, []byte) (int, interface{}) { return status, body })
}

// Fail makes method+path return a transport error.
func (mt *MockTransport) Fail(method, path string) *MockTransport {
	return mt.On(method, path, nil)
}

// Install swaps the shared client's transport for the duration of the test.
func (mt *MockTransport) Install(t interface{ Cleanup(func()) }) {
	apihttp.DefaultClient.Transport = mt
	t.Cleanup(apihttp.ResetTransport)
}

func (mt *MockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
		req.Body.Close()
	}
	key := req.Method + " " + req.URL.Path

	mt.mu.Lock()
	mt.calls = append(mt.calls, Call{Method: req.Method, Path: req.URL.Path, Body: body, Header: req.Header.Clone()})
	fn, ok := mt.routes[key]
	if ok {
		mt.hits[key]++
	}
	mt.mu.Unlock()

	if !ok {
		return reply(req, http.StatusNotFound, map[string]string{"message": "no mock for " + key})
	}
	if fn == nil {
		return nil, fmt.Errorf("testkit: simulated transport failure for %s", key)
	}
	status, v := fn(req, body)
	return reply(req, status, v)
}

// Count is how many times method+path was requested.
func (mt *MockTransport) Count(method, path string) int {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	n := 0
	for _, c := range mt.calls {
		if c.Method == method && c.Path == path {
			n++
		}
	}
	return n
}

// Calls returns a copy of every recorded request.
func (mt *MockTransport) Calls() []Call {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	return append([]Call(nil), mt.calls...)
}

// Unused lists registered routes that were never hit.
func (mt *MockTransport) Unused() []string {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	var out []string
	for k := range mt.routes {
		if mt.hits[k] == 0 {
			out = append(out, k)
		}
	}
	return out
}

func reply(req *http.Request, status int, v interface{}) (*http.Response, error) {
	var raw []byte
	switch b := v.(type) {
	case nil:
	case []byte:
		raw = b
	case string:
		raw = []byte(b)
	default:
		var err error
		if raw, err = json.Marshal(b); err != nil {
			return nil, err
		}
	}

	header := make(http.Header)
	header.Set("Content-Type", "application/json")
	return &http.Response{
		StatusCode: status,
		Status:     fmt.Sprintf("%d %s", status, http.StatusText(status)),
		Header:     header,
		Body:       io.NopCloser(bytes.NewReader(raw)),
		Request:    req,
	}, nil
}

// Lines splits s on newlines, dropping blank lines.
func Lines(s string) []string {
	var out []string
	for _, l := range strings.Split(s, "\n") {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return out
}

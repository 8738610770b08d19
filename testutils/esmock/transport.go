// Package esmock provides an http.RoundTripper for faking Elasticsearch responses.
package esmock

import (
	"bytes"
	"io"
	"net/http"
	"sync"
)

// Transport implements http.RoundTripper for mocking Elasticsearch responses.
// Every request is recorded.
type Transport struct {
	RoundTripFn func(req *http.Request) (*http.Response, error)

	mu       sync.Mutex
	requests []Request
}

// Request is a recorded request with its body read out.
type Request struct {
	Method string
	Path   string
	Query  string
	Body   string
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
		req.Body = io.NopCloser(bytes.NewReader(body))
	}
	t.mu.Lock()
	t.requests = append(t.requests, Request{
		Method: req.Method,
		Path:   req.URL.Path,
		Query:  req.URL.RawQuery,
		Body:   string(body),
	})
	t.mu.Unlock()

	if t.RoundTripFn != nil {
		return t.RoundTripFn(req)
	}
	return Response(http.StatusOK, `{}`), nil
}

// Requests returns the recorded requests.
func (t *Transport) Requests() []Request {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Request, len(t.requests))
	copy(out, t.requests)
	return out
}

// Response builds a response the Elasticsearch client accepts as genuine.
func Response(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header: http.Header{
			"X-Elastic-Product": []string{"Elasticsearch"},
			"Content-Type":      []string{"application/json"},
		},
	}
}

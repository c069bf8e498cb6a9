// Package httputil provides http client transport with request and response interceptors
package httputil

import (
	"net/http"
	"net/textproto"
)

// Interceptor is applied to every outgoing request and its response
type Interceptor interface {
	Request(req *http.Request) (*http.Request, error)
	Response(resp *http.Response) (*http.Response, error)
}

// RequestFunc intercepts http request
type RequestFunc func(req *http.Request) (*http.Request, error)

// ResponseFunc intercepts http response
type ResponseFunc func(resp *http.Response) (*http.Response, error)

type funcs struct {
	req  RequestFunc
	resp ResponseFunc
}

func (f *funcs) Request(req *http.Request) (*http.Request, error) {
	if f.req == nil {
		return req, nil
	}

	return f.req(req)
}

func (f *funcs) Response(resp *http.Response) (*http.Response, error) {
	if f.resp == nil {
		return resp, nil
	}

	return f.resp(resp)
}

// Funcs returns interceptor built from functions, nil function passes value through
func Funcs(req RequestFunc, resp ResponseFunc) Interceptor {
	return &funcs{
		req:  req,
		resp: resp,
	}
}

// Transport runs interceptors around base round tripper
type Transport struct {
	Base         http.RoundTripper
	Interceptors []Interceptor
}

// NewTransport wraps base, nil base means http.DefaultTransport
func NewTransport(base http.RoundTripper, interceptors ...Interceptor) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}

	return &Transport{
		Base:         base,
		Interceptors: interceptors,
	}
}

// RoundTrip implementation
func (t *Transport) RoundTrip(req *http.Request) (resp *http.Response, err error) {
	for _, i := range t.Interceptors {
		req, err = i.Request(req)
		if err != nil {
			return
		}
	}

	resp, err = t.Base.RoundTrip(req)
	if err != nil {
		return
	}

	for _, i := range t.Interceptors {
		resp, err = i.Response(resp)
		if err != nil {
			return
		}
	}

	return
}

// StaticHeaders sets or appends fixed headers on outgoing requests
type StaticHeaders struct {
	Set map[string][]string
	Add map[string][]string
}

// Request clones request and applies headers
func (h *StaticHeaders) Request(req *http.Request) (*http.Request, error) {
	req = req.Clone(req.Context())

	for k, vs := range h.Add {
		key := textproto.CanonicalMIMEHeaderKey(k)

		req.Header[key] = append(req.Header[key], vs...)
	}

	for k, vs := range h.Set {
		req.Header[textproto.CanonicalMIMEHeaderKey(k)] = vs
	}

	return req, nil
}

// Response noop
func (h *StaticHeaders) Response(resp *http.Response) (*http.Response, error) {
	return resp, nil
}

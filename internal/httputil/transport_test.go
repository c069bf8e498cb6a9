package httputil

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticHeaders(t *testing.T) {
	var got http.Header

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
	}))
	defer srv.Close()

	client := &http.Client{
		Transport: NewTransport(nil, &StaticHeaders{
			Set: map[string][]string{"accept": {"application/json"}},
			Add: map[string][]string{"X-Trace": {"b"}},
		}),
	}

	req, err := http.NewRequest(http.MethodGet, srv.URL, http.NoBody)
	require.NoError(t, err)

	req.Header.Set("Accept", "text/html")
	req.Header.Set("X-Trace", "a")

	resp, err := client.Do(req)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	assert.Equal(t, "application/json", got.Get("Accept"))
	assert.Equal(t, []string{"a", "b"}, got.Values("X-Trace"))
	assert.Equal(t, "text/html", req.Header.Get("Accept"))
}

func TestInterceptorOrderAndErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer srv.Close()

	var order []string

	record := func(name string) Interceptor {
		return Funcs(func(req *http.Request) (*http.Request, error) {
			order = append(order, name+".req")

			return req, nil
		}, func(resp *http.Response) (*http.Response, error) {
			order = append(order, name+".resp")

			return resp, nil
		})
	}

	failed := errors.New("teapot")
	check := Funcs(nil, func(resp *http.Response) (*http.Response, error) {
		_ = resp.Body.Close()

		return nil, failed
	})

	client := &http.Client{Transport: NewTransport(nil, record("a"), record("b"), check)}

	_, err := client.Get(srv.URL)
	assert.ErrorIs(t, err, failed)
	assert.Equal(t, []string{"a.req", "b.req", "a.resp", "b.resp"}, order)
}

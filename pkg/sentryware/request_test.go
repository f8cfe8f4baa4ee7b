package sentryware

import (
	"crypto/tls"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPRequest_View(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "http://api.example.com/orders/7?expand=items&page=2", nil)
	r.Header.Add("Accept", "application/json")
	r.Header.Add("X-Forwarded-For", "10.0.0.1")
	r.Header.Add("X-Forwarded-For", "10.0.0.2")

	req := NewHTTPRequest(r)

	assert.Equal(t, "http://api.example.com/orders/7", req.URL())
	assert.Equal(t, "/orders/7", req.Path())
	assert.Equal(t, http.MethodGet, req.Method())
	assert.Equal(t, "expand=items&page=2", req.QueryString())
	assert.Equal(t, "application/json", req.Header("accept"))
	assert.Equal(t, "api.example.com", req.Header("Host"))

	headers := req.Headers()
	assert.Equal(t, "api.example.com", headers["Host"])
	assert.Equal(t, "10.0.0.1, 10.0.0.2", headers["X-Forwarded-For"])
	assert.Same(t, r, req.Raw())
}

func TestHTTPRequest_URLSchemeFromTLS(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/secure", nil)
	r.Host = "shop.example.com"
	r.TLS = &tls.ConnectionState{}

	assert.Equal(t, "https://shop.example.com/secure", NewHTTPRequest(r).URL())
}

func TestHTTPRequest_RemoteAddr(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.10:51234"

	addr, ok := NewHTTPRequest(r).RemoteAddr()
	assert.True(t, ok)
	assert.Equal(t, "192.0.2.10", addr)

	r.RemoteAddr = ""
	_, ok = NewHTTPRequest(r).RemoteAddr()
	assert.False(t, ok)
}

func TestRequestData_RemoteAddrOnlyWhenPresent(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.RemoteAddr = "192.0.2.10:51234"

	data := RequestData(NewHTTPRequest(r))
	assert.Equal(t, map[string]string{"REMOTE_ADDR": "192.0.2.10"}, data.Env)

	r.RemoteAddr = ""
	data = RequestData(NewHTTPRequest(r))
	assert.Nil(t, data.Env)
	assert.Equal(t, "http://example.com/ping", data.URL)
	assert.Equal(t, http.MethodGet, data.Method)
}

func TestPlugin_NewRequest_CapturesBody(t *testing.T) {
	p, err := New(DefaultConfig(), WithBody(8))
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{"sku":"A-100","qty":2}`))
	req := p.NewRequest(r)

	assert.Equal(t, `{"sku":"`, string(req.Body()))
	assert.Equal(t, `{"sku":"`, RequestData(req).Data)

	rest, err := io.ReadAll(r.Body)
	require.NoError(t, err)
	assert.Equal(t, `{"sku":"A-100","qty":2}`, string(rest), "handler must still see the full body")
}

func TestPlugin_NewRequest_BodyReadErrorKeepsStream(t *testing.T) {
	p, err := New(DefaultConfig(), WithBody(64))
	require.NoError(t, err)

	readErr := errors.New("connection reset")
	body := io.MultiReader(strings.NewReader("hello"), iotest.ErrReader(readErr))
	r := httptest.NewRequest(http.MethodPost, "/upload", body)
	req := p.NewRequest(r)

	assert.Empty(t, req.Body(), "a failed read is not captured")

	got, err := io.ReadAll(r.Body)
	assert.ErrorIs(t, err, readErr)
	assert.Equal(t, "hello", string(got), "handler must still see the bytes read before the error")
}

func TestPlugin_NewRequest_SkipsBodyForGetAndWhenDisabled(t *testing.T) {
	withBody, err := New(DefaultConfig(), WithBody(1024))
	require.NoError(t, err)
	r := httptest.NewRequest(http.MethodGet, "/orders", strings.NewReader("ignored"))
	assert.Empty(t, withBody.NewRequest(r).Body())

	withoutBody, err := New(DefaultConfig())
	require.NoError(t, err)
	r = httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader("payload"))
	assert.Empty(t, withoutBody.NewRequest(r).Body())
	assert.Empty(t, RequestData(withoutBody.NewRequest(r)).Data)
}

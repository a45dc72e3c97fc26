package client

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/d0ngw/viewcount/counter"
	vhttp "github.com/d0ngw/viewcount/http"
	"github.com/d0ngw/viewcount/views"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	validator, err := views.NewValidateService(nil)
	require.NoError(t, err)
	svc, err := views.NewService(counter.NewMemoryStore(), validator)
	require.NoError(t, err)
	conf := vhttp.NewConfig("127.0.0.1:0")
	require.NoError(t, conf.RegController(vhttp.NewViewController(svc)))
	httpSvc := vhttp.NewService("http", conf)
	require.NoError(t, httpSvc.Init())
	server := httptest.NewServer(httpSvc.Handler())
	t.Cleanup(server.Close)
	return server
}

func TestClient(t *testing.T) {
	ctx := context.Background()
	server := newTestServer(t)
	client, err := NewClient(server.URL+"/", nil)
	require.NoError(t, err)

	total, err := client.Read(ctx, "hello world/1")
	require.NoError(t, err)
	assert.False(t, total.Valid)

	n, err := client.Increment(ctx, "hello world/1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	n, err = client.Increment(ctx, "hello world/1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	total, err = client.Read(ctx, "hello world/1")
	require.NoError(t, err)
	assert.Equal(t, views.NewTotal(2), total)

	_, err = client.Increment(ctx, " ")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.StatusCode)
	assert.Contains(t, apiErr.Msg, "invalid post id")
}

func TestNewClient(t *testing.T) {
	_, err := NewClient("ftp://example.com", nil)
	assert.Error(t, err)

	conf := &Config{}
	require.NoError(t, conf.Parse())
	assert.Equal(t, "http://127.0.0.1:8080", conf.BaseURL)
	assert.Equal(t, "en", conf.Locale)
	client, err := NewClientWithConfig(conf)
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8080/views/a%2Fb", client.viewURL("a/b"))
}

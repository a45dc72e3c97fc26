package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	c "github.com/d0ngw/viewcount/common"
	"github.com/d0ngw/viewcount/counter"
	"github.com/d0ngw/viewcount/views"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenStore struct {
	panics bool
}

func (p *brokenStore) Incr(ctx context.Context, id string) (int64, error) {
	if p.panics {
		panic("boom")
	}
	return 0, errors.New("connection refused")
}

func (p *brokenStore) Get(ctx context.Context, id string) (int64, bool, error) {
	return 0, false, errors.New("connection refused")
}

func newViewServer(t *testing.T, store counter.Store) *httptest.Server {
	validator, err := views.NewValidateService(nil)
	require.NoError(t, err)
	svc, err := views.NewService(store, validator)
	require.NoError(t, err)

	conf := NewConfig("127.0.0.1:0")
	require.NoError(t, conf.RegMiddleware(&RecoverMiddleware{}))
	require.NoError(t, conf.RegMiddleware(&AccessLogMiddleware{}))
	require.NoError(t, conf.RegController(NewViewController(svc)))
	httpSvc := NewService("http", conf)
	require.NoError(t, httpSvc.Init())

	server := httptest.NewServer(httpSvc.Handler())
	t.Cleanup(server.Close)
	return server
}

func doView(t *testing.T, method, url string) (int, string) {
	req, err := http.NewRequest(method, url, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, strings.TrimSpace(string(body))
}

func TestViewController(t *testing.T) {
	server := newViewServer(t, counter.NewMemoryStore())

	status, body := doView(t, http.MethodPost, server.URL+"/views/hello-world")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, `{"total":1}`, body)
	_, body = doView(t, http.MethodPost, server.URL+"/views/hello-world")
	assert.Equal(t, `{"total":2}`, body)
	status, body = doView(t, http.MethodGet, server.URL+"/views/hello-world")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, `{"total":2}`, body)

	for i := 0; i < 2; i++ {
		status, body = doView(t, http.MethodGet, server.URL+"/views/never-viewed")
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, `{"total":null}`, body)
	}

	//路径编码的标识
	_, body = doView(t, http.MethodPost, server.URL+"/views/2024%2Fhello%20world")
	assert.Equal(t, `{"total":1}`, body)
	_, body = doView(t, http.MethodGet, server.URL+"/views/2024%2Fhello%20world")
	assert.Equal(t, `{"total":1}`, body)

	status, body = doView(t, http.MethodGet, server.URL+"/healthz")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body)
}

func TestViewControllerConcurrent(t *testing.T) {
	server := newViewServer(t, counter.NewMemoryStore())
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			status, _ := doView(t, http.MethodPost, server.URL+"/views/race")
			assert.Equal(t, http.StatusOK, status)
		}()
	}
	wg.Wait()
	_, body := doView(t, http.MethodGet, server.URL+"/views/race")
	assert.Equal(t, `{"total":50}`, body)
}

func TestViewControllerErrors(t *testing.T) {
	server := newViewServer(t, counter.NewMemoryStore())

	status, body := doView(t, http.MethodPost, server.URL+"/views/")
	assert.Equal(t, http.StatusBadRequest, status)
	var resp views.ErrorResp
	require.NoError(t, c.JSON.Unmarshal([]byte(body), &resp))
	assert.Contains(t, resp.Error, "invalid post id")

	status, _ = doView(t, http.MethodGet, server.URL+"/views/%20")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = doView(t, http.MethodDelete, server.URL+"/views/x")
	assert.Equal(t, http.StatusMethodNotAllowed, status)

	server = newViewServer(t, &brokenStore{})
	status, body = doView(t, http.MethodPost, server.URL+"/views/x")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, `{"error":"store unavailable"}`, body)
	status, _ = doView(t, http.MethodGet, server.URL+"/views/x")
	assert.Equal(t, http.StatusServiceUnavailable, status)

	server = newViewServer(t, &brokenStore{panics: true})
	status, body = doView(t, http.MethodPost, server.URL+"/views/x")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, `{"error":"internal error"}`, body)
}

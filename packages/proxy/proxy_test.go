package proxy

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/abdul-hamid-achik/apidoc/packages/body"
	"github.com/abdul-hamid-achik/apidoc/packages/recorder"
)

func newUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Upstream-Host", r.Host)
		w.Header().Add("Vary", "Accept")
		w.Header().Add("Vary", "Origin")
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"not found"}`))
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"method":"` + r.Method + `","received":` + strconv.Itoa(len(data)) + `}`))
	}))
	t.Cleanup(server.Close)
	return server
}

func newProxy(t *testing.T, target string, opts ...Option) (*Proxy, *httptest.Server) {
	t.Helper()
	p, err := New(target, recorder.NewMetadata("proxied", true), opts...)
	require.NoError(t, err)
	front := httptest.NewServer(p)
	t.Cleanup(front.Close)
	return p, front
}

func TestNew_Errors(t *testing.T) {
	meta := recorder.NewMetadata("x", true)

	_, err := New("", meta)
	assert.Error(t, err)

	_, err = New("not a url", meta)
	assert.Error(t, err)

	_, err = New("http://example.org", nil)
	assert.Error(t, err)
}

func TestProxy_DocumentsExchange(t *testing.T) {
	upstream := newUpstream(t)
	p, front := newProxy(t, upstream.URL)

	req, err := http.NewRequest(http.MethodPost, front.URL+"/orders?page=2", strings.NewReader(`{"qty":2}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept-Encoding", "gzip")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	data, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Contains(t, string(data), `"method":"POST"`)

	records := p.Records()
	require.Len(t, records, 1)
	rec := records[0]

	upstreamHost := strings.TrimPrefix(upstream.URL, "http://")
	assert.Equal(t, "POST", rec.Method)
	assert.Equal(t, "/orders", rec.Route)
	assert.Equal(t, "page: 2", rec.RequestQueryParameters)
	assert.Equal(t, "{\n  \"qty\": 2\n}", rec.RequestBody)
	assert.Contains(t, rec.RequestHeaders, "Content-Type: application/json")
	assert.Contains(t, rec.RequestHeaders, "Host: "+upstreamHost)
	assert.NotContains(t, rec.RequestHeaders, "Accept-Encoding")
	assert.Equal(t, 201, rec.ResponseStatus)
	assert.Equal(t, "Created", rec.ResponseStatusText)
	assert.Contains(t, rec.ResponseHeaders, "X-Upstream-Host: "+upstreamHost)
	assert.Contains(t, rec.ResponseHeaders, "Vary: Accept, Origin")
	assert.True(t, strings.HasPrefix(rec.Curl, "curl '"+upstream.URL+"/orders?page=2' -X POST"), rec.Curl)
	assert.NoError(t, rec.Validate())
}

func TestProxy_RecorderOptions(t *testing.T) {
	upstream := newUpstream(t)
	p, front := newProxy(t, upstream.URL, WithRecorderOptions(
		recorder.WithHost("https://api.example.com"),
		recorder.WithRedactedHeaders("Authorization"),
		recorder.WithSanitizer(body.NewSanitizer(body.WithPlaceholder("<file>"))),
	))

	payload := "--X\r\nContent-Type: image/png\r\n\r\n\x89PNG\r\n--X--\r\n"
	req, err := http.NewRequest(http.MethodPut, front.URL+"/avatar", strings.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "multipart/form-data; boundary=X")
	req.Header.Set("Authorization", "Bearer secret")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	records := p.Records()
	require.Len(t, records, 1)
	rec := records[0]

	assert.Equal(t, "--X\nContent-Type: image/png\n\n<file>", rec.RequestBody)
	assert.Contains(t, rec.RequestHeaders, "Authorization: "+recorder.RedactedValue)
	assert.NotContains(t, rec.Curl, "secret")
	assert.True(t, strings.HasPrefix(rec.Curl, "curl https://api.example.com/avatar -X PUT"), rec.Curl)
}

func TestProxy_ExcludeAndDeduplicate(t *testing.T) {
	upstream := newUpstream(t)
	p, front := newProxy(t, upstream.URL, WithExclude("/health"), WithDeduplicate(true))

	for _, path := range []string{"/health", "/orders", "/orders", "/missing"} {
		resp, err := http.Get(front.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
	}

	records := p.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "/orders", records[0].Route)
	assert.Equal(t, "/missing", records[1].Route)
	assert.Equal(t, 404, records[1].ResponseStatus)
	assert.Equal(t, "{\n  \"error\": \"not found\"\n}", records[1].ResponseBody)
}

func TestProxy_UpstreamDown(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	p, front := newProxy(t, "http://127.0.0.1:1", WithLogger(zap.New(core)))

	resp, err := http.Get(front.URL + "/orders")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Empty(t, p.Records())
	assert.Equal(t, 1, logs.FilterMessage("proxy request failed").Len())
}

func TestProxy_MalformedMultipartIsLogged(t *testing.T) {
	upstream := newUpstream(t)
	core, logs := observer.New(zap.WarnLevel)
	p, front := newProxy(t, upstream.URL, WithRecorderOptions(recorder.WithLogger(zap.New(core))))

	resp, err := http.Post(front.URL+"/upload", "multipart/form-data", strings.NewReader("--\r\nbroken\r\n"))
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Empty(t, p.Records())
	assert.Equal(t, 1, logs.FilterMessage("failed to document request").Len())
}

func TestProxy_ConcurrentRequests(t *testing.T) {
	upstream := newUpstream(t)
	p, front := newProxy(t, upstream.URL)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := http.Get(front.URL + "/orders")
			if err == nil {
				resp.Body.Close()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, p.Records(), 10)
}

func TestProxy_ServeListener(t *testing.T) {
	upstream := newUpstream(t)
	p, err := New(upstream.URL, recorder.NewMetadata("served", true))
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- p.ServeListener(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/orders")
	require.NoError(t, err)
	resp.Body.Close()

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("proxy did not shut down")
	}
	assert.Len(t, p.Records(), 1)
}

func TestProxy_ServeListenerFailureReleasesShutdownWatcher(t *testing.T) {
	upstream := newUpstream(t)
	p, err := New(upstream.URL, recorder.NewMetadata("served", true))
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	require.NoError(t, ln.Close())

	before := runtime.NumGoroutine()

	errCh := make(chan error, 1)
	go func() { errCh <- p.ServeListener(context.Background(), ln) }()

	select {
	case err := <-errCh:
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve on a closed listener did not return")
	}

	assert.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= before
	}, 2*time.Second, 10*time.Millisecond)
}

func TestExchange_IsReadOnly(t *testing.T) {
	_, err := (&exchange{}).Do(context.Background(), "GET", "/", nil, nil)
	assert.ErrorIs(t, err, errReadOnly)
}

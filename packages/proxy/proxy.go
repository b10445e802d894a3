package proxy

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	apihttp "github.com/abdul-hamid-achik/apidoc/packages/http"
	"github.com/abdul-hamid-achik/apidoc/packages/recorder"
)

// Proxy is a reverse proxy that documents the exchanges it forwards.
type Proxy struct {
	target  *url.URL
	example *recorder.Metadata
	proxy   *httputil.ReverseProxy

	recorderOpts []recorder.Option
	exclude      []string
	deduplicate  bool
	logger       *zap.Logger

	mu   sync.Mutex
	seen map[string]bool
}

// Option is a functional option for Proxy.
type Option func(*Proxy)

// WithExclude sets path prefixes that are forwarded but not documented.
func WithExclude(paths ...string) Option {
	return func(p *Proxy) {
		p.exclude = append(p.exclude, paths...)
	}
}

// WithDeduplicate documents only the first exchange per method and path.
func WithDeduplicate(enabled bool) Option {
	return func(p *Proxy) {
		p.deduplicate = enabled
	}
}

// WithRecorderOptions sets the options of the recorder used per exchange.
func WithRecorderOptions(opts ...recorder.Option) Option {
	return func(p *Proxy) {
		p.recorderOpts = append(p.recorderOpts, opts...)
	}
}

// WithTransport sets the transport used to reach the target.
func WithTransport(rt http.RoundTripper) Option {
	return func(p *Proxy) {
		p.proxy.Transport = rt
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Proxy) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New creates a Proxy forwarding to target and documenting into example.
func New(target string, example *recorder.Metadata, opts ...Option) (*Proxy, error) {
	if target == "" {
		return nil, fmt.Errorf("target URL is required")
	}
	u, err := url.Parse(target)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid target URL: %s", target)
	}
	if example == nil {
		return nil, fmt.Errorf("example is required")
	}

	p := &Proxy{
		target:  u,
		example: example,
		logger:  zap.NewNop(),
		seen:    make(map[string]bool),
	}
	p.proxy = &httputil.ReverseProxy{
		Rewrite:        p.rewrite,
		ModifyResponse: p.recordResponse,
		ErrorHandler:   p.handleError,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Target returns the URL requests are forwarded to.
func (p *Proxy) Target() string {
	return p.target.String()
}

// Records returns a copy of the records documented so far.
func (p *Proxy) Records() []recorder.RequestRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]recorder.RequestRecord, len(p.example.Requests))
	copy(out, p.example.Requests)
	return out
}

func (p *Proxy) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if p.excluded(req.URL.Path) {
		p.logger.Debug("excluded request", zap.String("method", req.Method), zap.String("path", req.URL.Path))
		p.proxy.ServeHTTP(w, req)
		return
	}

	var input []byte
	if req.Body != nil {
		data, err := io.ReadAll(req.Body)
		if err != nil {
			http.Error(w, "failed to read request body", http.StatusBadRequest)
			return
		}
		input = data
		req.Body = io.NopCloser(bytes.NewReader(input))
	}

	ex := &exchange{start: time.Now(), input: input}
	p.proxy.ServeHTTP(w, req.WithContext(context.WithValue(req.Context(), exchangeKey{}, ex)))

	if ex.request == nil || ex.response == nil {
		return
	}
	p.document(req.Method, req.URL.Path, ex)
}

func (p *Proxy) rewrite(pr *httputil.ProxyRequest) {
	pr.SetURL(p.target)
	pr.Out.Host = p.target.Host
	// compressed responses cannot be documented as text
	pr.Out.Header.Del("Accept-Encoding")

	ex, ok := pr.Out.Context().Value(exchangeKey{}).(*exchange)
	if !ok {
		return
	}
	ex.request = &apihttp.CapturedRequest{
		Method: pr.Out.Method,
		URL:    pr.Out.URL.String(),
		Env:    apihttp.NewEnv(pr.Out),
		Input:  bytes.NewReader(ex.input),
	}
}

func (p *Proxy) recordResponse(resp *http.Response) error {
	ex, ok := resp.Request.Context().Value(exchangeKey{}).(*exchange)
	if !ok {
		return nil
	}

	recorded, err := apihttp.ReadResponse(resp, time.Since(ex.start))
	if err != nil {
		return err
	}
	resp.Body = io.NopCloser(bytes.NewReader(recorded.Body))
	recorded.Request = resp.Request
	ex.response = recorded
	return nil
}

func (p *Proxy) handleError(w http.ResponseWriter, req *http.Request, err error) {
	p.logger.Warn("proxy request failed",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Error(err),
	)
	w.WriteHeader(http.StatusBadGateway)
}

func (p *Proxy) document(method, path string, ex *exchange) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.deduplicate {
		key := method + " " + path
		if p.seen[key] {
			p.logger.Debug("skipped duplicate", zap.String("method", method), zap.String("path", path))
			return
		}
		p.seen[key] = true
	}

	rec := recorder.New(ex, p.recorderOpts...)
	if err := rec.Document(p.example, method, path); err != nil {
		// the recorder already logged the failure
		return
	}

	p.logger.Info("recorded request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", ex.response.StatusCode),
		zap.Duration("duration", ex.response.Duration),
	)
}

func (p *Proxy) excluded(path string) bool {
	for _, prefix := range p.exclude {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// Serve listens on addr and serves until ctx is done.
func (p *Proxy) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return p.ServeListener(ctx, ln)
}

// ServeListener serves on ln until ctx is done, then shuts down gracefully.
func (p *Proxy) ServeListener(ctx context.Context, ln net.Listener) error {
	server := &http.Server{
		Handler:           p,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// stops the shutdown goroutine when Serve fails on its own
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	p.logger.Info("recording proxy started",
		zap.String("addr", ln.Addr().String()),
		zap.String("target", p.target.String()),
	)

	err := server.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		<-done
		return nil
	}
	return err
}

type exchangeKey struct{}

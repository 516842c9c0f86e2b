package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"golang.org/x/sync/singleflight"

	"github.com/padup/padup/internal/log"
	"github.com/padup/padup/internal/metrics"
	"github.com/padup/padup/internal/router"
	"github.com/padup/padup/internal/session"
	"github.com/padup/padup/internal/telemetry"
)

// RequestIDHeader carries the client-generated request ID.
const RequestIDHeader = "X-Request-ID"

// requestIDTransport tags each request with a fresh ID unless the caller set one.
type requestIDTransport struct {
	next http.RoundTripper
}

func (t *requestIDTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	id := req.Header.Get(RequestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	ctx := log.ContextWithRequestID(req.Context(), id)
	req = req.Clone(ctx)
	req.Header.Set(RequestIDHeader, id)
	return t.next.RoundTrip(req)
}

// bearerTransport attaches the current session token. The token is read on
// every request, so a sign-in or sign-out takes effect immediately.
type bearerTransport struct {
	next     http.RoundTripper
	sessions session.Store
}

type rejectedTokenKey struct{}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token := ""
	if sess, ok := t.sessions.Get(req.Context()); ok {
		token = sess.Token
	}

	req = req.Clone(context.WithValue(req.Context(), rejectedTokenKey{}, token))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	} else {
		req.Header.Del("Authorization")
	}
	return t.next.RoundTrip(req)
}

// tokenFromContext returns the token bearerTransport attached to the request.
func tokenFromContext(ctx context.Context) string {
	tok, _ := ctx.Value(rejectedTokenKey{}).(string)
	return tok
}

// unauthorizedTransport hands every 401 to the rejection handler before the
// response reaches the caller.
type unauthorizedTransport struct {
	next    http.RoundTripper
	handler *rejectionHandler
}

func (t *unauthorizedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		t.handler.reject(req.Context(), tokenFromContext(req.Context()))
	}
	return resp, nil
}

const anonymousCredential = "anonymous"

// rejectionHandler clears the session and redirects to the login route when
// the server rejects a credential. Each rejected token is acted on once.
// Concurrent rejections of the same credential wait for the first to finish.
// Only the most recent rejected token is remembered; an older one can no
// longer be the stored session.
type rejectionHandler struct {
	sessions session.Store
	nav      router.Navigator
	metrics  *metrics.Metrics
	logger   *log.Logger

	group singleflight.Group

	mu           sync.Mutex
	lastRejected string
}

func newRejectionHandler(sessions session.Store, nav router.Navigator, m *metrics.Metrics, logger *log.Logger) *rejectionHandler {
	return &rejectionHandler{
		sessions: sessions,
		nav:      nav,
		metrics:  m,
		logger:   logger,
	}
}

func (h *rejectionHandler) reject(ctx context.Context, token string) {
	key := token
	if key == "" {
		key = anonymousCredential
	}

	acted := false
	_, _, _ = h.group.Do(key, func() (any, error) {
		acted = h.react(ctx, token)
		return nil, nil
	})

	reaction := "absorbed"
	if acted {
		reaction = "cleared"
	}
	if h.metrics != nil {
		h.metrics.SessionRejections.WithLabelValues(reaction).Inc()
	}
}

// react performs the clear and redirect if this rejection still applies.
// It reports whether it did.
func (h *rejectionHandler) react(ctx context.Context, token string) bool {
	if token != "" {
		h.mu.Lock()
		seen := h.lastRejected == token
		h.lastRejected = token
		h.mu.Unlock()
		if seen {
			return false
		}
	}

	// A newer sign-in replaced the rejected credential, or it was already
	// signed out; leave the store alone.
	current, ok := h.sessions.Get(ctx)
	if ok && current.Token != token || !ok && token != "" {
		return false
	}

	if err := h.sessions.Clear(context.WithoutCancel(ctx)); err != nil {
		h.logger.Error("failed to clear rejected session", "error", err)
	}
	h.logger.Warn("session rejected by server, signed out")
	h.redirect(token)
	return true
}

func (h *rejectionHandler) redirect(token string) {
	if h.nav.Current() == router.PathLogin {
		return
	}
	reason := "session_rejected"
	if token == "" {
		reason = "unauthenticated"
	}
	h.nav.Navigate(router.PathLogin, router.NavigateOptions{Replace: true, Reason: reason})
}

// contractTransport checks outgoing requests against the API description and
// logs any mismatch. It never blocks a request.
type contractTransport struct {
	next     http.RoundTripper
	contract *Contract
	basePath string
	logger   *log.Logger
}

func (t *contractTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.contract.ValidateRequest(req, t.basePath); err != nil {
		t.logger.WithContext(req.Context()).Warn("request does not match API contract",
			"method", req.Method, "path", req.URL.Path, "error", err)
	}
	return t.next.RoundTrip(req)
}

// instrumentedTransport records metrics, a client span and a debug log line
// per request, and propagates the trace context to the server.
type instrumentedTransport struct {
	next    http.RoundTripper
	metrics *metrics.Metrics
	logger  *log.Logger
}

var propagator = propagation.TraceContext{}

func (t *instrumentedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	label := routeLabel(req.URL.Path)
	ctx, span := telemetry.StartAPISpan(req.Context(), req.Method, label)
	defer span.End()

	req = req.Clone(ctx)
	propagator.Inject(ctx, propagation.HeaderCarrier(req.Header))

	start := time.Now()
	resp, err := t.next.RoundTrip(req)
	elapsed := time.Since(start)

	logger := t.logger.WithContext(ctx)
	if err != nil {
		if t.metrics != nil {
			t.metrics.APINetworkErrors.WithLabelValues(req.Method, label).Inc()
		}
		telemetry.RecordError(span, err)
		logger.Debug("request failed", "method", req.Method, "path", req.URL.Path,
			"duration_ms", elapsed.Milliseconds(), "error", err)
		return nil, err
	}

	if t.metrics != nil {
		t.metrics.APIRequests.WithLabelValues(req.Method, label, metrics.StatusClass(resp.StatusCode)).Inc()
		t.metrics.APILatency.WithLabelValues(req.Method, label).Observe(elapsed.Seconds())
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode < 400 {
		telemetry.RecordSuccess(span)
	}
	logger.Debug("request completed", "method", req.Method, "path", req.URL.Path,
		"status", resp.StatusCode, "duration_ms", elapsed.Milliseconds())
	return resp, nil
}

// routeLabel collapses identifier segments so metric labels stay bounded.
//
//	/api/properties/public/slug/sea-view -> /api/properties/public/slug/{slug}
//	/api/kyc/42/status                   -> /api/kyc/{id}/status
func routeLabel(path string) string {
	segs := strings.Split(strings.Trim(path, "/"), "/")
	for i, s := range segs {
		if i > 0 {
			switch segs[i-1] {
			case "slug":
				segs[i] = "{slug}"
				continue
			case "verify":
				segs[i] = "{reference}"
				continue
			}
		}
		if strings.ContainsAny(s, "0123456789") {
			segs[i] = "{id}"
		}
	}
	return "/" + strings.Join(segs, "/")
}

// basePath returns the path component of the API base, e.g. "/api".
func basePath(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil {
		return ""
	}
	return strings.TrimSuffix(u.Path, "/")
}

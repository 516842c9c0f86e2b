package health

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
)

// HTTPChecker probes a URL. Any answer below 500 means the API is up: its
// root answers 404 without a token.
type HTTPChecker struct {
	name   string
	url    string
	client *http.Client
}

// NewHTTPChecker uses http.DefaultClient when client is nil.
func NewHTTPChecker(name, url string, client *http.Client) *HTTPChecker {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPChecker{name: name, url: url, client: client}
}

func (c *HTTPChecker) Name() string { return c.name }

func (c *HTTPChecker) Check(ctx context.Context) Result {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return Fail("invalid URL").With("url", c.url).With("error", err.Error())
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return Fail("API unreachable").
			With("url", c.url).
			With("error", err.Error()).
			With("suggestion", "Check api.base_url with 'padup config get api.base_url'")
	}
	resp.Body.Close()

	var r Result
	if resp.StatusCode >= 500 {
		r = Warn("API answered with a server error")
	} else {
		r = Pass("API reachable")
	}
	return r.With("url", c.url).With("status", strconv.Itoa(resp.StatusCode))
}

// DirChecker verifies that padup can create and write its home directory.
type DirChecker struct {
	name string
	dir  string
}

func NewDirChecker(name, dir string) *DirChecker {
	return &DirChecker{name: name, dir: dir}
}

func (c *DirChecker) Name() string { return c.name }

func (c *DirChecker) Check(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return Fail("check cancelled").With("error", err.Error())
	}
	if err := os.MkdirAll(c.dir, 0o700); err != nil {
		return Fail("cannot create directory").With("path", c.dir).With("error", err.Error())
	}
	f, err := os.CreateTemp(c.dir, ".doctor-*")
	if err != nil {
		return Fail("directory not writable").With("path", c.dir).With("error", err.Error())
	}
	f.Close()
	os.Remove(f.Name())
	return Pass("directory writable").With("path", filepath.Clean(c.dir))
}

// Func turns fn into a Checker: its message on success, its error as an
// unhealthy result.
func Func(name string, fn func(ctx context.Context) (string, error)) Checker {
	return funcChecker{name: name, fn: fn}
}

type funcChecker struct {
	name string
	fn   func(ctx context.Context) (string, error)
}

func (c funcChecker) Name() string { return c.name }

func (c funcChecker) Check(ctx context.Context) Result {
	msg, err := c.fn(ctx)
	if err != nil {
		return Fail(err.Error())
	}
	return Pass(msg)
}

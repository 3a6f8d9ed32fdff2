package checker

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/angeloszaimis/status-checker/internal/model"
)

// DefaultUserAgent identifies the checker to the sites it probes.
const DefaultUserAgent = "status-checker/1.0"

const maxRedirects = 10

var errTooManyRedirects = fmt.Errorf("stopped after %d redirects", maxRedirects)

// Checker performs one attempt against a URL.
type Checker interface {
	Attempt(ctx context.Context, url string, timeout time.Duration) model.Outcome
}

// Func adapts a plain function to the Checker interface.
type Func func(ctx context.Context, url string, timeout time.Duration) model.Outcome

// Attempt calls f.
func (f Func) Attempt(ctx context.Context, url string, timeout time.Duration) model.Outcome {
	return f(ctx, url, timeout)
}

// HTTPChecker issues GET requests through an http.Client.
type HTTPChecker struct {
	client    *http.Client
	userAgent string
}

// New creates an HTTPChecker. A nil client is replaced by NewClient().
func New(client *http.Client) *HTTPChecker {
	if client == nil {
		client = NewClient()
	}

	return &HTTPChecker{
		client:    client,
		userAgent: DefaultUserAgent,
	}
}

// NewClient returns a client without a global timeout; every attempt carries
// its own deadline instead. Redirects are followed up to a fixed limit.
func NewClient() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{
		KeepAlive: 30 * time.Second,
	}).DialContext

	return &http.Client{
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return errTooManyRedirects
			}
			return nil
		},
	}
}

// Attempt sends a single GET to url. The response body is closed unread; the
// elapsed time runs until the response headers arrive.
func (c *HTTPChecker) Attempt(ctx context.Context, url string, timeout time.Duration) model.Outcome {
	start := time.Now()

	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, url, nil)
	if err != nil {
		return model.Failure(model.ReasonConnection, err, time.Since(start))
	}
	req.Header.Set("User-Agent", c.userAgent)

	res, err := c.client.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
			return model.Failure(model.ReasonTimeout, err, elapsed)
		}
		return model.Failure(Classify(err), err, elapsed)
	}
	res.Body.Close()

	return model.Success(res.StatusCode, elapsed)
}

// Classify maps a transport error to a failure reason. Anything that is not a
// timeout or a recognisable protocol violation is treated as a connection error.
func Classify(err error) model.Reason {
	if errors.Is(err, context.DeadlineExceeded) {
		return model.ReasonTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return model.ReasonTimeout
	}

	if errors.Is(err, errTooManyRedirects) {
		return model.ReasonProtocol
	}

	var recordErr tls.RecordHeaderError
	if errors.As(err, &recordErr) {
		return model.ReasonProtocol
	}

	msg := err.Error()
	if strings.Contains(msg, "malformed HTTP") ||
		strings.Contains(msg, "HTTP response to HTTPS client") {
		return model.ReasonProtocol
	}

	return model.ReasonConnection
}

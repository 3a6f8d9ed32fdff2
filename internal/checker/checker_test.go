package checker_test

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/status-checker/internal/checker"
	"github.com/angeloszaimis/status-checker/internal/model"
)

var _ = Describe("HTTPChecker", func() {
	var (
		c   *checker.HTTPChecker
		ctx context.Context
	)

	BeforeEach(func() {
		c = checker.New(nil)
		ctx = context.Background()
	})

	DescribeTable("reports every status code as a successful attempt",
		func(statusCode int) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(statusCode)
			}))
			defer server.Close()

			outcome := c.Attempt(ctx, server.URL, time.Second)
			Expect(outcome.OK()).To(BeTrue())
			Expect(outcome.StatusCode).To(Equal(statusCode))
			Expect(outcome.Elapsed).To(BeNumerically(">", 0))
		},
		Entry("ok", http.StatusOK),
		Entry("no content", http.StatusNoContent),
		Entry("not found", http.StatusNotFound),
		Entry("server error", http.StatusInternalServerError),
		Entry("service unavailable", http.StatusServiceUnavailable),
	)

	It("should send its user agent", func() {
		agent := make(chan string, 1)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			agent <- r.UserAgent()
		}))
		defer server.Close()

		c.Attempt(ctx, server.URL, time.Second)
		Expect(agent).To(Receive(Equal(checker.DefaultUserAgent)))
	})

	It("should follow redirects to the final status", func() {
		target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusAccepted)
		}))
		defer target.Close()

		redirect := httptest.NewServer(http.RedirectHandler(target.URL, http.StatusFound))
		defer redirect.Close()

		outcome := c.Attempt(ctx, redirect.URL, time.Second)
		Expect(outcome.OK()).To(BeTrue())
		Expect(outcome.StatusCode).To(Equal(http.StatusAccepted))
	})

	It("should fail with timeout when no response arrives in time", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		defer server.Close()

		start := time.Now()
		outcome := c.Attempt(ctx, server.URL, 50*time.Millisecond)
		Expect(outcome.OK()).To(BeFalse())
		Expect(outcome.Reason).To(Equal(model.ReasonTimeout))
		Expect(time.Since(start)).To(BeNumerically("<", time.Second))
	})

	It("should fail with connection_error when the connection is refused", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		addr := server.URL
		server.Close()

		outcome := c.Attempt(ctx, addr, time.Second)
		Expect(outcome.Reason).To(Equal(model.ReasonConnection))
		Expect(outcome.Message()).NotTo(BeEmpty())
	})

	It("should fail with connection_error when the connection drops before a response", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			conn, _, err := w.(http.Hijacker).Hijack()
			if err == nil {
				conn.Close()
			}
		}))
		defer server.Close()

		outcome := c.Attempt(ctx, server.URL, time.Second)
		Expect(outcome.Reason).To(Equal(model.ReasonConnection))
	})

	It("should fail with protocol_error on a malformed response", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			conn, buf, err := w.(http.Hijacker).Hijack()
			if err != nil {
				return
			}
			defer conn.Close()
			buf.WriteString("NOT-HTTP garbage\r\n\r\n")
			buf.Flush()
		}))
		defer server.Close()

		outcome := c.Attempt(ctx, server.URL, time.Second)
		Expect(outcome.Reason).To(Equal(model.ReasonProtocol))
	})

	It("should fail with protocol_error on a redirect loop", func() {
		var server *httptest.Server
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, server.URL+"/loop", http.StatusFound)
		}))
		defer server.Close()

		outcome := c.Attempt(ctx, server.URL, time.Second)
		Expect(outcome.Reason).To(Equal(model.ReasonProtocol))
	})

	DescribeTable("treats unusable URLs as connection errors",
		func(raw string) {
			outcome := c.Attempt(ctx, raw, time.Second)
			Expect(outcome.OK()).To(BeFalse())
			Expect(outcome.Reason).To(Equal(model.ReasonConnection))
		},
		Entry("missing scheme", "://invalid-url"),
		Entry("unsupported scheme", "ftp://localhost/file"),
		Entry("empty string", ""),
	)
})

var _ = Describe("Classify", func() {
	DescribeTable("maps transport errors to reasons",
		func(err error, expected model.Reason) {
			Expect(checker.Classify(err)).To(Equal(expected))
		},
		Entry("deadline", &url.Error{Op: "Get", URL: "http://x", Err: context.DeadlineExceeded}, model.ReasonTimeout),
		Entry("net timeout", &net.DNSError{Err: "i/o timeout", IsTimeout: true}, model.ReasonTimeout),
		Entry("dns failure", &url.Error{Op: "Get", URL: "http://x", Err: &net.DNSError{Err: "no such host", Name: "x"}}, model.ReasonConnection),
		Entry("refused", &net.OpError{Op: "dial", Err: errors.New("connection refused")}, model.ReasonConnection),
		Entry("tls record header", &url.Error{Op: "Get", URL: "https://x", Err: tls.RecordHeaderError{Msg: "first record does not look like a TLS handshake"}}, model.ReasonProtocol),
		Entry("malformed response", errors.New(`malformed HTTP response "garbage"`), model.ReasonProtocol),
		Entry("plain error", errors.New("boom"), model.ReasonConnection),
	)
})

var _ = Describe("Func", func() {
	It("should adapt a function to the Checker interface", func() {
		var c checker.Checker = checker.Func(func(ctx context.Context, url string, timeout time.Duration) model.Outcome {
			return model.Success(http.StatusTeapot, timeout)
		})

		outcome := c.Attempt(context.Background(), "http://example.com", time.Second)
		Expect(outcome.StatusCode).To(Equal(http.StatusTeapot))
		Expect(outcome.Elapsed).To(Equal(time.Second))
	})
})

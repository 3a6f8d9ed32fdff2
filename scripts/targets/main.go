// Targets is a local HTTP server with endpoints that misbehave on purpose,
// for trying the checker against every outcome class.
//
// Usage:
//
//	go run ./scripts/targets -port 8081
//
// Endpoints:
//
//	/ok                always 200
//	/status/{code}     the given status code
//	/slow?delay=3s     200 after the delay
//	/drop              closes the connection without answering
//	/garbage           writes a malformed status line
//	/flaky?fail=2      drops the first N requests per client, then 200
//	/loop              redirects to itself forever
package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"
)

func main() {
	port := pflag.Int("port", 8081, "port to listen on")
	pflag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	addr := fmt.Sprintf(":%d", *port)
	log.Info("Starting targets", slog.String("addr", addr))
	if err := http.ListenAndServe(addr, withRequestID(log, newMux())); err != nil {
		log.Error("Server failed", slog.Any("err", err))
		os.Exit(1)
	}
}

func newMux() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/status/{code}", func(w http.ResponseWriter, r *http.Request) {
		code, err := strconv.Atoi(r.PathValue("code"))
		if err != nil || code < 100 || code > 999 {
			http.Error(w, "bad status code", http.StatusBadRequest)
			return
		}
		w.WriteHeader(code)
	})

	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		delay, err := time.ParseDuration(r.URL.Query().Get("delay"))
		if err != nil {
			delay = 10 * time.Second
		}
		select {
		case <-time.After(delay):
			w.Write([]byte("finally"))
		case <-r.Context().Done():
		}
	})

	mux.HandleFunc("/drop", func(w http.ResponseWriter, r *http.Request) {
		hijack(w, nil)
	})

	mux.HandleFunc("/garbage", func(w http.ResponseWriter, r *http.Request) {
		hijack(w, []byte("NOT-HTTP garbage\r\n\r\n"))
	})

	var (
		mutex sync.Mutex
		seen  = make(map[string]int)
	)
	mux.HandleFunc("/flaky", func(w http.ResponseWriter, r *http.Request) {
		fail, _ := strconv.Atoi(r.URL.Query().Get("fail"))

		mutex.Lock()
		seen[r.RemoteAddr]++
		n := seen[r.RemoteAddr]
		mutex.Unlock()

		if n <= fail {
			hijack(w, nil)
			return
		}
		w.Write([]byte("recovered"))
	})

	mux.HandleFunc("/loop", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/loop", http.StatusFound)
	})

	return mux
}

// hijack writes raw to the connection, if anything, and closes it.
func hijack(w http.ResponseWriter, raw []byte) {
	hj, ok := w.(http.Hijacker)
	if !ok {
		http.Error(w, "hijacking not supported", http.StatusInternalServerError)
		return
	}
	conn, _, err := hj.Hijack()
	if err != nil {
		return
	}
	if len(raw) > 0 {
		conn.Write(raw)
	}
	conn.Close()
}

func withRequestID(log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)
		log.Info("Request",
			slog.String("id", id),
			slog.String("path", r.URL.Path),
			slog.String("from", r.RemoteAddr))
		next.ServeHTTP(w, r)
	})
}

package testutils

import (
	"bytes"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/phayes/freeport"
)

// RecordedRequest is a request received by TestHttpServer.
type RecordedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

type TestHttpServer struct {
	*http.ServeMux

	lock     sync.Mutex
	requests []RecordedRequest
}

func NewTestHttpServer() *TestHttpServer {
	return &TestHttpServer{ServeMux: http.NewServeMux()}
}

// RespondWith registers a handler on pattern that answers every request with
// status and body.
func (s *TestHttpServer) RespondWith(pattern string, status int, body string) {
	s.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	})
}

// Requests returns a copy of every request received so far.
func (s *TestHttpServer) Requests() []RecordedRequest {
	s.lock.Lock()
	defer s.lock.Unlock()

	return append([]RecordedRequest(nil), s.requests...)
}

func (s *TestHttpServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	r.Body.Close()

	s.lock.Lock()
	s.requests = append(s.requests, RecordedRequest{r.Method, r.URL.Path, r.Header.Clone(), body})
	s.lock.Unlock()

	r.Body = io.NopCloser(bytes.NewReader(body))
	s.ServeMux.ServeHTTP(w, r)
}

// Start returns the base url of the running server.
func (s *TestHttpServer) Start(t *testing.T) string {
	port, err := freeport.GetFreePort()
	if err != nil {
		t.Fatalf("cannot start test server: %v", err)
	}

	srvAddr := fmt.Sprintf("127.0.0.1:%d", port)
	srv := http.Server{
		Addr:    srvAddr,
		Handler: s,
	}

	t.Cleanup(func() {
		srv.Close()
	})

	go func() {
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			t.Errorf("cannot start test server: %v", err)
		}
	}()

	waitForServer(t, srvAddr)
	return "http://" + srvAddr
}

func waitForServer(t *testing.T, addr string) {
	backoff := 50 * time.Millisecond

	for i := 0; i < 10; i++ {
		conn, err := net.DialTimeout("tcp", addr, 1*time.Second)
		if err != nil {
			time.Sleep(backoff)
			continue
		}
		err = conn.Close()
		if err != nil {
			t.Fatal(err)
		}
		return
	}

	t.Fatalf("server on %s not up after 10 attempts", addr)
}
